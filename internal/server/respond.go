package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/raaihank/scandidate/internal/analysis"
	"github.com/raaihank/scandidate/internal/extract"
	"github.com/raaihank/scandidate/internal/identity"
	"github.com/raaihank/scandidate/internal/privacy"
	"github.com/raaihank/scandidate/internal/session"
	"go.uber.org/zap"
)

// errBadRequest marks malformed request bodies
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and writes an error body. Internal
// errors are logged and hidden from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.WithRequestID(getRequestID(r.Context())).Error("Request failed",
			zap.String("path", routePath(r)),
			zap.Error(err),
		)
		message = "Internal server error"
	}
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var validation *identity.ValidationError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &validation),
		errors.Is(err, analysis.ErrInvalidRequest),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrNoContent):
		return http.StatusNotFound
	case errors.Is(err, identity.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, privacy.ErrInputTooLarge),
		errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, extract.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON request body into v
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", errBadRequest)
		}
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	return nil
}

// isMultipart reports whether the request carries a multipart form
func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// readUpload extracts the text of the multipart "file" field
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, error) {
	if r.ContentLength > s.config.Server.MaxUploadSize {
		return "", &http.MaxBytesError{Limit: s.config.Server.MaxUploadSize}
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxUploadSize)
	if err := r.ParseMultipartForm(s.config.Server.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", err
		}
		return "", fmt.Errorf("%w: invalid multipart form: %v", errBadRequest, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", fmt.Errorf("%w: file is required", errBadRequest)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	text, err := extract.Text(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", header.Filename, err)
	}
	return text, nil
}
