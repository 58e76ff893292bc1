package server

import (
	"net/http"

	"github.com/raaihank/scandidate/internal/analysis"
	"go.uber.org/zap"
)

type analyzeCVRequest struct {
	CVText string `json:"cvText"`
}

// handleAnalyzeCV scores an uploaded CV file, or cvText from a JSON body
func (s *Server) handleAnalyzeCV(w http.ResponseWriter, r *http.Request) {
	var cvText string
	if isMultipart(r) {
		text, err := s.readUpload(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		cvText = text
	} else {
		var req analyzeCVRequest
		if err := s.decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		cvText = req.CVText
	}

	result, err := s.analyzer.AnalyzeCV(r.Context(), cvText)
	s.respondAnalysis(w, r, "analyze-cv", result, err)
}

func (s *Server) handleJobMatch(w http.ResponseWriter, r *http.Request) {
	var req analysis.JobMatchRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.analyzer.MatchJob(r.Context(), req)
	s.respondAnalysis(w, r, "job-match", result, err)
}

func (s *Server) handleATSSimulator(w http.ResponseWriter, r *http.Request) {
	var req analysis.ATSRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.analyzer.SimulateATS(r.Context(), req)
	s.respondAnalysis(w, r, "ats-simulator", result, err)
}

func (s *Server) handleCareerSuggestion(w http.ResponseWriter, r *http.Request) {
	var req analysis.CareerRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.analyzer.SuggestCareer(r.Context(), req)
	s.respondAnalysis(w, r, "career-suggestion", result, err)
}

func (s *Server) handleRewriteSection(w http.ResponseWriter, r *http.Request) {
	var req analysis.RewriteRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.analyzer.RewriteSection(r.Context(), req)
	s.respondAnalysis(w, r, "rewrite-section", result, err)
}

// respondAnalysis writes an analysis result. Provider failures that are not
// request errors become 502.
func (s *Server) respondAnalysis(w http.ResponseWriter, r *http.Request, operation string, result interface{}, err error) {
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.logger.WithRequestID(getRequestID(r.Context())).Warn("Analysis failed",
				zap.String("operation", operation),
				zap.Error(err),
			)
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Failed to " + describe(operation)})
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func describe(operation string) string {
	switch operation {
	case "analyze-cv":
		return "analyze CV"
	case "job-match":
		return "match job"
	case "ats-simulator":
		return "simulate ATS"
	case "career-suggestion":
		return "generate career suggestions"
	case "rewrite-section":
		return "rewrite section"
	default:
		return operation
	}
}
