// Package extract turns uploaded CV files into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported MIME types
const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupported is returned for file types that cannot be read
var ErrUnsupported = errors.New("unsupported file type")

var (
	xmlTag      = regexp.MustCompile(`<[^>]+>`)
	blankSpaces = regexp.MustCompile(` {2,}`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
)

// Detect returns the MIME type of data without parameters
func Detect(data []byte) string {
	m := mimetype.Detect(data)
	switch {
	case m.Is(MIMEPDF):
		return MIMEPDF
	case m.Is(MIMEDocx):
		return MIMEDocx
	case isText(m):
		return MIMEText
	case utf8.Valid(data) && !bytes.ContainsRune(data, 0):
		return MIMEText
	default:
		return strings.SplitN(m.String(), ";", 2)[0]
	}
}

// isText reports whether m is plain text or one of its children such as
// CSV, JSON or HTML.
func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(MIMEText) {
			return true
		}
	}
	return false
}

// Text extracts the text of a plain-text, PDF or DOCX document
func Text(data []byte) (string, error) {
	kind := Detect(data)
	switch kind {
	case MIMEText:
		return string(data), nil
	case MIMEPDF:
		return pdfText(data)
	case MIMEDocx:
		return docxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, kind)
	}
}

func pdfText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return normalize(b.String()), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return documentXMLText(doc.Editable().GetContent()), nil
}

// documentXMLText flattens WordprocessingML into lines, one per paragraph
func documentXMLText(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:tab/>", "\t")
	content = strings.ReplaceAll(content, "<w:br/>", "\n")
	content = xmlTag.ReplaceAllString(content, "")
	return normalize(html.UnescapeString(content))
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = blankSpaces.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
