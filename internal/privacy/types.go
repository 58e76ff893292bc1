package privacy

import (
	"fmt"
	"regexp"
)

// DetectionRule represents a single sensitive-data detection rule
type DetectionRule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Finding represents one category detected during a redaction pass
type Finding struct {
	EntityType string `json:"entityType"`
	Masked     string `json:"masked"`
	Count      int    `json:"count"`
}

// String renders the finding the way the privacy page lists it
func (f Finding) String() string {
	return fmt.Sprintf("%s: %d item(s)", f.EntityType, f.Count)
}

// Report is the ordered list of findings of one redaction pass.
// Order follows the rule registry, not the position in the text.
type Report []Finding

// Count returns the occurrence count for a category, or 0 if it was not detected
func (r Report) Count(entityType string) int {
	for _, f := range r {
		if f.EntityType == entityType {
			return f.Count
		}
	}
	return 0
}

// Total returns the number of masked occurrences across all categories
func (r Report) Total() int {
	total := 0
	for _, f := range r {
		total += f.Count
	}
	return total
}

// Lines renders every finding with Finding.String
func (r Report) Lines() []string {
	lines := make([]string, 0, len(r))
	for _, f := range r {
		lines = append(lines, f.String())
	}
	return lines
}

// Result contains the result of redacting a text
type Result struct {
	MaskedText string `json:"maskedText"`
	Report     Report `json:"findings"`
}
