package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest is wrapped by request validation errors
var ErrInvalidRequest = errors.New("invalid analysis request")

var errEmptyCV = fmt.Errorf("%w: cv text is empty", ErrInvalidRequest)

// Meta tags results that did not come from the model
type Meta struct {
	IsMockData     bool   `json:"_isMockData,omitempty"`
	FallbackReason string `json:"_fallbackReason,omitempty"`
}

// SectionScore is the critique of one CV section
type SectionScore struct {
	Name        string   `json:"name"`
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// CVAnalysis is the overall review of a CV
type CVAnalysis struct {
	OverallScore     int            `json:"overallScore"`
	Sections         []SectionScore `json:"sections"`
	Strengths        []string       `json:"strengths"`
	Weaknesses       []string       `json:"weaknesses"`
	Recommendations  []string       `json:"recommendations"`
	ATSCompatibility int            `json:"atsCompatibility"`
	Meta
}

// ScoredFeedback is a score with an explanation
type ScoredFeedback struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// KeywordAnalysis describes keyword coverage against a job description
type KeywordAnalysis struct {
	FoundKeywords   []string `json:"foundKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
	KeywordDensity  int      `json:"keywordDensity"`
}

// JobMatch scores a CV against a job description
type JobMatch struct {
	OverallMatch     int             `json:"overallMatch"`
	MatchingSkills   []string        `json:"matchingSkills"`
	MissingSkills    []string        `json:"missingSkills"`
	ExperienceMatch  ScoredFeedback  `json:"experienceMatch"`
	EducationMatch   ScoredFeedback  `json:"educationMatch"`
	KeywordAnalysis  KeywordAnalysis `json:"keywordAnalysis"`
	Recommendations  []string        `json:"recommendations"`
	ImprovementAreas []string        `json:"improvementAreas"`
	Meta
}

// ParsedSection reports whether an ATS could extract a CV section
type ParsedSection struct {
	Extracted bool     `json:"extracted"`
	Issues    []string `json:"issues"`
}

// ParsingResults groups the parsed CV sections
type ParsingResults struct {
	ContactInfo    ParsedSection `json:"contactInfo"`
	WorkExperience ParsedSection `json:"workExperience"`
	Education      ParsedSection `json:"education"`
	Skills         ParsedSection `json:"skills"`
}

// KeywordMatching is the ATS keyword score
type KeywordMatching struct {
	Score           int      `json:"score"`
	MatchedKeywords []string `json:"matchedKeywords"`
	MissedKeywords  []string `json:"missedKeywords"`
}

// ATSSimulation simulates how an applicant tracking system reads a CV
type ATSSimulation struct {
	OverallATSScore      int             `json:"overallAtsScore"`
	ParsingResults       ParsingResults  `json:"parsingResults"`
	KeywordMatching      KeywordMatching `json:"keywordMatching"`
	FormatIssues         []string        `json:"formatIssues"`
	Recommendations      []string        `json:"recommendations"`
	ATSCompatibilityTips []string        `json:"atsCompatibilityTips"`
	Meta
}

// CareerPath is one suggested career direction
type CareerPath struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Timeframe       string   `json:"timeframe"`
	RequiredSkills  []string `json:"requiredSkills"`
	SalaryRange     string   `json:"salaryRange"`
	GrowthPotential int      `json:"growthPotential"`
}

// SkillGap is a skill to acquire. Importance is Tinggi, Sedang or Rendah.
type SkillGap struct {
	Skill             string   `json:"skill"`
	Importance        string   `json:"importance"`
	LearningResources []string `json:"learningResources"`
}

// CareerSuggestion is career advice derived from a CV
type CareerSuggestion struct {
	CurrentLevel   string       `json:"currentLevel"`
	CareerPaths    []CareerPath `json:"careerPaths"`
	SkillGaps      []SkillGap   `json:"skillGaps"`
	IndustryTrends []string     `json:"industryTrends"`
	NextSteps      []string     `json:"nextSteps"`
	Certifications []string     `json:"certifications"`
	Meta
}

// Rewrite is a rewritten CV section
type Rewrite struct {
	RewrittenContent string `json:"rewrittenContent"`
	Meta
}

// JobMatchRequest compares a CV to a job description
type JobMatchRequest struct {
	CVContent      string `json:"cvContent"`
	JobDescription string `json:"jobDescription"`
}

// Validate checks required fields
func (r JobMatchRequest) Validate() error {
	if strings.TrimSpace(r.CVContent) == "" || strings.TrimSpace(r.JobDescription) == "" {
		return fmt.Errorf("%w: cvContent and jobDescription are required", ErrInvalidRequest)
	}
	return nil
}

// ATSRequest simulates ATS parsing, optionally against a job description
type ATSRequest struct {
	CVContent      string `json:"cvContent"`
	JobDescription string `json:"jobDescription,omitempty"`
}

// Validate checks required fields
func (r ATSRequest) Validate() error {
	if strings.TrimSpace(r.CVContent) == "" {
		return fmt.Errorf("%w: cvContent is required", ErrInvalidRequest)
	}
	return nil
}

// CareerRequest asks for career suggestions
type CareerRequest struct {
	CVContent       string `json:"cvContent"`
	CurrentRole     string `json:"currentRole,omitempty"`
	TargetIndustry  string `json:"targetIndustry,omitempty"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
}

// Validate checks required fields
func (r CareerRequest) Validate() error {
	if strings.TrimSpace(r.CVContent) == "" {
		return fmt.Errorf("%w: cvContent is required", ErrInvalidRequest)
	}
	return nil
}

// RewriteRequest asks for one CV section to be rewritten
type RewriteRequest struct {
	Section  string `json:"section"`
	Content  string `json:"content"`
	JobTitle string `json:"jobTitle,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// Validate checks required fields
func (r RewriteRequest) Validate() error {
	if strings.TrimSpace(r.Section) == "" || strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("%w: section and content are required", ErrInvalidRequest)
	}
	return nil
}

func checkScore(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%s out of range: %d", field, v)
	}
	return nil
}

func (a *CVAnalysis) validate() error {
	if err := checkScore("overallScore", a.OverallScore, 0, 100); err != nil {
		return err
	}
	for _, s := range a.Sections {
		if err := checkScore("sections.score", s.Score, 0, 100); err != nil {
			return err
		}
	}
	return checkScore("atsCompatibility", a.ATSCompatibility, 0, 100)
}

func (m *JobMatch) validate() error {
	for field, v := range map[string]int{
		"overallMatch":                   m.OverallMatch,
		"experienceMatch.score":          m.ExperienceMatch.Score,
		"educationMatch.score":           m.EducationMatch.Score,
		"keywordAnalysis.keywordDensity": m.KeywordAnalysis.KeywordDensity,
	} {
		if err := checkScore(field, v, 0, 100); err != nil {
			return err
		}
	}
	return nil
}

func (s *ATSSimulation) validate() error {
	if err := checkScore("overallAtsScore", s.OverallATSScore, 0, 100); err != nil {
		return err
	}
	return checkScore("keywordMatching.score", s.KeywordMatching.Score, 0, 100)
}

func (c *CareerSuggestion) validate() error {
	for _, p := range c.CareerPaths {
		if err := checkScore("careerPaths.growthPotential", p.GrowthPotential, 1, 5); err != nil {
			return err
		}
	}
	for _, g := range c.SkillGaps {
		switch g.Importance {
		case "Tinggi", "Sedang", "Rendah":
		default:
			return fmt.Errorf("skillGaps.importance invalid: %q", g.Importance)
		}
	}
	return nil
}
