package session

import "time"

// View is a snapshot of a session as the privacy page renders it
type View struct {
	ID             string     `json:"id"`
	DisplayedText  string     `json:"displayedText"`
	Protected      bool       `json:"protected"`
	HasContent     bool       `json:"hasContent"`
	PrivacyMode    bool       `json:"privacyMode"`
	AutoDelete     bool       `json:"autoDelete"`
	RevealOriginal bool       `json:"revealOriginal"`
	Findings       []string   `json:"findings"`
	Retention      string     `json:"retention"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	Remaining      string     `json:"remaining,omitempty"`
	Warning        string     `json:"warning,omitempty"`
}

// Artifact is a downloadable export of the displayed content
type Artifact struct {
	Filename    string
	ContentType string
	Content     []byte
}
