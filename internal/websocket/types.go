package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/raaihank/scandidate/internal/privacy"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeCountdown carries the remaining retention time of a session
	EventTypeCountdown EventType = "countdown"
	// EventTypePurge is sent once a session's content has been destroyed
	EventTypePurge EventType = "purge"
	// EventTypePIIDetection represents a sensitive data detection event
	EventTypePIIDetection EventType = "pii_detection"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data"`
}

// CountdownEvent reports time left before auto-delete
type CountdownEvent struct {
	Remaining   string `json:"remaining"`
	RemainingMS int64  `json:"remaining_ms"`
}

// PurgeEvent reports why a session's content was destroyed
type PurgeEvent struct {
	Reason string `json:"reason"`
}

// PIIDetectionEvent represents a sensitive data detection event. Only
// categories and counts are sent, never the matched text.
type PIIDetectionEvent struct {
	Findings      []privacy.Finding `json:"findings"`
	TotalFindings int               `json:"total_findings"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action    string `json:"action"` // "connected", "disconnected"
	ClientID  string `json:"client_id"`
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
}

// Client represents a WebSocket client connection. A client with an empty
// session ID receives no session events.
type Client struct {
	ID          string
	conn        *websocket.Conn
	Send        chan Event
	sessionID   string
	ConnectedAt time.Time
	IP          string
	UserAgent   string
}
