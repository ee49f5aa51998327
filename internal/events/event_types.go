package events

import "time"

// EventType enumerates account and review events.
type EventType string

const (
	EventUserSignedUp      EventType = "UserSignedUp"
	EventUserLoggedIn      EventType = "UserLoggedIn"
	EventUserLoggedOut     EventType = "UserLoggedOut"
	EventProfileUpdated    EventType = "ProfileUpdated"
	EventProfilePicUpdated EventType = "ProfilePicUpdated"
	EventReviewCreated     EventType = "ReviewCreated"
	EventReviewDeleted     EventType = "ReviewDeleted"
)

// Event represents a domain event emitted by services. It carries ids only.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// ReviewPayload identifies the review an event refers to.
type ReviewPayload struct {
	ReviewID string `json:"review_id"`
	PaperID  string `json:"paper_id"`
}

// LoginPayload records which identifier kind was used.
type LoginPayload struct {
	Method string `json:"method"`
}
