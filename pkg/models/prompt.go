package models

import "time"

// PromptStatus tracks the status of an individual prompt
type PromptStatus string

const (
	PromptStatusPending  PromptStatus = "Pending"  // Prompt is on screen
	PromptStatusAnswered PromptStatus = "Answered" // User picked an outcome
	PromptStatusDeferred PromptStatus = "Deferred" // Due, but held back by a busy calendar
)

// PromptRecord represents one firing of the reminder
type PromptRecord struct {
	ID         string       // Unique identifier (UUID)
	Status     PromptStatus // Prompt status
	ShownAt    time.Time    // When the prompt fired
	ResolvedAt time.Time    // When the user answered; zero while pending
	Outcome    Outcome      // Chosen outcome; empty unless answered
	Note       string       // Free text, e.g. the blocking calendar event
}

// DateKey formats t as the calendar day used for disable-today comparisons
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
