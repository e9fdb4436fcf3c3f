package models

import "time"

// Event represents a calendar event that blocks reminders while it runs
type Event struct {
	ID        string    // iCal event UID
	Title     string    // Event title/summary
	StartTime time.Time // Event start time
	EndTime   time.Time // Event end time
	Status    string    // Event status (CONFIRMED, CANCELLED, TENTATIVE)
	SourceID  string    // Path of the calendar file this event came from
}

// Covers reports whether t falls inside the event
func (e Event) Covers(t time.Time) bool {
	return !t.Before(e.StartTime) && t.Before(e.EndTime)
}
