package models

// Outcome is the user's answer to a review prompt
type Outcome string

const (
	OutcomeStart        Outcome = "start"
	OutcomeSnooze       Outcome = "snooze"
	OutcomeDisableToday Outcome = "disable_today"
	OutcomeCancel       Outcome = "cancel" // also used when the prompt is dismissed
)

// ParseOutcome maps a stored or typed value to an Outcome. Unknown values are
// treated as a dismissal.
func ParseOutcome(s string) Outcome {
	switch Outcome(s) {
	case OutcomeStart, OutcomeSnooze, OutcomeDisableToday:
		return Outcome(s)
	default:
		return OutcomeCancel
	}
}
