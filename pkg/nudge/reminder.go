package nudge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/borgmon/review-nudger/pkg/logger"
	"github.com/borgmon/review-nudger/pkg/models"
)

// DefaultTickInterval is how often the reminder asks the scheduler whether a
// prompt is due.
const DefaultTickInterval = 15 * time.Second

// Phase is the reminder's position in its prompt cycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDue
	PhasePrompting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDue:
		return "due"
	case PhasePrompting:
		return "prompting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Host is the application the reminder nudges the user back into
type Host interface {
	InReview() bool
	StartReview(ctx context.Context, target *int64) error
	Notify(msg string)
}

// Prompt describes the prompt shown to the user
type Prompt struct {
	ID            string
	SnoozeMinutes int
}

// Prompter shows a prompt and calls respond exactly once with the answer
type Prompter interface {
	Prompt(p Prompt, respond func(models.Outcome))
}

// Focuser brings the host window to the foreground. Best effort.
type Focuser interface {
	BringToFront()
}

// BusyChecker reports whether the user is busy elsewhere, e.g. in a meeting
type BusyChecker interface {
	BusyAt(t time.Time) (bool, string)
}

// Recorder keeps a history of prompts
type Recorder interface {
	Open(shownAt time.Time) string
	Defer(shownAt time.Time, note string) string
	Resolve(id string, outcome models.Outcome, at time.Time)
}

// Reminder runs the Idle -> Due -> Prompting cycle on top of a Scheduler
type Reminder struct {
	mu sync.Mutex

	sched    *Scheduler
	host     Host
	prompter Prompter
	focuser  Focuser
	busy     BusyChecker
	recorder Recorder
	now      func() time.Time

	phase    Phase
	promptID string

	// next_due of the cycle whose deferral was already recorded
	deferredFor time.Time
}

// ReminderOption configures a Reminder
type ReminderOption func(*Reminder)

// WithFocuser sets the capability used to raise the host before prompting
func WithFocuser(f Focuser) ReminderOption {
	return func(r *Reminder) { r.focuser = f }
}

// WithBusyChecker holds prompts back while the checker reports busy
func WithBusyChecker(b BusyChecker) ReminderOption {
	return func(r *Reminder) { r.busy = b }
}

// WithRecorder records every prompt and its outcome
func WithRecorder(rec Recorder) ReminderOption {
	return func(r *Reminder) { r.recorder = rec }
}

// WithReminderClock replaces the clock used when outcomes are applied
func WithReminderClock(now func() time.Time) ReminderOption {
	return func(r *Reminder) { r.now = now }
}

// NewReminder wires a scheduler to a host and a prompter
func NewReminder(sched *Scheduler, host Host, prompter Prompter, opts ...ReminderOption) *Reminder {
	r := &Reminder{
		sched:    sched,
		host:     host,
		prompter: prompter,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Phase returns the current phase
func (r *Reminder) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Run checks on every tick until the context is cancelled
func (r *Reminder) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = DefaultTickInterval
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			r.Check(ctx, t)
		}
	}
}

// Check runs one tick. It returns true when a prompt was shown.
func (r *Reminder) Check(ctx context.Context, now time.Time) bool {
	r.mu.Lock()
	if r.phase != PhaseIdle {
		r.mu.Unlock()
		return false
	}

	reviewing := r.host != nil && r.host.InReview()
	if reason := r.sched.Decide(now, reviewing); reason != ReasonFire {
		r.mu.Unlock()
		logger.Debug("Tick", "decision", reason)
		return false
	}
	r.phase = PhaseDue

	if r.busy != nil {
		if busy, what := r.busy.BusyAt(now); busy {
			r.phase = PhaseIdle
			due := r.sched.State().NextDue
			first := !due.Equal(r.deferredFor)
			r.deferredFor = due
			r.mu.Unlock()
			if !first {
				logger.Debug("Prompt still held back by calendar", "event", what)
				return false
			}
			if r.recorder != nil {
				r.recorder.Defer(now, what)
			}
			logger.Info("Prompt held back by calendar", "event", what)
			return false
		}
	}

	id := ""
	if r.recorder != nil {
		id = r.recorder.Open(now)
	}
	r.promptID = id
	r.phase = PhasePrompting
	snooze := r.sched.Config().SnoozeLabelMinutes()
	r.mu.Unlock()

	logger.Info("Prompting for review", "prompt", id)
	var once sync.Once
	r.prompter.Prompt(Prompt{ID: id, SnoozeMinutes: snooze}, func(outcome models.Outcome) {
		once.Do(func() {
			r.respond(ctx, id, outcome)
		})
	})

	// The prompt must win focus over whatever the user is doing
	if r.focuser != nil {
		r.focuser.BringToFront()
	}
	return true
}

func (r *Reminder) respond(ctx context.Context, id string, outcome models.Outcome) {
	r.mu.Lock()
	if r.phase != PhasePrompting || r.promptID != id {
		r.mu.Unlock()
		return
	}
	now := r.now()
	start := r.sched.ApplyOutcome(outcome, now)
	r.phase = PhaseIdle
	r.promptID = ""
	r.mu.Unlock()

	if r.recorder != nil && id != "" {
		r.recorder.Resolve(id, outcome, now)
	}
	logger.Info("Prompt answered", "prompt", id, "outcome", outcome)

	switch outcome {
	case models.OutcomeSnooze:
		r.notify(fmt.Sprintf("Snoozed for %d minutes", r.sched.Config().SnoozeLabelMinutes()))
	case models.OutcomeDisableToday:
		r.notify("Disabled for today")
	}

	if start && r.host != nil {
		if err := r.host.StartReview(ctx, r.sched.Config().TargetResourceID); err != nil {
			logger.Warn("Could not start review", "error", err)
			r.notify("Could not start review automatically. Open your deck to begin.")
		}
	}
}

func (r *Reminder) notify(msg string) {
	if r.host != nil {
		r.host.Notify(msg)
	}
}
