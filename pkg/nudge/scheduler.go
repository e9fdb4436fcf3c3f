// Package nudge holds the review reminder core: the due-time scheduler and the
// prompt state machine that drives it.
package nudge

import (
	"fmt"
	"sync"
	"time"

	"github.com/borgmon/review-nudger/pkg/logger"
	"github.com/borgmon/review-nudger/pkg/models"
)

// DefaultCancelDelay is how soon the prompt comes back after a cancel or a
// dismissal.
const DefaultCancelDelay = 120 * time.Second

// ReviewState is the host state name that counts as reviewing
const ReviewState = "review"

// ConfigSaver persists configuration changes
type ConfigSaver interface {
	Save(cfg *models.Config) error
}

// Reason explains a Tick decision
type Reason string

const (
	ReasonFire          Reason = "fire"
	ReasonDisabled      Reason = "disabled"
	ReasonDisabledToday Reason = "disabled_today"
	ReasonQuietHours    Reason = "quiet_hours"
	ReasonReviewing     Reason = "reviewing"
	ReasonNotDue        Reason = "not_due"
)

// State is a snapshot of the scheduler's mutable state
type State struct {
	LastActivity time.Time
	NextDue      time.Time
	DisableUntil string // "2006-01-02", empty when not disabled
}

// Scheduler tracks activity and decides when a review prompt is due
type Scheduler struct {
	mu sync.RWMutex

	cfg   *models.Config
	saver ConfigSaver
	now   func() time.Time

	cancelDelay time.Duration

	lastActivity time.Time
	nextDue      time.Time
	disableUntil string
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock replaces the wall clock used by activity events
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithCancelDelay overrides the short delay applied after a cancel
func WithCancelDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.cancelDelay = d
		}
	}
}

// New creates a Scheduler whose first prompt is one interval from now
func New(cfg *models.Config, saver ConfigSaver, opts ...Option) *Scheduler {
	if cfg == nil {
		cfg = models.DefaultConfig()
	}

	s := &Scheduler{
		cfg:         cfg.Clone(),
		saver:       saver,
		now:         time.Now,
		cancelDelay: DefaultCancelDelay,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.resetLocked(s.now())
	return s
}

// OnActivity records user activity and pushes the due time a full interval out
func (s *Scheduler) OnActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked(s.now())
}

// OnStateChange records activity when the host enters its review state
func (s *Scheduler) OnStateChange(newState string) {
	if newState != ReviewState {
		return
	}
	s.OnActivity()
}

// Tick reports whether a prompt should fire now. It does not modify state.
func (s *Scheduler) Tick(now time.Time, hostIsInReviewState bool) bool {
	return s.Decide(now, hostIsInReviewState) == ReasonFire
}

// Decide is Tick with the reason for the decision
func (s *Scheduler) Decide(now time.Time, hostIsInReviewState bool) Reason {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.cfg.Enabled {
		return ReasonDisabled
	}
	if s.disableUntil != "" && s.disableUntil == models.DateKey(now) {
		return ReasonDisabledToday
	}
	if s.cfg.QuietHours.IsQuietAt(now) {
		return ReasonQuietHours
	}
	if hostIsInReviewState {
		return ReasonReviewing
	}
	if now.Before(s.nextDue) {
		return ReasonNotDue
	}
	return ReasonFire
}

// ApplyOutcome applies the user's answer to a prompt. It returns true when the
// caller should begin a review session.
func (s *Scheduler) ApplyOutcome(outcome models.Outcome, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch outcome {
	case models.OutcomeStart:
		s.resetLocked(now)
		logger.Debug("Review started from prompt", "next_due", s.nextDue)
		return true
	case models.OutcomeSnooze:
		s.nextDue = now.Add(s.cfg.Snooze())
		logger.Debug("Prompt snoozed", "next_due", s.nextDue)
	case models.OutcomeDisableToday:
		s.disableUntil = models.DateKey(now)
		logger.Debug("Prompts disabled for today", "date", s.disableUntil)
	default:
		s.nextDue = now.Add(s.cancelDelay)
		logger.Debug("Prompt cancelled", "next_due", s.nextDue)
	}
	return false
}

// QuickSnooze defers the next prompt by the snooze length without a prompt
func (s *Scheduler) QuickSnooze(now time.Time) {
	s.ApplyOutcome(models.OutcomeSnooze, now)
}

// ResetToday clears a disable-for-today and restarts the interval
func (s *Scheduler) ResetToday() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disableUntil = ""
	s.resetLocked(s.now())
}

// ToggleEnabled flips the enabled flag and persists it. The in-memory flag is
// flipped even when saving fails.
func (s *Scheduler) ToggleEnabled() (bool, error) {
	s.mu.Lock()
	s.cfg.Enabled = !s.cfg.Enabled
	enabled := s.cfg.Enabled
	snapshot := s.cfg.Clone()
	s.mu.Unlock()

	if err := s.persist(snapshot); err != nil {
		return enabled, err
	}
	return enabled, nil
}

// SaveConfig persists a new configuration and restarts the interval from now
func (s *Scheduler) SaveConfig(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("save config: nil config")
	}
	snapshot := cfg.Clone()
	if err := s.persist(snapshot); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = snapshot
	s.resetLocked(s.now())
	return nil
}

// Config returns a copy of the current configuration
func (s *Scheduler) Config() *models.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// State returns a snapshot of the scheduler state
func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		LastActivity: s.lastActivity,
		NextDue:      s.nextDue,
		DisableUntil: s.disableUntil,
	}
}

func (s *Scheduler) persist(cfg *models.Config) error {
	if s.saver == nil {
		return nil
	}
	if err := s.saver.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// resetLocked must be called with mu held
func (s *Scheduler) resetLocked(now time.Time) {
	s.lastActivity = now
	s.nextDue = now.Add(s.cfg.Interval())
}
