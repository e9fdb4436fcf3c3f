package nudge

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/review-nudger/pkg/models"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type memSaver struct {
	saved []*models.Config
	err   error
}

func (m *memSaver) Save(cfg *models.Config) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, cfg.Clone())
	return nil
}

// noon on a fixed day keeps tests clear of quiet hours and date rollover
func noon() time.Time {
	return time.Date(2026, 10, 19, 12, 0, 0, 0, time.Local)
}

func newTestScheduler(t *testing.T, mutate func(*models.Config)) (*Scheduler, *fakeClock, *memSaver) {
	t.Helper()
	cfg := models.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	clock := &fakeClock{t: noon()}
	saver := &memSaver{}
	return New(cfg, saver, WithClock(clock.Now)), clock, saver
}

func TestTickRespectsInterval(t *testing.T) {
	for _, minutes := range []float64{1, 5, 30, 90} {
		s, clock, _ := newTestScheduler(t, func(c *models.Config) { c.IntervalMinutes = minutes })
		start := clock.Now()
		s.OnActivity()

		interval := time.Duration(minutes) * time.Minute
		assert.False(t, s.Tick(start, false))
		assert.False(t, s.Tick(start.Add(interval-time.Second), false))
		assert.True(t, s.Tick(start.Add(interval), false))
		assert.True(t, s.Tick(start.Add(interval+time.Hour), false))
	}
}

func TestConstructionSchedulesFirstPrompt(t *testing.T) {
	s, clock, _ := newTestScheduler(t, nil)

	st := s.State()
	assert.Equal(t, clock.Now(), st.LastActivity)
	assert.Equal(t, clock.Now().Add(30*time.Minute), st.NextDue)
	assert.Empty(t, st.DisableUntil)
}

func TestTickGuardOrder(t *testing.T) {
	s, clock, _ := newTestScheduler(t, func(c *models.Config) {
		c.IntervalMinutes = 1
		c.QuietHours = models.QuietHours{Start: 12, End: 13}
	})
	due := clock.Now().Add(2 * time.Minute)

	assert.Equal(t, ReasonQuietHours, s.Decide(due, true))

	s.ApplyOutcome(models.OutcomeDisableToday, due)
	assert.Equal(t, ReasonDisabledToday, s.Decide(due, true))

	_, err := s.ToggleEnabled()
	require.NoError(t, err)
	assert.Equal(t, ReasonDisabled, s.Decide(due, true))
}

func TestTickSuppressedWhileReviewing(t *testing.T) {
	s, clock, _ := newTestScheduler(t, func(c *models.Config) { c.IntervalMinutes = 1 })
	due := clock.Now().Add(time.Hour)

	assert.Equal(t, ReasonReviewing, s.Decide(due, true))
	assert.False(t, s.Tick(due, true))
	assert.True(t, s.Tick(due, false))
}

func TestTickQuietHoursOvernight(t *testing.T) {
	s, clock, _ := newTestScheduler(t, func(c *models.Config) {
		c.IntervalMinutes = 1
		c.QuietHours = models.QuietHours{Start: 22, End: 7}
	})
	day := clock.Now()

	late := time.Date(day.Year(), day.Month(), day.Day(), 23, 0, 0, 0, time.Local)
	early := time.Date(day.Year(), day.Month(), day.Day()+1, 3, 0, 0, 0, time.Local)
	midday := time.Date(day.Year(), day.Month(), day.Day(), 12, 30, 0, 0, time.Local)

	assert.False(t, s.Tick(late, false))
	assert.False(t, s.Tick(early, false))
	assert.True(t, s.Tick(midday, false))
}

func TestDisableTodayRevertsNextDay(t *testing.T) {
	s, clock, _ := newTestScheduler(t, func(c *models.Config) { c.IntervalMinutes = 1 })
	now := clock.Now()

	assert.False(t, s.ApplyOutcome(models.OutcomeDisableToday, now))
	assert.Equal(t, models.DateKey(now), s.State().DisableUntil)

	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.Local)
	for _, ts := range []time.Time{now, now.Add(3 * time.Hour), endOfDay} {
		assert.False(t, s.Tick(ts, false), "tick at %s", ts)
	}

	tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 1, 0, time.Local)
	assert.True(t, s.Tick(tomorrow, false))
}

func TestSnoozeOverridesDueTime(t *testing.T) {
	s, clock, _ := newTestScheduler(t, func(c *models.Config) { c.SnoozeMinutes = 5 })
	now := clock.Now().Add(45 * time.Minute)

	assert.False(t, s.ApplyOutcome(models.OutcomeSnooze, now))

	assert.Equal(t, now.Add(300*time.Second), s.State().NextDue)
	assert.False(t, s.Tick(now.Add(299*time.Second), false))
	assert.True(t, s.Tick(now.Add(300*time.Second), false))
}

func TestSnoozeCanPushDueEarlier(t *testing.T) {
	s, clock, _ := newTestScheduler(t, func(c *models.Config) { c.SnoozeMinutes = 5 })
	now := clock.Now()

	s.QuickSnooze(now)
	assert.Equal(t, now.Add(5*time.Minute), s.State().NextDue)
}

func TestCancelUsesShortDelay(t *testing.T) {
	s, clock, _ := newTestScheduler(t, func(c *models.Config) { c.IntervalMinutes = 240 })
	now := clock.Now().Add(5 * time.Hour)

	s.ApplyOutcome(models.OutcomeCancel, now)
	assert.Equal(t, now.Add(120*time.Second), s.State().NextDue)
	assert.False(t, s.Tick(now.Add(119*time.Second), false))
	assert.True(t, s.Tick(now.Add(120*time.Second), false))
}

func TestUnknownOutcomeActsAsCancel(t *testing.T) {
	s, clock, _ := newTestScheduler(t, nil)
	now := clock.Now()

	s.ApplyOutcome(models.Outcome("closed"), now)
	assert.Equal(t, now.Add(DefaultCancelDelay), s.State().NextDue)
}

func TestCancelDelayOption(t *testing.T) {
	clock := &fakeClock{t: noon()}
	s := New(models.DefaultConfig(), nil, WithClock(clock.Now), WithCancelDelay(30*time.Second))

	s.ApplyOutcome(models.OutcomeCancel, clock.Now())
	assert.Equal(t, clock.Now().Add(30*time.Second), s.State().NextDue)
}

func TestStartResetsFullInterval(t *testing.T) {
	s, clock, _ := newTestScheduler(t, func(c *models.Config) { c.IntervalMinutes = 10 })
	now := clock.Now().Add(time.Hour)

	assert.True(t, s.ApplyOutcome(models.OutcomeStart, now))

	st := s.State()
	assert.Equal(t, now, st.LastActivity)
	assert.Equal(t, now.Add(10*time.Minute), st.NextDue)
}

func TestOnActivityIsIdempotent(t *testing.T) {
	s, clock, _ := newTestScheduler(t, nil)
	clock.Advance(7 * time.Minute)

	s.OnActivity()
	once := s.State().NextDue
	s.OnActivity()

	assert.Equal(t, once, s.State().NextDue)
	assert.Equal(t, clock.Now().Add(30*time.Minute), once)
}

func TestOnStateChangeOnlyForReview(t *testing.T) {
	s, clock, _ := newTestScheduler(t, nil)
	before := s.State().NextDue
	clock.Advance(10 * time.Minute)

	s.OnStateChange("deckBrowser")
	assert.Equal(t, before, s.State().NextDue)

	s.OnStateChange(ReviewState)
	assert.Equal(t, clock.Now().Add(30*time.Minute), s.State().NextDue)
}

func TestResetTodayClearsDisable(t *testing.T) {
	s, clock, _ := newTestScheduler(t, func(c *models.Config) { c.IntervalMinutes = 1 })
	s.ApplyOutcome(models.OutcomeDisableToday, clock.Now())

	clock.Advance(time.Minute)
	s.ResetToday()

	st := s.State()
	assert.Empty(t, st.DisableUntil)
	assert.Equal(t, clock.Now().Add(time.Minute), st.NextDue)
	assert.True(t, s.Tick(clock.Now().Add(time.Minute), false))
}

func TestToggleEnabledPersists(t *testing.T) {
	s, _, saver := newTestScheduler(t, nil)

	enabled, err := s.ToggleEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)
	require.Len(t, saver.saved, 1)
	assert.False(t, saver.saved[0].Enabled)

	enabled, err = s.ToggleEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.True(t, saver.saved[1].Enabled)
}

func TestToggleEnabledSaveError(t *testing.T) {
	s, _, saver := newTestScheduler(t, nil)
	saver.err = errors.New("disk full")

	enabled, err := s.ToggleEnabled()
	assert.Error(t, err)
	assert.False(t, enabled)
	assert.False(t, s.Config().Enabled)
}

func TestSaveConfigReschedules(t *testing.T) {
	s, clock, saver := newTestScheduler(t, nil)
	clock.Advance(20 * time.Minute)

	cfg := s.Config()
	cfg.IntervalMinutes = 2
	require.NoError(t, s.SaveConfig(cfg))

	assert.Len(t, saver.saved, 1)
	assert.Equal(t, 2*time.Minute, s.Config().Interval())
	assert.Equal(t, clock.Now().Add(2*time.Minute), s.State().NextDue)
}

func TestSaveConfigErrorKeepsOldConfig(t *testing.T) {
	s, _, saver := newTestScheduler(t, nil)
	saver.err = errors.New("read-only")

	cfg := s.Config()
	cfg.IntervalMinutes = 2
	assert.Error(t, s.SaveConfig(cfg))
	assert.Equal(t, 30*time.Minute, s.Config().Interval())
	assert.Error(t, s.SaveConfig(nil))
}

func TestConfigReturnsCopy(t *testing.T) {
	s, _, _ := newTestScheduler(t, nil)

	cfg := s.Config()
	cfg.Enabled = false
	assert.True(t, s.Config().Enabled)
}

func TestEndToEndOneMinuteInterval(t *testing.T) {
	cfg := models.ConfigFromMap(map[string]any{
		"interval_minutes": 1,
		"quiet_hours":      map[string]any{"start": 25, "end": 26},
		"enabled":          true,
	})
	clock := &fakeClock{t: noon()}
	s := New(cfg, nil, WithClock(clock.Now))
	start := clock.Now()

	fired := start.Add(61 * time.Second)
	require.True(t, s.Tick(fired, false))

	assert.True(t, s.ApplyOutcome(models.OutcomeStart, fired))
	assert.False(t, s.Tick(fired.Add(59*time.Second), false))
	assert.True(t, s.Tick(fired.Add(60*time.Second), false))
}
