package host

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/borgmon/review-nudger/pkg/logger"
)

const (
	// DefaultReviewWindow is how recently the collection must have been written
	// for the host to count as reviewing
	DefaultReviewWindow = 90 * time.Second

	deckNotFoundNotice = "Configured deck not found; using current deck"
)

// ErrNoLaunchCommand is returned by StartReview when nothing is configured
var ErrNoLaunchCommand = errors.New("no launch command configured")

// ProcessState reports whether the host is running
type ProcessState interface {
	Running() bool
}

// ActivityClock reports when the host last touched its collection
type ActivityClock interface {
	LastActivity() time.Time
}

// DeckLookup resolves deck ids
type DeckLookup interface {
	Deck(ctx context.Context, id int64) (Deck, error)
}

var startCommandFunc = func(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Debug("Launch command exited", "error", err)
		}
	}()
	return nil
}

// DesktopOptions configures a Desktop host
type DesktopOptions struct {
	// Launch is the command line that opens a review. {deck} and {deck_id}
	// are replaced with the target deck, or empty for the current deck.
	Launch       string
	ReviewWindow time.Duration
	Notify       func(msg string)
	Now          func() time.Time
}

// Desktop is the host boundary for a flashcard application running as a
// separate desktop process
type Desktop struct {
	process  ProcessState
	activity ActivityClock
	decks    DeckLookup
	opts     DesktopOptions
}

// NewDesktop creates a Desktop host. Any of process, activity and decks may
// be nil when the matching flag is not set.
func NewDesktop(process ProcessState, activity ActivityClock, decks DeckLookup, opts DesktopOptions) *Desktop {
	if opts.ReviewWindow <= 0 {
		opts.ReviewWindow = DefaultReviewWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Desktop{
		process:  process,
		activity: activity,
		decks:    decks,
		opts:     opts,
	}
}

// InReview reports whether the user is reviewing right now: the host is
// running and its collection was written within the review window
func (d *Desktop) InReview() bool {
	if d.process == nil || d.activity == nil {
		return false
	}
	if !d.process.Running() {
		return false
	}
	last := d.activity.LastActivity()
	if last.IsZero() {
		return false
	}
	return d.opts.Now().Sub(last) < d.opts.ReviewWindow
}

// StartReview opens a review of target, or of the host's current deck when
// target is nil or no longer exists
func (d *Desktop) StartReview(ctx context.Context, target *int64) error {
	deck := d.resolve(ctx, target)

	args := launchArgs(d.opts.Launch, deck)
	if len(args) == 0 {
		return ErrNoLaunchCommand
	}

	if deck != nil {
		logger.Info("Starting review", "command", args[0], "deck", deck.Name)
	} else {
		logger.Info("Starting review of current deck", "command", args[0])
	}
	if err := startCommandFunc(args[0], args[1:]...); err != nil {
		return fmt.Errorf("failed to launch review: %w", err)
	}
	return nil
}

// Notify shows a short informational message
func (d *Desktop) Notify(msg string) {
	if d.opts.Notify == nil {
		logger.Info(msg)
		return
	}
	d.opts.Notify(msg)
}

func (d *Desktop) resolve(ctx context.Context, target *int64) *Deck {
	if target == nil {
		return nil
	}
	if d.decks == nil {
		d.Notify(deckNotFoundNotice)
		return nil
	}

	deck, err := d.decks.Deck(ctx, *target)
	if err != nil {
		switch {
		case errors.Is(err, ErrCollectionLocked):
			logger.Warn("Collection locked before any deck list was read", "id", *target)
		case !errors.Is(err, ErrDeckNotFound):
			logger.Warn("Deck lookup failed", "id", *target, "error", err)
		}
		d.Notify(deckNotFoundNotice)
		return nil
	}
	return &deck
}

// launchArgs splits the command line and fills the deck placeholders
func launchArgs(command string, deck *Deck) []string {
	var name, id string
	if deck != nil {
		name = deck.Name
		id = strconv.FormatInt(deck.ID, 10)
	}

	fields := strings.Fields(command)
	args := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, "{deck_id}", id)
		f = strings.ReplaceAll(f, "{deck}", name)
		if f == "" {
			continue
		}
		args = append(args, f)
	}
	return args
}
