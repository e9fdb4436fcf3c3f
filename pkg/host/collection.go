package host

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/borgmon/review-nudger/pkg/logger"
)

var (
	// ErrDeckNotFound is returned when a deck id is not in the collection
	ErrDeckNotFound = errors.New("deck not found")

	// ErrCollectionLocked is returned when the host holds the database lock
	// and no earlier deck list is available
	ErrCollectionLocked = errors.New("collection locked by host")
)

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// Deck is a review target in the host collection
type Deck struct {
	ID   int64
	Name string
}

// Collection reads decks from the host's collection database. It never writes.
// The host keeps the database locked while it runs, so the last list read is
// kept and served while the lock is held.
type Collection struct {
	path string

	mu     sync.Mutex
	cached []Deck
}

// NewCollection creates a reader for the database at path
func NewCollection(path string) *Collection {
	return &Collection{path: path}
}

// Path returns the database location
func (c *Collection) Path() string {
	return c.path
}

func (c *Collection) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+uriEscaper.Replace(c.path)+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}
	return db, nil
}

// Decks lists every deck, sorted by name ignoring case
func (c *Collection) Decks(ctx context.Context) ([]Deck, error) {
	decks, err := c.readDecks(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case err == nil:
		c.cached = make([]Deck, len(decks))
		copy(c.cached, decks)
		return decks, nil
	case !isLocked(err):
		return nil, err
	case c.cached != nil:
		logger.Debug("Collection locked, using last deck list", "path", c.path)
		return append([]Deck(nil), c.cached...), nil
	default:
		logger.Warn("Collection locked by host", "path", c.path, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCollectionLocked, err)
	}
}

func (c *Collection) readDecks(ctx context.Context) ([]Deck, error) {
	db, err := c.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	decks, err := queryDeckTable(ctx, db)
	if err != nil {
		// Older collections keep decks as JSON in the col row
		decks, err = queryLegacyDecks(ctx, db)
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(decks, func(i, j int) bool {
		return strings.ToLower(decks[i].Name) < strings.ToLower(decks[j].Name)
	})
	return decks, nil
}

// Deck looks up a single deck by id
func (c *Collection) Deck(ctx context.Context, id int64) (Deck, error) {
	decks, err := c.Decks(ctx)
	if err != nil {
		return Deck{}, err
	}
	for _, d := range decks {
		if d.ID == id {
			return d, nil
		}
	}
	return Deck{}, fmt.Errorf("deck %d: %w", id, ErrDeckNotFound)
}

func isLocked(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}

func queryDeckTable(ctx context.Context, db *sql.DB) ([]Deck, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, name FROM decks")
	if err != nil {
		return nil, fmt.Errorf("failed to query decks: %w", err)
	}
	defer rows.Close()

	var decks []Deck
	for rows.Next() {
		var d Deck
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		// Nested deck names are stored with a unit separator
		d.Name = strings.ReplaceAll(d.Name, "\x1f", "::")
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read decks: %w", err)
	}
	return decks, nil
}

func queryLegacyDecks(ctx context.Context, db *sql.DB) ([]Deck, error) {
	var raw string
	err := db.QueryRowContext(ctx, "SELECT decks FROM col LIMIT 1").Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query legacy decks: %w", err)
	}

	var stored map[string]struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("failed to decode legacy decks: %w", err)
	}

	decks := make([]Deck, 0, len(stored))
	for key, d := range stored {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		decks = append(decks, Deck{ID: id, Name: d.Name})
	}
	return decks, nil
}
