package host

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCollection(t *testing.T, stmts ...string) string {
	t.Helper()
	return createCollectionIn(t, t.TempDir(), stmts...)
}

func createCollectionIn(t *testing.T, dir string, stmts ...string) string {
	t.Helper()
	path := filepath.Join(dir, "collection.anki2")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}

func TestCollectionDecksModernSchema(t *testing.T) {
	path := createCollection(t,
		`CREATE TABLE decks (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		"INSERT INTO decks (id, name) VALUES (1700000000001, 'Spanish\x1fVerbs')",
		`INSERT INTO decks (id, name) VALUES (1, 'art')`,
		`INSERT INTO decks (id, name) VALUES (1700000000002, 'Biology')`,
	)

	decks, err := NewCollection(path).Decks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Deck{
		{ID: 1, Name: "art"},
		{ID: 1700000000002, Name: "Biology"},
		{ID: 1700000000001, Name: "Spanish::Verbs"},
	}, decks)
}

func TestCollectionDecksLegacySchema(t *testing.T) {
	path := createCollection(t,
		`CREATE TABLE col (id INTEGER PRIMARY KEY, decks TEXT NOT NULL)`,
		`INSERT INTO col (id, decks) VALUES (1, '{"1":{"name":"Default"},"1700000000123":{"name":"Kanji"},"bogus":{"name":"Skipped"}}')`,
	)

	decks, err := NewCollection(path).Decks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Deck{
		{ID: 1, Name: "Default"},
		{ID: 1700000000123, Name: "Kanji"},
	}, decks)
}

func TestCollectionDeckLookup(t *testing.T) {
	path := createCollection(t,
		`CREATE TABLE decks (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`INSERT INTO decks (id, name) VALUES (7, 'Kanji')`,
	)
	c := NewCollection(path)

	deck, err := c.Deck(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Kanji", deck.Name)

	_, err = c.Deck(context.Background(), 8)
	assert.ErrorIs(t, err, ErrDeckNotFound)
}

func TestCollectionUnknownSchema(t *testing.T) {
	path := createCollection(t, `CREATE TABLE notes (id INTEGER PRIMARY KEY)`)

	_, err := NewCollection(path).Decks(context.Background())
	assert.Error(t, err)
}

func TestCollectionPathWithURIChars(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile #2 100%")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := createCollectionIn(t, dir,
		`CREATE TABLE decks (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`INSERT INTO decks (id, name) VALUES (3, 'Kanji')`,
	)

	decks, err := NewCollection(path).Decks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Deck{{ID: 3, Name: "Kanji"}}, decks)
}

// lockCollection holds an exclusive lock the way a running host does
func lockCollection(t *testing.T, path string) {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, "BEGIN EXCLUSIVE")
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = conn.ExecContext(ctx, "ROLLBACK")
		conn.Close()
		db.Close()
	})
}

func TestCollectionLockedServesLastList(t *testing.T) {
	path := createCollection(t,
		`CREATE TABLE decks (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`INSERT INTO decks (id, name) VALUES (7, 'Kanji')`,
	)
	c := NewCollection(path)
	_, err := c.Decks(context.Background())
	require.NoError(t, err)

	lockCollection(t, path)

	deck, err := c.Deck(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Kanji", deck.Name)

	// Nothing read yet: the lock is reported as such
	_, err = NewCollection(path).Decks(context.Background())
	assert.ErrorIs(t, err, ErrCollectionLocked)
	assert.NotErrorIs(t, err, ErrDeckNotFound)
}
