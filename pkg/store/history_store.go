package store

import (
	"sort"
	"sync"
	"time"

	"github.com/borgmon/review-nudger/pkg/models"
	"github.com/google/uuid"
)

// historyRetention is how long answered prompts are kept for the tray summary
const historyRetention = 24 * time.Hour

// HistoryStore keeps the prompts shown during this session
type HistoryStore struct {
	mu sync.RWMutex

	// Map of prompt ID to record
	records map[string]*models.PromptRecord
}

// Summary counts today's prompts by outcome
type Summary struct {
	Prompts  int
	Started  int
	Snoozed  int
	Canceled int
	Deferred int
}

// NewHistoryStore creates a new HistoryStore instance
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		records: make(map[string]*models.PromptRecord),
	}
}

// Open records a prompt that is now on screen and returns its ID
func (hs *HistoryStore) Open(shownAt time.Time) string {
	return hs.add(&models.PromptRecord{
		Status:  models.PromptStatusPending,
		ShownAt: shownAt,
	})
}

// Defer records a prompt that was due but held back
func (hs *HistoryStore) Defer(shownAt time.Time, note string) string {
	return hs.add(&models.PromptRecord{
		Status:  models.PromptStatusDeferred,
		ShownAt: shownAt,
		Note:    note,
	})
}

func (hs *HistoryStore) add(rec *models.PromptRecord) string {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	rec.ID = uuid.New().String()
	hs.records[rec.ID] = rec
	hs.cleanupOld(rec.ShownAt.Add(-historyRetention))
	return rec.ID
}

// Resolve marks a pending prompt as answered
func (hs *HistoryStore) Resolve(id string, outcome models.Outcome, at time.Time) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if rec, exists := hs.records[id]; exists && rec.Status == models.PromptStatusPending {
		rec.Status = models.PromptStatusAnswered
		rec.Outcome = outcome
		rec.ResolvedAt = at
	}
}

// Get returns a copy of a record
func (hs *HistoryStore) Get(id string) (models.PromptRecord, bool) {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	rec, ok := hs.records[id]
	if !ok {
		return models.PromptRecord{}, false
	}
	return *rec, true
}

// Recent returns up to limit records, newest first
func (hs *HistoryStore) Recent(limit int) []models.PromptRecord {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	result := make([]models.PromptRecord, 0, len(hs.records))
	for _, rec := range hs.records {
		result = append(result, *rec)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ShownAt.After(result[j].ShownAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Summary counts the records shown on the same calendar day as now
func (hs *HistoryStore) Summary(now time.Time) Summary {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	today := models.DateKey(now)
	var s Summary
	for _, rec := range hs.records {
		if models.DateKey(rec.ShownAt) != today {
			continue
		}
		if rec.Status == models.PromptStatusDeferred {
			s.Deferred++
			continue
		}
		s.Prompts++
		switch rec.Outcome {
		case models.OutcomeStart:
			s.Started++
		case models.OutcomeSnooze:
			s.Snoozed++
		case models.OutcomeCancel:
			s.Canceled++
		}
	}
	return s
}

// cleanupOld removes records shown before cutoff; callers hold mu
func (hs *HistoryStore) cleanupOld(cutoff time.Time) {
	for id, rec := range hs.records {
		if rec.ShownAt.Before(cutoff) {
			delete(hs.records, id)
		}
	}
}
