package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/noah-isme/sma-report-card/internal/models"
	appErrors "github.com/noah-isme/sma-report-card/pkg/errors"
)

type reportCardEntry struct {
	mu   sync.Mutex
	card *models.ReportCard
}

// ReportCardRepository keeps report cards in memory keyed by student and year.
// Each card is guarded by its own mutex; callers touch a card only through With.
type ReportCardRepository struct {
	mu    sync.RWMutex
	cards map[models.ReportCardKey]*reportCardEntry
}

// NewReportCardRepository constructs an empty repository.
func NewReportCardRepository() *ReportCardRepository {
	return &ReportCardRepository{cards: make(map[models.ReportCardKey]*reportCardEntry)}
}

// Create registers card. It fails with a conflict when the key is taken.
func (r *ReportCardRepository) Create(ctx context.Context, card *models.ReportCard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := models.ReportCardKey{StudentID: card.StudentID(), Year: card.Year()}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.cards[key]; exists {
		return appErrors.Clone(appErrors.ErrConflict, "report card already exists")
	}
	r.cards[key] = &reportCardEntry{card: card}
	return nil
}

// With runs fn while holding the card's lock.
func (r *ReportCardRepository) With(ctx context.Context, key models.ReportCardKey, fn func(card *models.ReportCard) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	entry, ok := r.cards[key]
	r.mu.RUnlock()
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "report card not found")
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.card)
}

// Exists reports whether a card is registered under key.
func (r *ReportCardRepository) Exists(ctx context.Context, key models.ReportCardKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cards[key]
	return ok
}

// Keys lists registered keys ordered by student then year.
func (r *ReportCardRepository) Keys(ctx context.Context) []models.ReportCardKey {
	r.mu.RLock()
	keys := make([]models.ReportCardKey, 0, len(r.cards))
	for key := range r.cards {
		keys = append(keys, key)
	}
	r.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].StudentID != keys[j].StudentID {
			return keys[i].StudentID < keys[j].StudentID
		}
		return keys[i].Year < keys[j].Year
	})
	return keys
}

// Delete unregisters the card stored under key.
func (r *ReportCardRepository) Delete(ctx context.Context, key models.ReportCardKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cards[key]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "report card not found")
	}
	delete(r.cards, key)
	return nil
}

// Count returns the number of registered cards.
func (r *ReportCardRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cards)
}
