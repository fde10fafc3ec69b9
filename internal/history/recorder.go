// Package history turns a finalized selection into an immutable order record
// and moves records in and out of the history store. Record construction and
// persistence are separate steps that fail independently: a store failure
// never mutates the selection, so the caller can retry or abandon at will.
package history

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/lucsky/cuid"
	"github.com/yuchialin/canteend/internal/models"
	"github.com/yuchialin/canteend/internal/repositories"
	"github.com/yuchialin/canteend/internal/selection"
)

// Clock supplies timestamps so finalize is deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// EventPublisher receives a committed record after a successful persist.
// Publishing is best effort and never fails the order.
type EventPublisher interface {
	PublishCommitted(record models.HistoryRecord) error
}

type Recorder struct {
	Store  repositories.HistoryStore
	Events EventPublisher
	Logger *log.Logger
}

func NewRecorder(store repositories.HistoryStore, events EventPublisher, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{Store: store, Events: events, Logger: logger}
}

// Finalize builds an immutable record from the current selection. Pure
// construction: no I/O happens here and the selection is copied, not
// referenced, so later ledger mutations cannot leak into the record.
func Finalize(vendorName string, set selection.Set, ownerID string, clock Clock) models.HistoryRecord {
	items := make([]models.MenuItem, len(set))
	copy(items, set)
	totalPrice, totalCalories := selection.Totals(set)
	return models.HistoryRecord{
		ID:             cuid.New(),
		RestaurantName: vendorName,
		Items:          items,
		TotalPrice:     totalPrice,
		TotalCalories:  totalCalories,
		Timestamp:      clock.Now().UnixMilli(),
		OwnerID:        ownerID,
	}
}

// Persist writes the record to the history store. On success the committed
// event is published, with publish failures logged and swallowed. On failure
// the error surfaces to the caller and nothing else changes; whether to
// retry is the caller's decision.
func (r *Recorder) Persist(ctx context.Context, record models.HistoryRecord) error {
	if err := r.Store.AppendHistory(ctx, record.OwnerID, record); err != nil {
		return err
	}
	if r.Events != nil {
		if err := r.Events.PublishCommitted(record); err != nil {
			r.Logger.Printf("order %s committed but event publish failed: %v", record.ID, err)
		}
	}
	return nil
}

// FetchAll returns the owner's history newest first. A store failure yields
// an empty slice together with the error, so callers can render an empty
// state while still distinguishing it from genuinely absent history.
func (r *Recorder) FetchAll(ctx context.Context, ownerID string) ([]models.HistoryRecord, error) {
	records, err := r.Store.ListHistory(ctx, ownerID)
	if err != nil {
		return []models.HistoryRecord{}, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
	return records, nil
}
