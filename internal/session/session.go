// Package session owns the mutable state of one ordering session: the menu
// forest and the selection ledger. The forest is only ever replaced wholesale
// behind an atomic pointer, so readers always see a complete snapshot and
// never a half-applied edit. All mutation goes through the single session
// instance, which serializes it with one mutex.
package session

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/yuchialin/canteend/internal/augment"
	"github.com/yuchialin/canteend/internal/document"
	"github.com/yuchialin/canteend/internal/history"
	"github.com/yuchialin/canteend/internal/models"
	"github.com/yuchialin/canteend/internal/repositories"
	"github.com/yuchialin/canteend/internal/selection"
)

type Session struct {
	docs     repositories.DocumentStore
	recorder *history.Recorder
	mapper   *document.Mapper
	rule     augment.Rule
	clock    history.Clock
	logger   *log.Logger
	ownerID  string

	forest atomic.Pointer[models.Forest]

	mu     sync.Mutex
	gen    int64 // bumped per reload; stale results are discarded
	ledger selection.Set
	subs   []chan models.Forest
}

func New(docs repositories.DocumentStore, recorder *history.Recorder, mapper *document.Mapper, rule augment.Rule, clock history.Clock, ownerID string, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	if clock == nil {
		clock = history.SystemClock{}
	}
	s := &Session{
		docs:     docs,
		recorder: recorder,
		mapper:   mapper,
		rule:     rule,
		clock:    clock,
		logger:   logger,
		ownerID:  ownerID,
		ledger:   selection.Clear(),
	}
	empty := models.Forest{}
	s.forest.Store(&empty)
	return s
}

// Snapshot returns the current forest. The value is immutable; callers may
// hold it across a reload and keep reading a consistent tree.
func (s *Session) Snapshot() models.Forest {
	return *s.forest.Load()
}

// Subscribe returns a channel that receives each newly published forest.
// Slow subscribers only miss intermediate snapshots, never the latest one.
func (s *Session) Subscribe() <-chan models.Forest {
	ch := make(chan models.Forest, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Reload fetches the documents, rebuilds and augments the forest, and swaps
// it in. If another reload started while this one was in flight, the result
// is stale and discarded rather than clobbering the newer state. Per-node
// mapping failures are logged and skipped; only a whole-call store failure
// surfaces.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	docs, err := s.docs.ListRestaurantDocuments(ctx)
	if err != nil {
		return err
	}

	forest, errs := s.mapper.ToForest(docs)
	for _, e := range errs {
		s.logger.Printf("reload: %v", e)
	}
	forest = s.rule.Apply(forest)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.logger.Printf("reload: discarding stale result (generation %d, current %d)", gen, s.gen)
		return nil
	}
	s.publish(forest)
	return nil
}

// publish swaps the forest and fans it out. Caller holds s.mu.
func (s *Session) publish(forest models.Forest) {
	s.forest.Store(&forest)
	for _, ch := range s.subs {
		select {
		case ch <- forest:
		default:
			// drop the stale snapshot so the latest one fits
			select {
			case <-ch:
			default:
			}
			ch <- forest
		}
	}
}

// Toggle flips item membership in the ledger.
func (s *Session) Toggle(item models.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = selection.Toggle(s.ledger, item)
}

// Selection returns a copy of the current ledger.
func (s *Session) Selection() selection.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(selection.Set, len(s.ledger))
	copy(out, s.ledger)
	return out
}

func (s *Session) Totals() (int, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return selection.Totals(s.ledger)
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = selection.Clear()
}

// Checkout finalizes the current selection against vendorName and persists
// the record. On success the ledger is cleared; on failure it is left intact
// so the user can retry, and the error says why.
func (s *Session) Checkout(ctx context.Context, vendorName string) (models.HistoryRecord, error) {
	s.mu.Lock()
	set := make(selection.Set, len(s.ledger))
	copy(set, s.ledger)
	s.mu.Unlock()

	if len(set) == 0 {
		return models.HistoryRecord{}, &models.ValidationError{Field: "selection", Value: "", Reason: "nothing selected"}
	}

	record := history.Finalize(vendorName, set, s.ownerID, s.clock)
	if err := s.recorder.Persist(ctx, record); err != nil {
		return models.HistoryRecord{}, err
	}

	s.mu.Lock()
	s.ledger = selection.Clear()
	s.mu.Unlock()
	return record, nil
}

// AddDynamicItem appends a user-contributed item to the synthetic vendor,
// persists the rewritten vendor document, and only then publishes the new
// forest. A failed upsert leaves the visible forest unchanged.
//
// The rewrite is derived from a snapshot taken before the upsert, so it
// carries the same generation guard as Reload: if a reload publishes while
// the upsert is in flight, the snapshot-derived forest is stale and is
// discarded rather than clobbering the newer one. The item is already
// persisted at that point and surfaces on the next reload.
func (s *Session) AddDynamicItem(ctx context.Context, vendorName string, item models.MenuItem) error {
	s.mu.Lock()
	gen := s.gen
	forest := *s.forest.Load()
	s.mu.Unlock()

	next, err := s.rule.AddDynamicItem(forest, vendorName, s.rule.CategoryLabel, item)
	if err != nil {
		return err
	}

	vendor, ok := next.Canteen(vendorName)
	if !ok {
		return &models.NotFoundError{Kind: "vendor", Name: vendorName}
	}
	if err := s.docs.UpsertRestaurantDocument(ctx, vendorName, s.mapper.ToDocument(vendor)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.logger.Printf("add item: discarding stale forest (generation %d, current %d); %q is persisted and appears on next reload", gen, s.gen, item.Name)
		return nil
	}
	s.gen++ // invalidate reloads still in flight against the pre-write forest
	s.publish(next)
	return nil
}

// History returns the owner's past orders, newest first.
func (s *Session) History(ctx context.Context) ([]models.HistoryRecord, error) {
	return s.recorder.FetchAll(ctx, s.ownerID)
}

// Close tears down subscriber channels. The session must not be used after.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}
