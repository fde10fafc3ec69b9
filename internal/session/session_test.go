package session

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuchialin/canteend/internal/augment"
	"github.com/yuchialin/canteend/internal/document"
	"github.com/yuchialin/canteend/internal/history"
	"github.com/yuchialin/canteend/internal/models"
)

type fakeDocStore struct {
	mu      sync.Mutex
	listFn     func(ctx context.Context) ([]models.RawDocument, error)
	upserts    map[string]models.RawDocument
	failUp     error
	upsertHook func() // runs at the top of every upsert
}

func (s *fakeDocStore) ListRestaurantDocuments(ctx context.Context) ([]models.RawDocument, error) {
	return s.listFn(ctx)
}

func (s *fakeDocStore) UpsertRestaurantDocument(_ context.Context, name string, doc models.RawDocument) error {
	if s.upsertHook != nil {
		s.upsertHook()
	}
	if s.failUp != nil {
		return s.failUp
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upserts == nil {
		s.upserts = map[string]models.RawDocument{}
	}
	s.upserts[name] = doc
	return nil
}

type fakeHistoryStore struct {
	appended []models.HistoryRecord
	failWith error
}

func (s *fakeHistoryStore) AppendHistory(_ context.Context, ownerID string, record models.HistoryRecord) error {
	if s.failWith != nil {
		return s.failWith
	}
	record.OwnerID = ownerID
	s.appended = append(s.appended, record)
	return nil
}

func (s *fakeHistoryStore) ListHistory(_ context.Context, _ string) ([]models.HistoryRecord, error) {
	return s.appended, nil
}

var testRule = augment.Rule{
	TriggerCanteen: "至善餐廳",
	VendorName:     "全家便利商店",
	CategoryLabel:  "分類",
}

func docsNamed(names ...string) []models.RawDocument {
	docs := make([]models.RawDocument, 0, len(names))
	for _, name := range names {
		docs = append(docs, models.RawDocument{"name": name, "items": []any{}})
	}
	return docs
}

func newTestSession(docs *fakeDocStore, hist *fakeHistoryStore) *Session {
	logger := log.New(io.Discard, "", 0)
	recorder := history.NewRecorder(hist, nil, logger)
	return New(docs, recorder, document.NewMapper(logger), testRule, history.SystemClock{}, "user-1", logger)
}

func TestReloadPublishesAugmentedForest(t *testing.T) {
	store := &fakeDocStore{listFn: func(context.Context) ([]models.RawDocument, error) {
		return docsNamed("至善餐廳"), nil
	}}
	sess := newTestSession(store, &fakeHistoryStore{})
	defer sess.Close()

	require.NoError(t, sess.Reload(context.Background()))

	forest := sess.Snapshot()
	require.Len(t, forest, 2)
	assert.Equal(t, "全家便利商店", forest[1].Name)
}

func TestReloadStoreFailureKeepsOldForest(t *testing.T) {
	calls := 0
	store := &fakeDocStore{listFn: func(context.Context) ([]models.RawDocument, error) {
		calls++
		if calls > 1 {
			return nil, &models.StoreError{Op: "list restaurant documents", Err: errors.New("backend down")}
		}
		return docsNamed("仰德餐廳"), nil
	}}
	sess := newTestSession(store, &fakeHistoryStore{})
	defer sess.Close()

	require.NoError(t, sess.Reload(context.Background()))
	before := sess.Snapshot()

	err := sess.Reload(context.Background())
	var storeErr *models.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, before, sess.Snapshot())
}

func TestStaleReloadDiscarded(t *testing.T) {
	gate := make(chan struct{})
	calls := make(chan int, 2)
	n := 0
	var mu sync.Mutex
	store := &fakeDocStore{listFn: func(context.Context) ([]models.RawDocument, error) {
		mu.Lock()
		n++
		call := n
		mu.Unlock()
		calls <- call
		if call == 1 {
			<-gate // first reload stalls until the second has finished
			return docsNamed("舊的餐廳"), nil
		}
		return docsNamed("新的餐廳"), nil
	}}
	sess := newTestSession(store, &fakeHistoryStore{})
	defer sess.Close()

	done := make(chan error, 1)
	go func() { done <- sess.Reload(context.Background()) }()
	<-calls // first reload is now in flight

	require.NoError(t, sess.Reload(context.Background()))
	<-calls
	fresh := sess.Snapshot()
	require.Len(t, fresh, 1)
	assert.Equal(t, "新的餐廳", fresh[0].Name)

	close(gate)
	require.NoError(t, <-done)

	// the stale result must not clobber the newer forest
	assert.Equal(t, fresh, sess.Snapshot())
}

func TestSubscribeSeesLatestForest(t *testing.T) {
	store := &fakeDocStore{listFn: func(context.Context) ([]models.RawDocument, error) {
		return docsNamed("仰德餐廳"), nil
	}}
	sess := newTestSession(store, &fakeHistoryStore{})
	defer sess.Close()

	updates := sess.Subscribe()
	require.NoError(t, sess.Reload(context.Background()))

	select {
	case forest := <-updates:
		require.Len(t, forest, 1)
		assert.Equal(t, "仰德餐廳", forest[0].Name)
	case <-time.After(time.Second):
		t.Fatal("no forest published")
	}
}

func TestCheckoutClearsSelectionOnSuccess(t *testing.T) {
	hist := &fakeHistoryStore{}
	sess := newTestSession(&fakeDocStore{listFn: func(context.Context) ([]models.RawDocument, error) {
		return nil, nil
	}}, hist)
	defer sess.Close()

	sess.Toggle(models.MenuItem{Name: "飯糰", Price: 25, Calories: 180})
	sess.Toggle(models.MenuItem{Name: "茶葉蛋", Price: 10, Calories: 70})

	record, err := sess.Checkout(context.Background(), "全家便利商店")
	require.NoError(t, err)
	assert.Equal(t, 35, record.TotalPrice)
	assert.Empty(t, sess.Selection())
	assert.Len(t, hist.appended, 1)
}

func TestCheckoutFailureKeepsSelection(t *testing.T) {
	hist := &fakeHistoryStore{failWith: &models.StoreError{Op: "append history", Err: errors.New("timeout")}}
	sess := newTestSession(&fakeDocStore{listFn: func(context.Context) ([]models.RawDocument, error) {
		return nil, nil
	}}, hist)
	defer sess.Close()

	sess.Toggle(models.MenuItem{Name: "飯糰", Price: 25, Calories: 180})

	_, err := sess.Checkout(context.Background(), "全家便利商店")
	require.Error(t, err)
	assert.Len(t, sess.Selection(), 1)
}

func TestCheckoutEmptySelectionRejected(t *testing.T) {
	sess := newTestSession(&fakeDocStore{listFn: func(context.Context) ([]models.RawDocument, error) {
		return nil, nil
	}}, &fakeHistoryStore{})
	defer sess.Close()

	_, err := sess.Checkout(context.Background(), "全家便利商店")
	var validation *models.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestAddDynamicItemPersistsAndPublishes(t *testing.T) {
	store := &fakeDocStore{listFn: func(context.Context) ([]models.RawDocument, error) {
		return docsNamed("至善餐廳"), nil
	}}
	sess := newTestSession(store, &fakeHistoryStore{})
	defer sess.Close()
	require.NoError(t, sess.Reload(context.Background()))

	err := sess.AddDynamicItem(context.Background(), "全家便利商店",
		models.MenuItem{Name: "飯糰", Price: 25, Calories: 180})
	require.NoError(t, err)

	cat, ok := sess.Snapshot().Category("全家便利商店", "全家便利商店", "分類")
	require.True(t, ok)
	assert.Len(t, cat.Items, 1)
	assert.Contains(t, store.upserts, "全家便利商店")
}

func TestAddDynamicItemDoesNotClobberConcurrentReload(t *testing.T) {
	entered := make(chan struct{})
	gate := make(chan struct{})
	calls := 0
	var mu sync.Mutex
	store := &fakeDocStore{
		listFn: func(context.Context) ([]models.RawDocument, error) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if calls > 1 {
				return docsNamed("至善餐廳", "新大樓餐廳"), nil
			}
			return docsNamed("至善餐廳"), nil
		},
	}
	store.upsertHook = func() {
		close(entered)
		<-gate // upsert stalls until the reload has published
	}
	sess := newTestSession(store, &fakeHistoryStore{})
	defer sess.Close()
	require.NoError(t, sess.Reload(context.Background()))

	done := make(chan error, 1)
	go func() {
		done <- sess.AddDynamicItem(context.Background(), "全家便利商店",
			models.MenuItem{Name: "飯糰", Price: 25, Calories: 180})
	}()
	<-entered // item write is now in flight

	require.NoError(t, sess.Reload(context.Background()))
	close(gate)
	require.NoError(t, <-done)

	// the forest derived from the pre-reload snapshot must not overwrite
	// the newer one; the persisted item surfaces on the next reload instead
	_, ok := sess.Snapshot().Canteen("新大樓餐廳")
	assert.True(t, ok)
	assert.Contains(t, store.upserts, "全家便利商店")
}

func TestAddDynamicItemUpsertFailureLeavesForest(t *testing.T) {
	store := &fakeDocStore{
		listFn: func(context.Context) ([]models.RawDocument, error) {
			return docsNamed("至善餐廳"), nil
		},
		failUp: &models.StoreError{Op: "upsert", Err: errors.New("backend down")},
	}
	sess := newTestSession(store, &fakeHistoryStore{})
	defer sess.Close()
	require.NoError(t, sess.Reload(context.Background()))
	before := sess.Snapshot()

	err := sess.AddDynamicItem(context.Background(), "全家便利商店",
		models.MenuItem{Name: "飯糰", Price: 25, Calories: 180})
	require.Error(t, err)
	assert.Equal(t, before, sess.Snapshot())
}
