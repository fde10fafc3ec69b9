package history

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuchialin/canteend/internal/models"
	"github.com/yuchialin/canteend/internal/selection"
)

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }

type fakeHistoryStore struct {
	appended []models.HistoryRecord
	failWith error
	listing  []models.HistoryRecord
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
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.listing, nil
}

type capturingPublisher struct {
	published []models.HistoryRecord
	failWith  error
}

func (p *capturingPublisher) PublishCommitted(record models.HistoryRecord) error {
	if p.failWith != nil {
		return p.failWith
	}
	p.published = append(p.published, record)
	return nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestFinalize(t *testing.T) {
	clock := fixedClock{at: time.UnixMilli(1700000000000)}
	set := selection.Set{
		{Name: "飯糰", Price: 25, Calories: 180},
		{Name: "茶葉蛋", Price: 10, Calories: 70},
	}

	record := Finalize("全家便利商店", set, "user-1", clock)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "全家便利商店", record.RestaurantName)
	assert.Equal(t, 35, record.TotalPrice)
	assert.Equal(t, 250.0, record.TotalCalories)
	assert.Equal(t, int64(1700000000000), record.Timestamp)
	assert.Equal(t, "user-1", record.OwnerID)
	assert.Equal(t, []models.MenuItem(set), record.Items)
}

func TestFinalizeCopiesSelection(t *testing.T) {
	set := selection.Set{{Name: "飯糰", Price: 25, Calories: 180}}
	record := Finalize("全家便利商店", set, "user-1", fixedClock{at: time.Unix(0, 0)})

	set[0].Name = "mutated"
	assert.Equal(t, "飯糰", record.Items[0].Name)
}

func TestPersistFailureLeavesSelectionIntact(t *testing.T) {
	store := &fakeHistoryStore{failWith: &models.StoreError{Op: "append history", Err: errors.New("network down")}}
	recorder := NewRecorder(store, nil, quietLogger())

	set := selection.Set{
		{Name: "飯糰", Price: 25, Calories: 180},
		{Name: "茶葉蛋", Price: 10, Calories: 70},
	}
	record := Finalize("全家便利商店", set, "user-1", fixedClock{at: time.Unix(1, 0)})

	err := recorder.Persist(context.Background(), record)
	var storeErr *models.StoreError
	require.ErrorAs(t, err, &storeErr)

	// the record and the ledger both survive for a retry
	assert.Len(t, set, 2)
	assert.Len(t, record.Items, 2)
	assert.Empty(t, store.appended)
}

func TestPersistPublishesCommittedEvent(t *testing.T) {
	store := &fakeHistoryStore{}
	events := &capturingPublisher{}
	recorder := NewRecorder(store, events, quietLogger())

	record := Finalize("全家便利商店", selection.Set{{Name: "飯糰", Price: 25, Calories: 180}}, "user-1", fixedClock{at: time.Unix(1, 0)})
	require.NoError(t, recorder.Persist(context.Background(), record))

	require.Len(t, events.published, 1)
	assert.Equal(t, record.ID, events.published[0].ID)
}

func TestPersistSwallowsPublishFailure(t *testing.T) {
	store := &fakeHistoryStore{}
	events := &capturingPublisher{failWith: errors.New("broker unreachable")}
	recorder := NewRecorder(store, events, quietLogger())

	record := Finalize("全家便利商店", selection.Set{{Name: "飯糰", Price: 25, Calories: 180}}, "user-1", fixedClock{at: time.Unix(1, 0)})
	assert.NoError(t, recorder.Persist(context.Background(), record))
	assert.Len(t, store.appended, 1)
}

func TestFetchAllSortsNewestFirst(t *testing.T) {
	store := &fakeHistoryStore{listing: []models.HistoryRecord{
		{ID: "a", Timestamp: 100},
		{ID: "c", Timestamp: 300},
		{ID: "b", Timestamp: 200},
	}}
	recorder := NewRecorder(store, nil, quietLogger())

	records, err := recorder.FetchAll(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{records[0].ID, records[1].ID, records[2].ID})
}

func TestFetchAllSoftFailsToEmpty(t *testing.T) {
	store := &fakeHistoryStore{failWith: &models.StoreError{Op: "list history", Err: errors.New("timeout")}}
	recorder := NewRecorder(store, nil, quietLogger())

	records, err := recorder.FetchAll(context.Background(), "user-1")
	assert.Error(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
