package repositories

import (
	"context"

	"github.com/yuchialin/canteend/internal/models"
)

// DocumentStore is the narrow boundary to the backend holding raw menu
// documents. The store enforces no schema and guarantees nothing beyond
// last write wins; validation is the mapper's job.
type DocumentStore interface {
	ListRestaurantDocuments(ctx context.Context) ([]models.RawDocument, error)
	UpsertRestaurantDocument(ctx context.Context, name string, doc models.RawDocument) error
}

type HistoryStore interface {
	AppendHistory(ctx context.Context, ownerID string, record models.HistoryRecord) error
	ListHistory(ctx context.Context, ownerID string) ([]models.HistoryRecord, error)
}
