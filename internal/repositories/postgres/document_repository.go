package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yuchialin/canteend/internal/models"
)

// DocumentRepository stores raw canteen documents as jsonb rows keyed by
// canteen name. The document column is opaque to the database; decoding and
// validation happen in the document mapper.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func (r *DocumentRepository) ListRestaurantDocuments(ctx context.Context) ([]models.RawDocument, error) {
	query := `
        SELECT document
        FROM restaurant_documents
        ORDER BY name
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, &models.StoreError{Op: "list restaurant documents", Err: err}
	}
	defer rows.Close()

	var docs []models.RawDocument
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, &models.StoreError{Op: "scan restaurant document", Err: err}
		}
		var doc models.RawDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, &models.StoreError{Op: "decode restaurant document", Err: err}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StoreError{Op: "list restaurant documents", Err: err}
	}
	return docs, nil
}

func (r *DocumentRepository) UpsertRestaurantDocument(ctx context.Context, name string, doc models.RawDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %q: %w", name, err)
	}

	query := `
        INSERT INTO restaurant_documents (name, document, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (name) DO UPDATE
        SET document = EXCLUDED.document, updated_at = NOW()
    `
	if _, err := r.pool.Exec(ctx, query, name, payload); err != nil {
		return &models.StoreError{Op: fmt.Sprintf("upsert document %q", name), Err: err}
	}
	return nil
}

// BulkCreate loads a batch of documents with COPY, used by the seed command
// after DeleteAll. Upserts go through UpsertRestaurantDocument.
func (r *DocumentRepository) BulkCreate(ctx context.Context, docs map[string]models.RawDocument) error {
	type row struct {
		name    string
		payload []byte
	}
	rowsData := make([]row, 0, len(docs))
	for name, doc := range docs {
		payload, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode document %q: %w", name, err)
		}
		rowsData = append(rowsData, row{name: name, payload: payload})
	}

	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"restaurant_documents"},
		[]string{"name", "document"},
		pgx.CopyFromSlice(len(rowsData), func(i int) ([]interface{}, error) {
			return []interface{}{rowsData[i].name, rowsData[i].payload}, nil
		}),
	)
	if err != nil {
		return &models.StoreError{Op: "bulk create documents", Err: err}
	}
	return nil
}

func (r *DocumentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM restaurant_documents").Scan(&count)
	return count, err
}

func (r *DocumentRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE restaurant_documents")
	return err
}
