package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yuchialin/canteend/internal/models"
)

type HistoryRepository struct {
	pool *pgxpool.Pool
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

func (r *HistoryRepository) AppendHistory(ctx context.Context, ownerID string, record models.HistoryRecord) error {
	items, err := json.Marshal(record.Items)
	if err != nil {
		return fmt.Errorf("failed to encode history items: %w", err)
	}

	query := `
        INSERT INTO order_history (
            id, owner_id, restaurant_name, items, total_price,
            total_calories, ordered_at_ms
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7
        )
    `
	_, err = r.pool.Exec(ctx, query,
		record.ID,
		ownerID,
		record.RestaurantName,
		items,
		record.TotalPrice,
		record.TotalCalories,
		record.Timestamp,
	)
	if err != nil {
		return &models.StoreError{Op: "append history", Err: err}
	}
	return nil
}

func (r *HistoryRepository) ListHistory(ctx context.Context, ownerID string) ([]models.HistoryRecord, error) {
	query := `
        SELECT
            id,
            restaurant_name,
            items,
            total_price,
            total_calories,
            ordered_at_ms
        FROM order_history
        WHERE owner_id = $1
        ORDER BY ordered_at_ms DESC
    `
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, &models.StoreError{Op: "list history", Err: err}
	}
	defer rows.Close()

	var records []models.HistoryRecord
	for rows.Next() {
		record := models.HistoryRecord{OwnerID: ownerID}
		var items []byte
		err := rows.Scan(
			&record.ID,
			&record.RestaurantName,
			&items,
			&record.TotalPrice,
			&record.TotalCalories,
			&record.Timestamp,
		)
		if err != nil {
			return nil, &models.StoreError{Op: "scan history record", Err: err}
		}
		if err := json.Unmarshal(items, &record.Items); err != nil {
			return nil, &models.StoreError{Op: "decode history items", Err: err}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StoreError{Op: "list history", Err: err}
	}
	return records, nil
}

func (r *HistoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM order_history").Scan(&count)
	return count, err
}

func (r *HistoryRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE order_history")
	return err
}
