package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"styleme/internal/model"
)

// EmbeddingDimensions is the width of the products.embedding column
const EmbeddingDimensions = 384

// BatchUpdateEmbeddings updates embeddings for multiple products
func (r *CatalogRepository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errors []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errors
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`UPDATE products SET embedding = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`))
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errors
	}
	defer stmt.Close()

	for _, item := range items {
		if len(item.Embedding) != EmbeddingDimensions {
			errors = append(errors, fmt.Sprintf("product_id %d: expected %d dimensions, got %d", item.ProductID, EmbeddingDimensions, len(item.Embedding)))
			continue
		}
		vec := pgvector.NewVector(item.Embedding)
		res, err := stmt.ExecContext(ctx, vec, item.ProductID)
		if err != nil {
			errors = append(errors, fmt.Sprintf("product_id %d: %v", item.ProductID, err))
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			errors = append(errors, fmt.Sprintf("product_id %d: not found", item.ProductID))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errors = append(errors, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errors
	}

	return success, errors
}

// LogSearch records one search in search_logs
func (r *CatalogRepository) LogSearch(ctx context.Context, entry *model.SearchLogEntry) error {
	filters := "{}"
	if entry.Filters != nil {
		b, err := json.Marshal(entry.Filters)
		if err != nil {
			return fmt.Errorf("failed to encode filters: %w", err)
		}
		filters = string(b)
	}

	var userID any
	if entry.UserID > 0 {
		userID = entry.UserID
	}

	query := r.db.Rebind(`
		INSERT INTO search_logs (search_id, user_id, query, search_type, filters, result_count, returned_product_ids, response_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		entry.SearchID, userID, entry.Query, entry.SearchType, filters,
		entry.ResultCount, pq.Array(entry.ProductIDs), entry.ResponseTimeMs)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

// LogFeedback records a shopper action against a logged search
func (r *CatalogRepository) LogFeedback(ctx context.Context, searchID string, productID int64, action string) error {
	query := r.db.Rebind(`
		UPDATE search_logs
		SET clicked_product_id = ?, action = ?
		WHERE search_id = ?`)
	res, err := r.db.ExecContext(ctx, query, productID, action, searchID)
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrNotFound
	}
	return nil
}
