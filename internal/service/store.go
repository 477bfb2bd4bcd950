package service

import (
	"context"

	"styleme/internal/model"
)

// CatalogStore is the storage surface used by the search and chat services
type CatalogStore interface {
	ProductStore
	CatalogSource
	GetProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ListCategoriesWithCounts(ctx context.Context) ([]model.Category, error)
	FilterOptions(ctx context.Context) (*model.FilterOptions, error)
	RecentOrders(ctx context.Context, userID int64, limit int) ([]model.Order, error)
	LogSearch(ctx context.Context, entry *model.SearchLogEntry) error
	LogFeedback(ctx context.Context, searchID string, productID int64, action string) error
	BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string)
}
