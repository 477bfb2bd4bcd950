package repository

import (
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// sqliteSchema mirrors the postgres migrations with portable column types
const sqliteSchema = `
CREATE TABLE categories (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    slug        TEXT,
    description TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE products (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    category_id    INTEGER,
    name           TEXT NOT NULL,
    description    TEXT,
    price          REAL NOT NULL,
    discount_price REAL,
    stock          INTEGER NOT NULL DEFAULT 0,
    brand          TEXT,
    color          TEXT,
    size           TEXT,
    occasion       TEXT,
    gender         TEXT,
    image          TEXT,
    embedding      TEXT,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE orders (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id      INTEGER NOT NULL,
    order_number TEXT NOT NULL,
    total_amount REAL NOT NULL,
    status       TEXT NOT NULL DEFAULT 'pending',
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE search_logs (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    search_id            TEXT NOT NULL UNIQUE,
    user_id              INTEGER,
    query                TEXT NOT NULL,
    search_type          TEXT NOT NULL,
    filters              TEXT NOT NULL DEFAULT '{}',
    result_count         INTEGER NOT NULL DEFAULT 0,
    returned_product_ids TEXT,
    response_time_ms     INTEGER NOT NULL DEFAULT 0,
    clicked_product_id   INTEGER,
    action               TEXT,
    created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

type seedProduct struct {
	categoryID    int64
	name          string
	description   string
	price         float64
	discountPrice any
	stock         int
	brand         string
	color         string
	size          string
	occasion      string
	gender        string
	createdAt     string
}

func newTestRepository(t *testing.T) *CatalogRepository {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(sqliteSchema)
	require.NoError(t, err)

	return NewCatalogRepositoryFromDB(db)
}

func insertCategory(t *testing.T, repo *CatalogRepository, name string) int64 {
	t.Helper()
	res, err := repo.db.Exec(`INSERT INTO categories (name, slug) VALUES (?, ?)`, name, name)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertProduct(t *testing.T, repo *CatalogRepository, p seedProduct) int64 {
	t.Helper()
	if p.createdAt == "" {
		p.createdAt = "2024-01-01 00:00:00"
	}
	var category any
	if p.categoryID > 0 {
		category = p.categoryID
	}
	res, err := repo.db.Exec(`
		INSERT INTO products (category_id, name, description, price, discount_price, stock, brand, color, size, occasion, gender, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		category, p.name, p.description, p.price, p.discountPrice, p.stock,
		p.brand, p.color, p.size, p.occasion, p.gender, p.createdAt)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertNumbered(t *testing.T, repo *CatalogRepository, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		insertProduct(t, repo, seedProduct{
			name:  fmt.Sprintf("Product %02d", i),
			price: float64(100 * i),
			stock: 5,
		})
	}
}
