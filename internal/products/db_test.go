package products

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const productsTestSchema = `
CREATE TABLE products (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    short_description TEXT,
    price REAL NOT NULL,
    compare_at_price REAL,
    sku TEXT,
    barcode TEXT,
    images TEXT,
    stock INTEGER NOT NULL DEFAULT 0,
    low_stock_threshold INTEGER NOT NULL DEFAULT 5,
    track_quantity INTEGER NOT NULL DEFAULT 1,
    allow_backorder INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'active',
    is_featured INTEGER NOT NULL DEFAULT 0,
    category TEXT,
    subcategory TEXT,
    tags TEXT,
    weight REAL NOT NULL DEFAULT 0,
    dimensions TEXT,
    shipping_tier TEXT,
    created_at DATETIME,
    updated_at DATETIME
);`

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := conn.Exec(productsTestSchema).Error; err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return conn
}
