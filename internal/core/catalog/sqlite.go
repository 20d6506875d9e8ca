package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipe-cart/internal/pkg/common"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteCatalog 以 SQLite 保存的商品目錄
//
// 名稱與標籤都以 Go 的 strings.ToLower 正規化後存入 *_key 欄位，
// 查詢時直接做等值比對，因此非 ASCII 字元也能不分大小寫比對。
type SQLiteCatalog struct {
	db *sql.DB
}

// OpenSQLite 開啟（必要時建立）SQLite 商品目錄
func OpenSQLite(path string) (*SQLiteCatalog, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	if path == ":memory:" {
		// 每個連線都是獨立的記憶體資料庫
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	common.LogInfo("商品目錄資料庫已開啟", zap.String("path", path))
	return &SQLiteCatalog{db: db}, nil
}

// Close 關閉資料庫連線
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

// Add 新增商品及其標籤
func (c *SQLiteCatalog) Add(ctx context.Context, p *Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	tags := normalizeTags(p.Tags)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO products (external_id, name, name_key, description, category, brand, price, unit, unit_quantity, image_url)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, NormalizeKey(p.Name), p.Description, p.Category, p.Brand,
		p.Price, string(p.Unit), p.UnitQuantity, p.ImageURL)
	if err != nil {
		return fmt.Errorf("insert product %q: %w", p.Name, err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("product row id: %w", err)
	}

	for i, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_tags (product_id, tag, position) VALUES (?, ?, ?)`,
			rowID, tag, i); err != nil {
			return fmt.Errorf("insert tag %q: %w", tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit product: %w", err)
	}
	p.Tags = tags
	return nil
}

// Count 回傳商品數量
func (c *SQLiteCatalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

const productColumns = `p.id, p.external_id, p.name, p.description, p.category, p.brand, p.price, p.unit, p.unit_quantity, p.image_url`

// FindByName 依名稱查詢
func (c *SQLiteCatalog) FindByName(ctx context.Context, name string) (*Product, error) {
	return c.findOne(ctx, `SELECT `+productColumns+`
FROM products p
WHERE p.name_key = ?
ORDER BY p.id
LIMIT 1`, NormalizeKey(name))
}

// FindByTag 依標籤查詢
func (c *SQLiteCatalog) FindByTag(ctx context.Context, tag string) (*Product, error) {
	return c.findOne(ctx, `SELECT `+productColumns+`
FROM products p
JOIN product_tags t ON t.product_id = p.id
WHERE t.tag = ?
ORDER BY p.id
LIMIT 1`, NormalizeKey(tag))
}

func (c *SQLiteCatalog) findOne(ctx context.Context, query string, key string) (*Product, error) {
	if key == "" {
		return nil, ErrProductNotFound
	}

	var (
		rowID int64
		p     Product
		unit  string
	)
	err := c.db.QueryRowContext(ctx, query, key).Scan(
		&rowID, &p.ID, &p.Name, &p.Description, &p.Category, &p.Brand,
		&p.Price, &unit, &p.UnitQuantity, &p.ImageURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	p.Unit = Unit(unit)

	tags, err := c.loadTags(ctx, rowID)
	if err != nil {
		return nil, err
	}
	p.Tags = tags
	return &p, nil
}

func (c *SQLiteCatalog) loadTags(ctx context.Context, rowID int64) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT tag FROM product_tags WHERE product_id = ? ORDER BY position`, rowID)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
