// flowork/loader/loader.go
package loader

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS brands (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	brand_name  TEXT NOT NULL UNIQUE,
	created_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS stores (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	brand_id     INTEGER NOT NULL REFERENCES brands(id),
	store_name   TEXT NOT NULL,
	phone_number TEXT
);
CREATE INDEX IF NOT EXISTS ix_stores_brand ON stores(brand_id);

CREATE TABLE IF NOT EXISTS products (
	id                     INTEGER PRIMARY KEY AUTOINCREMENT,
	brand_id               INTEGER NOT NULL REFERENCES brands(id),
	product_number         TEXT NOT NULL,
	product_name           TEXT NOT NULL,
	is_favorite            INTEGER NOT NULL DEFAULT 0,
	release_year           INTEGER,
	item_category          TEXT,
	product_number_cleaned TEXT,
	product_name_cleaned   TEXT,
	product_name_choseong  TEXT
);
CREATE INDEX IF NOT EXISTS ix_products_brand_number ON products(brand_id, product_number_cleaned);
CREATE INDEX IF NOT EXISTS ix_products_brand_category ON products(brand_id, item_category);

CREATE TABLE IF NOT EXISTS variants (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id      INTEGER NOT NULL REFERENCES products(id),
	barcode         TEXT NOT NULL UNIQUE,
	color           TEXT NOT NULL DEFAULT '',
	size            TEXT NOT NULL DEFAULT '',
	original_price  INTEGER NOT NULL DEFAULT 0,
	sale_price      INTEGER NOT NULL DEFAULT 0,
	barcode_cleaned TEXT UNIQUE,
	color_cleaned   TEXT,
	size_cleaned    TEXT
);
CREATE INDEX IF NOT EXISTS ix_variants_product ON variants(product_id);

CREATE TABLE IF NOT EXISTS store_stock (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	store_id     INTEGER NOT NULL REFERENCES stores(id),
	variant_id   INTEGER NOT NULL REFERENCES variants(id),
	quantity     INTEGER NOT NULL DEFAULT 0,
	actual_stock INTEGER,
	UNIQUE(store_id, variant_id)
);
CREATE INDEX IF NOT EXISTS ix_store_stock_lookup ON store_stock(store_id, variant_id);

CREATE TABLE IF NOT EXISTS sales (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	store_id     INTEGER NOT NULL REFERENCES stores(id),
	sale_date    TEXT NOT NULL,
	daily_number INTEGER NOT NULL,
	status       TEXT NOT NULL DEFAULT 'valid',
	is_online    INTEGER NOT NULL DEFAULT 0,
	total_amount INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS ix_sales_store_date ON sales(store_id, sale_date);

CREATE TABLE IF NOT EXISTS sale_items (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	sale_id          INTEGER NOT NULL REFERENCES sales(id),
	variant_id       INTEGER NOT NULL,
	product_name     TEXT NOT NULL,
	product_number   TEXT NOT NULL,
	color            TEXT NOT NULL DEFAULT '',
	size             TEXT NOT NULL DEFAULT '',
	original_price   INTEGER NOT NULL DEFAULT 0,
	unit_price       INTEGER NOT NULL DEFAULT 0,
	discount_amount  INTEGER NOT NULL DEFAULT 0,
	discounted_price INTEGER NOT NULL DEFAULT 0,
	quantity         INTEGER NOT NULL DEFAULT 0,
	subtotal         INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS ix_sale_items_sale ON sale_items(sale_id);
CREATE INDEX IF NOT EXISTS ix_sale_items_variant ON sale_items(variant_id);
`

func applySchema(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	return err
}

func InitDatabase(db *sqlx.DB) error {
	log.Println("Applying database schema...")
	if err := applySchema(db); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Println("Schema applied successfully.")

	if err := ensureDefaults(db); err != nil {
		return fmt.Errorf("failed to seed default brand/store: %w", err)
	}
	return nil
}

// ensureDefaults 는 빈 DB 에 기본 브랜드/매장 1건씩을 만들어 둔다.
// 설정 파일의 brandId/storeId=1 이 그대로 동작하도록 하기 위함.
func ensureDefaults(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var brandCount int
	if err := tx.Get(&brandCount, `SELECT COUNT(*) FROM brands`); err != nil {
		return err
	}
	if brandCount == 0 {
		res, err := tx.Exec(`INSERT INTO brands (brand_name) VALUES (?)`, "FLOWORK")
		if err != nil {
			return err
		}
		brandID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO stores (brand_id, store_name) VALUES (?, ?)`, brandID, "본점"); err != nil {
			return err
		}
		log.Println("Seeded default brand and store.")
	}

	return tx.Commit()
}
