// flowork/database/importer.go
package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"flowork/textutil"
)

// 엑셀 가져오기 작업이 행 단위로 부르는 upsert 류.
// 전부 호출자 트랜잭션 위에서 돈다.

// UpsertProductTx 는 품번 기준으로 상품을 만들거나 갱신하고 ID 를 돌려준다.
// 이미 있으면 상품명을 덮어쓰고, 연도/카테고리는 값이 있을 때만 바꾼다.
func UpsertProductTx(tx *sqlx.Tx, brandID int64, productNumber, productName string, releaseYear *int, itemCategory *string) (int64, error) {
	pnCleaned := textutil.CleanUpper(productNumber)
	if pnCleaned == "" {
		return 0, fmt.Errorf("품번이 비어 있습니다")
	}

	var existing struct {
		ID          int64  `db:"id"`
		ProductName string `db:"product_name"`
	}
	err := tx.Get(&existing, `
		SELECT id, product_name FROM products
		WHERE brand_id = ? AND product_number_cleaned = ?`, brandID, pnCleaned)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up product %s: %w", productNumber, err)
	}

	if err == sql.ErrNoRows {
		name := productName
		if name == "" {
			name = productNumber
		}
		res, err := tx.Exec(`
			INSERT INTO products (brand_id, product_number, product_name, is_favorite,
			                      release_year, item_category,
			                      product_number_cleaned, product_name_cleaned, product_name_choseong)
			VALUES (?, ?, ?, 0, ?, ?, ?, ?, ?)`,
			brandID, productNumber, name, releaseYear, itemCategory,
			pnCleaned, textutil.CleanUpper(name), textutil.Choseong(name))
		if err != nil {
			return 0, fmt.Errorf("failed to insert product %s: %w", productNumber, err)
		}
		return res.LastInsertId()
	}

	name := productName
	if name == "" {
		name = existing.ProductName
	}
	_, err = tx.Exec(`
		UPDATE products
		SET product_name = ?, product_name_cleaned = ?, product_name_choseong = ?,
		    release_year = COALESCE(?, release_year),
		    item_category = COALESCE(?, item_category)
		WHERE id = ?`,
		name, textutil.CleanUpper(name), textutil.Choseong(name),
		releaseYear, itemCategory, existing.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update product %s: %w", productNumber, err)
	}
	return existing.ID, nil
}

// UpsertVariantTx 는 바코드 기준으로 variant 를 만들거나 가격/표기를 갱신한다.
func UpsertVariantTx(tx *sqlx.Tx, productID int64, bc, color, size string, originalPrice, salePrice int64) (int64, error) {
	bcCleaned := textutil.CleanUpper(bc)
	if bcCleaned == "" {
		return 0, fmt.Errorf("바코드가 비어 있습니다")
	}

	var existingID int64
	err := tx.Get(&existingID, `SELECT id FROM variants WHERE barcode_cleaned = ?`, bcCleaned)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up variant %s: %w", bc, err)
	}

	if err == sql.ErrNoRows {
		res, err := tx.Exec(`
			INSERT INTO variants (product_id, barcode, color, size, original_price, sale_price,
			                      barcode_cleaned, color_cleaned, size_cleaned)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			productID, bc, color, size, originalPrice, salePrice,
			bcCleaned, textutil.CleanUpper(color), textutil.CleanUpper(size))
		if err != nil {
			return 0, fmt.Errorf("failed to insert variant %s: %w", bc, err)
		}
		return res.LastInsertId()
	}

	_, err = tx.Exec(`
		UPDATE variants
		SET color = ?, size = ?, original_price = ?, sale_price = ?,
		    color_cleaned = ?, size_cleaned = ?
		WHERE id = ?`,
		color, size, originalPrice, salePrice,
		textutil.CleanUpper(color), textutil.CleanUpper(size), existingID)
	if err != nil {
		return 0, fmt.Errorf("failed to update variant %s: %w", bc, err)
	}
	return existingID, nil
}

// FindVariantIDByBarcodeTx 는 정규화 바코드로 variant ID 를 찾는다.
func FindVariantIDByBarcodeTx(tx *sqlx.Tx, brandID int64, barcodeCleaned string) (int64, bool, error) {
	var id int64
	err := tx.Get(&id, `
		SELECT v.id FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE p.brand_id = ? AND v.barcode_cleaned = ?`, brandID, barcodeCleaned)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to find variant by barcode: %w", err)
	}
	return id, true, nil
}

// FindVariantIDBySpecTx 는 품번+컬러+사이즈 (정규화) 로 variant ID 를 찾는다.
// 가로형 사이즈 매트릭스 가져오기에서 쓴다.
func FindVariantIDBySpecTx(tx *sqlx.Tx, brandID int64, pnCleaned, colorCleaned, sizeCleaned string) (int64, bool, error) {
	var id int64
	err := tx.Get(&id, `
		SELECT v.id FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE p.brand_id = ? AND p.product_number_cleaned = ?
		  AND v.color_cleaned = ? AND v.size_cleaned = ?`,
		brandID, pnCleaned, colorCleaned, sizeCleaned)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to find variant by spec: %w", err)
	}
	return id, true, nil
}

// SetStockQuantityTx 는 매장 재고 수량을 엑셀 값으로 덮어쓴다 (행 단위 교체).
// 실재고 입력은 건드리지 않는다.
func SetStockQuantityTx(tx *sqlx.Tx, storeID, variantID, qty int64) error {
	if _, err := GetOrCreateStoreStock(tx, storeID, variantID); err != nil {
		return err
	}
	_, err := tx.Exec(`
		UPDATE store_stock SET quantity = ? WHERE store_id = ? AND variant_id = ?`,
		qty, storeID, variantID)
	if err != nil {
		return fmt.Errorf("failed to set stock quantity: %w", err)
	}
	return nil
}
