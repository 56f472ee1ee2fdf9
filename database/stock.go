// flowork/database/stock.go
package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"flowork/model"
)

// GetOrCreateStoreStock 은 매장×SKU 재고 행을 반환하고, 없으면 0 으로 만든다.
// UNIQUE(store_id, variant_id) 제약이 있으므로 동시 생성 경합은
// INSERT OR IGNORE 후 재조회로 해소한다.
func GetOrCreateStoreStock(tx *sqlx.Tx, storeID, variantID int64) (*model.StoreStock, error) {
	if _, err := tx.Exec(`
		INSERT OR IGNORE INTO store_stock (store_id, variant_id, quantity, actual_stock)
		VALUES (?, ?, 0, NULL)`, storeID, variantID); err != nil {
		return nil, fmt.Errorf("failed to insert store_stock: %w", err)
	}

	var stock model.StoreStock
	err := tx.Get(&stock, `
		SELECT * FROM store_stock WHERE store_id = ? AND variant_id = ?`, storeID, variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get store_stock (store=%d, variant=%d): %w", storeID, variantID, err)
	}
	return &stock, nil
}

// AdjustQuantity 는 전산재고를 ±change 만큼 바꾼다. 0 미만으로는 내려가지 않는다.
// 반환값은 변경 후 수량과 차이 (actual − expected, 실사 미입력이면 ok=false).
func AdjustQuantity(db *sqlx.DB, storeID, variantID, change int64) (newQty int64, diff int64, hasDiff bool, err error) {
	tx, err := db.Beginx()
	if err != nil {
		return 0, 0, false, err
	}
	defer tx.Rollback()

	stock, err := GetOrCreateStoreStock(tx, storeID, variantID)
	if err != nil {
		return 0, 0, false, err
	}

	newQty = stock.Quantity + change
	if newQty < 0 {
		newQty = 0
	}
	if _, err := tx.Exec(`UPDATE store_stock SET quantity = ? WHERE id = ?`, newQty, stock.ID); err != nil {
		return 0, 0, false, fmt.Errorf("failed to update quantity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, false, err
	}

	if stock.ActualStock.Valid {
		return newQty, stock.ActualStock.Int64 - newQty, true, nil
	}
	return newQty, 0, false, nil
}

// SetActualStock 은 실사재고를 저장한다. actual 이 nil 이면 NULL(미입력) 로 되돌린다.
func SetActualStock(db *sqlx.DB, storeID, variantID int64, actual *int64) (diff int64, hasDiff bool, err error) {
	tx, err := db.Beginx()
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	stock, err := GetOrCreateStoreStock(tx, storeID, variantID)
	if err != nil {
		return 0, false, err
	}

	var value sql.NullInt64
	if actual != nil {
		value = sql.NullInt64{Int64: *actual, Valid: true}
	}
	if _, err := tx.Exec(`UPDATE store_stock SET actual_stock = ? WHERE id = ?`, value, stock.ID); err != nil {
		return 0, false, fmt.Errorf("failed to update actual_stock: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, false, err
	}

	if actual != nil {
		return *actual - stock.Quantity, true, nil
	}
	return 0, false, nil
}

// BulkSetActualStock 은 바코드→수량 맵을 일괄 반영한다.
// DB 에 없는 바코드는 건너뛰고 그 목록을 반환한다.
func BulkSetActualStock(db *sqlx.DB, brandID, storeID int64, byCleanedBarcode map[string]int64) (updated int, unknown []string, err error) {
	if len(byCleanedBarcode) == 0 {
		return 0, nil, nil
	}

	cleaned := make([]string, 0, len(byCleanedBarcode))
	for b := range byCleanedBarcode {
		cleaned = append(cleaned, b)
	}

	query, args, err := sqlx.In(`
		SELECT v.id, v.barcode_cleaned
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE p.brand_id = ? AND v.barcode_cleaned IN (?)`, brandID, cleaned)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build bulk lookup query: %w", err)
	}

	var rows []struct {
		ID             int64  `db:"id"`
		BarcodeCleaned string `db:"barcode_cleaned"`
	}
	if err := db.Select(&rows, db.Rebind(query), args...); err != nil {
		return 0, nil, fmt.Errorf("failed to look up variants for bulk update: %w", err)
	}

	found := make(map[string]int64, len(rows))
	for _, r := range rows {
		found[r.BarcodeCleaned] = r.ID
	}
	for _, b := range cleaned {
		if _, ok := found[b]; !ok {
			unknown = append(unknown, b)
		}
	}
	if len(found) == 0 {
		return 0, unknown, nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback()

	for b, variantID := range found {
		stock, err := GetOrCreateStoreStock(tx, storeID, variantID)
		if err != nil {
			return 0, nil, err
		}
		qty := byCleanedBarcode[b]
		if _, err := tx.Exec(`UPDATE store_stock SET actual_stock = ? WHERE id = ?`, qty, stock.ID); err != nil {
			return 0, nil, fmt.Errorf("failed to bulk update actual_stock: %w", err)
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, err
	}
	return updated, unknown, nil
}

// ResetActualStock 은 매장의 모든 실사재고 입력을 지운다 (NULL 로).
func ResetActualStock(db *sqlx.DB, storeID int64) (int64, error) {
	res, err := db.Exec(`
		UPDATE store_stock SET actual_stock = NULL
		WHERE store_id = ? AND actual_stock IS NOT NULL`, storeID)
	if err != nil {
		return 0, fmt.Errorf("failed to reset actual_stock: %w", err)
	}
	return res.RowsAffected()
}

// AddQuantity 는 판매/환불 등 내부 처리용 전산재고 증감 (판매는 음수 허용).
func AddQuantity(tx *sqlx.Tx, storeID, variantID, delta int64) error {
	stock, err := GetOrCreateStoreStock(tx, storeID, variantID)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE store_stock SET quantity = quantity + ? WHERE id = ?`, delta, stock.ID); err != nil {
		return fmt.Errorf("failed to add quantity (variant=%d, delta=%d): %w", variantID, delta, err)
	}
	return nil
}

// GetStoreStockQuantity 는 표시용 현재 전산재고. 행이 없으면 0.
func GetStoreStockQuantity(db *sqlx.DB, storeID, variantID int64) (int64, error) {
	var qty int64
	err := db.Get(&qty, `
		SELECT quantity FROM store_stock WHERE store_id = ? AND variant_id = ?`, storeID, variantID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get store stock quantity: %w", err)
	}
	return qty, nil
}

// CountShortages 는 대시보드용: 실사재고가 전산재고보다 적은 행 수.
func CountShortages(db *sqlx.DB, storeID int64) (int64, error) {
	var n int64
	err := db.Get(&n, `
		SELECT COUNT(*) FROM store_stock
		WHERE store_id = ? AND actual_stock IS NOT NULL AND actual_stock < quantity`, storeID)
	if err != nil {
		return 0, fmt.Errorf("failed to count shortages: %w", err)
	}
	return n, nil
}
