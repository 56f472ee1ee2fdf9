// flowork/database/sales.go
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"flowork/model"
)

// CreateSale 은 판매 1건을 등록한다.
// 재고 차감, 일자별 일련번호 채번, 판매 시점 스냅샷 저장까지 한 트랜잭션.
// 재고 부족 검사는 하지 않는다 (마이너스 재고 허용, 화면에서 경고만).
func CreateSale(db *sqlx.DB, storeID int64, input model.SaleInput) (*model.Sale, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("등록할 상품이 없습니다")
	}

	saleDate := input.SaleDate
	if saleDate == "" {
		saleDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", saleDate); err != nil {
		return nil, fmt.Errorf("판매일 형식이 잘못되었습니다: %s", input.SaleDate)
	}

	tx, err := db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var lastNum sql.NullInt64
	err = tx.Get(&lastNum, `
		SELECT MAX(daily_number) FROM sales WHERE store_id = ? AND sale_date = ?`, storeID, saleDate)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last daily number: %w", err)
	}
	nextNum := lastNum.Int64 + 1

	res, err := tx.Exec(`
		INSERT INTO sales (store_id, sale_date, daily_number, status, is_online, total_amount)
		VALUES (?, ?, ?, ?, ?, 0)`,
		storeID, saleDate, nextNum, model.SaleStatusValid, input.IsOnline)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sale: %w", err)
	}
	saleID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	var totalAmount int64
	for _, item := range input.Items {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		discountedPrice := item.Price - item.DiscountAmount
		if discountedPrice < 0 {
			discountedPrice = 0
		}
		subtotal := discountedPrice * qty

		var v struct {
			model.Variant
			ProductName   string `db:"p_name"`
			ProductNumber string `db:"p_number"`
		}
		err := tx.Get(&v, `
			SELECT v.*, p.product_name p_name, p.product_number p_number
			FROM variants v JOIN products p ON p.id = v.product_id
			WHERE v.id = ?`, item.VariantID)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("variant %d 를 찾을 수 없습니다", item.VariantID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get variant %d: %w", item.VariantID, err)
		}

		if err := AddQuantity(tx, storeID, item.VariantID, -qty); err != nil {
			return nil, err
		}

		_, err = tx.Exec(`
			INSERT INTO sale_items (sale_id, variant_id, product_name, product_number, color, size,
			                        original_price, unit_price, discount_amount, discounted_price,
			                        quantity, subtotal)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			saleID, item.VariantID, v.ProductName, v.ProductNumber, v.Color, v.Size,
			v.OriginalPrice, item.Price, item.DiscountAmount, discountedPrice, qty, subtotal)
		if err != nil {
			return nil, fmt.Errorf("failed to insert sale item: %w", err)
		}
		totalAmount += subtotal
	}

	if _, err := tx.Exec(`UPDATE sales SET total_amount = ? WHERE id = ?`, totalAmount, saleID); err != nil {
		return nil, fmt.Errorf("failed to update sale total: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.Sale{
		ID:          saleID,
		StoreID:     storeID,
		SaleDate:    saleDate,
		DailyNumber: nextNum,
		Status:      model.SaleStatusValid,
		IsOnline:    input.IsOnline,
		TotalAmount: totalAmount,
	}, nil
}

func GetSale(db *sqlx.DB, storeID, saleID int64) (*model.Sale, error) {
	var s model.Sale
	err := db.Get(&s, `SELECT * FROM sales WHERE id = ? AND store_id = ?`, saleID, storeID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sale %d: %w", saleID, err)
	}
	return &s, nil
}

func GetSaleItems(db *sqlx.DB, saleID int64) ([]model.SaleItem, error) {
	var items []model.SaleItem
	if err := db.Select(&items, `SELECT * FROM sale_items WHERE sale_id = ? ORDER BY id`, saleID); err != nil {
		return nil, fmt.Errorf("failed to select sale items for sale %d: %w", saleID, err)
	}
	return items, nil
}

// RefundSaleFull 은 영수증 전체 환불. 재고를 되돌리고 상태를 refunded 로 바꾼다.
// 이미 환불된 건이면 오류를 반환한다.
func RefundSaleFull(db *sqlx.DB, storeID, saleID int64) (*model.Sale, error) {
	tx, err := db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var sale model.Sale
	err = tx.Get(&sale, `SELECT * FROM sales WHERE id = ? AND store_id = ?`, saleID, storeID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("판매 내역이 없습니다")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sale for refund: %w", err)
	}
	if sale.Status == model.SaleStatusRefunded {
		return nil, fmt.Errorf("이미 환불된 건입니다")
	}

	var items []model.SaleItem
	if err := tx.Select(&items, `SELECT * FROM sale_items WHERE sale_id = ?`, saleID); err != nil {
		return nil, fmt.Errorf("failed to select items for refund: %w", err)
	}

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if err := AddQuantity(tx, storeID, item.VariantID, item.Quantity); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(`UPDATE sales SET status = ? WHERE id = ?`, model.SaleStatusRefunded, saleID); err != nil {
		return nil, fmt.Errorf("failed to mark sale refunded: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	sale.Status = model.SaleStatusRefunded
	return &sale, nil
}

// SaleProductRow 는 판매/환불 화면 좌측 검색 결과 1행.
// StatQty 는 판매 모드에서는 현재 재고, 환불 모드에서는 기간 내 판매량.
type SaleProductRow struct {
	ProductNumber string `db:"product_number" json:"product_number"`
	ProductName   string `db:"product_name" json:"product_name"`
	Color         string `db:"color" json:"color"`
	Year          *int   `db:"release_year" json:"year"`
	OriginalPrice int64  `db:"original_price" json:"original_price"`
	SalePrice     int64  `db:"sale_price" json:"sale_price"`
	StatQty       int64  `db:"stat_qty" json:"stat_qty"`
}

// SearchSaleProducts 는 판매 모드 검색: 품번/품명/초성 일치, 컬러별 1행,
// 재고 합계 포함.
func SearchSaleProducts(db *sqlx.DB, brandID, storeID int64, like string) ([]SaleProductRow, error) {
	var rows []SaleProductRow
	err := db.Select(&rows, `
		SELECT p.product_number, p.product_name, v.color, p.release_year,
		       MAX(v.original_price) original_price, MAX(v.sale_price) sale_price,
		       COALESCE(SUM(ss.quantity), 0) stat_qty
		FROM products p
		JOIN variants v ON v.product_id = p.id
		LEFT JOIN store_stock ss ON ss.variant_id = v.id AND ss.store_id = ?
		WHERE p.brand_id = ?
		  AND (p.product_number_cleaned LIKE ? OR p.product_name_cleaned LIKE ? OR p.product_name_choseong LIKE ?)
		GROUP BY p.id, v.color
		ORDER BY p.product_name, v.color`,
		storeID, brandID, like, like, like)
	if err != nil {
		return nil, fmt.Errorf("failed to search sale products: %w", err)
	}
	return rows, nil
}

// SearchSoldProducts 는 환불 모드 검색: 기간 내 판매된 품번/컬러와 판매량.
func SearchSoldProducts(db *sqlx.DB, storeID int64, like, startDate, endDate string) ([]SaleProductRow, error) {
	var rows []SaleProductRow
	err := db.Select(&rows, `
		SELECT si.product_number, si.product_name, si.color,
		       NULL release_year,
		       MAX(si.original_price) original_price, MAX(si.unit_price) sale_price,
		       SUM(si.quantity) stat_qty
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.store_id = ? AND s.status = 'valid'
		  AND s.sale_date BETWEEN ? AND ?
		  AND (REPLACE(UPPER(si.product_number), '-', '') LIKE ? OR UPPER(si.product_name) LIKE ?)
		GROUP BY si.product_number, si.color
		ORDER BY si.product_name, si.color`,
		storeID, startDate, endDate, like, like)
	if err != nil {
		return nil, fmt.Errorf("failed to search sold products: %w", err)
	}
	return rows, nil
}

// VariantStockRow 는 판매 모드 상세 모달의 variant 1행 (재고 포함).
type VariantStockRow struct {
	VariantID     int64  `db:"variant_id" json:"variant_id"`
	Color         string `db:"color" json:"color"`
	Size          string `db:"size" json:"size"`
	OriginalPrice int64  `db:"original_price" json:"original_price"`
	SalePrice     int64  `db:"sale_price" json:"sale_price"`
	Stock         int64  `db:"stock" json:"stock"`
}

func GetVariantStocks(db *sqlx.DB, brandID, storeID int64, pnCleaned string) ([]VariantStockRow, error) {
	var rows []VariantStockRow
	err := db.Select(&rows, `
		SELECT v.id variant_id, v.color, v.size, v.original_price, v.sale_price,
		       COALESCE(ss.quantity, 0) stock
		FROM variants v
		JOIN products p ON p.id = v.product_id
		LEFT JOIN store_stock ss ON ss.variant_id = v.id AND ss.store_id = ?
		WHERE p.brand_id = ? AND p.product_number_cleaned = ?
		ORDER BY v.color, v.size`,
		storeID, brandID, pnCleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to get variant stocks: %w", err)
	}
	return rows, nil
}

// RefundRecord 는 환불 대상 선택 목록의 1행 (영수증 단위 요약).
type RefundRecord struct {
	SaleID        int64  `db:"sale_id" json:"sale_id"`
	SaleDate      string `db:"sale_date" json:"sale_date"`
	DailyNumber   int64  `db:"daily_number" json:"-"`
	ReceiptNumber string `json:"receipt_number"`
	ProductNumber string `db:"product_number" json:"product_number"`
	ProductName   string `db:"product_name" json:"product_name"`
	Color         string `db:"color" json:"color"`
	Size          string `db:"size" json:"size"`
	Quantity      int64  `db:"quantity" json:"quantity"`
	TotalAmount   int64  `db:"total_amount" json:"total_amount"`
}

func GetRefundRecords(db *sqlx.DB, storeID int64, pnCleaned, color, startDate, endDate string) ([]RefundRecord, error) {
	var rows []RefundRecord
	err := db.Select(&rows, `
		SELECT s.id sale_id, s.sale_date, s.daily_number,
		       si.product_number, si.product_name, si.color, si.size,
		       si.quantity, s.total_amount
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.store_id = ? AND s.status = 'valid'
		  AND s.sale_date BETWEEN ? AND ?
		  AND REPLACE(UPPER(si.product_number), '-', '') = ?
		  AND si.color = ?
		ORDER BY s.sale_date DESC, s.daily_number DESC`,
		storeID, startDate, endDate, pnCleaned, color)
	if err != nil {
		return nil, fmt.Errorf("failed to get refund records: %w", err)
	}
	for i := range rows {
		rows[i].ReceiptNumber = model.Sale{SaleDate: rows[i].SaleDate, DailyNumber: rows[i].DailyNumber}.ReceiptNumber()
	}
	return rows, nil
}

// DailySummary 는 대시보드 집계.
type DailySummary struct {
	SaleCount   int64 `db:"sale_count" json:"sale_count"`
	TotalAmount int64 `db:"total_amount" json:"total_amount"`
	TotalQty    int64 `db:"total_qty" json:"total_qty"`
	RefundCount int64 `db:"refund_count" json:"refund_count"`
}

func GetDailySummary(db *sqlx.DB, storeID int64, date string) (DailySummary, error) {
	var sum DailySummary
	err := db.Get(&sum, `
		SELECT COUNT(CASE WHEN s.status = 'valid' THEN 1 END) sale_count,
		       COALESCE(SUM(CASE WHEN s.status = 'valid' THEN s.total_amount END), 0) total_amount,
		       COALESCE((SELECT SUM(si.quantity) FROM sale_items si
		                 JOIN sales s2 ON s2.id = si.sale_id
		                 WHERE s2.store_id = ? AND s2.sale_date = ? AND s2.status = 'valid'), 0) total_qty,
		       COUNT(CASE WHEN s.status = 'refunded' THEN 1 END) refund_count
		FROM sales s
		WHERE s.store_id = ? AND s.sale_date = ?`,
		storeID, date, storeID, date)
	if err != nil {
		return DailySummary{}, fmt.Errorf("failed to get daily summary: %w", err)
	}
	return sum, nil
}
