// flowork/model/stock_types.go
package model

import "database/sql"

// StoreStock 은 매장×SKU 재고 행.
// Quantity 는 장부상 전산재고(예상치), ActualStock 은 실사로 입력된
// 실사재고 (미입력이면 NULL). 차이 (actual − expected) 는 저장하지 않고
// 응답 시마다 서버에서 계산한다.
type StoreStock struct {
	ID          int64         `db:"id"`
	StoreID     int64         `db:"store_id"`
	VariantID   int64         `db:"variant_id"`
	Quantity    int64         `db:"quantity"`
	ActualStock sql.NullInt64 `db:"actual_stock"`
}

// Diff 는 actual − expected. ActualStock 이 NULL 인 동안은 값 없음.
func (s StoreStock) Diff() (int64, bool) {
	if !s.ActualStock.Valid {
		return 0, false
	}
	return s.ActualStock.Int64 - s.Quantity, true
}

// StockRowView 는 재고 확인 페이지 1행 분의 표시 데이터.
type StockRowView struct {
	Barcode     string `db:"barcode" json:"barcode"`
	ProductName string `db:"product_name" json:"product_name"`
	Color       string `db:"color" json:"color"`
	Size        string `db:"size" json:"size"`
	Quantity    int64  `db:"quantity" json:"quantity"`
	ActualStock *int64 `db:"actual_stock" json:"actual_stock"`
	StockDiff   *int64 `json:"stock_diff"`
}
