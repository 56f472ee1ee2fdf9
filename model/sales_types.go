// flowork/model/sales_types.go
package model

import "strconv"

const (
	SaleStatusValid    = "valid"
	SaleStatusRefunded = "refunded"
)

type Sale struct {
	ID          int64  `db:"id" json:"sale_id"`
	StoreID     int64  `db:"store_id" json:"-"`
	SaleDate    string `db:"sale_date" json:"sale_date"`
	DailyNumber int64  `db:"daily_number" json:"daily_number"`
	Status      string `db:"status" json:"status"`
	IsOnline    bool   `db:"is_online" json:"is_online"`
	TotalAmount int64  `db:"total_amount" json:"total_amount"`
	CreatedAt   string `db:"created_at" json:"created_at"`
}

// ReceiptNumber 는 "YYYY-MM-DD-N" 형식의 표시용 영수증 번호.
func (s Sale) ReceiptNumber() string {
	if s.SaleDate == "" {
		return ""
	}
	return s.SaleDate + "-" + strconv.FormatInt(s.DailyNumber, 10)
}

// SaleItem 은 판매 시점의 상품 스냅샷. 이후 상품 마스터가 바뀌어도
// 과거 영수증의 금액/명칭은 변하지 않는다.
type SaleItem struct {
	ID              int64  `db:"id" json:"-"`
	SaleID          int64  `db:"sale_id" json:"-"`
	VariantID       int64  `db:"variant_id" json:"variant_id"`
	ProductName     string `db:"product_name" json:"name"`
	ProductNumber   string `db:"product_number" json:"pn"`
	Color           string `db:"color" json:"color"`
	Size            string `db:"size" json:"size"`
	OriginalPrice   int64  `db:"original_price" json:"original_price"`
	UnitPrice       int64  `db:"unit_price" json:"price"`
	DiscountAmount  int64  `db:"discount_amount" json:"discount_amount"`
	DiscountedPrice int64  `db:"discounted_price" json:"discounted_price"`
	Quantity        int64  `db:"quantity" json:"quantity"`
	Subtotal        int64  `db:"subtotal" json:"subtotal"`
}

// SaleItemInput 은 POST /api/submit_sales 의 items 1행.
type SaleItemInput struct {
	VariantID      int64 `json:"variant_id"`
	Quantity       int64 `json:"quantity"`
	Price          int64 `json:"price"`
	DiscountAmount int64 `json:"discount_amount"`
}

type SaleInput struct {
	Items    []SaleItemInput `json:"items"`
	SaleDate string          `json:"sale_date"`
	IsOnline bool            `json:"is_online"`
}
