// flowork/model/catalog_types.go
package model

// Product 는 품번 단위의 상품 카탈로그 행 (브랜드 소유)
type Product struct {
	ID                   int64   `db:"id" json:"product_id"`
	BrandID              int64   `db:"brand_id" json:"-"`
	ProductNumber        string  `db:"product_number" json:"product_number"`
	ProductName          string  `db:"product_name" json:"product_name"`
	IsFavorite           int     `db:"is_favorite" json:"is_favorite"`
	ReleaseYear          *int    `db:"release_year" json:"release_year"`
	ItemCategory         *string `db:"item_category" json:"item_category"`
	ProductNumberCleaned string  `db:"product_number_cleaned" json:"-"`
	ProductNameCleaned   string  `db:"product_name_cleaned" json:"-"`
	ProductNameChoseong  string  `db:"product_name_choseong" json:"-"`
}

// Variant 는 컬러/사이즈 단위의 SKU. 바코드가 실질적인 키.
type Variant struct {
	ID             int64  `db:"id" json:"variant_id"`
	ProductID      int64  `db:"product_id" json:"-"`
	Barcode        string `db:"barcode" json:"barcode"`
	Color          string `db:"color" json:"color"`
	Size           string `db:"size" json:"size"`
	OriginalPrice  int64  `db:"original_price" json:"original_price"`
	SalePrice      int64  `db:"sale_price" json:"sale_price"`
	BarcodeCleaned string `db:"barcode_cleaned" json:"-"`
	ColorCleaned   string `db:"color_cleaned" json:"-"`
	SizeCleaned    string `db:"size_cleaned" json:"-"`
}

// VariantInput 은 상품 상세 저장 페이로드의 1행.
// Action 은 "add" / "update" / "delete". delete 행은 VariantID 와 Action 만 전달된다.
type VariantInput struct {
	VariantID     *int64 `json:"variant_id"`
	Action        string `json:"action"`
	Color         string `json:"color"`
	Size          string `json:"size"`
	OriginalPrice int64  `json:"original_price"`
	SalePrice     int64  `json:"sale_price"`
}

type ProductDetailsInput struct {
	ProductID    int64          `json:"product_id"`
	ProductName  string         `json:"product_name"`
	ReleaseYear  *int           `json:"release_year"`
	ItemCategory *string        `json:"item_category"`
	Variants     []VariantInput `json:"variants"`
}
