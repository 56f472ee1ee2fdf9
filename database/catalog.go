// flowork/database/catalog.go
package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"flowork/barcode"
	"flowork/model"
	"flowork/textutil"
)

// SearchProducts 는 목록 화면의 라이브 검색.
// 검색어가 비고 카테고리가 "전체"면 즐겨찾기만 반환한다 (원래 화면의 기본 상태).
func SearchProducts(db *sqlx.DB, brandID int64, query, category string) ([]model.Product, bool, error) {
	isSearching := query != "" || (category != "" && category != "전체")

	if !isSearching {
		var products []model.Product
		err := db.Select(&products, `
			SELECT * FROM products
			WHERE brand_id = ? AND is_favorite = 1
			ORDER BY item_category, product_name`, brandID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to select favorite products: %w", err)
		}
		return products, true, nil
	}

	sqlStr := `SELECT * FROM products WHERE brand_id = ?`
	args := []interface{}{brandID}

	if query != "" {
		like := "%" + textutil.CleanUpper(query) + "%"
		sqlStr += ` AND (product_number_cleaned LIKE ? OR product_name_cleaned LIKE ? OR product_name_choseong LIKE ?)`
		args = append(args, like, like, like)
	}
	if category != "" && category != "전체" {
		sqlStr += ` AND item_category = ?`
		args = append(args, category)
	}
	sqlStr += ` ORDER BY release_year DESC, product_name`

	var products []model.Product
	if err := db.Select(&products, sqlStr, args...); err != nil {
		return nil, false, fmt.Errorf("failed to search products: %w", err)
	}
	return products, false, nil
}

func GetProductByID(db *sqlx.DB, brandID, productID int64) (*model.Product, error) {
	var p model.Product
	err := db.Get(&p, `SELECT * FROM products WHERE id = ? AND brand_id = ?`, productID, brandID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", productID, err)
	}
	return &p, nil
}

func GetVariantsByProductID(db *sqlx.DB, productID int64) ([]model.Variant, error) {
	var variants []model.Variant
	err := db.Select(&variants, `
		SELECT * FROM variants WHERE product_id = ? ORDER BY color, size`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to select variants for product %d: %w", productID, err)
	}
	return variants, nil
}

// GetVariantByBarcode 는 cleaned 바코드로 브랜드 내 SKU 를 찾는다.
func GetVariantByBarcode(db *sqlx.DB, brandID int64, rawBarcode string) (*model.Variant, *model.Product, error) {
	cleaned := textutil.CleanUpper(rawBarcode)
	if cleaned == "" {
		return nil, nil, nil
	}

	var row struct {
		model.Variant
		P model.Product `db:"p"`
	}
	err := db.Get(&row, `
		SELECT v.*,
		       p.id "p.id", p.brand_id "p.brand_id", p.product_number "p.product_number",
		       p.product_name "p.product_name", p.is_favorite "p.is_favorite",
		       p.release_year "p.release_year", p.item_category "p.item_category",
		       p.product_number_cleaned "p.product_number_cleaned",
		       p.product_name_cleaned "p.product_name_cleaned",
		       p.product_name_choseong "p.product_name_choseong"
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.barcode_cleaned = ? AND p.brand_id = ?`, cleaned, brandID)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get variant by barcode %q: %w", rawBarcode, err)
	}
	v := row.Variant
	p := row.P
	return &v, &p, nil
}

// SearchProductNumbersByPrefix 는 바코드 앞자리(품번부)로 품번을 찾는다.
func SearchProductNumbersByPrefix(db *sqlx.DB, brandID int64, prefix string) ([]string, error) {
	cleaned := textutil.CleanUpper(prefix)
	var numbers []string
	err := db.Select(&numbers, `
		SELECT product_number FROM products
		WHERE brand_id = ? AND product_number_cleaned LIKE ?`, brandID, cleaned+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search product numbers by prefix: %w", err)
	}
	return numbers, nil
}

// FindProductByNumber 는 품번 부분 일치로 1건 찾는다 (주문/판매 입력 보조).
func FindProductByNumber(db *sqlx.DB, brandID int64, pnQuery string) (*model.Product, error) {
	like := "%" + textutil.CleanUpper(pnQuery) + "%"
	var p model.Product
	err := db.Get(&p, `
		SELECT * FROM products
		WHERE brand_id = ? AND product_number_cleaned LIKE ?
		LIMIT 1`, brandID, like)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by number %q: %w", pnQuery, err)
	}
	return &p, nil
}

// ToggleFavorite 는 즐겨찾기 플래그를 0↔1 로 뒤집고 새 값을 반환한다.
func ToggleFavorite(db *sqlx.DB, brandID, productID int64) (int, error) {
	tx, err := db.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var current int
	err = tx.Get(&current, `SELECT is_favorite FROM products WHERE id = ? AND brand_id = ?`, productID, brandID)
	if err == sql.ErrNoRows {
		return 0, sql.ErrNoRows
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get favorite status: %w", err)
	}

	newStatus := 1 - current
	if _, err := tx.Exec(`UPDATE products SET is_favorite = ? WHERE id = ?`, newStatus, productID); err != nil {
		return 0, fmt.Errorf("failed to update favorite status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newStatus, nil
}

// UpdateProductDetails 는 상품 기본 정보와 variant 일괄 변경
// (add / update / delete) 을 한 트랜잭션으로 반영한다.
// 추가 행의 바코드는 품번+컬러+사이즈에서 재생성하며, 중복 바코드는 거부.
func UpdateProductDetails(db *sqlx.DB, brandID int64, input model.ProductDetailsInput) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var p model.Product
	err = tx.Get(&p, `SELECT * FROM products WHERE id = ? AND brand_id = ?`, input.ProductID, brandID)
	if err == sql.ErrNoRows {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("failed to get product for update: %w", err)
	}

	name := input.ProductName
	if name == "" {
		name = p.ProductName
	}
	_, err = tx.Exec(`
		UPDATE products
		SET product_name = ?, product_name_cleaned = ?, product_name_choseong = ?,
		    release_year = ?, item_category = ?
		WHERE id = ?`,
		name, textutil.CleanUpper(name), textutil.Choseong(name),
		input.ReleaseYear, input.ItemCategory, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update product row: %w", err)
	}

	for _, v := range input.Variants {
		switch v.Action {
		case "delete":
			if v.VariantID == nil {
				continue
			}
			if _, err := tx.Exec(`DELETE FROM store_stock WHERE variant_id = ?`, *v.VariantID); err != nil {
				return fmt.Errorf("failed to delete store_stock for variant %d: %w", *v.VariantID, err)
			}
			if _, err := tx.Exec(`DELETE FROM variants WHERE id = ? AND product_id = ?`, *v.VariantID, p.ID); err != nil {
				return fmt.Errorf("failed to delete variant %d: %w", *v.VariantID, err)
			}

		case "add":
			newBarcode, err := barcode.Generate(p.ProductNumber, v.Color, v.Size)
			if err != nil {
				return fmt.Errorf("새 variant 바코드 생성 실패 (color=%s, size=%s): %w", v.Color, v.Size, err)
			}
			cleaned := textutil.CleanUpper(newBarcode)

			var dup int
			if err := tx.Get(&dup, `SELECT COUNT(*) FROM variants WHERE barcode_cleaned = ?`, cleaned); err != nil {
				return fmt.Errorf("failed to check duplicate barcode: %w", err)
			}
			if dup > 0 {
				return fmt.Errorf("바코드 중복: %s", newBarcode)
			}

			_, err = tx.Exec(`
				INSERT INTO variants (product_id, barcode, color, size, original_price, sale_price,
				                      barcode_cleaned, color_cleaned, size_cleaned)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, newBarcode, v.Color, v.Size, v.OriginalPrice, v.SalePrice,
				cleaned, textutil.CleanUpper(v.Color), textutil.CleanUpper(v.Size))
			if err != nil {
				return fmt.Errorf("failed to insert variant: %w", err)
			}

		case "update":
			if v.VariantID == nil {
				continue
			}
			_, err = tx.Exec(`
				UPDATE variants
				SET color = ?, size = ?, original_price = ?, sale_price = ?,
				    color_cleaned = ?, size_cleaned = ?
				WHERE id = ? AND product_id = ?`,
				v.Color, v.Size, v.OriginalPrice, v.SalePrice,
				textutil.CleanUpper(v.Color), textutil.CleanUpper(v.Size),
				*v.VariantID, p.ID)
			if err != nil {
				return fmt.Errorf("failed to update variant %d: %w", *v.VariantID, err)
			}
		}
	}

	return tx.Commit()
}

// CountProducts 는 대시보드용 카탈로그 규모.
func CountProducts(db *sqlx.DB, brandID int64) (int64, error) {
	var n int64
	if err := db.Get(&n, `SELECT COUNT(*) FROM products WHERE brand_id = ?`, brandID); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}
