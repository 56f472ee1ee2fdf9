// flowork/excel/import.go
package excel

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"flowork/barcode"
	"flowork/config"
	"flowork/database"
	"flowork/excelmap"
	"flowork/task"
	"flowork/textutil"
)

// stockColumns 는 재고 가져오기 폼에서 읽은 열 배치.
type stockColumns struct {
	layout    excelmap.Layout
	barcode   int
	pn        int
	color     int
	quantity  int
	sizeStart int
}

// StockUploadHandler 는 POST /update_store_stock_excel 처리.
// 파일과 매핑을 받아 검사한 뒤 작업 ID 를 즉시 돌려주고,
// 행 반영은 백그라운드 작업으로 돌린다. 제외 행은 건너뛴다.
func StockUploadHandler(db *sqlx.DB, reg *task.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		file, err := formFile(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer file.Close()

		rows, err := readSheet(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if len(rows) < 2 {
			writeError(w, http.StatusBadRequest, "가져올 데이터 행이 없습니다")
			return
		}

		cols := stockColumns{layout: excelmap.Layout(r.FormValue("layout"))}
		switch cols.layout {
		case excelmap.LayoutHorizontal:
			if cols.pn, err = requiredColumn(r, "product_number_col", "품번"); err == nil {
				if cols.color, err = requiredColumn(r, "color_col", "컬러"); err == nil {
					cols.sizeStart, err = requiredColumn(r, "size_start_col", "사이즈 시작")
				}
			}
		default:
			cols.layout = excelmap.LayoutVertical
			if cols.barcode, err = requiredColumn(r, "barcode_col", "바코드"); err == nil {
				cols.quantity, err = requiredColumn(r, "quantity_col", "수량")
			}
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		excluded := excludedRows(r)
		cfg := config.GetConfig()
		taskID := reg.Create()
		go runStockImport(db, reg, taskID, cfg.BrandID, cfg.StoreID, rows, cols, excluded)

		log.Printf("stock import started: task=%s rows=%d layout=%s", taskID, len(rows)-1, cols.layout)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"task_id": taskID,
		})
	}
}

func runStockImport(db *sqlx.DB, reg *task.Registry, taskID string, brandID, storeID int64,
	rows [][]string, cols stockColumns, excluded map[int]bool) {

	tx, err := db.Beginx()
	if err != nil {
		reg.Fail(taskID, "작업을 시작할 수 없습니다")
		return
	}
	defer tx.Rollback()

	total := len(rows) - 1
	var updated, skipped int
	var unknown []string

	for i := 1; i < len(rows); i++ {
		reg.Progress(taskID, i, total)
		if excluded[i] {
			skipped++
			continue
		}
		row := rows[i]

		switch cols.layout {
		case excelmap.LayoutHorizontal:
			pnCleaned := textutil.CleanUpper(cell(row, cols.pn))
			colorCleaned := textutil.CleanUpper(cell(row, cols.color))
			if pnCleaned == "" {
				skipped++
				continue
			}
			for c := cols.sizeStart; c < len(row); c++ {
				qtyText := cell(row, c)
				if qtyText == "" {
					continue
				}
				qty, err := parseQuantity(qtyText)
				if err != nil {
					reg.Fail(taskID, fmt.Sprintf("%d행 %s열: %v", i, columnLetter(c), err))
					return
				}
				sizeCleaned := textutil.CleanUpper(cell(rows[0], c))
				variantID, ok, err := database.FindVariantIDBySpecTx(tx, brandID, pnCleaned, colorCleaned, sizeCleaned)
				if err != nil {
					reg.Fail(taskID, "재고 반영 중 오류가 발생했습니다")
					return
				}
				if !ok {
					unknown = append(unknown, cell(row, cols.pn)+"/"+cell(row, cols.color)+"/"+cell(rows[0], c))
					continue
				}
				if err := database.SetStockQuantityTx(tx, storeID, variantID, qty); err != nil {
					reg.Fail(taskID, "재고 반영 중 오류가 발생했습니다")
					return
				}
				updated++
			}

		default:
			bcCleaned := textutil.CleanUpper(cell(row, cols.barcode))
			if bcCleaned == "" {
				skipped++
				continue
			}
			qty, err := parseQuantity(cell(row, cols.quantity))
			if err != nil {
				reg.Fail(taskID, fmt.Sprintf("%d행: %v", i, err))
				return
			}
			variantID, ok, err := database.FindVariantIDByBarcodeTx(tx, brandID, bcCleaned)
			if err != nil {
				reg.Fail(taskID, "재고 반영 중 오류가 발생했습니다")
				return
			}
			if !ok {
				unknown = append(unknown, cell(row, cols.barcode))
				continue
			}
			if err := database.SetStockQuantityTx(tx, storeID, variantID, qty); err != nil {
				reg.Fail(taskID, "재고 반영 중 오류가 발생했습니다")
				return
			}
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		reg.Fail(taskID, "저장에 실패했습니다")
		return
	}

	log.Printf("stock import done: task=%s updated=%d skipped=%d unknown=%d",
		taskID, updated, skipped, len(unknown))
	reg.Complete(taskID, fmt.Sprintf("재고 %d건을 반영했습니다", updated), map[string]any{
		"updated_count":   updated,
		"skipped_count":   skipped,
		"unknown_entries": unknown,
	})
}

// catalogColumns 는 상품 DB 가져오기 폼에서 읽은 열 배치.
type catalogColumns struct {
	layout       excelmap.Layout
	pn           int
	name         int
	color        int
	size         int
	origPrice    int
	salePrice    int
	quantity     int // -1 허용
	releaseYear  int // -1 허용
	itemCategory int // -1 허용
	sizeStart    int
}

// CatalogImportHandler 는 POST /import_db_excel 처리.
// 상품/variant 를 만들고 (바코드는 품번+컬러+사이즈에서 생성),
// 수량 열이 있으면 초기 재고까지 싣는다. 가로형은 머리글의 사이즈
// 라벨을 따라 셀 값이 있는 사이즈만 variant 로 만든다.
func CatalogImportHandler(db *sqlx.DB, reg *task.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		file, err := formFile(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer file.Close()

		rows, err := readSheet(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if len(rows) < 2 {
			writeError(w, http.StatusBadRequest, "가져올 데이터 행이 없습니다")
			return
		}

		cols := catalogColumns{layout: excelmap.Layout(r.FormValue("layout"))}
		if cols.pn, err = requiredColumn(r, "product_number_col", "품번"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if cols.name, err = requiredColumn(r, "product_name_col", "상품명"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if cols.color, err = requiredColumn(r, "color_col", "컬러"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if cols.origPrice, err = requiredColumn(r, "original_price_col", "정가"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if cols.salePrice, err = requiredColumn(r, "sale_price_col", "판매가"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if cols.releaseYear, err = optionalColumn(r, "release_year_col"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if cols.itemCategory, err = optionalColumn(r, "item_category_col"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		switch cols.layout {
		case excelmap.LayoutHorizontal:
			cols.sizeStart, err = requiredColumn(r, "size_start_col", "사이즈 시작")
		default:
			cols.layout = excelmap.LayoutVertical
			if cols.size, err = requiredColumn(r, "size_col", "사이즈"); err == nil {
				cols.quantity, err = optionalColumn(r, "quantity_col")
			}
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		excluded := excludedRows(r)
		cfg := config.GetConfig()
		taskID := reg.Create()
		go runCatalogImport(db, reg, taskID, cfg.BrandID, cfg.StoreID, rows, cols, excluded)

		log.Printf("catalog import started: task=%s rows=%d layout=%s", taskID, len(rows)-1, cols.layout)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"task_id": taskID,
		})
	}
}

func runCatalogImport(db *sqlx.DB, reg *task.Registry, taskID string, brandID, storeID int64,
	rows [][]string, cols catalogColumns, excluded map[int]bool) {

	tx, err := db.Beginx()
	if err != nil {
		reg.Fail(taskID, "작업을 시작할 수 없습니다")
		return
	}
	defer tx.Rollback()

	total := len(rows) - 1
	var imported, skipped int

	for i := 1; i < len(rows); i++ {
		reg.Progress(taskID, i, total)
		if excluded[i] {
			skipped++
			continue
		}
		row := rows[i]

		pn := cell(row, cols.pn)
		if pn == "" {
			skipped++
			continue
		}
		origPrice, err := parsePrice(cell(row, cols.origPrice))
		if err != nil {
			reg.Fail(taskID, fmt.Sprintf("%d행: %v", i, err))
			return
		}
		salePrice, err := parsePrice(cell(row, cols.salePrice))
		if err != nil {
			reg.Fail(taskID, fmt.Sprintf("%d행: %v", i, err))
			return
		}
		if salePrice == 0 {
			salePrice = origPrice
		}

		var releaseYear *int
		if cols.releaseYear >= 0 {
			if y, err := strconv.Atoi(cell(row, cols.releaseYear)); err == nil {
				releaseYear = &y
			}
		}
		var itemCategory *string
		if cols.itemCategory >= 0 {
			if c := cell(row, cols.itemCategory); c != "" {
				itemCategory = &c
			}
		}

		productID, err := database.UpsertProductTx(tx, brandID, pn, cell(row, cols.name), releaseYear, itemCategory)
		if err != nil {
			reg.Fail(taskID, fmt.Sprintf("%d행: %v", i, err))
			return
		}
		color := cell(row, cols.color)

		switch cols.layout {
		case excelmap.LayoutHorizontal:
			for c := cols.sizeStart; c < len(row); c++ {
				cellText := cell(row, c)
				if cellText == "" {
					continue
				}
				size := cell(rows[0], c)
				if size == "" {
					continue
				}
				qty, err := parseQuantity(cellText)
				if err != nil {
					reg.Fail(taskID, fmt.Sprintf("%d행 %s열: %v", i, columnLetter(c), err))
					return
				}
				if err := upsertVariantWithStock(tx, brandID, storeID, productID,
					pn, color, size, origPrice, salePrice, qty, true); err != nil {
					reg.Fail(taskID, fmt.Sprintf("%d행: %v", i, err))
					return
				}
				imported++
			}

		default:
			size := cell(row, cols.size)
			if size == "" {
				skipped++
				continue
			}
			var qty int64
			hasQty := false
			if cols.quantity >= 0 {
				if qty, err = parseQuantity(cell(row, cols.quantity)); err != nil {
					reg.Fail(taskID, fmt.Sprintf("%d행: %v", i, err))
					return
				}
				hasQty = true
			}
			if err := upsertVariantWithStock(tx, brandID, storeID, productID,
				pn, color, size, origPrice, salePrice, qty, hasQty); err != nil {
				reg.Fail(taskID, fmt.Sprintf("%d행: %v", i, err))
				return
			}
			imported++
		}
	}

	if err := tx.Commit(); err != nil {
		reg.Fail(taskID, "저장에 실패했습니다")
		return
	}

	log.Printf("catalog import done: task=%s imported=%d skipped=%d", taskID, imported, skipped)
	reg.Complete(taskID, fmt.Sprintf("상품 %d건을 가져왔습니다", imported), map[string]any{
		"imported_count": imported,
		"skipped_count":  skipped,
	})
}

// upsertVariantWithStock 은 바코드 생성 → variant upsert → (수량이 있으면)
// 초기 재고 반영까지 한 행 분량을 처리한다.
func upsertVariantWithStock(tx *sqlx.Tx, brandID, storeID, productID int64,
	pn, color, size string, origPrice, salePrice, qty int64, setStock bool) error {

	bc, err := barcode.Generate(pn, color, size)
	if err != nil {
		return fmt.Errorf("바코드 생성 실패 (color=%s, size=%s): %w", color, size, err)
	}
	variantID, err := database.UpsertVariantTx(tx, productID, bc, color, strings.TrimSpace(size), origPrice, salePrice)
	if err != nil {
		return err
	}
	if setStock {
		if err := database.SetStockQuantityTx(tx, storeID, variantID, qty); err != nil {
			return err
		}
	}
	return nil
}
