// flowork/stock/handler.go

// Package stock 은 재고 실사 화면이 부르는 재고 조정 API 를 담당한다.
// 전산재고 ±1, 실재고 저장/일괄 저장/초기화. 모든 응답의 차이값은
// 서버가 다시 계산한 값이며 화면은 이 값을 그대로 표시한다.
package stock

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"flowork/config"
	"flowork/database"
	"flowork/textutil"
)

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"status": "error", "message": message})
}

// diffField 는 hasDiff=false 일 때 null 로 내리기 위한 변환.
func diffField(diff int64, hasDiff bool) *int64 {
	if !hasDiff {
		return nil
	}
	return &diff
}

// UpdateStockHandler 는 POST /update_stock 처리. 전산재고 ±1.
// 수량은 0 미만으로 내려가지 않는다.
func UpdateStockHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Barcode string `json:"barcode"`
			Change  int64  `json:"change"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "요청 형식이 올바르지 않습니다")
			return
		}
		if req.Change != 1 && req.Change != -1 {
			writeError(w, http.StatusBadRequest, "변경값은 +1 또는 -1 이어야 합니다")
			return
		}

		cfg := config.GetConfig()
		variant, _, err := database.GetVariantByBarcode(db, cfg.BrandID, req.Barcode)
		if err != nil {
			log.Printf("WARN: update_stock: variant lookup failed for %s: %v", req.Barcode, err)
			writeError(w, http.StatusInternalServerError, "재고 조회 중 오류가 발생했습니다")
			return
		}
		if variant == nil {
			writeError(w, http.StatusNotFound, "등록되지 않은 바코드입니다")
			return
		}

		newQty, diff, hasDiff, err := database.AdjustQuantity(db, cfg.StoreID, variant.ID, req.Change)
		if err != nil {
			log.Printf("WARN: update_stock: adjust failed for %s: %v", req.Barcode, err)
			writeError(w, http.StatusInternalServerError, "재고 변경에 실패했습니다")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "success",
			"barcode":        variant.Barcode,
			"new_quantity":   newQty,
			"new_stock_diff": diffField(diff, hasDiff),
		})
	}
}

// UpdateActualStockHandler 는 POST /update_actual_stock 처리.
// actual_stock 빈 문자열은 실재고 지우기(NULL) 를 뜻한다.
func UpdateActualStockHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Barcode     string `json:"barcode"`
			ActualStock string `json:"actual_stock"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "요청 형식이 올바르지 않습니다")
			return
		}

		var actual *int64
		if t := strings.TrimSpace(req.ActualStock); t != "" {
			n, err := strconv.ParseInt(t, 10, 64)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "실재고는 0 이상의 정수여야 합니다")
				return
			}
			actual = &n
		}

		cfg := config.GetConfig()
		variant, _, err := database.GetVariantByBarcode(db, cfg.BrandID, req.Barcode)
		if err != nil {
			log.Printf("WARN: update_actual_stock: variant lookup failed for %s: %v", req.Barcode, err)
			writeError(w, http.StatusInternalServerError, "재고 조회 중 오류가 발생했습니다")
			return
		}
		if variant == nil {
			writeError(w, http.StatusNotFound, "등록되지 않은 바코드입니다")
			return
		}

		diff, hasDiff, err := database.SetActualStock(db, cfg.StoreID, variant.ID, actual)
		if err != nil {
			log.Printf("WARN: update_actual_stock: save failed for %s: %v", req.Barcode, err)
			writeError(w, http.StatusInternalServerError, "실재고 저장에 실패했습니다")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":           "success",
			"new_actual_stock": actual,
			"new_stock_diff":   diffField(diff, hasDiff),
		})
	}
}

// BulkUpdateActualStockHandler 는 POST /bulk_update_actual_stock 처리.
// 스캐너 일괄 입력 화면에서 바코드별 개수를 한 번에 저장한다.
// 모르는 바코드는 건너뛰고 목록으로 되돌려준다.
func BulkUpdateActualStockHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Items []struct {
				Barcode     string `json:"barcode"`
				ActualStock int64  `json:"actual_stock"`
			} `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "요청 형식이 올바르지 않습니다")
			return
		}
		if len(req.Items) == 0 {
			writeError(w, http.StatusBadRequest, "저장할 항목이 없습니다")
			return
		}

		byCode := make(map[string]int64, len(req.Items))
		for _, it := range req.Items {
			if it.ActualStock < 0 {
				writeError(w, http.StatusBadRequest, "실재고는 0 이상의 정수여야 합니다")
				return
			}
			cleaned := textutil.CleanUpper(it.Barcode)
			if cleaned == "" {
				continue
			}
			byCode[cleaned] = it.ActualStock
		}

		cfg := config.GetConfig()
		updated, unknown, err := database.BulkSetActualStock(db, cfg.BrandID, cfg.StoreID, byCode)
		if err != nil {
			log.Printf("WARN: bulk_update_actual_stock failed: %v", err)
			writeError(w, http.StatusInternalServerError, "일괄 저장에 실패했습니다")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":           "success",
			"updated_count":    updated,
			"unknown_barcodes": unknown,
		})
	}
}

// ResetActualStockHandler 는 POST /reset_actual_stock 처리.
// 실사 한 바퀴가 끝난 뒤 매장의 실재고 입력을 전부 지운다.
func ResetActualStockHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		cfg := config.GetConfig()
		count, err := database.ResetActualStock(db, cfg.StoreID)
		if err != nil {
			log.Printf("WARN: reset_actual_stock failed: %v", err)
			writeError(w, http.StatusInternalServerError, "실재고 초기화에 실패했습니다")
			return
		}
		log.Printf("actual stock reset: store=%d rows=%d", cfg.StoreID, count)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "success",
			"reset_count": count,
		})
	}
}
