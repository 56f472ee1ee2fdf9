// flowork/product/handler.go

// Package product 는 상품 카탈로그 API 를 담당한다.
// 실시간 검색, 즐겨찾기 토글, 바코드 단건 조회, 품번 접두 검색,
// 상품 상세 조회/저장.
package product

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"

	"flowork/config"
	"flowork/database"
	"flowork/model"
)

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"status": "error", "message": message})
}

// LiveSearchHandler 는 POST /api/live_search 처리.
// 검색어가 비어 있으면 즐겨찾기 목록을 돌려준다 (기본 화면).
// 품번/상품명/초성 어느 쪽으로도 걸린다.
func LiveSearchHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Query    string `json:"query"`
			Category string `json:"category"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "요청 형식이 올바르지 않습니다")
			return
		}

		cfg := config.GetConfig()
		products, isFavoriteList, err := database.SearchProducts(db, cfg.BrandID, req.Query, req.Category)
		if err != nil {
			log.Printf("WARN: live_search failed for %q: %v", req.Query, err)
			writeError(w, http.StatusInternalServerError, "검색 중 오류가 발생했습니다")
			return
		}
		if products == nil {
			products = []model.Product{}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":           "success",
			"products":         products,
			"is_favorite_list": isFavoriteList,
		})
	}
}

// ToggleFavoriteHandler 는 POST /toggle_favorite 처리.
// 응답의 new_favorite_status 는 0 또는 1.
func ToggleFavoriteHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			ProductID int64 `json:"product_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == 0 {
			writeError(w, http.StatusBadRequest, "상품 ID가 필요합니다")
			return
		}

		cfg := config.GetConfig()
		newStatus, err := database.ToggleFavorite(db, cfg.BrandID, req.ProductID)
		if err != nil {
			log.Printf("WARN: toggle_favorite failed for product=%d: %v", req.ProductID, err)
			writeError(w, http.StatusInternalServerError, "즐겨찾기 변경에 실패했습니다")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":              "success",
			"new_favorite_status": newStatus,
		})
	}
}

// FetchVariantHandler 는 POST /api/fetch_variant 처리.
// POS 화면이 바코드 스캔으로 장바구니에 담을 SKU 하나를 가져온다.
func FetchVariantHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Barcode string `json:"barcode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Barcode) == "" {
			writeError(w, http.StatusBadRequest, "바코드가 필요합니다")
			return
		}

		cfg := config.GetConfig()
		variant, prod, err := database.GetVariantByBarcode(db, cfg.BrandID, req.Barcode)
		if err != nil {
			log.Printf("WARN: fetch_variant failed for %s: %v", req.Barcode, err)
			writeError(w, http.StatusInternalServerError, "조회 중 오류가 발생했습니다")
			return
		}
		if variant == nil {
			writeError(w, http.StatusNotFound, "등록되지 않은 바코드입니다")
			return
		}

		qty, err := database.GetStoreStockQuantity(db, cfg.StoreID, variant.ID)
		if err != nil {
			log.Printf("WARN: fetch_variant: stock lookup failed for %s: %v", req.Barcode, err)
			writeError(w, http.StatusInternalServerError, "조회 중 오류가 발생했습니다")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success",
			"variant": map[string]any{
				"variant_id":     variant.ID,
				"barcode":        variant.Barcode,
				"color":          variant.Color,
				"size":           variant.Size,
				"original_price": variant.OriginalPrice,
				"sale_price":     variant.SalePrice,
				"product_name":   prod.ProductName,
				"product_number": prod.ProductNumber,
				"stock_quantity": qty,
			},
		})
	}
}

// SearchByPrefixHandler 는 POST /api/search_product_by_prefix 처리.
// 품번 입력란의 자동완성용 접두 검색.
func SearchByPrefixHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Prefix string `json:"prefix"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "요청 형식이 올바르지 않습니다")
			return
		}

		cfg := config.GetConfig()
		numbers, err := database.SearchProductNumbersByPrefix(db, cfg.BrandID, req.Prefix)
		if err != nil {
			log.Printf("WARN: search_product_by_prefix failed for %q: %v", req.Prefix, err)
			writeError(w, http.StatusInternalServerError, "검색 중 오류가 발생했습니다")
			return
		}
		if numbers == nil {
			numbers = []string{}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":          "success",
			"product_numbers": numbers,
		})
	}
}

// FindDetailsHandler 는 POST /api/find_product_details 처리.
// 상품 수정 화면이 품번으로 상품과 전체 variant 를 불러온다.
func FindDetailsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			ProductNumber string `json:"product_number"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ProductNumber) == "" {
			writeError(w, http.StatusBadRequest, "품번이 필요합니다")
			return
		}

		cfg := config.GetConfig()
		prod, err := database.FindProductByNumber(db, cfg.BrandID, req.ProductNumber)
		if err != nil {
			log.Printf("WARN: find_product_details failed for %q: %v", req.ProductNumber, err)
			writeError(w, http.StatusInternalServerError, "조회 중 오류가 발생했습니다")
			return
		}
		if prod == nil {
			writeError(w, http.StatusNotFound, "해당 품번의 상품이 없습니다")
			return
		}

		variants, err := database.GetVariantsByProductID(db, prod.ID)
		if err != nil {
			log.Printf("WARN: find_product_details: variants load failed for product=%d: %v", prod.ID, err)
			writeError(w, http.StatusInternalServerError, "조회 중 오류가 발생했습니다")
			return
		}
		if variants == nil {
			variants = []model.Variant{}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "success",
			"product":  prod,
			"variants": variants,
		})
	}
}

// UpdateDetailsHandler 는 POST /api/update_product_details 처리.
// variant 배열의 각 행은 action(add/update/delete) 을 달고 온다.
// add 행의 바코드는 서버가 생성하며, 중복이면 저장 전체가 거부된다.
// 업무 오류 메시지는 그대로 화면에 전달한다.
func UpdateDetailsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var input model.ProductDetailsInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "요청 형식이 올바르지 않습니다")
			return
		}
		if input.ProductID == 0 {
			writeError(w, http.StatusBadRequest, "상품 ID가 필요합니다")
			return
		}

		cfg := config.GetConfig()
		if err := database.UpdateProductDetails(db, cfg.BrandID, input); err != nil {
			log.Printf("WARN: update_product_details failed for product=%d: %v", input.ProductID, err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"message": "저장되었습니다",
		})
	}
}
