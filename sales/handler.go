// flowork/sales/handler.go

// Package sales 는 POS 판매/환불 API 를 담당한다.
// 판매 상품 검색(판매/환불/재고상세 3모드), 판매 등록, 영수증 조회,
// 전체 환불, 환불 대상 레코드 조회.
package sales

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"flowork/config"
	"flowork/database"
	"flowork/model"
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

// SearchProductsHandler 는 POST /api/search_sales_products 처리.
// mode: sales(기본, 재고 합계 포함) / refund(기간 내 판매분) /
// detail_stock(품번 하나의 variant 별 재고).
func SearchProductsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Query     string `json:"query"`
			Mode      string `json:"mode"`
			StartDate string `json:"start_date"`
			EndDate   string `json:"end_date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "요청 형식이 올바르지 않습니다")
			return
		}
		query := strings.TrimSpace(req.Query)
		if query == "" {
			writeError(w, http.StatusBadRequest, "검색어를 입력하세요")
			return
		}

		cfg := config.GetConfig()
		like := "%" + textutil.CleanUpper(query) + "%"

		switch req.Mode {
		case "refund":
			start, end := req.StartDate, req.EndDate
			if start == "" || end == "" {
				// 기간 미지정 시 최근 90일.
				now := time.Now()
				end = now.Format("2006-01-02")
				start = now.AddDate(0, 0, -90).Format("2006-01-02")
			}
			rows, err := database.SearchSoldProducts(db, cfg.StoreID, like, start, end)
			if err != nil {
				log.Printf("WARN: search_sales_products(refund) failed for %q: %v", query, err)
				writeError(w, http.StatusInternalServerError, "검색 중 오류가 발생했습니다")
				return
			}
			if rows == nil {
				rows = []database.SaleProductRow{}
			}
			writeJSON(w, http.StatusOK, map[string]any{"status": "success", "products": rows})

		case "detail_stock":
			rows, err := database.GetVariantStocks(db, cfg.BrandID, cfg.StoreID, textutil.CleanUpper(query))
			if err != nil {
				log.Printf("WARN: search_sales_products(detail_stock) failed for %q: %v", query, err)
				writeError(w, http.StatusInternalServerError, "검색 중 오류가 발생했습니다")
				return
			}
			if rows == nil {
				rows = []database.VariantStockRow{}
			}
			writeJSON(w, http.StatusOK, map[string]any{"status": "success", "variants": rows})

		case "", "sales":
			rows, err := database.SearchSaleProducts(db, cfg.BrandID, cfg.StoreID, like)
			if err != nil {
				log.Printf("WARN: search_sales_products(sales) failed for %q: %v", query, err)
				writeError(w, http.StatusInternalServerError, "검색 중 오류가 발생했습니다")
				return
			}
			if rows == nil {
				rows = []database.SaleProductRow{}
			}
			writeJSON(w, http.StatusOK, map[string]any{"status": "success", "products": rows})

		default:
			writeError(w, http.StatusBadRequest, "지원하지 않는 검색 모드입니다")
		}
	}
}

// SubmitHandler 는 POST /api/submit_sales 처리. 판매 등록.
// 수량/할인 검증 후 한 트랜잭션으로 재고 차감까지 끝낸다.
func SubmitHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var input model.SaleInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "요청 형식이 올바르지 않습니다")
			return
		}
		if len(input.Items) == 0 {
			writeError(w, http.StatusBadRequest, "등록할 상품이 없습니다")
			return
		}
		for _, item := range input.Items {
			if item.Quantity < 1 {
				writeError(w, http.StatusBadRequest, "수량은 1 이상이어야 합니다")
				return
			}
			if item.DiscountAmount < 0 {
				writeError(w, http.StatusBadRequest, "할인액은 0 이상이어야 합니다")
				return
			}
		}

		cfg := config.GetConfig()
		sale, err := database.CreateSale(db, cfg.StoreID, input)
		if err != nil {
			log.Printf("WARN: submit_sales failed: %v", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		log.Printf("sale registered: receipt=%s items=%d total=%d",
			sale.ReceiptNumber(), len(input.Items), sale.TotalAmount)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "success",
			"sale_id":        sale.ID,
			"receipt_number": sale.ReceiptNumber(),
			"total_amount":   sale.TotalAmount,
		})
	}
}

// DetailsHandler 는 GET /api/sale_details/{id} 처리.
// 환불 화면이 장바구니에 그대로 실을 행 스냅샷을 내려준다.
func DetailsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		idStr := strings.TrimPrefix(r.URL.Path, "/api/sale_details/")
		saleID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || saleID <= 0 {
			writeError(w, http.StatusBadRequest, "판매 ID가 올바르지 않습니다")
			return
		}

		cfg := config.GetConfig()
		sale, err := database.GetSale(db, cfg.StoreID, saleID)
		if err != nil {
			log.Printf("WARN: sale_details failed for sale=%d: %v", saleID, err)
			writeError(w, http.StatusInternalServerError, "조회 중 오류가 발생했습니다")
			return
		}
		if sale == nil {
			writeError(w, http.StatusNotFound, "판매 내역이 없습니다")
			return
		}

		items, err := database.GetSaleItems(db, saleID)
		if err != nil {
			log.Printf("WARN: sale_details: items load failed for sale=%d: %v", saleID, err)
			writeError(w, http.StatusInternalServerError, "조회 중 오류가 발생했습니다")
			return
		}
		if items == nil {
			items = []model.SaleItem{}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "success",
			"sale":           sale,
			"receipt_number": sale.ReceiptNumber(),
			"items":          items,
		})
	}
}

// RefundHandler 는 POST /api/sales/{id}/refund 처리. 본문 없는 전체 환불.
// 이미 환불된 건은 메시지 그대로 거부한다.
func RefundHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/sales/")
		idStr := strings.TrimSuffix(rest, "/refund")
		saleID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || saleID <= 0 || idStr == rest {
			writeError(w, http.StatusBadRequest, "판매 ID가 올바르지 않습니다")
			return
		}

		cfg := config.GetConfig()
		sale, err := database.RefundSaleFull(db, cfg.StoreID, saleID)
		if err != nil {
			log.Printf("WARN: refund failed for sale=%d: %v", saleID, err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		log.Printf("sale refunded: receipt=%s total=%d", sale.ReceiptNumber(), sale.TotalAmount)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"message": "환불이 완료되었습니다",
		})
	}
}

// RefundRecordsHandler 는 POST /api/refund_records 처리.
// 품번+컬러로 기간 내 유효 영수증을 찾아 환불 대상 선택 목록을 만든다.
func RefundRecordsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			ProductNumber string `json:"product_number"`
			Color         string `json:"color"`
			StartDate     string `json:"start_date"`
			EndDate       string `json:"end_date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "요청 형식이 올바르지 않습니다")
			return
		}
		if strings.TrimSpace(req.ProductNumber) == "" {
			writeError(w, http.StatusBadRequest, "품번이 필요합니다")
			return
		}

		start, end := req.StartDate, req.EndDate
		if start == "" || end == "" {
			now := time.Now()
			end = now.Format("2006-01-02")
			start = now.AddDate(0, 0, -90).Format("2006-01-02")
		}

		cfg := config.GetConfig()
		records, err := database.GetRefundRecords(db, cfg.StoreID,
			textutil.CleanUpper(req.ProductNumber), req.Color, start, end)
		if err != nil {
			log.Printf("WARN: refund_records failed for %q: %v", req.ProductNumber, err)
			writeError(w, http.StatusInternalServerError, "조회 중 오류가 발생했습니다")
			return
		}
		if records == nil {
			records = []database.RefundRecord{}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"records": records,
		})
	}
}
