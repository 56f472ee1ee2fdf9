// flowork/dashboard/handler.go

// Package dashboard 는 첫 화면 요약 API 를 담당한다.
package dashboard

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"flowork/config"
	"flowork/database"
)

// SummaryHandler 는 GET /api/dashboard/summary 처리.
// 오늘의 판매 건수/금액/수량, 환불 건수, 등록 상품 수, 재고 부족 행 수.
func SummaryHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		cfg := config.GetConfig()
		today := time.Now().Format("2006-01-02")

		summary, err := database.GetDailySummary(db, cfg.StoreID, today)
		if err != nil {
			log.Printf("WARN: dashboard summary failed: %v", err)
			writeError(w, http.StatusInternalServerError, "집계 중 오류가 발생했습니다")
			return
		}
		productCount, err := database.CountProducts(db, cfg.BrandID)
		if err != nil {
			log.Printf("WARN: dashboard product count failed: %v", err)
			writeError(w, http.StatusInternalServerError, "집계 중 오류가 발생했습니다")
			return
		}
		shortageCount, err := database.CountShortages(db, cfg.StoreID)
		if err != nil {
			log.Printf("WARN: dashboard shortage count failed: %v", err)
			writeError(w, http.StatusInternalServerError, "집계 중 오류가 발생했습니다")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":         "success",
			"date":           today,
			"sale_count":     summary.SaleCount,
			"total_amount":   summary.TotalAmount,
			"total_quantity": summary.TotalQty,
			"refund_count":   summary.RefundCount,
			"product_count":  productCount,
			"shortage_count": shortageCount,
		})
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": message})
}
