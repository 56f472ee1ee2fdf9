// flowork/routes.go
package main

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"flowork/dashboard"
	"flowork/excel"
	"flowork/product"
	"flowork/sales"
	"flowork/stock"
	"flowork/task"
)

func SetupRoutes(mux *http.ServeMux, dbConn *sqlx.DB, reg *task.Registry) {

	// 재고 실사
	mux.HandleFunc("/update_stock", stock.UpdateStockHandler(dbConn))
	mux.HandleFunc("/update_actual_stock", stock.UpdateActualStockHandler(dbConn))
	mux.HandleFunc("/bulk_update_actual_stock", stock.BulkUpdateActualStockHandler(dbConn))
	mux.HandleFunc("/reset_actual_stock", stock.ResetActualStockHandler(dbConn))

	// 상품 카탈로그
	mux.HandleFunc("/api/live_search", product.LiveSearchHandler(dbConn))
	mux.HandleFunc("/toggle_favorite", product.ToggleFavoriteHandler(dbConn))
	mux.HandleFunc("/api/fetch_variant", product.FetchVariantHandler(dbConn))
	mux.HandleFunc("/api/search_product_by_prefix", product.SearchByPrefixHandler(dbConn))
	mux.HandleFunc("/api/find_product_details", product.FindDetailsHandler(dbConn))
	mux.HandleFunc("/api/update_product_details", product.UpdateDetailsHandler(dbConn))

	// 판매 / 환불
	mux.HandleFunc("/api/search_sales_products", sales.SearchProductsHandler(dbConn))
	mux.HandleFunc("/api/submit_sales", sales.SubmitHandler(dbConn))
	mux.HandleFunc("/api/sale_details/", sales.DetailsHandler(dbConn))
	mux.HandleFunc("/api/sales/", sales.RefundHandler(dbConn))
	mux.HandleFunc("/api/refund_records", sales.RefundRecordsHandler(dbConn))

	// 엑셀 가져오기 + 작업 상태
	mux.HandleFunc("/api/analyze_excel", excel.AnalyzeHandler())
	mux.HandleFunc("/api/verify_excel", excel.VerifyHandler())
	mux.HandleFunc("/update_store_stock_excel", excel.StockUploadHandler(dbConn, reg))
	mux.HandleFunc("/import_db_excel", excel.CatalogImportHandler(dbConn, reg))
	mux.HandleFunc("/api/task_status/", task.StatusHandler(reg))

	// 대시보드
	mux.HandleFunc("/api/dashboard/summary", dashboard.SummaryHandler(dbConn))
}
