// flowork/excel/excel_test.go

package excel

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"flowork/config"
	"flowork/database"
	"flowork/loader"
	"flowork/model"
	"flowork/task"
)

// buildSheet 는 문자열 행렬로 첫 시트를 채운 xlsx 바이트를 만든다.
func buildSheet(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellName, v))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func multipartReq(t *testing.T, path string, fields url.Values, fileBytes []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "upload.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(fileBytes)
	require.NoError(t, err)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	_, err := config.LoadConfig()
	require.NoError(t, err)

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, loader.InitDatabase(db))
	return db
}

func waitTerminal(t *testing.T, reg *task.Registry, taskID string) model.TaskState {
	t.Helper()
	var st model.TaskState
	require.Eventually(t, func() bool {
		var ok bool
		st, ok = reg.Get(taskID)
		return ok && st.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return st
}

func TestAnalyzeHandler(t *testing.T) {
	file := buildSheet(t, [][]string{
		{"바코드", "품번", "수량"},
		{"AB1234CD5600BLACK095", "AB1234CD56", "3"},
		{"AB1234CD5600BLACK100", "AB1234CD56", "1"},
		{"AB1234CD5600NAVY095", "AB1234CD56", "2"},
		{"AB1234CD5600NAVY100", "AB1234CD56", "4"},
		{"AB1234CD5600GRAY095", "AB1234CD56", "5"},
		{"AB1234CD5600GRAY100", "AB1234CD56", "6"},
	})

	rec := httptest.NewRecorder()
	AnalyzeHandler()(rec, multipartReq(t, "/api/analyze_excel", nil, file))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, []any{"A", "B", "C"}, body["column_letters"].([]any))
	preview := body["preview_data"].(map[string]any)
	samplesA := preview["A"].([]any)
	assert.Len(t, samplesA, 5, "미리보기는 최대 5행")
	assert.Equal(t, "바코드", samplesA[0])
}

func TestAnalyzeHandlerRejectsEmptyFile(t *testing.T) {
	file := buildSheet(t, nil)
	rec := httptest.NewRecorder()
	AnalyzeHandler()(rec, multipartReq(t, "/api/analyze_excel", nil, file))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "빈 파일입니다", decode(t, rec)["message"])
}

func TestAnalyzeHandlerRequiresFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/analyze_excel", nil)
	rec := httptest.NewRecorder()
	AnalyzeHandler()(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyHandlerFlagsSuspiciousRows(t *testing.T) {
	file := buildSheet(t, [][]string{
		{"바코드", "품번", "수량"},
		{"AB1234CD5600BLACK095", "AB1234CD56", "3"}, // 정상
		{"", "AB1234CD56", "1"},                     // 바코드 누락 (2행)
		{"AB1234CD5600NAVY095", "", "x"},            // 품번 누락 + 수량 비숫자 (3행)
	})
	fields := url.Values{
		"layout":             {"vertical"},
		"barcode_col":        {"A"},
		"product_number_col": {"B"},
		"quantity_col":       {"C"},
	}

	rec := httptest.NewRecorder()
	VerifyHandler()(rec, multipartReq(t, "/api/verify_excel", fields, file))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rows := decode(t, rec)["suspicious_rows"].([]any)
	require.Len(t, rows, 2)
	first := rows[0].(map[string]any)
	assert.EqualValues(t, 2, first["row_index"])
	assert.Equal(t, []any{"바코드 누락"}, first["reasons"].([]any))
	second := rows[1].(map[string]any)
	assert.EqualValues(t, 3, second["row_index"])
	assert.Len(t, second["reasons"].([]any), 2)
}

func TestStockUploadVerticalWithExclusions(t *testing.T) {
	db := newTestDB(t)
	tx, err := db.Beginx()
	require.NoError(t, err)
	productID, err := database.UpsertProductTx(tx, 1, "AB1234CD56", "와이드 팬츠", nil, nil)
	require.NoError(t, err)
	v95, err := database.UpsertVariantTx(tx, productID, "AB1234CD5600BLACK095", "BLACK", "095", 59000, 49000)
	require.NoError(t, err)
	v100, err := database.UpsertVariantTx(tx, productID, "AB1234CD5600BLACK100", "BLACK", "100", 59000, 49000)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	file := buildSheet(t, [][]string{
		{"바코드", "수량"},
		{"AB1234CD5600BLACK095", "7"},
		{"AB1234CD5600BLACK100", "9"}, // 제외 대상
		{"UNKNOWN0000000000000", "1"},
	})
	fields := url.Values{
		"layout":               {"vertical"},
		"barcode_col":          {"A"},
		"quantity_col":         {"B"},
		"excluded_row_indices": {"2"},
	}

	reg := task.NewRegistry()
	rec := httptest.NewRecorder()
	StockUploadHandler(db, reg)(rec, multipartReq(t, "/update_store_stock_excel", fields, file))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	require.Equal(t, "success", body["status"])
	taskID := body["task_id"].(string)
	require.NotEmpty(t, taskID)

	st := waitTerminal(t, reg, taskID)
	require.Equal(t, model.TaskStatusCompleted, st.Status, st.Message)
	assert.EqualValues(t, 1, st.Result["updated_count"])
	assert.EqualValues(t, 1, st.Result["skipped_count"])
	assert.Len(t, st.Result["unknown_entries"], 1)

	qty, err := database.GetStoreStockQuantity(db, 1, v95)
	require.NoError(t, err)
	assert.Equal(t, int64(7), qty)

	qty, err = database.GetStoreStockQuantity(db, 1, v100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty, "제외한 행은 반영되지 않는다")
}

func TestStockUploadHorizontalMatrix(t *testing.T) {
	db := newTestDB(t)
	tx, err := db.Beginx()
	require.NoError(t, err)
	productID, err := database.UpsertProductTx(tx, 1, "AB1234CD56", "와이드 팬츠", nil, nil)
	require.NoError(t, err)
	v95, err := database.UpsertVariantTx(tx, productID, "AB1234CD5600BLACK095", "BLACK", "95", 59000, 49000)
	require.NoError(t, err)
	v100, err := database.UpsertVariantTx(tx, productID, "AB1234CD5600BLACK100", "BLACK", "100", 59000, 49000)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	file := buildSheet(t, [][]string{
		{"품번", "컬러", "95", "100"},
		{"AB1234CD56", "BLACK", "4", "6"},
	})
	fields := url.Values{
		"layout":             {"horizontal"},
		"product_number_col": {"A"},
		"color_col":          {"B"},
		"size_start_col":     {"C"},
	}

	reg := task.NewRegistry()
	rec := httptest.NewRecorder()
	StockUploadHandler(db, reg)(rec, multipartReq(t, "/update_store_stock_excel", fields, file))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	st := waitTerminal(t, reg, decode(t, rec)["task_id"].(string))
	require.Equal(t, model.TaskStatusCompleted, st.Status, st.Message)
	assert.EqualValues(t, 2, st.Result["updated_count"])

	qty, _ := database.GetStoreStockQuantity(db, 1, v95)
	assert.Equal(t, int64(4), qty)
	qty, _ = database.GetStoreStockQuantity(db, 1, v100)
	assert.Equal(t, int64(6), qty)
}

func TestStockUploadMissingMapping(t *testing.T) {
	db := newTestDB(t)
	file := buildSheet(t, [][]string{{"바코드", "수량"}, {"X", "1"}})

	rec := httptest.NewRecorder()
	StockUploadHandler(db, task.NewRegistry())(rec,
		multipartReq(t, "/update_store_stock_excel", url.Values{"layout": {"vertical"}}, file))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "바코드")
}

func TestCatalogImportVertical(t *testing.T) {
	db := newTestDB(t)

	file := buildSheet(t, [][]string{
		{"품번", "상품명", "컬러", "사이즈", "정가", "판매가", "수량"},
		{"AB1234CD56", "와이드 팬츠", "BLACK", "95", "59,000", "49000", "3"},
		{"AB1234CD56", "와이드 팬츠", "BLACK", "FREE", "59000", "", "2"},
	})
	fields := url.Values{
		"layout":             {"vertical"},
		"product_number_col": {"A"},
		"product_name_col":   {"B"},
		"color_col":          {"C"},
		"size_col":           {"D"},
		"original_price_col": {"E"},
		"sale_price_col":     {"F"},
		"quantity_col":       {"G"},
	}

	reg := task.NewRegistry()
	rec := httptest.NewRecorder()
	CatalogImportHandler(db, reg)(rec, multipartReq(t, "/import_db_excel", fields, file))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	st := waitTerminal(t, reg, decode(t, rec)["task_id"].(string))
	require.Equal(t, model.TaskStatusCompleted, st.Status, st.Message)
	assert.EqualValues(t, 2, st.Result["imported_count"])

	// 바코드는 품번+컬러+사이즈에서 생성된다.
	v, p, err := database.GetVariantByBarcode(db, 1, "AB1234CD5600BLACK095")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "와이드 팬츠", p.ProductName)
	assert.Equal(t, int64(59000), v.OriginalPrice)
	assert.Equal(t, int64(59000), v.SalePrice, "판매가 빈 칸이면 정가")

	free, _, err := database.GetVariantByBarcode(db, 1, "AB1234CD5600BLACK00F")
	require.NoError(t, err)
	require.NotNil(t, free, "FREE 사이즈 바코드 규칙")

	qty, err := database.GetStoreStockQuantity(db, 1, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), qty, "수량 열이 있으면 초기 재고 반영")
}

func TestCatalogImportHorizontal(t *testing.T) {
	db := newTestDB(t)

	file := buildSheet(t, [][]string{
		{"품번", "상품명", "컬러", "정가", "판매가", "95", "100", "105"},
		{"ZZ9999XX11", "셔츠", "WHITE", "39000", "29000", "1", "", "2"},
	})
	fields := url.Values{
		"layout":             {"horizontal"},
		"product_number_col": {"A"},
		"product_name_col":   {"B"},
		"color_col":          {"C"},
		"original_price_col": {"D"},
		"sale_price_col":     {"E"},
		"size_start_col":     {"F"},
	}

	reg := task.NewRegistry()
	rec := httptest.NewRecorder()
	CatalogImportHandler(db, reg)(rec, multipartReq(t, "/import_db_excel", fields, file))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	st := waitTerminal(t, reg, decode(t, rec)["task_id"].(string))
	require.Equal(t, model.TaskStatusCompleted, st.Status, st.Message)
	// 셀이 빈 100 사이즈는 만들지 않는다.
	assert.EqualValues(t, 2, st.Result["imported_count"])

	v, _, err := database.GetVariantByBarcode(db, 1, "ZZ9999XX1100WHITE105")
	require.NoError(t, err)
	require.NotNil(t, v)

	v, _, err = database.GetVariantByBarcode(db, 1, "ZZ9999XX1100WHITE100")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCatalogImportFailsOnBadPrice(t *testing.T) {
	db := newTestDB(t)

	file := buildSheet(t, [][]string{
		{"품번", "상품명", "컬러", "사이즈", "정가", "판매가"},
		{"AB1234CD56", "와이드 팬츠", "BLACK", "95", "가격아님", "49000"},
	})
	fields := url.Values{
		"layout":             {"vertical"},
		"product_number_col": {"A"},
		"product_name_col":   {"B"},
		"color_col":          {"C"},
		"size_col":           {"D"},
		"original_price_col": {"E"},
		"sale_price_col":     {"F"},
	}

	reg := task.NewRegistry()
	rec := httptest.NewRecorder()
	CatalogImportHandler(db, reg)(rec, multipartReq(t, "/import_db_excel", fields, file))
	require.Equal(t, http.StatusOK, rec.Code)

	st := waitTerminal(t, reg, decode(t, rec)["task_id"].(string))
	assert.Equal(t, model.TaskStatusError, st.Status)
	assert.Contains(t, st.Message, "가격이 숫자가 아닙니다")

	// 실패한 작업은 아무것도 남기지 않는다.
	var n int64
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM products`))
	assert.Zero(t, n)
}
