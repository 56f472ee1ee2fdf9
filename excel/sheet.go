// flowork/excel/sheet.go

// Package excel 은 엑셀 업로드 파이프라인을 담당한다.
// 분석(열 문자 + 미리보기) → 검증(의심 행 보고) → 가져오기(백그라운드 작업).
// 가져오기는 세로형(1행 1품목) 과 가로형(사이즈 매트릭스) 두 레이아웃을 받는다.
package excel

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"status": "error", "message": message})
}

// readSheet 는 업로드 파일의 첫 시트를 문자열 행렬로 읽는다.
func readSheet(file multipart.File) ([][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("엑셀 파일을 열 수 없습니다")
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("시트를 찾을 수 없습니다")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("시트를 읽을 수 없습니다")
	}
	return rows, nil
}

// formFile 은 multipart 의 file 필드를 연다.
func formFile(r *http.Request) (multipart.File, error) {
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("파일이 첨부되지 않았습니다")
	}
	return file, nil
}

// columnLetter 는 0 기반 열 번호 → A..Z. 분석은 26열까지만 본다.
func columnLetter(idx int) string {
	return string(rune('A' + idx))
}

// columnIndex 는 A..Z → 0 기반 열 번호.
func columnIndex(letter string) (int, error) {
	letter = strings.TrimSpace(strings.ToUpper(letter))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return 0, fmt.Errorf("열 문자가 올바르지 않습니다: %s", letter)
	}
	return int(letter[0] - 'A'), nil
}

// cell 은 범위를 벗어나면 빈 문자열을 돌려주는 안전한 셀 접근.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// requiredColumn 은 폼 값에서 열 문자를 읽어 열 번호로 바꾼다.
func requiredColumn(r *http.Request, field, label string) (int, error) {
	v := r.FormValue(field)
	if v == "" {
		return 0, fmt.Errorf("%s 열을 선택하세요", label)
	}
	return columnIndex(v)
}

// optionalColumn 은 비어 있으면 -1 을 돌려준다.
func optionalColumn(r *http.Request, field string) (int, error) {
	v := r.FormValue(field)
	if v == "" {
		return -1, nil
	}
	return columnIndex(v)
}

// excludedRows 는 excluded_row_indices 폼 값(문자열 배열) 을 집합으로 만든다.
func excludedRows(r *http.Request) map[int]bool {
	out := make(map[int]bool)
	for _, s := range r.Form["excluded_row_indices"] {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			out[n] = true
		}
	}
	return out
}

// parsePrice 는 "12,000" / "12000.0" 같은 표기를 정수 원 단위로 읽는다.
func parsePrice(s string) (int64, error) {
	t := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if t == "" {
		return 0, nil
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return int64(f), nil
	}
	return 0, fmt.Errorf("가격이 숫자가 아닙니다: %s", s)
}

// parseQuantity 는 수량 셀을 읽는다. 빈 칸은 0.
func parseQuantity(s string) (int64, error) {
	t := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if t == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(t, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("수량이 숫자가 아닙니다: %s", s)
	}
	return n, nil
}
