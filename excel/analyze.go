// flowork/excel/analyze.go
package excel

import (
	"net/http"

	"flowork/config"
	"flowork/excelmap"
)

// AnalyzeHandler 는 POST /api/analyze_excel 처리.
// 첫 시트의 열 문자(A.. 최대 26열) 와 열별 미리보기(최대 5행) 를 돌려준다.
// 데이터가 없는 파일은 거부한다.
func AnalyzeHandler() http.HandlerFunc {
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
		if len(rows) == 0 {
			writeError(w, http.StatusBadRequest, "빈 파일입니다")
			return
		}

		cfg := config.GetConfig()
		maxCols := 0
		for _, row := range rows {
			if len(row) > maxCols {
				maxCols = len(row)
			}
		}
		if maxCols > cfg.ExcelMaxColumns {
			maxCols = cfg.ExcelMaxColumns
		}
		if maxCols == 0 {
			writeError(w, http.StatusBadRequest, "빈 파일입니다")
			return
		}

		previewRows := len(rows)
		if previewRows > cfg.ExcelPreviewRows {
			previewRows = cfg.ExcelPreviewRows
		}

		letters := make([]string, 0, maxCols)
		preview := make(map[string][]string, maxCols)
		for c := 0; c < maxCols; c++ {
			letter := columnLetter(c)
			letters = append(letters, letter)
			samples := make([]string, 0, previewRows)
			for rIdx := 0; rIdx < previewRows; rIdx++ {
				samples = append(samples, cell(rows[rIdx], c))
			}
			preview[letter] = samples
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "success",
			"column_letters": letters,
			"preview_data":   preview,
		})
	}
}

// VerifyHandler 는 POST /api/verify_excel 처리.
// 매핑대로 전체 행을 훑어 의심 행(필수값 누락, 수량 비숫자) 을 보고한다.
// 행 번호는 0 기반 시트 행 번호이고, 첫 행은 머리글로 보고 건너뛴다.
func VerifyHandler() http.HandlerFunc {
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

		layout := excelmap.Layout(r.FormValue("layout"))
		suspicious := []excelmap.SuspiciousRow{}

		switch layout {
		case excelmap.LayoutHorizontal:
			pnCol, err := requiredColumn(r, "product_number_col", "품번")
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			sizeStart, err := requiredColumn(r, "size_start_col", "사이즈 시작")
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			for i := 1; i < len(rows); i++ {
				var reasons []string
				if cell(rows[i], pnCol) == "" {
					reasons = append(reasons, "품번 누락")
				}
				for c := sizeStart; c < len(rows[i]); c++ {
					if _, err := parseQuantity(cell(rows[i], c)); err != nil {
						reasons = append(reasons, "수량이 숫자가 아님 ("+columnLetter(c)+"열)")
					}
				}
				if len(reasons) > 0 {
					suspicious = append(suspicious, excelmap.SuspiciousRow{
						RowIndex: i,
						Preview:  rowPreview(rows[i]),
						Reasons:  reasons,
					})
				}
			}

		default: // vertical
			barcodeCol, err := optionalColumn(r, "barcode_col")
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			pnCol, err := optionalColumn(r, "product_number_col")
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			qtyCol, err := optionalColumn(r, "quantity_col")
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if barcodeCol < 0 && pnCol < 0 {
				writeError(w, http.StatusBadRequest, "바코드 또는 품번 열을 선택하세요")
				return
			}
			for i := 1; i < len(rows); i++ {
				var reasons []string
				if barcodeCol >= 0 && cell(rows[i], barcodeCol) == "" {
					reasons = append(reasons, "바코드 누락")
				}
				if pnCol >= 0 && cell(rows[i], pnCol) == "" {
					reasons = append(reasons, "품번 누락")
				}
				if qtyCol >= 0 {
					if _, err := parseQuantity(cell(rows[i], qtyCol)); err != nil {
						reasons = append(reasons, "수량이 숫자가 아님")
					}
				}
				if len(reasons) > 0 {
					suspicious = append(suspicious, excelmap.SuspiciousRow{
						RowIndex: i,
						Preview:  rowPreview(rows[i]),
						Reasons:  reasons,
					})
				}
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":          "success",
			"suspicious_rows": suspicious,
		})
	}
}

// rowPreview 는 의심 행 확인용 한 줄 요약. 앞 6열만 잇는다.
func rowPreview(row []string) string {
	n := len(row)
	if n > 6 {
		n = 6
	}
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += " | "
		}
		out += cell(row, i)
	}
	return out
}
