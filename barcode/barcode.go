// flowork/barcode/barcode.go
package barcode

import (
	"fmt"
	"strings"
	"unicode"
)

// Generate 는 품번/컬러/사이즈에서 SKU 바코드를 만든다.
// 규칙:
//   - 품번은 하이픈 제거 후 10자 이하이면 뒤에 "00" 을 붙인다
//   - 사이즈 FREE → "00F"
//   - 숫자 사이즈는 3자리 0 패딩 (95 → 095)
//   - 3자 이하 알파벳 사이즈는 뒤를 0 으로 채움 (L → L00, XL → XL0)
//   - 그 외는 앞 3자만 사용
//
// 셋 중 하나라도 비면 생성 불가.
func Generate(productNumber, color, size string) (string, error) {
	pn := strings.TrimSpace(productNumber)
	color = strings.TrimSpace(color)
	size = strings.TrimSpace(size)

	pnCleaned := strings.ReplaceAll(pn, "-", "")
	if pnCleaned == "" {
		return "", fmt.Errorf("barcode generation skipped: pn=%q color=%q size=%q", productNumber, color, size)
	}
	sizeUpper := strings.ToUpper(size)

	pnFinal := pnCleaned
	if len(pnCleaned) <= 10 {
		pnFinal = pnCleaned + "00"
	}

	var sizeFinal string
	switch {
	case sizeUpper == "FREE":
		sizeFinal = "00F"
	case isDigits(size):
		sizeFinal = size
		if len(sizeFinal) < 3 {
			sizeFinal = strings.Repeat("0", 3-len(sizeFinal)) + sizeFinal
		}
	case isAlpha(size) && len(size) <= 3:
		sizeFinal = sizeUpper + strings.Repeat("0", 3-len(sizeUpper))
	default:
		if len(sizeUpper) > 3 {
			sizeFinal = sizeUpper[:3]
		} else {
			sizeFinal = sizeUpper
		}
	}

	if pnFinal == "" || color == "" || sizeFinal == "" {
		return "", fmt.Errorf("barcode generation skipped: pn=%q color=%q size=%q", productNumber, color, size)
	}
	return strings.ToUpper(pnFinal + color + sizeFinal), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
