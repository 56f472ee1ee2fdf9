// flowork/textutil/textutil.go
package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// choseongList 는 한글 음절의 초성 19자 (유니코드 호환 자모).
var choseongList = []rune{
	'ㄱ', 'ㄲ', 'ㄴ', 'ㄷ', 'ㄸ', 'ㄹ', 'ㅁ', 'ㅂ', 'ㅃ', 'ㅅ',
	'ㅆ', 'ㅇ', 'ㅈ', 'ㅉ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
}

// CleanUpper 는 검색/대조용 정규화 키를 만든다.
// 전각 문자를 반각으로 접고(NFKC + width fold), 하이픈과 공백을 제거한 뒤
// 대문자로 바꾼다. 바코드·품번의 cleaned 컬럼은 전부 이 함수를 거친다.
func CleanUpper(s string) string {
	s = norm.NFKC.String(s)
	s = width.Narrow.String(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimSpace(s)
	return strings.ToUpper(s)
}

// Choseong 은 상품명에서 초성 검색 키를 뽑는다.
// 한글 음절은 초성으로, 자모/영숫자는 그대로, 그 외 문자는 버린다.
func Choseong(s string) string {
	cleaned := CleanUpper(s)
	var b strings.Builder
	for _, r := range cleaned {
		switch {
		case r >= '가' && r <= '힣':
			code := r - 0xAC00
			b.WriteRune(choseongList[code/(21*28)])
		case r >= 'ㄱ' && r <= 'ㅎ':
			b.WriteRune(r)
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	return b.String()
}
