// flowork/excelmap/excelmap.go

// Package excelmap 은 엑셀 업로드 화면의 열 매핑 세션을 담당한다.
// 분석 결과(열 문자 + 미리보기) 를 받아 필드별 열 선택을 모으고,
// 레이아웃 토글에 따라 의미 없는 필드를 비활성/제외하며,
// 검증에서 걸린 의심 행의 제외 목록을 최종 업로드 payload 에 싣는다.
// 세션은 업로드 한 번 동안만 살고, 분석 실패나 파일 교체 시 전부 초기화된다.
package excelmap

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// Layout 은 입력 파일의 모양. horizontal 은 사이즈 열이 가로로 펼쳐진
// 매트릭스형, vertical 은 1행 1품목의 목록형.
type Layout string

const (
	LayoutHorizontal Layout = "horizontal"
	LayoutVertical   Layout = "vertical"
)

// Field 는 매핑 대상 필드 정의. VerticalOnly 필드는 horizontal 레이아웃에서
// 비활성화되고 payload 에서도 빠진다 (HorizontalOnly 는 그 반대).
type Field struct {
	Name           string
	Label          string
	Required       bool
	VerticalOnly   bool
	HorizontalOnly bool
}

// AnalyzeResult 는 분석 엔드포인트 응답.
type AnalyzeResult struct {
	ColumnLetters []string            `json:"column_letters"`
	PreviewData   map[string][]string `json:"preview_data"`
}

// SuspiciousRow 는 검증 엔드포인트가 보고한 의심 행.
type SuspiciousRow struct {
	RowIndex int      `json:"row_index"`
	Preview  string   `json:"preview"`
	Reasons  []string `json:"reasons"`
}

const previewSamples = 3

var (
	ErrNotAnalyzed   = errors.New("excelmap: file not analyzed yet")
	ErrUnknownField  = errors.New("excelmap: unknown field")
	ErrFieldDisabled = errors.New("excelmap: field disabled in current layout")
)

// Session 은 한 번의 업로드 시도에 대응하는 상태 묶음.
type Session struct {
	fields []Field

	analyzed bool
	result   AnalyzeResult
	layout   Layout

	mapping    map[string]string // field name → 열 문자
	suspicious []SuspiciousRow
	excluded   map[int]bool // row_index → 제외 여부
}

func NewSession(fields []Field) *Session {
	return &Session{
		fields:   fields,
		layout:   LayoutVertical,
		mapping:  make(map[string]string),
		excluded: make(map[int]bool),
	}
}

func (s *Session) Analyzed() bool { return s.analyzed }
func (s *Session) Layout() Layout { return s.layout }

// ApplyAnalyze 는 분석 응답을 세션에 싣는다. 파일을 새로 분석했다는 뜻이므로
// 이전 매핑/제외 상태는 전부 버린다.
func (s *Session) ApplyAnalyze(result AnalyzeResult) {
	s.Reset()
	s.analyzed = true
	s.result = result
}

// Reset 은 분석 이전의 빈 상태로 되돌린다. 분석/검증/업로드 실패 시,
// 그리고 파일 교체 시 호출한다. 부분 매핑은 남기지 않는다.
func (s *Session) Reset() {
	s.analyzed = false
	s.result = AnalyzeResult{}
	s.mapping = make(map[string]string)
	s.suspicious = nil
	s.excluded = make(map[int]bool)
}

func (s *Session) ColumnLetters() []string {
	return s.result.ColumnLetters
}

// SetLayout 은 레이아웃 토글. 매핑 자체는 지우지 않는다.
// 비활성 필드의 선택값은 남아 있다가 레이아웃을 되돌리면 다시 살아난다.
func (s *Session) SetLayout(l Layout) {
	s.layout = l
}

// FieldEnabled 는 현재 레이아웃에서 해당 필드가 입력 대상인지.
func (s *Session) FieldEnabled(name string) (bool, error) {
	f, ok := s.field(name)
	if !ok {
		return false, ErrUnknownField
	}
	return s.enabled(f), nil
}

func (s *Session) enabled(f Field) bool {
	if f.VerticalOnly && s.layout == LayoutHorizontal {
		return false
	}
	if f.HorizontalOnly && s.layout == LayoutVertical {
		return false
	}
	return true
}

// SetMapping 은 필드에 열 문자를 고른다. 분석 전이거나 현재 레이아웃에서
// 비활성인 필드, 발견되지 않은 열 문자는 거부한다.
func (s *Session) SetMapping(field, letter string) error {
	if !s.analyzed {
		return ErrNotAnalyzed
	}
	f, ok := s.field(field)
	if !ok {
		return ErrUnknownField
	}
	if !s.enabled(f) {
		return ErrFieldDisabled
	}
	found := false
	for _, l := range s.result.ColumnLetters {
		if l == letter {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("excelmap: column %q not in analyzed file", letter)
	}
	s.mapping[field] = letter
	return nil
}

func (s *Session) Mapping(field string) string {
	return s.mapping[field]
}

// Samples 는 선택한 열의 미리보기 값 앞 3개. 선택 전이면 빈 목록.
func (s *Session) Samples(field string) []string {
	letter, ok := s.mapping[field]
	if !ok {
		return nil
	}
	samples := s.result.PreviewData[letter]
	if len(samples) > previewSamples {
		samples = samples[:previewSamples]
	}
	return samples
}

// SetSuspiciousRows 는 검증 응답을 싣는다. 제외 토글은 초기화된다.
func (s *Session) SetSuspiciousRows(rows []SuspiciousRow) {
	s.suspicious = rows
	s.excluded = make(map[int]bool)
}

func (s *Session) SuspiciousRows() []SuspiciousRow {
	return s.suspicious
}

// ToggleExclude 는 의심 행의 제외 여부를 뒤집는다.
func (s *Session) ToggleExclude(rowIndex int) {
	s.excluded[rowIndex] = !s.excluded[rowIndex]
}

func (s *Session) Excluded(rowIndex int) bool {
	return s.excluded[rowIndex]
}

// Payload 는 업로드 폼 값을 만든다. 현재 레이아웃에서 비활성인 필드는
// 값이 남아 있어도 싣지 않는다. 활성 필수 필드가 비어 있으면 오류.
// 제외한 의심 행은 excluded_row_indices 로 문자열 배열에 실린다.
func (s *Session) Payload() (url.Values, error) {
	if !s.analyzed {
		return nil, ErrNotAnalyzed
	}
	v := url.Values{}
	v.Set("layout", string(s.layout))
	for _, f := range s.fields {
		if !s.enabled(f) {
			continue
		}
		letter := s.mapping[f.Name]
		if letter == "" {
			if f.Required {
				return nil, fmt.Errorf("%s 열을 선택하세요", f.Label)
			}
			continue
		}
		v.Set(f.Name, letter)
	}

	var indices []int
	for idx, ex := range s.excluded {
		if ex {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)
	for _, idx := range indices {
		v.Add("excluded_row_indices", strconv.Itoa(idx))
	}
	return v, nil
}

func (s *Session) field(name string) (Field, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
