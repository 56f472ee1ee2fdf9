// flowork/excelmap/excelmap_test.go

package excelmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stockFields() []Field {
	return []Field{
		{Name: "barcode_col", Label: "바코드", Required: true, VerticalOnly: true},
		{Name: "product_number_col", Label: "품번", Required: true},
		{Name: "quantity_col", Label: "수량", Required: true, VerticalOnly: true},
		{Name: "size_start_col", Label: "사이즈 시작", Required: true, HorizontalOnly: true},
		{Name: "memo_col", Label: "비고", Required: false},
	}
}

func analyzed(t *testing.T) *Session {
	t.Helper()
	s := NewSession(stockFields())
	s.ApplyAnalyze(AnalyzeResult{
		ColumnLetters: []string{"A", "B", "C", "D"},
		PreviewData: map[string][]string{
			"A": {"8800000000012", "8800000000029", "8800000000036", "8800000000043", "8800000000050"},
			"B": {"AB1234CD56", "AB1234CD57", "AB1234CD58"},
			"C": {"3", "1", "2"},
		},
	})
	return s
}

func TestSetMappingRequiresAnalyze(t *testing.T) {
	s := NewSession(stockFields())
	assert.ErrorIs(t, s.SetMapping("barcode_col", "A"), ErrNotAnalyzed)
	_, err := s.Payload()
	assert.ErrorIs(t, err, ErrNotAnalyzed)
}

func TestSetMappingValidatesColumn(t *testing.T) {
	s := analyzed(t)
	require.NoError(t, s.SetMapping("barcode_col", "A"))
	assert.Error(t, s.SetMapping("barcode_col", "Z"), "분석에 없는 열")
	assert.ErrorIs(t, s.SetMapping("없는필드", "A"), ErrUnknownField)
}

func TestSamplesFirstThree(t *testing.T) {
	s := analyzed(t)
	assert.Nil(t, s.Samples("barcode_col"), "선택 전엔 미리보기 없음")
	require.NoError(t, s.SetMapping("barcode_col", "A"))
	assert.Equal(t, []string{"8800000000012", "8800000000029", "8800000000036"}, s.Samples("barcode_col"))
}

func TestLayoutToggleDisablesAndExcludes(t *testing.T) {
	s := analyzed(t)
	require.NoError(t, s.SetMapping("barcode_col", "A"))
	require.NoError(t, s.SetMapping("product_number_col", "B"))
	require.NoError(t, s.SetMapping("quantity_col", "C"))

	// horizontal 로 바꾸면 vertical 전용 필드는 비활성.
	s.SetLayout(LayoutHorizontal)
	on, err := s.FieldEnabled("barcode_col")
	require.NoError(t, err)
	assert.False(t, on)
	assert.ErrorIs(t, s.SetMapping("quantity_col", "C"), ErrFieldDisabled)

	require.NoError(t, s.SetMapping("size_start_col", "D"))
	payload, err := s.Payload()
	require.NoError(t, err)
	assert.Equal(t, "horizontal", payload.Get("layout"))
	assert.Empty(t, payload.Get("barcode_col"), "비활성 필드는 payload 에서 제외")
	assert.Empty(t, payload.Get("quantity_col"))
	assert.Equal(t, "D", payload.Get("size_start_col"))

	// 되돌리면 기존 선택값이 다시 살아난다.
	s.SetLayout(LayoutVertical)
	on, err = s.FieldEnabled("barcode_col")
	require.NoError(t, err)
	assert.True(t, on)
	payload, err = s.Payload()
	require.NoError(t, err)
	assert.Equal(t, "A", payload.Get("barcode_col"))
	assert.Empty(t, payload.Get("size_start_col"))
}

func TestPayloadRequiresMappedRequiredFields(t *testing.T) {
	s := analyzed(t)
	require.NoError(t, s.SetMapping("barcode_col", "A"))
	_, err := s.Payload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "품번")
}

func TestExcludedRowIndicesAsStrings(t *testing.T) {
	s := analyzed(t)
	require.NoError(t, s.SetMapping("barcode_col", "A"))
	require.NoError(t, s.SetMapping("product_number_col", "B"))
	require.NoError(t, s.SetMapping("quantity_col", "C"))

	s.SetSuspiciousRows([]SuspiciousRow{
		{RowIndex: 5, Preview: "| | |3", Reasons: []string{"바코드 누락"}},
		{RowIndex: 9, Preview: "880...|AB...|x", Reasons: []string{"수량이 숫자가 아님"}},
	})
	s.ToggleExclude(5)

	payload, err := s.Payload()
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, payload["excluded_row_indices"])

	// 다시 토글하면 제외가 풀린다.
	s.ToggleExclude(5)
	s.ToggleExclude(9)
	payload, err = s.Payload()
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, payload["excluded_row_indices"])
}

func TestResetDropsEverything(t *testing.T) {
	s := analyzed(t)
	require.NoError(t, s.SetMapping("barcode_col", "A"))
	s.SetSuspiciousRows([]SuspiciousRow{{RowIndex: 2}})
	s.ToggleExclude(2)

	s.Reset()
	assert.False(t, s.Analyzed())
	assert.Empty(t, s.Mapping("barcode_col"))
	assert.Empty(t, s.SuspiciousRows())
	assert.False(t, s.Excluded(2))
}

func TestApplyAnalyzeReplacesPriorSession(t *testing.T) {
	s := analyzed(t)
	require.NoError(t, s.SetMapping("barcode_col", "A"))

	// 파일 교체: 이전 매핑은 남지 않는다.
	s.ApplyAnalyze(AnalyzeResult{ColumnLetters: []string{"A", "B"}})
	assert.True(t, s.Analyzed())
	assert.Empty(t, s.Mapping("barcode_col"))
}
