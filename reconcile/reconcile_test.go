// flowork/reconcile/reconcile_test.go

package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(n int64) *int64 { return &n }

type fakeBackend struct {
	saveErr   error
	adjustErr error

	savedBarcode string
	savedValue   *int64
	adjustCalls  int

	// 저장 응답으로 돌려줄 값
	respActual *int64
	respDiff   *int64
	respQty    int64

	// 서버 호출 중의 행 상태를 들여다보기 위한 훅
	duringSave func()
}

func (f *fakeBackend) SaveActualStock(barcode string, value *int64) (*int64, *int64, error) {
	f.savedBarcode = barcode
	f.savedValue = value
	if f.duringSave != nil {
		f.duringSave()
	}
	if f.saveErr != nil {
		return nil, nil, f.saveErr
	}
	return f.respActual, f.respDiff, nil
}

func (f *fakeBackend) AdjustQuantity(barcode string, change int64) (int64, *int64, error) {
	f.adjustCalls++
	if f.adjustErr != nil {
		return 0, nil, f.adjustErr
	}
	return f.respQty, f.respDiff, nil
}

func threeRows() []Row {
	return []Row{
		{Barcode: "AA", ExpectedQuantity: 3},
		{Barcode: "BB", ExpectedQuantity: 3},
		{Barcode: "CC", ExpectedQuantity: 3},
	}
}

func TestClassifyDiff(t *testing.T) {
	// 실재고 5 / 전산 3 → surplus, 1/3 → shortage, 3/3 → neutral, 미입력 → unknown
	assert.Equal(t, BadgeSurplus, ClassifyDiff(i64(2)))
	assert.Equal(t, BadgeShortage, ClassifyDiff(i64(-2)))
	assert.Equal(t, BadgeNeutral, ClassifyDiff(i64(0)))
	assert.Equal(t, BadgeUnknown, ClassifyDiff(nil))
}

func TestToggleEditEnablesAllAndFocusesFirst(t *testing.T) {
	v := NewView(&fakeBackend{}, threeRows())
	for _, r := range v.Rows() {
		assert.Equal(t, StateDisabled, r.State())
	}

	v.ToggleEdit()
	assert.True(t, v.EditActive())
	assert.Equal(t, "AA", v.Focused())
	for _, r := range v.Rows() {
		assert.Equal(t, StateEnabled, r.State())
		assert.False(t, r.SaveEnabled(), "값이 바뀌기 전엔 저장 버튼 비활성")
	}

	v.ToggleEdit()
	assert.False(t, v.EditActive())
	for _, r := range v.Rows() {
		assert.Equal(t, StateDisabled, r.State())
	}
}

func TestInputEnablesOnlyThatRow(t *testing.T) {
	v := NewView(&fakeBackend{}, threeRows())
	v.ToggleEdit()

	require.NoError(t, v.Input("BB", "7"))
	rowA, _ := v.Row("AA")
	rowB, _ := v.Row("BB")
	assert.False(t, rowA.SaveEnabled())
	assert.True(t, rowB.SaveEnabled())
}

func TestInputRejectedWhenDisabled(t *testing.T) {
	v := NewView(&fakeBackend{}, threeRows())
	assert.ErrorIs(t, v.Input("AA", "7"), ErrRowBusy)
	assert.ErrorIs(t, v.Input("ZZ", "7"), ErrRowNotFound)
}

func TestSaveValidationBlocksNetworkCall(t *testing.T) {
	fb := &fakeBackend{}
	v := NewView(fb, threeRows())
	v.ToggleEdit()

	for _, bad := range []string{"abc", "-1", "1.5"} {
		require.NoError(t, v.Input("AA", bad))
		err := v.Save("AA")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "입력값 %q", bad)
		assert.Empty(t, fb.savedBarcode, "검증 실패 시 서버 호출 없음")
		row, _ := v.Row("AA")
		assert.NotEmpty(t, row.Message())
		assert.Equal(t, StateEnabled, row.State())
	}
}

func TestSaveAppliesServerDiffVerbatim(t *testing.T) {
	// 서버가 어떤 값을 돌려주든 그대로 표시한다.
	fb := &fakeBackend{respActual: i64(5), respDiff: i64(123)}
	v := NewView(fb, threeRows())
	v.ToggleEdit()

	require.NoError(t, v.Input("AA", "5"))
	fb.duringSave = func() {
		row, _ := v.Row("AA")
		assert.Equal(t, StateSaving, row.State())
	}
	require.NoError(t, v.Save("AA"))

	row, _ := v.Row("AA")
	assert.Equal(t, StateDisabled, row.State())
	assert.Equal(t, int64(5), *row.ActualStock)
	assert.Equal(t, int64(123), *row.StockDiff)
	assert.Equal(t, BadgeSurplus, row.Badge())
	assert.Equal(t, "BB", v.Focused(), "토글이 켜져 있으면 다음 행으로 포커스 이동")
}

func TestSaveEmptyClearsActual(t *testing.T) {
	fb := &fakeBackend{respActual: nil, respDiff: nil}
	v := NewView(fb, threeRows())
	v.ToggleEdit()

	require.NoError(t, v.Input("AA", "  "))
	require.NoError(t, v.Save("AA"))
	assert.Nil(t, fb.savedValue)
	row, _ := v.Row("AA")
	assert.Nil(t, row.ActualStock)
	assert.Equal(t, BadgeUnknown, row.Badge())
}

func TestSaveErrorReenablesRow(t *testing.T) {
	fb := &fakeBackend{saveErr: errors.New("통신 오류가 발생했습니다")}
	v := NewView(fb, threeRows())
	v.ToggleEdit()

	require.NoError(t, v.Input("AA", "5"))
	err := v.Save("AA")
	require.Error(t, err)

	row, _ := v.Row("AA")
	assert.Equal(t, StateEnabled, row.State())
	assert.True(t, row.SaveEnabled(), "실패 시 수동 재시도 가능해야 한다")
	assert.Equal(t, "통신 오류가 발생했습니다", row.Message())
}

func TestNoFocusAdvanceAfterToggleOff(t *testing.T) {
	fb := &fakeBackend{respActual: i64(3), respDiff: i64(0)}
	v := NewView(fb, threeRows())
	v.ToggleEdit()
	require.NoError(t, v.Input("BB", "3"))

	// 저장 직전에 토글이 꺼진 상황: BB 는 이미 입력이 끝났다 치고
	// 포커스 이동만 일어나지 않아야 한다.
	fb.duringSave = func() { v.editActive = false }
	require.NoError(t, v.Save("BB"))
	assert.Empty(t, v.Focused())
}

func TestAdjustExpectedConfirmAndLock(t *testing.T) {
	fb := &fakeBackend{respQty: 4, respDiff: i64(1)}
	v := NewView(fb, threeRows())

	// 확인 거부 시 아무 일도 없다.
	v.Confirm = func(string) bool { return false }
	require.NoError(t, v.AdjustExpected("AA", 1))
	assert.Zero(t, fb.adjustCalls)

	v.Confirm = func(string) bool { return true }
	require.NoError(t, v.AdjustExpected("AA", 1))
	assert.Equal(t, 1, fb.adjustCalls)

	row, _ := v.Row("AA")
	assert.Equal(t, int64(4), row.ExpectedQuantity)
	assert.Equal(t, BadgeSurplus, row.Badge())
	assert.False(t, row.AdjustBusy())
}

func TestAdjustExpectedIndependentOfToggle(t *testing.T) {
	fb := &fakeBackend{respQty: 2, respDiff: nil}
	v := NewView(fb, threeRows())
	// 토글이 꺼진 상태에서도 ±1 은 가능하다.
	require.NoError(t, v.AdjustExpected("CC", -1))
	row, _ := v.Row("CC")
	assert.Equal(t, int64(2), row.ExpectedQuantity)
}

func TestAdjustExpectedInvalidChange(t *testing.T) {
	v := NewView(&fakeBackend{}, threeRows())
	assert.Error(t, v.AdjustExpected("AA", 2))
}
