// flowork/cart/cart_test.go

package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItem(variantID int64, salePrice int64) Item {
	return Item{
		VariantID:     variantID,
		ProductName:   "테스트 셔츠",
		ProductNumber: "AB1234CD56",
		Color:         "BLACK",
		Size:          "095",
		OriginalPrice: salePrice,
		SalePrice:     salePrice,
	}
}

func TestAddMergesSameVariant(t *testing.T) {
	s := New()
	s.Add(testItem(1, 10000))
	s.Add(testItem(2, 20000))
	s.Add(testItem(1, 10000))

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(2), lines[0].Quantity)
	assert.Equal(t, int64(1), lines[1].Quantity)
	// 먼저 담은 행이 앞에 유지된다.
	assert.Equal(t, int64(1), lines[0].VariantID)
}

func TestSetQuantityZeroDeletesLine(t *testing.T) {
	s := New()
	s.Add(testItem(1, 10000))
	s.Add(testItem(2, 20000))
	id := s.Lines()[0].LineID

	require.NoError(t, s.SetQuantity(id, 0))
	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].VariantID)

	// 음수도 삭제로 취급.
	id = lines[0].LineID
	require.NoError(t, s.SetQuantity(id, -3))
	assert.Zero(t, s.Len())
}

func TestSetQuantityUnknownLine(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.SetQuantity("없는행", 1), ErrLineNotFound)
}

func TestSetDiscountClampsEffectivePrice(t *testing.T) {
	s := New()
	s.Add(testItem(1, 10000))
	id := s.Lines()[0].LineID

	require.NoError(t, s.SetDiscount(id, 3000))
	assert.Equal(t, int64(7000), s.Lines()[0].EffectivePrice())

	// 판매가 초과 할인은 실판매가 0.
	require.NoError(t, s.SetDiscount(id, 15000))
	assert.Equal(t, int64(0), s.Lines()[0].EffectivePrice())
	assert.Equal(t, int64(0), s.Totals().TotalAmount)

	assert.ErrorIs(t, s.SetDiscount(id, -1), ErrNegativeDiscount)
}

func TestTotalsRecomputed(t *testing.T) {
	s := New()
	s.Add(testItem(1, 10000))
	s.Add(testItem(1, 10000))
	s.Add(testItem(2, 5000))
	id := s.Lines()[0].LineID
	require.NoError(t, s.SetDiscount(id, 1000))

	got := s.Totals()
	// (10000-1000)*2 + 5000*1
	assert.Equal(t, int64(3), got.TotalQuantity)
	assert.Equal(t, int64(23000), got.TotalAmount)

	require.NoError(t, s.SetQuantity(id, 5))
	assert.Equal(t, int64(50000), s.Totals().TotalAmount)
}

func TestLoadFromSaleReplacesVerbatim(t *testing.T) {
	s := New()
	s.Add(testItem(9, 99999))

	// 같은 variant 중복 행도 병합 없이 그대로 실린다.
	snapshot := []Line{
		{VariantID: 1, ProductName: "셔츠", SalePrice: 10000, DiscountAmount: 500, Quantity: 1},
		{VariantID: 1, ProductName: "셔츠", SalePrice: 10000, DiscountAmount: 0, Quantity: 2},
	}
	s.LoadFromSale(snapshot)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(500), lines[0].DiscountAmount)
	assert.Equal(t, int64(2), lines[1].Quantity)
	assert.NotEmpty(t, lines[0].LineID)
	assert.NotEqual(t, lines[0].LineID, lines[1].LineID)

	// 9500 + 20000
	assert.Equal(t, int64(29500), s.Totals().TotalAmount)
}

func TestRemoveAndClear(t *testing.T) {
	s := New()
	s.Add(testItem(1, 1000))
	s.Add(testItem(2, 2000))
	require.NoError(t, s.Remove(s.Lines()[0].LineID))
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.Zero(t, s.Len())
	assert.Equal(t, Totals{}, s.Totals())
}

func TestLinesReturnsCopy(t *testing.T) {
	s := New()
	s.Add(testItem(1, 1000))
	lines := s.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, int64(1), s.Lines()[0].Quantity)
}
