// flowork/cart/cart.go

// Package cart 는 POS 화면의 판매/환불 장바구니 상태를 담당한다.
// 화면 이벤트 핸들러가 전역 변수를 직접 만지는 대신 Store 하나를 주입받아
// 쓰도록 되어 있고, 합계는 캐시 없이 호출 시마다 다시 계산한다.
package cart

import (
	"errors"

	"github.com/google/uuid"
)

// Line 은 장바구니 1행. 판매 모드에서는 variant 당 1행으로 병합되지만,
// 환불 모드에서 과거 영수증을 그대로 불러오면 같은 variant 가 여러 행일 수 있다.
// LineID 는 그 경우에도 행을 특정하기 위한 불투명 키.
type Line struct {
	LineID         string `json:"line_id"`
	VariantID      int64  `json:"variant_id"`
	ProductName    string `json:"product_name"`
	ProductNumber  string `json:"product_number"`
	Color          string `json:"color"`
	Size           string `json:"size"`
	OriginalPrice  int64  `json:"original_price"`
	SalePrice      int64  `json:"sale_price"`
	DiscountAmount int64  `json:"discount_amount"`
	Quantity       int64  `json:"quantity"`
}

// EffectivePrice 는 개당 실판매가. 할인이 판매가를 넘으면 0 으로 클램프한다.
func (l Line) EffectivePrice() int64 {
	p := l.SalePrice - l.DiscountAmount
	if p < 0 {
		return 0
	}
	return p
}

func (l Line) Subtotal() int64 {
	return l.EffectivePrice() * l.Quantity
}

// Item 은 Add 로 담는 상품 정보 (수량/할인 없음).
type Item struct {
	VariantID     int64
	ProductName   string
	ProductNumber string
	Color         string
	Size          string
	OriginalPrice int64
	SalePrice     int64
}

// Totals 는 합계 표시용 값.
type Totals struct {
	TotalQuantity int64 `json:"total_quantity"`
	TotalAmount   int64 `json:"total_amount"`
}

var (
	ErrLineNotFound     = errors.New("cart: line not found")
	ErrNegativeDiscount = errors.New("cart: discount amount must not be negative")
)

// Store 는 한 화면 인스턴스가 소유하는 장바구니.
// 화면 마운트 시 New 로 만들고 언마운트 시 버린다. 동시 변경자는 없다
// (UI 스레드 단일 소유) 는 전제이므로 잠금은 하지 않는다.
type Store struct {
	lines []Line
}

func New() *Store {
	return &Store{}
}

// Add 는 판매 모드의 담기. 같은 variant 행이 있으면 수량 +1,
// 없으면 수량 1, 할인 0 으로 새 행을 뒤에 붙인다.
// 재고 확인은 하지 않는다. 판매 등록 API 가 최종 권한을 가진다.
func (s *Store) Add(item Item) {
	for i := range s.lines {
		if s.lines[i].VariantID == item.VariantID {
			s.lines[i].Quantity++
			return
		}
	}
	s.lines = append(s.lines, Line{
		LineID:         uuid.NewString(),
		VariantID:      item.VariantID,
		ProductName:    item.ProductName,
		ProductNumber:  item.ProductNumber,
		Color:          item.Color,
		Size:           item.Size,
		OriginalPrice:  item.OriginalPrice,
		SalePrice:      item.SalePrice,
		DiscountAmount: 0,
		Quantity:       1,
	})
}

// SetQuantity 는 수량 변경. 0 이하는 오류가 아니라 행 삭제로 취급한다.
func (s *Store) SetQuantity(lineID string, qty int64) error {
	idx := s.indexOf(lineID)
	if idx < 0 {
		return ErrLineNotFound
	}
	if qty <= 0 {
		s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
		return nil
	}
	s.lines[idx].Quantity = qty
	return nil
}

// SetDiscount 는 행 할인액 변경. 음수는 거부한다.
// 판매가를 넘는 할인은 허용하되 실판매가가 0 으로 클램프된다.
func (s *Store) SetDiscount(lineID string, amount int64) error {
	if amount < 0 {
		return ErrNegativeDiscount
	}
	idx := s.indexOf(lineID)
	if idx < 0 {
		return ErrLineNotFound
	}
	s.lines[idx].DiscountAmount = amount
	return nil
}

func (s *Store) Remove(lineID string) error {
	idx := s.indexOf(lineID)
	if idx < 0 {
		return ErrLineNotFound
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	return nil
}

func (s *Store) Clear() {
	s.lines = nil
}

// LoadFromSale 은 환불 모드 전용: 과거 영수증의 행 스냅샷으로 전체를
// 교체한다. 가격/할인/수량은 받은 그대로이며 병합하지 않는다.
func (s *Store) LoadFromSale(lines []Line) {
	s.lines = make([]Line, len(lines))
	copy(s.lines, lines)
	for i := range s.lines {
		if s.lines[i].LineID == "" {
			s.lines[i].LineID = uuid.NewString()
		}
	}
}

// Lines 는 표시 순서대로의 사본.
func (s *Store) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) Len() int {
	return len(s.lines)
}

// Totals 는 매 호출 시 전체를 다시 합산한다.
func (s *Store) Totals() Totals {
	var t Totals
	for _, l := range s.lines {
		t.TotalQuantity += l.Quantity
		t.TotalAmount += l.Subtotal()
	}
	return t
}

func (s *Store) indexOf(lineID string) int {
	for i := range s.lines {
		if s.lines[i].LineID == lineID {
			return i
		}
	}
	return -1
}
