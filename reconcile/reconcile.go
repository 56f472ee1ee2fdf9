// flowork/reconcile/reconcile.go

// Package reconcile 는 재고 실사 화면의 행 단위 상태를 담당한다.
// 바코드별 실재고 입력란은 비활성 → 입력가능 → 저장중 → 비활성(저장완료)
// 순으로 움직이고, 차이값은 항상 서버 응답의 값을 그대로 표시한다.
// 화면에서 계산한 값으로 덮어쓰지 않는다.
package reconcile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// InputState 는 실재고 입력란의 상태.
type InputState int

const (
	StateDisabled InputState = iota // 편집 토글 꺼짐 또는 저장 완료
	StateEnabled                    // 입력 가능
	StateSaving                     // 서버 응답 대기
)

// Badge 는 차이값 표시 스타일. 4분류는 화면 계약이므로 바꾸지 않는다.
type Badge string

const (
	BadgeSurplus  Badge = "surplus"  // 실재고 > 전산재고
	BadgeShortage Badge = "shortage" // 실재고 < 전산재고
	BadgeNeutral  Badge = "neutral"  // 일치
	BadgeUnknown  Badge = "unknown"  // 실재고 미입력
)

// ClassifyDiff 는 서버가 내려준 차이값을 배지로 분류한다. nil 은 미입력.
func ClassifyDiff(diff *int64) Badge {
	if diff == nil {
		return BadgeUnknown
	}
	switch {
	case *diff > 0:
		return BadgeSurplus
	case *diff < 0:
		return BadgeShortage
	default:
		return BadgeNeutral
	}
}

// Backend 는 실사 화면이 호출하는 서버 측 두 동작.
type Backend interface {
	// SaveActualStock 은 실재고를 저장한다. value nil 은 입력 비우기(NULL).
	// 반환 diff 는 서버가 계산한 실재고-전산재고, 미입력이면 nil.
	SaveActualStock(barcode string, value *int64) (newActual *int64, newDiff *int64, err error)
	// AdjustQuantity 는 전산재고를 ±1 조정한다.
	AdjustQuantity(barcode string, change int64) (newQuantity int64, newDiff *int64, err error)
}

// Row 는 실사 시트 1행.
type Row struct {
	Barcode          string
	ProductName      string
	ExpectedQuantity int64
	ActualStock      *int64
	StockDiff        *int64 // 항상 서버 응답값

	state       InputState
	input       string // 저장 전 입력값
	saveEnabled bool
	adjustBusy  bool   // +/- 버튼 그룹 잠금
	message     string // 행 내 인라인 메시지
}

func (r *Row) State() InputState { return r.state }
func (r *Row) SaveEnabled() bool { return r.saveEnabled }
func (r *Row) AdjustBusy() bool  { return r.adjustBusy }
func (r *Row) Message() string   { return r.message }
func (r *Row) Badge() Badge      { return ClassifyDiff(r.StockDiff) }

var (
	ErrRowNotFound = errors.New("reconcile: row not found")
	ErrRowBusy     = errors.New("reconcile: row is busy")
)

// ValidationError 는 서버 호출 전에 걸러진 입력 오류. 인라인으로만 표시한다.
type ValidationError struct {
	Barcode string
	Msg     string
}

func (e *ValidationError) Error() string { return e.Msg }

// View 는 실사 시트 전체. 단일 화면 스레드 소유 전제라 잠금은 없다.
type View struct {
	backend Backend
	rows    []*Row
	byCode  map[string]*Row

	editActive bool
	focused    string // 포커스 중인 행의 바코드, 없으면 ""

	// Confirm 은 전산재고 ±1 전에 호출되는 확인 훅. nil 이면 무조건 진행.
	Confirm func(prompt string) bool
}

func NewView(backend Backend, rows []Row) *View {
	v := &View{
		backend: backend,
		byCode:  make(map[string]*Row, len(rows)),
	}
	for i := range rows {
		r := rows[i]
		r.state = StateDisabled
		v.rows = append(v.rows, &r)
		v.byCode[r.Barcode] = &r
	}
	return v
}

func (v *View) EditActive() bool { return v.editActive }
func (v *View) Focused() string  { return v.focused }

func (v *View) Rows() []*Row { return v.rows }

func (v *View) Row(barcode string) (*Row, bool) {
	r, ok := v.byCode[barcode]
	return r, ok
}

// ToggleEdit 는 전체 편집 토글. 켜면 모든 입력란이 입력가능이 되고
// 첫 행에 포커스, 저장 버튼은 값이 바뀔 때까지 전부 비활성.
// 끄면 전부 비활성으로 돌아간다. 저장중인 행은 그대로 둔다.
func (v *View) ToggleEdit() {
	v.editActive = !v.editActive
	for _, r := range v.rows {
		if r.state == StateSaving {
			continue
		}
		if v.editActive {
			r.state = StateEnabled
		} else {
			r.state = StateDisabled
		}
		r.saveEnabled = false
	}
	v.focused = ""
	if v.editActive && len(v.rows) > 0 {
		v.focused = v.rows[0].Barcode
	}
}

// Input 은 입력란 값 변경. 해당 행의 저장 버튼만 활성화한다.
func (v *View) Input(barcode, text string) error {
	r, ok := v.byCode[barcode]
	if !ok {
		return ErrRowNotFound
	}
	if r.state != StateEnabled {
		return ErrRowBusy
	}
	r.input = text
	r.saveEnabled = true
	r.message = ""
	return nil
}

// Save 는 행 저장. 입력값 검증(빈 값 또는 0 이상 정수)을 통과하지 못하면
// 서버 호출 없이 ValidationError 를 돌려주고 행은 재입력 가능 상태로 남는다.
// 서버 오류 시에도 저장 버튼을 되살려 수동 재시도에 맡긴다.
// 성공하면 서버가 돌려준 차이값을 그대로 반영하고 행을 비활성으로 되돌린 뒤,
// 편집 토글이 아직 켜져 있을 때만 다음 입력가능 행으로 포커스를 옮긴다.
func (v *View) Save(barcode string) error {
	r, ok := v.byCode[barcode]
	if !ok {
		return ErrRowNotFound
	}
	if r.state != StateEnabled || !r.saveEnabled {
		return ErrRowBusy
	}

	value, err := parseActual(r.input)
	if err != nil {
		r.message = err.Error()
		return &ValidationError{Barcode: barcode, Msg: err.Error()}
	}

	r.state = StateSaving
	r.saveEnabled = false

	newActual, newDiff, err := v.backend.SaveActualStock(barcode, value)
	if err != nil {
		r.state = StateEnabled
		r.saveEnabled = true
		r.message = err.Error()
		return err
	}

	r.ActualStock = newActual
	r.StockDiff = newDiff
	r.state = StateDisabled
	r.input = ""
	r.message = ""

	if v.editActive {
		v.advanceFocus(barcode)
	}
	return nil
}

// AdjustExpected 는 전산재고 ±1. 확인을 거친 뒤 버튼 그룹을 잠그고,
// 표시 수량은 서버 확인 후에만 바뀐다.
func (v *View) AdjustExpected(barcode string, change int64) error {
	if change != 1 && change != -1 {
		return fmt.Errorf("reconcile: invalid change %d", change)
	}
	r, ok := v.byCode[barcode]
	if !ok {
		return ErrRowNotFound
	}
	if r.adjustBusy {
		return ErrRowBusy
	}
	if v.Confirm != nil {
		verb := "증가"
		if change < 0 {
			verb = "감소"
		}
		if !v.Confirm(fmt.Sprintf("%s 의 전산재고를 1 %s시키겠습니까?", r.Barcode, verb)) {
			return nil
		}
	}

	r.adjustBusy = true
	newQty, newDiff, err := v.backend.AdjustQuantity(barcode, change)
	r.adjustBusy = false
	if err != nil {
		r.message = err.Error()
		return err
	}
	r.ExpectedQuantity = newQty
	r.StockDiff = newDiff
	r.message = ""
	return nil
}

// advanceFocus 는 저장한 행 다음의 입력가능 행으로 포커스를 옮긴다.
func (v *View) advanceFocus(savedBarcode string) {
	start := -1
	for i, r := range v.rows {
		if r.Barcode == savedBarcode {
			start = i
			break
		}
	}
	v.focused = ""
	if start < 0 {
		return
	}
	for _, r := range v.rows[start+1:] {
		if r.state == StateEnabled {
			v.focused = r.Barcode
			return
		}
	}
}

// parseActual 은 입력 문자열 검증. 빈 값은 실재고 지우기(nil).
func parseActual(text string) (*int64, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(t, 10, 64)
	if err != nil || n < 0 {
		return nil, errors.New("0 이상의 정수를 입력하세요")
	}
	return &n, nil
}
