// flowork/textutil/textutil_test.go

package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanUpper(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"소문자", "ab1234cd56", "AB1234CD56"},
		{"하이픈 제거", "AB-1234-CD", "AB1234CD"},
		{"공백 제거", " AB 1234 ", "AB1234"},
		{"전각 영숫자", "ＡＢ１２３４", "AB1234"},
		{"전각 공백", "AB　CD", "ABCD"},
		{"한글 유지", "와이드 팬츠", "와이드팬츠"},
		{"빈 문자열", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanUpper(tt.in))
		})
	}
}

func TestChoseong(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"기본", "와이드 팬츠", "ㅇㅇㄷㅍㅊ"},
		{"된소리", "빨강", "ㅃㄱ"},
		{"영숫자 유지", "셔츠A1", "ㅅㅊA1"},
		{"자모 입력 유지", "ㅅㅊ", "ㅅㅊ"},
		{"특수문자 제거", "셔츠!@#", "ㅅㅊ"},
		{"빈 문자열", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Choseong(tt.in))
		})
	}
}
