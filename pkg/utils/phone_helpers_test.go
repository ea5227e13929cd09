package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"одиннадцать цифр с восьмёркой", "89123456789", "79123456789"},
		{"одиннадцать цифр с семёркой", "79123456789", "79123456789"},
		{"десять цифр без кода страны", "9123456789", "79123456789"},
		{"плюс и разделители", "+7 (912) 345-67-89", "79123456789"},
		{"восьмёрка с пробелами и скобками", "8 (912) 345 67 89", "79123456789"},
		{"слишком короткий", "12345", ""},
		{"слишком длинный", "791234567890", ""},
		{"одиннадцать цифр с другим кодом", "69123456789", ""},
		{"пустая строка", "", ""},
		{"только буквы", "abc", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePhone(tc.input))
		})
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "79123456789", DigitsOnly("+7 (912) 345-67-89"))
	assert.Equal(t, "", DigitsOnly("abc"))
}
