package utils

import "regexp"

var nonDigitRegexp = regexp.MustCompile(`\D`)

// DigitsOnly выбрасывает из строки всё, кроме цифр.
func DigitsOnly(s string) string {
	return nonDigitRegexp.ReplaceAllString(s, "")
}

// NormalizePhone приводит телефон к каноническому виду 7XXXXXXXXXX
// (11 цифр, код страны 7). Этот вид — ключ дедупликации клиентов.
// Возвращает пустую строку, если из входа не собирается валидный номер.
func NormalizePhone(phone string) string {
	digits := nonDigitRegexp.ReplaceAllString(phone, "")

	switch {
	case len(digits) == 11 && digits[0] == '8':
		digits = "7" + digits[1:]
	case len(digits) == 10:
		digits = "7" + digits
	}

	if len(digits) != 11 || digits[0] != '7' {
		return ""
	}
	return digits
}
