package models

import "strings"

// NormalizeCPF strips everything but digits.
func NormalizeCPF(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF checks length and both check digits of a Brazilian CPF.
// Strings of a single repeated digit pass the checksum but are rejected.
func ValidCPF(s string) bool {
	cpf := NormalizeCPF(s)
	if len(cpf) != 11 {
		return false
	}
	if strings.Count(cpf, cpf[:1]) == 11 {
		return false
	}

	digit := func(n int) int {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(cpf[i]-'0') * (n + 1 - i)
		}
		r := (sum * 10) % 11
		if r == 10 {
			r = 0
		}
		return r
	}
	return digit(9) == int(cpf[9]-'0') && digit(10) == int(cpf[10]-'0')
}

// ValidCEP accepts postal codes with exactly eight digits after normalization.
func ValidCEP(s string) bool {
	return len(NormalizeCPF(s)) == 8 && strings.Trim(s, "0123456789-. ") == ""
}
