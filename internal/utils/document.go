package utils

import "strings"

// OnlyDigits strips every non-digit character
func OnlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// checkDigit computes a mod-11 verifier over digits using weights.
func checkDigit(digits string, weights []int) byte {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	remainder := sum % 11
	if remainder < 2 {
		return '0'
	}
	return byte('0' + 11 - remainder)
}

// ValidateCPF validates a CPF number, with or without punctuation
func ValidateCPF(cpf string) bool {
	cpf = OnlyDigits(cpf)
	if len(cpf) != 11 || allSame(cpf) {
		return false
	}
	return checkDigit(cpf, []int{10, 9, 8, 7, 6, 5, 4, 3, 2}) == cpf[9] &&
		checkDigit(cpf, []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}) == cpf[10]
}

// ValidateCNPJ validates a CNPJ number, with or without punctuation
func ValidateCNPJ(cnpj string) bool {
	cnpj = OnlyDigits(cnpj)
	if len(cnpj) != 14 || allSame(cnpj) {
		return false
	}
	return checkDigit(cnpj, []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}) == cnpj[12] &&
		checkDigit(cnpj, []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}) == cnpj[13]
}
