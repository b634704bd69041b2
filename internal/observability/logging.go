package observability

import (
	"strings"
	"unicode"
)

// MaskCPF masks a CPF number for logging
func MaskCPF(cpf string) string {
	if len(cpf) != 11 {
		return "***.***.***-**"
	}
	return cpf[:3] + ".***" + "." + cpf[6:9] + "-**"
}

// MaskEmail keeps the first character of the local part and the domain
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "****"
	}
	return email[:1] + "****" + email[at:]
}

// MaskDocument masks a CPF or CNPJ given with or without punctuation
func MaskDocument(doc string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, doc)
	if len(digits) == 14 {
		return digits[:2] + ".***.***/****-" + digits[12:]
	}
	return MaskCPF(digits)
}
