package utils

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers typed without a country code
const DefaultRegion = "BR"

// NormalizePhone parses a phone number typed in any common format and returns
// it in E.164. Numbers without a country code are read as Brazilian.
func NormalizePhone(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return "", fmt.Errorf("empty phone number")
	}
	if strings.HasPrefix(clean, "00") {
		clean = "+" + clean[2:]
	}

	num, err := phonenumbers.Parse(clean, DefaultRegion)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number: %s", raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
