package validation

import (
	"regexp"
	"strconv"
	"strings"
)

// FieldFormat is a declarative format check for one field key. Adding a
// payment method never requires validator changes: new field keys either
// reuse an entry here or get a new row.
type FieldFormat struct {
	MaxLen  int
	Pattern *regexp.Regexp
	Check   func(string) bool
}

var (
	ibanPattern   = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{1,30}$`)
	phonePattern  = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	cryptoPattern = regexp.MustCompile(`^[A-Za-z0-9]{20,}$`)
)

// fieldFormats maps field key to its format rule. Keys without an entry only
// get the presence check.
var fieldFormats = map[string]FieldFormat{
	"iban":           {MaxLen: 34, Pattern: ibanPattern},
	"crypto_address": {MaxLen: 128, Pattern: cryptoPattern},
	"card_number":    {MaxLen: 19, Check: passesLuhn},
	"phone_number":   {MaxLen: 16, Pattern: phonePattern},
	"email":          {MaxLen: 254, Pattern: emailPattern},
	"account_holder": {MaxLen: 100},
	"bank_name":      {MaxLen: 100},
	"wallet_id":      {MaxLen: 64},
}

// passesLuhn implements the standard Mod 10 check used by all banks.
// Spaces and dashes are stripped first.
func passesLuhn(number string) bool {
	number = strings.ReplaceAll(number, " ", "")
	number = strings.ReplaceAll(number, "-", "")
	if len(number) < 12 {
		return false
	}
	sum := 0
	alternate := false
	for i := len(number) - 1; i >= 0; i-- {
		n, err := strconv.Atoi(string(number[i]))
		if err != nil {
			return false
		}
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alternate = !alternate
	}
	return sum%10 == 0
}
