// internal/domain/checkout/phone.go
package checkout

import (
	"strings"
	"unicode"
)

// DialCode is a supported international dialing prefix
type DialCode struct {
	Country string `json:"country"`
	Code    string `json:"code"`
	Format  string `json:"format"`
	Digits  int    `json:"digits"`
}

var dialCodes = []DialCode{
	{Country: "Morocco", Code: "+212", Format: "+212 XXXXXXXXX", Digits: 9},
	{Country: "France", Code: "+33", Format: "+33 X XX XX XX XX", Digits: 9},
	{Country: "Spain", Code: "+34", Format: "+34 XXX XXX XXX", Digits: 9},
	{Country: "UK", Code: "+44", Format: "+44 XXXX XXXXXX", Digits: 10},
	{Country: "Italy", Code: "+39", Format: "+39 XXX XXX XXXX", Digits: 10},
	{Country: "UAE", Code: "+971", Format: "+971 XX XXX XXXX", Digits: 8},
	{Country: "China", Code: "+86", Format: "+86 XXX XXXX XXXX", Digits: 11},
}

// Country is a destination the store ships to
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var countries = []Country{
	{Code: "morocco", Name: "Morocco"},
	{Code: "uae", Name: "UAE"},
	{Code: "uk", Name: "UK"},
	{Code: "france", Name: "France"},
	{Code: "spain", Name: "Spain"},
	{Code: "italy", Name: "Italy"},
	{Code: "china", Name: "China"},
}

// DialCodes returns the supported dialing codes, Morocco first
func DialCodes() []DialCode {
	out := make([]DialCode, len(dialCodes))
	copy(out, dialCodes)
	return out
}

// Countries returns the shipping destinations
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

// LookupDialCode finds the entry for code
func LookupDialCode(code string) (DialCode, bool) {
	for _, dc := range dialCodes {
		if dc.Code == code {
			return dc, true
		}
	}
	return DialCode{}, false
}

// FormatHint returns the display format for code, or "" when unsupported
func FormatHint(code string) string {
	dc, ok := LookupDialCode(code)
	if !ok {
		return ""
	}
	return dc.Format
}

// ValidatePhoneNumber checks that phone, once the dialing code prefix and all
// whitespace are removed, is exactly the number of digits expected for code
func ValidatePhoneNumber(phone, code string) bool {
	dc, ok := LookupDialCode(code)
	if !ok {
		return false
	}

	local := strings.TrimSpace(phone)
	local = strings.TrimPrefix(local, dc.Code)
	local = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, local)

	if len(local) != dc.Digits {
		return false
	}
	for _, r := range local {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
