package privacy

import "regexp"

// Rule names, in registry order.
const (
	RuleEmail          = "Email"
	RulePhoneIndonesia = "Phone Indonesia"
	RulePhoneGeneral   = "Phone General"
	RuleAddress        = "Address"
	RuleIDNumberKTP    = "ID Number KTP"
	RuleNPWP           = "NPWP"
	RuleBankAccount    = "Bank Account"
	RulePostalCode     = "Postal Code"
)

var (
	emailPattern          = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	phoneIndonesiaPattern = regexp.MustCompile(`(\+62|62|0)[\s-]?8[1-9][0-9]{1,2}[\s-]?[0-9]{3,4}[\s-]?[0-9]{3,4}`)
	phoneGeneralPattern   = regexp.MustCompile(`\b\d{3,4}[-.\s]?\d{3,4}[-.\s]?\d{3,4}\b`)
	addressPattern        = regexp.MustCompile(`(?i)\b\d+\s+[A-Za-z\s]+(?:Street|St|Road|Rd|Avenue|Ave|Boulevard|Blvd|Lane|Ln|Drive|Dr|Way|Jalan|Jl|Gang|Gg)\b`)
	ktpPattern            = regexp.MustCompile(`\b\d{16}\b`)
	npwpPattern           = regexp.MustCompile(`\b\d{2}\.\d{3}\.\d{3}\.\d{1}-\d{3}\.\d{3}\b`)
	bankAccountPattern    = regexp.MustCompile(`\b\d{10,16}\b`)
	postalCodePattern     = regexp.MustCompile(`\b\d{5}\b`)
)

// DefaultRules returns the ordered rule registry.
//
// Rules run sequentially: each one sees the text as already masked by the
// rules before it, so a span claimed by an earlier rule is never reported
// again by a later one. The masks contain no '@' and no digit run longer
// than two, so later rules cannot match text produced by earlier
// replacements.
//
// The rules have no context awareness. Known false positives: Postal Code
// redacts any standalone 5-digit number, Phone General redacts any run of
// three 3-4 digit groups (including bare 9-12 digit numbers), and Bank
// Account redacts any standalone 10-16 digit number left over.
//
// A fresh slice is returned on every call; callers may not mutate the
// shared registry.
func DefaultRules() []DetectionRule {
	return []DetectionRule{
		{Name: RuleEmail, Pattern: emailPattern, Replacement: "***@email.com"},
		{Name: RulePhoneIndonesia, Pattern: phoneIndonesiaPattern, Replacement: "+62-***-***-***"},
		{Name: RulePhoneGeneral, Pattern: phoneGeneralPattern, Replacement: "***-***-***"},
		{Name: RuleAddress, Pattern: addressPattern, Replacement: "*** [ALAMAT DISEMBUNYIKAN] ***"},
		{Name: RuleIDNumberKTP, Pattern: ktpPattern, Replacement: "****************"},
		{Name: RuleNPWP, Pattern: npwpPattern, Replacement: "**.***.***.***-***.***"},
		{Name: RuleBankAccount, Pattern: bankAccountPattern, Replacement: "***REKENING***"},
		{Name: RulePostalCode, Pattern: postalCodePattern, Replacement: "*****"},
	}
}

// ListRules returns the names of the registry rules in order
func ListRules() []string {
	rules := DefaultRules()
	names := make([]string, 0, len(rules))
	for _, rule := range rules {
		names = append(names, rule.Name)
	}
	return names
}
