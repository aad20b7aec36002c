package checkout

import (
	"regexp"
	"strings"
)

// Form holds the shipping and payment fields captured at checkout. Card
// fields are validated but never transmitted anywhere.
type Form struct {
	Name    string
	Email   string
	Address string
	City    string
	Zip     string
	Card    string
	Exp     string
	CVC     string
}

// Field names, used as keys in validation error maps.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldAddress = "address"
	FieldCity    = "city"
	FieldZip     = "zip"
	FieldCard    = "card"
	FieldExp     = "exp"
	FieldCVC     = "cvc"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipRe   = regexp.MustCompile(`^\d+$`)
	cardRe  = regexp.MustCompile(`^\d{13,19}$`)
	expRe   = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvcRe   = regexp.MustCompile(`^\d{3}$`)
)

// Validate checks every field against the fixed schema and returns a map
// of field name to message for each failing field. An empty map means the
// form is valid. Validation failures are surfaced inline, never as errors.
func Validate(f Form) map[string]string {
	problems := make(map[string]string)

	if strings.TrimSpace(f.Name) == "" {
		problems[FieldName] = "Name is required"
	}
	if !emailRe.MatchString(f.Email) {
		problems[FieldEmail] = "Invalid email"
	}
	if strings.TrimSpace(f.Address) == "" {
		problems[FieldAddress] = "Address is required"
	}
	if strings.TrimSpace(f.City) == "" {
		problems[FieldCity] = "City is required"
	}
	if !zipRe.MatchString(f.Zip) {
		problems[FieldZip] = "ZIP must be numeric"
	}
	if !cardRe.MatchString(f.Card) {
		problems[FieldCard] = "Card number must be 13-19 digits"
	}
	if !expRe.MatchString(f.Exp) {
		problems[FieldExp] = "Expiration must be MM/YY"
	}
	if !cvcRe.MatchString(f.CVC) {
		problems[FieldCVC] = "CVC must be exactly 3 digits"
	}

	return problems
}
