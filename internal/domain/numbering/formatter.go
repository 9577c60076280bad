package numbering

import (
	"fmt"
	"unicode"

	"github.com/kontor/backend/internal/domain/shared"
)

const (
	// MaxOrderSequence is the exclusive ceiling for the 2-digit order suffix.
	MaxOrderSequence int64 = 100
	// MaxInvoiceSequence is the exclusive ceiling for the 3-digit invoice suffix.
	MaxInvoiceSequence int64 = 1000

	// InvoicePrefix leads every invoice number.
	InvoicePrefix = "INV"

	// FallbackCustomerCode is used when an organization name contains no letters.
	FallbackCustomerCode = "XXX"
)

// CustomerCode derives the customer code from an organization name: the
// first three letters, uppercased, with non-letters stripped. Names with
// fewer than three letters yield a shorter code; names without any letters
// yield the fallback code.
func CustomerCode(name string) string {
	code := make([]rune, 0, 3)
	for _, r := range name {
		if unicode.IsLetter(r) {
			code = append(code, unicode.ToUpper(r))
			if len(code) == 3 {
				break
			}
		}
	}
	if len(code) == 0 {
		return FallbackCustomerCode
	}
	return string(code)
}

// OrderScopeKey builds the allocation scope for order numbers,
// e.g. 2026 + "NEU" -> "2026NEU".
func OrderScopeKey(year int, customerCode string) string {
	return fmt.Sprintf("%04d%s", year, customerCode)
}

// InvoiceScopeKey builds the allocation scope for invoice numbers,
// e.g. 2026 -> "INV-2026-".
func InvoiceScopeKey(year int) string {
	return fmt.Sprintf("%s-%04d-", InvoicePrefix, year)
}

// FormatOrderNumber renders an order number such as "2026NEU01".
// Sequence values outside the 2-digit width are rejected; the ceiling is a
// deliberate soft limit surfaced to the user, never wrapped.
func FormatOrderNumber(year int, customerCode string, seq int64) (string, error) {
	if seq < 1 || seq >= MaxOrderSequence {
		return "", shared.ErrSequenceOverflow
	}
	return fmt.Sprintf("%04d%s%02d", year, customerCode, seq), nil
}

// FormatInvoiceNumber renders an invoice number such as "INV-2026-001".
// The sequence is scoped per calendar year.
func FormatInvoiceNumber(year int, seq int64) (string, error) {
	if seq < 1 || seq >= MaxInvoiceSequence {
		return "", shared.ErrSequenceOverflow
	}
	return fmt.Sprintf("%s-%04d-%03d", InvoicePrefix, year, seq), nil
}
