// Package payment reconciles a tendered cash amount against an order
// total before a transaction is sent to the backend.
package payment

import (
	"strconv"
	"strings"
)

// Validation is the outcome of checking a tendered amount.
type Validation struct {
	OK     bool
	Amount float64
	Reason string
}

// ParseAmount reads a cashier-typed amount. Currency symbols, thousands
// separators and whitespace are stripped; anything unparseable is zero.
func ParseAmount(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	amount, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return amount
}

// ValidateTender checks that the tendered cash covers the order total.
// The only requirement is amount >= total; a zero tender against a zero
// total is fine.
func ValidateTender(orderTotal float64, tendered string) Validation {
	amount := ParseAmount(tendered)
	if amount < orderTotal {
		if amount <= 0 {
			return Validation{Reason: "jumlah pembayaran tidak valid"}
		}
		return Validation{Amount: amount, Reason: "jumlah pembayaran kurang dari total"}
	}
	return Validation{OK: true, Amount: amount}
}

// ComputeChange is the cash to hand back, never negative.
func ComputeChange(orderTotal float64, tendered float64) float64 {
	change := tendered - orderTotal
	if change < 0 {
		return 0
	}
	return change
}

// CanSubmit gates the pay action: a valid tender and a chosen payment
// method.
func CanSubmit(v Validation, methodSelected bool) bool {
	return v.OK && methodSelected
}
