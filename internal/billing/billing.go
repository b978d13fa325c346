// Package billing turns a registered consumption into voucher amounts and
// computes the late fee applied to overdue vouchers.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/tariff"
)

// ChronicDebtThreshold is the number of unpaid vouchers a meter may carry
// before a new voucher gets the flat ChronicDebtSurcharge.
const ChronicDebtThreshold = 3

// ChronicDebtSurcharge is added once, at registration time.
var ChronicDebtSurcharge = decimal.NewFromInt(2)

// Breakdown is the charge split of a voucher.
type Breakdown struct {
	BasicAmount  decimal.Decimal
	ExcessAmount decimal.Decimal
	// Surcharge is stored as the voucher's accrued late fee.
	Surcharge decimal.Decimal
	TotalDue  decimal.Decimal
}

// Calculate computes the breakdown for a consumption under category. outstanding is
// the number of the meter's unpaid vouchers.
func Calculate(consumption decimal.Decimal, category *tariff.Category, outstanding int) (Breakdown, error) {
	if consumption.IsNegative() {
		return Breakdown{}, apperr.Validation("consumption cannot be negative")
	}

	if outstanding < 0 {
		return Breakdown{}, apperr.Validation("outstanding voucher count cannot be negative")
	}

	if category == nil || !category.BaseRate.IsPositive() || !category.ExcessRate.IsPositive() ||
		category.BasicAllowance.IsNegative() {
		return Breakdown{}, apperr.Validation("tariff category is missing required rates")
	}

	b := Breakdown{
		BasicAmount:  category.BaseRate,
		ExcessAmount: decimal.Zero,
		Surcharge:    decimal.Zero,
	}

	if consumption.GreaterThan(category.BasicAllowance) {
		b.ExcessAmount = consumption.Sub(category.BasicAllowance).Mul(category.ExcessRate)
	}

	if outstanding > ChronicDebtThreshold {
		b.Surcharge = ChronicDebtSurcharge
	}

	b.TotalDue = b.BasicAmount.Add(b.ExcessAmount).Add(b.Surcharge)

	return b, nil
}

// LateFee returns the mora for a voucher whose meter already has priorOverdue
// overdue vouchers: excessRate^(n+1) when exponential, excessRate*(n+1) otherwise.
func LateFee(excessRate decimal.Decimal, priorOverdue int, exponential bool) decimal.Decimal {
	if priorOverdue < 0 {
		priorOverdue = 0
	}

	n := priorOverdue + 1

	if !exponential {
		return excessRate.Mul(decimal.NewFromInt(int64(n)))
	}

	fee := decimal.NewFromInt(1)
	for range n {
		fee = fee.Mul(excessRate)
	}

	return fee
}
