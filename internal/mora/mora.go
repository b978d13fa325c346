// Package mora escalates the late fee of vouchers that passed their due date unpaid.
package mora

import (
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/voucher"
)

// Candidate is a PENDING voucher together with the tariff terms of its meter.
type Candidate struct {
	Voucher         *voucher.Voucher
	ExcessRate      decimal.Decimal
	ExponentialMora bool
}

// Result summarizes one sweep.
type Result struct {
	Scanned int
	Overdue int
	// Skipped counts vouchers that stopped being PENDING during the sweep.
	Skipped int
	Failed  int
}
