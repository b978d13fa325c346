package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/voucher"
)

// Payment records one settlement of one or more vouchers.
type Payment struct {
	ID         uuid.UUID
	OperatorID uuid.UUID
	AmountPaid decimal.Decimal
	PaidAt     time.Time
	// ReceiptPath is empty until a receipt has been rendered and attached.
	ReceiptPath string
	Lines       []*Line
	CreatedAt   time.Time
	// Skipped lists requested voucher ids that did not resolve to a payable voucher.
	Skipped []uuid.UUID
}

// Line is a settled voucher and the member it belongs to.
type Line struct {
	Voucher    *voucher.Voucher
	MemberName string
	Address    string
}

// HasReceipt reports whether a receipt file is attached.
func (p *Payment) HasReceipt() bool {
	return p.ReceiptPath != ""
}

func (p *Payment) voucherIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(p.Lines))
	for i, l := range p.Lines {
		ids[i] = l.Voucher.ID
	}

	return ids
}
