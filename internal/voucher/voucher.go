package voucher

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the payment state of a voucher.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusOverdue Status = "OVERDUE"
	StatusPaid    Status = "PAID"
)

// PaymentTermMonths separates a voucher's issue date from its due date.
const PaymentTermMonths = 3

// Voucher (comprobante) is the billing record of one registered reading.
type Voucher struct {
	ID             uuid.UUID
	ReadingID      uuid.UUID
	MeterID        uuid.UUID
	OperatorID     uuid.UUID
	BasicAmount    decimal.Decimal
	ExcessAmount   decimal.Decimal
	AccruedLateFee decimal.Decimal
	TotalDue       decimal.Decimal
	Status         Status
	IssueDate      time.Time
	DueDate        time.Time
	PaymentID      *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// DueDateFor returns the due date of a voucher issued at issued.
func DueDateFor(issued time.Time) time.Time {
	return issued.AddDate(0, PaymentTermMonths, 0)
}

// IsPastDue reports whether now is strictly after the due date.
func (v *Voucher) IsPastDue(now time.Time) bool {
	return now.After(v.DueDate)
}

// Unpaid is a voucher awaiting payment together with where its meter is.
type Unpaid struct {
	Voucher    *Voucher
	MemberName string
	Address    string
}
