package reading

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/voucher"
)

// MeterStatus tells whether a meter takes part in the monthly reading round.
type MeterStatus string

const (
	MeterActive   MeterStatus = "ACTIVE"
	MeterInactive MeterStatus = "INACTIVE"
)

// Meter is a water meter assigned to a member and billed under one tariff category.
type Meter struct {
	ID         uuid.UUID
	MemberName string
	Address    string
	CategoryID uuid.UUID
	Status     MeterStatus
	CreatedAt  time.Time
}

// Status is the lifecycle state of a reading.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusRegistered Status = "REGISTERED"
)

// Reading is the monthly capture of a meter's counter.
type Reading struct {
	ID           uuid.UUID
	MeterID      uuid.UUID
	Period       time.Time // first day of the reading month
	PriorValue   decimal.Decimal
	CurrentValue decimal.Decimal
	Consumption  decimal.Decimal
	Note         string
	Status       Status
	OperatorID   *uuid.UUID
	ReadAt       time.Time
}

// EntryRow is one line of the operator's monthly capture sheet.
type EntryRow struct {
	Reading      *Reading
	MemberName   string
	Address      string
	CategoryName string
}

// HistoryEntry is a reading together with the voucher it produced, if any.
type HistoryEntry struct {
	Reading      *Reading
	MemberName   string
	Address      string
	Voucher      *voucher.Voucher
	OperatorName string
}

// ConsumptionEntry is a registered monthly consumption and its voucher's state.
type ConsumptionEntry struct {
	ReadingID     uuid.UUID
	Period        time.Time
	Consumption   decimal.Decimal
	PaymentStatus voucher.Status
}

// RolloverCandidate is an active meter without a reading in the current month.
type RolloverCandidate struct {
	MeterID uuid.UUID
	// LastRegistered is the current value of the meter's latest registered reading.
	LastRegistered *decimal.Decimal
}

// PeriodOf returns the first instant of t's calendar month.
func PeriodOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
