package tariff

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is a consumption category that meters are billed under.
type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
	// BasicAllowance is the consumption (m³) covered by BaseRate.
	BasicAllowance decimal.Decimal
	BaseRate       decimal.Decimal
	// ExcessRate is charged per m³ above BasicAllowance and drives the late fee.
	ExcessRate      decimal.Decimal
	ExponentialMora bool
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// Validate checks the category invariants.
func (c *Category) Validate() error {
	if c.Name == "" {
		return errEmptyName
	}

	if c.BasicAllowance.IsNegative() {
		return errNegativeAllowance
	}

	if !c.BaseRate.IsPositive() {
		return errBaseRate
	}

	if !c.ExcessRate.IsPositive() {
		return errExcessRate
	}

	return nil
}
