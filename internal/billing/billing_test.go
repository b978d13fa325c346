package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/billing"
	"github.com/aguacoop/aguacoop/internal/tariff"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func residential() *tariff.Category {
	return &tariff.Category{
		Name:           "Domiciliaria",
		BasicAllowance: dec("10"),
		BaseRate:       dec("50"),
		ExcessRate:     dec("5"),
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name        string
		consumption string
		outstanding int
		wantExcess  string
		wantSurch   string
		wantTotal   string
	}{
		{name: "BelowAllowance", consumption: "7", wantExcess: "0", wantSurch: "0", wantTotal: "50"},
		{name: "ZeroConsumption", consumption: "0", wantExcess: "0", wantSurch: "0", wantTotal: "50"},
		{name: "ExactlyAllowance", consumption: "10", wantExcess: "0", wantSurch: "0", wantTotal: "50"},
		{name: "OneAboveAllowance", consumption: "11", wantExcess: "5", wantSurch: "0", wantTotal: "55"},
		{name: "Excess", consumption: "14", wantExcess: "20", wantSurch: "0", wantTotal: "70"},
		{name: "FractionalExcess", consumption: "10.5", wantExcess: "2.5", wantSurch: "0", wantTotal: "52.5"},
		{name: "ThreeOutstanding", consumption: "14", outstanding: 3, wantExcess: "20", wantSurch: "0", wantTotal: "70"},
		{name: "FourOutstanding", consumption: "14", outstanding: 4, wantExcess: "20", wantSurch: "2", wantTotal: "72"},
		{name: "ManyOutstanding", consumption: "3", outstanding: 12, wantExcess: "0", wantSurch: "2", wantTotal: "52"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := billing.Calculate(dec(tt.consumption), residential(), tt.outstanding)
			require.NoError(t, err)

			assert.True(t, got.BasicAmount.Equal(dec("50")), "basic = %s", got.BasicAmount)
			assert.True(t, got.ExcessAmount.Equal(dec(tt.wantExcess)), "excess = %s", got.ExcessAmount)
			assert.True(t, got.Surcharge.Equal(dec(tt.wantSurch)), "surcharge = %s", got.Surcharge)
			assert.True(t, got.TotalDue.Equal(dec(tt.wantTotal)), "total = %s", got.TotalDue)
			assert.True(t, got.TotalDue.Equal(got.BasicAmount.Add(got.ExcessAmount).Add(got.Surcharge)))
		})
	}
}

func TestCalculate_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		consumption string
		outstanding int
		category    *tariff.Category
	}{
		{name: "NegativeConsumption", consumption: "-1", category: residential()},
		{name: "NegativeOutstanding", consumption: "1", outstanding: -1, category: residential()},
		{name: "NilCategory", consumption: "1"},
		{name: "MissingBaseRate", consumption: "1", category: &tariff.Category{ExcessRate: dec("5")}},
		{name: "MissingExcessRate", consumption: "1", category: &tariff.Category{BaseRate: dec("50")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := billing.Calculate(dec(tt.consumption), tt.category, tt.outstanding)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestLateFee(t *testing.T) {
	tests := []struct {
		name         string
		rate         string
		priorOverdue int
		exponential  bool
		want         string
	}{
		{name: "LinearFirst", rate: "5", priorOverdue: 0, want: "5"},
		{name: "LinearThird", rate: "5", priorOverdue: 2, want: "15"},
		{name: "ExponentialFirst", rate: "5", priorOverdue: 0, exponential: true, want: "5"},
		{name: "ExponentialThird", rate: "5", priorOverdue: 2, exponential: true, want: "125"},
		{name: "ExponentialFractional", rate: "1.5", priorOverdue: 1, exponential: true, want: "2.25"},
		{name: "NegativeCountClamped", rate: "5", priorOverdue: -3, want: "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := billing.LateFee(dec(tt.rate), tt.priorOverdue, tt.exponential)
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}
