package view

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReading(t *testing.T) {
	prior := decimal.NewFromInt(120)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "Integer", input: "135", want: "135"},
		{name: "DecimalComma", input: " 135,5 ", want: "135.5"},
		{name: "EqualToPrior", input: "120", want: "120"},
		{name: "BelowPrior", input: "119.9", wantErr: "at least 120"},
		{name: "NotANumber", input: "abc", wantErr: "enter a number"},
		{name: "Empty", input: "", wantErr: "enter a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReading(tt.input, prior)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
