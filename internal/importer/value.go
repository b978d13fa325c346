package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseReading accepts "1.234,5" and "1234.5" style counter values.
func parseReading(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("missing reading")
	}

	clean := s
	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid reading %q", s)
	}

	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative reading %q", s)
	}

	return d, nil
}
