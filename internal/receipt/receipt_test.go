package receipt_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguacoop/aguacoop/internal/payment"
	"github.com/aguacoop/aguacoop/internal/receipt"
	"github.com/aguacoop/aguacoop/internal/voucher"
)

func TestRenderer_Render(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts")
	r := receipt.NewRenderer(dir, "Cooperativa de Agua Potable Ñuñoa")

	issued := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	p := &payment.Payment{
		ID:         uuid.New(),
		AmountPaid: decimal.RequireFromString("70"),
		PaidAt:     time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
		Lines: []*payment.Line{
			{
				MemberName: "José Peña",
				Address:    "Calle Sucre 12",
				Voucher: &voucher.Voucher{
					ID:           uuid.New(),
					MeterID:      uuid.New(),
					BasicAmount:  decimal.RequireFromString("50"),
					ExcessAmount: decimal.RequireFromString("20"),
					TotalDue:     decimal.RequireFromString("70"),
					IssueDate:    issued,
					DueDate:      voucher.DueDateFor(issued),
				},
			},
		},
	}

	path, err := r.Render(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, receipt.FileName(p)), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderer_Render_Cancelled(t *testing.T) {
	r := receipt.NewRenderer(t.TempDir(), "Coop")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, &payment.Payment{ID: uuid.New()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderer_Render_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	r := receipt.NewRenderer(file, "Coop")

	_, err := r.Render(context.Background(), &payment.Payment{ID: uuid.New()})
	assert.Error(t, err)
}
