// Package report assembles collection reports from settled payments.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aguacoop/aguacoop/internal/payment"
)

// Item is one payment in a report with the local copy of its receipt.
type Item struct {
	Payment  *payment.Payment
	FilePath string
}

// Payments is the slice of the payment service the report needs.
type Payments interface {
	List(ctx context.Context, from, to time.Time) ([]*payment.Payment, error)
	ReissueReceipt(ctx context.Context, paymentID uuid.UUID) (*payment.Payment, error)
}

type Service struct {
	payments Payments
	logger   *slog.Logger
}

func NewService(payments Payments, logger *slog.Logger) *Service {
	return &Service{payments: payments, logger: logger}
}

// Collections copies the receipts of payments made in [from, to) into outputDir.
// Payments without a receipt get one rendered first; if that fails the item has no file.
func (s *Service) Collections(ctx context.Context, from, to time.Time, outputDir string) ([]Item, error) {
	payments, err := s.payments.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	items := make([]Item, 0, len(payments))

	for _, p := range payments {
		item := Item{Payment: p}

		if !p.HasReceipt() {
			reissued, err := s.payments.ReissueReceipt(ctx, p.ID)
			if err != nil {
				s.logger.Warn("receipt unavailable", "payment_id", p.ID, "error", err)
			} else {
				p.ReceiptPath = reissued.ReceiptPath
			}
		}

		if p.HasReceipt() {
			path, err := copyFile(p.ReceiptPath, outputDir)
			if err != nil {
				return nil, fmt.Errorf("copying receipt of payment %s: %w", p.ID, err)
			}

			item.FilePath = path
		}

		items = append(items, item)
	}

	return items, nil
}

func copyFile(src, dir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	dst := filepath.Join(dir, filepath.Base(src))

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", err
	}

	return dst, nil
}

// Summary renders one line per payment: date | payment | vouchers | amount | receipt.
func (s *Service) Summary(items []Item) string {
	var sb strings.Builder

	for _, item := range items {
		p := item.Payment

		receipt := "no receipt"
		if item.FilePath != "" {
			receipt = filepath.Base(item.FilePath)
		}

		fmt.Fprintf(&sb, "* %s | %s | %d voucher(s) | %s | %s\n",
			p.PaidAt.Format("2006-01-02 15:04"), p.ID, len(p.Lines), p.AmountPaid.StringFixed(2), receipt)
	}

	return sb.String()
}
