package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/mora"
	"github.com/aguacoop/aguacoop/internal/voucher"
	voucherstore "github.com/aguacoop/aguacoop/internal/voucher/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListPending(ctx context.Context) ([]*mora.Candidate, error) {
	query := `SELECT ` + voucherstore.Columns + `, c.excess_rate, c.exponential_mora
		FROM vouchers v
		JOIN meters m ON m.id = v.meter_id
		JOIN tariff_categories c ON c.id = m.category_id
		WHERE v.payment_status = 'PENDING'
		ORDER BY v.due_date ASC, v.id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperr.Dependency("listing pending vouchers", err)
	}
	defer rows.Close()

	var candidates []*mora.Candidate

	for rows.Next() {
		c := &mora.Candidate{}

		v, err := voucherstore.ScanVoucher(rows, &c.ExcessRate, &c.ExponentialMora)
		if err != nil {
			return nil, apperr.Dependency("scanning pending voucher", err)
		}

		c.Voucher = v
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Dependency("iterating pending vouchers", err)
	}

	return candidates, nil
}

func (s *Store) CountOverdue(ctx context.Context, meterID uuid.UUID) (int, error) {
	var n int

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vouchers WHERE meter_id = $1 AND payment_status = 'OVERDUE'`,
		meterID,
	).Scan(&n)
	if err != nil {
		return 0, apperr.Dependency("counting overdue vouchers", err)
	}

	return n, nil
}

// MarkOverdue only touches vouchers still PENDING so a settlement that committed
// after the sweep selected the voucher is never reverted. The fee is added to the
// stored total rather than to the snapshot, and the row's amounts are read back into v.
func (s *Store) MarkOverdue(ctx context.Context, v *voucher.Voucher) error {
	query := `
		UPDATE vouchers
		SET payment_status = $1, accrued_late_fee = $2, total_due = total_due + $2, updated_at = NOW()
		WHERE id = $3 AND payment_status = 'PENDING'
		RETURNING basic_amount, excess_amount, total_due, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, v.Status, v.AccruedLateFee, v.ID).
		Scan(&v.BasicAmount, &v.ExcessAmount, &v.TotalDue, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return mora.ErrNotPending
	}

	if err != nil {
		return apperr.Dependency("marking voucher overdue", err)
	}

	return nil
}

var _ mora.Repository = (*Store)(nil)
