package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/voucher"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Scanner is satisfied by both *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Columns is the voucher column list expected by ScanVoucher, qualified with alias v.
const Columns = `
	v.id, v.reading_id, v.meter_id, v.operator_id, v.basic_amount, v.excess_amount,
	v.accrued_late_fee, v.total_due, v.payment_status, v.issue_date, v.due_date,
	v.payment_id, v.created_at, v.updated_at
`

// ScanVoucher reads the columns listed in Columns, followed by extra destinations.
// Other stores reuse it for queries that join vouchers.
func ScanVoucher(s Scanner, extra ...any) (*voucher.Voucher, error) {
	var v voucher.Voucher

	var status string

	dest := []any{
		&v.ID, &v.ReadingID, &v.MeterID, &v.OperatorID, &v.BasicAmount, &v.ExcessAmount,
		&v.AccruedLateFee, &v.TotalDue, &status, &v.IssueDate, &v.DueDate,
		&v.PaymentID, &v.CreatedAt, &v.UpdatedAt,
	}

	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	v.Status = voucher.Status(status)

	return &v, nil
}

func (s *Store) GetVoucher(ctx context.Context, id uuid.UUID) (*voucher.Voucher, error) {
	query := `SELECT ` + Columns + ` FROM vouchers v WHERE v.id = $1`

	v, err := ScanVoucher(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, voucher.ErrNotFound
		}

		return nil, apperr.Dependency("getting voucher", err)
	}

	return v, nil
}

func (s *Store) ListUnpaid(ctx context.Context, filter voucher.UnpaidFilter) ([]*voucher.Unpaid, error) {
	query := `SELECT ` + Columns + `, m.member_name, m.address
		FROM vouchers v
		JOIN meters m ON m.id = v.meter_id
		WHERE v.payment_status IN ('PENDING', 'OVERDUE')`

	var args []any

	argIdx := 1

	if filter.MeterID != nil {
		query += fmt.Sprintf(" AND v.meter_id = $%d", argIdx)

		args = append(args, *filter.MeterID)
		argIdx++
	}

	if filter.MemberName != "" {
		query += fmt.Sprintf(" AND m.member_name ILIKE '%%' || $%d || '%%'", argIdx)

		args = append(args, filter.MemberName)
		argIdx++
	}

	query += " ORDER BY v.issue_date ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Dependency("listing unpaid vouchers", err)
	}
	defer rows.Close()

	var unpaid []*voucher.Unpaid

	for rows.Next() {
		u := &voucher.Unpaid{}

		v, err := ScanVoucher(rows, &u.MemberName, &u.Address)
		if err != nil {
			return nil, apperr.Dependency("scanning voucher", err)
		}

		u.Voucher = v
		unpaid = append(unpaid, u)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Dependency("iterating unpaid vouchers", err)
	}

	return unpaid, nil
}

var _ voucher.Repository = (*Store)(nil)
