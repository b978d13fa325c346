package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/payment"
	voucherstore "github.com/aguacoop/aguacoop/internal/voucher/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectPaymentColumns = `p.id, p.operator_id, p.amount_paid, p.paid_at, p.receipt_path, p.created_at`

func scanPayment(s voucherstore.Scanner) (*payment.Payment, error) {
	var p payment.Payment

	var receipt sql.NullString

	if err := s.Scan(&p.ID, &p.OperatorID, &p.AmountPaid, &p.PaidAt, &receipt, &p.CreatedAt); err != nil {
		return nil, err
	}

	p.ReceiptPath = receipt.String

	return &p, nil
}

const selectLineQuery = `SELECT ` + voucherstore.Columns + `, m.member_name, m.address
	FROM vouchers v
	JOIN meters m ON m.id = v.meter_id`

func scanLines(rows *sql.Rows) ([]*payment.Line, error) {
	var lines []*payment.Line

	for rows.Next() {
		l := &payment.Line{}

		v, err := voucherstore.ScanVoucher(rows, &l.MemberName, &l.Address)
		if err != nil {
			return nil, err
		}

		l.Voucher = v
		lines = append(lines, l)
	}

	return lines, rows.Err()
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + ` FROM payments p WHERE p.id = $1`

	p, err := scanPayment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrNotFound
		}

		return nil, apperr.Dependency("getting payment", err)
	}

	rows, err := s.db.QueryContext(ctx, selectLineQuery+` WHERE v.payment_id = $1 ORDER BY v.issue_date ASC`, id)
	if err != nil {
		return nil, apperr.Dependency("listing payment vouchers", err)
	}
	defer rows.Close()

	p.Lines, err = scanLines(rows)
	if err != nil {
		return nil, apperr.Dependency("scanning payment vouchers", err)
	}

	return p, nil
}

func (s *Store) AttachReceipt(ctx context.Context, paymentID uuid.UUID, path string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE payments SET receipt_path = $1 WHERE id = $2`, path, paymentID)
	if err != nil {
		return apperr.Dependency("attaching receipt", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Dependency("attaching receipt", err)
	}

	if n == 0 {
		return payment.ErrNotFound
	}

	return nil
}

func (s *Store) ListPayments(ctx context.Context, from, to time.Time) ([]*payment.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + `
		FROM payments p
		WHERE p.paid_at >= $1 AND p.paid_at < $2
		ORDER BY p.paid_at ASC`

	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, apperr.Dependency("listing payments", err)
	}
	defer rows.Close()

	var (
		payments []*payment.Payment
		byID     = map[uuid.UUID]*payment.Payment{}
	)

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, apperr.Dependency("scanning payment", err)
		}

		payments = append(payments, p)
		byID[p.ID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Dependency("iterating payments", err)
	}

	if len(payments) == 0 {
		return nil, nil
	}

	lineRows, err := s.db.QueryContext(ctx, selectLineQuery+`
		JOIN payments p ON p.id = v.payment_id
		WHERE p.paid_at >= $1 AND p.paid_at < $2
		ORDER BY v.issue_date ASC`, from, to)
	if err != nil {
		return nil, apperr.Dependency("listing payment vouchers", err)
	}
	defer lineRows.Close()

	lines, err := scanLines(lineRows)
	if err != nil {
		return nil, apperr.Dependency("scanning payment vouchers", err)
	}

	for _, l := range lines {
		if l.Voucher.PaymentID == nil {
			continue
		}

		if p, ok := byID[*l.Voucher.PaymentID]; ok {
			p.Lines = append(p.Lines, l)
		}
	}

	return payments, nil
}

type settlementTx struct {
	tx *sql.Tx
}

func (s *Store) BeginSettlement(ctx context.Context) (payment.SettlementTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Dependency("beginning settlement", err)
	}

	return &settlementTx{tx: dbTx}, nil
}

func (stx *settlementTx) Commit() error   { return stx.tx.Commit() }
func (stx *settlementTx) Rollback() error { return stx.tx.Rollback() }

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}

	return out
}

// The id lists travel as text[] and are cast on the parameter side so the
// comparison stays on the primary key index.
const (
	settleableQuery = selectLineQuery + `
		WHERE v.id = ANY($1::uuid[]) AND v.payment_status IN ('PENDING', 'OVERDUE')
		ORDER BY v.issue_date ASC
		FOR UPDATE OF v`

	markPaidQuery = `
		UPDATE vouchers
		SET payment_status = 'PAID', payment_id = $1, updated_at = NOW()
		WHERE id = ANY($2::uuid[])
	`
)

func (stx *settlementTx) ListSettleable(ctx context.Context, ids []uuid.UUID) ([]*payment.Line, error) {
	rows, err := stx.tx.QueryContext(ctx, settleableQuery, uuidStrings(ids))
	if err != nil {
		return nil, apperr.Dependency("listing settleable vouchers", err)
	}
	defer rows.Close()

	lines, err := scanLines(rows)
	if err != nil {
		return nil, apperr.Dependency("scanning settleable vouchers", err)
	}

	return lines, nil
}

func (stx *settlementTx) CreatePayment(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (operator_id, amount_paid, paid_at, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := stx.tx.QueryRowContext(ctx, query, p.OperatorID, p.AmountPaid, p.PaidAt).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return apperr.Dependency("creating payment", err)
	}

	return nil
}

func (stx *settlementTx) MarkPaid(ctx context.Context, paymentID uuid.UUID, voucherIDs []uuid.UUID) error {
	if _, err := stx.tx.ExecContext(ctx, markPaidQuery, paymentID, uuidStrings(voucherIDs)); err != nil {
		return apperr.Dependency("marking vouchers paid", err)
	}

	return nil
}

var _ payment.Repository = (*Store)(nil)
