package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/reading"
	"github.com/aguacoop/aguacoop/internal/voucher"
	voucherstore "github.com/aguacoop/aguacoop/internal/voucher/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanReading expects the columns of selectReadingColumns, followed by extra destinations.
func scanReading(s voucherstore.Scanner, extra ...any) (*reading.Reading, error) {
	var r reading.Reading

	var status string

	var note sql.NullString

	dest := []any{
		&r.ID, &r.MeterID, &r.Period, &r.PriorValue, &r.CurrentValue, &r.Consumption,
		&note, &status, &r.OperatorID, &r.ReadAt,
	}

	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	r.Status = reading.Status(status)
	r.Note = note.String

	return &r, nil
}

const selectReadingColumns = `
	r.id, r.meter_id, r.period, r.prior_value, r.current_value, r.consumption,
	r.note, r.status, r.operator_id, r.read_at
`

func (s *Store) GetReading(ctx context.Context, id uuid.UUID) (*reading.Reading, error) {
	query := `SELECT ` + selectReadingColumns + ` FROM readings r WHERE r.id = $1`

	r, err := scanReading(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reading.ErrNotFound
		}

		return nil, apperr.Dependency("getting reading", err)
	}

	return r, nil
}

func (s *Store) FindForPeriod(ctx context.Context, meterID uuid.UUID, period time.Time) (*reading.Reading, error) {
	query := `SELECT ` + selectReadingColumns + ` FROM readings r WHERE r.meter_id = $1 AND r.period = $2`

	r, err := scanReading(s.db.QueryRowContext(ctx, query, meterID, period))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reading.ErrNotFound
		}

		return nil, apperr.Dependency("finding reading", err)
	}

	return r, nil
}

func (s *Store) GetMeter(ctx context.Context, id uuid.UUID) (*reading.Meter, error) {
	query := `
		SELECT id, member_name, address, category_id, status, created_at
		FROM meters
		WHERE id = $1
	`

	var m reading.Meter

	var status string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.MemberName, &m.Address, &m.CategoryID, &status, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reading.ErrMeterNotFound
		}

		return nil, apperr.Dependency("getting meter", err)
	}

	m.Status = reading.MeterStatus(status)

	return &m, nil
}

func (s *Store) ListRolloverCandidates(ctx context.Context, period time.Time) ([]reading.RolloverCandidate, error) {
	query := `
		SELECT m.id, last.current_value
		FROM meters m
		LEFT JOIN LATERAL (
			SELECT r.current_value
			FROM readings r
			WHERE r.meter_id = m.id AND r.status = 'REGISTERED'
			ORDER BY r.period DESC
			LIMIT 1
		) last ON TRUE
		WHERE m.status = 'ACTIVE'
			AND NOT EXISTS (
				SELECT 1 FROM readings cur WHERE cur.meter_id = m.id AND cur.period = $1
			)
		ORDER BY m.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, period)
	if err != nil {
		return nil, apperr.Dependency("listing rollover candidates", err)
	}
	defer rows.Close()

	var candidates []reading.RolloverCandidate

	for rows.Next() {
		var c reading.RolloverCandidate

		var last decimal.NullDecimal

		if err := rows.Scan(&c.MeterID, &last); err != nil {
			return nil, apperr.Dependency("scanning rollover candidate", err)
		}

		if last.Valid {
			c.LastRegistered = &last.Decimal
		}

		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Dependency("iterating rollover candidates", err)
	}

	return candidates, nil
}

// CreatePending inserts the readings in one transaction. Meters that gained a reading
// for the period concurrently are skipped by the (meter_id, period) constraint.
func (s *Store) CreatePending(ctx context.Context, readings []*reading.Reading) (int, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperr.Dependency("beginning rollover", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO readings (meter_id, period, prior_value, current_value, consumption, status, read_at)
		VALUES ($1, $2, $3, 0, 0, $4, $5)
		ON CONFLICT (meter_id, period) DO NOTHING
		RETURNING id
	`

	created := 0

	for _, r := range readings {
		err := dbTx.QueryRowContext(ctx, query, r.MeterID, r.Period, r.PriorValue, r.Status, r.ReadAt).Scan(&r.ID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}

		if err != nil {
			return 0, apperr.Dependency("creating pending reading", err)
		}

		created++
	}

	if err := dbTx.Commit(); err != nil {
		return 0, apperr.Dependency("committing rollover", err)
	}

	return created, nil
}

func (s *Store) ListForEntry(ctx context.Context, period time.Time) ([]*reading.EntryRow, error) {
	query := `SELECT ` + selectReadingColumns + `, m.member_name, m.address, c.name
		FROM readings r
		JOIN meters m ON m.id = r.meter_id
		JOIN tariff_categories c ON c.id = m.category_id
		WHERE r.period = $1 AND m.status = 'ACTIVE'
		ORDER BY m.member_name ASC`

	rows, err := s.db.QueryContext(ctx, query, period)
	if err != nil {
		return nil, apperr.Dependency("listing readings for entry", err)
	}
	defer rows.Close()

	var entries []*reading.EntryRow

	for rows.Next() {
		e := &reading.EntryRow{}

		r, err := scanReading(rows, &e.MemberName, &e.Address, &e.CategoryName)
		if err != nil {
			return nil, apperr.Dependency("scanning entry row", err)
		}

		e.Reading = r
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Dependency("iterating entry rows", err)
	}

	return entries, nil
}

func (s *Store) History(ctx context.Context, filter reading.HistoryFilter) ([]*reading.HistoryEntry, error) {
	query := `SELECT ` + selectReadingColumns + `, m.member_name, m.address, o.full_name, v.id
		FROM readings r
		JOIN meters m ON m.id = r.meter_id
		LEFT JOIN operators o ON o.id = r.operator_id
		LEFT JOIN vouchers v ON v.reading_id = r.id
		WHERE r.status = 'REGISTERED'`

	var args []any

	argIdx := 1

	if filter.MeterID != nil {
		query += fmt.Sprintf(" AND r.meter_id = $%d", argIdx)

		args = append(args, *filter.MeterID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND r.period >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND r.period <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY r.period DESC, m.member_name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Dependency("listing reading history", err)
	}
	defer rows.Close()

	var (
		entries    []*reading.HistoryEntry
		voucherIDs = map[uuid.UUID]*reading.HistoryEntry{}
	)

	for rows.Next() {
		e := &reading.HistoryEntry{}

		var operatorName sql.NullString

		var voucherID *uuid.UUID

		r, err := scanReading(rows, &e.MemberName, &e.Address, &operatorName, &voucherID)
		if err != nil {
			return nil, apperr.Dependency("scanning history entry", err)
		}

		e.Reading = r
		e.OperatorName = operatorName.String

		if voucherID != nil {
			voucherIDs[*voucherID] = e
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Dependency("iterating history", err)
	}

	if err := s.attachVouchers(ctx, voucherIDs); err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *Store) attachVouchers(ctx context.Context, byID map[uuid.UUID]*reading.HistoryEntry) error {
	if len(byID) == 0 {
		return nil
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id.String())
	}

	query := `SELECT ` + voucherstore.Columns + ` FROM vouchers v WHERE v.id = ANY($1::uuid[])`

	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return apperr.Dependency("loading history vouchers", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := voucherstore.ScanVoucher(rows)
		if err != nil {
			return apperr.Dependency("scanning history voucher", err)
		}

		if e, ok := byID[v.ID]; ok {
			e.Voucher = v
		}
	}

	if err := rows.Err(); err != nil {
		return apperr.Dependency("iterating history vouchers", err)
	}

	return nil
}

func (s *Store) Consumption(ctx context.Context, meterID uuid.UUID) ([]*reading.ConsumptionEntry, error) {
	query := `
		SELECT r.id, r.period, r.consumption, v.payment_status
		FROM readings r
		JOIN vouchers v ON v.reading_id = r.id
		WHERE r.meter_id = $1 AND r.status = 'REGISTERED'
		ORDER BY r.period DESC
	`

	rows, err := s.db.QueryContext(ctx, query, meterID)
	if err != nil {
		return nil, apperr.Dependency("listing consumption", err)
	}
	defer rows.Close()

	var entries []*reading.ConsumptionEntry

	for rows.Next() {
		var (
			e      reading.ConsumptionEntry
			status string
		)

		if err := rows.Scan(&e.ReadingID, &e.Period, &e.Consumption, &status); err != nil {
			return nil, apperr.Dependency("scanning consumption", err)
		}

		e.PaymentStatus = voucher.Status(status)
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Dependency("iterating consumption", err)
	}

	return entries, nil
}

type registrationTx struct {
	tx *sql.Tx
}

func (s *Store) BeginRegistration(ctx context.Context) (reading.RegistrationTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Dependency("beginning registration", err)
	}

	return &registrationTx{tx: dbTx}, nil
}

func (rtx *registrationTx) Commit() error   { return rtx.tx.Commit() }
func (rtx *registrationTx) Rollback() error { return rtx.tx.Rollback() }

// VoucherForReading locks the reading row first so concurrent registrations of the
// same reading serialize even before a voucher exists.
func (rtx *registrationTx) VoucherForReading(ctx context.Context, readingID uuid.UUID) (*voucher.Voucher, error) {
	if _, err := rtx.tx.ExecContext(ctx, `SELECT id FROM readings WHERE id = $1 FOR UPDATE`, readingID); err != nil {
		return nil, apperr.Dependency("locking reading", err)
	}

	query := `SELECT ` + voucherstore.Columns + ` FROM vouchers v WHERE v.reading_id = $1 FOR UPDATE`

	v, err := voucherstore.ScanVoucher(rtx.tx.QueryRowContext(ctx, query, readingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, apperr.Dependency("getting voucher for reading", err)
	}

	return v, nil
}

func (rtx *registrationTx) UpdateReading(ctx context.Context, r *reading.Reading) error {
	query := `
		UPDATE readings
		SET prior_value = $1, current_value = $2, consumption = $3, note = $4,
			status = $5, operator_id = $6, read_at = $7
		WHERE id = $8
	`

	_, err := rtx.tx.ExecContext(ctx, query,
		r.PriorValue,
		r.CurrentValue,
		r.Consumption,
		r.Note,
		r.Status,
		r.OperatorID,
		r.ReadAt,
		r.ID,
	)
	if err != nil {
		return apperr.Dependency("updating reading", err)
	}

	return nil
}

func (rtx *registrationTx) CountPendingVouchers(ctx context.Context, meterID, exclude uuid.UUID) (int, error) {
	var n int

	err := rtx.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vouchers WHERE meter_id = $1 AND payment_status = 'PENDING' AND id <> $2`,
		meterID, exclude,
	).Scan(&n)
	if err != nil {
		return 0, apperr.Dependency("counting pending vouchers", err)
	}

	return n, nil
}

func (rtx *registrationTx) CreateVoucher(ctx context.Context, v *voucher.Voucher) error {
	query := `
		INSERT INTO vouchers (reading_id, meter_id, operator_id, basic_amount, excess_amount,
			accrued_late_fee, total_due, payment_status, issue_date, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`

	err := rtx.tx.QueryRowContext(ctx, query,
		v.ReadingID,
		v.MeterID,
		v.OperatorID,
		v.BasicAmount,
		v.ExcessAmount,
		v.AccruedLateFee,
		v.TotalDue,
		v.Status,
		v.IssueDate,
		v.DueDate,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return apperr.Dependency("creating voucher", err)
	}

	return nil
}

func (rtx *registrationTx) UpdateVoucher(ctx context.Context, v *voucher.Voucher) error {
	query := `
		UPDATE vouchers
		SET operator_id = $1, basic_amount = $2, excess_amount = $3, accrued_late_fee = $4,
			total_due = $5, payment_status = $6, issue_date = $7, due_date = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`

	err := rtx.tx.QueryRowContext(ctx, query,
		v.OperatorID,
		v.BasicAmount,
		v.ExcessAmount,
		v.AccruedLateFee,
		v.TotalDue,
		v.Status,
		v.IssueDate,
		v.DueDate,
		v.ID,
	).Scan(&v.UpdatedAt)
	if err != nil {
		return apperr.Dependency("updating voucher", err)
	}

	return nil
}

var _ reading.Repository = (*Store)(nil)
