package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/reading"
)

// Registrar is the part of the reading service a bulk import drives.
type Registrar interface {
	CurrentReading(ctx context.Context, meterID uuid.UUID) (*reading.Reading, error)
	Register(ctx context.Context, params reading.RegisterParams) (*reading.Registration, error)
}

// Outcome reports what happened to one sheet line.
type Outcome struct {
	Line      int
	MeterID   uuid.UUID
	VoucherID uuid.UUID
	TotalDue  decimal.Decimal
	// Error is the caller-facing reason the line was not registered.
	Error string
}

func (o Outcome) OK() bool {
	return o.Error == ""
}

type Service struct {
	readings Registrar
}

func NewService(readings Registrar) *Service {
	return &Service{readings: readings}
}

// Import parses a sheet and registers every row against its meter's reading of the
// current month. Lines fail independently.
func (s *Service) Import(ctx context.Context, operatorID uuid.UUID, r io.Reader) (*Sheet, []Outcome, error) {
	if operatorID == uuid.Nil {
		return nil, nil, reading.ErrNoOperator
	}

	sheet, err := Parse(r)
	if err != nil {
		return nil, nil, apperr.Validation("%s", err)
	}

	outcomes := make([]Outcome, 0, len(sheet.Rows)+len(sheet.Issues))

	for _, issue := range sheet.Issues {
		outcomes = append(outcomes, Outcome{Line: issue.Line, Error: issue.Reason})
	}

	for _, row := range sheet.Rows {
		outcomes = append(outcomes, s.register(ctx, operatorID, row))
	}

	failed := 0

	for _, o := range outcomes {
		if !o.OK() {
			failed++
		}
	}

	slog.Info("reading sheet imported",
		"profile", sheet.Profile,
		"charset", sheet.Charset,
		"rows", len(outcomes),
		"failed", failed,
	)

	return sheet, outcomes, nil
}

func (s *Service) register(ctx context.Context, operatorID uuid.UUID, row Row) Outcome {
	out := Outcome{Line: row.Line, MeterID: row.MeterID}

	current, err := s.readings.CurrentReading(ctx, row.MeterID)
	if err != nil {
		out.Error = apperr.Message(err)
		return out
	}

	reg, err := s.readings.Register(ctx, reading.RegisterParams{
		ReadingID:    current.ID,
		MeterID:      row.MeterID,
		OperatorID:   operatorID,
		PriorValue:   current.PriorValue,
		CurrentValue: row.CurrentValue,
		Note:         row.Note,
	})
	if err != nil {
		out.Error = apperr.Message(err)

		if apperr.KindOf(err) == "internal" || apperr.KindOf(err) == "dependency" {
			slog.Error("failed to register imported reading", "line", row.Line, "meter_id", row.MeterID, "error", err)
		}

		return out
	}

	out.VoucherID = reg.Voucher.ID
	out.TotalDue = reg.Voucher.TotalDue

	return out
}

// String renders the outcome as a log or console line.
func (o Outcome) String() string {
	if o.OK() {
		return fmt.Sprintf("line %d: meter %s billed %s", o.Line, o.MeterID, o.TotalDue.StringFixed(2))
	}

	return fmt.Sprintf("line %d: %s", o.Line, o.Error)
}
