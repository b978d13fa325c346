package reading

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/importer"
	"github.com/aguacoop/aguacoop/internal/reading"
	"github.com/aguacoop/aguacoop/internal/voucher"
)

type readingResponse struct {
	ID           uuid.UUID       `json:"id"`
	MeterID      uuid.UUID       `json:"meter_id"`
	Period       string          `json:"period"`
	PriorValue   decimal.Decimal `json:"prior_value"`
	CurrentValue decimal.Decimal `json:"current_value"`
	Consumption  decimal.Decimal `json:"consumption"`
	Note         string          `json:"note,omitempty"`
	Status       reading.Status  `json:"status"`
	OperatorID   *uuid.UUID      `json:"operator_id,omitempty"`
	ReadAt       time.Time       `json:"read_at"`
}

type voucherResponse struct {
	ID             uuid.UUID       `json:"id"`
	ReadingID      uuid.UUID       `json:"reading_id"`
	MeterID        uuid.UUID       `json:"meter_id"`
	BasicAmount    decimal.Decimal `json:"basic_amount"`
	ExcessAmount   decimal.Decimal `json:"excess_amount"`
	AccruedLateFee decimal.Decimal `json:"accrued_late_fee"`
	TotalDue       decimal.Decimal `json:"total_due"`
	Status         voucher.Status  `json:"payment_status"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        time.Time       `json:"due_date"`
}

type entryResponse struct {
	Reading      readingResponse `json:"reading"`
	MemberName   string          `json:"member_name"`
	Address      string          `json:"address"`
	CategoryName string          `json:"category_name"`
}

type registrationResponse struct {
	Reading readingResponse `json:"reading"`
	Voucher voucherResponse `json:"voucher"`
	Created bool            `json:"created"`
}

type historyResponse struct {
	Reading      readingResponse  `json:"reading"`
	MemberName   string           `json:"member_name"`
	Address      string           `json:"address"`
	OperatorName string           `json:"operator_name,omitempty"`
	Voucher      *voucherResponse `json:"voucher,omitempty"`
}

type consumptionResponse struct {
	ReadingID     uuid.UUID       `json:"reading_id"`
	Period        string          `json:"period"`
	Consumption   decimal.Decimal `json:"consumption"`
	PaymentStatus voucher.Status  `json:"payment_status"`
}

type importOutcomeResponse struct {
	Line      int              `json:"line"`
	MeterID   *uuid.UUID       `json:"meter_id,omitempty"`
	VoucherID *uuid.UUID       `json:"voucher_id,omitempty"`
	TotalDue  *decimal.Decimal `json:"total_due,omitempty"`
	Error     string           `json:"error,omitempty"`
}

type importResponse struct {
	Profile    string                  `json:"profile"`
	Charset    string                  `json:"charset"`
	Registered int                     `json:"registered"`
	Failed     int                     `json:"failed"`
	Outcomes   []importOutcomeResponse `json:"outcomes"`
}

const periodLayout = "2006-01"

func toReadingResponse(r *reading.Reading) readingResponse {
	return readingResponse{
		ID:           r.ID,
		MeterID:      r.MeterID,
		Period:       r.Period.Format(periodLayout),
		PriorValue:   r.PriorValue,
		CurrentValue: r.CurrentValue,
		Consumption:  r.Consumption,
		Note:         r.Note,
		Status:       r.Status,
		OperatorID:   r.OperatorID,
		ReadAt:       r.ReadAt,
	}
}

func toVoucherResponse(v *voucher.Voucher) voucherResponse {
	return voucherResponse{
		ID:             v.ID,
		ReadingID:      v.ReadingID,
		MeterID:        v.MeterID,
		BasicAmount:    v.BasicAmount,
		ExcessAmount:   v.ExcessAmount,
		AccruedLateFee: v.AccruedLateFee,
		TotalDue:       v.TotalDue,
		Status:         v.Status,
		IssueDate:      v.IssueDate,
		DueDate:        v.DueDate,
	}
}

func toHistoryResponse(e *reading.HistoryEntry) historyResponse {
	resp := historyResponse{
		Reading:      toReadingResponse(e.Reading),
		MemberName:   e.MemberName,
		Address:      e.Address,
		OperatorName: e.OperatorName,
	}

	if e.Voucher != nil {
		v := toVoucherResponse(e.Voucher)
		resp.Voucher = &v
	}

	return resp
}

func toImportResponse(sheet *importer.Sheet, outcomes []importer.Outcome) importResponse {
	resp := importResponse{
		Profile:  sheet.Profile,
		Charset:  sheet.Charset,
		Outcomes: make([]importOutcomeResponse, 0, len(outcomes)),
	}

	for _, o := range outcomes {
		out := importOutcomeResponse{Line: o.Line}
		if o.MeterID != uuid.Nil {
			out.MeterID = new(o.MeterID)
		}

		if o.OK() {
			resp.Registered++
			out.VoucherID = new(o.VoucherID)
			out.TotalDue = new(o.TotalDue)
		} else {
			resp.Failed++
			out.Error = o.Error
		}

		resp.Outcomes = append(resp.Outcomes, out)
	}

	return resp
}
