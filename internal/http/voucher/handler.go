package voucher

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/http/respond"
	"github.com/aguacoop/aguacoop/internal/voucher"
)

type Handler struct {
	svc *voucher.Service
	now func() time.Time
}

func NewHandler(svc *voucher.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/unpaid", h.listUnpaid)
	r.Get("/{id}", h.get)
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
	PastDue        bool            `json:"past_due"`
	PaymentID      *uuid.UUID      `json:"payment_id,omitempty"`
}

type unpaidResponse struct {
	voucherResponse
	MemberName string `json:"member_name"`
	Address    string `json:"address"`
}

type unpaidListResponse struct {
	Vouchers []unpaidResponse `json:"vouchers"`
	Total    decimal.Decimal  `json:"total"`
}

func (h *Handler) toResponse(v *voucher.Voucher) voucherResponse {
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
		PastDue:        v.Status != voucher.StatusPaid && v.IsPastDue(h.now()),
		PaymentID:      v.PaymentID,
	}
}

func (h *Handler) listUnpaid(w http.ResponseWriter, r *http.Request) {
	filter := voucher.UnpaidFilter{MemberName: strings.TrimSpace(r.URL.Query().Get("member"))}

	if s := r.URL.Query().Get("meter_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respond.Error(w, r, apperr.Validation("invalid meter_id"))
			return
		}

		filter.MeterID = new(id)
	}

	unpaid, err := h.svc.ListUnpaid(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := unpaidListResponse{
		Vouchers: make([]unpaidResponse, 0, len(unpaid)),
		Total:    decimal.Zero,
	}

	for _, u := range unpaid {
		resp.Vouchers = append(resp.Vouchers, unpaidResponse{
			voucherResponse: h.toResponse(u.Voucher),
			MemberName:      u.MemberName,
			Address:         u.Address,
		})
		resp.Total = resp.Total.Add(u.Voucher.TotalDue)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, apperr.Validation("invalid id"))
		return
	}

	v, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.toResponse(v))
}
