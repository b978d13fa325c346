package payment

import (
	"net/http"
	"path"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/auth"
	"github.com/aguacoop/aguacoop/internal/http/middleware"
	"github.com/aguacoop/aguacoop/internal/http/respond"
	"github.com/aguacoop/aguacoop/internal/payment"
	"github.com/aguacoop/aguacoop/internal/voucher"
)

type Handler struct {
	svc *payment.Service
	// receiptURL is the public prefix receipt files are served under.
	receiptURL string
}

func NewHandler(svc *payment.Service, receiptURL string) *Handler {
	return &Handler{svc: svc, receiptURL: receiptURL}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleCashier))
		r.With(chimw.AllowContentType("application/json")).Post("/", h.settle)
		r.Post("/{id}/receipt", h.reissueReceipt)
	})
}

type settleRequest struct {
	VoucherIDs []uuid.UUID `json:"voucher_ids" validate:"required,min=1"`
}

type lineResponse struct {
	VoucherID      uuid.UUID       `json:"voucher_id"`
	MeterID        uuid.UUID       `json:"meter_id"`
	MemberName     string          `json:"member_name"`
	Address        string          `json:"address"`
	BasicAmount    decimal.Decimal `json:"basic_amount"`
	ExcessAmount   decimal.Decimal `json:"excess_amount"`
	AccruedLateFee decimal.Decimal `json:"accrued_late_fee"`
	TotalDue       decimal.Decimal `json:"total_due"`
	Status         voucher.Status  `json:"payment_status"`
}

type paymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	OperatorID uuid.UUID       `json:"operator_id"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	PaidAt     time.Time       `json:"paid_at"`
	ReceiptURL string          `json:"receipt_url,omitempty"`
	Lines      []lineResponse  `json:"vouchers"`
	Skipped    []uuid.UUID     `json:"skipped,omitempty"`
}

func (h *Handler) toResponse(p *payment.Payment) paymentResponse {
	resp := paymentResponse{
		ID:         p.ID,
		OperatorID: p.OperatorID,
		AmountPaid: p.AmountPaid,
		PaidAt:     p.PaidAt,
		Lines:      make([]lineResponse, 0, len(p.Lines)),
		Skipped:    p.Skipped,
	}

	if p.HasReceipt() {
		resp.ReceiptURL = path.Join(h.receiptURL, filepath.Base(p.ReceiptPath))
	}

	for _, l := range p.Lines {
		v := l.Voucher
		resp.Lines = append(resp.Lines, lineResponse{
			VoucherID:      v.ID,
			MeterID:        v.MeterID,
			MemberName:     l.MemberName,
			Address:        l.Address,
			BasicAmount:    v.BasicAmount,
			ExcessAmount:   v.ExcessAmount,
			AccruedLateFee: v.AccruedLateFee,
			TotalDue:       v.TotalDue,
			Status:         v.Status,
		})
	}

	return resp
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Settle(r.Context(), auth.OperatorID(r.Context()), req.VoucherIDs)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, h.toResponse(p))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, apperr.Validation("invalid id"))
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.toResponse(p))
}

func (h *Handler) reissueReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, apperr.Validation("invalid id"))
		return
	}

	p, err := h.svc.ReissueReceipt(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.toResponse(p))
}

// list returns payments between from and to (inclusive dates, YYYY-MM-DD).
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	from, to, err := DateRange(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	payments, err := h.svc.List(r.Context(), from, to)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, h.toResponse(p))
	}

	respond.JSON(w, http.StatusOK, resp)
}

// DateRange reads the from/to query dates and turns them into the half-open
// interval [from, to+1day).
func DateRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()

	from, err := time.Parse(time.DateOnly, q.Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("from must be YYYY-MM-DD")
	}

	to, err := time.Parse(time.DateOnly, q.Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("to must be YYYY-MM-DD")
	}

	return from, to.AddDate(0, 0, 1), nil
}
