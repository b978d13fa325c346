package reading

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/auth"
	"github.com/aguacoop/aguacoop/internal/http/middleware"
	"github.com/aguacoop/aguacoop/internal/http/respond"
	"github.com/aguacoop/aguacoop/internal/importer"
	"github.com/aguacoop/aguacoop/internal/reading"
)

// maxSheetSize bounds an uploaded reading sheet.
const maxSheetSize = 10 << 20

type Handler struct {
	svc      *reading.Service
	importer *importer.Service
}

func NewHandler(svc *reading.Service, importSvc *importer.Service) *Handler {
	return &Handler{svc: svc, importer: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/history", h.history)
	r.Get("/{id}", h.get)
	r.Get("/meters/{meterID}/consumption", h.consumption)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleOperator))
		r.Get("/entry", h.entry)
		r.With(chimw.AllowContentType("application/json")).Post("/{id}/register", h.register)
		r.Post("/import", h.importSheet)
	})

	r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/rollover", h.rollover)
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s", name)
	}

	return id, nil
}

func (h *Handler) entry(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListForEntry(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]entryResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, entryResponse{
			Reading:      toReadingResponse(row.Reading),
			MemberName:   row.MemberName,
			Address:      row.Address,
			CategoryName: row.CategoryName,
		})
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	rd, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toReadingResponse(rd))
}

type registerRequest struct {
	MeterID      uuid.UUID        `json:"meter_id" validate:"required"`
	PriorValue   *decimal.Decimal `json:"prior_value" validate:"required"`
	CurrentValue *decimal.Decimal `json:"current_value" validate:"required"`
	Consumption  *decimal.Decimal `json:"consumption,omitempty"`
	Note         string           `json:"note" validate:"max=500"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	reg, err := h.svc.Register(r.Context(), reading.RegisterParams{
		ReadingID:    id,
		MeterID:      req.MeterID,
		OperatorID:   auth.OperatorID(r.Context()),
		PriorValue:   *req.PriorValue,
		CurrentValue: *req.CurrentValue,
		Consumption:  req.Consumption,
		Note:         req.Note,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	status := http.StatusOK
	if reg.Created {
		status = http.StatusCreated
	}

	respond.JSON(w, status, registrationResponse{
		Reading: toReadingResponse(reg.Reading),
		Voucher: toVoucherResponse(reg.Voucher),
		Created: reg.Created,
	})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	var filter reading.HistoryFilter

	q := r.URL.Query()

	if s := q.Get("meter_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respond.Error(w, r, apperr.Validation("invalid meter_id"))
			return
		}

		filter.MeterID = new(id)
	}

	if s := q.Get("start_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			respond.Error(w, r, apperr.Validation("start_date must be YYYY-MM-DD"))
			return
		}

		filter.StartDate = new(t)
	}

	if s := q.Get("end_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			respond.Error(w, r, apperr.Validation("end_date must be YYYY-MM-DD"))
			return
		}

		filter.EndDate = new(t)
	}

	entries, err := h.svc.History(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toHistoryResponse(e))
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) consumption(w http.ResponseWriter, r *http.Request) {
	meterID, err := parseUUIDParam(r, "meterID")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	entries, err := h.svc.Consumption(r.Context(), meterID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]consumptionResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, consumptionResponse{
			ReadingID:     e.ReadingID,
			Period:        e.Period.Format(periodLayout),
			Consumption:   e.Consumption,
			PaymentStatus: e.PaymentStatus,
		})
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) importSheet(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSheetSize); err != nil {
		respond.Error(w, r, apperr.Validation("failed to parse form: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, apperr.Validation("file field is required"))
		return
	}
	defer file.Close()

	sheet, outcomes, err := h.importer.Import(r.Context(), auth.OperatorID(r.Context()), file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toImportResponse(sheet, outcomes))
}

type rolloverResponse struct {
	Created int `json:"created"`
}

func (h *Handler) rollover(w http.ResponseWriter, r *http.Request) {
	created, err := h.svc.EnsureMonthly(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, rolloverResponse{Created: created})
}
