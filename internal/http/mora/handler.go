package mora

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/auth"
	"github.com/aguacoop/aguacoop/internal/http/middleware"
	"github.com/aguacoop/aguacoop/internal/http/respond"
	"github.com/aguacoop/aguacoop/internal/mora"
)

// Trigger runs a named background job to completion.
type Trigger interface {
	Trigger(ctx context.Context, name string) error
}

// Reporter exposes the outcome of the latest sweep.
type Reporter interface {
	LastReport() mora.Report
}

type Handler struct {
	trigger Trigger
	job     Reporter
}

func NewHandler(trigger Trigger, job Reporter) *Handler {
	return &Handler{trigger: trigger, job: job}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.last)
	r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/run", h.run)
}

type reportResponse struct {
	Scanned    int        `json:"scanned"`
	Overdue    int        `json:"overdue"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func toResponse(rep mora.Report) reportResponse {
	resp := reportResponse{
		Scanned: rep.Scanned,
		Overdue: rep.Overdue,
		Skipped: rep.Skipped,
		Failed:  rep.Failed,
	}

	if !rep.FinishedAt.IsZero() {
		resp.FinishedAt = new(rep.FinishedAt)
	}

	return resp
}

func (h *Handler) last(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, toResponse(h.job.LastReport()))
}

// run sweeps now, waiting for a scheduled sweep in progress to finish first.
func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	if err := h.trigger.Trigger(r.Context(), mora.JobName); err != nil {
		respond.Error(w, r, apperr.Dependency("mora sweep failed", err))
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(h.job.LastReport()))
}
