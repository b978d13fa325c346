package report

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/http/respond"
	"github.com/aguacoop/aguacoop/internal/report"
)

type Handler struct {
	svc *report.Service
	now func() time.Time
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

type collectionsRequest struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to" validate:"required,datetime=2006-01-02"`
}

// bounds returns the half-open range [from, to+1day).
func (req collectionsRequest) bounds() (time.Time, time.Time) {
	from, _ := time.Parse(time.DateOnly, req.From)
	to, _ := time.Parse(time.DateOnly, req.To)

	return from, to.AddDate(0, 0, 1)
}

type paymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	PaidAt     time.Time       `json:"paid_at"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Vouchers   int             `json:"vouchers"`
	Receipt    string          `json:"receipt,omitempty"`
}

type metadataResponse struct {
	Payments []paymentResponse `json:"payments"`
	Total    decimal.Decimal   `json:"total"`
	Summary  string            `json:"summary"`
}

// collect renders the report into a temporary directory the caller must remove.
func (h *Handler) collect(r *http.Request) (string, []report.Item, error) {
	var req collectionsRequest
	if err := respond.Decode(r, &req); err != nil {
		return "", nil, err
	}

	from, to := req.bounds()

	tmpDir, err := os.MkdirTemp("", "aguacoop-report-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp dir: %w", err)
	}

	items, err := h.svc.Collections(r.Context(), from, to, tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		return "", nil, err
	}

	return tmpDir, items, nil
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	tmpDir, items, err := h.collect(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	resp := metadataResponse{
		Payments: make([]paymentResponse, 0, len(items)),
		Total:    decimal.Zero,
		Summary:  h.svc.Summary(items),
	}

	for _, item := range items {
		p := item.Payment

		pr := paymentResponse{
			ID:         p.ID,
			PaidAt:     p.PaidAt,
			AmountPaid: p.AmountPaid,
			Vouchers:   len(p.Lines),
		}

		if item.FilePath != "" {
			pr.Receipt = filepath.Base(item.FilePath)
		}

		resp.Payments = append(resp.Payments, pr)
		resp.Total = resp.Total.Add(p.AmountPaid)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	tmpDir, items, err := h.collect(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	summary := h.svc.Summary(items)
	if err := os.WriteFile(filepath.Join(tmpDir, "summary.txt"), []byte(summary), 0o644); err != nil {
		respond.Error(w, r, apperr.Dependency("writing summary", err))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"collections_%s.zip\"", h.now().Format("20060102")))

	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	err = filepath.Walk(tmpDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		relPath, _ := filepath.Rel(tmpDir, path)

		zf, err := zipWriter.Create(relPath)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(zf, f)

		return err
	})
	if err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}
