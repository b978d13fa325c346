package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authHandler "github.com/aguacoop/aguacoop/internal/http/auth"
	authmw "github.com/aguacoop/aguacoop/internal/http/middleware"
	"github.com/aguacoop/aguacoop/internal/http/mora"
	"github.com/aguacoop/aguacoop/internal/http/payment"
	"github.com/aguacoop/aguacoop/internal/http/reading"
	"github.com/aguacoop/aguacoop/internal/http/report"
	"github.com/aguacoop/aguacoop/internal/http/tariff"
	"github.com/aguacoop/aguacoop/internal/http/voucher"
)

type Options struct {
	// FrontendOrigin is the origin allowed to call the API with credentials.
	FrontendOrigin string
	Timeout        time.Duration
	// ReceiptsDir is served under ReceiptsURL.
	ReceiptsDir string
	ReceiptsURL string
}

type Handlers struct {
	Auth     *authHandler.Handler
	Tariffs  *tariff.Handler
	Readings *reading.Handler
	Vouchers *voucher.Handler
	Payments *payment.Handler
	Reports  *report.Handler
	Mora     *mora.Handler
}

func New(opts Options, tokens authmw.TokenValidator, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", h.Auth.Routes)

		r.Group(func(r chi.Router) {
			r.Use(authmw.Authenticate(tokens))

			r.Route("/tariffs", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Tariffs.Routes(r)
			})

			r.Route("/readings", h.Readings.Routes)
			r.Route("/vouchers", h.Vouchers.Routes)
			r.Route("/payments", h.Payments.Routes)

			r.Route("/reports/collections", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Reports.Routes(r)
			})

			r.Route("/mora", h.Mora.Routes)
		})
	})

	if opts.ReceiptsDir != "" {
		router.Group(func(r chi.Router) {
			r.Use(authmw.Authenticate(tokens))
			r.Handle(opts.ReceiptsURL+"/*",
				http.StripPrefix(opts.ReceiptsURL, http.FileServer(http.Dir(opts.ReceiptsDir))))
		})
	}

	return router
}
