package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/aguacoop/aguacoop/cmd/console/internal/view"
	"github.com/aguacoop/aguacoop/internal/auth"
	authStore "github.com/aguacoop/aguacoop/internal/auth/store"
	"github.com/aguacoop/aguacoop/internal/config"
	"github.com/aguacoop/aguacoop/internal/database"
	"github.com/aguacoop/aguacoop/internal/importer"
	"github.com/aguacoop/aguacoop/internal/logging"
	"github.com/aguacoop/aguacoop/internal/mora"
	moraStore "github.com/aguacoop/aguacoop/internal/mora/store"
	"github.com/aguacoop/aguacoop/internal/payment"
	paymentStore "github.com/aguacoop/aguacoop/internal/payment/store"
	"github.com/aguacoop/aguacoop/internal/reading"
	readingStore "github.com/aguacoop/aguacoop/internal/reading/store"
	"github.com/aguacoop/aguacoop/internal/receipt"
	"github.com/aguacoop/aguacoop/internal/report"
	"github.com/aguacoop/aguacoop/internal/tariff"
	tariffStore "github.com/aguacoop/aguacoop/internal/tariff/store"
	"github.com/aguacoop/aguacoop/internal/voucher"
	voucherStore "github.com/aguacoop/aguacoop/internal/voucher/store"
)

const logFile = "console.log"

type services struct {
	auth     *auth.Service
	readings *reading.Service
	importer *importer.Service
	vouchers *voucher.Service
	payments *payment.Service
	reports  *report.Service
	mora     *mora.Job
}

type View int

const (
	ViewLogin View = iota
	ViewMenu
	ViewCapture
	ViewImport
	ViewSettle
	ViewMora
	ViewReport
)

type menuEntry struct {
	key   string
	label string
	view  View
	roles []auth.Role
}

var menu = []menuEntry{
	{key: "1", label: "Capture readings", view: ViewCapture, roles: []auth.Role{auth.RoleAdmin, auth.RoleOperator}},
	{key: "2", label: "Import reading sheet", view: ViewImport, roles: []auth.Role{auth.RoleAdmin, auth.RoleOperator}},
	{key: "3", label: "Collect payments", view: ViewSettle, roles: []auth.Role{auth.RoleAdmin, auth.RoleCashier}},
	{key: "4", label: "Collections report", view: ViewReport, roles: []auth.Role{auth.RoleAdmin, auth.RoleCashier}},
	{key: "5", label: "Run late-fee sweep", view: ViewMora, roles: []auth.Role{auth.RoleAdmin}},
	{key: "6", label: "Open month (rollover)", view: ViewMenu, roles: []auth.Role{auth.RoleAdmin}},
}

type model struct {
	svc      services
	operator *auth.Operator

	currentView View
	status      string
	size        tea.WindowSizeMsg

	loginView   view.LoginModel
	captureView view.CaptureModel
	importView  view.ImportModel
	settleView  view.SettleModel
	moraView    view.MoraModel
	reportView  view.ReportModel
}

type rolloverMsg struct {
	created int
	err     error
}

func newModel(svc services) model {
	return model{
		svc:         svc,
		currentView: ViewLogin,
		loginView:   view.NewLoginModel(svc.auth),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case tea.WindowSizeMsg:
		m.size = msg
	case view.LoggedInMsg:
		m.operator = msg.Operator
		m.currentView = ViewMenu

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	case rolloverMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Rollover failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Rollover created %d pending reading(s).", msg.created)
		}

		return m, nil
	}

	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewCapture:
		var newModel tea.Model
		newModel, cmd = m.captureView.Update(msg)
		m.captureView = newModel.(view.CaptureModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewSettle:
		var newModel tea.Model
		newModel, cmd = m.settleView.Update(msg)
		m.settleView = newModel.(view.SettleModel)
	case ViewMora:
		var newModel tea.Model
		newModel, cmd = m.moraView.Update(msg)
		m.moraView = newModel.(view.MoraModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		return m, tea.Quit
	}

	entry, ok := m.entryFor(msg.String())
	if !ok {
		return m, nil
	}

	m.status = ""
	id := m.operator.ID

	var cmd tea.Cmd

	switch entry.view {
	case ViewCapture:
		m.captureView = view.NewCaptureModel(m.svc.readings, id)
		cmd = m.captureView.Init()
	case ViewImport:
		m.importView = view.NewImportModel(m.svc.importer, id)
		cmd = m.importView.Init()
	case ViewSettle:
		m.settleView = view.NewSettleModel(m.svc.vouchers, m.svc.payments, id)
		cmd = m.settleView.Init()
	case ViewMora:
		m.moraView = view.NewMoraModel(m.svc.mora)
		cmd = m.moraView.Init()
	case ViewReport:
		m.reportView = view.NewReportModel(m.svc.reports)
		cmd = m.reportView.Init()
	case ViewMenu:
		m.status = "Opening month..."
		return m, m.rolloverCmd()
	}

	m.currentView = entry.view

	// Views size themselves from the last known window.
	if m.size.Width > 0 {
		size := m.size
		cmd = tea.Batch(cmd, func() tea.Msg { return size })
	}

	return m, cmd
}

func (m model) entryFor(key string) (menuEntry, bool) {
	for _, e := range menu {
		if e.key == key && slices.Contains(e.roles, m.operator.Role) {
			return e, true
		}
	}

	return menuEntry{}, false
}

func (m model) rolloverCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := view.DbCtx()
		defer cancel()

		n, err := m.svc.readings.EnsureMonthly(ctx)

		return rolloverMsg{created: n, err: err}
	}
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return m.viewMenu()
	case ViewCapture:
		return m.captureView.View()
	case ViewImport:
		return m.importView.View()
	case ViewSettle:
		return m.settleView.View()
	case ViewMora:
		return m.moraView.View()
	case ViewReport:
		return m.reportView.View()
	}

	return "Unknown View"
}

func (m model) viewMenu() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "AguaCoop console (%s, %s)\n\n", m.operator.FullName, m.operator.Role)

	for _, e := range menu {
		if slices.Contains(e.roles, m.operator.Role) {
			fmt.Fprintf(&sb, "%s. %s\n", e.key, e.label)
		}
	}

	sb.WriteString("\nq. Quit")

	if m.status != "" {
		sb.WriteString("\n\n" + m.status)
	}

	return lipgloss.NewStyle().Padding(2).Render(sb.String())
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	f, err := tea.LogToFile(logFile, "")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	logger := logging.New(f, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("console failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := database.New(context.Background(), cfg.ConnectionString(), database.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		PingTimeout:     cfg.DB.PingTimeout,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	readingService := reading.NewService(readingStore.New(db), tariff.NewService(tariffStore.New(db)), reading.WithLogger(logger))
	paymentService := payment.NewService(paymentStore.New(db),
		receipt.NewRenderer(cfg.Receipts.Dir, cfg.Receipts.Issuer), payment.WithLogger(logger))

	svc := services{
		auth:     auth.NewService(authStore.New(db), auth.NewBcryptHasher(cfg.Auth.BcryptCost), tokens),
		readings: readingService,
		importer: importer.NewService(readingService),
		vouchers: voucher.NewService(voucherStore.New(db)),
		payments: paymentService,
		reports:  report.NewService(paymentService, logger),
		mora:     mora.NewJob(moraStore.New(db), mora.WithLogger(logger)),
	}

	p := tea.NewProgram(newModel(svc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running console: %w", err)
	}

	return nil
}
