package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/aguacoop/aguacoop/internal/report"
)

const (
	reportTimeout    = 5 * time.Minute
	defaultReportDir = "./reports"
)

type reportState int

const (
	reportStateTimeframe reportState = iota
	reportStatePath
	reportStateRunning
	reportStateResult
)

// ReportModel gathers the receipts of a date range into a local folder.
type ReportModel struct {
	CommonModel
	reportService *report.Service

	state           reportState
	timeframePicker TimeframePicker

	startDate time.Time
	endDate   time.Time

	form    *huh.Form
	spinner spinner.Model
	summary string
	count   int
	dir     string
	err     error
}

type reportResultMsg struct {
	summary string
	count   int
	dir     string
	err     error
}

func NewReportModel(svc *report.Service) ReportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	return ReportModel{
		reportService:   svc,
		state:           reportStateTimeframe,
		timeframePicker: NewTimeframePicker(TimeframeThisMonth),
		spinner:         s,
	}
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tfMsg, ok := msg.(TimeframeSelectedMsg); ok {
		m.startDate = tfMsg.Start
		m.endDate = tfMsg.End
		m.form = buildReportPathForm()
		m.state = reportStatePath

		return m, m.form.Init()
	}

	switch m.state {
	case reportStateTimeframe:
		return m.updateTimeframe(msg)
	case reportStatePath:
		return m.updatePath(msg)
	case reportStateRunning:
		return m.updateRunning(msg)
	case reportStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ReportModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m ReportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = reportStateTimeframe
		m.timeframePicker.Reset()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	dir := m.form.GetString("path")
	if dir == "" {
		dir = defaultReportDir
	}

	m.state = reportStateRunning
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runCmd(m.startDate, m.endDate, dir))
}

func (m ReportModel) updateRunning(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(reportResultMsg); ok {
		m.state = reportStateResult
		m.err = result.err
		m.summary = result.summary
		m.count = result.count
		m.dir = result.dir

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func buildReportPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder(defaultReportDir),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ReportModel) runCmd(from, to time.Time, dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()

		items, err := m.reportService.Collections(ctx, from, to, dir)
		if err != nil {
			return reportResultMsg{err: err}
		}

		return reportResultMsg{summary: m.reportService.Summary(items), count: len(items), dir: dir}
	}
}

func (m ReportModel) View() string {
	switch m.state {
	case reportStateTimeframe:
		return pageStyle.Render(m.timeframePicker.View())
	case reportStatePath:
		return pageStyle.Render(m.form.View())
	case reportStateRunning:
		return pageStyle.Render(fmt.Sprintf("%s Collecting receipts...", m.spinner.View()))
	case reportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ReportModel) viewResult() string {
	if m.err != nil {
		return pageStyle.Render(errorText(m.err) + "\n\n" + faintStyle.Render("(Esc to go back)"))
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")).Render("Report ready")

	body := fmt.Sprintf("%d payment(s) from %s to %s copied to %s",
		m.count, FormatDate(m.startDate), FormatDate(m.endDate.AddDate(0, 0, -1)), m.dir)

	return pageStyle.Render(header + "\n\n" + body + "\n\n" + m.summary + "\n" + faintStyle.Render("(Esc to go back)"))
}
