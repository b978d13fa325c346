package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/reading"
)

type captureState int

const (
	captureStateBrowse captureState = iota
	captureStateEdit
)

// CaptureModel is the monthly reading sheet: pending readings of every active meter.
type CaptureModel struct {
	CommonModel
	readingService *reading.Service
	operatorID     uuid.UUID

	state   captureState
	table   table.Model
	rows    []*reading.EntryRow
	form    *huh.Form
	editing *reading.EntryRow

	loading bool
	status  string
	err     error
}

type loadEntryMsg struct {
	rows []*reading.EntryRow
	err  error
}

type registerResultMsg struct {
	reg *reading.Registration
	err error
}

func NewCaptureModel(svc *reading.Service, operatorID uuid.UUID) CaptureModel {
	columns := []table.Column{
		{Title: "Member", Width: 24},
		{Title: "Address", Width: 24},
		{Title: "Category", Width: 14},
		{Title: "Prior", Width: 10},
		{Title: "Current", Width: 10},
		{Title: "Status", Width: 11},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return CaptureModel{
		readingService: svc,
		operatorID:     operatorID,
		table:          t,
		loading:        true,
	}
}

func (m CaptureModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m CaptureModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadEntryMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.rows = msg.rows
		m.refreshTable()

		return m, nil

	case registerResultMsg:
		m.state = captureStateBrowse
		m.form = nil
		m.editing = nil
		m.table.Focus()

		if msg.err != nil {
			m.err = msg.err
			m.status = ""

			return m, nil
		}

		m.err = nil
		m.status = fmt.Sprintf("Voucher %s: %s due %s",
			shortID(msg.reg.Voucher.ID),
			FormatMoney(msg.reg.Voucher.TotalDue),
			FormatDate(msg.reg.Voucher.DueDate),
		)

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil
	}

	if m.state == captureStateEdit {
		return m.updateEdit(msg)
	}

	return m.updateBrowse(msg)
}

func (m CaptureModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "enter":
			return m.startEdit()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CaptureModel) startEdit() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return m, nil
	}

	m.editing = m.rows[idx]
	m.form = buildCaptureForm(m.editing)
	m.state = captureStateEdit
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

func buildCaptureForm(row *reading.EntryRow) *huh.Form {
	prior := row.Reading.PriorValue

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("current").
				Title(fmt.Sprintf("Current reading for %s", row.MemberName)).
				Description(fmt.Sprintf("Prior reading: %s", prior.String())).
				Validate(func(s string) error {
					_, err := ParseReading(s, prior)
					return err
				}),
			huh.NewText().
				Key("note").
				Title("Note").
				CharLimit(500),
		),
	).WithWidth(60).WithShowHelp(false)
}

// ParseReading parses an operator-typed counter value that must not go below prior.
func ParseReading(s string, prior decimal.Decimal) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("enter a number")
	}

	if v.LessThan(prior) {
		return decimal.Zero, fmt.Errorf("must be at least %s", prior.String())
	}

	return v, nil
}

func (m CaptureModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = captureStateBrowse
		m.form = nil
		m.editing = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	current, err := ParseReading(m.form.GetString("current"), m.editing.Reading.PriorValue)
	if err != nil {
		m.err = err
		m.state = captureStateBrowse
		m.table.Focus()

		return m, nil
	}

	r := m.editing.Reading
	params := reading.RegisterParams{
		ReadingID:    r.ID,
		MeterID:      r.MeterID,
		OperatorID:   m.operatorID,
		PriorValue:   r.PriorValue,
		CurrentValue: current,
		Note:         strings.TrimSpace(m.form.GetString("note")),
	}

	return m, m.registerCmd(params)
}

func (m *CaptureModel) refreshTable() {
	rows := make([]table.Row, len(m.rows))
	for i, e := range m.rows {
		current := "-"
		if e.Reading.Status == reading.StatusRegistered {
			current = e.Reading.CurrentValue.String()
		}

		rows[i] = table.Row{
			e.MemberName,
			e.Address,
			e.CategoryName,
			e.Reading.PriorValue.String(),
			current,
			string(e.Reading.Status),
		}
	}

	m.table.SetRows(rows)
}

func (m CaptureModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rows, err := m.readingService.ListForEntry(ctx)

		return loadEntryMsg{rows: rows, err: err}
	}
}

func (m CaptureModel) registerCmd(params reading.RegisterParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		reg, err := m.readingService.Register(ctx, params)

		return registerResultMsg{reg: reg, err: err}
	}
}

func (m CaptureModel) View() string {
	if m.state == captureStateEdit {
		return pageStyle.Render(m.form.View() + "\n" + faintStyle.Render("(Esc to cancel)"))
	}

	s := accentStyle.Render("Readings of the month") + "\n\n"

	switch {
	case m.loading:
		s += "Loading..."
	case len(m.rows) == 0:
		s += "No readings to capture. Run the monthly rollover first."
	default:
		s += m.table.View()
	}

	if m.status != "" {
		s += "\n\n" + okStyle.Render(m.status)
	}

	if m.err != nil {
		s += "\n\n" + errorText(m.err)
	}

	s += "\n\n" + faintStyle.Render("Enter: capture | r: refresh | Esc: back")

	return pageStyle.Render(s)
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
