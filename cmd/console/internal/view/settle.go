package view

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguacoop/aguacoop/internal/payment"
	"github.com/aguacoop/aguacoop/internal/voucher"
)

type settleState int

const (
	settleStateSelect settleState = iota
	settleStateConfirm
	settleStateSettling
	settleStateResult
)

// SettleModel lets a cashier pick unpaid vouchers and collect them in one payment.
type SettleModel struct {
	CommonModel
	voucherService *voucher.Service
	paymentService *payment.Service
	operatorID     uuid.UUID
	now            func() time.Time

	state    settleState
	unpaid   []*voucher.Unpaid
	list     list.Model
	selected map[int]bool
	form     *huh.Form

	loading bool
	result  *payment.Payment
	err     error
}

type loadUnpaidMsg struct {
	unpaid []*voucher.Unpaid
	err    error
}

type settleResultMsg struct {
	payment *payment.Payment
	err     error
}

func NewSettleModel(vouchers *voucher.Service, payments *payment.Service, operatorID uuid.UUID) SettleModel {
	return SettleModel{
		voucherService: vouchers,
		paymentService: payments,
		operatorID:     operatorID,
		now:            time.Now,
		selected:       make(map[int]bool),
		loading:        true,
	}
}

func (m SettleModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SettleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadUnpaidMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.unpaid = msg.unpaid
		m.selected = make(map[int]bool)
		m.list = m.buildList()

		return m, nil

	case settleResultMsg:
		m.state = settleStateResult
		m.result = msg.payment
		m.err = msg.err

		return m, nil

	case tea.WindowSizeMsg:
		if len(m.unpaid) > 0 {
			m.list.SetSize(msg.Width-4, max(msg.Height-8, 6))
		}

		return m, nil
	}

	switch m.state {
	case settleStateSelect:
		return m.updateSelect(msg)
	case settleStateConfirm:
		return m.updateConfirm(msg)
	case settleStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = settleStateSelect
			m.result = nil
			m.err = nil
			m.loading = true

			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m SettleModel) buildList() list.Model {
	items := make([]list.Item, len(m.unpaid))
	for i, u := range m.unpaid {
		items[i] = unpaidItem{unpaid: u, index: i}
	}

	delegate := unpaidDelegate{selected: m.selected, now: m.now()}
	l := list.New(items, delegate, 80, 20)
	l.Title = "Unpaid vouchers"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

func (m SettleModel) updateSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "r":
		m.loading = true
		return m, m.loadCmd()
	}

	if len(m.unpaid) == 0 {
		return m, nil
	}

	switch keyMsg.String() {
	case " ":
		idx := m.list.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "n":
		clear(m.selected)

		return m, nil
	case "enter":
		ids, total := m.selection()
		if len(ids) == 0 {
			return m, nil
		}

		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Key("confirm").
					Title(fmt.Sprintf("Collect %s for %d voucher(s)?", FormatMoney(total), len(ids))).
					Affirmative("Collect").
					Negative("Cancel"),
			),
		).WithWidth(50).WithShowHelp(false)
		m.state = settleStateConfirm

		return m, m.form.Init()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m SettleModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = settleStateSelect
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.form.GetBool("confirm") {
		m.state = settleStateSelect
		return m, nil
	}

	ids, _ := m.selection()
	m.state = settleStateSettling

	return m, m.settleCmd(ids)
}

func (m SettleModel) selection() ([]uuid.UUID, decimal.Decimal) {
	var ids []uuid.UUID

	total := decimal.Zero

	for i, u := range m.unpaid {
		if !m.selected[i] {
			continue
		}

		ids = append(ids, u.Voucher.ID)
		total = total.Add(u.Voucher.TotalDue)
	}

	return ids, total
}

func (m SettleModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		unpaid, err := m.voucherService.ListUnpaid(ctx, voucher.UnpaidFilter{})

		return loadUnpaidMsg{unpaid: unpaid, err: err}
	}
}

func (m SettleModel) settleCmd(ids []uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.paymentService.Settle(ctx, m.operatorID, ids)

		return settleResultMsg{payment: p, err: err}
	}
}

func (m SettleModel) View() string {
	switch m.state {
	case settleStateConfirm:
		return pageStyle.Render(m.form.View())
	case settleStateSettling:
		return pageStyle.Render("Settling...")
	case settleStateResult:
		return pageStyle.Render(m.viewResult() + "\n\n" + faintStyle.Render("(Esc to continue)"))
	}

	var s string

	switch {
	case m.loading:
		s = "Loading..."
	case m.err != nil:
		s = errorText(m.err)
	case len(m.unpaid) == 0:
		s = okStyle.Render("Nothing to collect.")
	default:
		_, total := m.selection()
		s = m.list.View() + "\n" + accentStyle.Render("Selected: "+FormatMoney(total))
	}

	return pageStyle.Render(s + "\n\n" + faintStyle.Render("Space: toggle | n: none | Enter: collect | r: refresh | Esc: back"))
}

func (m SettleModel) viewResult() string {
	if m.err != nil {
		return errorText(m.err)
	}

	p := m.result
	s := okStyle.Render(fmt.Sprintf("Payment %s: %s collected", shortID(p.ID), FormatMoney(p.AmountPaid))) + "\n\n"

	for _, l := range p.Lines {
		s += fmt.Sprintf("  %s  %-24s %s\n", shortID(l.Voucher.ID), l.MemberName, FormatMoney(l.Voucher.TotalDue))
	}

	if len(p.Skipped) > 0 {
		s += "\n" + errorStyle.Render(fmt.Sprintf("%d voucher(s) were no longer payable", len(p.Skipped)))
	}

	if p.HasReceipt() {
		s += "\nReceipt: " + p.ReceiptPath
	} else {
		s += "\n" + faintStyle.Render("Receipt could not be generated; reissue it from the report.")
	}

	return s
}

type unpaidItem struct {
	unpaid *voucher.Unpaid
	index  int
}

func (i unpaidItem) Title() string       { return i.unpaid.MemberName }
func (i unpaidItem) Description() string { return i.unpaid.Address }
func (i unpaidItem) FilterValue() string { return i.unpaid.MemberName }

type unpaidDelegate struct {
	selected map[int]bool
	now      time.Time
}

func (d unpaidDelegate) Height() int                             { return 2 }
func (d unpaidDelegate) Spacing() int                            { return 0 }
func (d unpaidDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d unpaidDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(unpaidItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if d.selected[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	v := item.unpaid.Voucher

	line1 := fmt.Sprintf("%s%s %-24s %10s  due %s",
		cursor, checkbox, item.unpaid.MemberName, FormatMoney(v.TotalDue), FormatDate(v.DueDate))

	if v.IsPastDue(d.now) {
		line1 = errorStyle.Render(line1)
	}

	line2 := faintStyle.Render(fmt.Sprintf("      %s  %s", item.unpaid.Address, v.Status))

	fmt.Fprintf(w, "%s\n%s", line1, line2)
}
