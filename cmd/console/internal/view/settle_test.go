package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/aguacoop/aguacoop/internal/voucher"
)

func unpaid(total string) *voucher.Unpaid {
	return &voucher.Unpaid{
		Voucher: &voucher.Voucher{
			ID:       uuid.New(),
			TotalDue: decimal.RequireFromString(total),
			Status:   voucher.StatusPending,
			DueDate:  time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		MemberName: "Ana Quispe",
		Address:    "Calle 1",
	}
}

func TestSettleModel_Selection(t *testing.T) {
	m := NewSettleModel(nil, nil, uuid.New())
	a, b, c := unpaid("70"), unpaid("12.50"), unpaid("30")

	next, _ := m.Update(loadUnpaidMsg{unpaid: []*voucher.Unpaid{a, b, c}})
	m = next.(SettleModel)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(SettleModel)

	m.selected[2] = true

	ids, total := m.selection()
	assert.Equal(t, []uuid.UUID{a.Voucher.ID, c.Voucher.ID}, ids)
	assert.Equal(t, "100", total.String())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = next.(SettleModel)

	ids, total = m.selection()
	assert.Empty(t, ids)
	assert.True(t, total.IsZero())
}

func TestSettleModel_EnterWithoutSelectionStays(t *testing.T) {
	m := NewSettleModel(nil, nil, uuid.New())

	next, _ := m.Update(loadUnpaidMsg{unpaid: []*voucher.Unpaid{unpaid("70")}})
	m = next.(SettleModel)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(SettleModel)

	assert.Nil(t, cmd)
	assert.Equal(t, settleStateSelect, m.state)
}
