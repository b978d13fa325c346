package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aguacoop/aguacoop/internal/mora"
)

const sweepTimeout = 4 * time.Minute

// MoraModel runs one late-fee sweep on demand and shows its tally.
type MoraModel struct {
	CommonModel
	job *mora.Job

	running bool
	spinner spinner.Model
	result  *mora.Result
	err     error
}

type sweepResultMsg struct {
	result mora.Result
	err    error
}

func NewMoraModel(job *mora.Job) MoraModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	return MoraModel{job: job, spinner: s, running: true}
}

func (m MoraModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.sweepCmd())
}

func (m MoraModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sweepResultMsg:
		m.running = false
		m.err = msg.err

		if msg.err == nil {
			res := msg.result
			m.result = &res
		}

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && !m.running {
			return m, Back
		}

		if msg.String() == "r" && !m.running {
			m.running = true
			m.err = nil

			return m, tea.Batch(m.spinner.Tick, m.sweepCmd())
		}

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m MoraModel) sweepCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		res, err := m.job.Sweep(ctx)

		return sweepResultMsg{result: res, err: err}
	}
}

func (m MoraModel) View() string {
	if m.running {
		return pageStyle.Render(fmt.Sprintf("%s Applying late fees to past-due vouchers...", m.spinner.View()))
	}

	if m.err != nil {
		return pageStyle.Render(errorText(m.err) + "\n\n" + faintStyle.Render("r: retry | Esc: back"))
	}

	r := m.result
	s := okStyle.Render("Sweep complete") + "\n\n" +
		fmt.Sprintf("Scanned:  %d\nOverdue:  %d\nSkipped:  %d\nFailed:   %d\n", r.Scanned, r.Overdue, r.Skipped, r.Failed)

	return pageStyle.Render(s + "\n" + faintStyle.Render("r: run again | Esc: back"))
}
