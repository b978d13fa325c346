package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/aguacoop/aguacoop/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

// ImportModel registers a whole reading sheet picked from disk.
type ImportModel struct {
	CommonModel
	importService *importer.Service
	operatorID    uuid.UUID

	state      importState
	filePicker filepicker.Model
	results    viewport.Model

	status string
	err    error
}

type importResultMsg struct {
	sheet    *importer.Sheet
	outcomes []importer.Outcome
	err      error
}

func NewImportModel(svc *importer.Service, operatorID uuid.UUID) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importService: svc,
		operatorID:    operatorID,
		filePicker:    fp,
		results:       viewport.New(80, 15),
	}
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.results.Width = msg.Width - 4
		m.results.Height = max(msg.Height-10, 5)

	case importResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.status, m.results = summarizeImport(msg.sheet, msg.outcomes, m.results)

		return m, nil
	}

	switch m.state {
	case importStateResult:
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)

		return m, cmd
	case importStateImporting:
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == importStateResult {
		m.state = importStateFilePick
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func summarizeImport(sheet *importer.Sheet, outcomes []importer.Outcome, vp viewport.Model) (string, viewport.Model) {
	registered := 0
	body := ""

	for _, o := range outcomes {
		if o.OK() {
			registered++
			body += okStyle.Render(o.String()) + "\n"

			continue
		}

		body += errorStyle.Render(o.String()) + "\n"
	}

	vp.SetContent(body)
	vp.GotoTop()

	status := fmt.Sprintf("Sheet %q (%s): %d registered, %d failed",
		sheet.Profile, sheet.Charset, registered, len(outcomes)-registered)

	return status, vp
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		sheet, outcomes, err := m.importService.Import(ctx, m.operatorID, f)

		return importResultMsg{sheet: sheet, outcomes: outcomes, err: err}
	}
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateImporting:
		return pageStyle.Render(m.status)
	case importStateResult:
		if m.err != nil {
			return pageStyle.Render(errorText(m.err) + "\n\n" + faintStyle.Render("(Esc to pick another file)"))
		}

		return pageStyle.Render(
			accentStyle.Render(m.status) + "\n\n" + m.results.View() + "\n" +
				faintStyle.Render("(Esc to pick another file)"),
		)
	}

	return pageStyle.Render("Select reading sheet:\n\n" + m.filePicker.View())
}
