package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/aguacoop/aguacoop/internal/auth"
)

// LoggedInMsg is sent once the operator's credentials are accepted.
type LoggedInMsg struct {
	Operator *auth.Operator
}

type loginResultMsg struct {
	operator *auth.Operator
	err      error
}

type LoginModel struct {
	CommonModel
	authService *auth.Service

	form *huh.Form
	busy bool
	err  error
}

func NewLoginModel(svc *auth.Service) LoginModel {
	return LoginModel{
		authService: svc,
		form:        buildLoginForm(),
	}
}

func buildLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("username").
				Title("Username"),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword),
		),
	).WithWidth(40).WithShowHelp(false)
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(loginResultMsg); ok {
		m.busy = false

		if res.err != nil {
			m.err = res.err
			m.form = buildLoginForm()

			return m, m.form.Init()
		}

		op := res.operator

		return m, func() tea.Msg { return LoggedInMsg{Operator: op} }
	}

	if m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.busy = true
	m.err = nil

	return m, m.loginCmd(m.form.GetString("username"), m.form.GetString("password"))
}

func (m LoginModel) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, op, err := m.authService.Login(ctx, username, password)

		return loginResultMsg{operator: op, err: err}
	}
}

func (m LoginModel) View() string {
	s := accentStyle.Render("AguaCoop console") + "\n\n"

	if m.busy {
		return pageStyle.Render(s + "Signing in...")
	}

	s += m.form.View()

	if m.err != nil {
		s += "\n" + errorText(m.err)
	}

	return pageStyle.Render(s)
}
