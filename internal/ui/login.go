package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/sovahealth/courier/internal/auth"
	"github.com/sovahealth/courier/internal/portal"
)

type loginResultMsg struct {
	token string
	err   error
}

// LoginModel is the interactive sign-in form. On success it writes the
// session file and quits; the command running it reads Token afterwards.
type LoginModel struct {
	baseURL  string
	staff    bool
	log      zerolog.Logger
	email    textinput.Model
	password textinput.Model
	focus    int
	loading  bool
	err      string
	spinner  spinner.Model

	Token string
	Name  string
}

func NewLoginModel(baseURL string, staff bool, log zerolog.Logger) LoginModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	email := textinput.New()
	email.Placeholder = "email"
	if staff {
		email.Placeholder = "staff username"
	}
	email.CharLimit = 100
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 100
	password.Width = 40

	return LoginModel{
		baseURL:  baseURL,
		staff:    staff,
		log:      log,
		email:    email,
		password: password,
		spinner:  s,
	}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func loginCmd(baseURL, user, password string, staff bool, log zerolog.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var token string
		var err error
		if staff {
			token, err = portal.StaffLogin(ctx, baseURL, user, password, log)
		} else {
			token, err = portal.Login(ctx, baseURL, user, password, log)
		}
		return loginResultMsg{token: token, err: err}
	}
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = portal.UserMessage(msg.err)
			m.password.SetValue("")
			return m, nil
		}

		claims, err := auth.DecodeClaims(msg.token)
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		if err := auth.SaveSession(auth.Session{BaseURL: m.baseURL, Token: msg.token}); err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.Token = msg.token
		m.Name = claims.Name
		return m, tea.Quit

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab", "shift+tab", "up", "down":
			if m.focus == 0 {
				m.focus = 1
				m.email.Blur()
				m.password.Focus()
			} else {
				m.focus = 0
				m.password.Blur()
				m.email.Focus()
			}
			return m, textinput.Blink

		case "enter":
			if m.focus == 0 {
				m.focus = 1
				m.email.Blur()
				m.password.Focus()
				return m, textinput.Blink
			}
			if m.loading || m.email.Value() == "" || m.password.Value() == "" {
				return m, nil
			}
			m.loading = true
			m.err = ""
			return m, tea.Batch(m.spinner.Tick,
				loginCmd(m.baseURL, m.email.Value(), m.password.Value(), m.staff, m.log))
		}

		var cmd tea.Cmd
		if m.focus == 0 {
			m.email, cmd = m.email.Update(msg)
		} else {
			m.password, cmd = m.password.Update(msg)
		}
		return m, cmd
	}

	return m, nil
}

func (m LoginModel) View() string {
	title := "Sign in to " + m.baseURL
	if m.staff {
		title += " (staff)"
	}
	s := titleStyle.Render(title) + "\n"

	if m.err != "" {
		s += errorStyle.Render(m.err) + "\n\n"
	}

	s += m.email.View() + "\n"
	s += m.password.View() + "\n"

	if m.loading {
		s += fmt.Sprintf("\n  %s Signing in...\n", m.spinner.View())
	} else {
		s += "\n" + helpStyle.Render("enter: sign in • tab: switch field • esc: cancel")
	}
	return s
}
