package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sovahealth/courier/internal/models"
	"github.com/sovahealth/courier/internal/portal"
)

type composeField int

const (
	fieldRecipient composeField = iota
	fieldBody
)

type composeSentMsg struct {
	thread  models.Thread
	message *models.Message
	err     error
}

// ComposeModel writes a message to a patient by name or id. Conversations
// are created by the portal when a patient first writes in, so composing
// only works against an existing thread; an unknown recipient gets
// guidance instead of a new thread.
type ComposeModel struct {
	app          *App
	recipient    textinput.Model
	body         textarea.Model
	focus        composeField
	thread       models.Thread
	haveThread   bool
	sending      bool
	err          string
	spinner      spinner.Model
	windowWidth  int
	windowHeight int
}

func NewComposeModel(app *App) ComposeModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	recipient := textinput.New()
	recipient.Placeholder = "Patient name or id"
	recipient.CharLimit = 100
	recipient.Width = 40
	recipient.Focus()

	body := textarea.New()
	body.Placeholder = "Type your message..."
	body.CharLimit = 2000
	body.SetHeight(5)
	body.ShowLineNumbers = false

	return ComposeModel{
		app:          app,
		recipient:    recipient,
		body:         body,
		focus:        fieldRecipient,
		spinner:      s,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m ComposeModel) Init() tea.Cmd {
	// Compose matches against the thread list, so make sure it is fresh.
	return tea.Batch(textinput.Blink, fetchThreadsCmd(m.app))
}

func composeSendCmd(app *App, thread models.Thread, body string) tea.Cmd {
	return func() tea.Msg {
		message, err := app.Client.SendMessage(context.Background(), thread.ID, body)
		return composeSentMsg{thread: thread, message: message, err: err}
	}
}

func (m ComposeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.recipient.Width = msg.Width - 20
		m.body.SetWidth(msg.Width - 4)
		return m, nil

	case threadsFetchedMsg:
		m.app.Engine.ApplyThreads(msg.threads, msg.err)
		return m, nil

	case composeSentMsg:
		m.sending = false
		if msg.err != nil {
			m.err = "Send failed: " + portal.UserMessage(msg.err)
			m.body.Focus()
			return m, nil
		}
		messagesModel := NewMessagesModel(m.app, msg.thread)
		return resized(messagesModel, m.windowWidth, m.windowHeight)

	case spinner.TickMsg:
		if m.sending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.focus == fieldBody {
				m.focus = fieldRecipient
				m.body.Blur()
				m.recipient.Focus()
				return m, textinput.Blink
			}
			menuModel := NewMenuModel(m.app)
			return resized(menuModel, m.windowWidth, m.windowHeight)

		case "enter":
			if m.focus == fieldRecipient {
				target := strings.TrimSpace(m.recipient.Value())
				if target == "" {
					return m, nil
				}
				thread, ok := m.app.Engine.FindThreadByPatient(target)
				if !ok {
					m.err = fmt.Sprintf("No conversation with %q. Patients start conversations from the portal; ask them to write in first.", target)
					m.haveThread = false
					return m, nil
				}
				m.thread = thread
				m.haveThread = true
				m.err = ""
				m.focus = fieldBody
				m.recipient.Blur()
				m.body.Focus()
				return m, textarea.Blink
			}

		case "ctrl+s":
			if m.focus == fieldBody && m.haveThread && !m.sending {
				body := strings.TrimSpace(m.body.Value())
				if body == "" {
					return m, nil
				}
				m.sending = true
				m.err = ""
				return m, tea.Batch(m.spinner.Tick, composeSendCmd(m.app, m.thread, body))
			}
		}

		var cmd tea.Cmd
		if m.focus == fieldRecipient {
			m.recipient, cmd = m.recipient.Update(msg)
		} else {
			m.body, cmd = m.body.Update(msg)
		}
		return m, cmd
	}

	return m, nil
}

func (m ComposeModel) View() string {
	s := titleStyle.Render("✉️  New message") + "\n"

	if m.err != "" {
		s += errorStyle.Render(m.err) + "\n\n"
	}

	s += inputStyle.Render("To: ") + m.recipient.View() + "\n"
	if m.haveThread {
		s += statusStyle.Render("  → "+m.app.Engine.DisplayName(m.thread)) + "\n"
	}
	s += "\n"

	if m.focus == fieldBody {
		s += m.body.View() + "\n"
	}

	switch {
	case m.sending:
		s += fmt.Sprintf("\n  %s Sending...\n", m.spinner.View())
	case m.focus == fieldRecipient:
		s += "\n" + helpStyle.Render("enter: find conversation • esc: back")
	default:
		s += "\n" + helpStyle.Render("ctrl+s: send • esc: change recipient")
	}

	return s
}
