package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/sovahealth/courier/internal/conversation"
	"github.com/sovahealth/courier/internal/models"
	"github.com/sovahealth/courier/internal/portal"
)

type threadItem struct {
	thread  models.Thread
	title   string
	snippet string
}

type threadsFetchedMsg struct {
	threads []models.Thread
	err     error
}

type threadPollTickMsg struct{}

func (i threadItem) Title() string {
	if i.thread.UnreadCount > 0 {
		return fmt.Sprintf("%s %s", i.title, unreadStyle.Render(fmt.Sprintf("(%d)", i.thread.UnreadCount)))
	}
	return i.title
}

func (i threadItem) Description() string {
	at, ok := conversation.LastActivity(i.thread)
	timeAgo := "unknown"
	if ok {
		timeAgo = formatTimeAgo(at)
	}
	preview := truncate.StringWithTail(i.snippet, 50, "...")
	return fmt.Sprintf("%s • %s", timeAgo, preview)
}

func (i threadItem) FilterValue() string {
	return i.title
}

func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	now := time.Now()
	duration := now.Sub(t)

	if duration < time.Minute {
		return "just now"
	}
	if duration < 2*time.Minute {
		return "1 min ago"
	}
	if duration < time.Hour {
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	}
	if duration < 2*time.Hour {
		return "1h ago"
	}
	if duration < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	}
	if duration < 48*time.Hour {
		return "yesterday"
	}
	if duration < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	}
	return t.Format("Jan 2")
}

type ConversationsModel struct {
	app          *App
	list         list.Model
	searchInput  textinput.Model
	searching    bool
	loading      bool
	focused      bool
	err          error
	spinner      spinner.Model
	windowWidth  int
	windowHeight int
}

func NewConversationsModel(app *App) ConversationsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("5")).
		Bold(true)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("8"))

	l := list.New([]list.Item{}, delegate, 80, 20)
	l.Title = "Conversations"
	l.SetShowStatusBar(false)
	// Search goes through the engine so dedup sees the query, not
	// through the widget's fuzzy filter.
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	search := textinput.New()
	search.Placeholder = "Patient name, snippet or subject..."
	search.CharLimit = 100
	search.Width = 40
	search.SetValue(app.Engine.Query())

	return ConversationsModel{
		app:          app,
		list:         l,
		searchInput:  search,
		loading:      true,
		focused:      true,
		spinner:      s,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m ConversationsModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchThreadsCmd(m.app), m.pollCmd())
}

func fetchThreadsCmd(app *App) tea.Cmd {
	return func() tea.Msg {
		threads, err := app.Client.ListThreads(context.Background(), true)
		return threadsFetchedMsg{threads: threads, err: err}
	}
}

func (m ConversationsModel) pollCmd() tea.Cmd {
	return tea.Tick(m.app.PollInterval, func(time.Time) tea.Msg {
		return threadPollTickMsg{}
	})
}

func (m *ConversationsModel) rebuildItems() {
	threads := m.app.Engine.Threads()
	items := make([]list.Item, len(threads))
	for i, t := range threads {
		items[i] = threadItem{
			thread:  t,
			title:   m.app.Engine.DisplayName(t),
			snippet: conversation.Snippet(t),
		}
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Conversations — %d patients", len(threads))
}

func (m ConversationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 6)
		m.searchInput.Width = msg.Width - 20
		return m, nil

	case tea.FocusMsg:
		m.focused = true
		return m, nil

	case tea.BlurMsg:
		m.focused = false
		return m, nil

	case threadsFetchedMsg:
		m.loading = false
		m.app.Engine.ApplyThreads(msg.threads, msg.err)
		m.err = msg.err
		if msg.err == nil {
			m.rebuildItems()
		}
		return m, nil

	case threadPollTickMsg:
		// The timer keeps ticking while unfocused; the work is skipped.
		if m.focused && !m.loading {
			return m, tea.Batch(m.pollCmd(), fetchThreadsCmd(m.app))
		}
		return m, m.pollCmd()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.searching {
			switch msg.String() {
			case "enter":
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			case "esc":
				m.searching = false
				m.searchInput.Blur()
				m.searchInput.SetValue("")
				m.app.Engine.SetQuery("")
				m.rebuildItems()
				return m, nil
			default:
				var cmd tea.Cmd
				m.searchInput, cmd = m.searchInput.Update(msg)
				m.app.Engine.SetQuery(m.searchInput.Value())
				m.rebuildItems()
				return m, cmd
			}
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit

		case "esc":
			menuModel := NewMenuModel(m.app)
			return resized(menuModel, m.windowWidth, m.windowHeight)

		case "/":
			m.searching = true
			m.searchInput.Focus()
			return m, textinput.Blink

		case "c":
			composeModel := NewComposeModel(m.app)
			return resized(composeModel, m.windowWidth, m.windowHeight)

		case "r":
			if !m.loading {
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, fetchThreadsCmd(m.app))
			}
			return m, nil

		case "enter":
			if item, ok := m.list.SelectedItem().(threadItem); ok && !m.loading {
				messagesModel := NewMessagesModel(m.app, item.thread)
				return resized(messagesModel, m.windowWidth, m.windowHeight)
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ConversationsModel) View() string {
	if m.loading && len(m.list.Items()) == 0 {
		return fmt.Sprintf("\n  %s Loading conversations...\n", m.spinner.View())
	}

	var s string
	if m.err != nil {
		s += errorStyle.Render(portal.UserMessage(m.err)) + "\n"
		s += helpStyle.Render("r: retry") + "\n\n"
	}

	if m.searching || m.searchInput.Value() != "" {
		s += inputStyle.Render("Search: ") + m.searchInput.View() + "\n"
	}

	if len(m.list.Items()) == 0 && m.err == nil {
		s += titleStyle.Render("Conversations") + "\n\n"
		s += normalStyle.Render("  No conversations found.") + "\n"
		s += "\n" + helpStyle.Render("r: refresh • c: new message • esc: back • q: quit")
		return s
	}

	s += m.list.View() + "\n"
	s += helpStyle.Render("↑↓/jk: navigate • enter: open • /: search • c: new message • r: refresh • esc: back • q: quit")
	return s
}
