package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sovahealth/courier/internal/auth"
)

type menuItem struct {
	title string
	desc  string
}

func (i menuItem) FilterValue() string { return i.title }
func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }

type MenuModel struct {
	app          *App
	list         list.Model
	windowWidth  int
	windowHeight int
}

// NewMenuModel creates the main menu.
func NewMenuModel(app *App) MenuModel {
	items := []list.Item{
		menuItem{title: "💬 Conversations", desc: "Patient messages"},
		menuItem{title: "✉️  New message", desc: "Write to a patient"},
		menuItem{title: "🚪 Sign out", desc: "Remove the stored session"},
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("5")).
		Bold(true)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("8"))

	l := list.New(items, delegate, 80, 14)
	title := "Courier"
	if app.ViewerName != "" {
		title = "Courier — " + app.ViewerName
	}
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return MenuModel{
		app:          app,
		list:         l,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

		if msg.String() == "enter" {
			selectedItem, ok := m.list.SelectedItem().(menuItem)
			if !ok {
				return m, nil
			}

			switch selectedItem.title {
			case "💬 Conversations":
				conversationsModel := NewConversationsModel(m.app)
				return resized(conversationsModel, m.windowWidth, m.windowHeight)
			case "✉️  New message":
				composeModel := NewComposeModel(m.app)
				return resized(composeModel, m.windowWidth, m.windowHeight)
			case "🚪 Sign out":
				if err := auth.ClearSession(); err != nil {
					m.app.Log.Error().Err(err).Msg("sign out failed")
				}
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m MenuModel) View() string {
	s := m.list.View() + "\n"
	s += helpStyle.Render("↑↓/jk: navigate • enter: select • q: quit")
	return s
}

// resized hands the current window size to a freshly created view before
// switching to it, so it does not flash at the default 80x30.
func resized(next tea.Model, width, height int) (tea.Model, tea.Cmd) {
	initCmd := next.Init()
	if width > 0 {
		sized, cmd := next.Update(tea.WindowSizeMsg{Width: width, Height: height})
		return sized, tea.Batch(initCmd, cmd)
	}
	return next, initCmd
}
