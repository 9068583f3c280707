package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/sovahealth/courier/internal/conversation"
	"github.com/sovahealth/courier/internal/models"
	"github.com/sovahealth/courier/internal/portal"
)

const tombstoneText = "⊘ message deleted"

type messagesFetchedMsg struct {
	gen      uint64
	messages []models.Message
	err      error
}

type messagePollTickMsg struct {
	gen uint64
}

type messageSentMsg struct {
	message *models.Message
	err     error
}

type messageMutatedMsg struct {
	id      models.ID
	message *models.Message
	err     error
}

type messagesMode int

const (
	modeBrowse messagesMode = iota
	modeCompose
	modeEdit
	modeSearch
)

type MessagesModel struct {
	app           *App
	thread        models.Thread
	title         string
	gen           uint64
	viewport      viewport.Model
	textarea      textarea.Model
	searchInput   textinput.Model
	mode          messagesMode
	editingID     models.ID
	selected      int
	lineOffsets   []int
	loading       bool
	sending       bool
	mutating      bool
	focused       bool
	spinner       spinner.Model
	windowWidth   int
	windowHeight  int
	viewportReady bool
}

func NewMessagesModel(app *App, thread models.Thread) MessagesModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	vp := viewport.New(80, 20)

	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.CharLimit = 2000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	search := textinput.New()
	search.Placeholder = "Search messages..."
	search.CharLimit = 100
	search.Width = 40

	// Selecting the thread bumps the engine generation, so anything
	// still in flight for the previous selection gets discarded, and
	// the unread badge resets on the mark-read call, not its response.
	gen := app.Engine.Select(thread.ID)
	app.Engine.MarkReadLocally(thread.ID)

	return MessagesModel{
		app:           app,
		thread:        thread,
		title:         app.Engine.DisplayName(thread),
		gen:           gen,
		viewport:      vp,
		textarea:      ta,
		searchInput:   search,
		selected:      -1,
		loading:       true,
		focused:       true,
		spinner:       s,
		windowWidth:   80,
		windowHeight:  30,
		viewportReady: true,
	}
}

func (m MessagesModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		fetchMessagesCmd(m.app, m.gen, m.thread.ID),
		markReadCmd(m.app, m.thread.ID),
		m.pollCmd(),
	)
}

func fetchMessagesCmd(app *App, gen uint64, threadID models.ID) tea.Cmd {
	return func() tea.Msg {
		messages, err := app.Client.ListMessages(context.Background(), threadID, app.MessageLimit)
		return messagesFetchedMsg{gen: gen, messages: messages, err: err}
	}
}

func markReadCmd(app *App, threadID models.ID) tea.Cmd {
	return func() tea.Msg {
		if err := app.Client.MarkThreadRead(context.Background(), threadID); err != nil {
			app.Log.Warn().Err(err).Str("thread", string(threadID)).Msg("mark read failed")
		}
		return nil
	}
}

func sendMessageCmd(app *App, threadID models.ID, body string) tea.Cmd {
	return func() tea.Msg {
		message, err := app.Client.SendMessage(context.Background(), threadID, body)
		return messageSentMsg{message: message, err: err}
	}
}

func editMessageCmd(app *App, threadID, messageID models.ID, body string) tea.Cmd {
	return func() tea.Msg {
		message, err := app.Client.EditMessage(context.Background(), threadID, messageID, body)
		return messageMutatedMsg{id: messageID, message: message, err: err}
	}
}

func deleteMessageCmd(app *App, threadID, messageID models.ID) tea.Cmd {
	return func() tea.Msg {
		message, err := app.Client.DeleteMessage(context.Background(), threadID, messageID)
		return messageMutatedMsg{id: messageID, message: message, err: err}
	}
}

func (m MessagesModel) pollCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.app.PollInterval, func(time.Time) tea.Msg {
		return messagePollTickMsg{gen: gen}
	})
}

func (m *MessagesModel) visible() []models.Message {
	return m.app.Engine.Visible()
}

func (m *MessagesModel) selectedMessage() (models.Message, bool) {
	visible := m.visible()
	if m.selected < 0 || m.selected >= len(visible) {
		return models.Message{}, false
	}
	return visible[m.selected], true
}

func (m *MessagesModel) clampSelection() {
	visible := m.visible()
	if len(visible) == 0 {
		m.selected = -1
		return
	}
	if m.selected < 0 || m.selected >= len(visible) {
		m.selected = len(visible) - 1
	}
}

func (m MessagesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height

		headerHeight := 4
		textareaHeight := 5
		helpHeight := 3
		availableHeight := msg.Height - headerHeight - helpHeight

		if m.mode == modeCompose || m.mode == modeEdit {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = availableHeight - textareaHeight
			m.textarea.SetWidth(msg.Width - 4)
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = availableHeight
		}
		m.searchInput.Width = msg.Width - 20

		m.updateViewportContent()
		return m, nil

	case tea.FocusMsg:
		m.focused = true
		return m, nil

	case tea.BlurMsg:
		m.focused = false
		return m, nil

	case messagesFetchedMsg:
		wasEmpty := len(m.app.Engine.Messages()) == 0
		if !m.app.Engine.ApplyMessages(msg.gen, msg.messages, msg.err) {
			// Result for a superseded selection; never touches this view.
			return m, nil
		}
		m.loading = false
		m.clampSelection()
		m.updateViewportContent()
		if wasEmpty {
			m.viewport.GotoBottom()
		}
		return m, nil

	case threadsFetchedMsg:
		// Poll ticks refresh the thread list too, so the row order and
		// unread badges are current when the user goes back.
		m.app.Engine.ApplyThreads(msg.threads, msg.err)
		return m, nil

	case messagePollTickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if m.focused && !m.loading {
			return m, tea.Batch(
				m.pollCmd(),
				fetchMessagesCmd(m.app, m.gen, m.thread.ID),
				fetchThreadsCmd(m.app),
			)
		}
		return m, m.pollCmd()

	case messageSentMsg:
		m.sending = false
		m.app.Engine.ApplySend(msg.message, msg.err)
		if msg.err != nil {
			// Composer content stays; the user retries manually.
			m.mode = modeCompose
			m.textarea.Focus()
			return m, nil
		}
		m.textarea.Reset()
		m.mode = modeBrowse
		m.clampSelection()
		m.updateViewportContent()
		m.viewport.GotoBottom()
		return m, nil

	case messageMutatedMsg:
		m.mutating = false
		m.app.Engine.ApplyMutation(msg.id, msg.message, msg.err)
		if msg.err != nil {
			if m.editingID != "" {
				m.mode = modeEdit
				m.textarea.Focus()
			}
			return m, nil
		}
		if m.editingID == msg.id {
			m.editingID = ""
			m.textarea.Reset()
			m.mode = modeBrowse
		}
		m.updateViewportContent()
		return m, nil

	case spinner.TickMsg:
		if m.loading || m.sending || m.mutating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m MessagesModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeCompose, modeEdit:
		switch msg.String() {
		case "esc":
			m.mode = modeBrowse
			m.editingID = ""
			m.textarea.Reset()
			m.textarea.Blur()
			return m, nil
		case "ctrl+s":
			body := strings.TrimSpace(m.textarea.Value())
			if body == "" || m.sending || m.mutating {
				return m, nil
			}
			m.textarea.Blur()
			if m.mode == modeEdit {
				m.mutating = true
				m.mode = modeBrowse
				m.app.Engine.BeginMutation(m.editingID)
				return m, tea.Batch(m.spinner.Tick, editMessageCmd(m.app, m.thread.ID, m.editingID, body))
			}
			m.sending = true
			m.mode = modeBrowse
			m.app.Engine.BeginSend()
			return m, tea.Batch(m.spinner.Tick, sendMessageCmd(m.app, m.thread.ID, body))
		default:
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}

	case modeSearch:
		switch msg.String() {
		case "enter":
			m.mode = modeBrowse
			m.searchInput.Blur()
			m.app.Engine.SetSearch(m.searchInput.Value())
			if hit := m.app.Engine.Search().Current(); hit >= 0 {
				m.selected = hit
			}
			m.updateViewportContent()
			m.scrollToSelected()
			return m, nil
		case "esc":
			m.mode = modeBrowse
			m.searchInput.Blur()
			m.searchInput.SetValue("")
			m.app.Engine.ClearSearch()
			m.updateViewportContent()
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}
	}

	if m.loading || m.sending || m.mutating {
		return m, nil
	}

	search := m.app.Engine.Search()

	switch msg.String() {
	case "esc":
		m.app.Engine.Deselect()
		convModel := NewConversationsModel(m.app)
		return resized(convModel, m.windowWidth, m.windowHeight)

	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		m.updateViewportContent()
		m.scrollToSelected()
		return m, nil

	case "down", "j":
		if m.selected < len(m.visible())-1 {
			m.selected++
		}
		m.updateViewportContent()
		m.scrollToSelected()
		return m, nil

	case "c":
		m.mode = modeCompose
		m.textarea.Focus()
		return m, textarea.Blink

	case "n":
		if search.Active() {
			m.app.Engine.SearchNext()
			if hit := m.app.Engine.Search().Current(); hit >= 0 {
				m.selected = hit
			}
			m.updateViewportContent()
			m.scrollToSelected()
			return m, nil
		}
		m.mode = modeCompose
		m.textarea.Focus()
		return m, textarea.Blink

	case "N":
		if search.Active() {
			m.app.Engine.SearchPrev()
			if hit := m.app.Engine.Search().Current(); hit >= 0 {
				m.selected = hit
			}
			m.updateViewportContent()
			m.scrollToSelected()
		}
		return m, nil

	case "e":
		if selected, ok := m.selectedMessage(); ok && selected.IsMine && !selected.Deleted {
			m.mode = modeEdit
			m.editingID = selected.ID
			m.textarea.SetValue(selected.Body)
			m.textarea.Focus()
			return m, textarea.Blink
		}
		return m, nil

	case "d":
		if selected, ok := m.selectedMessage(); ok && selected.IsMine && !selected.Deleted {
			m.mutating = true
			m.app.Engine.BeginMutation(selected.ID)
			return m, tea.Batch(m.spinner.Tick, deleteMessageCmd(m.app, m.thread.ID, selected.ID))
		}
		return m, nil

	case "s":
		if selected, ok := m.selectedMessage(); ok {
			m.app.Engine.ToggleStar(selected.ID)
			m.clampSelection()
			m.updateViewportContent()
		}
		return m, nil

	case "f":
		m.app.Engine.ToggleStarredOnly()
		m.selected = -1
		m.clampSelection()
		m.updateViewportContent()
		m.viewport.GotoBottom()
		return m, nil

	case "/":
		m.mode = modeSearch
		m.searchInput.SetValue(search.Query)
		m.searchInput.Focus()
		return m, textinput.Blink

	case "r":
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, fetchMessagesCmd(m.app, m.gen, m.thread.ID))
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *MessagesModel) scrollToSelected() {
	if m.selected < 0 || m.selected >= len(m.lineOffsets) {
		return
	}
	offset := m.lineOffsets[m.selected] - m.viewport.Height/2
	if offset < 0 {
		offset = 0
	}
	m.viewport.SetYOffset(offset)
}

func (m *MessagesModel) updateViewportContent() {
	if !m.viewportReady {
		return
	}

	entries := m.app.Engine.Timeline()
	search := m.app.Engine.Search()
	focusedHit := search.Current()

	wrapWidth := m.viewport.Width
	if wrapWidth <= 0 {
		wrapWidth = 80
	}

	var content strings.Builder
	m.lineOffsets = m.lineOffsets[:0]
	lines := 0
	msgIndex := 0

	for _, entry := range entries {
		var block string

		if entry.Kind == conversation.EntrySeparator {
			block = separatorStyle.Width(wrapWidth).Render("── "+entry.Label+" ──") + "\n"
			content.WriteString(block)
			lines += strings.Count(block, "\n")
			continue
		}

		m.lineOffsets = append(m.lineOffsets, lines)
		block = m.renderMessage(entry, msgIndex, focusedHit, wrapWidth)
		content.WriteString(block)
		lines += strings.Count(block, "\n")
		msgIndex++
	}

	m.viewport.SetContent(content.String())
}

func (m *MessagesModel) renderMessage(entry conversation.Entry, msgIndex, focusedHit, wrapWidth int) string {
	message := entry.Message
	var block strings.Builder

	if entry.FirstInGroup {
		sender := m.title
		if message.IsMine {
			sender = "You"
		}
		header := fmt.Sprintf("%s • %s", sender, message.SentAt.Local().Format("3:04 PM"))
		if message.EditedAt != nil {
			header += " (edited)"
		}
		rendered := messageHeaderStyle.Render(header)
		if message.IsMine {
			rendered = lipgloss.NewStyle().Align(lipgloss.Right).Width(wrapWidth).Render(rendered)
		}
		block.WriteString(rendered + "\n")
	}

	body := message.Body
	bodyStyle := messageFromOtherStyle
	if message.IsMine {
		bodyStyle = messageFromMeStyle
	}
	if message.Deleted {
		body = tombstoneText
		bodyStyle = tombstoneStyle
	} else if msgIndex == focusedHit {
		bodyStyle = searchHitStyle
	}

	prefix := ""
	if m.app.Engine.Starred(message.ID) {
		prefix = starStyle.Render("★ ")
	}
	if msgIndex == m.selected {
		prefix = selectedMsgStyle.Render("▸ ") + prefix
	}

	wrapped := wordwrap.String(body, wrapWidth-10)
	styled := prefix + bodyStyle.Render(wrapped)
	if message.IsMine {
		styled = lipgloss.NewStyle().Align(lipgloss.Right).Width(wrapWidth).Render(styled)
	}
	block.WriteString(styled + "\n")

	if entry.LastInGroup {
		block.WriteString("\n")
	}
	return block.String()
}

func (m MessagesModel) View() string {
	if m.loading && len(m.app.Engine.Messages()) == 0 {
		return fmt.Sprintf("\n  %s Loading messages...\n", m.spinner.View())
	}

	header := fmt.Sprintf("💬 %s", m.title)
	if m.app.Engine.StarredOnly() {
		header += " ★"
	}
	s := titleStyle.Render(header) + "\n"

	if errText := m.inlineError(); errText != "" {
		s += errorStyle.Render(errText) + "\n"
	}

	search := m.app.Engine.Search()
	if search.Active() {
		s += inputStyle.Render(fmt.Sprintf("Search %q: %d/%d", search.Query, search.Focused+1, max(len(search.Results), 1))) + "\n"
	}

	switch {
	case m.sending:
		s += fmt.Sprintf("  %s Sending message...\n", m.spinner.View())
	case m.mutating:
		s += fmt.Sprintf("  %s Updating message...\n", m.spinner.View())
	case len(m.visible()) == 0 && !m.loading:
		s += normalStyle.Render("  No messages in this conversation.") + "\n"
	default:
		s += m.viewport.View() + "\n"
	}

	switch m.mode {
	case modeCompose:
		s += "\n" + inputStyle.Render("New message:") + "\n"
		s += m.textarea.View() + "\n"
		s += helpStyle.Render("ctrl+s: send • esc: cancel")
	case modeEdit:
		s += "\n" + inputStyle.Render("Edit message:") + "\n"
		s += m.textarea.View() + "\n"
		s += helpStyle.Render("ctrl+s: save • esc: cancel")
	case modeSearch:
		s += "\n" + inputStyle.Render("Search: ") + m.searchInput.View() + "\n"
		s += helpStyle.Render("enter: search • esc: cancel")
	default:
		help := "↑↓/jk: select • c: new • e: edit • d: delete • s: star • f: starred • /: search • r: refresh • esc: back"
		if search.Active() {
			help = "n/N: next/prev match • " + help
		}
		s += "\n" + helpStyle.Render(help)
	}

	return s
}

func (m MessagesModel) inlineError() string {
	if _, err := m.app.Engine.SendState(); err != nil {
		return "Send failed: " + portal.UserMessage(err)
	}
	if _, err := m.app.Engine.MutateState(); err != nil {
		return "Update failed: " + portal.UserMessage(err)
	}
	if _, err := m.app.Engine.MessageState(); err != nil {
		return portal.UserMessage(err) + " (showing last known messages)"
	}
	return ""
}
