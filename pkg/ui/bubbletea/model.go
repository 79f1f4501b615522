package bubbletea

import (
	"encoding/json"
	"fmt"
	"strings"

	// Packages
	spinner "github.com/charmbracelet/bubbles/spinner"
	textinput "github.com/charmbracelet/bubbles/textinput"
	viewport "github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	glamour "github.com/charmbracelet/glamour"
	lipgloss "github.com/charmbracelet/lipgloss"
	wordwrap "github.com/muesli/reflow/wordwrap"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	table "github.com/mutablelogic/go-chatstream/pkg/ui/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// model is the bubbletea model that manages the TUI state.
type model struct {
	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	entries   []*entry
	index     map[string]*entry // assistant entries by message id
	pending   int               // prompts sent and not yet resolved
	width     int
	height    int
	ready     bool
	renderer  *glamour.TermRenderer
	stylePath string // glamour style ("dark" or "light"), detected before TUI starts
	quitting  bool

	// Wired by the terminal
	send   func(prompt string)
	abort  func()
	reset  func()
	record func(prompt string, result schema.Result)
}

// entry is one message in the history display
type entry struct {
	id         string
	role       string // "user", "assistant", "system", "error"
	content    string
	widgetType string
	widget     *schema.Widget
	loading    bool
	streaming  bool
	note       string // shown dimmed after the message
	text       string // rendered content and widget
}

///////////////////////////////////////////////////////////////////////////////
// STYLES

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")) // blue
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")) // green
	systemStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")) // yellow
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))  // red
	dimStyle       = lipgloss.NewStyle().Faint(true)
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func newModel(stylePath string) *model {
	return &model{
		input:     newInput(),
		spinner:   newSpinner(),
		index:     make(map[string]*entry),
		stylePath: stylePath,
		send:      func(string) {},
		abort:     func() {},
		reset:     func() {},
		record:    func(string, schema.Result) {},
	}
}

// restore adds prior turns to the display
func (m *model) restore(messages []schema.Message) {
	for _, message := range messages {
		e := &entry{role: message.Role, content: message.Content}
		if before, after, ok := strings.Cut(message.Content, schema.MarkerData); ok {
			e.content = strings.TrimSpace(before)
			e.widget = restoreWidget(after)
		}
		m.entries = append(m.entries, e)
	}
}

///////////////////////////////////////////////////////////////////////////////
// BUBBLETEA MODEL

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEsc:
			if m.pending > 0 {
				m.abort()
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.SetValue("")
			return m, m.command(text)
		}

	case tea.WindowSizeMsg:
		footerHeight := 2 // input + status line
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.viewport.YPosition = 0
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}
		m.input.Width = msg.Width - 4

		// (Re)create glamour renderer with new width and re-render history
		m.newRenderer()
		for _, e := range m.entries {
			m.render(e)
		}
		m.updateViewport()
		return m, nil

	case startMsg:
		e := &entry{id: msg.id, role: schema.RoleAssistant, streaming: true}
		m.index[msg.id] = e
		m.entries = append(m.entries, e)
		m.render(e)
		m.updateViewport()
		return m, nil

	case updateMsg:
		if e, ok := m.index[msg.id]; ok {
			e.apply(msg.update)
			m.render(e)
			m.updateViewport()
		}
		return m, nil

	case completeMsg:
		if e, ok := m.index[msg.id]; ok {
			e.content = msg.text
			e.widget = msg.widget
			e.loading = false
			e.streaming = false
			m.render(e)
			m.updateViewport()
		}
		return m, nil

	case errorMsg:
		if e, ok := m.index[msg.id]; ok {
			e.streaming = false
			e.loading = false
			m.render(e)
		}
		m.append(&entry{role: "error", content: msg.message})
		return m, nil

	case resultMsg:
		m.pending = max(m.pending-1, 0)
		m.resolve(msg.prompt, msg.result)
		m.updateViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.loading() {
			m.updateViewport()
		}
	}

	// Update text input
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	// Forward navigation keys to viewport for scrolling, but block regular
	// typing keys to prevent the viewport jumping on each keystroke.
	if keyMsg, isKey := msg.(tea.KeyMsg); isKey {
		switch keyMsg.Type {
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd:
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	} else {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	// Status line
	var status string
	if m.pending > 0 {
		status = dimStyle.Render(m.spinner.View() + " streaming... esc to abort")
	} else {
		status = dimStyle.Render("esc or ctrl+c to quit")
	}

	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), m.input.View(), status)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// command handles a line of input
func (m *model) command(text string) tea.Cmd {
	switch text {
	case "/quit", "/exit":
		m.quitting = true
		return tea.Quit
	case "/abort":
		m.abort()
	case "/clear":
		m.abort()
		m.reset()
		m.entries = nil
		m.index = make(map[string]*entry)
		m.updateViewport()
	default:
		m.append(&entry{role: schema.RoleUser, content: text})
		m.pending++
		m.send(text)
	}
	return nil
}

// resolve applies the terminal state of a session to its entry
func (m *model) resolve(prompt string, result schema.Result) {
	e, ok := m.index[result.ID]
	if ok {
		delete(m.index, result.ID)
	}
	switch result.State {
	case schema.StateAborted:
		if ok && e.streaming {
			e.streaming = false
			e.loading = false
			e.note = "aborted"
			m.render(e)
		}
	case schema.StateCompleted:
		if ok && result.Degraded {
			e.streaming = false
			e.loading = false
			e.note = "widget unavailable"
			m.render(e)
		}
		m.record(prompt, result)
	}
}

func (m *model) append(e *entry) {
	m.entries = append(m.entries, e)
	m.render(e)
	m.updateViewport()
}

// loading returns true if any entry is waiting for a widget
func (m *model) loading() bool {
	for _, e := range m.entries {
		if e.loading {
			return true
		}
	}
	return false
}

// render updates the rendered text of an entry. Streaming content is
// word-wrapped, final content goes through glamour.
func (m *model) render(e *entry) {
	var b strings.Builder
	if e.content != "" {
		if e.streaming || e.role == schema.RoleUser || e.role == "error" {
			b.WriteString(indentText(wordwrap.String(e.content, m.wrapWidth())))
		} else {
			b.WriteString(m.markdown(e.content))
		}
	}
	if e.widget != nil {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderWidget(e.widget))
	}
	if e.note != "" {
		b.WriteString("\n" + indentText(dimStyle.Render("("+e.note+")")))
	}
	e.text = b.String()
}

// renderWidget renders the widget payload as a table, or as raw JSON
// when it has no tabular shape
func (m *model) renderWidget(widget *schema.Widget) string {
	title := indentText(systemStyle.Render(widget.Type + " widget"))
	data, err := table.Widget(widget)
	if err != nil {
		return title + "\n" + indentText(dimStyle.Render(string(widget.Data)))
	}
	if m.renderer != nil {
		if out, err := m.renderer.Render(table.RenderMarkdown(data)); err == nil {
			return title + "\n" + strings.TrimRight(out, "\n")
		}
	}
	return title + "\n" + indentText(table.Render(data, m.wrapWidth()))
}

// markdown renders text with glamour, falling back to word wrapping
func (m *model) markdown(text string) string {
	if m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			return strings.TrimRight(strings.TrimLeft(out, "\n"), "\n")
		}
	}
	return indentText(wordwrap.String(text, m.wrapWidth()))
}

// wrapWidth returns the available text width for content, accounting for
// some padding.
func (m *model) wrapWidth() int {
	const margin = 4
	return max(m.width-margin, 20)
}

// newRenderer creates a glamour terminal renderer with the current wrap
// width. Uses the pre-detected style path to avoid querying the terminal
// inside bubbletea's event loop.
func (m *model) newRenderer() {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(m.stylePath),
		glamour.WithWordWrap(m.wrapWidth()),
	)
	if err == nil {
		m.renderer = r
	}
}

func (m *model) updateViewport() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for _, e := range m.entries {
		b.WriteString(styleRole(e.role))
		if e.text != "" {
			b.WriteString("\n" + e.text)
		}
		if e.loading {
			label := "loading widget..."
			if e.widgetType != "" {
				label = "loading " + e.widgetType + " widget..."
			}
			b.WriteString("\n" + indentText(m.spinner.View()+" "+dimStyle.Render(label)))
		} else if e.streaming && e.text == "" {
			b.WriteString("\n" + indentText(m.spinner.View()))
		}
		b.WriteString("\n\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

///////////////////////////////////////////////////////////////////////////////
// ENTRY

// apply merges a partial update into the entry
func (e *entry) apply(update schema.Update) {
	if update.Content != nil {
		e.content = *update.Content
	}
	if update.WidgetLoading != nil {
		e.loading = *update.WidgetLoading
	}
	if update.Widget != nil {
		if update.Widget.Type != "" {
			e.widgetType = update.Widget.Type
		}
		if len(update.Widget.Data) > 0 {
			e.widget = update.Widget
		}
	}
	if update.IsStreaming != nil {
		e.streaming = *update.IsStreaming
	}
}

///////////////////////////////////////////////////////////////////////////////
// HELPERS

// indentText ensures every line has a 2-space indent, matching glamour's
// default left margin so all content is visually consistent.
func indentText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "  ") {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}

func styleRole(role string) string {
	switch role {
	case schema.RoleUser:
		return userStyle.Render(role + ":")
	case schema.RoleAssistant:
		return assistantStyle.Render(role + ":")
	case "error":
		return errorStyle.Render(role + ":")
	default:
		return systemStyle.Render(role + ":")
	}
}

// restoreWidget decodes a widget payload saved in the history
func restoreWidget(data string) *schema.Widget {
	var object struct {
		Type string `json:"type"`
	}
	data = strings.TrimSpace(data)
	if err := json.Unmarshal([]byte(data), &object); err != nil {
		return nil
	}
	return &schema.Widget{Type: object.Type, Data: json.RawMessage(data)}
}
