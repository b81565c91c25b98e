// Package replui is the interactive REPL's terminal UI: a scrollback
// viewport plus a single-line input, driving one session's worth of
// EvalRequest work items through the executor pool.
package replui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const helpText = `# jhp repl

Type a JavaScript expression or statement and press Enter to evaluate it
against the document root's bindings. Each line runs in its own fresh
context, same as a rendered document: nothing declared on one line is
visible on the next. Type ` + "`:help`" + ` to see this again,
` + "`:quit`" + ` or Ctrl-C to exit.
`

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// EvalFunc evaluates one line of source in a fresh context and returns its
// printed value or an error.
type EvalFunc func(source string) (string, error)

// Model is the bubbletea model driving the REPL.
type Model struct {
	input    textinput.Model
	history  viewport.Model
	lines    []string
	eval     EvalFunc
	renderer *glamour.TermRenderer
	ready    bool
}

// New builds a REPL Model that evaluates input through eval.
func New(eval EvalFunc) Model {
	ti := textinput.New()
	ti.Placeholder = "js> "
	ti.Prompt = "js> "
	ti.Focus()

	renderer, _ := glamour.NewTermRenderer(glamour.WithAutoStyle())

	return Model{
		input:    ti,
		eval:     eval,
		renderer: renderer,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.history = viewport.New(msg.Width, msg.Height-3)
			m.ready = true
		} else {
			m.history.Width = msg.Width
			m.history.Height = msg.Height - 3
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if line == "" {
		return m, nil
	}

	m.lines = append(m.lines, promptStyle.Render("js> ")+line)

	switch line {
	case ":quit":
		return m, tea.Quit
	case ":help":
		if out, err := m.renderer.Render(helpText); err == nil {
			m.lines = append(m.lines, out)
		} else {
			m.lines = append(m.lines, helpText)
		}
	default:
		out, err := m.eval(line)
		if err != nil {
			m.lines = append(m.lines, errorStyle.Render(err.Error()))
		} else {
			m.lines = append(m.lines, valueStyle.Render(out))
		}
	}

	if m.ready {
		m.history.SetContent(strings.Join(m.lines, "\n"))
		m.history.GotoBottom()
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "initializing...\n"
	}
	return fmt.Sprintf("%s\n%s", m.history.View(), m.input.View())
}
