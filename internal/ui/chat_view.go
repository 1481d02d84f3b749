package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"docuchat/internal/logging"
	"docuchat/internal/rag"
)

// ChatViewModel is the conversation screen for the active knowledge base.
// It only talks to the session's public API.
type ChatViewModel struct {
	session  *rag.Session
	kbName   string
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	lines   []chatLine
	waiting bool
	width   int
	height  int
}

type chatLine struct {
	role string // "user", "ai", "sys"
	text string
}

// BackToList is sent when the user leaves the chat screen.
type BackToList struct{}

// SysMsg carries fire-and-forget status text into the chat transcript.
type SysMsg struct {
	Text string
}

type askDoneMsg struct {
	result rag.AskResult
}

func NewChatViewModel(session *rag.Session, kbName string, width, height int) ChatViewModel {
	ti := textinput.New()
	ti.Placeholder = "Ask a question..."
	ti.CharLimit = 2000
	ti.Width = width - 6
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(width-4, height-6)

	return ChatViewModel{
		session:  session,
		kbName:   kbName,
		viewport: vp,
		input:    ti,
		spinner:  sp,
		renderer: newMarkdownRenderer(width),
		width:    width,
		height:   height,
	}
}

// newMarkdownRenderer builds a glamour renderer, degrading to plain text
// rendering when the terminal profile cannot be detected.
func newMarkdownRenderer(width int) *glamour.TermRenderer {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-10),
	)
	if err != nil {
		logging.Error("failed to create markdown renderer: %v", err)
		return nil
	}
	return renderer
}

func (m ChatViewModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m ChatViewModel) Update(msg tea.Msg) (ChatViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 6
		m.input.Width = msg.Width - 6
		m.renderer = newMarkdownRenderer(msg.Width)
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg {
				return BackToList{}
			}

		case "enter":
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				return m, nil
			}
			m.input.SetValue("")
			if strings.HasPrefix(question, "/") {
				m.appendLine("sys", m.runCommand(question))
				return m, nil
			}
			m.appendLine("user", question)
			m.waiting = true
			return m, tea.Batch(m.askCmd(question), m.spinner.Tick)
		}

	case SysMsg:
		m.appendLine("sys", msg.Text)
		return m, nil

	case askDoneMsg:
		m.waiting = false
		if msg.result.Err != nil {
			m.appendLine("sys", fmt.Sprintf("Error: %v", msg.result.Err))
		} else {
			m.appendLine("ai", msg.result.Answer.Text)
		}
		return m, nil

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// askCmd runs the question through the session. Commands run off the
// event loop, so waiting on the result channel here keeps the UI live.
func (m ChatViewModel) askCmd(question string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		ch, err := session.AskAsync(context.Background(), question)
		if err != nil {
			return askDoneMsg{result: rag.AskResult{Err: err}}
		}
		return askDoneMsg{result: <-ch}
	}
}

// runCommand handles in-chat settings commands. Changes apply to the
// next question; the indexed passages are untouched.
func (m *ChatViewModel) runCommand(input string) string {
	fields := strings.Fields(input)
	cmd := fields[0]
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	ctx := context.Background()
	switch cmd {
	case "/help":
		return "commands: /temp <0..2>, /topk <n>, /model <name>, /config"

	case "/config":
		cfg := m.session.Config()
		return fmt.Sprintf("model=%s temp=%.2f topk=%d ctx=%d", cfg.Model, cfg.Temperature, cfg.TopK, cfg.ContextWindow)

	case "/temp":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return "usage: /temp <0..2>"
		}
		if err := m.session.ApplyConfig(ctx, rag.ChainPatch{Temperature: &v}); err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		return fmt.Sprintf("temperature set to %.2f", m.session.Config().Temperature)

	case "/topk":
		v, err := strconv.Atoi(arg)
		if err != nil {
			return "usage: /topk <n>"
		}
		if err := m.session.ApplyConfig(ctx, rag.ChainPatch{TopK: &v}); err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		return fmt.Sprintf("top k set to %d", m.session.Config().TopK)

	case "/model":
		if arg == "" {
			return "usage: /model <name>"
		}
		if err := m.session.ApplyConfig(ctx, rag.ChainPatch{Model: &arg}); err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		return fmt.Sprintf("model set to %s", m.session.Config().Model)
	}

	return fmt.Sprintf("unknown command %s, try /help", cmd)
}

func (m *ChatViewModel) appendLine(role, text string) {
	m.lines = append(m.lines, chatLine{role: role, text: text})
	m.refreshViewport()
}

func (m *ChatViewModel) refreshViewport() {
	var builder strings.Builder
	for _, line := range m.lines {
		switch line.role {
		case "user":
			builder.WriteString(userLabelStyle.Render("You: "))
			builder.WriteString(line.text)
		case "ai":
			builder.WriteString(aiLabelStyle.Render("AI:"))
			builder.WriteString("\n")
			builder.WriteString(m.renderMarkdown(line.text))
		case "sys":
			builder.WriteString(sysStyle.Render("[SYS] " + line.text))
		}
		builder.WriteString("\n")
	}
	m.viewport.SetContent(builder.String())
	m.viewport.GotoBottom()
}

func (m *ChatViewModel) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text
	}
	rendered, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

func (m ChatViewModel) View() string {
	status := fmt.Sprintf("chatting with %s", activeKBStyle.Render(m.kbName))
	if m.waiting {
		status = m.spinner.View() + " thinking..."
	}

	help := "enter: send • /help: settings • esc: back to list • ctrl+c: quit"

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("docuchat"),
		viewportStyle.Render(m.viewport.View()),
		status,
		m.input.View(),
		helpStyle.Render(help),
	)
}
