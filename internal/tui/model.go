// Package tui is the interactive terminal front end: a query box, an
// answer panel with the retrieved context, and a latency line.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/service"
)

// AssistantPort is the TUI-facing subset of the orchestrator.
type AssistantPort interface {
	Answer(ctx context.Context, req service.AnswerRequest) (service.Answer, error)
	History() *service.History
}

// Model is the Bubble Tea model for the assistant TUI.
type Model struct {
	assistant   AssistantPort
	input       textinput.Model
	viewport    viewport.Model
	answer      *service.Answer
	status      string
	banner      string
	chapter     string
	showContext bool
	ready       bool
}

// New creates a new TUI model. The banner line typically carries the
// ingestion digest.
func New(assistant AssistantPort, banner string) Model {
	ti := textinput.New()
	ti.Prompt = "You> "
	ti.Placeholder = "Ask about the manual (exit, clear, history, /chapter NAME)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		assistant:   assistant,
		input:       ti,
		viewport:    vp,
		banner:      banner,
		showContext: true,
		status:      "Ready. Type a question and press Enter.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // banner+header, status, query box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			return m.submit()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}
	m.input.SetValue("")

	switch strings.ToLower(line) {
	case "exit", "quit":
		return m, tea.Quit
	case "clear":
		m.assistant.History().Clear()
		m.answer = nil
		m.status = "Conversation history cleared."
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case "history":
		m.viewport.SetContent(m.renderHistory())
		m.status = "Conversation history."
		return m, nil
	case "context":
		m.showContext = !m.showContext
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	}
	if rest, ok := strings.CutPrefix(line, "/chapter"); ok {
		m.chapter = strings.TrimSpace(rest)
		if m.chapter == "" {
			m.status = "Chapter filter cleared (auto-detect)."
		} else {
			m.status = fmt.Sprintf("Chapter filter: %s", m.chapter)
		}
		return m, nil
	}

	ans, err := m.assistant.Answer(context.Background(), service.AnswerRequest{
		Query:   line,
		Chapter: m.chapter,
	})
	if err != nil {
		m.status = "Error: " + err.Error()
		m.answer = nil
	} else {
		m.answer = &ans
		m.status = fmt.Sprintf("retrieval %dms · generation %dms · total %dms · chunks %d · chapter %s",
			ans.RetrievalLatency.Milliseconds(), ans.GenerationLatency.Milliseconds(),
			ans.TotalLatency().Milliseconds(), len(ans.Results), orDash(ans.Chapter))
	}
	m.viewport.SetContent(m.renderAnswer())
	return m, nil
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Tesla Model 3 — Hybrid RAG Assistant")
	banner := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.banner)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	body := answerBoxStyle.Render(m.viewport.View())
	return header + "\n" + banner + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		return "Ask a question about the manual."
	}
	var b strings.Builder
	b.WriteString(answerStyle.Render(m.answer.Text))
	if m.showContext && len(m.answer.Results) > 0 {
		b.WriteString("\n\n")
		b.WriteString(contextHeaderStyle.Render("Retrieved context"))
		for i, r := range m.answer.Results {
			b.WriteString(fmt.Sprintf("\n%d. score=%.3f  page %d  %s / %s\n   %s",
				i+1, r.Score, r.Chunk.Page, orDash(r.Chunk.Chapter), orDash(r.Chunk.Heading),
				snippet(r.Chunk.Text, 200)))
		}
	}
	return b.String()
}

func (m Model) renderHistory() string {
	turns := m.assistant.History().Turns()
	if len(turns) == 0 {
		return "[None]"
	}
	var lines []string
	for _, t := range turns {
		lines = append(lines, "[User] "+t.Query, "[AI] "+t.Answer)
	}
	return strings.Join(lines, "\n")
}

var (
	answerBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	answerStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	contextHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
