// Package chat implements the interactive agent session TUI. It drives the
// same backend contract and tool registry as the benchmark, one conversation
// turn at a time.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agentbench/agentbench/internal/backend"
	"github.com/agentbench/agentbench/internal/config"
	"github.com/agentbench/agentbench/internal/harness"
	"github.com/agentbench/agentbench/internal/tools"
)

// maxToolTurns bounds tool chaining within a single conversation turn.
const maxToolTurns = 4

// viewState represents the current state of the application's view.
type viewState int

const (
	// viewModelSelector is the state where the user picks a model.
	viewModelSelector viewState = iota
	// viewChat is the state where the user is talking to the agent.
	viewChat
)

// turnResult is what one agent turn produces: the final reply plus a note for
// every tool invocation made along the way.
type turnResult struct {
	Reply     string
	ToolNotes []string
	Elapsed   time.Duration
}

// runTurn executes one conversation turn, resolving tool calls through the
// registry until the backend returns a final answer. It returns the updated
// history on success; on failure the history is returned unchanged.
func runTurn(ctx context.Context, b backend.Backend, reg *tools.Registry, history []backend.Message, temperature float64, timeout time.Duration) ([]backend.Message, turnResult, error) {
	msgs := history
	descs := reg.Descriptors()
	var notes []string
	start := time.Now()

	for turn := 0; ; turn++ {
		if turn > maxToolTurns {
			return history, turnResult{}, fmt.Errorf("model kept requesting tools after %d turns", maxToolTurns)
		}

		sendCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			sendCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		resp, err := b.Send(sendCtx, backend.Request{Messages: msgs, Tools: descs, Temperature: temperature})
		if err != nil {
			return history, turnResult{}, err
		}

		if len(resp.ToolCalls) == 0 {
			msgs = append(msgs, backend.Message{Role: backend.RoleAssistant, Content: resp.Content})
			return msgs, turnResult{Reply: resp.Content, ToolNotes: notes, Elapsed: time.Since(start)}, nil
		}

		msgs = append(msgs, backend.Message{Role: backend.RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls})
		for _, call := range resp.ToolCalls {
			result, execErr := reg.Execute(call.Name, call.Arguments)
			if execErr != nil {
				return history, turnResult{}, execErr
			}
			notes = append(notes, fmt.Sprintf("%s -> %s", call.Name, result))
			msgs = append(msgs, backend.Message{
				Role:       backend.RoleTool,
				Content:    result,
				ToolName:   call.Name,
				ToolCallID: call.ID,
			})
		}
	}
}

// chatEntry is one rendered line of conversation history.
type chatEntry struct {
	role    string // "user", "assistant", or "tool"
	content string
}

// item represents a selectable model in the picker list.
type item struct {
	title string
	desc  string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

// turnDoneMsg is sent when an agent turn completes.
type turnDoneMsg struct {
	history []backend.Message
	result  turnResult
}

// turnErr is sent when an agent turn fails.
type turnErr error

// model is the main Bubble Tea model for the chat TUI.
type model struct {
	refs        []config.ModelRef
	registry    *tools.Registry
	temperature float64
	timeout     time.Duration

	state     viewState
	isLoading bool
	err       error

	modelList list.Model
	textArea  textarea.Model
	viewport  viewport.Model
	spinner   spinner.Model

	backend backend.Backend
	history []backend.Message
	entries []chatEntry

	width, height    int
	requestStartTime time.Time
}

func initialModel(refs []config.ModelRef, reg *tools.Registry, temperature float64, timeout time.Duration) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.Prompt = "Ask Anything: "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	items := make([]list.Item, len(refs))
	for i, r := range refs {
		items[i] = item{title: r.Model, desc: fmt.Sprintf("%s (%s)", r.Host.Name, r.Host.Type)}
	}
	modelList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	modelList.Title = "Select a Model"

	return &model{
		refs:        refs,
		registry:    reg,
		temperature: temperature,
		timeout:     timeout,
		state:       viewModelSelector,
		spinner:     s,
		textArea:    ta,
		modelList:   modelList,
		viewport:    viewport.New(100, 5),
	}
}

func buildBackend(ref config.ModelRef) backend.Backend {
	if ref.Host.Type == config.HostTypeOpenAI {
		return backend.NewOpenAI(ref.Host.URL, ref.Model)
	}
	return backend.NewOllama(ref.Host.URL, ref.Model)
}

func runTurnCmd(b backend.Backend, reg *tools.Registry, history []backend.Message, temperature float64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		updated, result, err := runTurn(context.Background(), b, reg, history, temperature, timeout)
		if err != nil {
			return turnErr(err)
		}
		return turnDoneMsg{history: updated, result: result}
	}
}

// Init implements tea.Model.
func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			if m.state == viewChat && !m.isLoading {
				m.state = viewModelSelector
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.modelList.SetSize(msg.Width-2, msg.Height-4)
		m.textArea.SetWidth(msg.Width - 3)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 8

	case turnDoneMsg:
		m.isLoading = false
		m.history = msg.history
		for _, note := range msg.result.ToolNotes {
			m.entries = append(m.entries, chatEntry{role: "tool", content: note})
		}
		m.entries = append(m.entries, chatEntry{role: "assistant", content: msg.result.Reply})
		m.textArea.Focus()
		m.viewport.GotoBottom()
		return m, nil

	case turnErr:
		m.isLoading = false
		m.err = msg
		m.textArea.Focus()
		return m, nil
	}

	switch m.state {
	case viewModelSelector:
		m.modelList, cmd = m.modelList.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			if _, ok := m.modelList.SelectedItem().(item); ok {
				ref := m.refs[m.modelList.Index()]
				m.backend = buildBackend(ref)
				m.history = []backend.Message{{Role: backend.RoleSystem, Content: harness.SystemPrompt}}
				m.entries = nil
				m.err = nil
				m.state = viewChat
				m.textArea.Focus()
			}
		}

	case viewChat:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)

		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" && !m.isLoading {
			userInput := strings.TrimSpace(m.textArea.Value())
			if userInput != "" {
				m.history = append(m.history, backend.Message{Role: backend.RoleUser, Content: userInput})
				m.entries = append(m.entries, chatEntry{role: "user", content: userInput})
				m.textArea.Reset()
				m.isLoading = true
				m.err = nil
				m.requestStartTime = time.Now()
				cmds = append(cmds, m.spinner.Tick, runTurnCmd(m.backend, m.registry, m.history, m.temperature, m.timeout))
			}
		}
	}

	if m.isLoading {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.state == viewModelSelector {
		return lipgloss.NewStyle().Margin(1, 2).Render(m.modelList.View())
	}
	return m.chatView()
}

func (m *model) chatView() string {
	var builder strings.Builder

	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	help := lipgloss.NewStyle().Faint(true).Render(" (tab to change model, esc to quit)")
	builder.WriteString(headerStyle.Render(fmt.Sprintf("Model: %s", m.backend.Model())) + help + "\n\n")

	userStyle := lipgloss.NewStyle().Bold(true)
	assistantStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	toolStyle := lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("86"))

	var historyBuilder strings.Builder
	for _, e := range m.entries {
		switch e.role {
		case "assistant":
			role := assistantStyle.Render("Assistant: ")
			wrapped := lipgloss.NewStyle().Width(m.width - lipgloss.Width(role) - 2).Render(e.content)
			historyBuilder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, role, wrapped) + "\n")
		case "tool":
			historyBuilder.WriteString(toolStyle.Render("  [tool] "+e.content) + "\n")
		default:
			role := userStyle.Render("You: ")
			wrapped := lipgloss.NewStyle().Width(m.width - lipgloss.Width(role) - 2).Render(e.content)
			historyBuilder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, role, wrapped) + "\n")
		}
	}
	m.viewport.SetContent(historyBuilder.String())
	builder.WriteString(m.viewport.View())

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		builder.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.isLoading {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		builder.WriteString("\n" + m.spinner.View() + fmt.Sprintf(" Agent is thinking... %ss", timer))
	} else {
		builder.WriteString("\n" + m.textArea.View())
	}

	return builder.String()
}

// Start launches the interactive chat TUI over the configured models and
// blocks until the user exits.
func Start(cfg config.Config, reg *tools.Registry) error {
	refs, err := cfg.Selected()
	if err != nil {
		return err
	}
	m := initialModel(refs, reg, cfg.Temperature, cfg.RequestTimeout)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running chat program: %w", err)
	}
	return nil
}
