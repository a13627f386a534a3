// Package tui is a full-screen alternative to the line-based driver loop. It
// only covers the interactive phase; players must already be seated.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/pokerio/fillgame/internal/client"
	"github.com/pokerio/fillgame/internal/roster"
)

// Actor sends action requests.
type Actor interface {
	Act(ctx context.Context, gameID, token string, action roster.Action, amount string) (client.Result, error)
}

type step int

const (
	stepPlayer step = iota
	stepAction
	stepAmount
	stepSending
)

// resultMsg carries the outcome of one action request back into Update.
type resultMsg struct {
	player string
	action roster.Action
	amount string
	result client.Result
	err    error
}

type entry struct {
	line string
	ok   bool
}

// Model is the Bubble Tea model for choosing and sending actions
type Model struct {
	ctx    context.Context
	actor  Actor
	roster *roster.Roster
	gameID string
	styles Styles
	logger *log.Logger

	step         step
	playerCursor int
	actionCursor int
	amountInput  textinput.Model
	historyView  viewport.Model
	history      []entry

	width    int
	height   int
	quitting bool
	err      error
}

// NewModel creates a model for gameID. ctx bounds every request it sends.
func NewModel(ctx context.Context, actor Actor, r *roster.Roster, gameID string, styles Styles, logger *log.Logger) *Model {
	ti := textinput.New()
	ti.Placeholder = "amount"
	ti.CharLimit = 20
	ti.Width = 20
	ti.Prompt = "Amount: "
	ti.PromptStyle = styles.Cursor

	vp := viewport.New(40, 8)

	return &Model{
		ctx:         ctx,
		actor:       actor,
		roster:      r,
		gameID:      gameID,
		styles:      styles,
		logger:      logger.WithPrefix("tui"),
		amountInput: ti,
		historyView: vp,
	}
}

// Run shows the model full-screen until the operator quits.
func Run(ctx context.Context, actor Actor, r *roster.Roster, gameID string, styles Styles, logger *log.Logger) error {
	m := NewModel(ctx, actor, r, gameID, styles, logger)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return m.Err()
}

// Err returns the transport error that ended the session, if any.
func (m *Model) Err() error {
	return m.err
}

// History returns the status lines of every request sent, oldest first.
func (m *Model) History() []string {
	lines := make([]string, len(m.history))
	for i, e := range m.history {
		lines[i] = e.line
	}
	return lines
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.historyView.Width = max(msg.Width-2, 1)
		m.historyView.Height = max(msg.Height-len(roster.Actions)-m.roster.Len()-10, 3)
		return m, nil

	case resultMsg:
		return m.handleResult(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.step {
		case stepSending:
			return m, nil
		case stepAmount:
			return m.updateAmount(msg)
		default:
			return m.updateMenu(msg)
		}
	}

	return m, nil
}

func (m *Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cursor, limit := &m.playerCursor, m.roster.Len()
	if m.step == stepAction {
		cursor, limit = &m.actionCursor, len(roster.Actions)
	}

	switch key := msg.String(); key {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "esc":
		if m.step == stepAction {
			m.step = stepPlayer
		}
	case "up", "k":
		if *cursor > 0 {
			*cursor--
		}
	case "down", "j":
		if *cursor < limit-1 {
			*cursor++
		}
	case "enter":
		return m.advance()
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			if i := int(key[0] - '0'); i < limit {
				*cursor = i
			}
		}
	}
	return m, nil
}

func (m *Model) updateAmount(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.amountInput.Blur()
		m.amountInput.Reset()
		m.step = stepAction
		return m, nil
	case "enter":
		amount := strings.TrimSpace(m.amountInput.Value())
		if amount == "" {
			return m, nil
		}
		m.amountInput.Blur()
		m.amountInput.Reset()
		return m.send(amount)
	}

	var cmd tea.Cmd
	m.amountInput, cmd = m.amountInput.Update(msg)
	return m, cmd
}

func (m *Model) advance() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepPlayer:
		m.step = stepAction
		return m, nil
	case stepAction:
		if roster.Actions[m.actionCursor].NeedsAmount() {
			m.step = stepAmount
			return m, m.amountInput.Focus()
		}
		return m.send("")
	}
	return m, nil
}

func (m *Model) send(amount string) (tea.Model, tea.Cmd) {
	player, _ := m.roster.Player(m.playerCursor)
	action := roster.Actions[m.actionCursor]
	m.step = stepSending

	ctx, actor, gameID := m.ctx, m.actor, m.gameID
	return m, func() tea.Msg {
		res, err := actor.Act(ctx, gameID, player, action, amount)
		return resultMsg{player: player, action: action, amount: amount, result: res, err: err}
	}
}

func (m *Model) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error("Action failed", "player", msg.player, "action", msg.action, "error", msg.err)
		m.err = fmt.Errorf("failed to send %s for %s: %w", msg.action, msg.player, msg.err)
		m.quitting = true
		return m, tea.Quit
	}

	m.logger.Info("Action sent", "player", msg.player, "action", msg.action, "amount", msg.amount, "status", msg.result.StatusCode)

	line := fmt.Sprintf("%s %s", msg.player, msg.action)
	if msg.amount != "" {
		line += " " + msg.amount
	}
	line += fmt.Sprintf(" -> Status: %d", msg.result.StatusCode)
	m.history = append(m.history, entry{line: line, ok: msg.result.OK()})

	m.step = stepPlayer
	return m, nil
}

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Game " + m.gameID))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Title.Render("Players:"))
	b.WriteString("\n")
	for i, p := range m.roster.Players() {
		b.WriteString(m.renderItem(i, p, i == m.playerCursor, m.step == stepPlayer))
	}
	b.WriteString("\n")

	if m.step != stepPlayer {
		b.WriteString(m.styles.Title.Render("Actions:"))
		b.WriteString("\n")
		for i, a := range roster.Actions {
			b.WriteString(m.renderItem(i, a.String(), i == m.actionCursor, m.step == stepAction))
		}
		b.WriteString("\n")
	}

	switch m.step {
	case stepAmount:
		b.WriteString(m.amountInput.View())
		b.WriteString("\n\n")
	case stepSending:
		b.WriteString(m.styles.Info.Render("Sending..."))
		b.WriteString("\n\n")
	}

	m.historyView.SetContent(m.renderHistory())
	m.historyView.GotoBottom()
	b.WriteString(m.styles.History.Render(m.historyView.View()))
	b.WriteString("\n")
	b.WriteString(m.styles.Info.Render("↑/↓ or 0-9 select • enter confirm • esc back • q quit"))

	return b.String()
}

func (m *Model) renderItem(i int, label string, selected, active bool) string {
	line := fmt.Sprintf("%d. %s", i, label)
	if selected && active {
		return m.styles.Cursor.Render("> "+line) + "\n"
	}
	if selected {
		return m.styles.Item.Render("* "+line) + "\n"
	}
	return m.styles.Item.Render("  "+line) + "\n"
}

func (m *Model) renderHistory() string {
	if len(m.history) == 0 {
		return m.styles.Info.Render("No actions sent yet")
	}
	lines := make([]string, len(m.history))
	for i, e := range m.history {
		style := m.styles.Success
		if !e.ok {
			style = m.styles.Error
		}
		lines[i] = style.Render(e.line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
