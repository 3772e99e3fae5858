package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mopidy-bridge/internal/bridge"
	"github.com/five82/mopidy-bridge/internal/command"
	"github.com/five82/mopidy-bridge/internal/player"
	"github.com/five82/mopidy-bridge/internal/prefs"
	"github.com/five82/mopidy-bridge/internal/spotify"
	"github.com/five82/mopidy-bridge/internal/state"
)

// ErrInterrupted is returned by Run when the user pressed ctrl+c.
var ErrInterrupted = errors.New("interrupted")

const (
	quitCommand = "q"
	addCommand  = "add"
	maxHistory  = 200
)

// Dispatcher runs one named command.
type Dispatcher interface {
	DispatchName(ctx context.Context, name, url string) error
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Dispatcher Dispatcher
	Store      *state.Store
	PollTick   time.Duration
	ThemeName  string
	PrefsPath  string
}

type inputMode int

const (
	modeCommand inputMode = iota
	modeURL
)

type line struct {
	text string
	kind lineKind
}

type lineKind int

const (
	lineEcho lineKind = iota
	lineOK
	lineWarn
	lineError
)

// Model is the REPL state for Bubble Tea.
type Model struct {
	ctx        context.Context
	dispatcher Dispatcher
	store      *state.Store
	prefsPath  string
	pollTick   time.Duration

	theme Theme
	keys  keyMap
	width int

	input textinput.Model
	mode  inputMode
	busy  bool

	snapshot state.Snapshot
	history  []line

	interrupted bool
	fatal       error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	input := textinput.New()
	input.CharLimit = 512
	input.Focus()

	m := Model{
		ctx:        ctx,
		dispatcher: opts.Dispatcher,
		store:      opts.Store,
		prefsPath:  opts.PrefsPath,
		pollTick:   pollTick,
		keys:       DefaultKeyMap(),
		input:      input,
	}
	m.setTheme(GetTheme(opts.ThemeName))
	m.setMode(modeCommand)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-12, 10)
		return m, nil

	case tickMsg:
		var cmds []tea.Cmd
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		cmds = append(cmds, tickCmd(m.pollTick))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case dispatchedMsg:
		return m.handleDispatched(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.interrupted = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.CycleTheme):
		m.setTheme(GetTheme(NextTheme(m.theme.Name)))
		name := m.theme.Name
		if m.prefsPath != "" {
			_ = prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name })
		}
		return m, nil
	}

	// One command in flight at a time.
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.mode == modeURL {
			m.setMode(modeCommand)
			m.input.Reset()
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	m.input.Reset()

	if m.mode == modeURL {
		m.setMode(modeCommand)
		m.echo("url: " + value)
		return m.dispatch(addCommand, value)
	}

	switch strings.ToLower(value) {
	case "":
		return m, nil
	case quitCommand:
		return m, tea.Quit
	case addCommand:
		m.echo(value)
		m.setMode(modeURL)
		return m, nil
	}
	m.echo(value)
	return m.dispatch(value, "")
}

func (m Model) dispatch(name, url string) (tea.Model, tea.Cmd) {
	if m.dispatcher == nil {
		return m, nil
	}
	m.busy = true
	m.input.Blur()
	return m, dispatchCmd(m.ctx, m.dispatcher, name, url)
}

func (m Model) handleDispatched(msg dispatchedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.input.Focus()

	if bridge.IsFatal(msg.err) {
		m.fatal = msg.err
		return m, tea.Quit
	}
	m.appendLine(describe(msg))

	if m.store != nil {
		return m, fetchSnapshotCmd(m.store)
	}
	return m, nil
}

// describe turns a dispatch result into a one-line message.
func describe(msg dispatchedMsg) line {
	switch {
	case msg.err == nil:
		return line{text: "sent " + msg.name, kind: lineOK}
	case errors.Is(msg.err, bridge.ErrUnrecognized):
		return line{text: "Not a valid command!", kind: lineWarn}
	case errors.Is(msg.err, spotify.ErrInvalidURL):
		return line{text: "Incorrect spotify url", kind: lineWarn}
	case errors.Is(msg.err, player.ErrNotFound):
		return line{text: "Nothing found for that url", kind: lineWarn}
	default:
		return line{text: msg.err.Error(), kind: lineError}
	}
}

func (m *Model) setMode(mode inputMode) {
	m.mode = mode
	switch mode {
	case modeURL:
		m.input.Prompt = "url> "
		m.input.Placeholder = "https://open.spotify.com/..."
	default:
		m.input.Prompt = "> "
		m.input.Placeholder = strings.Join(append(command.Names(), quitCommand), ", ")
	}
}

func (m *Model) setTheme(theme Theme) {
	m.theme = theme
	m.input.PromptStyle = theme.Styles().Prompt
}

func (m *Model) echo(text string) {
	m.appendLine(line{text: text, kind: lineEcho})
}

func (m *Model) appendLine(l line) {
	m.history = append(m.history, l)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}

// View implements tea.Model.
func (m Model) View() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(m.renderHeader(styles))
	b.WriteString("\n\n")

	for _, l := range m.history {
		switch l.kind {
		case lineOK:
			b.WriteString(styles.SuccessText.Render(l.text))
		case lineWarn:
			b.WriteString(styles.WarningText.Render(l.text))
		case lineError:
			b.WriteString(styles.DangerText.Render(l.text))
		default:
			b.WriteString(styles.MutedText.Render(l.text))
		}
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString(styles.MutedText.Render("..."))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter(styles))
	return b.String()
}

func (m Model) renderHeader(styles Styles) string {
	snap := m.snapshot
	parts := []string{
		styles.Logo.Render("mopidy-bridge"),
		styles.Text.Render(fmt.Sprintf("vol %d", snap.Volume)),
	}
	if snap.LastOutcome != "" {
		parts = append(parts,
			styles.MutedText.Render(snap.LastEvent),
			styles.OutcomeStyle(snap.LastOutcome).Render(string(snap.LastOutcome)))
	}
	if snap.IsDegraded() {
		parts = append(parts, styles.DangerText.Render(fmt.Sprintf("%d failures", snap.ConsecutiveFailures)))
	}
	return styles.Header.Render(strings.Join(parts, "  "))
}

func (m Model) renderFooter(styles Styles) string {
	var hints []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return styles.MutedText.Render(strings.Join(hints, " · "))
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type dispatchedMsg struct {
	name string
	err  error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func dispatchCmd(ctx context.Context, d Dispatcher, name, url string) tea.Cmd {
	return func() tea.Msg {
		return dispatchedMsg{name: name, err: d.DispatchName(ctx, name, url)}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// ends. It returns ErrInterrupted for ctrl+c and the transport error when the
// server became unreachable.
func Run(opts Options) error {
	m := New(opts)
	program := tea.NewProgram(m, tea.WithContext(m.ctx))
	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
			return nil
		}
		return err
	}
	if fm, ok := final.(Model); ok {
		if fm.fatal != nil {
			return fm.fatal
		}
		if fm.interrupted {
			return ErrInterrupted
		}
	}
	return nil
}
