// Package playground is an interactive terminal editor for trying out an
// input field configuration: rich text, emoji, mentions, filters and the
// keyboard bridge.
package playground

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/richinput/internal/config"
	"github.com/zjrosen/richinput/internal/inputfield"
	"github.com/zjrosen/richinput/internal/keyboard"
	"github.com/zjrosen/richinput/internal/keys"
	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/pubsub"
	"github.com/zjrosen/richinput/internal/symbol"
)

const (
	tickInterval = 100 * time.Millisecond
	maxLogLines  = 200
	maxMatches   = 5
	logHeight    = 8
)

type (
	tickMsg   time.Time
	reloadMsg struct{}
)

// Option configures a Model.
type Option func(*Model)

// WithClock sets the clock driving the field and its filters.
func WithClock(clock func() time.Time) Option {
	return func(m *Model) { m.clock = clock }
}

// WithReload rebuilds the field from load whenever changed fires.
func WithReload(changed <-chan struct{}, load func() (config.Config, error)) Option {
	return func(m *Model) {
		m.reload = changed
		m.load = load
	}
}

// WithEngineOptions passes extra options to every engine the model builds.
func WithEngineOptions(opts ...inputfield.Option) Option {
	return func(m *Model) { m.engineOpts = append(m.engineOpts, opts...) }
}

// Model is the playground's Bubble Tea model.
type Model struct {
	field      *field
	measurer   *inputfield.TerminalMeasurer
	clock      func() time.Time
	engineOpts []inputfield.Option

	ctx    context.Context
	cancel context.CancelFunc
	logs   *log.LogListener

	keys       keys.KeyMap
	pickerKeys keys.PickerKeyMap
	help       help.Model
	viewport   viewport.Model
	logLines   []string
	showLog    bool

	matches []symbol.BindingData
	pick    int

	reload <-chan struct{}
	load   func() (config.Config, error)

	status    string
	lastEvent pubsub.EventType
	width     int
	height    int
}

// New builds the playground for cfg.
func New(cfg config.Config, opts ...Option) (Model, error) {
	m := Model{
		measurer:   &inputfield.TerminalMeasurer{Width: 60},
		clock:      time.Now,
		keys:       keys.DefaultKeyMap(),
		pickerKeys: keys.DefaultPickerKeyMap(),
		help:       help.New(),
		viewport:   viewport.New(60, logHeight),
		width:      64,
	}
	for _, opt := range opts {
		opt(&m)
	}

	f, err := newField(cfg, m.measurer, m.clock, m.engineOpts)
	if err != nil {
		return Model{}, err
	}
	m.field = f
	m.field.tick(m.clock())

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.logs = log.NewListener(m.ctx)
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listenChanges(), m.tickCmd()}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	if m.reload != nil {
		cmds = append(cmds, m.waitReload())
	}
	return tea.Batch(cmds...)
}

// Close releases the field and stops listening for log entries.
func (m Model) Close() {
	m.cancel()
	m.field.close()
}

// Engine returns the field's engine.
func (m Model) Engine() *inputfield.Engine {
	return m.field.engine
}

func (m Model) listenChanges() tea.Cmd {
	return pubsub.ListenCmd(m.ctx, m.field.changes)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) waitReload() tea.Cmd {
	ch := m.reload
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return reloadMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.measurer.Width = max(msg.Width-4, 1)
		m.viewport.Width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tickMsg:
		now := time.Time(msg)
		m.field.engine.Update(now)
		m.field.tick(now)
		return m, m.tickCmd()

	case pubsub.Event[inputfield.Change]:
		if msg.Payload.SessionID == m.field.engine.SessionID() {
			m.lastEvent = msg.Type
		}
		return m, m.listenChanges()

	case log.LogEvent:
		m.appendLog(msg.Payload)
		return m, m.logs.Listen()

	case reloadMsg:
		m = m.reloadField()
		return m, tea.Batch(m.waitReload(), m.listenChanges())
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if len(m.matches) > 0 {
		if handled, next := m.handlePickerKey(msg); handled {
			return next, nil
		}
	}

	e := m.field.engine
	wasEditing := e.Editing()
	switch {
	case key.Matches(msg, m.keys.ToggleLog):
		m.showLog = !m.showLog
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Left):
		m.field.bridge.OnMove(keyboard.EventMoveLeft, false, false)
	case key.Matches(msg, m.keys.Right):
		m.field.bridge.OnMove(keyboard.EventMoveRight, false, false)
	case key.Matches(msg, m.keys.Up):
		m.field.bridge.OnMove(keyboard.EventMoveUp, false, false)
	case key.Matches(msg, m.keys.Down):
		m.field.bridge.OnMove(keyboard.EventMoveDown, false, false)
	case key.Matches(msg, m.keys.WordLeft):
		m.field.bridge.OnMove(keyboard.EventMoveLeft, false, true)
	case key.Matches(msg, m.keys.WordRight):
		m.field.bridge.OnMove(keyboard.EventMoveRight, false, true)
	case key.Matches(msg, m.keys.SelectLeft):
		m.field.bridge.OnMove(keyboard.EventMoveLeft, true, false)
	case key.Matches(msg, m.keys.SelectRight):
		m.field.bridge.OnMove(keyboard.EventMoveRight, true, false)
	case key.Matches(msg, m.keys.Home):
		e.Select(0, 0)
	case key.Matches(msg, m.keys.End):
		n := e.Selection().Len()
		e.Select(n, n)
	case key.Matches(msg, m.keys.SelectAll):
		e.SelectAll()

	case key.Matches(msg, m.keys.Backspace):
		e.Backspace()
	case key.Matches(msg, m.keys.Delete):
		e.DeleteForward()
	case key.Matches(msg, m.keys.Newline):
		e.Insert("\n")
	case key.Matches(msg, m.keys.Submit):
		m.report(m.field.platform.Done())
	case key.Matches(msg, m.keys.Cancel):
		m.field.bridge.OnCancel()
	case key.Matches(msg, m.keys.Cut):
		m.status = fmt.Sprintf("cut %q", e.Cut())
	case key.Matches(msg, m.keys.Copy):
		m.status = fmt.Sprintf("copied %q", e.Copy())
	case key.Matches(msg, m.keys.Paste):
		m.status = "paste with your terminal's paste shortcut"

	case key.Matches(msg, m.keys.Bold):
		e.ToggleBold()
	case key.Matches(msg, m.keys.Italic):
		e.ToggleItalic()
	case key.Matches(msg, m.keys.Underline):
		e.ToggleUnderline()

	case msg.Type == tea.KeyRunes && msg.Paste:
		e.Paste(string(msg.Runes))
	case msg.Type == tea.KeyRunes && !msg.Alt:
		m.report(m.field.platform.Type(string(msg.Runes)))
	case msg.Type == tea.KeySpace:
		m.report(m.field.platform.Type(" "))

	default:
		return m, nil
	}

	m.field.tick(m.clock())
	if wasEditing && !e.Editing() {
		if key.Matches(msg, m.keys.Cancel) {
			m.status = "edit cancelled"
		} else {
			m.status = fmt.Sprintf("submitted %q", e.ProcessedText())
		}
		m.report(m.field.show())
		m.field.tick(m.clock())
	}
	m.refreshMatches()
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (bool, Model) {
	switch {
	case key.Matches(msg, m.pickerKeys.Next):
		m.pick = (m.pick + 1) % len(m.matches)
	case key.Matches(msg, m.pickerKeys.Prev):
		m.pick = (m.pick + len(m.matches) - 1) % len(m.matches)
	case key.Matches(msg, m.pickerKeys.Accept):
		m.acceptMention(m.matches[m.pick])
	case key.Matches(msg, m.pickerKeys.Dismiss):
		m.matches, m.pick = nil, 0
	default:
		return false, m
	}
	return true, m
}

// handleMouse inserts a mention clicked in the picker.
func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m
	}
	for i, b := range m.matches {
		if z := zone.Get(mentionZoneID(i)); z != nil && z.InBounds(msg) {
			m.acceptMention(b)
			break
		}
	}
	return m
}

func (m *Model) acceptMention(b symbol.BindingData) {
	mention, ok := m.field.tagUser.Mention()
	if !ok {
		m.matches, m.pick = nil, 0
		return
	}
	m.field.engine.ReplaceRange(mention.Start, mention.End, b.Text())
	m.field.tick(m.clock())
	m.matches, m.pick = nil, 0
	log.Debug(log.CatUI, "Mention inserted", "name", b.Name)
}

func (m *Model) refreshMatches() {
	if m.field.tagUser == nil {
		return
	}
	m.matches = m.field.tagUser.Suggestions(maxMatches)
	if m.pick >= len(m.matches) {
		m.pick = 0
	}
}

// report shows err in the status line.
func (m *Model) report(err error) {
	if err != nil {
		log.ErrorErr(log.CatUI, "Keyboard error", err)
		m.status = errorStyle.Render(err.Error())
	}
}

func (m *Model) appendLog(entry string) {
	m.logLines = append(m.logLines, strings.TrimRight(entry, "\n"))
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.viewport.SetContent(strings.Join(m.truncatedLogs(), "\n"))
	m.viewport.GotoBottom()
}

// reloadField rebuilds the field from the reloaded config and carries the
// current document over.
func (m Model) reloadField() Model {
	cfg, err := m.load()
	if err != nil {
		log.ErrorErr(log.CatConfig, "Config reload failed", err)
		m.status = errorStyle.Render("reload failed: " + err.Error())
		return m
	}
	f, err := newField(cfg, m.measurer, m.clock, m.engineOpts)
	if err != nil {
		log.ErrorErr(log.CatConfig, "Config reload failed", err)
		m.status = errorStyle.Render("reload failed: " + err.Error())
		return m
	}

	old := m.field
	if f.engine.RichTextEnabled() && old.engine.RichTextEnabled() {
		f.engine.SetRichText(old.engine.RichText())
	} else {
		f.engine.SetText(old.engine.Text())
	}
	old.close()

	f.tick(m.clock())
	m.field = f
	m.matches, m.pick = nil, 0
	m.status = "config reloaded"
	log.Info(log.CatConfig, "Config reloaded")
	return m
}
