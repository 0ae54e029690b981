// Package console provides the Bubbletea control console of spkdsp: it
// shows the engine state and meters, and maps keys onto control commands.
package console

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-speaker/internal/control"
	"github.com/cwbudde/algo-speaker/speaker"
)

// volumeStep is the trim change per key press.
const volumeStep = 5

// Handler applies control commands.
type Handler interface {
	Handle(cmd control.Command, val byte) (control.Result, error)
	ExtendedStatus() [7]byte
}

// Engine is the read side of the speaker engine.
type Engine interface {
	Snapshot() speaker.Snapshot
	Status() speaker.Status
}

// Model is the Bubbletea model of the console.
type Model struct {
	handler Handler
	engine  Engine
	persist func()
	levels  func() Levels

	Snapshot speaker.Snapshot
	Status   speaker.Status
	Extended [7]byte
	Levels   Levels
	LastErr  error
	Saved    int // persistence requests issued

	Width  int
	Height int
}

// Option configures a Model.
type Option func(*Model)

// WithPersist sets the callback for commands that change a persisted
// setting.
func WithPersist(fn func()) Option {
	return func(m *Model) { m.persist = fn }
}

// WithLevels sets the meter source.
func WithLevels(fn func() Levels) Option {
	return func(m *Model) { m.levels = fn }
}

// NewModel creates a console for handler and engine.
func NewModel(handler Handler, engine Engine, opts ...Option) Model {
	m := Model{handler: handler, engine: engine}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}

	m.refresh()

	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if key == "q" || key == "ctrl+c" || key == "esc" {
			return m, tea.Quit
		}

		cmd, val, ok := keyCommand(key, m.Snapshot)
		if !ok {
			return m, nil
		}

		res, err := m.handler.Handle(cmd, val)
		m.LastErr = err

		if err == nil && res.Persist && m.persist != nil {
			m.persist()
			m.Saved++
		}

		m.refresh()

	case StatusMsg:
		m.refresh()
		m.Extended = msg

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}

	return m, nil
}

func (m *Model) refresh() {
	m.Snapshot = m.engine.Snapshot()
	m.Status = m.engine.Status()
	m.Extended = m.handler.ExtendedStatus()

	if m.levels != nil {
		m.Levels = m.levels()
	}
}

// keyCommand maps a key to a control command given the current state.
func keyCommand(key string, s speaker.Snapshot) (control.Command, byte, bool) {
	switch key {
	case "p":
		return control.CmdSetPreset, byte((s.Preset + 1) % speaker.PresetCount), true
	case "1", "2", "3", "4":
		return control.CmdSetPreset, key[0] - '1', true
	case "l":
		return control.CmdSetLoudness, toggle(s.Loudness), true
	case "m":
		return control.CmdSetMute, toggle(s.Muted), true
	case "d":
		return control.CmdSetAudioDuck, toggle(s.AudioDuck), true
	case "n":
		return control.CmdSetNormalizer, toggle(s.Normalizer), true
	case "b":
		return control.CmdSetBypass, toggle(s.Bypass), true
	case "B":
		return control.CmdSetBassBoost, toggle(s.BassBoost), true
	case "+", "=", "up":
		return control.CmdSetVolume, byte(min(s.VolumeTrim+volumeStep, speaker.MaxVolume)), true
	case "-", "down":
		return control.CmdSetVolume, byte(max(s.VolumeTrim-volumeStep, 0)), true
	case "s":
		return control.CmdGetStatus, 0, true
	}

	return 0, 0, false
}

func toggle(on bool) byte {
	if on {
		return 0
	}

	return 1
}
