// Package control maps two-byte control writes onto speaker engine setters
// and produces the compact and extended status records.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cwbudde/algo-speaker/speaker"
)

// Command is the first byte of a control write.
type Command byte

const (
	CmdSetPreset     Command = 0x01
	CmdSetLoudness   Command = 0x02
	CmdGetStatus     Command = 0x03
	CmdSetMute       Command = 0x04
	CmdSetAudioDuck  Command = 0x05
	CmdSetNormalizer Command = 0x06
	CmdSetVolume     Command = 0x07
	CmdSetBypass     Command = 0x08
	CmdSetBassBoost  Command = 0x09
)

var commandNames = map[Command]string{
	CmdSetPreset:     "set-preset",
	CmdSetLoudness:   "set-loudness",
	CmdGetStatus:     "get-status",
	CmdSetMute:       "set-mute",
	CmdSetAudioDuck:  "set-audio-duck",
	CmdSetNormalizer: "set-normalizer",
	CmdSetVolume:     "set-volume",
	CmdSetBypass:     "set-bypass",
	CmdSetBassBoost:  "set-bass-boost",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}

	return fmt.Sprintf("command(0x%02x)", byte(c))
}

// ExtendedStatusVersion is the leading byte of an extended status record.
const ExtendedStatusVersion = 0x42

// Shield bits of the extended status record.
const (
	ShieldMute       = 0x01
	ShieldDuck       = 0x02
	ShieldLoudness   = 0x04
	ShieldNormalizer = 0x08
	ShieldBypass     = 0x10
	ShieldBassBoost  = 0x20
)

// placeholderLevel fills the two reserved level bytes.
const placeholderLevel = 100

// DefaultNotifyInterval is the default period of Run.
const DefaultNotifyInterval = 500 * time.Millisecond

var (
	// ErrShortWrite is returned for writes shorter than two bytes.
	ErrShortWrite = errors.New("control: write too short")

	// ErrUnknownCommand is returned for an unrecognized command byte.
	ErrUnknownCommand = errors.New("control: unknown command")
)

// Engine is the part of the speaker engine driven by a Controller.
type Engine interface {
	SetPreset(p speaker.Preset) error
	SetLoudness(on bool) error
	SetMute(on bool) error
	SetAudioDuck(on bool) error
	SetNormalizer(on bool) error
	SetVolumeTrim(v int) error
	SetBypass(on bool) error
	SetBassBoost(on bool) error
	Status() speaker.Status
	Snapshot() speaker.Snapshot
}

// Result describes the effect of a handled command.
type Result struct {
	// Persist is set when the command changed a persisted setting class
	// (preset, loudness, bass boost).
	Persist bool
}

// Controller dispatches control writes. It is safe for concurrent use.
type Controller struct {
	engine Engine
	log    *slog.Logger
	now    func() time.Time

	mu          sync.Mutex
	lastContact time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Controller for engine.
func New(engine Engine, opts ...Option) *Controller {
	c := &Controller{
		engine: engine,
		log:    slog.New(slog.DiscardHandler),
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// Write handles a raw control write of the form [cmd, val]. Extra bytes
// are ignored. Every write counts as contact, even a rejected one.
func (c *Controller) Write(data []byte) (Result, error) {
	c.Touch()

	if len(data) < 2 {
		c.log.Warn("control write too short", "len", len(data))
		return Result{}, fmt.Errorf("%w: %d bytes", ErrShortWrite, len(data))
	}

	return c.handle(Command(data[0]), data[1])
}

// Handle applies one command.
func (c *Controller) Handle(cmd Command, val byte) (Result, error) {
	c.Touch()
	return c.handle(cmd, val)
}

func (c *Controller) handle(cmd Command, val byte) (Result, error) {
	on := val != 0

	var (
		err     error
		persist bool
	)

	switch cmd {
	case CmdSetPreset:
		err = c.engine.SetPreset(speaker.Preset(val))
		persist = true
	case CmdSetLoudness:
		err = c.engine.SetLoudness(on)
		persist = true
	case CmdGetStatus:
	case CmdSetMute:
		err = c.engine.SetMute(on)
	case CmdSetAudioDuck:
		err = c.engine.SetAudioDuck(on)
	case CmdSetNormalizer:
		err = c.engine.SetNormalizer(on)
	case CmdSetVolume:
		err = c.engine.SetVolumeTrim(int(val))
	case CmdSetBypass:
		err = c.engine.SetBypass(on)
	case CmdSetBassBoost:
		err = c.engine.SetBassBoost(on)
		persist = true
	default:
		c.log.Warn("unknown control command", "cmd", fmt.Sprintf("0x%02x", byte(cmd)), "val", val)
		return Result{}, fmt.Errorf("%w: 0x%02x", ErrUnknownCommand, byte(cmd))
	}

	if err != nil {
		c.log.Warn("control command rejected", "cmd", cmd.String(), "val", val, "err", err)
		return Result{}, fmt.Errorf("control: %s: %w", cmd, err)
	}

	c.log.Debug("control command", "cmd", cmd.String(), "val", val)

	return Result{Persist: persist}, nil
}

// Touch records contact with the control client.
func (c *Controller) Touch() {
	now := c.now()

	c.mu.Lock()
	c.lastContact = now
	c.mu.Unlock()
}

// LastContact returns the time of the most recent contact, or the zero
// time if there was none.
func (c *Controller) LastContact() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastContact
}

// Status returns the compact status record.
func (c *Controller) Status() [4]byte {
	return c.engine.Status().Bytes()
}

// ExtendedStatus returns
// [0x42, preset, shield, 100, effectiveVolume, 100, secondsSinceContact].
// The age saturates at 255 and reads 255 before the first contact.
func (c *Controller) ExtendedStatus() [7]byte {
	s := c.engine.Snapshot()

	var shield byte
	if s.Muted {
		shield |= ShieldMute
	}

	if s.AudioDuck {
		shield |= ShieldDuck
	}

	if s.Loudness {
		shield |= ShieldLoudness
	}

	if s.Normalizer {
		shield |= ShieldNormalizer
	}

	if s.Bypass {
		shield |= ShieldBypass
	}

	if s.BassBoost {
		shield |= ShieldBassBoost
	}

	return [7]byte{
		ExtendedStatusVersion,
		byte(s.Preset),
		shield,
		placeholderLevel,
		byte(s.EffectiveVolume),
		placeholderLevel,
		c.contactAge(),
	}
}

func (c *Controller) contactAge() byte {
	last := c.LastContact()
	if last.IsZero() {
		return 255
	}

	age := int64(c.now().Sub(last) / time.Second)

	return byte(min(max(age, 0), 255))
}

// Run calls notify with the extended status every interval until ctx is
// done. A non-positive interval selects DefaultNotifyInterval.
func (c *Controller) Run(ctx context.Context, interval time.Duration, notify func([7]byte)) error {
	if interval <= 0 {
		interval = DefaultNotifyInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			notify(c.ExtendedStatus())
		}
	}
}
