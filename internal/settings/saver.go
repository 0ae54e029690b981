package settings

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a requested save is written.
const DefaultDebounce = 1500 * time.Millisecond

// Saver coalesces save requests. Each Request restarts the debounce timer;
// the settings are captured and written once the requests stop. A failed
// background write is retried after another debounce period until it
// succeeds or Flush takes over.
type Saver struct {
	store  Store
	source func() Settings
	delay  time.Duration
	log    *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending bool

	saveMu sync.Mutex
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) SaverOption {
	return func(s *Saver) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithSaverLogger sets the logger used for failed background saves.
func WithSaverLogger(l *slog.Logger) SaverOption {
	return func(s *Saver) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSaver writes source() to store after the debounce period.
func NewSaver(store Store, source func() Settings, opts ...SaverOption) *Saver {
	s := &Saver{
		store:  store,
		source: source,
		delay:  DefaultDebounce,
		log:    slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Request schedules a save, restarting the debounce period.
func (s *Saver) Request() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = true

	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, s.fire)
		return
	}

	s.timer.Reset(s.delay)
}

// Pending reports whether a requested save has not been written yet.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending
}

// Flush writes a pending save immediately. A failed write stays pending.
func (s *Saver) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}

	pending := s.pending
	s.pending = false
	s.mu.Unlock()

	if !pending {
		return nil
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	settings := s.source()
	if err := s.store.Save(settings); err != nil {
		s.mu.Lock()
		s.pending = true
		s.mu.Unlock()

		return err
	}

	s.log.Info("settings saved",
		"preset", settings.Preset.String(),
		"loudness", settings.Loudness,
		"bass_boost", settings.BassBoost)

	return nil
}

func (s *Saver) fire() {
	err := s.Flush()
	if err == nil {
		return
	}

	s.log.Error("settings save failed", "err", err, "retry_in", s.delay)

	s.mu.Lock()
	if s.pending {
		s.timer.Reset(s.delay)
	}
	s.mu.Unlock()
}
