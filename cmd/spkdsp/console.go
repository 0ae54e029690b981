package main

import (
	"context"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-speaker/internal/console"
	"github.com/cwbudde/algo-speaker/internal/control"
	"github.com/cwbudde/algo-speaker/internal/settings"
	"github.com/cwbudde/algo-speaker/speaker"
	"github.com/cwbudde/algo-speaker/stats/level"
)

// ConsoleCmd drives the engine from the keyboard while it processes a
// synthetic program signal.
type ConsoleCmd struct {
	EngineFlags `embed:""`

	Level   float64       `default:"-12" help:"Level of the synthetic signal in dBFS."`
	Period  time.Duration `default:"10ms" help:"Audio block period."`
	LogFile string        `type:"path" name:"log-file" help:"Write logs to this file instead of discarding them."`
}

// Run starts the console and blocks until the user quits.
func (c *ConsoleCmd) Run(g *Globals) error {
	log := slog.New(slog.DiscardHandler)

	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()

		log = newLogger(f, "debug")
	}

	e, err := c.newEngine(log)
	if err != nil {
		return err
	}

	ctrl := control.New(e, control.WithLogger(log))

	var opts []console.Option

	if c.Settings != "" {
		saver := settings.NewSaver(
			settings.NewFileStore(c.Settings),
			func() settings.Settings { return settings.Capture(e) },
			settings.WithSaverLogger(log),
		)

		defer func() {
			if err := saver.Flush(); err != nil {
				log.Error("flush settings", "error", err)
			}
		}()

		opts = append(opts, console.WithPersist(saver.Request))
	}

	src := newProgram(float64(e.SampleRate()), c.Level)
	meters := &levelMeters{}
	opts = append(opts, console.WithLevels(meters.get))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(console.NewModel(ctrl, e, opts...), tea.WithAltScreen())

	var wg sync.WaitGroup

	wg.Go(func() { runAudio(ctx, e, src, meters, c.Period) })
	wg.Go(func() {
		_ = ctrl.Run(ctx, 0, func(b [7]byte) { p.Send(console.StatusMsg(b)) })
	})

	_, err = p.Run()

	cancel()
	wg.Wait()

	return err
}

// levelMeters holds the most recent block levels.
type levelMeters struct {
	mu     sync.Mutex
	levels console.Levels
}

func (m *levelMeters) set(in, out level.Stats) {
	m.mu.Lock()
	m.levels = console.Levels{Input: in, Output: out}
	m.mu.Unlock()
}

func (m *levelMeters) get() console.Levels {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.levels
}

func runAudio(ctx context.Context, e *speaker.Engine, src *program, meters *levelMeters, period time.Duration) {
	if period <= 0 {
		period = 10 * time.Millisecond
	}

	frames := max(1, int(float64(e.SampleRate())*period.Seconds()))
	left := make([]float64, frames)
	right := make([]float64, frames)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		src.fill(left, right)
		in := level.Calculate(left)

		e.ProcessFloat(left, right)
		meters.set(in, level.Calculate(left))
	}
}

// program is a slowly swelling three-tone test signal.
type program struct {
	fs    float64
	amp   float64
	n     int
	tones [3]float64
}

func newProgram(fs, levelDB float64) *program {
	return &program{
		fs:    fs,
		amp:   math.Pow(10, levelDB/20) / 2,
		tones: [3]float64{80, 440, 3500},
	}
}

func (p *program) fill(left, right []float64) {
	for i := range left {
		t := float64(p.n) / p.fs
		swell := 0.75 + 0.25*math.Sin(2*math.Pi*0.2*t)

		var s float64
		for k, f := range p.tones {
			s += math.Sin(2*math.Pi*f*t) / float64(k+1)
		}

		v := p.amp * swell * s
		left[i] = v
		right[i] = v
		p.n++
	}
}
