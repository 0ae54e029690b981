package main

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-speaker/internal/settings"
	"github.com/cwbudde/algo-speaker/speaker"
)

// EngineFlags configure a speaker engine.
type EngineFlags struct {
	Rate       int    `default:"48000" help:"Sample rate in Hz: 16000, 32000, 44100 or 48000."`
	Block      int    `default:"512" help:"Largest block processed in one pass."`
	Preset     string `default:"office" enum:"office,full,night,speech" help:"Equalizer preset (${enum})."`
	Loudness   bool   `help:"Enable the loudness overlay."`
	BassBoost  bool   `name:"bass-boost" help:"Enable the bass boost shelf."`
	Normalizer bool   `help:"Enable the normalizer."`
	Bypass     bool   `help:"Skip equalizer, loudness, bass boost and normalizer."`
	Volume     int    `default:"100" help:"Volume trim 0-100."`
	Settings   string `type:"path" help:"Settings file; its preset, loudness and bass boost replace the flags."`
}

func (f *EngineFlags) newEngine(log *slog.Logger) (*speaker.Engine, error) {
	e := speaker.NewEngine(
		speaker.WithMaxBlockSize(f.Block),
		speaker.WithLogger(log),
	)

	if err := e.Init(f.Rate); err != nil {
		return nil, err
	}

	preset, err := speaker.ParsePreset(f.Preset)
	if err != nil {
		return nil, err
	}

	for _, set := range []func() error{
		func() error { return e.SetPreset(preset) },
		func() error { return e.SetLoudness(f.Loudness) },
		func() error { return e.SetBassBoost(f.BassBoost) },
		func() error { return e.SetNormalizer(f.Normalizer) },
		func() error { return e.SetBypass(f.Bypass) },
		func() error { return e.SetVolumeTrim(f.Volume) },
	} {
		if err := set(); err != nil {
			return nil, err
		}
	}

	if f.Settings != "" {
		s, err := settings.NewFileStore(f.Settings).Load()
		if err != nil {
			return nil, err
		}

		if err := settings.Restore(e, s); err != nil {
			return nil, fmt.Errorf("restore settings: %w", err)
		}
	}

	return e, nil
}
