// Command spkdsp runs the speaker signal chain offline, measures its
// response and drives it interactively.
//
// Usage:
//
//	spkdsp process --preset night --in music.raw --out speaker.raw
//	spkdsp response --preset full --loudness
//	spkdsp presets
//	spkdsp console --settings dsp.json
//	spkdsp info
package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/algo-speaker/internal/cli"
)

var version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Version  kong.VersionFlag `short:"V" help:"Show version information."`
	LogLevel string           `default:"warn" enum:"debug,info,warn,error" help:"Log level (${enum})."`

	Process  ProcessCmd  `cmd:"" help:"Run raw s16le stereo PCM through the speaker chain."`
	Response ResponseCmd `cmd:"" help:"Measure the magnitude response of a setting."`
	Presets  PresetsCmd  `cmd:"" help:"List the equalizer bands of every preset."`
	Console  ConsoleCmd  `cmd:"" help:"Interactive control console on a synthetic signal."`
	Info     InfoCmd     `cmd:"" help:"Show build and CPU information."`
}

// Globals is bound into every command's Run method.
type Globals struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

func main() {
	var c CLI

	ctx := kong.Parse(&c,
		kong.Name("spkdsp"),
		kong.Description("Speaker DSP chain: equalizer, loudness, dynamics and volume"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	g := &Globals{
		Logger: newLogger(os.Stderr, c.LogLevel),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	if err := ctx.Run(g); err != nil {
		cli.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newLogger(w io.Writer, lvl string) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(lvl))); err != nil {
		level = slog.LevelWarn
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
