package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-speaker/dsp/core"
	"github.com/cwbudde/algo-speaker/internal/cli"
	"github.com/cwbudde/algo-speaker/speaker"
	"github.com/cwbudde/algo-speaker/stats/level"
)

// ProcessCmd streams raw PCM through the engine.
type ProcessCmd struct {
	EngineFlags `embed:""`

	In  string `short:"i" default:"-" help:"Input file of interleaved s16le stereo PCM, - for stdin."`
	Out string `short:"o" default:"-" help:"Output file, - for stdout."`
}

// Run processes the input.
func (c *ProcessCmd) Run(g *Globals) error {
	e, err := c.newEngine(g.Logger)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(c.In)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(c.Out)
	if err != nil {
		return err
	}

	stats, err := processStream(e, in, out)
	if cerr := closeOut(); err == nil {
		err = cerr
	}

	if err != nil {
		return err
	}

	printSummary(g.Stderr, e, stats)

	return nil
}

type streamStats struct {
	Frames int
	Input  level.Stats
	Output level.Stats
	Status speaker.Status
}

// processStream reads s16le stereo frames from r, processes them in
// blocks of the engine's size and writes them to w. A trailing partial
// frame is dropped.
func processStream(e *speaker.Engine, r io.Reader, w io.Writer) (streamStats, error) {
	block := e.MaxBlockSize()
	raw := make([]byte, 4*block)
	pcm := make([]int16, 2*block)
	left := make([]float64, block)
	right := make([]float64, block)

	inMeter := level.NewMeter()
	outMeter := level.NewMeter()
	bw := bufio.NewWriter(w)

	var st streamStats

	for {
		n, err := io.ReadFull(r, raw)
		frames := n / 4

		if frames > 0 {
			samples := pcm[:2*frames]
			for i := range samples {
				samples[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
			}

			meterPCM(inMeter, samples, left, right)
			e.Process(samples)
			meterPCM(outMeter, samples, left, right)

			if err := binary.Write(bw, binary.LittleEndian, samples); err != nil {
				return st, fmt.Errorf("write output: %w", err)
			}

			st.Frames += frames
		}

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}

		if err != nil {
			return st, fmt.Errorf("read input: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return st, fmt.Errorf("write output: %w", err)
	}

	st.Input = inMeter.Result()
	st.Output = outMeter.Result()
	st.Status = e.Status()

	return st, nil
}

func meterPCM(m *level.Meter, samples []int16, left, right []float64) {
	n := core.Deinterleave(left, right, samples)
	m.Update(left[:n])
	m.Update(right[:n])
}

func printSummary(w io.Writer, e *speaker.Engine, st streamStats) {
	snap := e.Snapshot()

	cli.PrintTitle(w, "spkdsp process")
	cli.PrintKeyValue(w, "Preset:", snap.Preset.String())
	cli.PrintKeyValue(w, "Volume:", fmt.Sprintf("%d (cap %d)", snap.EffectiveVolume, snap.VolumeCap))
	cli.PrintKeyValue(w, "Frames:", st.Frames)
	cli.PrintKeyValue(w, "Input:", fmt.Sprintf("%.1f dB rms, %.1f dB peak", st.Input.RMS_dB, st.Input.Peak_dB))
	cli.PrintKeyValue(w, "Output:", fmt.Sprintf("%.1f dB rms, %.1f dB peak", st.Output.RMS_dB, st.Output.Peak_dB))
	cli.PrintKeyValue(w, "Flags:", st.Status.Flags.String())

	if st.Output.Clipped > 0 {
		cli.PrintWarning(w, fmt.Sprintf("%d output samples at full scale", st.Output.Clipped))
	}
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	return bufio.NewReader(f), func() { f.Close() }, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}

	return f, f.Close, nil
}
