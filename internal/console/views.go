package console

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-speaker/dsp/core"
	"github.com/cwbudde/algo-speaker/speaker"
	"github.com/cwbudde/algo-speaker/stats/level"
)

const meterWidth = 30

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0087D7"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(12)

	onStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00AA00"))

	offStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555"))

	errStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#D70000"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
)

// View renders the UI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("spkdsp console"))
	b.WriteString("\n\n")

	s := m.Snapshot
	row(&b, "Preset", speaker.PresetName(s.Preset))
	row(&b, "Volume", fmt.Sprintf("%d (trim %d, cap %d)", s.EffectiveVolume, s.VolumeTrim, s.VolumeCap))
	row(&b, "Rate", fmt.Sprintf("%d Hz", s.SampleRate))
	b.WriteString("\n")

	row(&b, "Toggles", strings.Join([]string{
		flag("loudness", s.Loudness),
		flag("bass", s.BassBoost),
		flag("normalizer", s.Normalizer),
		flag("bypass", s.Bypass),
		flag("duck", s.AudioDuck),
		flag("mute", s.Muted),
	}, " "))
	row(&b, "Flags", m.Status.Flags.String())
	row(&b, "Status", fmt.Sprintf("% x", m.Extended))
	b.WriteString("\n")

	row(&b, "Input", meter(m.Levels.Input))
	row(&b, "Output", meter(m.Levels.Output))

	if m.LastErr != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(m.LastErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("p/1-4 preset  l loudness  B bass  n normalizer  b bypass  d duck  m mute  +/- volume  q quit"))
	b.WriteString("\n")

	return b.String()
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}

func flag(name string, on bool) string {
	if on {
		return onStyle.Render(name)
	}

	return offStyle.Render(name)
}

// meter renders an RMS bar over -60..0 dBFS followed by the peak level.
func meter(s level.Stats) string {
	db := s.RMS_dB
	if !core.IsFinite(db) {
		db = -60
	}

	filled := int(math.Round((core.Clamp(db, -60, 0) + 60) / 60 * meterWidth))

	peak := "-inf"
	if !math.IsInf(s.Peak_dB, -1) {
		peak = fmt.Sprintf("%.1f", s.Peak_dB)
	}

	return fmt.Sprintf("%s%s %6.1f dB rms, %s dB peak",
		strings.Repeat("█", filled), strings.Repeat("·", meterWidth-filled), db, peak)
}
