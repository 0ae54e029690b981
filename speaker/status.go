package speaker

import "strings"

// StatusReport is the leading byte of a Status record.
const StatusReport = 0x01

// Flags is the status flag byte.
type Flags uint8

const (
	FlagLimiterActive Flags = 1 << iota
	FlagClipping
	FlagThermal // reserved
	FlagMuted
	FlagDuck
	FlagNormalizer
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{FlagLimiterActive, "limiter"},
	{FlagClipping, "clipping"},
	{FlagThermal, "thermal"},
	{FlagMuted, "muted"},
	{FlagDuck, "duck"},
	{FlagNormalizer, "normalizer"},
}

// Has reports whether every flag in x is set.
func (f Flags) Has(x Flags) bool {
	return f&x == x
}

func (f Flags) String() string {
	var names []string
	for _, n := range flagNames {
		if f.Has(n.f) {
			names = append(names, n.name)
		}
	}

	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, "|")
}

// Status is the compact state report.
type Status struct {
	Preset   Preset
	Loudness bool
	Flags    Flags
}

// Bytes encodes s as [0x01, preset, loudness, flags].
func (s Status) Bytes() [4]byte {
	return [4]byte{StatusReport, byte(s.Preset), boolByte(s.Loudness), byte(s.Flags)}
}

// Snapshot is the full control-side view of the engine.
type Snapshot struct {
	Initialized     bool
	SampleRate      int
	Preset          Preset
	Loudness        bool
	Muted           bool
	AudioDuck       bool
	Normalizer      bool
	Bypass          bool
	BassBoost       bool
	VolumeTrim      int
	VolumeCap       int
	EffectiveVolume int
}

func boolByte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
