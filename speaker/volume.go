package speaker

import "github.com/cwbudde/algo-speaker/dsp/core"

// MaxVolume is the top of the volume scale.
const MaxVolume = 100

// nightVolumeReduction is the cap reduction of the Night preset.
const nightVolumeReduction = 20

type volumePoint struct {
	step int
	db   float64
}

var volumeCurve = [...]volumePoint{
	{20, -35},
	{40, -20},
	{60, -12},
	{80, -6},
	{100, 0},
}

// VolumeGain maps a volume step in [0, 100] to a linear gain. Above step
// 20 the gain is interpolated linearly in dB between fixed points, below
// it linearly in amplitude down to silence at 0.
func VolumeGain(step int) float64 {
	step = clampVolume(step)

	first := volumeCurve[0]
	if step <= first.step {
		return float64(step) / float64(first.step) * core.DBToLinear(first.db)
	}

	for i := 1; i < len(volumeCurve); i++ {
		hi := volumeCurve[i]
		if step > hi.step {
			continue
		}

		lo := volumeCurve[i-1]
		t := float64(step-lo.step) / float64(hi.step-lo.step)

		return core.DBToLinear(lo.db + t*(hi.db-lo.db))
	}

	return 1
}

// VolumeCap returns the highest effective volume allowed for the given
// preset and normalizer state.
func VolumeCap(p Preset, normalizer bool, reduction int) int {
	c := MaxVolume
	if p == Night {
		c -= nightVolumeReduction
	}

	if normalizer {
		c -= reduction
	}

	return max(c, reduction)
}

func clampVolume(v int) int {
	return min(max(v, 0), MaxVolume)
}
