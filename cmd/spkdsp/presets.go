package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/cwbudde/algo-speaker/dsp/filter/design"
	"github.com/cwbudde/algo-speaker/speaker"
)

// PresetsCmd lists the band tables.
type PresetsCmd struct{}

// Run prints every preset followed by the loudness and bass boost bands.
func (c *PresetsCmd) Run(g *Globals) error {
	tw := tabwriter.NewWriter(g.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SET\tTYPE\tHZ\tGAIN DB\tQ/S\tCAP")

	for p := range speaker.PresetCount {
		bands, err := speaker.PresetBands(p)
		if err != nil {
			return err
		}

		limit := speaker.VolumeCap(p, false, speaker.DefaultNormalizerVolumeReduction)
		for _, b := range bands {
			writeBand(tw, p.String(), b, fmt.Sprint(limit))
		}
	}

	for _, b := range speaker.LoudnessBands() {
		writeBand(tw, "LOUDNESS", b, "")
	}

	writeBand(tw, "BASS", speaker.BassBoostBand(), "")

	return tw.Flush()
}

func writeBand(tw *tabwriter.Writer, set string, b design.Band, limit string) {
	fmt.Fprintf(tw, "%s\t%s\t%.0f\t%+.1f\t%.2f\t%s\n", set, b.Type, b.Freq, b.GainDB, b.Width, limit)
}
