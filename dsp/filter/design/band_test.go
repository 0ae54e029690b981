package design

import "testing"

func TestBandCoefficientsDispatch(t *testing.T) {
	const sr = 48000

	tests := []struct {
		band Band
	}{
		{band: Band{Type: LowShelfBand, Freq: 160, GainDB: 1.5, Width: 0.7}},
		{band: Band{Type: PeakingBand, Freq: 320, GainDB: -1, Width: 1}},
		{band: Band{Type: HighShelfBand, Freq: 9000, GainDB: 0.5, Width: 0.7}},
	}

	for _, tt := range tests {
		t.Run(tt.band.Type.String(), func(t *testing.T) {
			got := tt.band.Coefficients(sr)

			want := Bypass()
			switch tt.band.Type {
			case LowShelfBand:
				want = LowShelf(tt.band.Freq, tt.band.GainDB, tt.band.Width, sr)
			case PeakingBand:
				want = Peak(tt.band.Freq, tt.band.GainDB, tt.band.Width, sr)
			case HighShelfBand:
				want = HighShelf(tt.band.Freq, tt.band.GainDB, tt.band.Width, sr)
			}

			if got != want {
				t.Fatalf("Coefficients() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestBandUnknownTypeIsBypass(t *testing.T) {
	b := Band{Type: BandType(7), Freq: 1000, GainDB: 6, Width: 1}
	if b.Coefficients(48000) != Bypass() {
		t.Fatal("unknown band type should design Bypass")
	}
	if b.Type.String() != "BandType(7)" {
		t.Fatalf("String() = %q", b.Type.String())
	}
}

func TestBandWithFreq(t *testing.T) {
	b := Band{Type: HighShelfBand, Freq: 9500, GainDB: 1.5, Width: 0.7}
	moved := b.WithFreq(7200)

	if moved.Freq != 7200 || b.Freq != 9500 {
		t.Fatalf("WithFreq mutated receiver or failed: %+v %+v", b, moved)
	}
}
