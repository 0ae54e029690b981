package speaker

import (
	"math"
	"sync"
	"testing"

	"github.com/cwbudde/algo-speaker/dsp/core"
	"github.com/cwbudde/algo-speaker/dsp/effects/dynamics"
	"github.com/cwbudde/algo-speaker/dsp/filter/design"
	"github.com/cwbudde/algo-speaker/dsp/smooth"
	"github.com/cwbudde/algo-speaker/internal/testutil"
)

func stereoSine(freq, fs, levelDB float64, n int) ([]float64, []float64) {
	l := testutil.SineDBFS(freq, fs, levelDB, n)
	r := make([]float64, n)
	copy(r, l)

	return l, r
}

func TestProcessBeforeInitIsNoop(t *testing.T) {
	e := NewEngine()

	pcm := []int16{1000, -1000, 2000, -2000}
	e.Process(pcm)
	if pcm[0] != 1000 || pcm[3] != -2000 {
		t.Fatalf("Process modified samples before Init: %v", pcm)
	}

	l, r := []float64{0.5}, []float64{-0.5}
	e.ProcessFloat(l, r)
	if l[0] != 0.5 || r[0] != -0.5 {
		t.Fatal("ProcessFloat modified samples before Init")
	}
}

func TestProcessLeavesTrailingSample(t *testing.T) {
	e := newTestEngine(t, 48000)

	pcm := []int16{1000, 1000, 1000, 1000, 12345}
	e.Process(pcm)
	if pcm[4] != 12345 {
		t.Fatalf("trailing sample = %d, want 12345", pcm[4])
	}

	e.Process(nil)
	e.Process([]int16{7})
}

// Office preset, volume 100, loudness off: the level of a steady sine
// follows the designed magnitude response of the static stages.
func TestOfficeSteadyStateLevel(t *testing.T) {
	const (
		fs   = 44100.0
		freq = 1000.0
	)

	e := newTestEngine(t, int(fs))

	n := int(fs / 2)
	in, _ := stereoSine(freq, fs, -3, n)
	l, r := stereoSine(freq, fs, -3, n)
	e.ProcessFloat(l, r)

	hpf := design.Highpass(hpfFreqHz, hpfQ, fs)
	wantDB := preGainDB + hpf.MagnitudeDB(freq, fs)
	for _, b := range presetBands[Office] {
		c := b.Coefficients(fs)
		wantDB += c.MagnitudeDB(freq, fs)
	}

	tail := n / 2
	gotDB := testutil.RMSDB(l[tail:]) - testutil.RMSDB(in[tail:])
	testutil.RequireNearlyEqualDB(t, "office gain at 1 kHz", gotDB, wantDB, 0.05)

	if d, _ := testutil.MaxAbsDiff(l, r); d != 0 {
		t.Fatalf("channels differ by %v", d)
	}

	if e.Status().Flags.Has(FlagLimiterActive) {
		t.Fatal("limiter active for a -9 dBFS signal")
	}
}

func TestBypassSkipsTonalStages(t *testing.T) {
	const (
		fs   = 48000.0
		freq = 1000.0
	)

	e := newTestEngine(t, int(fs))
	mustSet(t, e.SetPreset(Full))
	mustSet(t, e.SetLoudness(true))
	mustSet(t, e.SetBassBoost(true))
	mustSet(t, e.SetNormalizer(true))
	mustSet(t, e.SetBypass(true))
	mustSet(t, e.SetVolumeTrim(85))

	// Volume 85 is the cap with the normalizer on; snap the ramps so only
	// the static stages shape the level.
	e.beginBlock()
	e.audio.snap()

	n := int(fs / 2)
	in, _ := stereoSine(freq, fs, -20, n)
	l, r := stereoSine(freq, fs, -20, n)
	e.ProcessFloat(l, r)

	hpf := design.Highpass(hpfFreqHz, hpfQ, fs)
	wantDB := preGainDB + hpf.MagnitudeDB(freq, fs) + core.LinearToDB(VolumeGain(85))

	tail := n / 2
	gotDB := testutil.RMSDB(l[tail:]) - testutil.RMSDB(in[tail:])
	testutil.RequireNearlyEqualDB(t, "bypass gain", gotDB, wantDB, 0.05)

	if e.audio.normalizer.Envelope() != 0 {
		t.Fatal("normalizer ran while bypassed")
	}
}

func TestLimiterConvergesToCeiling(t *testing.T) {
	const fs = 48000.0

	e := newTestEngine(t, int(fs))
	ceiling := core.DBToLinear(-1)

	// A tone at half the sample rate has a constant peak level after
	// every linear stage, so the limiter envelope settles on it.
	n := int(fs)
	l := make([]float64, n)
	for i := range l {
		l[i] = 4
		if i%2 == 1 {
			l[i] = -4
		}
	}

	r := append([]float64(nil), l...)
	e.ProcessFloat(l, r)

	testutil.RequireFinite(t, l)
	testutil.RequireBounded(t, l, 1)

	if !e.Status().Flags.Has(FlagLimiterActive) {
		t.Fatal("limiter not reported active")
	}

	release := int(dynamics.DefaultLimiterConfig().ReleaseMs / 1000 * fs)
	testutil.RequireBounded(t, l[release:], ceiling+1e-9)
	testutil.RequireBounded(t, r[release:], ceiling+1e-9)

	if peak := math.Abs(l[n-1]); peak < 0.95*ceiling {
		t.Fatalf("settled peak = %v, want close to ceiling %v", peak, ceiling)
	}

	silence := int(fs)
	e.ProcessFloat(make([]float64, silence), make([]float64, silence))
	e.ProcessFloat(make([]float64, 512), make([]float64, 512))

	if e.Status().Flags.Has(FlagLimiterActive) {
		t.Fatal("limiter still active after release")
	}
}

func TestVolumeTrimZeroReachesSilence(t *testing.T) {
	const fs = 48000

	e := newTestEngine(t, fs)
	mustSet(t, e.SetVolumeTrim(0))

	n := smooth.SettleSamples(smooth.Coefficient(smooth.DefaultTimeMs, fs), 1e-10) + 1024
	l, r := stereoSine(440, fs, -6, n)
	e.ProcessFloat(l, r)

	if !e.audio.volume.Settled() {
		t.Fatal("volume ramp not settled")
	}

	for i := n - 1024; i < n; i++ {
		if l[i] != 0 || r[i] != 0 {
			t.Fatalf("sample %d = (%v, %v), want silence", i, l[i], r[i])
		}
	}

	pcm := testutil.InterleavePCM16(stereoSine(440, fs, -6, 256))
	e.Process(pcm)
	for i, s := range pcm {
		if s != 0 {
			t.Fatalf("pcm[%d] = %d, want 0", i, s)
		}
	}
}

func TestMuteRampsSmoothly(t *testing.T) {
	const fs = 48000

	e := newTestEngine(t, fs)
	warm := 4800
	l, r := stereoSine(200, fs, -6, warm)
	e.ProcessFloat(l, r)

	mustSet(t, e.SetMute(true))

	n := 480
	l, r = stereoSine(200, fs, -6, n)
	e.ProcessFloat(l, r)

	// Ten milliseconds into a 30 ms ramp the gain is still around 0.7.
	g := e.audio.mute.Current
	if g < 0.6 || g > 0.8 {
		t.Fatalf("mute gain after 10 ms = %v", g)
	}
	if testutil.RMSDB(l) < -30 {
		t.Fatal("mute cut the signal abruptly")
	}
}

func TestEQConverges(t *testing.T) {
	const fs = 44100

	e := newTestEngine(t, fs)
	mustSet(t, e.SetPreset(Full))

	c := smooth.Coefficient(smooth.DefaultTimeMs, fs)
	n := smooth.SettleSamples(c, 0.001)
	l, r := stereoSine(1000, fs, -20, n)
	e.ProcessFloat(l, r)

	for i, eq := range e.audio.eq {
		want := presetBands[Full][i].Coefficients(fs)
		for j, pair := range [][2]float64{
			{eq.Current.B0, want.B0}, {eq.Current.B1, want.B1}, {eq.Current.B2, want.B2},
			{eq.Current.A1, want.A1}, {eq.Current.A2, want.A2},
		} {
			start := startCoefficient(i, j)
			if math.Abs(pair[0]-pair[1]) > 0.001*math.Abs(start-pair[1])+1e-12 {
				t.Errorf("band %d coefficient %d = %v, want within 0.1%% of %v", i, j, pair[0], pair[1])
			}
		}
	}
}

// startCoefficient returns coefficient j of Office band i at 44.1 kHz.
func startCoefficient(band, j int) float64 {
	c := presetBands[Office][band].Coefficients(44100)
	return [5]float64{c.B0, c.B1, c.B2, c.A1, c.A2}[j]
}

func TestPresetSwitchKeepsFilterMemory(t *testing.T) {
	e := newTestEngine(t, 48000)
	l, r := stereoSine(300, 48000, -12, 2048)
	e.ProcessFloat(l, r)

	before := e.audio.ch
	current := e.audio.eq

	mustSet(t, e.SetPreset(Speech))
	e.beginBlock()

	if e.audio.ch != before {
		t.Fatal("preset switch touched filter memory")
	}

	for i := range e.audio.eq {
		if e.audio.eq[i].Current != current[i].Current {
			t.Fatalf("band %d coefficients jumped", i)
		}
		if e.audio.eq[i].Target != presetBands[Speech][i].Coefficients(48000) {
			t.Fatalf("band %d target not updated", i)
		}
	}
}

func TestSampleRateChangeResetsState(t *testing.T) {
	e := newTestEngine(t, 48000)
	mustSet(t, e.SetNormalizer(true))
	l, r := stereoSine(300, 48000, -3, 4096)
	e.ProcessFloat(l, r)

	if e.audio.ch[0].hpf.IsZero() || e.audio.limiter.Envelope() == 0 {
		t.Fatal("expected warm filter memory before the rate change")
	}

	mustSet(t, e.SetPreset(Full))
	mustSet(t, e.SetSampleRate(16000))
	e.beginBlock()

	a := &e.audio
	if a.ch != [2]channelState{} {
		t.Fatal("filter memory not cleared")
	}
	if a.limiter.Envelope() != 0 || a.normalizer.Envelope() != 0 {
		t.Fatal("envelopes not cleared")
	}
	for i := range a.eq {
		if !a.eq[i].Settled() {
			t.Fatalf("band %d not snapped", i)
		}
	}
	if want := smooth.Coefficient(smooth.DefaultTimeMs, 16000); a.coeff != want {
		t.Fatalf("smoothing coefficient = %v, want %v", a.coeff, want)
	}

	// 9500 Hz is above 0.45*16000.
	want := presetBands[Full][3].WithFreq(7200).Coefficients(16000)
	if a.eq[3].Current != want {
		t.Fatal("high band not clamped below Nyquist")
	}
}

func TestNormalizerToggleResetsEnvelope(t *testing.T) {
	e := newTestEngine(t, 48000)
	mustSet(t, e.SetNormalizer(true))

	l, r := stereoSine(500, 48000, -3, 2048)
	e.ProcessFloat(l, r)
	if e.audio.normalizer.Envelope() == 0 {
		t.Fatal("normalizer did not run")
	}

	mustSet(t, e.SetNormalizer(false))
	e.beginBlock()
	if e.audio.normalizer.Envelope() != 0 {
		t.Fatal("normalizer envelope survived the toggle")
	}
}

func TestLoudnessBlendConverges(t *testing.T) {
	const fs = 48000

	e := newTestEngine(t, fs)
	mustSet(t, e.SetLoudness(true))

	n := smooth.SettleSamples(smooth.Coefficient(smooth.DefaultTimeMs, fs), 1e-10) + 1
	l, r := stereoSine(100, fs, -20, n)
	e.ProcessFloat(l, r)

	if !e.audio.loudMix.Settled() || e.audio.loudMix.Current != 1 {
		t.Fatalf("loudness mix = %v, want settled at 1", e.audio.loudMix.Current)
	}
}

func TestChunkSizeDoesNotChangeOutput(t *testing.T) {
	run := func(block int) []float64 {
		e := newTestEngine(t, 48000, WithMaxBlockSize(block))
		mustSet(t, e.SetPreset(Night))
		mustSet(t, e.SetBassBoost(true))
		mustSet(t, e.SetLoudness(true))

		l := testutil.DeterministicNoise(7, 0.5, 6000)
		r := testutil.DeterministicNoise(8, 0.5, 6000)
		e.ProcessFloat(l, r)

		return append(l, r...)
	}

	a := run(4096)
	b := run(1)
	c := run(97)

	testutil.RequireSliceNearlyEqual(t, b, a, 1e-12)
	testutil.RequireSliceNearlyEqual(t, c, a, 1e-12)
}

func TestInt16AndFloatPathsAgree(t *testing.T) {
	l, r := stereoSine(700, 48000, -6, 3000)
	pcm := testutil.InterleavePCM16(l, r)

	fl := make([]float64, len(l))
	fr := make([]float64, len(r))
	core.Deinterleave(fl, fr, pcm)

	ei := newTestEngine(t, 48000)
	ef := newTestEngine(t, 48000)
	mustSet(t, ei.SetPreset(Full))
	mustSet(t, ef.SetPreset(Full))

	ei.Process(pcm)
	ef.ProcessFloat(fl, fr)

	want := make([]int16, len(pcm))
	core.Interleave(want, fl, fr)

	for i := range pcm {
		if d := int(pcm[i]) - int(want[i]); d < -1 || d > 1 {
			t.Fatalf("sample %d: int16 path %d, float path %d", i, pcm[i], want[i])
		}
	}
}

func TestHardClip(t *testing.T) {
	buf := []float64{0.5, 1.5, -2, -1, 1}
	if !hardClip(buf) {
		t.Fatal("hardClip did not report clipping")
	}

	want := []float64{0.5, 1, -1, -1, 1}
	testutil.RequireSliceNearlyEqual(t, buf, want, 0)

	if hardClip([]float64{1, -1, 0}) {
		t.Fatal("samples at full scale reported as clipped")
	}
}

func TestConcurrentControlAndProcess(t *testing.T) {
	e := newTestEngine(t, 48000, WithMaxBlockSize(128))

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()

		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}

			_ = e.SetPreset(Preset(i % int(PresetCount)))
			_ = e.SetLoudness(i%2 == 0)
			_ = e.SetVolumeTrim(i % 101)
			_ = e.SetNormalizer(i%3 == 0)
			_ = e.SetBassBoost(i%5 == 0)
			_ = e.SetMute(i%7 == 0)
			_ = e.Status()
		}
	}()

	for i := range 200 {
		l := testutil.DeterministicNoise(int64(i), 0.8, 300)
		r := testutil.DeterministicNoise(int64(i+1000), 0.8, 300)
		e.ProcessFloat(l, r)
		testutil.RequireFinite(t, l)
		testutil.RequireBounded(t, r, 1)
	}

	close(done)
	wg.Wait()
}

func TestProcessDoesNotAllocate(t *testing.T) {
	e := newTestEngine(t, 48000)
	mustSet(t, e.SetLoudness(true))
	mustSet(t, e.SetNormalizer(true))
	mustSet(t, e.SetBassBoost(true))

	e.beginBlock()
	e.audio.snap()

	srcL, srcR := stereoSine(1000, 48000, -6, 512)
	src := testutil.InterleavePCM16(srcL, srcR)
	pcm := make([]int16, len(src))
	l := make([]float64, len(srcL))
	r := make([]float64, len(srcR))

	run := func(frames int) (intAllocs, floatAllocs float64) {
		intAllocs = testing.AllocsPerRun(50, func() {
			copy(pcm, src)
			e.Process(pcm[:2*frames])
		})
		floatAllocs = testing.AllocsPerRun(50, func() {
			copy(l, srcL)
			copy(r, srcR)
			e.ProcessFloat(l[:frames], r[:frames])
		})

		return intAllocs, floatAllocs
	}

	if a, b := run(512); a != 0 || b != 0 {
		t.Fatalf("settled: Process allocs = %v, ProcessFloat allocs = %v", a, b)
	}

	// Short blocks keep the new volume ramp moving for every run.
	mustSet(t, e.SetVolumeTrim(40))

	if a, b := run(8); a != 0 || b != 0 {
		t.Fatalf("ramping: Process allocs = %v, ProcessFloat allocs = %v", a, b)
	}

	if e.audio.volume.Settled() {
		t.Fatal("volume ramp settled; the ramping case was not exercised")
	}
}

func BenchmarkProcess(b *testing.B) {
	e := NewEngine()
	if err := e.Init(48000); err != nil {
		b.Fatal(err)
	}
	_ = e.SetLoudness(true)
	_ = e.SetNormalizer(true)

	l, r := stereoSine(1000, 48000, -6, 512)
	pcm := testutil.InterleavePCM16(l, r)
	buf := make([]int16, len(pcm))

	b.ReportAllocs()
	b.SetBytes(int64(len(pcm) * 2))

	for b.Loop() {
		copy(buf, pcm)
		e.Process(buf)
	}
}

func BenchmarkProcessFloat(b *testing.B) {
	e := NewEngine()
	if err := e.Init(48000); err != nil {
		b.Fatal(err)
	}

	src, _ := stereoSine(1000, 48000, -6, 512)
	l := make([]float64, len(src))
	r := make([]float64, len(src))

	b.ReportAllocs()

	for b.Loop() {
		copy(l, src)
		copy(r, src)
		e.ProcessFloat(l, r)
	}
}
