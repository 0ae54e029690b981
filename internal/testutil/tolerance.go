package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/cwbudde/algo-speaker/dsp/core"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if !core.IsFinite(v) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireBounded fails t if any element is non-finite or exceeds limit in
// magnitude.
func RequireBounded(t *testing.T, data []float64, limit float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.Abs(v) > limit {
			t.Fatalf("index %d: %v exceeds +/-%v", i, v, limit)
		}
	}
}

// RequireNearlyEqualDB fails t if two levels in dB differ by more than tolDB.
func RequireNearlyEqualDB(t *testing.T, name string, gotDB, wantDB, tolDB float64) {
	t.Helper()
	if math.IsNaN(gotDB) || math.Abs(gotDB-wantDB) > tolDB {
		t.Fatalf("%s: got %.4f dB, want %.4f dB (tol %.4f)", name, gotDB, wantDB, tolDB)
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
// Returns an error if the slices differ in length.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, nil
}

// RMSDB returns the RMS level of data in dBFS, or -Inf for silence.
func RMSDB(data []float64) float64 {
	if len(data) == 0 {
		return math.Inf(-1)
	}
	var sum float64
	for _, v := range data {
		sum += v * v
	}
	return 10 * math.Log10(sum/float64(len(data)))
}
