// Package cpu reports the SIMD capabilities used to pick the biquad block
// kernel. Detection runs once and is cached; tests may force a feature set.
package cpu

import (
	"sync"
)

// SIMDLevel names an instruction set extension a kernel depends on.
type SIMDLevel int

const (
	// SIMDNone is the portable Go kernel.
	SIMDNone SIMDLevel = iota
	// SIMDSSE2 is the x86-64 baseline.
	SIMDSSE2
	// SIMDAVX2 is x86-64 AVX2.
	SIMDAVX2
	// SIMDNEON is ARM Advanced SIMD.
	SIMDNEON
)

// String returns a human-readable name for the SIMD level.
func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "None"
	case SIMDSSE2:
		return "SSE2"
	case SIMDAVX2:
		return "AVX2"
	case SIMDNEON:
		return "NEON"
	default:
		return "Unknown"
	}
}

// Features describes the CPU capabilities relevant to kernel selection.
type Features struct {
	HasSSE2 bool
	HasAVX2 bool
	HasNEON bool

	// ForceGeneric disables every SIMD level.
	ForceGeneric bool

	// Architecture is runtime.GOARCH.
	Architecture string
}

var (
	detectOnce       sync.Once
	detectedFeatures Features

	forcedMu       sync.RWMutex
	forcedFeatures *Features
)

// DetectFeatures returns the features of the running CPU, or the forced set
// installed by SetForcedFeatures.
func DetectFeatures() Features {
	forcedMu.RLock()
	forced := forcedFeatures
	forcedMu.RUnlock()

	if forced != nil {
		return *forced
	}

	detectOnce.Do(func() {
		detectedFeatures = detectFeaturesImpl()
	})

	return detectedFeatures
}

// SetForcedFeatures overrides detection. Intended for tests.
func SetForcedFeatures(f Features) {
	forcedMu.Lock()
	defer forcedMu.Unlock()

	forcedFeatures = &f
}

// ResetForcedFeatures restores real detection.
func ResetForcedFeatures() {
	forcedMu.Lock()
	defer forcedMu.Unlock()

	forcedFeatures = nil
}

// Supports reports whether features can run a kernel built for level.
func Supports(features Features, level SIMDLevel) bool {
	if features.ForceGeneric {
		return level == SIMDNone
	}

	switch level {
	case SIMDNone:
		return true
	case SIMDSSE2:
		return features.HasSSE2
	case SIMDAVX2:
		return features.HasAVX2
	case SIMDNEON:
		return features.HasNEON
	default:
		return false
	}
}
