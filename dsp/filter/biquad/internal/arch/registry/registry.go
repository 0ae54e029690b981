// Package registry collects the biquad block kernels compiled into the
// binary and selects the best one for the running CPU.
package registry

import (
	"sync"

	"github.com/cwbudde/algo-speaker/internal/cpu"
)

// Coefficients are biquad transfer coefficients (a0 normalized to 1).
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// ProcessBlockFn runs one DF-II-T section over buf in place, starting from
// the delay registers (z1, z2), and returns the final registers.
type ProcessBlockFn func(c Coefficients, z1, z2 float64, buf []float64) (newZ1, newZ2 float64)

// OpEntry is one registered kernel.
type OpEntry struct {
	Name         string
	SIMDLevel    cpu.SIMDLevel
	Priority     int
	ProcessBlock ProcessBlockFn
}

// OpRegistry stores the available kernels.
type OpRegistry struct {
	mu      sync.Mutex
	entries []OpEntry
}

// Global is the registry the biquad package draws from.
var Global = &OpRegistry{}

// Register adds a kernel. Entries stay ordered by descending priority.
func (r *OpRegistry) Register(entry OpEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := len(r.entries)
	for i > 0 && r.entries[i-1].Priority < entry.Priority {
		i--
	}

	r.entries = append(r.entries, OpEntry{})
	copy(r.entries[i+1:], r.entries[i:])
	r.entries[i] = entry
}

// Lookup returns the highest-priority kernel supported by features, or nil.
func (r *OpRegistry) Lookup(features cpu.Features) *OpEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if cpu.Supports(features, r.entries[i].SIMDLevel) {
			entry := r.entries[i]
			return &entry
		}
	}

	return nil
}

// Names lists the registered kernels in priority order.
func (r *OpRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.entries))
	for i := range r.entries {
		names[i] = r.entries[i].Name
	}

	return names
}
