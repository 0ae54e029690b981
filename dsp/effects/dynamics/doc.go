// Package dynamics provides the stereo-linked gain-reduction stages of the
// speaker chain.
//
// Both processors share a [PeakFollower] with separate attack and release
// coefficients and differ only in their gain law:
//   - Limiter: hard ceiling, gain = ceiling/envelope above the ceiling.
//   - Normalizer: ratio compression above a threshold, followed by a fixed
//     makeup gain.
//
// The gain computers use log2-domain arithmetic. Building with the
// fastmath tag swaps in polynomial approximations.
package dynamics
