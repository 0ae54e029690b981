// Package design provides the Audio-EQ-Cookbook coefficient designers used
// by the speaker signal chain: shelves parameterized by slope, peaking EQ,
// high-pass and bypass.
//
// Designers never fail. Inputs outside their valid range (frequency at or
// above Nyquist, non-positive sample rate, non-finite values) yield
// [Bypass], so a caller can always install the result.
package design
