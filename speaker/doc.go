// Package speaker implements the real-time signal chain of a small stereo
// speaker: pre-gain, protective high-pass, preset equalizer, loudness
// overlay, bass boost, normalizer, limiter, clip guard and the volume, duck
// and mute gains.
//
// An [Engine] is shared by two contexts. The control context calls the
// setters and queries, which serialize on a mutex and publish a complete
// target snapshot through a triple buffer. The audio context calls
// [Engine.Process] or [Engine.ProcessFloat], which adopt the newest snapshot
// without waiting and move every smoothed value towards its target. Only
// the audio context touches filter memory.
package speaker
