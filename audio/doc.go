// Package audio defines the shared vocabulary of the playback engine: the
// Format a decoder declares, the error taxonomy decoders report through,
// and the sample conversions adapters use to normalize source PCM into the
// engine's interleaved float32 interchange representation.
//
// A frame is one sample per channel at one point in time. All counts,
// offsets and seeks in the engine are expressed in frames.
package audio
