// Package audio turns whatever blob the frontend recorded into the
// canonical waveform the recognizer requires: single channel, 16-bit
// linear PCM, sample rate clamped into the range the API accepts, in an
// uncompressed WAV container.
package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"log/slog"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

const (
	// Blobs smaller than this are treated as empty uploads.
	minBytes = 100
	// Clips shorter than this are unusable for recognition.
	minDurationMs = 500

	minRate           = 8000
	maxRate           = 48000
	lowResampleTarget = 16000
)

// Clip is a normalized mono 16-bit PCM waveform. SampleRate is the
// effective rate after clamping; the recognizer must be configured with
// exactly this value or accuracy silently degrades.
type Clip struct {
	WAV        []byte
	SampleRate int
}

// Normalize decodes, validates and canonicalizes an uploaded audio blob.
// Any decode or validation failure yields (zero Clip, false); it never
// returns an error because the caller treats bad audio as "no transcript".
func Normalize(raw []byte) (Clip, bool) {
	if len(raw) < minBytes {
		slog.Debug("audio blob too small", "bytes", len(raw))
		return Clip{}, false
	}

	samples, channels, rate, ok := decode(raw)
	if !ok || channels == 0 || rate == 0 {
		slog.Debug("audio decode failed", "bytes", len(raw))
		return Clip{}, false
	}

	frames := len(samples) / channels
	if frames == 0 {
		return Clip{}, false
	}
	durationMs := frames * 1000 / rate
	if durationMs < minDurationMs {
		slog.Debug("audio clip too short", "duration_ms", durationMs)
		return Clip{}, false
	}

	mono := downmix(samples, channels)

	targetRate := rate
	if rate < minRate {
		targetRate = lowResampleTarget
	} else if rate > maxRate {
		targetRate = maxRate
	}
	if targetRate != rate {
		mono = resample(mono, rate, targetRate)
	}

	return Clip{WAV: encodeWAV(mono, targetRate), SampleRate: targetRate}, true
}

// decode sniffs the container and returns interleaved 16-bit samples.
// WAV and MP3 cover what browser recorders and the mobile app send;
// anything else is rejected.
func decode(raw []byte) (samples []int16, channels, rate int, ok bool) {
	if bytes.HasPrefix(raw, []byte("RIFF")) {
		return decodeWAV(raw)
	}
	return decodeMP3(raw)
}

func decodeWAV(raw []byte) ([]int16, int, int, bool) {
	d := wav.NewDecoder(bytes.NewReader(raw))
	if !d.IsValidFile() {
		return nil, 0, 0, false
	}
	buf, err := d.FullPCMBuffer()
	if err != nil || buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, 0, 0, false
	}

	depth := int(d.BitDepth)
	if depth == 0 {
		depth = buf.SourceBitDepth
	}
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = to16Bit(v, depth)
	}
	return samples, buf.Format.NumChannels, buf.Format.SampleRate, true
}

func decodeMP3(raw []byte) ([]int16, int, int, bool) {
	d, err := mp3.NewDecoder(bytes.NewReader(raw))
	if err != nil {
		return nil, 0, 0, false
	}
	pcm, err := io.ReadAll(d)
	if err != nil || len(pcm) < 4 {
		return nil, 0, 0, false
	}
	// go-mp3 always yields 16-bit little-endian stereo.
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return samples, 2, d.SampleRate(), true
}

// to16Bit rescales a sample of the given source bit depth into int16.
func to16Bit(v, depth int) int16 {
	switch {
	case depth == 16:
		return int16(v)
	case depth == 8:
		// 8-bit WAV is unsigned.
		return int16((v - 128) << 8)
	case depth > 16:
		return int16(v >> (depth - 16))
	default:
		return int16(v << (16 - depth))
	}
}

// downmix averages interleaved channels into one.
func downmix(samples []int16, channels int) []int16 {
	if channels == 1 {
		return samples
	}
	frames := len(samples) / channels
	mono := make([]int16, frames)
	for f := 0; f < frames; f++ {
		var sum int
		for c := 0; c < channels; c++ {
			sum += int(samples[f*channels+c])
		}
		mono[f] = int16(sum / channels)
	}
	return mono
}

// resample converts mono PCM between rates by linear interpolation,
// which is plenty for speech headed into a recognizer.
func resample(in []int16, from, to int) []int16 {
	if from == to || len(in) == 0 {
		return in
	}
	outLen := int(int64(len(in)) * int64(to) / int64(from))
	if outLen == 0 {
		return nil
	}
	out := make([]int16, outLen)
	ratio := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := pos - float64(idx)
		a, b := float64(in[idx]), float64(in[idx+1])
		out[i] = int16(a + (b-a)*frac)
	}
	return out
}

// encodeWAV wraps mono 16-bit PCM in a WAV container.
func encodeWAV(samples []int16, rate int) []byte {
	const (
		channels       = 1
		bytesPerSample = 2
	)
	dataLen := len(samples) * bytesPerSample

	buf := &bytes.Buffer{}
	buf.Grow(44 + dataLen)

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(rate*channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bytesPerSample*8))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	for _, s := range samples {
		_ = binary.Write(buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}
