package audio

import "time"

// Silence returns a buffer of zero-valued mono PCM16LE samples covering d
// at the given sample rate. Used for inter-phrase pauses and anti-click
// lead-in padding.
func Silence(d time.Duration, sampleRate int) []byte {
	if d <= 0 || sampleRate <= 0 {
		return nil
	}
	samples := int(int64(sampleRate) * d.Milliseconds() / 1000)
	return make([]byte, samples*NumChannels*SampleWidth)
}

// TrimLeading drops the first d of audio from a mono PCM16LE buffer,
// keeping the cut sample-aligned. Trimming more than the buffer holds
// yields an empty buffer.
func TrimLeading(pcm []byte, d time.Duration, sampleRate int) []byte {
	if d <= 0 || sampleRate <= 0 {
		return pcm
	}
	cut := int(int64(sampleRate)*d.Milliseconds()/1000) * NumChannels * SampleWidth
	if cut >= len(pcm) {
		return nil
	}
	return pcm[cut:]
}
