package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

const (
	chimeSampleRate = 44100
	chimeRepeat     = 2
	chimeGap        = 400 * time.Millisecond
)

// Two-note chime, E6 then A5
var chimeNotes = []struct {
	freq     float64
	duration time.Duration
}{
	{1318.51, 180 * time.Millisecond},
	{880.00, 320 * time.Millisecond},
}

// ChimeWAV renders the prompt chime as a mono 16-bit PCM WAV file
func ChimeWAV() []byte {
	var samples []int16
	for _, note := range chimeNotes {
		samples = append(samples, tone(note.freq, note.duration)...)
	}
	return encodeWAV(samples, chimeSampleRate)
}

// PlayChime plays the chime twice. The returned player may be nil.
func PlayChime() *Player {
	return Play(ChimeWAV(), chimeRepeat, chimeGap)
}

// tone renders a sine with a short attack and exponential decay
func tone(freq float64, d time.Duration) []int16 {
	n := int(int64(d) * chimeSampleRate / int64(time.Second))
	attack := chimeSampleRate / 200
	out := make([]int16, n)
	for i := range out {
		t := float64(i) / chimeSampleRate
		env := math.Exp(-4 * t / d.Seconds())
		if i < attack {
			env *= float64(i) / float64(attack)
		}
		out[i] = int16(0.4 * env * math.MaxInt16 * math.Sin(2*math.Pi*freq*t))
	}
	return out
}

func encodeWAV(samples []int16, sampleRate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	dataSize := uint32(len(samples) * 2)
	blockAlign := uint16(channels * bitsPerSample / 8)

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, struct {
		Size          uint32
		AudioFormat   uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
	}{16, 1, channels, uint32(sampleRate), uint32(sampleRate) * uint32(blockAlign), blockAlign, bitsPerSample})

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	binary.Write(buf, binary.LittleEndian, samples)
	return buf.Bytes()
}
