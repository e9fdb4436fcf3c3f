// Package audio plays the prompt chime.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/borgmon/review-nudger/pkg/logger"
)

// The oto context can only be created once per process
var (
	audioCtx     *oto.Context
	audioCtxOnce sync.Once
	audioCtxErr  error
)

// Player plays a sound a number of times, or until stopped
type Player struct {
	stopChan chan struct{}
	done     chan struct{}

	mu      sync.Mutex
	player  *oto.Player
	stopped bool
}

type wavFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func initContext(format *wavFormat) error {
	audioCtxOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			audioCtxErr = fmt.Errorf("init audio context: %w", err)
			return
		}
		<-ready
		audioCtx = ctx
		logger.Debug("Audio context initialized", "sample_rate", format.SampleRate, "channels", format.Channels)
	})
	return audioCtxErr
}

// Play starts playing wavData repeat times with gap between plays. A repeat
// of zero or less loops until Stop. Returns nil when audio is unavailable.
func Play(wavData []byte, repeat int, gap time.Duration) *Player {
	format, pcm, err := parseWAV(wavData)
	if err != nil {
		logger.Warn("Failed to parse WAV data", "error", err)
		return nil
	}
	if format.BitDepth != 16 {
		logger.Warn("Unsupported WAV bit depth", "bits", format.BitDepth)
		return nil
	}

	if err := initContext(format); err != nil {
		logger.Warn("Audio unavailable", "error", err)
		return nil
	}

	p := &Player{
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.playLoop(pcm, repeat, gap)
	return p
}

func (p *Player) playLoop(pcm []byte, repeat int, gap time.Duration) {
	defer close(p.done)

	for n := 0; repeat <= 0 || n < repeat; n++ {
		if n > 0 && !p.wait(gap) {
			return
		}

		player := audioCtx.NewPlayer(bytes.NewReader(pcm))
		p.mu.Lock()
		if p.stopped {
			p.mu.Unlock()
			player.Close()
			return
		}
		p.player = player
		p.mu.Unlock()

		player.Play()
		for player.IsPlaying() {
			if !p.wait(10 * time.Millisecond) {
				player.Pause()
				player.Close()
				return
			}
		}

		if err := player.Close(); err != nil {
			logger.Debug("Failed to close audio player", "error", err)
		}
	}
}

// wait sleeps for d and reports false if Stop was called meanwhile
func (p *Player) wait(d time.Duration) bool {
	select {
	case <-p.stopChan:
		return false
	case <-time.After(d):
		return true
	}
}

// Stop ends playback. Safe on a nil Player and when called twice.
func (p *Player) Stop() {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stopChan)
	if p.player != nil {
		p.player.Pause()
	}
}

// Done is closed when playback has finished
func (p *Player) Done() <-chan struct{} {
	return p.done
}

var errNotWAV = errors.New("not a RIFF/WAVE file")

// parseWAV returns the format and PCM payload of a WAV file
func parseWAV(data []byte) (*wavFormat, []byte, error) {
	reader := bytes.NewReader(data)

	header := make([]byte, 12)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, nil, errNotWAV
	}

	var format *wavFormat
	for {
		var chunk struct {
			ID   [4]byte
			Size uint32
		}
		if err := binary.Read(reader, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil, errors.New("no data chunk")
			}
			return nil, nil, fmt.Errorf("read chunk: %w", err)
		}

		switch string(chunk.ID[:]) {
		case "fmt ":
			var fmtChunk struct {
				AudioFormat   uint16
				Channels      uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if err := binary.Read(reader, binary.LittleEndian, &fmtChunk); err != nil {
				return nil, nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			format = &wavFormat{
				SampleRate: int(fmtChunk.SampleRate),
				Channels:   int(fmtChunk.Channels),
				BitDepth:   int(fmtChunk.BitsPerSample),
			}
			if extra := int64(chunk.Size) - 16; extra > 0 {
				reader.Seek(extra, io.SeekCurrent)
			}
		case "data":
			if format == nil {
				return nil, nil, errors.New("data chunk before fmt chunk")
			}
			pcm := make([]byte, chunk.Size)
			n, err := io.ReadFull(reader, pcm)
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, nil, fmt.Errorf("read data chunk: %w", err)
			}
			return format, pcm[:n], nil
		default:
			reader.Seek(int64(chunk.Size), io.SeekCurrent)
		}
	}
}
