package media

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/chat-apropo/speech-api/internal/logger"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// PCM is mono signed 16-bit audio.
type PCM struct {
	SampleRate int
	Samples    []int16
}

// WAVInfo is the header information of a WAV file.
type WAVInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// ReadWAVInfo parses the header of the WAV file at path.
func ReadWAVInfo(path string) (WAVInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return WAVInfo{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return WAVInfo{}, fmt.Errorf("read wav header: %w", err)
	}
	if dec.NumChans < 1 || dec.SampleRate == 0 {
		return WAVInfo{}, fmt.Errorf("invalid wav header")
	}
	return WAVInfo{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}, nil
}

// DecodeWAV reads the first channel of a 16-bit WAV file.
func DecodeWAV(path string) (*PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("read wav header: %w", err)
	}
	if dec.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d", dec.BitDepth)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}

	chans := int(dec.NumChans)
	if chans < 1 {
		chans = 1
	}
	samples := make([]int16, 0, len(buf.Data)/chans)
	for i := 0; i < len(buf.Data); i += chans {
		samples = append(samples, int16(buf.Data[i]))
	}
	return &PCM{SampleRate: int(dec.SampleRate), Samples: samples}, nil
}

// DecodeRaw interprets little-endian s16 bytes. A trailing odd byte is
// dropped.
func DecodeRaw(raw []byte, rate int) *PCM {
	n := len(raw) / 2
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return &PCM{SampleRate: rate, Samples: samples}
}

// EncodeRaw returns the samples as headerless little-endian s16.
func EncodeRaw(pcm *PCM) []byte {
	out := make([]byte, 2*len(pcm.Samples))
	for i, s := range pcm.Samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

// WriteWAV encodes pcm as a mono 16-bit WAV.
func WriteWAV(w io.WriteSeeker, pcm *PCM) error {
	enc := wav.NewEncoder(w, pcm.SampleRate, 16, 1, 1)
	data := make([]int, len(pcm.Samples))
	for i, s := range pcm.Samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: pcm.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return enc.Close()
}

// Normalizer turns a transcoded WAV into PCM at the recognizer rate,
// resampling only when the rates differ.
type Normalizer struct {
	tools Tools
	log   *logger.Logger
}

func NewNormalizer(tools Tools, log *logger.Logger) *Normalizer {
	return &Normalizer{tools: tools, log: log}
}

func (n *Normalizer) Normalize(ctx context.Context, wavPath string, targetRate int) (*PCM, error) {
	info, err := ReadWAVInfo(wavPath)
	if err != nil {
		return nil, err
	}
	if info.SampleRate == targetRate && info.BitDepth == 16 {
		return DecodeWAV(wavPath)
	}

	n.log.Warn("resampling audio",
		"original_rate", info.SampleRate,
		"target_rate", targetRate,
		"note", "may produce worse results",
	)
	raw, err := n.tools.Resample(ctx, wavPath, targetRate)
	if err != nil {
		return nil, err
	}
	return DecodeRaw(raw, targetRate), nil
}
