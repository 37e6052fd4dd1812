package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrUnsupported is returned for formats that need ffmpeg.
var ErrUnsupported = errors.New("format requires ffmpeg")

// mono holds the first channel of a decoded file as 16-bit integers.
type mono struct {
	samples []int
	rate    int
}

// ToWAV converts src to a 16-bit mono PCM WAV file at dst without ffmpeg.
// Only the first channel is kept and the source sample rate is preserved.
func ToWAV(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer f.Close()

	var m mono
	switch ext := strings.ToLower(filepath.Ext(src)); ext {
	case ".mp3":
		m, err = decodeMP3(f)
	case ".ogg":
		m, err = decodeOGG(f)
	case ".flac":
		m, err = decodeFLAC(f)
	case ".wav":
		m, err = decodeWAV(f)
	default:
		return fmt.Errorf("%s: %w", ext, ErrUnsupported)
	}
	if err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(src), err)
	}
	return writeWAV(dst, m)
}

func writeWAV(dst string, m mono) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	enc := wav.NewEncoder(out, m.rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: m.rate},
		Data:           m.samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finalizing %s: %w", dst, err)
	}
	return out.Close()
}

// go-mp3 always produces 16-bit little-endian stereo.
func decodeMP3(r io.Reader) (mono, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return mono{}, err
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return mono{}, err
	}
	const frameSize = 4
	samples := make([]int, len(raw)/frameSize)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(raw[i*frameSize:])))
	}
	return mono{samples: samples, rate: dec.SampleRate()}, nil
}

func decodeOGG(r io.Reader) (mono, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return mono{}, err
	}
	ch := reader.Channels()
	if ch < 1 {
		return mono{}, fmt.Errorf("invalid channel count %d", ch)
	}

	samples := make([]int, 0, max(reader.Length(), 0))
	chunk := make([]float32, 4096*ch)
	for {
		n, err := reader.Read(chunk)
		for i := 0; i+ch <= n; i += ch {
			samples = append(samples, floatTo16(chunk[i]))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return mono{}, err
		}
	}
	return mono{samples: samples, rate: reader.SampleRate()}, nil
}

func decodeFLAC(r io.Reader) (mono, error) {
	stream, err := flac.New(r)
	if err != nil {
		return mono{}, err
	}
	defer stream.Close()

	bps := int(stream.Info.BitsPerSample)
	samples := make([]int, 0, stream.Info.NSamples)
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return mono{}, err
		}
		for _, s := range frame.Subframes[0].Samples {
			samples = append(samples, to16(int(s), bps))
		}
	}
	return mono{samples: samples, rate: int(stream.Info.SampleRate)}, nil
}

func decodeWAV(r io.ReadSeeker) (mono, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return mono{}, errors.New("invalid WAV file")
	}
	if dec.WavAudioFormat != 1 {
		return mono{}, fmt.Errorf("WAV format %d: %w", dec.WavAudioFormat, ErrUnsupported)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return mono{}, err
	}
	ch := int(dec.NumChans)
	if ch < 1 {
		return mono{}, fmt.Errorf("invalid channel count %d", ch)
	}
	bps := int(dec.BitDepth)
	samples := make([]int, 0, len(buf.Data)/ch)
	for i := 0; i+ch <= len(buf.Data); i += ch {
		v := buf.Data[i]
		if bps == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		samples = append(samples, to16(v, bps))
	}
	return mono{samples: samples, rate: int(dec.SampleRate)}, nil
}

// to16 rescales a signed sample of the given bit depth to 16 bits.
func to16(v, bps int) int {
	switch {
	case bps > 16:
		v >>= bps - 16
	case bps < 16 && bps > 0:
		v <<= 16 - bps
	}
	return clamp16(v)
}

func floatTo16(s float32) int {
	return clamp16(int(s * 32767))
}

func clamp16(v int) int {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return v
}
