package pcm

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	formatPCM      = 1
	bitsPerSample  = 16
	bytesPerSample = bitsPerSample / 8
	minFmtSize     = 16

	// blockFrames bounds each read of the data chunk, so a header that
	// overstates the data size costs at most one block before EOF.
	blockFrames = 16 << 10
)

// Buffer holds decoded mono samples normalized to [-1.0, 1.0].
// A Buffer is never modified after Decode returns it.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Len returns the number of samples.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Samples)
}

// Duration returns sampleCount/sampleRate as a time.Duration.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Seconds() * float64(time.Second))
}

// Seconds returns the buffer length in seconds.
func (b *Buffer) Seconds() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// FormatError reports a malformed or unsupported WAV stream.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErr(reason string, err error) error {
	return &FormatError{Reason: reason, Err: err}
}

// DecodeFile opens path and decodes it with Decode.
func DecodeFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// Decode parses a RIFF/WAVE stream of 16-bit integer PCM. Only the first
// channel of each sample frame is kept.
func Decode(r io.Reader) (*Buffer, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, formatErr("not a recognized container", err)
	}
	// hdr[4:8] is the RIFF size, which is not trusted.
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return nil, formatErr("not a recognized container", nil)
	}

	fmtSize, err := seekChunk(r, "fmt ")
	if err != nil {
		return nil, err
	}
	if fmtSize < minFmtSize {
		return nil, formatErr("fmt chunk too short", nil)
	}

	var fmtBody [minFmtSize]byte
	if _, err := io.ReadFull(r, fmtBody[:]); err != nil {
		return nil, formatErr("truncated fmt chunk", err)
	}
	audioFormat := binary.LittleEndian.Uint16(fmtBody[0:2])
	channels := int(binary.LittleEndian.Uint16(fmtBody[2:4]))
	sampleRate := int(binary.LittleEndian.Uint32(fmtBody[4:8]))
	// fmtBody[8:12] byte rate and fmtBody[12:14] block align are ignored.
	bits := binary.LittleEndian.Uint16(fmtBody[14:16])

	if audioFormat != formatPCM {
		return nil, formatErr("unsupported codec", nil)
	}
	if bits != bitsPerSample {
		return nil, formatErr("unsupported bit depth", nil)
	}
	if channels < 1 {
		return nil, formatErr("invalid channel count", nil)
	}
	if sampleRate < 1 {
		return nil, formatErr("invalid sample rate", nil)
	}
	if fmtSize > minFmtSize {
		if err := skip(r, int64(fmtSize-minFmtSize)); err != nil {
			return nil, formatErr("truncated fmt chunk", err)
		}
	}

	dataSize, err := seekChunk(r, "data")
	if err != nil {
		return nil, err
	}

	frameSize := int64(bytesPerSample * channels)
	samples, err := readSamples(r, int64(dataSize)/frameSize, int(frameSize))
	if err != nil {
		return nil, formatErr("truncated data chunk", err)
	}

	return &Buffer{Samples: samples, SampleRate: sampleRate}, nil
}

// readSamples reads frames sample frames of frameSize bytes and keeps the
// first channel of each. Memory grows with the data actually read, not with
// the declared size.
func readSamples(r io.Reader, frames int64, frameSize int) ([]float64, error) {
	samples := make([]float64, 0, min(frames, blockFrames))
	block := make([]byte, blockFrames*frameSize)
	for remaining := frames; remaining > 0; {
		n := int(min(remaining, blockFrames))
		raw := block[:n*frameSize]
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(raw[i*frameSize:]))
			samples = append(samples, float64(v)/32768.0)
		}
		remaining -= int64(n)
	}
	return samples, nil
}

// seekChunk reads chunk headers until id is found, skipping every other chunk
// by its declared size. It returns the size of the matching chunk, leaving r
// positioned at its payload.
func seekChunk(r io.Reader, id string) (uint32, error) {
	var hdr [8]byte
	for {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return 0, formatErr(fmt.Sprintf("missing %q chunk", id), err)
			}
			return 0, err
		}
		size := binary.LittleEndian.Uint32(hdr[4:8])
		if string(hdr[0:4]) == id {
			return size, nil
		}
		if err := skip(r, int64(size)); err != nil {
			return 0, formatErr(fmt.Sprintf("missing %q chunk", id), err)
		}
	}
}

func skip(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if s, ok := r.(io.Seeker); ok {
		_, err := s.Seek(n, io.SeekCurrent)
		return err
	}
	_, err := io.CopyN(io.Discard, r, n)
	return err
}
