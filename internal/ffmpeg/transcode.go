package ffmpeg

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// DefaultTranscodeRate is the sample rate of transcoded input audio.
const DefaultTranscodeRate = 24000

// Transcoder converts compressed audio into 16-bit mono PCM WAV.
type Transcoder struct {
	Runner     Runner
	FFmpeg     string
	SampleRate int
	Logger     *zap.Logger
}

// TranscodeArgs returns the ffmpeg arguments converting src into a mono
// 16-bit PCM WAV at dst.
func TranscodeArgs(src, dst string, sampleRate int) []string {
	return []string{
		"-loglevel", "warning",
		"-y",
		"-i", src,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-acodec", "pcm_s16le",
		"-f", "wav",
		dst,
	}
}

// ToWAV runs the conversion and blocks until ffmpeg exits.
func (t *Transcoder) ToWAV(ctx context.Context, src, dst string) error {
	rate := t.SampleRate
	if rate <= 0 {
		rate = DefaultTranscodeRate
	}
	log := t.Logger
	if log == nil {
		log = zap.NewNop()
	}

	log.Info("transcoding input", zap.String("src", src), zap.String("dst", dst), zap.Int("sample_rate", rate))
	if _, err := run(ctx, t.Runner, "transcode", t.FFmpeg, TranscodeArgs(src, dst, rate)...); err != nil {
		log.Error("transcode failed", zap.String("src", src), zap.Error(err))
		return fmt.Errorf("converting %s to WAV: %w", src, err)
	}
	return nil
}
