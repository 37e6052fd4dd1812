package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

// ErrNoFrames is returned when the frame directory holds no PNG files.
var ErrNoFrames = errors.New("no PNG files found in the output folder")

var (
	exportGlob   = filepath.Glob
	exportRemove = os.Remove
)

// Exporter assembles a numbered PNG sequence into a video and muxes it with
// an audio track.
type Exporter struct {
	Runner    Runner
	FFmpeg    string
	FrameDir  string
	Pattern   string // printf-style frame path; defaults to FrameDir/%08d.png
	TempVideo string
	Output    string
	FPS       float64
	Width     int
	Height    int
	Logger    *zap.Logger
}

// EncodeArgs returns the arguments turning frames 1..frames of pattern into
// an H.264 stream.
func EncodeArgs(pattern string, frames int, fps float64, width, height int, dst string) []string {
	rate := strconv.FormatFloat(fps, 'f', -1, 64)
	return []string{
		"-loglevel", "warning",
		"-y",
		"-framerate", rate,
		"-start_number", "1",
		"-i", pattern,
		"-vframes", strconv.Itoa(frames),
		"-vf", fmt.Sprintf("scale=%d:%d,format=yuv420p", width, height),
		"-vcodec", "libx264",
		"-r", rate,
		dst,
	}
}

// MuxArgs returns the arguments combining the video stream of video with the
// first audio stream of audio. Video is copied, audio re-encoded to AAC.
func MuxArgs(video, audio, dst string) []string {
	return []string{
		"-loglevel", "warning",
		"-y",
		"-i", video,
		"-i", audio,
		"-c:v", "copy",
		"-c:a", "aac",
		"-map", "0:v:0",
		"-map", "1:a:0",
		dst,
	}
}

// Export encodes frames rendered frames and muxes them with audioPath.
// It blocks until both ffmpeg invocations exit and returns the final path.
func (e *Exporter) Export(ctx context.Context, frames int, audioPath string) (string, error) {
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}

	pngs, err := exportGlob(filepath.Join(e.FrameDir, "*.png"))
	if err != nil {
		return "", fmt.Errorf("listing frames: %w", err)
	}
	if len(pngs) == 0 || frames <= 0 {
		return "", ErrNoFrames
	}

	pattern := e.Pattern
	if pattern == "" {
		pattern = filepath.Join(e.FrameDir, "%08d.png")
	}
	log.Info("encoding video",
		zap.Int("frames", frames),
		zap.Float64("fps", e.FPS),
		zap.Int("width", e.Width),
		zap.Int("height", e.Height),
		zap.String("dst", e.TempVideo))
	if _, err := run(ctx, e.Runner, "video encoding", e.FFmpeg,
		EncodeArgs(pattern, frames, e.FPS, e.Width, e.Height, e.TempVideo)...); err != nil {
		return "", err
	}

	log.Info("muxing audio", zap.String("audio", audioPath), zap.String("dst", e.Output))
	if _, err := run(ctx, e.Runner, "muxing", e.FFmpeg, MuxArgs(e.TempVideo, audioPath, e.Output)...); err != nil {
		return "", err
	}

	if err := exportRemove(e.TempVideo); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("removing temp video", zap.String("path", e.TempVideo), zap.Error(err))
	}
	return e.Output, nil
}
