package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/olivier-w/specvid/internal/ffmpeg"
	"github.com/olivier-w/specvid/internal/media"
	"github.com/olivier-w/specvid/internal/pcm"
	"github.com/olivier-w/specvid/internal/ui"
)

var (
	nativeToWAV = media.ToWAV
	decodeFile  = pcm.DecodeFile
)

// opener turns a user-chosen file into decoded samples. Anything that is not
// 16-bit PCM WAV is converted into tempWAV first, by ffmpeg when available.
type opener struct {
	transcoder *ffmpeg.Transcoder // nil when ffmpeg is unavailable
	tempWAV    string
	log        *zap.Logger
}

func (o *opener) open(ctx context.Context, path string) (ui.Track, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ui.Track{}, err
	}
	if info.IsDir() {
		return ui.Track{}, fmt.Errorf("%s is a directory", path)
	}
	ext := filepath.Ext(path)
	if !media.IsSupportedExt(ext) {
		return ui.Track{}, fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
	}

	audioPath := path
	if media.NeedsTranscode(path) {
		if err := o.convert(ctx, path); err != nil {
			return ui.Track{}, o.explain(path, err)
		}
		audioPath = o.tempWAV
	}

	buf, err := decodeFile(audioPath)
	if err != nil {
		return ui.Track{}, err
	}
	return ui.Track{Buffer: buf, AudioPath: audioPath, Meta: media.ReadMetadata(path)}, nil
}

func (o *opener) convert(ctx context.Context, path string) error {
	if dir := filepath.Dir(o.tempWAV); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating temp directory: %w", err)
		}
	}
	if o.transcoder != nil {
		return o.transcoder.ToWAV(ctx, path, o.tempWAV)
	}
	if !media.IsNativeExt(filepath.Ext(path)) {
		return fmt.Errorf("%s: %w", filepath.Base(path), ffmpeg.ErrNotFound)
	}
	o.logger().Info("converting without ffmpeg", zap.String("src", path), zap.String("dst", o.tempWAV))
	if err := nativeToWAV(path, o.tempWAV); err != nil {
		if errors.Is(err, media.ErrUnsupported) {
			return fmt.Errorf("%w: %w", ffmpeg.ErrNotFound, err)
		}
		return err
	}
	return nil
}

// explain returns the decoder's FormatError for a .wav that could not be
// converted, wrapping the conversion error. Other errors pass through.
func (o *opener) explain(path string, convErr error) error {
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return convErr
	}
	_, err := decodeFile(path)
	var fe *pcm.FormatError
	if !errors.As(err, &fe) {
		return convErr
	}
	o.logger().Warn("converting wav failed", zap.String("path", path), zap.Error(convErr))
	return fmt.Errorf("%w (conversion failed: %w)", err, convErr)
}

func (o *opener) logger() *zap.Logger {
	if o.log == nil {
		return zap.NewNop()
	}
	return o.log
}
