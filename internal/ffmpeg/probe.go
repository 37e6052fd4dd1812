package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// VideoInfo holds stream metadata of an exported file.
type VideoInfo struct {
	Width    int
	Height   int
	FPS      float64
	Frames   int
	Duration time.Duration
	HasAudio bool
}

type ffprobeResult struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
		NbFrames     string `json:"nb_frames"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// LocateProbe resolves the ffprobe binary. An explicit path is returned as is.
func LocateProbe(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	path, err := lookPath("ffprobe")
	if err != nil {
		return "", fmt.Errorf("ffprobe not found")
	}
	return path, nil
}

// Probe runs ffprobe on path and reports its first video stream and whether
// it carries audio.
func Probe(ctx context.Context, r Runner, ffprobe, path string) (VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := run(ctx, r, "probe", ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)
	if err != nil {
		return VideoInfo{}, err
	}

	var result ffprobeResult
	if err := json.Unmarshal(res.Stdout, &result); err != nil {
		return VideoInfo{}, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	durSec, _ := strconv.ParseFloat(result.Format.Duration, 64)
	info := VideoInfo{Duration: time.Duration(durSec * float64(time.Second))}
	seenVideo := false
	for _, s := range result.Streams {
		switch s.CodecType {
		case "audio":
			info.HasAudio = true
		case "video":
			if seenVideo {
				continue
			}
			seenVideo = true
			info.Width = s.Width
			info.Height = s.Height
			info.FPS = parseFraction(s.AvgFrameRate)
			if info.FPS <= 0 {
				info.FPS = parseFraction(s.RFrameRate)
			}
			info.Frames, _ = strconv.Atoi(s.NbFrames)
		}
	}
	if !seenVideo {
		return info, fmt.Errorf("no video stream in %s", path)
	}
	return info, nil
}

// parseFraction parses "num/den" (or a plain number) into a float64.
func parseFraction(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
