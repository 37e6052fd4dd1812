package media

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
)

var audioExts = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".aac":  true,
	".m4a":  true,
}

// nativeExts can be converted without ffmpeg.
var nativeExts = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".ogg":  true,
}

var playlistExts = map[string]bool{
	".m3u":  true,
	".m3u8": true,
	".pls":  true,
}

// IsSupportedExt returns true if the extension is an audio format that can be opened.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// IsNativeExt returns true if the extension can be converted without ffmpeg.
func IsNativeExt(ext string) bool {
	return nativeExts[strings.ToLower(ext)]
}

// IsPlaylistExt returns true if the extension is a supported playlist format.
func IsPlaylistExt(ext string) bool {
	return playlistExts[strings.ToLower(ext)]
}

// SupportedExtsList returns a human-readable list of supported audio formats.
func SupportedExtsList() string {
	return ".wav, .mp3, .flac, .ogg, .aac, .m4a"
}

// NeedsTranscode reports whether path must be converted before the PCM
// decoder can read it. Only 16-bit integer PCM WAV files are read directly.
// A .wav that is not a RIFF/WAVE file at all is left to the decoder, which
// reports why it was rejected.
func NeedsTranscode(path string) bool {
	if strings.ToLower(filepath.Ext(path)) != ".wav" {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		// Let the decoder report the open error.
		return false
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return false
	}
	return dec.WavAudioFormat != 1 || dec.BitDepth != 16
}
