package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// audio container formats recognized by signature sniffing
const (
	formatMP4     = "mp4"
	formatADTS    = "adts"
	formatWAV     = "wav"
	formatMP3     = "mp3"
	formatOgg     = "ogg"
	formatUnknown = "unknown"
)

// AudioConfig bounds the fetch and validation of an audio object.
type AudioConfig struct {
	DownloadTimeout    time.Duration
	MaxBytes           int64
	MinDurationSeconds float64
	MaxDurationSeconds float64

	// FFprobeBinary and FFmpegBinary may be empty to skip the duration
	// probe and container normalization respectively.
	FFprobeBinary    string
	FFmpegBinary     string
	TranscodeTimeout time.Duration
}

// HTTPAudioPreparer downloads an audio object from a presigned URL,
// validates it, and normalizes containers providers do not accept.
type HTTPAudioPreparer struct {
	client *http.Client
	cfg    AudioConfig
	logger *zap.Logger
}

// NewAudioPreparer creates an audio preparer
func NewAudioPreparer(cfg AudioConfig, logger *zap.Logger) *HTTPAudioPreparer {
	return &HTTPAudioPreparer{
		client: &http.Client{Timeout: cfg.DownloadTimeout},
		cfg:    cfg,
		logger: logger,
	}
}

// Prepare fetches the audio and returns provider-ready bytes. Every
// failure aborts the whole stage attempt; classification happens at the
// retry policy, not here.
func (p *HTTPAudioPreparer) Prepare(ctx context.Context, url string) ([]byte, error) {
	data, err := p.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("audio object is empty")
	}
	if p.cfg.MaxBytes > 0 && int64(len(data)) > p.cfg.MaxBytes {
		return nil, fmt.Errorf("audio object is %d bytes, above the %d byte limit", len(data), p.cfg.MaxBytes)
	}

	format := sniffContainer(data)

	if p.cfg.FFprobeBinary != "" {
		duration, err := p.probeDuration(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("probe audio duration: %w", err)
		}
		if p.cfg.MinDurationSeconds > 0 && duration < p.cfg.MinDurationSeconds {
			return nil, fmt.Errorf("audio duration %.2fs is below the %.0fs minimum", duration, p.cfg.MinDurationSeconds)
		}
		if p.cfg.MaxDurationSeconds > 0 && duration > p.cfg.MaxDurationSeconds {
			return nil, fmt.Errorf("audio duration %.2fs is above the %.0fs maximum", duration, p.cfg.MaxDurationSeconds)
		}
	}

	// Providers take MP4/M4A and raw AAC directly; everything else is
	// transcoded to ADTS AAC.
	if format == formatMP4 || format == formatADTS {
		return data, nil
	}
	if p.cfg.FFmpegBinary == "" {
		p.logger.Warn("unexpected audio container and no transcoder configured, passing through",
			zap.String("format", format))
		return data, nil
	}
	p.logger.Info("normalizing audio container", zap.String("format", format))
	return p.transcode(ctx, data)
}

func (p *HTTPAudioPreparer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build audio request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch audio: unexpected status %d", resp.StatusCode)
	}

	limit := p.cfg.MaxBytes
	if limit <= 0 {
		limit = 1 << 30
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read audio body: %w", err)
	}
	return data, nil
}

// sniffContainer identifies the container by its leading bytes.
func sniffContainer(data []byte) string {
	if len(data) < 12 {
		return formatUnknown
	}
	switch {
	case bytes.Equal(data[4:8], []byte("ftyp")):
		return formatMP4
	case data[0] == 0xFF && (data[1] == 0xF1 || data[1] == 0xF9):
		return formatADTS
	case bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return formatWAV
	case bytes.Equal(data[0:3], []byte("ID3")):
		return formatMP3
	case data[0] == 0xFF && (data[1]&0xE0) == 0xE0:
		return formatMP3
	case bytes.Equal(data[0:4], []byte("OggS")):
		return formatOgg
	default:
		return formatUnknown
	}
}

// probeDuration runs ffprobe against a temp copy of the audio. MP4 needs
// a seekable input, so piping through stdin is not an option.
func (p *HTTPAudioPreparer) probeDuration(ctx context.Context, data []byte) (float64, error) {
	path, cleanup, err := writeTemp(data, "audio-probe-*")
	if err != nil {
		return 0, err
	}
	defer cleanup()

	cctx, cancel := context.WithTimeout(ctx, p.cfg.TranscodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, p.cfg.FFprobeBinary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe output %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

func (p *HTTPAudioPreparer) transcode(ctx context.Context, data []byte) ([]byte, error) {
	in, cleanupIn, err := writeTemp(data, "audio-in-*")
	if err != nil {
		return nil, err
	}
	defer cleanupIn()

	outFile, err := os.CreateTemp("", "audio-out-*.aac")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	cctx, cancel := context.WithTimeout(ctx, p.cfg.TranscodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, p.cfg.FFmpegBinary,
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", in,
		"-vn",
		"-c:a", "aac",
		"-f", "adts",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	converted, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read transcoded audio: %w", err)
	}
	if len(converted) == 0 {
		return nil, fmt.Errorf("ffmpeg produced empty output")
	}
	return converted, nil
}

func writeTemp(data []byte, pattern string) (string, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return path, func() { os.Remove(path) }, nil
}
