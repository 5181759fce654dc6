package transcode

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"
)

// Controller is the narrow interface the coordinator uses to drive the
// transcoding pipeline. The pipeline itself (FFmpeg, RTMP, HLS packaging)
// is external infrastructure; the coordinator only tells it when the stream
// goes live or offline and polls it for readiness.
type Controller interface {
	// Start brings the pipeline up for a live stream. Starting an already
	// running pipeline is a no-op.
	Start(ctx context.Context) error

	// Stop tears the pipeline down. Stopping a stopped pipeline is a no-op.
	Stop() error

	// Ready reports whether the pipeline is currently running.
	Ready() bool
}

// FFmpeg controls a spawned ffmpeg process that pushes the incoming media
// to an RTMP endpoint.
type FFmpeg struct {
	rtmpURL string
	logger  zerolog.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewFFmpeg creates a controller pushing to the given RTMP URL.
func NewFFmpeg(rtmpURL string, logger zerolog.Logger) *FFmpeg {
	return &FFmpeg{rtmpURL: rtmpURL, logger: logger}
}

// Start spawns the ffmpeg process.
func (f *FFmpeg) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cmd != nil {
		return nil
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "webm",
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-tune", "zerolatency",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-ar", "44100",
		"-b:a", "128k",
		"-f", "flv",
		f.rtmpURL,
	)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	f.cmd = cmd
	f.logger.Info().Str("rtmp_url", f.rtmpURL).Int("pid", cmd.Process.Pid).Msg("ffmpeg started")

	go func() {
		err := cmd.Wait()
		f.mu.Lock()
		if f.cmd == cmd {
			f.cmd = nil
		}
		f.mu.Unlock()
		if err != nil {
			f.logger.Warn().Err(err).Msg("ffmpeg exited")
		}
	}()

	return nil
}

// Stop terminates the ffmpeg process.
func (f *FFmpeg) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cmd == nil {
		return nil
	}

	err := f.cmd.Process.Kill()
	f.cmd = nil
	if err != nil {
		return fmt.Errorf("failed to stop ffmpeg: %w", err)
	}
	f.logger.Info().Msg("ffmpeg stopped")
	return nil
}

// Ready reports whether ffmpeg is running.
func (f *FFmpeg) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cmd != nil
}

// Noop is a Controller that does nothing. Used in tests and when no
// pipeline is configured.
type Noop struct{}

func (Noop) Start(context.Context) error { return nil }
func (Noop) Stop() error                 { return nil }
func (Noop) Ready() bool                 { return true }
