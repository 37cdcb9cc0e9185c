package voice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

const (
	chunkSize    = 4096
	chunkBacklog = 32
)

// FFmpegMicrophone captures the default input device as 16 kHz mono
// LINEAR16 through ffmpeg.
type FFmpegMicrophone struct {
	format string
	device string
}

func NewFFmpegMicrophone(format, device string) *FFmpegMicrophone {
	return &FFmpegMicrophone{
		format: format,
		device: device,
	}
}

// Open starts ffmpeg and returns its audio in chunks. The channel is closed
// when ffmpeg exits or ctx ends. Chunks nobody reads are dropped.
func (m *FFmpegMicrophone) Open(ctx context.Context) (<-chan []byte, error) {
	args := []string{
		"-loglevel", "warning",
		"-f", m.format,
		"-i", m.device,
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-f", "s16le",
		"-",
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	slog.Info("Running ffmpeg", "cmd", "ffmpeg "+strings.Join(args, " "))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	go logStderr(stderr)

	chunks := make(chan []byte, chunkBacklog)

	go func() {
		defer close(chunks)
		defer func() {
			if err := cmd.Wait(); err != nil && ctx.Err() == nil {
				slog.Warn("ffmpeg exited", "error", err)
			}
		}()

		pump(ctx, stdout, chunks)
	}()

	return chunks, nil
}

func pump(ctx context.Context, src io.Reader, chunks chan<- []byte) {
	buffer := make([]byte, chunkSize)

	for {
		n, err := src.Read(buffer)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buffer[:n])

			select {
			case <-ctx.Done():
				return
			case chunks <- chunk:
			default:
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				slog.Warn("Microphone read failed", "error", err)
			}
			return
		}
	}
}

func logStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		slog.Debug("ffmpeg", "stderr", scanner.Text())
	}
}

// drain discards audio captured while nobody was listening.
func drain(chunks <-chan []byte) {
	for {
		select {
		case _, ok := <-chunks:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
