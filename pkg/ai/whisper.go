package ai

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/johnquangdev/monitor-agent/pkg/config"
	"github.com/johnquangdev/monitor-agent/pkg/executor"
)

// WhisperCLI transcribes audio locally with the whisper.cpp command line tool
type WhisperCLI struct {
	exec     executor.Executor
	binary   string
	model    string
	language string
	threads  int
}

// NewWhisperCLI creates a local whisper transcriber
func NewWhisperCLI(cfg config.WhisperConfig, exec executor.Executor) *WhisperCLI {
	threads := cfg.Threads
	if threads <= 0 {
		threads = 4
	}
	return &WhisperCLI{
		exec:     exec,
		binary:   cfg.BinaryPath,
		model:    cfg.ModelPath,
		language: cfg.Language,
		threads:  threads,
	}
}

// Transcribe writes the audio to a temp file and runs whisper on it
func (w *WhisperCLI) Transcribe(ctx context.Context, audio []byte) (string, error) {
	tmp, err := os.CreateTemp("", "segment-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp audio: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp audio: %w", err)
	}

	// -nt: no timestamps, -np: no progress prints; the transcript is all of stdout
	args := []string{
		"-m", w.model,
		"-f", tmp.Name(),
		"-l", w.language,
		"-t", strconv.Itoa(w.threads),
		"-nt",
		"-np",
	}

	out, err := w.exec.Execute(ctx, w.binary, args...)
	if err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " "), nil
}
