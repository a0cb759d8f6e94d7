package capture

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
)

const exitBuffer = 8

// Options configures the ffmpeg segmenter
type Options struct {
	FFmpegPath      string
	WorkDir         string
	SegmentDuration time.Duration
	SampleRate      int
	Channels        int
	UserAgent       string
	Referer         string
	// Grace is how long Stop waits after the interrupt before killing
	Grace time.Duration
}

type process struct {
	cmd      *exec.Cmd
	started  time.Time
	done     chan struct{}
	stopping bool // guarded by FFmpegCapturer.mu
}

// FFmpegCapturer supervises the long-running ffmpeg process that slices the
// live stream into WAV segments
type FFmpegCapturer struct {
	opts    Options
	logger  *zap.Logger
	command func(name string, args ...string) *exec.Cmd

	// opMu serializes Start, Stop and Swap
	opMu sync.Mutex

	mu   sync.Mutex
	proc *process

	exits chan entities.CaptureExit
}

// NewFFmpegCapturer creates an idle capturer
func NewFFmpegCapturer(opts Options, logger *zap.Logger) *FFmpegCapturer {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.Grace <= 0 {
		opts.Grace = 5 * time.Second
	}
	return &FFmpegCapturer{
		opts:    opts,
		logger:  logger,
		command: exec.Command,
		exits:   make(chan entities.CaptureExit, exitBuffer),
	}
}

// Exits reports every capture exit that was not requested by Stop or Swap
func (c *FFmpegCapturer) Exits() <-chan entities.CaptureExit {
	return c.exits
}

// Running reports whether a capture process is alive
func (c *FFmpegCapturer) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proc != nil
}

// Start launches ffmpeg against the locator
func (c *FFmpegCapturer) Start(ctx context.Context, loc entities.Locator) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.start(loc)
}

// Stop interrupts ffmpeg and waits for it to exit, killing it after the grace period
func (c *FFmpegCapturer) Stop(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.stop(ctx)
}

// Swap restarts capture against a refreshed locator
func (c *FFmpegCapturer) Swap(ctx context.Context, loc entities.Locator) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.stop(ctx); err != nil {
		return err
	}
	return c.start(loc)
}

// Args builds the ffmpeg argument list for a locator
func (c *FFmpegCapturer) Args(loc entities.Locator) []string {
	args := []string{"-hide_banner", "-loglevel", "warning"}
	if headers := c.headers(); headers != "" {
		args = append(args, "-headers", headers)
	}
	args = append(args,
		"-i", loc.URL,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(c.opts.SampleRate),
		"-ac", strconv.Itoa(c.opts.Channels),
		"-f", "segment",
		"-segment_time", strconv.Itoa(int(c.opts.SegmentDuration.Seconds())),
		"-segment_format", "wav",
		"-strftime", "1",
		"-reset_timestamps", "1",
		filepath.Join(c.opts.WorkDir, entities.SegmentFilePattern),
		"-y",
	)
	return args
}

func (c *FFmpegCapturer) headers() string {
	var b strings.Builder
	if c.opts.UserAgent != "" {
		b.WriteString("User-Agent: " + c.opts.UserAgent + "\r\n")
	}
	if c.opts.Referer != "" {
		b.WriteString("Referer: " + c.opts.Referer + "\r\n")
	}
	return b.String()
}

func (c *FFmpegCapturer) start(loc entities.Locator) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.proc != nil {
		return entities.ErrCaptureAlreadyRunning
	}
	if err := os.MkdirAll(c.opts.WorkDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}

	cmd := c.command(c.opts.FFmpegPath, c.Args(loc)...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	p := &process{cmd: cmd, started: time.Now(), done: make(chan struct{})}
	c.proc = p
	go c.supervise(p, stderr)

	if c.logger != nil {
		c.logger.Info("Capture started",
			zap.Int("pid", cmd.Process.Pid),
			zap.String("work_dir", c.opts.WorkDir),
			zap.Duration("segment", c.opts.SegmentDuration),
		)
	}
	return nil
}

func (c *FFmpegCapturer) stop(ctx context.Context) error {
	c.mu.Lock()
	p := c.proc
	if p == nil {
		c.mu.Unlock()
		return nil
	}
	p.stopping = true
	c.mu.Unlock()

	if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
		_ = p.cmd.Process.Kill()
	}

	timer := time.NewTimer(c.opts.Grace)
	defer timer.Stop()

	select {
	case <-p.done:
	case <-timer.C:
		if c.logger != nil {
			c.logger.Warn("ffmpeg did not stop gracefully, killing", zap.Duration("grace", c.opts.Grace))
		}
		_ = p.cmd.Process.Kill()
		<-p.done
	case <-ctx.Done():
		_ = p.cmd.Process.Kill()
		<-p.done
	}

	if c.logger != nil {
		c.logger.Info("Capture stopped", zap.Duration("runtime", time.Since(p.started)))
	}
	return nil
}

// supervise drains stderr, reaps the process and reports unexpected exits
func (c *FFmpegCapturer) supervise(p *process, stderr io.Reader) {
	authFailure := c.scanStderr(stderr)
	waitErr := p.cmd.Wait()

	exit := entities.CaptureExit{
		ExitCode:    -1,
		Err:         waitErr,
		AuthFailure: authFailure,
		Runtime:     time.Since(p.started),
	}
	if p.cmd.ProcessState != nil {
		exit.ExitCode = p.cmd.ProcessState.ExitCode()
	}

	c.mu.Lock()
	requested := p.stopping
	if c.proc == p {
		c.proc = nil
	}
	c.mu.Unlock()
	close(p.done)

	if requested {
		return
	}

	if c.logger != nil {
		c.logger.Warn("Capture process exited unexpectedly",
			zap.Int("exit_code", exit.ExitCode),
			zap.Bool("auth_failure", exit.AuthFailure),
			zap.Duration("runtime", exit.Runtime),
			zap.Error(waitErr),
		)
	}

	select {
	case c.exits <- exit:
	default:
		if c.logger != nil {
			c.logger.Error("Capture exit dropped, supervisor not keeping up")
		}
	}
}

func (c *FFmpegCapturer) scanStderr(r io.Reader) bool {
	authFailure := false
	scanner := bufio.NewScanner(r)
	scanner.Split(scanLines)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if IsAuthFailure(line) {
			authFailure = true
		}
		if c.logger == nil {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "error") || strings.Contains(lower, "forbidden") || strings.Contains(lower, "unauthorized"):
			c.logger.Error("ffmpeg", zap.String("line", line))
		case strings.Contains(lower, "time="):
			c.logger.Debug("ffmpeg", zap.String("line", line))
		default:
			c.logger.Info("ffmpeg", zap.String("line", line))
		}
	}
	// keep draining so ffmpeg never blocks on a full pipe
	_, _ = io.Copy(io.Discard, r)
	return authFailure
}

// IsAuthFailure reports whether an ffmpeg log line is an HTTP 401/403 from the source
func IsAuthFailure(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "401 unauthorized") || strings.Contains(lower, "403 forbidden") {
		return true
	}
	return strings.Contains(lower, "http error 401") || strings.Contains(lower, "http error 403")
}

// scanLines splits on \n or \r since ffmpeg rewrites progress lines in place
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
