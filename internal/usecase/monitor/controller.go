package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
	ucerrors "github.com/johnquangdev/monitor-agent/internal/usecase/errors"
)

// ControllerOptions configures the pipeline loops
type ControllerOptions struct {
	PollInterval    time.Duration
	RefreshInterval time.Duration
	RestartAttempts int
	RestartDelay    time.Duration
	RestartWindow   time.Duration
	StopTimeout     time.Duration
	SinkTimeout     time.Duration
}

// Controller owns the pipeline lifecycle: locator, capture, watcher and worker
type Controller struct {
	locators LocatorSource
	capturer Capturer
	watcher  SegmentSource
	worker   SegmentProcessor
	sinks    []Sink
	opts     ControllerOptions
	logger   *zap.Logger

	mu        sync.Mutex
	state     entities.PipelineState
	processed int64
	failed    int64
	lastErr   error
	startedAt time.Time
	run       *pipelineRun
}

// pipelineRun holds the goroutines of one Running period
type pipelineRun struct {
	ctx    context.Context
	cancel context.CancelFunc

	// in-flight segment work outlives ctx until the stop timeout
	workCtx    context.Context
	workCancel context.CancelFunc

	control  sync.WaitGroup
	pollDone chan struct{}

	// capture deaths the Capturer cannot report, e.g. a failed swap
	lost chan entities.CaptureExit
}

// NewController creates a stopped pipeline controller
func NewController(
	locators LocatorSource,
	capturer Capturer,
	watcher SegmentSource,
	worker SegmentProcessor,
	sinks []Sink,
	opts ControllerOptions,
	logger *zap.Logger,
) *Controller {
	if opts.SinkTimeout <= 0 {
		opts.SinkTimeout = 10 * time.Second
	}
	return &Controller{
		locators: locators,
		capturer: capturer,
		watcher:  watcher,
		worker:   worker,
		sinks:    sinks,
		opts:     opts,
		logger:   logger,
		state:    entities.PipelineStopped,
	}
}

// Status returns a snapshot of the pipeline
func (c *Controller) Status() entities.PipelineStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	return entities.PipelineStatus{
		State:          c.state,
		ProcessedCount: c.processed,
		FailedCount:    c.failed,
		LastError:      c.lastErr,
		StartedAt:      c.startedAt,
	}
}

// Start acquires a locator, starts capture and launches the pipeline loops
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != entities.PipelineStopped {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: state is %s", ucerrors.ErrPipelineAlreadyRunning, state)
	}
	c.state = entities.PipelineStarting
	c.processed = 0
	c.failed = 0
	c.lastErr = nil
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("🚀 Starting pipeline")
	}

	c.watcher.Reset()
	c.drainExits()

	loc, err := c.locators.Get(ctx)
	if err != nil {
		return c.abortStart(err)
	}
	if err := c.capturer.Start(ctx, loc); err != nil {
		return c.abortStart(fmt.Errorf("start capture: %w", err))
	}

	base := context.WithoutCancel(ctx)
	run := &pipelineRun{
		pollDone: make(chan struct{}),
		lost:     make(chan entities.CaptureExit, 1),
	}
	run.ctx, run.cancel = context.WithCancel(base)
	run.workCtx, run.workCancel = context.WithCancel(base)

	c.mu.Lock()
	c.state = entities.PipelineRunning
	c.startedAt = time.Now().UTC()
	c.run = run
	c.mu.Unlock()

	run.control.Add(2)
	go c.refreshLoop(run)
	go c.supervise(run)
	go c.pollLoop(run)

	if c.logger != nil {
		c.logger.Info("✅ Pipeline running",
			zap.Duration("locator_age", loc.Age(time.Now())),
			zap.Duration("poll_interval", c.opts.PollInterval),
		)
	}
	return nil
}

// Stop halts capture and polling and waits for the in-flight segment
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.state != entities.PipelineRunning {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: state is %s", ucerrors.ErrPipelineNotRunning, state)
	}
	c.state = entities.PipelineStopping
	run := c.run
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("🛑 Stopping pipeline")
	}
	c.teardown(ctx, run)
	return nil
}

// Shutdown stops the pipeline if it is running
func (c *Controller) Shutdown(ctx context.Context) error {
	err := c.Stop(ctx)
	if errors.Is(err, ucerrors.ErrPipelineNotRunning) {
		return nil
	}
	return err
}

func (c *Controller) abortStart(err error) error {
	c.mu.Lock()
	c.state = entities.PipelineStopped
	c.lastErr = err
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Error("❌ Pipeline failed to start", zap.Error(err))
	}
	return err
}

// fail moves a running pipeline to Stopped after a fatal error
func (c *Controller) fail(run *pipelineRun, err error) {
	c.mu.Lock()
	if c.state != entities.PipelineRunning || c.run != run {
		c.mu.Unlock()
		return
	}
	c.state = entities.PipelineStopping
	c.lastErr = err
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Error("❌ Pipeline stopped after fatal error", zap.Error(err))
	}
	// the caller is one of the control loops teardown waits for
	go c.teardown(context.Background(), run)
}

func (c *Controller) teardown(ctx context.Context, run *pipelineRun) {
	run.cancel()
	run.control.Wait()

	if err := c.capturer.Stop(ctx); err != nil && c.logger != nil {
		c.logger.Error("Failed to stop capture", zap.Error(err))
	}

	timer := time.NewTimer(c.opts.StopTimeout)
	select {
	case <-run.pollDone:
	case <-timer.C:
		if c.logger != nil {
			c.logger.Warn("In-flight segment did not finish in time, cancelling", zap.Duration("timeout", c.opts.StopTimeout))
		}
		run.workCancel()
		<-run.pollDone
	}
	timer.Stop()
	run.workCancel()

	c.mu.Lock()
	c.state = entities.PipelineStopped
	c.run = nil
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("Pipeline stopped")
	}
}

// active reports whether run is still the Running pipeline
func (c *Controller) active(run *pipelineRun) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == entities.PipelineRunning && c.run == run
}

func (c *Controller) drainExits() {
	for {
		select {
		case <-c.capturer.Exits():
		default:
			return
		}
	}
}

func (c *Controller) pollLoop(run *pipelineRun) {
	defer close(run.pollDone)

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-run.ctx.Done():
			return
		case <-ticker.C:
		}

		segments, err := c.watcher.Poll()
		if err != nil {
			if c.logger != nil {
				c.logger.Error("Failed to poll segments", zap.Error(err))
			}
			continue
		}

		for _, seg := range segments {
			if run.ctx.Err() != nil {
				return
			}
			c.handleSegment(run, seg)
		}
	}
}

func (c *Controller) handleSegment(run *pipelineRun, seg entities.Segment) {
	res := c.worker.Process(run.workCtx, seg)

	if !c.active(run) {
		// the next run picks the file up again
		if c.logger != nil {
			c.logger.Info("Discarding result finished after stop", zap.String("segment", seg.Name))
		}
		return
	}

	switch res.Outcome {
	case OutcomeRecord:
		c.deliver(run.workCtx, *res.Record)
		c.mu.Lock()
		c.processed++
		c.mu.Unlock()
	case OutcomeFailed:
		c.mu.Lock()
		c.failed++
		c.mu.Unlock()
		c.notifyFailure(run.workCtx, *res.Failure)
	}

	c.worker.Consume(run.workCtx, seg, res)
}

func (c *Controller) deliver(ctx context.Context, record entities.TranscriptRecord) {
	for _, sink := range c.sinks {
		sctx, cancel := context.WithTimeout(ctx, c.opts.SinkTimeout)
		err := sink.Deliver(sctx, record)
		cancel()
		if err != nil && c.logger != nil {
			c.logger.Error("Sink write failed",
				zap.String("sink", sink.Name()),
				zap.String("record_id", record.ID.String()),
				zap.Error(fmt.Errorf("%w: %v", entities.ErrSinkWriteFailed, err)),
			)
		}
	}
}

func (c *Controller) notifyFailure(ctx context.Context, failure entities.SegmentFailure) {
	for _, sink := range c.sinks {
		notifier, ok := sink.(FailureNotifier)
		if !ok {
			continue
		}
		sctx, cancel := context.WithTimeout(ctx, c.opts.SinkTimeout)
		err := notifier.NotifyFailure(sctx, failure)
		cancel()
		if err != nil && c.logger != nil {
			c.logger.Warn("Failure notification failed", zap.String("sink", sink.Name()), zap.Error(err))
		}
	}
}

func (c *Controller) refreshLoop(run *pipelineRun) {
	defer run.control.Done()

	ticker := time.NewTicker(c.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-run.ctx.Done():
			return
		case <-ticker.C:
		}

		loc, err := c.locators.Refresh(run.ctx)
		if err != nil {
			if c.logger != nil && run.ctx.Err() == nil {
				c.logger.Warn("Locator refresh failed, keeping current capture", zap.Error(err))
			}
			continue
		}
		if run.ctx.Err() != nil {
			return
		}

		started := time.Now()
		if err := c.capturer.Swap(run.ctx, loc); err != nil {
			if c.logger != nil {
				c.logger.Error("Failed to swap capture to refreshed locator", zap.Error(err))
			}
			select {
			case run.lost <- entities.CaptureExit{ExitCode: -1, Err: err, Runtime: time.Since(started)}:
			default:
			}
			continue
		}
		if c.logger != nil {
			c.logger.Info("🔄 Capture switched to refreshed locator")
		}
	}
}

// supervise restarts capture after unexpected exits, up to the restart bound
func (c *Controller) supervise(run *pipelineRun) {
	defer run.control.Done()

	restarts := 0
	exemptionUsed := false

	for {
		var exit entities.CaptureExit
		select {
		case <-run.ctx.Done():
			return
		case exit = <-c.capturer.Exits():
		case exit = <-run.lost:
		}

		if exit.Runtime >= c.opts.RestartWindow {
			restarts = 0
			exemptionUsed = false
		}

		exempt := false
		if exit.AuthFailure {
			c.locators.Invalidate()
			if !exemptionUsed {
				exempt = true
				exemptionUsed = true
			}
		}
		if !exempt {
			restarts++
		}

		if c.logger != nil {
			c.logger.Warn("⚠️ Capture exited, restarting",
				zap.Int("exit_code", exit.ExitCode),
				zap.Bool("auth_failure", exit.AuthFailure),
				zap.Bool("exempt", exempt),
				zap.Int("restarts", restarts),
				zap.Int("max_restarts", c.opts.RestartAttempts),
				zap.Error(exit.Err),
			)
		}

		if !c.restartCapture(run, exit, &restarts) {
			return
		}
	}
}

// restartCapture retries until capture runs again or the bound is exceeded.
// It reports false once the pipeline is no longer running.
func (c *Controller) restartCapture(run *pipelineRun, exit entities.CaptureExit, restarts *int) bool {
	for {
		if *restarts > c.opts.RestartAttempts {
			c.fail(run, fmt.Errorf("%w: exit code %d, %d restarts exhausted: %v",
				entities.ErrCaptureProcessExited, exit.ExitCode, c.opts.RestartAttempts, exit.Err))
			return false
		}

		select {
		case <-run.ctx.Done():
			return false
		case <-time.After(c.opts.RestartDelay):
		}

		loc, err := c.locators.Get(run.ctx)
		if err == nil {
			err = c.capturer.Start(run.ctx, loc)
			if errors.Is(err, entities.ErrCaptureAlreadyRunning) {
				err = nil
			}
		}
		if err == nil {
			if c.logger != nil {
				c.logger.Info("Capture restarted", zap.Int("restarts", *restarts))
			}
			return true
		}
		if run.ctx.Err() != nil {
			return false
		}

		if c.logger != nil {
			c.logger.Error("Capture restart failed", zap.Error(err))
		}
		exit = entities.CaptureExit{ExitCode: -1, Err: err}
		*restarts++
	}
}
