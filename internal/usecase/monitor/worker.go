package monitor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
	"github.com/johnquangdev/monitor-agent/pkg/jobcontext"
)

// Outcome of processing one segment
type Outcome int

const (
	OutcomeRecord Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

// Result is what Process produced for a segment
type Result struct {
	Outcome Outcome
	Record  *entities.TranscriptRecord
	Failure *entities.SegmentFailure
}

// WorkerOptions configures retries and record building
type WorkerOptions struct {
	Attempts        int
	Backoff         time.Duration
	CallTimeout     time.Duration
	SummaryWords    int
	SummaryFallback bool
	SampleRate      int
	Channels        int
	SegmentDuration time.Duration
}

// Worker transcribes and summarizes segments one at a time
type Worker struct {
	stt        SpeechToText
	summarizer Summarizer
	archiver   SegmentArchiver
	opts       WorkerOptions
	logger     *zap.Logger
}

// NewWorker creates a worker. archiver may be nil.
func NewWorker(stt SpeechToText, summarizer Summarizer, archiver SegmentArchiver, opts WorkerOptions, logger *zap.Logger) *Worker {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 2 * time.Minute
	}
	if opts.SummaryWords < 1 {
		opts.SummaryWords = 15
	}
	return &Worker{
		stt:        stt,
		summarizer: summarizer,
		archiver:   archiver,
		opts:       opts,
		logger:     logger,
	}
}

// Process runs transcription and summarization for a segment. The segment
// file is left in place; call Consume once the result has been accepted.
func (w *Worker) Process(ctx context.Context, seg entities.Segment) Result {
	ctx = jobcontext.JobBegin(ctx, seg.Name, w.opts.Attempts)

	audio, err := os.ReadFile(seg.Path)
	if err != nil {
		return w.failed(ctx, seg, "read", 0, fmt.Errorf("%w: read %s: %v", entities.ErrSegmentTranscriptionFailed, seg.Name, err))
	}

	tctx := jobcontext.SetStage(ctx, jobcontext.StageTranscribe)
	var transcript string
	attempts, err := w.retry(tctx, func(callCtx context.Context) error {
		text, err := w.stt.Transcribe(callCtx, audio)
		if err != nil {
			return err
		}
		transcript = text
		return nil
	})
	if err != nil {
		return w.failed(tctx, seg, jobcontext.StageTranscribe, attempts, fmt.Errorf("%w: %v", entities.ErrSegmentTranscriptionFailed, err))
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		if w.logger != nil {
			w.logger.Info("Segment has no speech, skipping", jobcontext.Fields(ctx)...)
		}
		return Result{Outcome: OutcomeSkipped}
	}

	sctx := jobcontext.SetStage(ctx, jobcontext.StageSummarize)
	var summary string
	summaryAttempts, err := w.retry(sctx, func(callCtx context.Context) error {
		text, err := w.summarizer.Summarize(callCtx, transcript, w.opts.SummaryWords)
		if err != nil {
			return err
		}
		summary = strings.TrimSpace(text)
		return nil
	})
	fallback := false
	if err != nil {
		if !w.opts.SummaryFallback || ctx.Err() != nil {
			return w.failed(sctx, seg, jobcontext.StageSummarize, summaryAttempts, fmt.Errorf("%w: %v", entities.ErrSummarizationFailed, err))
		}
		if w.logger != nil {
			w.logger.Warn("Summarization failed, using transcript opening", append(jobcontext.Fields(sctx), zap.Error(err))...)
		}
		summary = FirstWords(transcript, w.opts.SummaryWords)
		fallback = true
	}

	record := entities.NewTranscriptRecord(seg, w.captureEnd(seg), transcript, summary)
	record.Metadata["transcribe_attempts"] = attempts
	record.Metadata["summary_attempts"] = summaryAttempts
	if fallback {
		record.Metadata["summary_fallback"] = true
	}

	if w.logger != nil {
		w.logger.Info("✅ Segment transcribed",
			append(jobcontext.Fields(ctx),
				zap.Int("transcript_chars", len(transcript)),
				zap.String("summary", summary),
			)...,
		)
	}
	return Result{Outcome: OutcomeRecord, Record: &record}
}

// Consume archives the segment when an archive is configured, then deletes it
func (w *Worker) Consume(ctx context.Context, seg entities.Segment, res Result) {
	if w.archiver != nil {
		if err := w.archiver.Archive(ctx, seg, res.Record); err != nil && w.logger != nil {
			w.logger.Warn("Failed to archive segment", zap.String("segment", seg.Name), zap.Error(err))
		}
	}

	if err := os.Remove(seg.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		if w.logger != nil {
			w.logger.Error("Failed to delete segment", zap.String("segment", seg.Name), zap.Error(err))
		}
	}
}

func (w *Worker) retry(ctx context.Context, op func(ctx context.Context) error) (int, error) {
	attempts := 0
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(w.opts.Backoff), uint64(w.opts.Attempts-1)),
		ctx,
	)

	err := backoff.RetryNotify(func() error {
		attempts++
		callCtx, cancel := context.WithTimeout(jobcontext.SetRetryAttempt(ctx, attempts), w.opts.CallTimeout)
		defer cancel()

		err := op(callCtx)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, bo, func(err error, next time.Duration) {
		if w.logger != nil {
			w.logger.Warn("⚠️ Attempt failed, retrying",
				append(jobcontext.Fields(jobcontext.SetRetryAttempt(ctx, attempts)),
					zap.Duration("next_in", next),
					zap.Error(err),
				)...,
			)
		}
	})
	return attempts, err
}

func (w *Worker) failed(ctx context.Context, seg entities.Segment, stage string, attempts int, err error) Result {
	if w.logger != nil {
		w.logger.Error("❌ Segment dropped", append(jobcontext.Fields(ctx), zap.Int("attempts", attempts), zap.Error(err))...)
	}
	return Result{
		Outcome: OutcomeFailed,
		Failure: &entities.SegmentFailure{
			SourceFile:   seg.Name,
			CaptureStart: seg.CaptureStart,
			Stage:        stage,
			Attempts:     attempts,
			Error:        err.Error(),
			FailedAt:     time.Now().UTC(),
		},
	}
}

func (w *Worker) captureEnd(seg entities.Segment) time.Time {
	d := entities.AudioDuration(seg.Size, w.opts.SampleRate, w.opts.Channels)
	if d <= 0 {
		d = w.opts.SegmentDuration
	}
	return seg.CaptureStart.Add(d)
}

// FirstWords returns the first n words of text
func FirstWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
