package monitor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
)

type fakeSTT struct {
	mu    sync.Mutex
	calls int
	fail  int // fail this many calls first; -1 fails forever
	text  string
	delay func(audio []byte) time.Duration
}

func (f *fakeSTT) Transcribe(ctx context.Context, audio []byte) (string, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	if f.delay != nil {
		select {
		case <-time.After(f.delay(audio)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.fail < 0 || n <= f.fail {
		return "", errors.New("stt unavailable")
	}
	if f.text != "" {
		return f.text, nil
	}
	return "transcript of " + string(audio[:min(len(audio), 8)]), nil
}

func (f *fakeSTT) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSummarizer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript string, targetWords int) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "summary", nil
}

type fakeArchiver struct {
	archived []string
}

func (a *fakeArchiver) Archive(ctx context.Context, seg entities.Segment, record *entities.TranscriptRecord) error {
	a.archived = append(a.archived, seg.Name)
	return nil
}

func testWorkerOptions() WorkerOptions {
	return WorkerOptions{
		Attempts:        3,
		Backoff:         time.Millisecond,
		CallTimeout:     time.Second,
		SummaryWords:    15,
		SampleRate:      16000,
		Channels:        1,
		SegmentDuration: time.Minute,
	}
}

func newTestSegment(t *testing.T, dir, name string, size int) entities.Segment {
	t.Helper()
	writeSegment(t, dir, name, size)
	start, _ := entities.ParseSegmentTime(name)
	return entities.Segment{Path: filepath.Join(dir, name), Name: name, Size: int64(size), CaptureStart: start}
}

func TestWorker_ProcessSuccess(t *testing.T) {
	dir := t.TempDir()
	seg := newTestSegment(t, dir, "audio_20250101_120000.wav", 44+32000*60)
	w := NewWorker(&fakeSTT{text: " hello world "}, &fakeSummarizer{}, nil, testWorkerOptions(), nil)

	res := w.Process(context.Background(), seg)
	if res.Outcome != OutcomeRecord || res.Record == nil {
		t.Fatalf("expected a record, got %+v", res)
	}
	rec := res.Record
	if rec.Transcript != "hello world" || rec.Summary != "summary" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.SourceFile != seg.Name || !rec.CaptureStart.Equal(seg.CaptureStart) {
		t.Fatalf("record does not describe segment: %+v", rec)
	}
	if got := rec.CaptureEnd.Sub(rec.CaptureStart); got != time.Minute {
		t.Fatalf("expected one minute of audio, got %s", got)
	}
	if rec.Metadata["transcribe_attempts"] != 1 {
		t.Fatalf("unexpected metadata %v", rec.Metadata)
	}

	if _, err := os.Stat(seg.Path); err != nil {
		t.Fatalf("process must not delete the segment: %v", err)
	}
	w.Consume(context.Background(), seg, res)
	if _, err := os.Stat(seg.Path); !os.IsNotExist(err) {
		t.Fatalf("expected segment deleted, got %v", err)
	}
}

func TestWorker_TranscriptionRetriesExhausted(t *testing.T) {
	dir := t.TempDir()
	stt := &fakeSTT{fail: -1}
	summarizer := &fakeSummarizer{}
	w := NewWorker(stt, summarizer, nil, testWorkerOptions(), nil)

	res := w.Process(context.Background(), newTestSegment(t, dir, "audio_20250101_120000.wav", 20000))
	if res.Outcome != OutcomeFailed || res.Failure == nil {
		t.Fatalf("expected failure, got %+v", res)
	}
	if stt.Calls() != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", stt.Calls())
	}
	if res.Failure.Attempts != 3 || res.Failure.Stage != "transcribe" {
		t.Fatalf("unexpected failure %+v", res.Failure)
	}
	if summarizer.calls != 0 {
		t.Fatalf("summarizer should not run after transcription failure")
	}
}

func TestWorker_TranscriptionRecoversWithinBudget(t *testing.T) {
	dir := t.TempDir()
	stt := &fakeSTT{fail: 2, text: "recovered"}
	w := NewWorker(stt, &fakeSummarizer{}, nil, testWorkerOptions(), nil)

	res := w.Process(context.Background(), newTestSegment(t, dir, "audio_20250101_120000.wav", 20000))
	if res.Outcome != OutcomeRecord {
		t.Fatalf("expected record after retries, got %+v", res)
	}
	if res.Record.Metadata["transcribe_attempts"] != 3 {
		t.Fatalf("expected 3 attempts recorded, got %v", res.Record.Metadata["transcribe_attempts"])
	}
}

func TestWorker_EmptyTranscriptSkipped(t *testing.T) {
	dir := t.TempDir()
	summarizer := &fakeSummarizer{}
	stt := &fakeSTT{}
	stt.text = "   "
	w := NewWorker(stt, summarizer, nil, testWorkerOptions(), nil)

	res := w.Process(context.Background(), newTestSegment(t, dir, "audio_20250101_120000.wav", 20000))
	if res.Outcome != OutcomeSkipped {
		t.Fatalf("expected skip, got %+v", res)
	}
	if summarizer.calls != 0 {
		t.Fatalf("silence should not be summarized")
	}
}

func TestWorker_SummaryFailure(t *testing.T) {
	dir := t.TempDir()
	summarizer := &fakeSummarizer{err: errors.New("rate limited")}
	w := NewWorker(&fakeSTT{text: "a b c"}, summarizer, nil, testWorkerOptions(), nil)

	res := w.Process(context.Background(), newTestSegment(t, dir, "audio_20250101_120000.wav", 20000))
	if res.Outcome != OutcomeFailed || res.Failure.Stage != "summarize" {
		t.Fatalf("expected summarize failure, got %+v", res)
	}
	if summarizer.calls != 3 {
		t.Fatalf("expected 3 summarize attempts, got %d", summarizer.calls)
	}
}

func TestWorker_SummaryFallback(t *testing.T) {
	dir := t.TempDir()
	opts := testWorkerOptions()
	opts.SummaryFallback = true
	opts.SummaryWords = 2
	w := NewWorker(&fakeSTT{text: "breaking news tonight"}, &fakeSummarizer{err: errors.New("down")}, nil, opts, nil)

	res := w.Process(context.Background(), newTestSegment(t, dir, "audio_20250101_120000.wav", 20000))
	if res.Outcome != OutcomeRecord {
		t.Fatalf("expected record with fallback summary, got %+v", res)
	}
	if res.Record.Summary != "breaking news..." || res.Record.Metadata["summary_fallback"] != true {
		t.Fatalf("unexpected fallback record %+v", res.Record)
	}
}

func TestWorker_ConsumeArchivesThenDeletes(t *testing.T) {
	dir := t.TempDir()
	archiver := &fakeArchiver{}
	w := NewWorker(&fakeSTT{}, &fakeSummarizer{}, archiver, testWorkerOptions(), nil)
	seg := newTestSegment(t, dir, "audio_20250101_120000.wav", 20000)

	w.Consume(context.Background(), seg, Result{Outcome: OutcomeSkipped})
	if len(archiver.archived) != 1 || archiver.archived[0] != seg.Name {
		t.Fatalf("expected segment archived, got %v", archiver.archived)
	}
	if _, err := os.Stat(seg.Path); !os.IsNotExist(err) {
		t.Fatalf("expected segment deleted")
	}
}

func TestWorker_CancelledContextStopsRetrying(t *testing.T) {
	dir := t.TempDir()
	stt := &fakeSTT{fail: -1}
	opts := testWorkerOptions()
	opts.Backoff = time.Hour
	w := NewWorker(stt, &fakeSummarizer{}, nil, opts, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	seg := newTestSegment(t, dir, "audio_20250101_120000.wav", 20000)
	done := make(chan Result, 1)
	go func() { done <- w.Process(ctx, seg) }()

	select {
	case res := <-done:
		if res.Outcome != OutcomeFailed {
			t.Fatalf("expected failure on cancel, got %+v", res)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("process did not stop on cancel")
	}
}
