package monitor

import (
	"context"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
)

// SpeechToText converts one audio segment to text
type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Summarizer condenses a transcript to roughly targetWords words
type Summarizer interface {
	Summarize(ctx context.Context, transcript string, targetWords int) (string, error)
}

// SegmentArchiver keeps a copy of a consumed segment before it is deleted.
// record is nil when the segment produced no record.
type SegmentArchiver interface {
	Archive(ctx context.Context, seg entities.Segment, record *entities.TranscriptRecord) error
}

// Sink receives every finished record
type Sink interface {
	Name() string
	Deliver(ctx context.Context, record entities.TranscriptRecord) error
}

// FailureNotifier is implemented by sinks that also want dropped-segment events
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, failure entities.SegmentFailure) error
}

// LocatorSource hands out the current stream locator
type LocatorSource interface {
	Get(ctx context.Context) (entities.Locator, error)
	Refresh(ctx context.Context) (entities.Locator, error)
	Invalidate()
}

// Capturer supervises the external capture process
type Capturer interface {
	Start(ctx context.Context, loc entities.Locator) error
	Stop(ctx context.Context) error
	Swap(ctx context.Context, loc entities.Locator) error
	Running() bool
	Exits() <-chan entities.CaptureExit
}

// SegmentSource surfaces completed segments
type SegmentSource interface {
	Poll() ([]entities.Segment, error)
	Reset()
}

// SegmentProcessor turns a segment into a result and later consumes the file
type SegmentProcessor interface {
	Process(ctx context.Context, seg entities.Segment) Result
	Consume(ctx context.Context, seg entities.Segment, res Result)
}
