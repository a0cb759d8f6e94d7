package entities

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	// SegmentPrefix and SegmentExt frame the capture-start timestamp in segment names
	SegmentPrefix = "audio_"
	SegmentExt    = ".wav"
	// SegmentTimeLayout is the Go layout of ffmpeg's %Y%m%d_%H%M%S
	SegmentTimeLayout = "20060102_150405"
	// SegmentFilePattern is the strftime output pattern handed to ffmpeg
	SegmentFilePattern = SegmentPrefix + "%Y%m%d_%H%M%S" + SegmentExt

	wavHeaderBytes = 44
)

// Segment is one fixed-duration audio slice awaiting transcription
type Segment struct {
	Path         string    `json:"path"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	CaptureStart time.Time `json:"capture_start"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// IsSegmentName reports whether name looks like a capture segment
func IsSegmentName(name string) bool {
	return strings.HasPrefix(name, SegmentPrefix) && strings.HasSuffix(name, SegmentExt)
}

// ParseSegmentTime extracts the capture-start time embedded in a segment file name.
// ffmpeg expands strftime in local time.
func ParseSegmentTime(name string) (time.Time, bool) {
	base := filepath.Base(name)
	if !IsSegmentName(base) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(base, SegmentPrefix), SegmentExt)
	t, err := time.ParseInLocation(SegmentTimeLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AudioDuration estimates the duration of a PCM s16le WAV file of the given size
func AudioDuration(size int64, sampleRate, channels int) time.Duration {
	byteRate := int64(sampleRate) * int64(channels) * 2
	if byteRate <= 0 || size <= wavHeaderBytes {
		return 0
	}
	return time.Duration(float64(size-wavHeaderBytes) / float64(byteRate) * float64(time.Second))
}
