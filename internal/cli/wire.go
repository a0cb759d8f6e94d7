package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/monitor-agent/internal/infrastructure/cache"
	"github.com/johnquangdev/monitor-agent/internal/infrastructure/capture"
	"github.com/johnquangdev/monitor-agent/internal/infrastructure/external/browser"
	"github.com/johnquangdev/monitor-agent/internal/usecase/monitor"
	pkgai "github.com/johnquangdev/monitor-agent/pkg/ai"
	"github.com/johnquangdev/monitor-agent/pkg/config"
	"github.com/johnquangdev/monitor-agent/pkg/executor"
)

// newLocatorCache builds the browser resolver, falls back to yt-dlp, and
// caches the result
func newLocatorCache(cfg *config.Config, log *zap.Logger) (*cache.LocatorCache, error) {
	chrome, err := browser.NewChromeResolver(cfg.Stream, cfg.Pipeline.ResolveTimeout, log.Named("chrome"))
	if err != nil {
		return nil, err
	}

	resolvers := []browser.NamedResolver{chrome}
	if cfg.Stream.YTDLPPath != "" {
		resolvers = append(resolvers, browser.NewCommandResolver(executor.New(), cfg.Stream.YTDLPPath, cfg.Stream.PageURL, log.Named("ytdlp")))
	}

	chain := browser.NewChainResolver(log, resolvers...)
	return cache.NewLocatorCache(chain, cfg.Pipeline.LocatorTTL, cfg.Pipeline.LocatorTimeout, log.Named("locator")), nil
}

// newTranscriber selects the speech-to-text backend
func newTranscriber(cfg *config.Config) (monitor.SpeechToText, error) {
	switch cfg.Stream.STTProvider {
	case "assemblyai":
		return pkgai.NewAssemblyAIClient(&cfg.Assembly), nil
	case "whisper":
		return pkgai.NewWhisperCLI(cfg.Whisper, executor.New()), nil
	default:
		return nil, fmt.Errorf("unsupported STT_PROVIDER %q", cfg.Stream.STTProvider)
	}
}

func newCapturer(cfg *config.Config, log *zap.Logger) *capture.FFmpegCapturer {
	return capture.NewFFmpegCapturer(capture.Options{
		FFmpegPath:      cfg.Stream.FFmpegPath,
		WorkDir:         cfg.Pipeline.WorkDir,
		SegmentDuration: cfg.Pipeline.SegmentDuration,
		SampleRate:      cfg.Pipeline.SampleRate,
		Channels:        cfg.Pipeline.Channels,
		UserAgent:       cfg.Stream.UserAgent,
		Referer:         cfg.Stream.Referer,
		Grace:           cfg.Pipeline.CaptureGrace,
	}, log.Named("capture"))
}

func workerOptions(p config.PipelineConfig) monitor.WorkerOptions {
	return monitor.WorkerOptions{
		Attempts:        p.TranscribeAttempts,
		Backoff:         p.RetryBackoff,
		CallTimeout:     p.CallTimeout,
		SummaryWords:    p.SummaryWords,
		SummaryFallback: p.SummaryFallback,
		SampleRate:      p.SampleRate,
		Channels:        p.Channels,
		SegmentDuration: p.SegmentDuration,
	}
}

func controllerOptions(p config.PipelineConfig) monitor.ControllerOptions {
	return monitor.ControllerOptions{
		PollInterval:    p.PollInterval,
		RefreshInterval: p.LocatorTTL,
		RestartAttempts: p.RestartAttempts,
		RestartDelay:    p.RestartDelay,
		RestartWindow:   p.RestartWindow,
		StopTimeout:     p.StopTimeout,
	}
}
