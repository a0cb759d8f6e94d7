package browser

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
	"github.com/johnquangdev/monitor-agent/pkg/config"
)

// ChromeResolver finds the stream manifest by loading the source page in a
// headless browser and watching its network requests
type ChromeResolver struct {
	pageURL    string
	pattern    *regexp.Regexp
	userAgent  string
	chromePath string
	headless   bool
	timeout    time.Duration
	logger     *zap.Logger
}

// NewChromeResolver creates a resolver for the configured source page
func NewChromeResolver(cfg config.StreamConfig, timeout time.Duration, logger *zap.Logger) (*ChromeResolver, error) {
	pattern, err := regexp.Compile(cfg.ManifestPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest pattern %q: %w", cfg.ManifestPattern, err)
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ChromeResolver{
		pageURL:    cfg.PageURL,
		pattern:    pattern,
		userAgent:  cfg.UserAgent,
		chromePath: cfg.ChromePath,
		headless:   cfg.Headless,
		timeout:    timeout,
		logger:     logger,
	}, nil
}

// Name identifies the resolver in logs
func (r *ChromeResolver) Name() string { return "chrome" }

// Resolve returns the first request URL matching the manifest pattern
func (r *ChromeResolver) Resolve(ctx context.Context) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", r.headless),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("autoplay-policy", "no-user-gesture-required"),
	)
	if r.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.userAgent))
	}
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, r.timeout)
	defer cancelRun()

	found := make(chan string, 1)
	chromedp.ListenTarget(runCtx, func(ev interface{}) {
		e, ok := ev.(*network.EventRequestWillBeSent)
		if !ok || e.Request == nil {
			return
		}
		if r.pattern.MatchString(e.Request.URL) {
			select {
			case found <- e.Request.URL:
			default:
			}
		}
	})

	if r.logger != nil {
		r.logger.Info("Resolving stream locator", zap.String("page", r.pageURL), zap.Duration("timeout", r.timeout))
	}

	if err := chromedp.Run(runCtx, network.Enable(), chromedp.Navigate(r.pageURL)); err != nil {
		// heavy pages can time out while loading after the manifest was already requested
		select {
		case u := <-found:
			return u, nil
		default:
		}
		return "", fmt.Errorf("%w: navigate %s: %v", entities.ErrResolutionFailed, r.pageURL, err)
	}

	select {
	case u := <-found:
		return u, nil
	case <-runCtx.Done():
		return "", fmt.Errorf("%w: no manifest request within %s", entities.ErrResolutionFailed, r.timeout)
	}
}
