package browser

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
	"github.com/johnquangdev/monitor-agent/pkg/executor"
)

// CommandResolver asks yt-dlp for the direct media URL of the source page
type CommandResolver struct {
	exec    executor.Executor
	binary  string
	pageURL string
	logger  *zap.Logger
}

// NewCommandResolver creates a yt-dlp based resolver
func NewCommandResolver(exec executor.Executor, binary, pageURL string, logger *zap.Logger) *CommandResolver {
	return &CommandResolver{
		exec:    exec,
		binary:  binary,
		pageURL: pageURL,
		logger:  logger,
	}
}

// Name identifies the resolver in logs
func (r *CommandResolver) Name() string { return "yt-dlp" }

// Resolve returns the first URL yt-dlp prints
func (r *CommandResolver) Resolve(ctx context.Context) (string, error) {
	out, err := r.exec.Execute(ctx, r.binary, "-g", "--no-playlist", r.pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", entities.ErrResolutionFailed, r.binary, err)
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			return line, nil
		}
	}
	return "", fmt.Errorf("%w: %s printed no url", entities.ErrResolutionFailed, r.binary)
}
