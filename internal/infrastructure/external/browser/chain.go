package browser

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
)

// NamedResolver is a locator source that can be identified in logs
type NamedResolver interface {
	Name() string
	Resolve(ctx context.Context) (string, error)
}

// ChainResolver tries each resolver in order; the first success wins
type ChainResolver struct {
	resolvers []NamedResolver
	logger    *zap.Logger
}

// NewChainResolver creates a resolver chain
func NewChainResolver(logger *zap.Logger, resolvers ...NamedResolver) *ChainResolver {
	return &ChainResolver{resolvers: resolvers, logger: logger}
}

// Resolve runs the chain
func (c *ChainResolver) Resolve(ctx context.Context) (string, error) {
	var errs []error
	for _, r := range c.resolvers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		url, err := r.Resolve(ctx)
		if err == nil {
			if c.logger != nil {
				c.logger.Info("Stream locator resolved", zap.String("resolver", r.Name()))
			}
			return url, nil
		}

		if c.logger != nil {
			c.logger.Warn("Resolver failed, trying next", zap.String("resolver", r.Name()), zap.Error(err))
		}
		errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
	}

	if len(errs) == 0 {
		return "", fmt.Errorf("%w: no resolvers configured", entities.ErrResolutionFailed)
	}
	return "", fmt.Errorf("%w: %w", entities.ErrResolutionFailed, errors.Join(errs...))
}
