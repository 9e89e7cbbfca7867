package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitescout"
)

// Ensure LoggingRobotsService implements sitescout.RobotsService.
var _ sitescout.RobotsService = (*LoggingRobotsService)(nil)

// LoggingRobotsService wraps a RobotsService with debug logging.
type LoggingRobotsService struct {
	next   sitescout.RobotsService
	logger *slog.Logger
}

// NewLoggingRobotsService creates a new LoggingRobotsService.
func NewLoggingRobotsService(next sitescout.RobotsService, logger *slog.Logger) *LoggingRobotsService {
	return &LoggingRobotsService{next: next, logger: logger}
}

// Policy delegates to the wrapped service and logs the operation.
func (s *LoggingRobotsService) Policy(ctx context.Context, rawURL string) (policy sitescout.RobotsPolicy, err error) {
	defer func(begin time.Time) {
		var sitemaps int
		if policy != nil {
			sitemaps = len(policy.Sitemaps())
		}
		s.logger.Debug("robots policy",
			"url", redact(rawURL),
			"sitemaps", sitemaps,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Policy(ctx, rawURL)
}
