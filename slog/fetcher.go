package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitescout"
)

// Ensure LoggingFetcher implements sitescout.Fetcher.
var _ sitescout.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   sitescout.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next sitescout.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (page *sitescout.Page, err error) {
	defer func(begin time.Time) {
		var size int
		var encoding string
		if page != nil {
			size, encoding = len(page.Body), page.Encoding
		}
		f.logger.Debug("fetch",
			"url", redact(url),
			"bytes", size,
			"encoding", encoding,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
