package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/sitescout"
)

// Ensure LoggingLinkExtractor implements sitescout.LinkExtractor.
var _ sitescout.LinkExtractor = (*LoggingLinkExtractor)(nil)

// LoggingLinkExtractor wraps a LinkExtractor with debug logging.
type LoggingLinkExtractor struct {
	next   sitescout.LinkExtractor
	logger *slog.Logger
}

// NewLoggingLinkExtractor creates a new LoggingLinkExtractor.
func NewLoggingLinkExtractor(next sitescout.LinkExtractor, logger *slog.Logger) *LoggingLinkExtractor {
	return &LoggingLinkExtractor{next: next, logger: logger}
}

// ExtractLinks delegates to the wrapped extractor and logs the operation.
func (e *LoggingLinkExtractor) ExtractLinks(body string, baseURL string) (links []sitescout.ExtractedLink, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("link extraction",
			"url", redact(baseURL),
			"bytes", len(body),
			"count", len(links),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractLinks(body, baseURL)
}
