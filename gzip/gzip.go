// Package gzip implements a compressing sitescout.PostProcessor using
// github.com/klauspost/compress/gzip.
package gzip

import (
	"io"
	"time"

	"github.com/fwojciec/sitescout"
	"github.com/klauspost/compress/gzip"
)

// Compression levels accepted by Options.Level.
const (
	DefaultCompression = gzip.DefaultCompression
	BestSpeed          = gzip.BestSpeed
	BestCompression    = gzip.BestCompression
)

// Ensure Plugin implements sitescout.PostProcessor at compile time.
var _ sitescout.PostProcessor = (*Plugin)(nil)

// Options configures the gzip stream.
type Options struct {
	// Level is the compression level, 1-9. Zero selects BestCompression.
	Level int
	// ModTime is recorded in the gzip header. The zero value records none,
	// which keeps output reproducible.
	ModTime time.Time
	// Filename is recorded in the gzip header.
	Filename string
}

// Plugin compresses everything written to it into the wrapped writer.
// Closing the plugin flushes the gzip trailer but leaves the wrapped writer
// open.
type Plugin struct {
	zw *gzip.Writer
}

// NewPlugin wraps w in a gzip stream.
func NewPlugin(w io.Writer, opts Options) (*Plugin, error) {
	level := opts.Level
	if level == 0 {
		level = BestCompression
	}
	zw, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		return nil, sitescout.Errorf(sitescout.EINVALID, "invalid gzip level %d", opts.Level)
	}
	zw.ModTime = opts.ModTime
	zw.Name = opts.Filename
	return &Plugin{zw: zw}, nil
}

// Write compresses p and reports the number of uncompressed bytes consumed.
func (p *Plugin) Write(b []byte) (int, error) {
	return p.zw.Write(b)
}

// Close flushes any pending data and writes the gzip trailer.
func (p *Plugin) Close() error {
	return p.zw.Close()
}
