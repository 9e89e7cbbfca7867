// Package xz implements a compressing sitescout.PostProcessor using
// github.com/ulikunitz/xz.
package xz

import (
	"fmt"
	"io"

	"github.com/fwojciec/sitescout"
	"github.com/ulikunitz/xz"
)

// Ensure Plugin implements sitescout.PostProcessor at compile time.
var _ sitescout.PostProcessor = (*Plugin)(nil)

// Plugin compresses everything written to it into the wrapped writer as an
// xz stream. Closing the plugin finishes the stream but leaves the wrapped
// writer open.
type Plugin struct {
	xw *xz.Writer
}

// NewPlugin wraps w in an xz stream.
func NewPlugin(w io.Writer) (*Plugin, error) {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("creating xz writer: %w", err)
	}
	return &Plugin{xw: xw}, nil
}

// Write compresses p and reports the number of uncompressed bytes consumed.
func (p *Plugin) Write(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	return p.xw.Write(b)
}

// Close flushes pending data and writes the stream footer.
func (p *Plugin) Close() error {
	return p.xw.Close()
}
