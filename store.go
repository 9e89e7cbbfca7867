package sitescout

import (
	"context"
	"io"
)

// FileStore persists exported artifacts.
type FileStore interface {
	// Persist writes the contents of r under name, relative to the
	// store's base location.
	Persist(ctx context.Context, name string, r io.Reader) error
}

// PostProcessor transforms an export stream before it reaches its sink,
// e.g. by compressing it. Write reports the number of uncompressed bytes
// consumed; Close flushes and must be called once.
type PostProcessor interface {
	io.WriteCloser
}
