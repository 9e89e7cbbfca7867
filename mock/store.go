package mock

import (
	"context"
	"io"

	"github.com/fwojciec/sitescout"
)

var _ sitescout.FileStore = (*FileStore)(nil)

// FileStore is a mock implementation of sitescout.FileStore.
type FileStore struct {
	PersistFn func(ctx context.Context, name string, r io.Reader) error
}

func (s *FileStore) Persist(ctx context.Context, name string, r io.Reader) error {
	return s.PersistFn(ctx, name, r)
}
