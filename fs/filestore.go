package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/sitescout"
)

// Ensure FileStore implements sitescout.FileStore at compile time.
var _ sitescout.FileStore = (*FileStore)(nil)

// FileStore implements sitescout.FileStore on a local directory with atomic
// update semantics. Content is written to a temporary file next to its
// destination and renamed into place once complete.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a new FileStore rooted at baseDir. A leading "~/"
// is expanded to the user's home directory.
func NewFileStore(baseDir string) (*FileStore, error) {
	if !sitescout.IsPosixPath(baseDir) {
		return nil, sitescout.Errorf(sitescout.EINVALID, "%q is not a file system path", baseDir)
	}
	if rest, ok := cutHome(baseDir); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		baseDir = filepath.Join(home, rest)
	}
	return &FileStore{baseDir: filepath.Clean(baseDir)}, nil
}

func cutHome(path string) (string, bool) {
	if len(path) >= 2 && path[:2] == "~/" {
		return path[2:], true
	}
	return "", false
}

// BaseDir returns the resolved root directory.
func (s *FileStore) BaseDir() string {
	return s.baseDir
}

// Persist writes r to name below the base directory, creating parent
// directories as needed. An existing file is replaced atomically; on
// failure the previous content is left untouched.
func (s *FileStore) Persist(ctx context.Context, name string, r io.Reader) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := safeJoin(s.baseDir, name)
	if err != nil {
		return err
	}

	// Create parent directories
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, &contextReader{ctx: ctx, r: r}); err != nil {
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), fullPath)
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
