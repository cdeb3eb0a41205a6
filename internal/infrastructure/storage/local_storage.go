package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"os_service_api/internal/usecase/interfaces"
)

const defaultUploadDir = "data/uploads"

// LocalFileStorage stores attachment bytes on the local filesystem under a
// single base directory. Keys handed to it are flat file names; anything
// trying to escape the base directory is rejected.
type LocalFileStorage struct {
	baseDir string
}

var _ interfaces.IFileStorage = (*LocalFileStorage)(nil)

// NewLocalFileStorage creates the storage rooted at dir (UPLOAD_DIR env via
// the caller; empty means the default ./data/uploads).
func NewLocalFileStorage(dir string) (*LocalFileStorage, error) {
	if dir == "" {
		dir = defaultUploadDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalFileStorage{baseDir: dir}, nil
}

// WriteExclusive writes data to path, failing if the file already exists.
// The exclusive create keeps two concurrent uploads from ever interleaving
// bytes under the same key. A partial write leaves no file behind.
func (s *LocalFileStorage) WriteExclusive(ctx context.Context, path string, data io.Reader) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := copyWithContext(ctx, f, data); err != nil {
		f.Close()
		os.Remove(full)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func (s *LocalFileStorage) Remove(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	return os.Remove(full)
}

func (s *LocalFileStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (s *LocalFileStorage) resolve(path string) (string, error) {
	if path == "" || path != filepath.Base(path) {
		return "", fmt.Errorf("invalid storage key %q", path)
	}
	return filepath.Join(s.baseDir, path), nil
}

// copyWithContext copies in chunks, honoring cancellation between chunks so
// a large upload cannot outlive its request.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var written int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, err := src.Read(buf)
		if n > 0 {
			wn, werr := dst.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, werr
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}
