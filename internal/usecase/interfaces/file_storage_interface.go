package interfaces

import (
	"context"
	"io"
)

// IFileStorage abstracts the byte sink for attachment files.
//
// WriteExclusive must fail if the path already exists, so two concurrent
// uploads can never clobber each other's bytes. Remove compensates a failed
// upload; Open serves downloads.
type IFileStorage interface {
	WriteExclusive(ctx context.Context, path string, data io.Reader) error
	Remove(ctx context.Context, path string) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}
