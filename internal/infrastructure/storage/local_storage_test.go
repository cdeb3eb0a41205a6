package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStorage(t *testing.T) *LocalFileStorage {
	t.Helper()
	s, err := NewLocalFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestNewLocalFileStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	if _, err := NewLocalFileStorage(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("expected directory created: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("expected %s to be a directory", dir)
	}
}

func TestLocalFileStorage_WriteExclusive(t *testing.T) {
	t.Run("writes file", func(t *testing.T) {
		s := newTestStorage(t)
		if err := s.WriteExclusive(context.Background(), "so-1_att-1.jpg", strings.NewReader("jpeg bytes")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		f, err := s.Open(context.Background(), "so-1_att-1.jpg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "jpeg bytes" {
			t.Fatalf("unexpected content %q", data)
		}
	})

	t.Run("second write to same key fails", func(t *testing.T) {
		s := newTestStorage(t)
		if err := s.WriteExclusive(context.Background(), "dup.jpg", strings.NewReader("first")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err := s.WriteExclusive(context.Background(), "dup.jpg", strings.NewReader("second"))
		if err == nil {
			t.Fatalf("expected error for existing key")
		}

		f, err := s.Open(context.Background(), "dup.jpg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if string(data) != "first" {
			t.Fatalf("first write must be untouched, got %q", data)
		}
	})

	t.Run("rejects non flat keys", func(t *testing.T) {
		s := newTestStorage(t)
		for _, key := range []string{"", "../escape.jpg", "sub/dir.jpg", "/abs.jpg"} {
			if err := s.WriteExclusive(context.Background(), key, strings.NewReader("x")); err == nil {
				t.Fatalf("key %q: expected error", key)
			}
		}
	})

	t.Run("failed read leaves no file", func(t *testing.T) {
		s := newTestStorage(t)
		src := io.MultiReader(strings.NewReader("partial"), errReader{})
		if err := s.WriteExclusive(context.Background(), "broken.jpg", src); err == nil {
			t.Fatalf("expected error")
		}
		if _, err := s.Open(context.Background(), "broken.jpg"); err == nil {
			t.Fatalf("partial file must have been removed")
		}
	})

	t.Run("cancelled context aborts write", func(t *testing.T) {
		s := newTestStorage(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := s.WriteExclusive(ctx, "cancelled.jpg", strings.NewReader("x"))
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if _, err := s.Open(context.Background(), "cancelled.jpg"); err == nil {
			t.Fatalf("cancelled write must leave no file")
		}
	})
}

func TestLocalFileStorage_Remove(t *testing.T) {
	s := newTestStorage(t)
	if err := s.WriteExclusive(context.Background(), "gone.jpg", strings.NewReader("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Remove(context.Background(), "gone.jpg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Open(context.Background(), "gone.jpg"); err == nil {
		t.Fatalf("expected open to fail after remove")
	}

	if err := s.Remove(context.Background(), "never-existed.jpg"); err == nil {
		t.Fatalf("expected error removing missing file")
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }
