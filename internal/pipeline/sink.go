// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives a finished export. Deliver is only called with a complete
// document and returns where it went.
type Sink interface {
	Deliver(ctx context.Context, filename string, data []byte) (string, error)
}

// DirSink writes exports into Dir, creating it when missing. Files are
// written to a temporary name and renamed into place, so a failed write
// leaves no partial file behind.
type DirSink struct {
	Dir string
}

// Deliver implements Sink.
func (s DirSink) Deliver(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if filename == "" || filepath.Base(filename) != filename {
		return "", fmt.Errorf("invalid export filename %q", filename)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", s.Dir, err)
	}

	dest := filepath.Join(s.Dir, filename)
	tmp, err := os.CreateTemp(s.Dir, ".export-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing export: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return dest, nil
}
