// Package storage provides the persistence gateway: byte-level read, write,
// exists and mkdir operations for the two files backing each collection.
// Writes go through a write-temp-then-rename so a crashed write never leaves
// a half-written file behind.
package storage

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
)

// LoadError reports a file that could not be read or decoded during a cache
// load.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load '%s': %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Gateway is the persistence boundary consumed by the collection layer.
// Implementations are expected to make Mkdir succeed when the directory
// already exists.
type Gateway interface {
	Read(path string) ([]byte, error)
	Write(path string, content []byte) error
	Exists(path string) bool
	Mkdir(path string) error
}

// OSGateway implements Gateway on the local filesystem.
type OSGateway struct {
	logger *zap.Logger
}

var _ Gateway = (*OSGateway)(nil)

// NewOSGateway creates a filesystem gateway. A nil logger falls back to a
// no-op logger.
func NewOSGateway(logger *zap.Logger) *OSGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OSGateway{logger: logger}
}

// Read returns the full contents of a file, wrapping failures in a LoadError.
func (g *OSGateway) Read(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return content, nil
}

// Write replaces the contents of a file atomically via a temp file rename.
func (g *OSGateway) Write(path string, content []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	g.logger.Debug("wrote file", zap.String("path", path), zap.Int("bytes", len(content)))
	return nil
}

// Exists reports whether a path exists.
func (g *OSGateway) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Mkdir creates a directory and any missing parents. It succeeds if the
// directory already exists.
func (g *OSGateway) Mkdir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", path, err)
	}
	return nil
}
