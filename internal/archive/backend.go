// Package archive persists periodic cluster snapshots to a configurable
// backend (disk, S3, or null), selected at startup by a Config.Kind
// string the way a key/value store's factory would pick a driver.
package archive

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotImplemented signals an unrecognized backend kind: a configuration
// error, not a runtime one.
var ErrNotImplemented = errors.New("not implemented")

// Backend stores named snapshot blobs. It only ever appends: a name is
// the archive's timestamp, and names are never read back by this
// process, only by an operator restoring from backup.
type Backend interface {
	Put(name string, data []byte) error
}

// Config selects and parameterizes a Backend.
type Config struct {
	Kind string // "disk", "s3", or "null"

	DiskDir string

	S3Bucket  string
	S3Region  string
	S3Profile string
}

// New builds the Backend named by cfg.Kind.
func New(cfg Config) (Backend, error) {
	switch cfg.Kind {
	case "", "null":
		return NullBackend{}, nil
	case "disk":
		return NewDiskBackend(cfg.DiskDir), nil
	case "s3":
		return newS3Backend(cfg), nil
	default:
		return nil, fmt.Errorf("%q: %w", cfg.Kind, ErrNotImplemented)
	}
}

// NullBackend discards every archive. Used when DFS_ARCHIVE_KIND is unset.
type NullBackend struct{}

func (NullBackend) Put(string, []byte) error { return nil }
