package vfs

import "github.com/pkg/errors"

// Sentinel errors matching the error-kind taxonomy in the wire protocol.
// The data node's StatusMapper (mapError in cmd/dfs-datanode), which
// internal/httpapi applies, maps these to a 400 response with errors.Is,
// never by string matching.
var (
	ErrNotFound      = errors.New("NOT_FOUND")
	ErrNotDir        = errors.New("NOT_DIR")
	ErrIsDir         = errors.New("IS_DIR")
	ErrAlreadyExists = errors.New("ALREADY_EXISTS")
	ErrNotEmpty      = errors.New("NOT_EMPTY")
)

func errorf(typeMethod string, cause error, format string, a ...interface{}) error {
	return errors.Wrapf(cause, "github.com/nicolagi/dfs/internal/vfs."+typeMethod+": "+format, a...)
}
