package vfs

import (
	"path"
	"strings"
)

// normalize resolves a logical path against a logical working directory.
// Absolute inputs (leading "/") ignore workdir entirely; relative inputs
// are joined to it. The result is always an absolute, cleaned logical path
// — path.Clean never lets a leading ".." climb past "/", which is the
// first of two confinement layers (the second is the host-path prefix
// check in resolve).
func normalize(workdir, input string) string {
	if input == "" {
		input = "."
	}
	var joined string
	if strings.HasPrefix(input, "/") {
		joined = input
	} else {
		joined = path.Join(workdir, input)
	}
	return path.Clean("/" + joined)
}

// fsToLogical maps a host filesystem path back to its logical path by
// stripping the fs_root prefix. The root itself maps to "/".
func fsToLogical(root, hostPath string) string {
	rel := strings.TrimPrefix(hostPath, root)
	if rel == "" {
		return "/"
	}
	return rel
}
