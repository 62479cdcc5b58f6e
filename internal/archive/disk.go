package archive

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	dirPerm  = 0700
	filePerm = 0600
)

// DiskBackend writes each archive as a file named "{name}.tar.gz" under
// dir, creating dir lazily on the first write.
type DiskBackend struct {
	dir string
}

// NewDiskBackend returns a Backend writing under dir, created on first Put
// if missing.
func NewDiskBackend(dir string) *DiskBackend {
	return &DiskBackend{dir: dir}
}

func (b *DiskBackend) Put(name string, data []byte) error {
	p := filepath.Join(b.dir, name+".tar.gz")
	if err := os.WriteFile(p, data, filePerm); err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(err, "github.com/nicolagi/dfs/internal/archive.DiskBackend.Put: %q", p)
		}
		if err := os.MkdirAll(b.dir, dirPerm); err != nil {
			return errors.Wrapf(err, "github.com/nicolagi/dfs/internal/archive.DiskBackend.Put: creating %q", b.dir)
		}
		if err := os.WriteFile(p, data, filePerm); err != nil {
			return errors.Wrapf(err, "github.com/nicolagi/dfs/internal/archive.DiskBackend.Put: %q", p)
		}
	}
	return nil
}
