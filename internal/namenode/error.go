package namenode

import "github.com/pkg/errors"

// ErrClusterUnavailable is returned for a read redirect or an archive
// snapshot donor pick when no ALIVE member can be found or reached.
var ErrClusterUnavailable = errors.New("CLUSTER_UNAVAILABLE")

func errorf(typeMethod string, cause error, format string, a ...interface{}) error {
	return errors.Wrapf(cause, "github.com/nicolagi/dfs/internal/namenode."+typeMethod+": "+format, a...)
}
