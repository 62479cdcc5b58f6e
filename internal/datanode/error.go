package datanode

import "github.com/pkg/errors"

var (
	// ErrAlreadyMember is returned by JoinNamespace when this node is
	// already a member of another cluster.
	ErrAlreadyMember = errors.New("ALREADY_MEMBER")
	// ErrNotAMember is the NOT_A_MEMBER error kind. LeaveNamespace does not
	// return it: leaving without having joined a cluster is a no-op.
	ErrNotAMember = errors.New("NOT_A_MEMBER")
	// ErrInvalidURL is returned for a name node URL with no network
	// authority.
	ErrInvalidURL = errors.New("INVALID_URL")
)

func errorf(typeMethod string, cause error, format string, a ...interface{}) error {
	return errors.Wrapf(cause, "github.com/nicolagi/dfs/internal/datanode."+typeMethod+": "+format, a...)
}
