package membership

import "github.com/pkg/errors"

var (
	// ErrAlreadyMember is returned by Create for a duplicate id.
	ErrAlreadyMember = errors.New("ALREADY_MEMBER")
	// ErrNotAMember is returned by operations addressing an unknown id.
	ErrNotAMember = errors.New("NOT_A_MEMBER")
)

func errorf(typeMethod string, cause error, format string, a ...interface{}) error {
	return errors.Wrapf(cause, "github.com/nicolagi/dfs/internal/membership."+typeMethod+": "+format, a...)
}
