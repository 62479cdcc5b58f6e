package codec

import "github.com/pkg/errors"

// ErrDecode is returned for any wire frame that does not conform to the
// grammar described in the package doc comment. It always propagates to
// callers as a 400 response; it is never recovered from.
var ErrDecode = errors.New("malformed frame")

func errorf(typeMethod, format string, a ...interface{}) error {
	return errors.Wrapf(ErrDecode, "github.com/nicolagi/dfs/internal/codec."+typeMethod+": "+format, a...)
}
