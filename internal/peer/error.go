package peer

import "github.com/pkg/errors"

// ErrPeerUnreachable is returned by any Node method when the underlying
// HTTP call fails outright (connection refused, timeout, etc.) as opposed
// to the peer answering with a decode or VFS error.
var ErrPeerUnreachable = errors.New("PEER_UNREACHABLE")

// ErrInvalidURL is returned when a node or peer URL has no network
// authority, per the join/add_node validation contract.
var ErrInvalidURL = errors.New("INVALID_URL")

func errorf(typeMethod string, cause error, format string, a ...interface{}) error {
	return errors.Wrapf(cause, "github.com/nicolagi/dfs/internal/peer."+typeMethod+": "+format, a...)
}
