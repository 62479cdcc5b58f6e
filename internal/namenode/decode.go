package namenode

import (
	"strings"

	"github.com/nicolagi/dfs/internal/codec"
)

// decodeAddNode parses the body of /add_node: "[public_url ]url id", two or
// three space-separated fields, mirroring the ordering of the join
// handshake (codec.DecodeJoin) but with no source-IP substitution, since
// add_node callers must name a reachable URL explicitly.
func decodeAddNode(data []byte) (publicURL *string, url, id string, err error) {
	fields := strings.Fields(string(data))
	switch len(fields) {
	case 2:
		return nil, fields[0], fields[1], nil
	case 3:
		pub := fields[0]
		return &pub, fields[1], fields[2], nil
	default:
		return nil, "", "", errorf("decodeAddNode", codec.ErrDecode, "expected 2 or 3 fields, got %d", len(fields))
	}
}
