// Package codec implements the compact wire format shared by clients, the
// name node and data nodes. A request body is always one of five shapes;
// decoding recovers the shape by scanning for the first space or NUL byte,
// exactly as described by the protocol this package replaces (see
// DecodeJoin for the one exception, the join handshake).
package codec

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FrameKind identifies which of the five wire-frame shapes a decoded
// request body took.
type FrameKind int

const (
	// FrameEmpty is the zero-length body: mkfs, df, snap, ping_alive.
	FrameEmpty FrameKind = iota
	// FramePath is a single logical path with no terminator found.
	FramePath
	// FramePathBlob is path + NUL + raw bytes: tee.
	FramePathBlob
	// FrameTwoString is two space-separated UTF-8 strings: cp, mv.
	FrameTwoString
	// FramePathFlag is a path followed by a trailing " !": rmdir(force).
	FramePathFlag
)

// Frame is the decoded form of a request body, tagged with which of the
// five wire shapes produced it.
type Frame struct {
	Kind   FrameKind
	Path   string
	Blob   []byte
	Second string
	Flag   bool
}

// Decode recovers a Frame from a raw request body. It never panics on
// truncated or empty input; it returns ErrDecode only when path-like bytes
// fail to validate as UTF-8, since binary data is only ever safe to carry
// in the path+blob shape.
func Decode(data []byte) (Frame, error) {
	if len(data) == 0 {
		return Frame{Kind: FrameEmpty}, nil
	}
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\x00':
			path := data[:i]
			if !utf8.Valid(path) {
				return Frame{}, errorf("Decode", "path is not valid UTF-8")
			}
			blob := make([]byte, len(data)-i-1)
			copy(blob, data[i+1:])
			return Frame{Kind: FramePathBlob, Path: string(path), Blob: blob}, nil
		case ' ':
			path := data[:i]
			rest := data[i+1:]
			if !utf8.Valid(path) {
				return Frame{}, errorf("Decode", "path is not valid UTF-8")
			}
			if len(rest) == 1 && rest[0] == '!' {
				return Frame{Kind: FramePathFlag, Path: string(path), Flag: true}, nil
			}
			if !utf8.Valid(rest) {
				return Frame{}, errorf("Decode", "second field is not valid UTF-8")
			}
			return Frame{Kind: FrameTwoString, Path: string(path), Second: string(rest)}, nil
		}
	}
	if !utf8.Valid(data) {
		return Frame{}, errorf("Decode", "path is not valid UTF-8")
	}
	return Frame{Kind: FramePath, Path: string(data)}, nil
}

// DecodePath accepts the empty frame (treated as "") or a bare path.
// Used by mkdir, touch, rm, cat, cd.
func DecodePath(data []byte) (string, error) {
	f, err := Decode(data)
	if err != nil {
		return "", err
	}
	switch f.Kind {
	case FrameEmpty:
		return "", nil
	case FramePath:
		return f.Path, nil
	default:
		return "", errorf("DecodePath", "unexpected frame kind %d", f.Kind)
	}
}

// DecodeOptionalPath is DecodePath, for operations where an empty body is
// meaningful on its own (ls with no argument means "the working directory").
func DecodeOptionalPath(data []byte) (string, error) {
	return DecodePath(data)
}

// DecodePathFlag accepts a bare path (flag defaults to false) or a path
// with a trailing " !" (flag true). Used by rmdir.
func DecodePathFlag(data []byte) (path string, flag bool, err error) {
	f, err := Decode(data)
	if err != nil {
		return "", false, err
	}
	switch f.Kind {
	case FrameEmpty:
		return "", false, nil
	case FramePath:
		return f.Path, false, nil
	case FramePathFlag:
		return f.Path, f.Flag, nil
	default:
		return "", false, errorf("DecodePathFlag", "unexpected frame kind %d", f.Kind)
	}
}

// DecodePathBlob accepts path+NUL+bytes. A bare path with no NUL is
// accepted too, with an empty blob, so that tee("/empty", "") round-trips.
// Used by tee.
func DecodePathBlob(data []byte) (path string, blob []byte, err error) {
	f, err := Decode(data)
	if err != nil {
		return "", nil, err
	}
	switch f.Kind {
	case FramePathBlob:
		return f.Path, f.Blob, nil
	case FramePath:
		return f.Path, nil, nil
	case FrameEmpty:
		return "", nil, nil
	default:
		return "", nil, errorf("DecodePathBlob", "unexpected frame kind %d", f.Kind)
	}
}

// DecodeTwoStrings accepts two space-separated strings. Used by cp and mv.
func DecodeTwoStrings(data []byte) (first, second string, err error) {
	f, err := Decode(data)
	if err != nil {
		return "", "", err
	}
	if f.Kind != FrameTwoString {
		return "", "", errorf("DecodeTwoStrings", "unexpected frame kind %d", f.Kind)
	}
	return f.Path, f.Second, nil
}

// Encode is the generic serializer: nil becomes an empty body, raw bytes
// pass through untouched, strings are UTF-8 encoded, ordered sequences of
// scalars are space-joined, and any other scalar is stringified.
func Encode(v interface{}) []byte {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return x
	case string:
		return []byte(x)
	case bool:
		return []byte(strconv.FormatBool(x))
	case int:
		return []byte(strconv.Itoa(x))
	case int64:
		return []byte(strconv.FormatInt(x, 10))
	case uint64:
		return []byte(strconv.FormatUint(x, 10))
	case []string:
		return []byte(strings.Join(x, " "))
	default:
		return []byte(toScalarString(v))
	}
}

func toScalarString(v interface{}) string {
	type stringer interface{ String() string }
	if s, ok := v.(stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}
