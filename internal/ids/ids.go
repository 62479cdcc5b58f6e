// Package ids generates the short random tokens used to identify data
// nodes, drawing randomness from crypto/rand rather than math/rand.
package ids

import (
	"crypto/rand"

	"github.com/pkg/errors"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	length   = 6
)

// New returns a random 6-character lowercase-alphanumeric token.
func New() (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "github.com/nicolagi/dfs/internal/ids.New")
	}
	out := make([]byte, length)
	for i, v := range b {
		out[i] = alphabet[int(v)%len(alphabet)]
	}
	return string(out), nil
}
