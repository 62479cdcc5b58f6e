// Package peer is the name node's view of a data node: an interface
// capturing the full data-node operation set, plus the one production
// implementation that speaks to a data node's HTTP endpoint. The name
// node's dispatcher and heartbeat engine are generic over Node, so tests
// substitute a fake.
package peer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/nicolagi/dfs/internal/codec"
)

// Node is the operation set a data node exposes to the name node.
type Node interface {
	Mkfs(ctx context.Context) error
	DF(ctx context.Context) (total, used, free uint64, err error)
	Cd(ctx context.Context, path string) error
	Ls(ctx context.Context, path string) ([]string, error)
	Mkdir(ctx context.Context, path string) error
	Rmdir(ctx context.Context, path string, force bool) error
	Touch(ctx context.Context, path string) error
	Cat(ctx context.Context, path string) ([]byte, error)
	Tee(ctx context.Context, path string, data []byte) error
	Rm(ctx context.Context, path string) error
	Stat(ctx context.Context, path string) (canonical string, size int64, mode uint32, err error)
	Cp(ctx context.Context, src, dst string) error
	Mv(ctx context.Context, src, dst string) error
	Sync(ctx context.Context, donorURL string) error
	Snap(ctx context.Context) (io.ReadCloser, error)
	PingAlive(ctx context.Context) bool
}

// HTTPNode implements Node by issuing the wire-codec request bodies over
// HTTP to a single data node's internal URL.
type HTTPNode struct {
	baseURL string
	client  *http.Client
}

// New validates url and returns a Node that calls it with the given
// per-call timeout.
func New(rawURL string, timeout time.Duration) (*HTTPNode, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, errorf("New", ErrInvalidURL, "%q", rawURL)
	}
	return &HTTPNode{baseURL: rawURL, client: &http.Client{Timeout: timeout}}, nil
}

func (n *HTTPNode) endpoint(path string) string {
	base := n.baseURL
	if len(base) == 0 || base[len(base)-1] != '/' {
		base += "/"
	}
	return base + path
}

func (n *HTTPNode) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint(path), bytes.NewReader(body))
	if err != nil {
		return nil, errorf("post", ErrPeerUnreachable, "%s: %v", path, err)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, errorf("post", ErrPeerUnreachable, "%s: %v", path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errorf("post", ErrPeerUnreachable, "%s: reading body: %v", path, err)
	}
	if resp.StatusCode >= 400 {
		return nil, errorf("post", fmt.Errorf("%s", string(data)), "%s: status %d", path, resp.StatusCode)
	}
	return data, nil
}

func (n *HTTPNode) Mkfs(ctx context.Context) error {
	_, err := n.post(ctx, "mkfs", nil)
	return err
}

func (n *HTTPNode) DF(ctx context.Context) (total, used, free uint64, err error) {
	data, err := n.post(ctx, "df", nil)
	if err != nil {
		return 0, 0, 0, err
	}
	t, u, f, err := codec.DecodeDF(data)
	return uint64(t), uint64(u), uint64(f), err
}

func (n *HTTPNode) Cd(ctx context.Context, path string) error {
	_, err := n.post(ctx, "cd", codec.Encode(path))
	return err
}

func (n *HTTPNode) Ls(ctx context.Context, path string) ([]string, error) {
	data, err := n.post(ctx, "ls", codec.Encode(path))
	if err != nil {
		return nil, err
	}
	return codec.DecodeList(data), nil
}

func (n *HTTPNode) Mkdir(ctx context.Context, path string) error {
	_, err := n.post(ctx, "mkdir", codec.Encode(path))
	return err
}

func (n *HTTPNode) Rmdir(ctx context.Context, path string, force bool) error {
	body := codec.Encode(path)
	if force {
		body = append(body, []byte(" !")...)
	}
	_, err := n.post(ctx, "rmdir", body)
	return err
}

func (n *HTTPNode) Touch(ctx context.Context, path string) error {
	_, err := n.post(ctx, "touch", codec.Encode(path))
	return err
}

func (n *HTTPNode) Cat(ctx context.Context, path string) ([]byte, error) {
	return n.post(ctx, "cat", codec.Encode(path))
}

func (n *HTTPNode) Tee(ctx context.Context, path string, data []byte) error {
	body := append([]byte(path), 0)
	body = append(body, data...)
	_, err := n.post(ctx, "tee", body)
	return err
}

func (n *HTTPNode) Rm(ctx context.Context, path string) error {
	_, err := n.post(ctx, "rm", codec.Encode(path))
	return err
}

func (n *HTTPNode) Stat(ctx context.Context, path string) (canonical string, size int64, mode uint32, err error) {
	data, err := n.post(ctx, "stat", codec.Encode(path))
	if err != nil {
		return "", 0, 0, err
	}
	return codec.DecodeStat(data)
}

func (n *HTTPNode) Cp(ctx context.Context, src, dst string) error {
	_, err := n.post(ctx, "cp", []byte(src+" "+dst))
	return err
}

func (n *HTTPNode) Mv(ctx context.Context, src, dst string) error {
	_, err := n.post(ctx, "mv", []byte(src+" "+dst))
	return err
}

func (n *HTTPNode) Sync(ctx context.Context, donorURL string) error {
	_, err := n.post(ctx, "sync", codec.Encode(donorURL))
	return err
}

func (n *HTTPNode) Snap(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint("snap"), nil)
	if err != nil {
		return nil, errorf("Snap", ErrPeerUnreachable, "%v", err)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, errorf("Snap", ErrPeerUnreachable, "%v", err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		return nil, errorf("Snap", fmt.Errorf("%s", string(data)), "status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (n *HTTPNode) PingAlive(ctx context.Context) bool {
	_, err := n.post(ctx, "ping_alive", nil)
	return err == nil
}

// URL returns the internal URL this Node was constructed with.
func (n *HTTPNode) URL() string {
	return n.baseURL
}
