package namenode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolagi/dfs/internal/membership"
	"github.com/nicolagi/dfs/internal/peer"
)

// fakeNode is an in-memory peer.Node, letting dispatcher tests run with no
// network and no real data node.
type fakeNode struct {
	mu        sync.Mutex
	reachable bool
	touched   []string
	dfTotal   uint64
}

func (f *fakeNode) Mkfs(context.Context) error { return nil }
func (f *fakeNode) DF(context.Context) (uint64, uint64, uint64, error) {
	return f.dfTotal, 0, f.dfTotal, nil
}
func (f *fakeNode) Cd(context.Context, string) error { return nil }
func (f *fakeNode) Ls(context.Context, string) ([]string, error) { return nil, nil }
func (f *fakeNode) Mkdir(context.Context, string) error { return nil }
func (f *fakeNode) Rmdir(context.Context, string, bool) error { return nil }
func (f *fakeNode) Touch(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, path)
	return nil
}
func (f *fakeNode) Cat(context.Context, string) ([]byte, error) { return nil, nil }
func (f *fakeNode) Tee(context.Context, string, []byte) error   { return nil }
func (f *fakeNode) Rm(context.Context, string) error            { return nil }
func (f *fakeNode) Stat(context.Context, string) (string, int64, uint32, error) {
	return "", 0, 0, nil
}
func (f *fakeNode) Cp(context.Context, string, string) error { return nil }
func (f *fakeNode) Mv(context.Context, string, string) error { return nil }
func (f *fakeNode) Sync(context.Context, string) error       { return nil }
func (f *fakeNode) Snap(context.Context) (io.ReadCloser, error) { return nil, nil }
func (f *fakeNode) PingAlive(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reachable
}

var _ peer.Node = (*fakeNode)(nil)

func newTestDispatcher(t *testing.T, nodes map[string]*fakeNode) *Dispatcher {
	t.Helper()
	path := filepath.Join(t.TempDir(), "members.tsv")
	store, err := membership.Open(path)
	require.NoError(t, err)
	factory := func(url string, _ time.Duration) (peer.Node, error) {
		n, ok := nodes[url]
		if !ok {
			return nil, os.ErrNotExist
		}
		return n, nil
	}
	return NewDispatcher(store, factory, 100*time.Millisecond)
}

func TestFanOut_absorbsIndividualFailures(t *testing.T) {
	good := &fakeNode{reachable: true}
	nodes := map[string]*fakeNode{"http://good/": good}
	d := newTestDispatcher(t, nodes)
	_, err := d.Store().Create("aaa111", "http://good/", "", membership.StatusAlive)
	require.NoError(t, err)
	_, err = d.Store().Create("bbb222", "http://missing/", "", membership.StatusAlive)
	require.NoError(t, err)

	d.FanOut(context.Background(), func(ctx context.Context, n peer.Node) error {
		return n.Touch(ctx, "/a")
	})

	assert.Equal(t, []string{"/a"}, good.touched)
}

func TestRedirectURL_skipsUnreachableMembers(t *testing.T) {
	dead := &fakeNode{reachable: false}
	alive := &fakeNode{reachable: true}
	nodes := map[string]*fakeNode{"http://dead/": dead, "http://alive/": alive}
	d := newTestDispatcher(t, nodes)
	_, err := d.Store().Create("dead01", "http://dead/", "http://dead-pub/", membership.StatusAlive)
	require.NoError(t, err)
	_, err = d.Store().Create("aliv01", "http://alive/", "http://alive-pub/", membership.StatusAlive)
	require.NoError(t, err)

	url, err := d.RedirectURL(context.Background(), "/cat")
	require.NoError(t, err)
	assert.Equal(t, "http://alive-pub/cat", url)
}

func TestRedirectURL_failsWhenNoMembers(t *testing.T) {
	d := newTestDispatcher(t, nil)
	_, err := d.RedirectURL(context.Background(), "/cat")
	assert.ErrorIs(t, err, ErrClusterUnavailable)
}

func TestAddNode_rejectsDuplicateID(t *testing.T) {
	d := newTestDispatcher(t, nil)
	require.NoError(t, d.AddNode(nil, "http://a/", "aaa111"))
	err := d.AddNode(nil, "http://b/", "aaa111")
	assert.ErrorIs(t, err, membership.ErrAlreadyMember)
}

func TestAggregateDF_reportsZeroForUnreachableMember(t *testing.T) {
	good := &fakeNode{reachable: true, dfTotal: 1000}
	nodes := map[string]*fakeNode{"http://good/": good}
	d := newTestDispatcher(t, nodes)
	_, err := d.Store().Create("good01", "http://good/", "", membership.StatusAlive)
	require.NoError(t, err)
	_, err = d.Store().Create("miss01", "http://missing/", "", membership.StatusAlive)
	require.NoError(t, err)

	rows := d.AggregateDF(context.Background())
	assert.Len(t, rows, 2)
	for _, row := range rows {
		if row[0] == "good01" {
			assert.Equal(t, "1000", row[1])
		}
		if row[0] == "miss01" {
			assert.Equal(t, "0", row[1])
		}
	}
}

func TestJoinHandler_createsNewMember(t *testing.T) {
	d := newTestDispatcher(t, nil)
	srv := httptest.NewServer(NewHTTPHandler(d))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/nodes/join", "application/octet-stream", strings.NewReader("8180 abc123"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	rec, ok := d.Store().Get("abc123")
	require.True(t, ok)
	assert.Contains(t, rec.URL, "8180")
	assert.Equal(t, membership.StatusNew, rec.Status)
}

func TestLeaveHandler_marksMemberDead(t *testing.T) {
	d := newTestDispatcher(t, nil)
	_, err := d.Store().Create("xyz789", "http://xyz/", "", membership.StatusAlive)
	require.NoError(t, err)

	srv := httptest.NewServer(NewHTTPHandler(d))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/nodes/leave?id=xyz789")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	rec, ok := d.Store().Get("xyz789")
	require.True(t, ok)
	assert.Equal(t, membership.StatusDead, rec.Status)
}
