package datanode

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempFSRoot(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "fs_root")
	require.NoError(t, os.MkdirAll(dir, 0755))
	return dir
}

func TestOpen_generatesIdentityWhenNoStateFile(t *testing.T) {
	root := tempFSRoot(t)
	svc, err := Open(Config{FSRoot: root})
	require.NoError(t, err)
	assert.Len(t, svc.ID(), 6)
	assert.Empty(t, svc.namenodeURL)

	_, existed, err := loadState(root)
	require.NoError(t, err)
	assert.True(t, existed)
}

func TestOpen_reloadsExistingIdentity(t *testing.T) {
	root := tempFSRoot(t)
	first, err := Open(Config{FSRoot: root})
	require.NoError(t, err)

	second, err := Open(Config{FSRoot: root})
	require.NoError(t, err)
	assert.Equal(t, first.ID(), second.ID())
}

func TestOpen_joinsClusterWhenNamenodeURLSet(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	root := tempFSRoot(t)
	svc, err := Open(Config{FSRoot: root, NamenodeURL: srv.URL, Port: "9001"})
	require.NoError(t, err)
	assert.Equal(t, srv.URL, svc.namenodeURL)
	assert.Contains(t, gotBody, "9001")
	assert.Contains(t, gotBody, svc.ID())
}

func TestOpen_joinWithoutPortFails(t *testing.T) {
	root := tempFSRoot(t)
	_, err := Open(Config{FSRoot: root, NamenodeURL: "http://example.invalid"})
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestJoinNamespace_rejectsSecondCluster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	root := tempFSRoot(t)
	svc, err := Open(Config{FSRoot: root, NamenodeURL: srv.URL, Port: "9001"})
	require.NoError(t, err)

	err = svc.JoinNamespace(srv.URL)
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestLeaveNamespace_clearsStateEvenOnFailure(t *testing.T) {
	root := tempFSRoot(t)
	svc, err := Open(Config{FSRoot: root})
	require.NoError(t, err)
	svc.namenodeURL = "http://127.0.0.1:1" // unroutable: connection refused

	svc.LeaveNamespace()
	assert.Empty(t, svc.namenodeURL)

	st, existed, err := loadState(root)
	require.NoError(t, err)
	require.True(t, existed)
	assert.Empty(t, st.namenodeURL)
}

func TestBuildJoinBody_variants(t *testing.T) {
	svc := &Service{id: "abc123", cfg: Config{Port: "9001"}}
	assert.Equal(t, "9001 abc123", svc.buildJoinBody())

	svc.cfg.AdvertiseHost = "10.0.0.5"
	assert.Equal(t, "10.0.0.5:9001 abc123", svc.buildJoinBody())

	svc.cfg.PublicURL = "http://example.org"
	assert.Equal(t, "http://example.org 10.0.0.5:9001 abc123", svc.buildJoinBody())
}
