package datanode

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := Open(Config{FSRoot: tempFSRoot(t)})
	require.NoError(t, err)
	return svc
}

func TestHandlers_mkfsTouchCat(t *testing.T) {
	svc := newTestService(t)
	table := svc.Handlers()

	_, err := table["mkfs"].Invoke(nil)
	require.NoError(t, err)

	args, err := table["tee"].Decode([]byte("/greeting.txt\x00hello"), "")
	require.NoError(t, err)
	_, err = table["tee"].Invoke(args)
	require.NoError(t, err)

	catArgs, err := table["cat"].Decode([]byte("/greeting.txt"), "")
	require.NoError(t, err)
	result, err := table["cat"].Invoke(catArgs)
	require.NoError(t, err)
	body, contentType := table["cat"].Encode(result)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "application/octet-stream", contentType)
}

func TestHandlers_rmdirDecodesForceFlag(t *testing.T) {
	svc := newTestService(t)
	table := svc.Handlers()

	_, err := table["mkfs"].Invoke(nil)
	require.NoError(t, err)

	mkdirArgs, err := table["mkdir"].Decode([]byte("/sub"), "")
	require.NoError(t, err)
	_, err = table["mkdir"].Invoke(mkdirArgs)
	require.NoError(t, err)

	touchArgs, err := table["touch"].Decode([]byte("/sub/file"), "")
	require.NoError(t, err)
	_, err = table["touch"].Invoke(touchArgs)
	require.NoError(t, err)

	rmdirArgs, err := table["rmdir"].Decode([]byte("/sub !"), "")
	require.NoError(t, err)
	_, err = table["rmdir"].Invoke(rmdirArgs)
	require.NoError(t, err)

	lsArgs, err := table["ls"].Decode(nil, "")
	require.NoError(t, err)
	result, err := table["ls"].Invoke(lsArgs)
	require.NoError(t, err)
	assert.Empty(t, result.([]string))
}

func TestHandlers_sync(t *testing.T) {
	donor := newTestService(t)
	donorTable := donor.Handlers()
	_, err := donorTable["mkfs"].Invoke(nil)
	require.NoError(t, err)
	teeArgs, err := donorTable["tee"].Decode([]byte("/from-donor\x00payload"), "")
	require.NoError(t, err)
	_, err = donorTable["tee"].Invoke(teeArgs)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := donorTable["snap"].Invoke(nil)
		require.NoError(t, err)
		body, contentType := donorTable["snap"].Encode(result)
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	replica := newTestService(t)
	replicaTable := replica.Handlers()
	syncArgs, err := replicaTable["sync"].Decode([]byte(srv.URL), "")
	require.NoError(t, err)
	_, err = replicaTable["sync"].Invoke(syncArgs)
	require.NoError(t, err)

	catArgs, err := replicaTable["cat"].Decode([]byte("/from-donor"), "")
	require.NoError(t, err)
	result, err := replicaTable["cat"].Invoke(catArgs)
	require.NoError(t, err)
	body, _ := replicaTable["cat"].Encode(result)
	assert.Equal(t, "payload", string(body))
}

func TestHandlers_pingAlive(t *testing.T) {
	svc := newTestService(t)
	table := svc.Handlers()
	result, err := table["ping_alive"].Invoke(nil)
	require.NoError(t, err)
	body, _ := table["ping_alive"].Encode(result)
	assert.Equal(t, "true", string(body))
}
