package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolagi/dfs/internal/dispatch"
)

var errBoom = errors.New("boom")

func echoTable() dispatch.Table {
	return dispatch.Table{
		"echo": dispatch.Entry{
			Decode: func(body []byte, _ string) (interface{}, error) { return string(body), nil },
			Invoke: func(args interface{}) (interface{}, error) { return args, nil },
			Encode: func(result interface{}) ([]byte, string) { return []byte(result.(string)), "application/octet-stream" },
		},
		"fail": dispatch.Entry{
			Decode: func(body []byte, _ string) (interface{}, error) { return nil, nil },
			Invoke: func(interface{}) (interface{}, error) { return nil, errBoom },
			Encode: func(interface{}) ([]byte, string) { return nil, "application/octet-stream" },
		},
	}
}

func alwaysBadRequest(error) (int, string) { return http.StatusBadRequest, "rejected" }

func TestNewHandler_roundTripsBody(t *testing.T) {
	srv := httptest.NewServer(NewHandler(echoTable(), nil))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/echo", "application/octet-stream", strings.NewReader("hello"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "hello", string(body))
}

func TestNewHandler_getAllowedForEmptyBody(t *testing.T) {
	srv := httptest.NewServer(NewHandler(echoTable(), nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/echo")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewHandler_mapsErrorsUsingStatusMapper(t *testing.T) {
	srv := httptest.NewServer(NewHandler(echoTable(), alwaysBadRequest))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/fail", "application/octet-stream", strings.NewReader(""))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "rejected")
}

func TestNewHandler_defaultsToInternalServerError(t *testing.T) {
	srv := httptest.NewServer(NewHandler(echoTable(), nil))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/fail", "application/octet-stream", strings.NewReader(""))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
