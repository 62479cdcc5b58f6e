// Package httpapi adapts a dispatch.Table to net/http, the transport both
// the name node and the data node speak. Routing uses gorilla/mux rather
// than a hand-rolled path matcher.
package httpapi

import (
	"io"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/dfs/internal/dispatch"
)

// StatusMapper classifies an operation error as a client error (known,
// well-formed rejection such as "not found" or "already exists") versus
// anything else, which is reported as a server error. Each package with a
// dispatch table (datanode, namenode) supplies its own mapper built from
// the sentinel errors its operations can return.
type StatusMapper func(err error) (status int, message string)

// NewHandler builds an http.Handler serving every entry in table at its
// own path, for both POST and GET. sourceIP is derived from the request's
// remote address and passed to each entry's Decode.
func NewHandler(table dispatch.Table, mapErr StatusMapper) http.Handler {
	return NewRouter(table, mapErr)
}

// NewRouter is NewHandler but returns the underlying *mux.Router, so a
// caller (the name node) can register additional routes that don't fit
// the dispatch.Table shape, such as /nodes/join and /nodes/leave.
func NewRouter(table dispatch.Table, mapErr StatusMapper) *mux.Router {
	router := mux.NewRouter()
	for path, entry := range table {
		router.HandleFunc("/"+path, makeHandler(path, entry, mapErr)).Methods(http.MethodPost, http.MethodGet)
	}
	return router
}

func makeHandler(path string, entry dispatch.Entry, mapErr StatusMapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "reading request body", http.StatusBadRequest)
			return
		}
		sourceIP := sourceIPOf(r)

		args, err := entry.Decode(body, sourceIP)
		if err != nil {
			writeError(w, mapErr, path, err)
			return
		}
		result, err := entry.Invoke(args)
		if err != nil {
			writeError(w, mapErr, path, err)
			return
		}
		responseBody, contentType := entry.Encode(result)
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		if len(responseBody) > 0 {
			_, _ = w.Write(responseBody)
		}
	}
}

func writeError(w http.ResponseWriter, mapErr StatusMapper, path string, err error) {
	status, message := http.StatusInternalServerError, err.Error()
	if mapErr != nil {
		status, message = mapErr(err)
	}
	log.WithFields(log.Fields{"component": "httpapi", "op": path, "status": status}).
		WithError(err).Warn("operation returned an error")
	http.Error(w, message, status)
}

func sourceIPOf(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
