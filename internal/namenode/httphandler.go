package namenode

import (
	"io"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/dfs/internal/codec"
	"github.com/nicolagi/dfs/internal/httpapi"
	"github.com/nicolagi/dfs/internal/membership"
)

// NewHTTPHandler builds the full client-facing HTTP surface: the
// dispatch.Table-backed VFS/aggregate/add_node routes plus the two
// handshake routes that don't fit that shape.
func NewHTTPHandler(d *Dispatcher) http.Handler {
	router := httpapi.NewRouter(d.Handlers(), mapError)
	router.HandleFunc("/nodes/join", joinHandler(d)).Methods(http.MethodPost)
	router.HandleFunc("/nodes/leave", leaveHandler(d)).Methods(http.MethodGet)
	return router
}

func joinHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "reading request body", http.StatusBadRequest)
			return
		}
		req, err := codec.DecodeJoin(data, sourceIPOf(r))
		if err != nil {
			status, msg := mapError(err)
			http.Error(w, msg, status)
			return
		}
		publicURL := req.URL
		if req.PublicURL != nil {
			publicURL = *req.PublicURL
		}
		if _, err := d.Store().Create(req.ID, req.URL, publicURL, membership.StatusNew); err != nil {
			status, msg := mapError(err)
			http.Error(w, msg, status)
			return
		}
		log.WithFields(log.Fields{"component": "namenode", "id": req.ID, "url": req.URL}).Info("data node joined")
		w.WriteHeader(http.StatusOK)
	}
}

// leaveHandler marks a member DEAD on a best-effort GET /nodes/leave?id=...
// A DEAD member is never deleted; a later heartbeat tick resyncs it and
// brings it back to ALIVE once it answers the liveness check again. A
// second /nodes/join with the same id is refused as ALREADY_MEMBER.
func leaveHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		if err := d.Store().Modify(id).SetStatus(membership.StatusDead).Commit(); err != nil {
			status, msg := mapError(err)
			http.Error(w, msg, status)
			return
		}
		log.WithFields(log.Fields{"component": "namenode", "id": id}).Info("data node left")
		w.WriteHeader(http.StatusOK)
	}
}

func sourceIPOf(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// mapError classifies the error kinds this package's operations can
// surface; anything unrecognized is reported as a server error.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrClusterUnavailable),
		errors.Is(err, membership.ErrAlreadyMember),
		errors.Is(err, membership.ErrNotAMember),
		errors.Is(err, codec.ErrDecode):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
