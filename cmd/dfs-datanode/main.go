// Command dfs-datanode runs a single cluster replica: a VFS confined to
// DFS_FS_ROOT, exposed over HTTP, optionally joining a name node at
// startup.
package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/dfs/internal/codec"
	"github.com/nicolagi/dfs/internal/datanode"
	"github.com/nicolagi/dfs/internal/diagnostics"
	"github.com/nicolagi/dfs/internal/httpapi"
	"github.com/nicolagi/dfs/internal/logging"
	"github.com/nicolagi/dfs/internal/netutil"
	"github.com/nicolagi/dfs/internal/vfs"
)

func main() {
	logging.Configure(os.Getenv("DFS_LOG_LEVEL"))

	if class := os.Getenv("DFS_NODE_CLASS"); class != "" && class != "datanode" {
		log.Fatalf("DFS_NODE_CLASS=%q does not match this binary (datanode)", class)
	}

	fsRoot := os.Getenv("DFS_FS_ROOT")
	if fsRoot == "" {
		log.Fatal("DFS_FS_ROOT is required")
	}
	port := os.Getenv("DFS_PORT")
	host := os.Getenv("DFS_HOST")

	diagnostics.StartIfEnabled(os.Getenv("DFS_GOPS") == "1")

	cfg := datanode.Config{
		FSRoot:        fsRoot,
		NamenodeURL:   os.Getenv("DFS_NAMENODE_URL"),
		Port:          port,
		AdvertiseHost: os.Getenv("DFS_ADVERTISE_HOST"),
		PublicURL:     os.Getenv("DFS_PUBLIC_URL"),
		PeerTimeout:   peerTimeout(),
	}

	svc, err := datanode.Open(cfg)
	if err != nil {
		log.Fatalf("Could not open data node: %v", err)
	}

	handler := httpapi.NewHandler(svc.Handlers(), mapError)
	listener, err := netutil.Listen("tcp", host+":"+port)
	if err != nil {
		log.Fatalf("Could not listen on %s:%s: %v", host, port, err)
	}
	log.WithFields(log.Fields{"component": "datanode", "id": svc.ID(), "addr": listener.Addr()}).Info("serving")
	if err := http.Serve(listener, handler); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}

func peerTimeout() time.Duration {
	if raw := os.Getenv("DFS_PEER_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
		if seconds, err := strconv.Atoi(raw); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return 5 * time.Second
}

// mapError classifies known VFS/datanode sentinel errors as 400 client
// errors; anything else (disk I/O failures, etc.) is a 500.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, vfs.ErrNotFound),
		errors.Is(err, vfs.ErrNotDir),
		errors.Is(err, vfs.ErrIsDir),
		errors.Is(err, vfs.ErrAlreadyExists),
		errors.Is(err, vfs.ErrNotEmpty),
		errors.Is(err, datanode.ErrAlreadyMember),
		errors.Is(err, datanode.ErrNotAMember),
		errors.Is(err, datanode.ErrInvalidURL),
		errors.Is(err, codec.ErrDecode):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
