// Command dfs-namenode runs the cluster coordinator: membership store,
// heartbeat engine, replicated-write/redirected-read dispatcher, and
// optionally a periodic snapshot archiver.
package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/dfs/internal/archive"
	"github.com/nicolagi/dfs/internal/diagnostics"
	"github.com/nicolagi/dfs/internal/heartbeat"
	"github.com/nicolagi/dfs/internal/logging"
	"github.com/nicolagi/dfs/internal/membership"
	"github.com/nicolagi/dfs/internal/namenode"
	"github.com/nicolagi/dfs/internal/netutil"
	"github.com/nicolagi/dfs/internal/peer"
)

func main() {
	logging.Configure(os.Getenv("DFS_LOG_LEVEL"))

	if class := os.Getenv("DFS_NODE_CLASS"); class != "" && class != "namenode" {
		log.Fatalf("DFS_NODE_CLASS=%q does not match this binary (namenode)", class)
	}

	dbPath := os.Getenv("DFS_DB_PATH")
	if dbPath == "" {
		log.Fatal("DFS_DB_PATH is required")
	}
	host := os.Getenv("DFS_HOST")
	port := os.Getenv("DFS_PORT")

	diagnostics.StartIfEnabled(os.Getenv("DFS_GOPS") == "1")

	store, err := membership.Open(dbPath)
	if err != nil {
		log.Fatalf("Could not open membership store %q: %v", dbPath, err)
	}

	timeout := peerTimeout()
	newNode := func(url string, timeout time.Duration) (peer.Node, error) {
		return peer.New(url, timeout)
	}

	dispatcher := namenode.NewDispatcher(store, newNode, timeout)

	hb := heartbeat.New(store, newNode, heartbeatInterval(), timeout)
	hb.Start()
	defer hb.Stop()

	archiveBackend, err := archive.New(archiveConfig())
	if err != nil {
		log.Fatalf("Could not configure archive backend: %v", err)
	}
	archiver := archive.NewArchiver(archiveBackend, snapshotSource(dispatcher, timeout), archiveInterval())
	archiver.Start()
	defer archiver.Stop()

	handler := namenode.NewHTTPHandler(dispatcher)
	listener, err := netutil.Listen("tcp", host+":"+port)
	if err != nil {
		log.Fatalf("Could not listen on %s:%s: %v", host, port, err)
	}
	log.WithFields(log.Fields{"component": "namenode", "addr": listener.Addr()}).Info("serving")
	if err := http.Serve(listener, handler); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}

// snapshotSource picks an ALIVE member through the dispatcher's own
// donor-selection logic and pulls its current snapshot, so the archiver
// never needs membership knowledge of its own.
func snapshotSource(d *namenode.Dispatcher, timeout time.Duration) archive.SnapshotSource {
	return func(ctx context.Context) ([]byte, error) {
		donor, ok := d.PickDonor()
		if !ok {
			return nil, namenode.ErrClusterUnavailable
		}
		node, err := d.NewNode(donor.URL)
		if err != nil {
			return nil, err
		}
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		rc, err := node.Snap(callCtx)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
}

func peerTimeout() time.Duration {
	return durationEnv("DFS_PEER_TIMEOUT", 5*time.Second)
}

func heartbeatInterval() time.Duration {
	return durationEnv("DFS_HEARTBEAT", time.Second)
}

func archiveInterval() time.Duration {
	return durationEnv("DFS_ARCHIVE_INTERVAL", 0)
}

func durationEnv(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

func archiveConfig() archive.Config {
	return archive.Config{
		Kind:      os.Getenv("DFS_ARCHIVE_KIND"),
		DiskDir:   os.Getenv("DFS_ARCHIVE_DISK_DIR"),
		S3Bucket:  os.Getenv("DFS_ARCHIVE_S3_BUCKET"),
		S3Region:  os.Getenv("DFS_ARCHIVE_S3_REGION"),
		S3Profile: os.Getenv("DFS_ARCHIVE_S3_PROFILE"),
	}
}
