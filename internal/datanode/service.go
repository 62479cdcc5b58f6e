// Package datanode implements a single replica of the cluster: a VFS
// confined to a host directory, a persisted identity, and the join/leave
// handshake with the name node. See Handlers for the dispatch table the
// HTTP front end (internal/httpapi) exposes.
package datanode

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/dfs/internal/ids"
	"github.com/nicolagi/dfs/internal/vfs"
)

// Config configures a new or reopened data node.
type Config struct {
	FSRoot        string
	NamenodeURL   string
	Port          string
	AdvertiseHost string
	PublicURL     string
	PeerTimeout   time.Duration
}

// Service is a running data node: its filesystem, its identity, and its
// membership in (at most) one cluster.
type Service struct {
	fs          *vfs.FS
	fsRoot      string
	id          string
	namenodeURL string
	cfg         Config
	client      *http.Client
}

// Open loads fs_root's sidecar state file if present; otherwise it
// generates a fresh identity and, if cfg.NamenodeURL is set, joins that
// cluster before persisting state for the first time.
func Open(cfg Config) (*Service, error) {
	fs, err := vfs.New(cfg.FSRoot)
	if err != nil {
		return nil, err
	}
	timeout := cfg.PeerTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	svc := &Service{fs: fs, fsRoot: cfg.FSRoot, cfg: cfg, client: &http.Client{Timeout: timeout}}

	st, existed, err := loadState(cfg.FSRoot)
	if err != nil {
		return nil, err
	}
	if existed {
		svc.id = st.id
		svc.namenodeURL = st.namenodeURL
		log.WithFields(log.Fields{"component": "datanode", "id": svc.id}).Info("loaded existing identity")
		return svc, nil
	}

	id, err := ids.New()
	if err != nil {
		return nil, errorf("Open", err, "generating identity")
	}
	svc.id = id
	if cfg.NamenodeURL != "" {
		if cfg.Port == "" {
			return nil, errorf("Open", ErrInvalidURL, "DFS_PORT must be set when joining a cluster")
		}
		if err := svc.JoinNamespace(cfg.NamenodeURL); err != nil {
			return nil, err
		}
	}
	if err := saveState(cfg.FSRoot, state{id: svc.id, namenodeURL: svc.namenodeURL}); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"component": "datanode", "id": svc.id}).Info("generated new identity")
	return svc, nil
}

// ID returns this node's 6-character identity token.
func (s *Service) ID() string { return s.id }

// FS exposes the underlying virtual filesystem for the dispatch table.
func (s *Service) FS() *vfs.FS { return s.fs }

func (s *Service) buildJoinBody() string {
	hostport := s.cfg.Port
	if s.cfg.AdvertiseHost != "" {
		hostport = s.cfg.AdvertiseHost + ":" + s.cfg.Port
	}
	if s.cfg.PublicURL != "" {
		return fmt.Sprintf("%s %s %s", s.cfg.PublicURL, hostport, s.id)
	}
	return fmt.Sprintf("%s %s", hostport, s.id)
}

// JoinNamespace POSTs this node's join handshake to namenodeURL/nodes/join.
// It rejects joining a second cluster and rejects a URL with no network
// authority.
func (s *Service) JoinNamespace(namenodeURL string) error {
	if s.namenodeURL != "" {
		return errorf("JoinNamespace", ErrAlreadyMember, "already joined %q", s.namenodeURL)
	}
	u, err := url.Parse(namenodeURL)
	if err != nil || u.Host == "" {
		return errorf("JoinNamespace", ErrInvalidURL, "%q", namenodeURL)
	}
	body := s.buildJoinBody()
	resp, err := s.client.Post(joinURL(namenodeURL), "application/octet-stream", bytes.NewReader([]byte(body)))
	if err != nil {
		return errorf("JoinNamespace", err, "POST %s", namenodeURL)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return errorf("JoinNamespace", fmt.Errorf("%s", string(data)), "status %d", resp.StatusCode)
	}
	s.namenodeURL = namenodeURL
	return nil
}

// LeaveNamespace performs a best-effort GET against the remembered name
// node's /nodes/leave; failures are logged and ignored. Local membership
// state is cleared unconditionally.
func (s *Service) LeaveNamespace() {
	if s.namenodeURL == "" {
		return
	}
	resp, err := s.client.Get(leaveURL(s.namenodeURL) + "?id=" + s.id)
	if err != nil {
		log.WithFields(log.Fields{"component": "datanode", "id": s.id, "error": err}).
			Warn("failed to notify name node of departure, leaving anyway")
	} else {
		resp.Body.Close()
	}
	s.namenodeURL = ""
	_ = saveState(s.fsRoot, state{id: s.id, namenodeURL: ""})
}

// PingAlive always returns true: reachability is proven by the fact this
// call returned at all.
func (s *Service) PingAlive() bool { return true }

// syncFrom wipes this node's filesystem and repopulates it from donorURL's
// /snap endpoint. Called by the heartbeat engine when this node transitions
// NEW->ALIVE or DEAD->ALIVE and needs to catch up with the cluster.
func (s *Service) syncFrom(donorURL string) error {
	resp, err := s.client.Get(trimmedJoin(donorURL, "snap"))
	if err != nil {
		return errorf("syncFrom", err, "GET %s/snap", donorURL)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return errorf("syncFrom", fmt.Errorf("%s", string(data)), "status %d from %s", resp.StatusCode, donorURL)
	}
	if err := s.fs.Mkfs(); err != nil {
		return errorf("syncFrom", err, "resetting before extract")
	}
	if err := s.fs.Extract(resp.Body); err != nil {
		return errorf("syncFrom", err, "extracting snapshot from %s", donorURL)
	}
	log.WithFields(log.Fields{"component": "datanode", "id": s.id, "donor": donorURL}).Info("resynced from donor")
	return nil
}

func joinURL(namenodeURL string) string {
	return trimmedJoin(namenodeURL, "nodes/join")
}

func leaveURL(namenodeURL string) string {
	return trimmedJoin(namenodeURL, "nodes/leave")
}

func trimmedJoin(base, path string) string {
	if len(base) == 0 || base[len(base)-1] != '/' {
		base += "/"
	}
	return base + path
}
