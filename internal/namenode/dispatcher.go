// Package namenode implements the cluster coordinator: it owns the
// membership store, fans mutating operations out to every ALIVE data node,
// and redirects reads to one randomly chosen ALIVE replica's public URL.
// See Handlers for the dispatch table the HTTP front end exposes, and
// joinHandler/leaveHandler for the two routes that fall outside its shape.
package namenode

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/dfs/internal/membership"
	"github.com/nicolagi/dfs/internal/peer"
)

// NodeFactory builds a peer.Node for a member's internal URL with the
// given per-call timeout. Production code passes peer.New; tests
// substitute a fake that never touches the network.
type NodeFactory func(url string, timeout time.Duration) (peer.Node, error)

// Dispatcher is the name node's view of the cluster: the membership store
// plus whatever knows how to turn a URL into a live peer.Node.
type Dispatcher struct {
	store       *membership.Store
	newNode     NodeFactory
	peerTimeout time.Duration
}

// NewDispatcher wires a Dispatcher to store. A zero peerTimeout defaults
// to 5 seconds.
func NewDispatcher(store *membership.Store, newNode NodeFactory, peerTimeout time.Duration) *Dispatcher {
	if peerTimeout <= 0 {
		peerTimeout = 5 * time.Second
	}
	return &Dispatcher{store: store, newNode: newNode, peerTimeout: peerTimeout}
}

func (d *Dispatcher) aliveMembers() []membership.Record {
	return d.store.Filter(membership.ByStatus(membership.StatusAlive))
}

// FanOut invokes op against every currently ALIVE member concurrently. A
// member that errors or times out is logged and otherwise ignored: the
// fan-out's job is best-effort replication, not all-or-nothing commit.
// Convergence after a member drops out is the heartbeat engine's job, via
// snapshot resync on its next ALIVE transition.
func (d *Dispatcher) FanOut(ctx context.Context, op func(ctx context.Context, n peer.Node) error) {
	members := d.aliveMembers()
	var wg sync.WaitGroup
	for _, m := range members {
		m := m
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, d.peerTimeout)
			defer cancel()
			n, err := d.newNode(m.URL, d.peerTimeout)
			if err != nil {
				log.WithFields(log.Fields{"component": "namenode", "member": m.ID, "url": m.URL}).
					WithError(err).Warn("fan-out: could not reach member")
				return
			}
			if err := op(callCtx, n); err != nil {
				log.WithFields(log.Fields{"component": "namenode", "member": m.ID, "url": m.URL}).
					WithError(err).Warn("fan-out: member rejected operation")
			}
		}()
	}
	wg.Wait()
}

// RedirectURL picks a uniformly random ALIVE member, verifies it is
// actually reachable, and returns opPath joined onto its public URL. On a
// dead pick it tries another, falling through the whole ALIVE set before
// giving up with ErrClusterUnavailable.
func (d *Dispatcher) RedirectURL(ctx context.Context, opPath string) (string, error) {
	members := d.aliveMembers()
	if len(members) == 0 {
		return "", errorf("RedirectURL", ErrClusterUnavailable, "no ALIVE members")
	}
	for _, i := range rand.Perm(len(members)) {
		m := members[i]
		n, err := d.newNode(m.URL, d.peerTimeout)
		if err != nil {
			continue
		}
		callCtx, cancel := context.WithTimeout(ctx, d.peerTimeout)
		reachable := n.PingAlive(callCtx)
		cancel()
		if !reachable {
			continue
		}
		return joinURL(m.PublicURL, opPath), nil
	}
	return "", errorf("RedirectURL", ErrClusterUnavailable, "no reachable ALIVE member")
}

// PickDonor is RedirectURL's counterpart for the archiver's snapshot
// source: it returns the record of a uniformly random ALIVE member, with no
// reachability probe (an unreachable donor shows up as the following snap
// call's failure).
func (d *Dispatcher) PickDonor() (membership.Record, bool) {
	members := d.aliveMembers()
	if len(members) == 0 {
		return membership.Record{}, false
	}
	return members[rand.Intn(len(members))], true
}

// Store exposes the underlying membership store, for the /nodes/join and
// /nodes/leave handlers.
func (d *Dispatcher) Store() *membership.Store { return d.store }

// NewNode exposes the configured NodeFactory so the archiver's snapshot
// source builds peer.Node values the same way the dispatcher does.
func (d *Dispatcher) NewNode(url string) (peer.Node, error) {
	return d.newNode(url, d.peerTimeout)
}

// AggregateDF queries df on every ALIVE member concurrently and returns
// rows [id, total, used, free], sorted by id.
func (d *Dispatcher) AggregateDF(ctx context.Context) [][]string {
	members := d.aliveMembers()
	rows := make([][]string, len(members))
	var wg sync.WaitGroup
	for i, m := range members {
		i, m := i, m
		wg.Add(1)
		go func() {
			defer wg.Done()
			row := []string{m.ID, "0", "0", "0"}
			n, err := d.newNode(m.URL, d.peerTimeout)
			if err == nil {
				callCtx, cancel := context.WithTimeout(ctx, d.peerTimeout)
				total, used, free, derr := n.DF(callCtx)
				cancel()
				if derr == nil {
					row = []string{m.ID, strconv.FormatUint(total, 10), strconv.FormatUint(used, 10), strconv.FormatUint(free, 10)}
				}
			}
			rows[i] = row
		}()
	}
	wg.Wait()
	return rows
}

// Status returns every known member (any status) as rows
// [id, url, public_url, status], for the /status aggregate endpoint.
func (d *Dispatcher) Status() [][]string {
	members := d.store.Filter(nil)
	rows := make([][]string, len(members))
	for i, m := range members {
		rows[i] = []string{m.ID, m.URL, m.PublicURL, string(m.Status)}
	}
	return rows
}

// AddNode registers a new member with status NEW. The heartbeat engine
// picks it up on its next tick.
func (d *Dispatcher) AddNode(publicURL *string, url, id string) error {
	pub := ""
	if publicURL != nil {
		pub = *publicURL
	}
	_, err := d.store.Create(id, url, pub, membership.StatusNew)
	return err
}

func joinURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	path = strings.TrimLeft(path, "/")
	return base + "/" + path
}
