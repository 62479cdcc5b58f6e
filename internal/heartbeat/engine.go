// Package heartbeat implements the name node's background membership
// worker: it scans every member once per tick, bootstraps NEW members,
// detects unreachable ALIVE members, and resyncs members returning from
// DEAD.
package heartbeat

import (
	"context"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/dfs/internal/membership"
	"github.com/nicolagi/dfs/internal/peer"
)

// NodeFactory builds a peer.Node for a member's internal URL with the
// given per-call timeout.
type NodeFactory func(url string, timeout time.Duration) (peer.Node, error)

// Engine is a single background worker owned by the name node.
type Engine struct {
	store       *membership.Store
	newNode     NodeFactory
	interval    time.Duration
	peerTimeout time.Duration
	stop        chan struct{}
	done        chan struct{}
}

// New configures an Engine. interval defaults to one second and
// peerTimeout to five.
func New(store *membership.Store, newNode NodeFactory, interval, peerTimeout time.Duration) *Engine {
	if interval <= 0 {
		interval = time.Second
	}
	if peerTimeout <= 0 {
		peerTimeout = 5 * time.Second
	}
	return &Engine{
		store:       store,
		newNode:     newNode,
		interval:    interval,
		peerTimeout: peerTimeout,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start launches the worker goroutine. Call Stop to tear it down.
func (e *Engine) Start() {
	go e.run()
}

// Stop signals the worker to exit and blocks until it does.
func (e *Engine) Stop() {
	close(e.stop)
	<-e.done
}

func (e *Engine) run() {
	defer close(e.done)
	for {
		e.tick()
		select {
		case <-e.stop:
			return
		default:
		}
		select {
		case <-e.stop:
			return
		case <-time.After(e.interval):
		}
	}
}

// tick processes every known member sequentially: a member's status
// transition commits before the next member is examined, and is
// immediately observable to the dispatcher.
func (e *Engine) tick() {
	for _, m := range e.store.Filter(nil) {
		e.visit(m)
	}
}

func (e *Engine) visit(m membership.Record) {
	logger := log.WithFields(log.Fields{"component": "heartbeat", "member": m.ID, "status": string(m.Status)})

	node, err := e.newNode(m.URL, e.peerTimeout)
	if err != nil {
		logger.WithError(err).Warn("could not construct peer, skipping this tick")
		return
	}

	switch m.Status {
	case membership.StatusNew:
		e.initialize(node, m, logger)
	case membership.StatusDead:
		ctx, cancel := context.WithTimeout(context.Background(), e.peerTimeout)
		alive := node.PingAlive(ctx)
		cancel()
		if alive {
			e.initialize(node, m, logger)
		}
	default: // StatusAlive
		ctx, cancel := context.WithTimeout(context.Background(), e.peerTimeout)
		alive := node.PingAlive(ctx)
		cancel()
		if !alive {
			if err := e.store.Modify(m.ID).SetStatus(membership.StatusDead).Commit(); err != nil {
				logger.WithError(err).Warn("failed to commit DEAD transition")
				return
			}
			logger.Warn("member stopped responding, marked DEAD")
		}
	}
}

// initialize bootstraps or resyncs m: wipe its storage, pull a random
// ALIVE donor's snapshot, replicate the donor's workdir, then mark m
// ALIVE. If no donor is available the member is left unchanged for the
// next tick to retry.
func (e *Engine) initialize(node peer.Node, m membership.Record, logger *log.Entry) {
	donor, ok := e.pickDonor(m.ID)
	if !ok {
		logger.Debug("no ALIVE donor available yet, retrying next tick")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.peerTimeout)
	defer cancel()

	if err := node.Mkfs(ctx); err != nil {
		logger.WithError(err).Warn("mkfs failed during initialize")
		return
	}
	if err := node.Sync(ctx, donor.URL); err != nil {
		logger.WithError(err).Warn("sync from donor failed")
		return
	}

	donorNode, err := e.newNode(donor.URL, e.peerTimeout)
	if err == nil {
		if workdir, _, _, err := donorNode.Stat(ctx, "."); err == nil {
			if err := node.Cd(ctx, workdir); err != nil {
				logger.WithError(err).Warn("replicating donor workdir failed")
			}
		}
	}

	if err := e.store.Modify(m.ID).SetStatus(membership.StatusAlive).Commit(); err != nil {
		logger.WithError(err).Warn("failed to commit ALIVE transition")
		return
	}
	logger.WithField("donor", donor.ID).Info("member initialized")
}

func (e *Engine) pickDonor(excludeID string) (membership.Record, bool) {
	alive := e.store.Filter(func(r membership.Record) bool {
		return r.Status == membership.StatusAlive && r.ID != excludeID
	})
	if len(alive) == 0 {
		return membership.Record{}, false
	}
	return alive[rand.Intn(len(alive))], true
}
