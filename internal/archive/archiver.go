package archive

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// SnapshotSource produces one cluster snapshot blob on demand. The name
// node supplies a closure that redirects to an ALIVE member and fetches
// its /snap.
type SnapshotSource func(ctx context.Context) (data []byte, err error)

// Archiver periodically pulls a snapshot and hands it to a Backend, naming
// each archive by the time it was taken.
type Archiver struct {
	backend  Backend
	source   SnapshotSource
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
	done     chan struct{}
}

// NewArchiver configures an Archiver. A zero interval disables archiving:
// Start becomes a no-op.
func NewArchiver(backend Backend, source SnapshotSource, interval time.Duration) *Archiver {
	return &Archiver{
		backend:  backend,
		source:   source,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the periodic archive loop, or does nothing if no interval
// was configured.
func (a *Archiver) Start() {
	if a.interval <= 0 {
		close(a.done)
		return
	}
	go a.run()
}

// Stop signals the loop to exit and waits for it.
func (a *Archiver) Stop() {
	select {
	case <-a.done:
		return // Start was a no-op; nothing to join.
	default:
	}
	close(a.stop)
	<-a.done
}

func (a *Archiver) run() {
	defer close(a.done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			a.archiveOnce()
		}
	}
}

func (a *Archiver) archiveOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), a.interval)
	defer cancel()
	data, err := a.source(ctx)
	if err != nil {
		log.WithField("component", "archive").WithError(err).Warn("could not obtain snapshot to archive")
		return
	}
	name := a.now().UTC().Format("20060102T150405Z")
	if err := a.backend.Put(name, data); err != nil {
		log.WithFields(log.Fields{"component": "archive", "name": name}).WithError(err).Warn("could not persist archive")
		return
	}
	log.WithFields(log.Fields{"component": "archive", "name": name}).Info("archived cluster snapshot")
}
