// Package diagnostics wraps google/gops/agent, the same diagnostics
// listener cmd/musclefs starts (cmd/musclefs/musclefs_linux.go), so both
// cluster binaries can be introspected with the gops CLI in the field.
package diagnostics

import (
	"github.com/google/gops/agent"
	log "github.com/sirupsen/logrus"
)

// StartIfEnabled starts the gops agent when enabled is true. Failures are
// logged and otherwise ignored: diagnostics are a convenience, never a
// startup requirement.
func StartIfEnabled(enabled bool) {
	if !enabled {
		return
	}
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.WithField("component", "diagnostics").WithError(err).Warn("could not start gops agent")
	}
}
