// Package logging configures the process-wide logrus logger shared by both
// binaries, following cmd/muscle's setup (JSON to stderr, level from an
// environment variable) rather than hand-rolling a second logging story
// for the cluster binaries.
package logging

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Configure sets the global logrus logger to JSON-on-stderr at the level
// named by levelName (one of logrus's level strings; "info" if empty or
// unparseable).
func Configure(levelName string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.JSONFormatter{})
	level, err := log.ParseLevel(levelName)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
