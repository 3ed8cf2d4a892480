// Package logging provides the shared structured logger used across the
// server, dispatcher and replication subsystems.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a text-formatted logrus logger writing to stderr, matching
// the plain, timestamped lines a terminal-attached Redis-alike emits.
func New() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	log.SetLevel(logrus.InfoLevel)
	return log
}
