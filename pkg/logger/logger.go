package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. Production emits JSON; everything else
// gets text with full timestamps.
func New(env string, debug bool) *logrus.Logger {
	return NewWithOutput(os.Stdout, env, debug)
}

// NewWithOutput is New writing to w.
func NewWithOutput(w io.Writer, env string, debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)

	if env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	if debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
