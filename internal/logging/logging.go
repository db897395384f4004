// Package logging configures the logrus logger shared by the library
// and the rtcgen CLI.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Options controls where log output goes and how verbose it is.
type Options struct {
	Level   string // logrus level name; invalid values fall back to "info"
	File    string // append to this file when non-empty
	Console bool   // also write to stderr
}

// New builds a configured *logrus.Logger. It returns an error only when
// the log file cannot be created.
func New(opts Options) (*logrus.Logger, error) {
	log := logrus.New()

	lvl, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	var writers []io.Writer
	if opts.Console {
		writers = append(writers, os.Stderr)
	}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
	}

	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}

	return log, nil
}

// Discard returns a logger that swallows all output. It is the default
// for library use when the caller does not provide one.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
