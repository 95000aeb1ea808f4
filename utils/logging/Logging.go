// Package logging configures the logrus loggers used throughout gorl
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Format is the output format of a logger
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
)

// New returns a logger writing to out at the named level in the given
// format
func New(out io.Writer, level string, format Format) (*logrus.Logger,
	error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(lvl)

	switch format {
	case JSON:
		log.SetFormatter(&logrus.JSONFormatter{})
	case Text, "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("new: unknown log format %q", format)
	}
	return log, nil
}

// Discard returns a logger which drops all entries
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
