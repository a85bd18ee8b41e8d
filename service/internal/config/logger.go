// internal/config/logger.go
package config

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. Stdout carries the game protocol, so
// callers pass stderr (or a test buffer) as out.
func NewLogger(level, format string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: LOG_LEVEL: %v", ErrInvalidConfig, err)
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(lvl)
	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	default:
		return nil, fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, format)
	}
	return log, nil
}
