// Shared flag parsing and config-building helpers for the focus
// subcommands.
package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"

	"github.com/frederikhermans/focus/config"
	"github.com/frederikhermans/focus/internal/ferrors"
)

func newLogger(verbosity int8) logging.Logger {
	return logging.New(verbosity, os.Stderr, true)
}

// parseShape parses a "HxW" resolution string, e.g.
// "512x512" or "768x768".
func parseShape(s string) (height, width uint, err error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, ferrors.NewConfigError("invalid shape %q, want HxW", s)
	}
	h, err1 := strconv.Atoi(parts[0])
	w, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h <= 0 || w <= 0 {
		return 0, 0, ferrors.NewConfigError("invalid shape %q, want positive HxW", s)
	}
	return uint(h), uint(w), nil
}

// cliConfig holds the flags common to most subcommands.
type cliConfig struct {
	shape        string
	nsubchannels uint
	parityLen    uint
	cyclicPrefix uint
	border       float64
	nworkers     uint
	normalize    bool
	useHints     bool
	verbosity    int
}

func (c cliConfig) build() (*config.Config, error) {
	h, w, err := parseShape(c.shape)
	if err != nil {
		return nil, err
	}
	cfg := &config.Config{
		Height:       h,
		Width:        w,
		NSubchannels: c.nsubchannels,
		ParityLen:    c.parityLen,
		CyclicPrefix: c.cyclicPrefix,
		Border:       c.border,
		Normalize:    c.normalize,
		UseHints:     c.useHints,
		NWorkers:     c.nworkers,
		LogLevel:     int8(c.verbosity),
	}
	cfg.Logger = newLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
