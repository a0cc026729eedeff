// Package config holds the parameters shared by a FOCUS transmitter,
// receiver and multi-process receiver: spectrum shape, subchannel count,
// physical-layer parameters, and the worker pool size.
package config

import (
	"fmt"
	"math"

	"github.com/ausocean/utils/logging"

	"github.com/frederikhermans/focus/internal/ferrors"
)

// Config provides the parameters relevant to one FOCUS session. A new
// Config must be passed through Validate before use; defaults are
// applied for anything left unset.
type Config struct {
	// Height and Width are the spectrum/code frame dimensions in pixels.
	// Tested configurations use 512x512 and 768x768.
	Height uint
	Width  uint

	// NSubchannels is the number of independent fragments packed per
	// frame (C in spec terms).
	NSubchannels uint

	// ParityLen is the Reed-Solomon parity length in symbols appended to
	// each 64-byte fragment.
	ParityLen uint

	// CyclicPrefix is the number of pixels of cyclic prefix added on
	// each side of the code.
	CyclicPrefix uint

	// Border is the fraction of min(Height, Width) reserved as a
	// calibration-marker margin around the code, kept clear of every
	// code pixel. BorderPixels converts this to a pixel count.
	Border float64

	// Normalize enables clip-and-quantize normalization of the
	// transmitted code to the target SNR.
	Normalize bool

	// UseHints enables passing the framer's accumulated marker hints
	// back in on the next frame.
	UseHints bool

	// NWorkers is the worker pool size for the multi-process/in-process
	// receiver.
	NWorkers uint

	// Logger holds an implementation of the Logger interface as defined
	// in github.com/ausocean/utils/logging. This must be set.
	Logger logging.Logger

	// LogLevel is the logging verbosity level. Valid values are defined
	// by enums from the logging package: logging.Debug, logging.Info,
	// logging.Warning, logging.Error, logging.Fatal.
	LogLevel int8
}

// Validate checks config fields and defaults settings for anything that
// has not been defined, via the Variables table below.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	if c.NSubchannels == 0 {
		return ferrors.NewConfigError("nsubchannels must be > 0")
	}
	if c.Height == 0 || c.Width == 0 {
		return ferrors.NewConfigError("shape must be non-zero, got %dx%d", c.Height, c.Width)
	}
	return nil
}

// BorderPixels converts Border, a fraction of min(Height, Width), to the
// pixel count imageframer.New expects.
func (c *Config) BorderPixels() int {
	side := c.Height
	if c.Width < side {
		side = c.Width
	}
	return int(math.Round(c.Border * float64(side)))
}

// Update takes a map of configuration variable names and their
// corresponding string values, and sets the Config fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

// LogInvalidField logs that a field was bad or unset and is being
// defaulted.
func (c *Config) LogInvalidField(name string, def interface{}) {
	if c.Logger == nil {
		return
	}
	c.Logger.Info(name+" bad or unset, defaulting", name, fmt.Sprint(def))
}
