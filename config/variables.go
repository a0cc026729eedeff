package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config map keys, for use with Config.Update.
const (
	KeyHeight       = "Height"
	KeyWidth        = "Width"
	KeyNSubchannels = "NSubchannels"
	KeyParityLen    = "ParityLen"
	KeyCyclicPrefix = "CyclicPrefix"
	KeyBorder       = "Border"
	KeyNormalize    = "Normalize"
	KeyUseHints     = "UseHints"
	KeyNWorkers     = "NWorkers"
	KeyLogLevel     = "LogLevel"
)

const (
	typeUint    = "uint"
	typeBool    = "bool"
	typeInt     = "int"
	typeFloat64 = "float64"
)

const (
	defaultHeight       = 512
	defaultWidth        = 512
	defaultNSubchannels = 16
	defaultParityLen    = 16
	defaultCyclicPrefix = 8
	defaultBorder       = 0.05
	defaultNWorkers     = 4
)

// Variables describes the variables that can be used for FOCUS session
// control: name, type, an update function, and a validation function
// applying a default when the field is left unset.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyHeight,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Height = parseUint(KeyHeight, v, c) },
		Validate: func(c *Config) {
			if c.Height == 0 {
				c.LogInvalidField(KeyHeight, defaultHeight)
				c.Height = defaultHeight
			}
		},
	},
	{
		Name:   KeyWidth,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Width = parseUint(KeyWidth, v, c) },
		Validate: func(c *Config) {
			if c.Width == 0 {
				c.LogInvalidField(KeyWidth, defaultWidth)
				c.Width = defaultWidth
			}
		},
	},
	{
		Name:   KeyNSubchannels,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.NSubchannels = parseUint(KeyNSubchannels, v, c) },
		Validate: func(c *Config) {
			if c.NSubchannels == 0 {
				c.LogInvalidField(KeyNSubchannels, defaultNSubchannels)
				c.NSubchannels = defaultNSubchannels
			}
		},
	},
	{
		Name:   KeyParityLen,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.ParityLen = parseUint(KeyParityLen, v, c) },
		Validate: func(c *Config) {
			if c.ParityLen == 0 {
				c.LogInvalidField(KeyParityLen, defaultParityLen)
				c.ParityLen = defaultParityLen
			}
		},
	},
	{
		Name:   KeyCyclicPrefix,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.CyclicPrefix = parseUint(KeyCyclicPrefix, v, c) },
		Validate: func(c *Config) {
			if c.CyclicPrefix == 0 {
				c.LogInvalidField(KeyCyclicPrefix, defaultCyclicPrefix)
				c.CyclicPrefix = defaultCyclicPrefix
			}
		},
	},
	{
		Name:   KeyBorder,
		Type:   typeFloat64,
		Update: func(c *Config, v string) { c.Border = parseFloat(KeyBorder, v, c) },
		Validate: func(c *Config) {
			if c.Border <= 0 {
				c.LogInvalidField(KeyBorder, defaultBorder)
				c.Border = defaultBorder
			}
		},
	},
	{
		Name:   KeyNormalize,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Normalize = parseBool(KeyNormalize, v, c) },
	},
	{
		Name:   KeyUseHints,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.UseHints = parseBool(KeyUseHints, v, c) },
	},
	{
		Name:   KeyNWorkers,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.NWorkers = parseUint(KeyNWorkers, v, c) },
		Validate: func(c *Config) {
			if c.NWorkers == 0 {
				c.LogInvalidField(KeyNWorkers, defaultNWorkers)
				c.NWorkers = defaultNWorkers
			}
		},
	},
	{
		Name:   KeyLogLevel,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.LogLevel = int8(parseInt(KeyLogLevel, v, c)) },
	},
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.LogInvalidField(n, fmt.Sprintf("invalid uint %q", v))
	}
	return uint(_v)
}

func parseInt(n, v string, c *Config) int {
	_v, err := strconv.Atoi(v)
	if err != nil {
		c.LogInvalidField(n, fmt.Sprintf("invalid int %q", v))
	}
	return _v
}

func parseFloat(n, v string, c *Config) float64 {
	_v, err := strconv.ParseFloat(v, 64)
	if err != nil {
		c.LogInvalidField(n, fmt.Sprintf("invalid float %q", v))
	}
	return _v
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.LogInvalidField(n, fmt.Sprintf("invalid bool %q", v))
	}
	return
}
