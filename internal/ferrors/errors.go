// Package ferrors defines FOCUS's error kinds, so callers
// can branch on what failed without parsing message strings.
package ferrors

import "fmt"

// ConfigError reports a malformed configuration: payload dimensions that
// don't match what the config requires, a bad resolution string, or a
// request for more symbols than the spectrum shape can hold. It is
// surfaced immediately and never retried.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "focus: config error: " + e.Msg }

// NewConfigError builds a ConfigError with a formatted message.
func NewConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// LocateFailure reports that the framer could not find calibration
// markers in a frame. Callers recover by emitting an empty fragment list
// with status "notfound"; it is never fatal to the session.
type LocateFailure struct {
	Msg string
}

func (e *LocateFailure) Error() string { return "focus: locate failure: " + e.Msg }

// DemodInvalid reports a zero-magnitude QPSK symbol or a symbol count
// that isn't a multiple of 4 (a partial byte). It is fatal for the frame
// it occurred in, but never for other frames.
type DemodInvalid struct {
	Msg string
}

func (e *DemodInvalid) Error() string { return "focus: demodulation invalid: " + e.Msg }

// DecodeFailure reports that Reed-Solomon recovery was exhausted for one
// channel's fragment. It is local to that channel; siblings decode
// independently.
type DecodeFailure struct {
	Channel int
}

func (e *DecodeFailure) Error() string {
	return fmt.Sprintf("focus: decode failure: channel %d exhausted Reed-Solomon recovery", e.Channel)
}

// WorkerFramingError reports malformed serialized data read from a
// worker pipe. It is fatal to the whole decode session: the dispatcher
// stops handing out further frames.
type WorkerFramingError struct {
	Msg string
}

func (e *WorkerFramingError) Error() string { return "focus: worker framing error: " + e.Msg }

// IsFatal reports whether err should stop the whole decode session
// rather than being recovered at the frame or channel level.
func IsFatal(err error) bool {
	_, ok := err.(*WorkerFramingError)
	return ok
}
