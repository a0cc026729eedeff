// Package modulation implements the Gray-coded QPSK constellation FOCUS
// uses to carry two bits per spectrum symbol.
package modulation

import (
	"fmt"
	"math"
	"math/cmplx"
)

// bitsToPhase maps a 2-bit Gray code to its constellation phase, in
// radians. Adjacent phases differ by exactly one bit.
var bitsToPhase = [4]float64{
	0b00: math.Pi / 4,
	0b01: 3 * math.Pi / 4,
	0b11: -3 * math.Pi / 4,
	0b10: -math.Pi / 4,
}

// nanSymbol replaces any non-finite demodulation input; it decodes to 0b00.
var nanSymbol = complex(1, 0)

// QPSK holds the precomputed byte->4-symbol lookup tables used to
// modulate/demodulate at byte granularity instead of bit-by-bit.
type QPSK struct {
	lssLookup [256][4]complex128 // least-significant-pair-first (default).
	mssLookup [256][4]complex128 // most-significant-pair-first (unused by default).
}

// New builds a QPSK modulator/demodulator with its lookup tables populated.
func New() *QPSK {
	q := &QPSK{}
	var bitsToSym [4]complex128
	for bits, phase := range bitsToPhase {
		bitsToSym[bits] = cmplx.Rect(1, phase)
	}
	for b := 0; b < 256; b++ {
		mod := [4]complex128{
			bitsToSym[(b>>0)&0b11],
			bitsToSym[(b>>2)&0b11],
			bitsToSym[(b>>4)&0b11],
			bitsToSym[(b>>6)&0b11],
		}
		q.lssLookup[b] = mod
		q.mssLookup[b] = [4]complex128{mod[3], mod[2], mod[1], mod[0]}
	}
	return q
}

// Modulate converts bytes to 4*len(bytes) QPSK symbols, least-significant-
// pair-first (FOCUS's only wired bit order; see DESIGN.md).
func (q *QPSK) Modulate(data []byte) []complex128 {
	return q.modulate(data, q.lssLookup)
}

// ModulateMSSFirst is the most-significant-pair-first alternative. It is
// never called from the transmit/receive paths; FOCUS pins
// least-significant-pair-first as the contract.
func (q *QPSK) ModulateMSSFirst(data []byte) []complex128 {
	return q.modulate(data, q.mssLookup)
}

func (q *QPSK) modulate(data []byte, lookup [256][4]complex128) []complex128 {
	symbols := make([]complex128, 4*len(data))
	for i, b := range data {
		copy(symbols[4*i:4*i+4], lookup[b][:])
	}
	return symbols
}

// Demodulate converts QPSK symbols back to bytes, four symbols per byte in
// the same least-significant-pair-first order Modulate used.
//
// It fails if len(symbols) is not a multiple of 4 (a partial byte) or if
// any symbol has zero magnitude once non-finite symbols have been replaced.
func (q *QPSK) Demodulate(symbols []complex128) ([]byte, error) {
	if len(symbols)%4 != 0 {
		return nil, fmt.Errorf("modulation: %d symbols is not a multiple of 4 (incomplete byte)", len(symbols))
	}

	bits := make([]byte, len(symbols))
	for i, s := range symbols {
		if cmplx.IsNaN(s) || cmplx.IsInf(s) {
			s = nanSymbol
		}
		if cmplx.Abs(s) == 0 {
			return nil, fmt.Errorf("modulation: zero-magnitude symbol at index %d", i)
		}
		bits[i] = phaseToBits(cmplx.Phase(s))
	}

	out := make([]byte, len(symbols)/4)
	for i := range out {
		b := bits[4*i : 4*i+4]
		out[i] = b[3]<<6 | b[2]<<4 | b[1]<<2 | b[0]
	}
	return out, nil
}

// phaseToBits buckets a phase (as returned by cmplx.Phase, in (-pi, pi])
// into the quadrant-wedge (width pi/2) centered on one of the four
// constellation phases: [0, pi/2) -> 0b00 (center pi/4), [pi/2, pi] ->
// 0b01 (center 3pi/4), [-pi/2, 0) -> 0b10 (center -pi/4), (-pi, -pi/2) ->
// 0b11 (center -3pi/4).
func phaseToBits(phase float64) byte {
	const q = math.Pi / 4
	switch {
	case phase >= 0 && phase < 2*q:
		return 0b00
	case phase >= 2*q:
		return 0b01
	case phase >= -2*q:
		return 0b10
	default:
		return 0b11
	}
}
