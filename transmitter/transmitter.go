// Package transmitter composes FOCUS's physical and link layers into the
// transmit path: fragment reshaping, masking, Reed-Solomon encoding, QPSK
// modulation, spectrum packing, inverse FFT, clip-and-quantize, cyclic
// prefix, and marker overlay.
package transmitter

import (
	"image"

	"github.com/frederikhermans/focus/config"
	"github.com/frederikhermans/focus/internal/ferrors"
	"github.com/frederikhermans/focus/internal/fftengine"
	"github.com/frederikhermans/focus/internal/imageframer"
	"github.com/frederikhermans/focus/internal/link"
	"github.com/frederikhermans/focus/internal/modulation"
	"github.com/frederikhermans/focus/internal/phy"
	"github.com/frederikhermans/focus/internal/rscode"
	"github.com/frederikhermans/focus/internal/spectrum"
)

// fragmentDataLen is the fixed number of payload bytes per fragment,
// before Reed-Solomon parity is appended.
const fragmentDataLen = 64

// Transmitter holds the tables that are computed once per configuration
// and shared read-only across every Encode call: the subchannel cell
// assignment, the QPSK lookup tables, and the Reed-Solomon codec.
type Transmitter struct {
	cfg *config.Config

	idxs      spectrum.Subchannels
	fullShape spectrum.Shape
	halfW     int

	qpsk   *modulation.QPSK
	rs     *rscode.Codec
	framer imageframer.Framer

	fTotal    int
	nelements int
}

// New builds a Transmitter for cfg, precomputing its subchannel index
// table. cfg is validated and defaulted in place.
func New(cfg *config.Config) (*Transmitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fTotal := fragmentDataLen + int(cfg.ParityLen)
	nelements := 4 * fTotal
	shape := spectrum.Shape{int(cfg.Height), int(cfg.Width)}
	idxs := spectrum.SubchannelIndices(int(cfg.NSubchannels), nelements, shape)

	return &Transmitter{
		cfg:       cfg,
		idxs:      idxs,
		fullShape: shape,
		halfW:     int(cfg.Width)/2 + 1,
		qpsk:      modulation.New(),
		rs:        rscode.New(int(cfg.ParityLen)),
		framer:    imageframer.New(cfg.BorderPixels()),
		fTotal:    fTotal,
		nelements: nelements,
	}, nil
}

// PayloadLen is the number of data bytes one Encode call accepts:
// NSubchannels * 64.
func (t *Transmitter) PayloadLen() int {
	return int(t.cfg.NSubchannels) * fragmentDataLen
}

// Encode renders data as a framed code image. len(data) must equal
// PayloadLen(); otherwise Encode returns a *ferrors.ConfigError.
func (t *Transmitter) Encode(data []byte) (*image.Gray, error) {
	c := int(t.cfg.NSubchannels)
	want := t.PayloadLen()
	if len(data) != want {
		return nil, ferrors.NewConfigError(
			"transmitter: payload is %d bytes, want %d (%d subchannels x %d bytes)",
			len(data), want, c, fragmentDataLen)
	}

	symbols := make([][]complex128, c)
	for i := 0; i < c; i++ {
		fragment := append([]byte(nil), data[i*fragmentDataLen:(i+1)*fragmentDataLen]...)
		link.Mask(fragment, i)
		coded := t.rs.Encode(fragment)
		symbols[i] = t.qpsk.Modulate(coded)
	}

	flat := spectrum.Construct(symbols, t.fullShape, t.idxs)
	half := toHalfSpectrum(flat, t.fullShape, t.halfW)

	code := phy.Tx(half, fftengine.Shape(t.fullShape), int(t.cfg.CyclicPrefix), t.cfg.Normalize)
	return t.framer.AddMarkers(code), nil
}

// toHalfSpectrum reads the non-redundant (H, halfW) leading columns out of
// a flat, full-width-stride spectrum built by spectrum.Construct. Every
// usable cell's column lies within [0, halfW), so this carries the whole
// payload; the discarded columns are always zero.
func toHalfSpectrum(flat []complex128, shape spectrum.Shape, halfW int) [][]complex128 {
	h, w := shape[0], shape[1]
	out := make([][]complex128, h)
	for r := 0; r < h; r++ {
		out[r] = append([]complex128(nil), flat[r*w:r*w+halfW]...)
	}
	return out
}
