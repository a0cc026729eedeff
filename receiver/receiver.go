// Package receiver implements FOCUS's receive path: locate calibration
// markers, rectify the code region, strip the cyclic prefix, forward
// FFT, unpack subchannels, QPSK-demodulate, Reed-Solomon decode, and
// unmask.
package receiver

import (
	"image"
	"image/color"

	"github.com/frederikhermans/focus/config"
	"github.com/frederikhermans/focus/internal/ferrors"
	"github.com/frederikhermans/focus/internal/imageframer"
	"github.com/frederikhermans/focus/internal/link"
	"github.com/frederikhermans/focus/internal/modulation"
	"github.com/frederikhermans/focus/internal/phy"
	"github.com/frederikhermans/focus/internal/rscode"
	"github.com/frederikhermans/focus/internal/spectrum"
)

// fragmentDataLen is the fixed number of payload bytes per fragment,
// before Reed-Solomon parity.
const fragmentDataLen = 64

// Status reports how far a frame got through the receive state machine
// Received -> Located -> Extracted -> Demodulated -> Decoded before it
// either completed or short-circuited.
type Status string

const (
	// StatusOK means the frame reached Decoded; individual channels may
	// still be absent (see Result.Fragments).
	StatusOK Status = "ok"
	// StatusNotFound means Locate (or the subsequent Extract) failed.
	StatusNotFound Status = "notfound"
	// StatusDemodError means Demodulate failed fatally for this frame.
	StatusDemodError Status = "demoderror"
)

// Result is what Decode returns for one captured frame.
type Result struct {
	// Fragments holds one entry per subchannel; a nil entry means that
	// channel's Reed-Solomon recovery was exhausted and the fragment is absent.
	Fragments [][]byte
	Status    Status
	// Err carries the underlying typed error (see internal/ferrors) when
	// Status is not StatusOK.
	Err error
}

// Receiver holds the tables computed once per configuration and shared
// read-only across every Decode call.
type Receiver struct {
	cfg *config.Config

	idxs        spectrum.Subchannels
	croppedIdxs spectrum.Subchannels
	bboxH       int
	bboxW       int

	qpsk   *modulation.QPSK
	rs     *rscode.Codec
	framer imageframer.Framer

	fTotal int

	hints []image.Point
}

// New builds a Receiver for cfg, precomputing its subchannel index table
// and cropped bounding box. cfg is validated and defaulted in place.
func New(cfg *config.Config) (*Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fTotal := fragmentDataLen + int(cfg.ParityLen)
	nelements := 4 * fTotal
	shape := spectrum.Shape{int(cfg.Height), int(cfg.Width)}
	idxs := spectrum.SubchannelIndices(int(cfg.NSubchannels), nelements, shape)

	bboxH, bboxW := spectrum.BBox(idxs)
	croppedIdxs, err := spectrum.CropIndices(idxs, bboxH, bboxW)
	if err != nil {
		return nil, ferrors.NewConfigError("receiver: %v", err)
	}

	return &Receiver{
		cfg:         cfg,
		idxs:        idxs,
		croppedIdxs: croppedIdxs,
		bboxH:       bboxH,
		bboxW:       bboxW,
		qpsk:        modulation.New(),
		rs:          rscode.New(int(cfg.ParityLen)),
		framer:      imageframer.New(cfg.BorderPixels()),
		fTotal:      fTotal,
	}, nil
}

// Decode recovers whatever fragments it can from a captured frame,
// following the Received -> Located -> Extracted -> Demodulated ->
// Decoded state machine. A failure at Located or Extracted
// short-circuits to StatusNotFound; a failure at Demodulated is fatal to
// the frame but never poisons other frames; a per-channel Reed-Solomon
// failure at Decoded only removes that channel's fragment.
func (r *Receiver) Decode(frame image.Image) Result {
	gray := greenChannel(frame)

	hints := []image.Point(nil)
	if r.cfg.UseHints {
		hints = r.hints
	}
	corners, ok := r.framer.Locate(frame, hints)
	if !ok {
		return Result{Status: StatusNotFound, Err: &ferrors.LocateFailure{Msg: "no markers found"}}
	}
	if r.cfg.UseHints {
		r.hints = append([]image.Point(nil), corners[:]...)
	}

	p := int(r.cfg.CyclicPrefix)
	shapeWithCP := [2]int{int(r.cfg.Height) + 2*p, int(r.cfg.Width) + 2*p}
	rectified, err := r.framer.Extract(gray, shapeWithCP, corners)
	if err != nil {
		return Result{Status: StatusNotFound, Err: &ferrors.LocateFailure{Msg: err.Error()}}
	}

	stripped := phy.StripCyclicPrefix(rectified, p)
	spec2D := phy.Rx(stripped)
	halfW := len(spec2D[0])

	flat := flattenComplex(spec2D)
	halfShape := spectrum.Shape{int(r.cfg.Height), halfW}
	cropped := spectrum.Crop(flat, halfShape, r.bboxH, r.bboxW)
	croppedShape := spectrum.Shape{2 * r.bboxH, r.bboxW}

	c := int(r.cfg.NSubchannels)
	allSymbols := make([]complex128, 0, c*4*r.fTotal)
	for i := 0; i < c; i++ {
		allSymbols = append(allSymbols, spectrum.Unload(cropped, croppedShape, r.croppedIdxs[i])...)
	}

	coded, err := r.qpsk.Demodulate(allSymbols)
	if err != nil {
		return Result{Status: StatusDemodError, Err: &ferrors.DemodInvalid{Msg: err.Error()}}
	}

	fragments := make([][]byte, c)
	for i := 0; i < c; i++ {
		channelCoded := coded[i*r.fTotal : (i+1)*r.fTotal]
		nerrors, data := r.rs.Decode(channelCoded)
		if nerrors < 0 {
			fragments[i] = nil
			continue
		}
		link.Mask(data, i)
		fragments[i] = data
	}

	return Result{Fragments: fragments, Status: StatusOK}
}

// greenChannel reduces frame to grayscale by taking its green channel,
// the most reliable channel on typical Bayer sensors at FOCUS's target
// wavelength band.
func greenChannel(frame image.Image) *image.Gray {
	if g, ok := frame.(*image.Gray); ok {
		return g
	}
	b := frame.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, g, _, _ := frame.At(x, y).RGBA()
			out.SetGray(x, y, color.Gray{Y: uint8(g >> 8)})
		}
	}
	return out
}

func flattenComplex(rows [][]complex128) []complex128 {
	h := len(rows)
	w := len(rows[0])
	flat := make([]complex128, 0, h*w)
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return flat
}
