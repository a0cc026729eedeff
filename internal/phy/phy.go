// Package phy implements FOCUS's physical layer: the clip-and-quantize
// step that turns an inverse-FFT'd spectrum into an 8-bit image at a
// target SNR, and the cyclic-prefix framing that protects low-frequency
// bins from small alignment errors.
package phy

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/frederikhermans/focus/internal/fftengine"
)

// minSNR is the target signal-to-noise ratio, in dB, the clip threshold
// is bisected to meet.
const minSNR = 45.0

// snr returns 10*log10(mean(orig^2) / mean((orig-clipped)^2)) in dB. If
// orig and clipped are identical, the noise term is zero and snr returns
// +Inf.
func snr(orig, clipped []float64) float64 {
	signal := make([]float64, len(orig))
	noise := make([]float64, len(orig))
	for i := range orig {
		signal[i] = orig[i] * orig[i]
		d := orig[i] - clipped[i]
		noise[i] = d * d
	}
	num := stat.Mean(signal, nil)
	den := stat.Mean(noise, nil)
	if den == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(num/den)
}

func flatten(frame [][]float64) []float64 {
	h := len(frame)
	w := len(frame[0])
	flat := make([]float64, 0, h*w)
	for _, row := range frame {
		flat = append(flat, row...)
	}
	return flat
}

func clipAt(orig []float64, threshold float64) []float64 {
	clipped := make([]float64, len(orig))
	for i, v := range orig {
		if v > threshold {
			clipped[i] = threshold
		} else {
			clipped[i] = v
		}
	}
	return clipped
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// clipAndQuantize bisects a clip threshold t in [0.5, 1.0] (a fraction of
// the frame's peak) so that the SNR between frame and min(frame, t*peak)
// rounds to minSNR dB, then affine-scales the clipped frame to [0,255]
// and quantizes it to 8-bit unsigned pixels.
func clipAndQuantize(frame [][]float64) [][]uint8 {
	flat := flatten(frame)
	peak := maxOf(flat)

	lo, hi := 0.5, 1.0
	var clipped []float64
	for iter := 0; iter < 64; iter++ {
		t := (lo + hi) / 2
		clipped = clipAt(flat, t*peak)
		s := snr(flat, clipped)
		if math.IsInf(s, 1) || math.Round(s) == minSNR {
			break
		}
		if s > minSNR {
			hi = t
		} else {
			lo = t
		}
	}

	cmin := minOf(clipped)
	cmax := maxOf(clipped)
	scale := 255.0
	if cmax > cmin {
		scale = 255.0 / (cmax - cmin)
	}

	h := len(frame)
	w := len(frame[0])
	out := make([][]uint8, h)
	idx := 0
	for r := 0; r < h; r++ {
		out[r] = make([]uint8, w)
		for c := 0; c < w; c++ {
			v := (clipped[idx] - cmin) * scale
			idx++
			out[r][c] = quantize(v)
		}
	}
	return out
}

func quantize(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// AddCyclicPrefix tiles code 3x3 and extracts the centred window
// [H-p:2H+p, W-p:2W+p], producing a (H+2p, W+2p) frame whose border
// pixels are replicated from the opposite edge of code.
func AddCyclicPrefix(code [][]uint8, p int) [][]uint8 {
	if p == 0 {
		out := make([][]uint8, len(code))
		for r := range code {
			out[r] = append([]uint8(nil), code[r]...)
		}
		return out
	}
	h := len(code)
	w := len(code[0])

	out := make([][]uint8, h+2*p)
	for r := range out {
		srcRow := ((r-p)%h + h) % h
		row := make([]uint8, w+2*p)
		for c := range row {
			srcCol := ((c-p)%w + w) % w
			row[c] = code[srcRow][srcCol]
		}
		out[r] = row
	}
	return out
}

// StripCyclicPrefix removes the p-pixel border CP added, inverting
// AddCyclicPrefix.
func StripCyclicPrefix(frame [][]uint8, p int) [][]uint8 {
	if p == 0 {
		return frame
	}
	h := len(frame) - 2*p
	w := len(frame[0]) - 2*p
	out := make([][]uint8, h)
	for r := 0; r < h; r++ {
		out[r] = append([]uint8(nil), frame[r+p][p:p+w]...)
	}
	return out
}

// Tx runs the forward physical-layer path: inverse real 2-D FFT of
// spectrum to a (H, W) frame, optional clip-and-quantize normalization,
// then cyclic-prefix framing with p pixels on each side.
func Tx(spectrum [][]complex128, shape fftengine.Shape, p int, normalize bool) [][]uint8 {
	frame := fftengine.IRFFT2(spectrum, shape)

	var code [][]uint8
	if normalize {
		code = clipAndQuantize(frame)
	} else {
		code = make([][]uint8, len(frame))
		for r, row := range frame {
			code[r] = make([]uint8, len(row))
			for c, v := range row {
				code[r][c] = quantize(v)
			}
		}
	}
	return AddCyclicPrefix(code, p)
}

// Rx runs the reverse physical-layer path: forward real 2-D FFT of an
// already-rectified, CP-stripped frame.
func Rx(frame [][]uint8) [][]complex128 {
	f := make([][]float64, len(frame))
	for r, row := range frame {
		f[r] = make([]float64, len(row))
		for c, v := range row {
			f[r][c] = float64(v)
		}
	}
	return fftengine.RFFT2(f)
}
