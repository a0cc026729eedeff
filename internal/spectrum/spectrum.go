// Package spectrum assigns QPSK symbols to subchannels' spectrum cells and
// back, and provides the bounding-box crop used to shrink the spectrum the
// receiver's forward FFT has to operate on.
package spectrum

import (
	"fmt"

	"github.com/frederikhermans/focus/internal/mapping"
)

// Shape is a (height, width) pair describing a spectrum's dimensions.
type Shape [2]int

// Subchannels is the logical mapping from subchannel index to its ordered
// list of cell coordinates.
type Subchannels [][]mapping.Cell

// SubchannelIndices partitions the first nsubchannels*nelements halfring
// cells contiguously into nsubchannels blocks of nelements cells each.
func SubchannelIndices(nsubchannels, nelements int, shape Shape) Subchannels {
	cells := mapping.Halfring(nsubchannels*nelements, [2]int(shape))
	idxs := make(Subchannels, nsubchannels)
	for i := 0; i < nsubchannels; i++ {
		idxs[i] = cells[i*nelements : (i+1)*nelements]
	}
	return idxs
}

// index converts a cell (v, u) into a flat row-major offset into a
// shape-sized spectrum, wrapping negative v per the real-FFT's modulo-H
// row indexing.
func (s Shape) index(c mapping.Cell) int {
	v := c.V
	if v < 0 {
		v += s[0]
	}
	return v*s[1] + c.U
}

// Load writes symbols[k] into the cell channelIdx[k] of spectrum.
func Load(spectrum []complex128, shape Shape, channelIdx []mapping.Cell, symbols []complex128) {
	for k, c := range channelIdx {
		spectrum[shape.index(c)] = symbols[k]
	}
}

// Unload reads the symbols at each cell in channelIdx from spectrum,
// without mutating it.
func Unload(spectrum []complex128, shape Shape, channelIdx []mapping.Cell) []complex128 {
	out := make([]complex128, len(channelIdx))
	for k, c := range channelIdx {
		out[k] = spectrum[shape.index(c)]
	}
	return out
}

// Construct packs symbols (one slice per subchannel) into a new
// shape-sized spectrum, zero elsewhere.
func Construct(symbols [][]complex128, shape Shape, idxs Subchannels) []complex128 {
	spectrum := make([]complex128, shape[0]*shape[1])
	for i, channelSymbols := range symbols {
		Load(spectrum, shape, idxs[i], channelSymbols)
	}
	return spectrum
}

// BBox returns the smallest (height, width) such that every cell used by
// idxs lies within the top-H'/bottom-H' rows and leftmost W' columns of a
// full-sized spectrum.
func BBox(idxs Subchannels) (height, width int) {
	for _, channel := range idxs {
		for _, c := range channel {
			// A cell with v >= 0 needs top rows reaching v; a cell with
			// v < 0 (a wrapped-around negative frequency) needs bottom
			// rows reaching -v. height is the largest such requirement
			// over all used cells, in either direction.
			if c.V >= 0 {
				if c.V+1 > height {
					height = c.V + 1
				}
			} else if -c.V > height {
				height = -c.V
			}
			if c.U+1 > width {
				width = c.U + 1
			}
		}
	}
	return height, width
}

// Crop returns a new spectrum of shape (2*height, width), formed by
// vertically stacking spectrum[:height, :width] and spectrum[-height:, :width]
// from a shape-sized spectrum.
func Crop(spectrum []complex128, shape Shape, height, width int) []complex128 {
	cropped := make([]complex128, 2*height*width)
	for r := 0; r < height; r++ {
		copy(cropped[r*width:(r+1)*width], spectrum[r*shape[1]:r*shape[1]+width])
	}
	for r := 0; r < height; r++ {
		srcRow := shape[0] - height + r
		dstRow := height + r
		copy(cropped[dstRow*width:(dstRow+1)*width], spectrum[srcRow*shape[1]:srcRow*shape[1]+width])
	}
	return cropped
}

// CropIndices rewrites channel cell coordinates to refer into a spectrum
// cropped to (height, width) via Crop, so Unload can operate directly on
// the cropped representation.
func CropIndices(idxs Subchannels, height, width int) (Subchannels, error) {
	out := make(Subchannels, len(idxs))
	for i, channel := range idxs {
		cells := make([]mapping.Cell, len(channel))
		for k, c := range channel {
			if c.U >= width {
				return nil, fmt.Errorf("spectrum: cell column %d exceeds crop width %d", c.U, width)
			}
			switch {
			case c.V >= 0 && c.V < height:
				// Falls in the top block, unchanged.
				cells[k] = mapping.Cell{V: c.V, U: c.U}
			case c.V < 0 && -c.V <= height:
				// Falls in the bottom block, which Crop placed at rows
				// [height, 2*height) of the cropped spectrum.
				cells[k] = mapping.Cell{V: 2*height + c.V, U: c.U}
			default:
				return nil, fmt.Errorf("spectrum: cell row %d falls outside crop bbox height %d", c.V, height)
			}
		}
		out[i] = cells
	}
	return out, nil
}
