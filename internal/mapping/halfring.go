// Package mapping generates the deterministic, shape-aware sequence of
// usable spectrum cells that subchannels are packed into.
//
// The sequence is produced by growing a set of per-column candidate cells
// outward from the origin by integer radius, sorting each radius's batch by
// squared distance, and filtering out cells that a real 2-D FFT's conjugate
// symmetry would otherwise make redundant or illegal to address directly.
package mapping

import (
	"fmt"
	"sort"
)

// Cell is a single usable spectrum cell coordinate (v, u).
type Cell struct {
	V, U int
}

func distance(v, u int) int { return v*v + u*u }

// usable reports whether (v, u) may hold an independent complex symbol in
// a conjugate-symmetric matrix of the given shape, where shape is (H, W).
//
// It panics if u exceeds the legal range for W, since that indicates the
// caller asked for more symbols than the spectrum can address -- a
// programming error, not a runtime condition to recover from.
func usable(v, u int, shape [2]int) bool {
	h, w := shape[0], shape[1]

	vv := v
	if vv < 0 {
		vv += h
	}

	// DC component may not be used.
	if u == 0 && vv == 0 {
		return false
	}

	// Lower half of column 0 is the conjugate of cells already enumerated.
	maxVCol0 := h / 2
	if h%2 == 0 {
		maxVCol0--
	}
	if u == 0 && vv > maxVCol0 {
		return false
	}

	// maxU is re-derived directly from shape[1] on every call, rather than
	// from a reassigned local, to avoid the off-by-one trap in the
	// original Python implementation (see DESIGN.md Open Question 1).
	m := w/2 + 1
	maxU := m - 1
	if w%2 == 0 {
		maxU = m - 2
	}
	if u > maxU {
		panic(fmt.Sprintf("mapping: illegal cell u=%d exceeds maxU=%d for shape %v (too many symbols requested)", u, maxU, shape))
	}

	return true
}

// Generator lazily produces the halfring sequence of usable cells for a
// given shape, in non-decreasing squared distance from the origin with
// deterministic tie-breaking (column ascending, then row with positive v
// before negative v).
type Generator struct {
	shape  [2]int
	ymax   []int
	d      int
	buffer []Cell
}

// NewGenerator returns a Generator for the given (H, W) shape.
func NewGenerator(shape [2]int) *Generator {
	return &Generator{shape: shape, ymax: []int{0}}
}

// Next returns the next usable cell in the halfring sequence.
func (g *Generator) Next() Cell {
	for len(g.buffer) == 0 {
		g.fill()
	}
	c := g.buffer[0]
	g.buffer = g.buffer[1:]
	return c
}

// fill grows the candidate set by one radius and appends any usable cells
// found at that radius to the pending buffer.
func (g *Generator) fill() {
	d := g.d
	var batch []Cell
	for {
		grew := false
		for x := 0; x <= d; x++ {
			y := g.ymax[x]
			if distance(x, y) <= d*d {
				batch = append(batch, Cell{V: y, U: x})
				if y != 0 {
					batch = append(batch, Cell{V: -y, U: x})
				}
				g.ymax[x]++
				grew = true
			}
		}
		if !grew {
			break
		}
	}

	sort.SliceStable(batch, func(i, j int) bool {
		di := distance(batch[i].V, batch[i].U)
		dj := distance(batch[j].V, batch[j].U)
		if di != dj {
			return di < dj
		}
		if batch[i].U != batch[j].U {
			return batch[i].U < batch[j].U
		}
		return batch[i].V > batch[j].V
	})

	for _, c := range batch {
		if usable(c.V, c.U, g.shape) {
			g.buffer = append(g.buffer, c)
		}
	}

	g.d++
	g.ymax = append(g.ymax, 0)
}

// Halfring returns the first n usable cells for shape, in halfring order.
func Halfring(n int, shape [2]int) []Cell {
	g := NewGenerator(shape)
	cells := make([]Cell, n)
	for i := 0; i < n; i++ {
		cells[i] = g.Next()
	}
	return cells
}
