//go:build !withcv
// +build !withcv

// StubFramer stands in for CVFramer when OpenCV isn't available. It is
// slower and less robust than the OpenCV path, but implements the same
// contract with pure Go plus gonum's linear solver for the perspective
// homography.
package imageframer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"gonum.org/v1/gonum/mat"
)

const threshValue = 60

// StubFramer implements Framer with connected-component blob detection
// and a gonum-solved perspective homography.
type StubFramer struct {
	border int
}

// New returns a pure-Go Framer, for builds without OpenCV. border is the
// marker square side length, in pixels, normalized per normalizeBorder.
func New(border int) Framer {
	return &StubFramer{border: normalizeBorder(border)}
}

func (f *StubFramer) Locate(frame image.Image, hints []image.Point) (corners [4]image.Point, ok bool) {
	bounds := frame.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	visited := make([]bool, w*h)

	dark := func(x, y int) bool {
		r, g, b, _ := frame.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
		luma := (299*r + 587*g + 114*b) / 1000
		return luma>>8 < threshValue
	}

	quadrants := seedHints(hints, [4]image.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}})
	var found [4]bool
	var bestDist [4]int

	neighbors := []image.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if visited[idx] || !dark(x, y) {
				continue
			}

			queue := []image.Point{{X: x, Y: y}}
			visited[idx] = true
			var sumX, sumY, count int
			for len(queue) > 0 {
				p := queue[0]
				queue = queue[1:]
				sumX += p.X
				sumY += p.Y
				count++
				for _, d := range neighbors {
					nx, ny := p.X+d.X, p.Y+d.Y
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					nidx := ny*w + nx
					if visited[nidx] || !dark(nx, ny) {
						continue
					}
					visited[nidx] = true
					queue = append(queue, image.Point{X: nx, Y: ny})
				}
			}

			if count < minMarkerArea {
				continue
			}
			center := image.Point{X: bounds.Min.X + sumX/count, Y: bounds.Min.Y + sumY/count}
			for q, corner := range quadrants {
				d := distSq(center, corner)
				if !found[q] || d < bestDist[q] {
					corners[q] = center
					bestDist[q] = d
					found[q] = true
				}
			}
		}
	}

	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if corners[i] == corners[j] {
				return corners, false
			}
		}
	}
	return corners, found == [4]bool{true, true, true, true}
}

func (f *StubFramer) Extract(gray *image.Gray, shape [2]int, corners [4]image.Point) ([][]byte, error) {
	h, w := shape[0], shape[1]
	template := templateCorners(f.border, w, h)

	hom, err := computeHomography(template, corners)
	if err != nil {
		return nil, fmt.Errorf("imageframer: could not compute homography: %w", err)
	}

	out := make([][]byte, h)
	for r := 0; r < h; r++ {
		out[r] = make([]byte, w)
		for c := 0; c < w; c++ {
			x, y := applyHomography(hom, float64(c+f.border), float64(r+f.border))
			out[r][c] = bilinear(gray, x, y)
		}
	}
	return out, nil
}

func (f *StubFramer) AddMarkers(code [][]uint8) *image.Gray {
	h, w := len(code), len(code[0])
	wFull, hFull := w+2*f.border, h+2*f.border

	img := image.NewGray(image.Rect(0, 0, wFull, hFull))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			img.SetGray(c+f.border, r+f.border, color.Gray{Y: code[r][c]})
		}
	}
	for _, rect := range markerRects(wFull, hFull, f.border) {
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				img.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return img
}

// computeHomography solves the 8-unknown perspective transform mapping
// src[i] -> dst[i] for i=0..3, returning coefficients
// [a,b,c,d,e,f,g,h] of
//
//	X = (a*x + b*y + c) / (g*x + h*y + 1)
//	Y = (d*x + e*y + f) / (g*x + h*y + 1)
func computeHomography(src, dst [4]image.Point) ([8]float64, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := float64(src[i].X), float64(src[i].Y)
		X, Y := float64(dst[i].X), float64(dst[i].Y)
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -x * X, -y * X})
		b.SetVec(2*i, X)
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -x * Y, -y * Y})
		b.SetVec(2*i+1, Y)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return [8]float64{}, err
	}
	return [8]float64{h.AtVec(0), h.AtVec(1), h.AtVec(2), h.AtVec(3), h.AtVec(4), h.AtVec(5), h.AtVec(6), h.AtVec(7)}, nil
}

func applyHomography(h [8]float64, x, y float64) (float64, float64) {
	denom := h[6]*x + h[7]*y + 1
	return (h[0]*x + h[1]*y + h[2]) / denom, (h[3]*x + h[4]*y + h[5]) / denom
}

func bilinear(img *image.Gray, x, y float64) byte {
	bounds := img.Bounds()
	clampX := func(v int) int {
		if v < bounds.Min.X {
			return bounds.Min.X
		}
		if v >= bounds.Max.X {
			return bounds.Max.X - 1
		}
		return v
	}
	clampY := func(v int) int {
		if v < bounds.Min.Y {
			return bounds.Min.Y
		}
		if v >= bounds.Max.Y {
			return bounds.Max.Y - 1
		}
		return v
	}

	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	fx, fy := x-float64(x0), y-float64(y0)

	at := func(px, py int) float64 { return float64(img.GrayAt(clampX(px), clampY(py)).Y) }
	top := at(x0, y0)*(1-fx) + at(x0+1, y0)*fx
	bot := at(x0, y0+1)*(1-fx) + at(x0+1, y0+1)*fx
	return byte(math.Round(top*(1-fy) + bot*fy))
}
