//go:build withcv
// +build withcv

package imageframer

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

const threshValue = 60

// CVFramer implements Framer using OpenCV contour detection and
// perspective warping.
type CVFramer struct {
	// MarkerColor is the fill color AddMarkers draws corner squares with.
	MarkerColor color.RGBA
	border      int
}

// New returns a Framer backed by OpenCV. border is the marker square
// side length, in pixels, normalized per normalizeBorder.
func New(border int) Framer {
	return &CVFramer{MarkerColor: color.RGBA{A: 255}, border: normalizeBorder(border)}
}

func (f *CVFramer) Locate(frame image.Image, hints []image.Point) (corners [4]image.Point, ok bool) {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return corners, false
	}
	defer mat.Close()

	var gray gocv.Mat
	if mat.Channels() > 1 {
		gray = gocv.NewMat()
		gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	} else {
		gray = mat.Clone()
	}
	defer gray.Close()

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(gray, &thresh, threshValue, 255, gocv.ThresholdBinaryInv)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	w, h := mat.Cols(), mat.Rows()
	quadrants := seedHints(hints, [4]image.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}})

	var found [4]bool
	var bestDist [4]int
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		if gocv.ContourArea(c) < minMarkerArea {
			continue
		}
		rect := gocv.BoundingRect(c)
		center := image.Point{X: rect.Min.X + rect.Dx()/2, Y: rect.Min.Y + rect.Dy()/2}
		for q, corner := range quadrants {
			d := distSq(center, corner)
			if !found[q] || d < bestDist[q] {
				corners[q] = center
				bestDist[q] = d
				found[q] = true
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

func (f *CVFramer) Extract(gray *image.Gray, shape [2]int, corners [4]image.Point) ([][]byte, error) {
	h, w := shape[0], shape[1]
	wFull, hFull := w+2*f.border, h+2*f.border
	template := templateCorners(f.border, w, h)

	mat, err := gocv.ImageToMatRGB(gray)
	if err != nil {
		return nil, fmt.Errorf("imageframer: could not convert to Mat: %w", err)
	}
	defer mat.Close()

	// GetPerspectiveTransform(src, dst) builds an M with
	// warpPerspective(img, M) sampling img at M^-1(out); passing
	// (corners, template) makes M^-1 the template->captured mapping we
	// want, so the output lands on the template's (ideal) pixel grid.
	src := gocv.NewPointVectorFromPoints([]image.Point{corners[0], corners[1], corners[2], corners[3]})
	defer src.Close()
	dst := gocv.NewPointVectorFromPoints([]image.Point{template[0], template[1], template[2], template[3]})
	defer dst.Close()

	m := gocv.GetPerspectiveTransform(src, dst)
	defer m.Close()

	rectified := gocv.NewMat()
	defer rectified.Close()
	gocv.WarpPerspective(mat, &rectified, m, image.Pt(wFull, hFull))
	if rectified.Empty() {
		return nil, fmt.Errorf("imageframer: perspective warp produced an empty image")
	}

	out := make([][]byte, h)
	for r := 0; r < h; r++ {
		out[r] = make([]byte, w)
		for c := 0; c < w; c++ {
			out[r][c] = rectified.GetUCharAt(r+f.border, c+f.border)
		}
	}
	return out, nil
}

func (f *CVFramer) AddMarkers(code [][]uint8) *image.Gray {
	h, w := len(code), len(code[0])
	wFull, hFull := w+2*f.border, h+2*f.border

	img := gocv.NewMatWithSize(hFull, wFull, gocv.MatTypeCV8UC1)
	defer img.Close()
	img.SetTo(gocv.NewScalar(255, 0, 0, 0))
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			img.SetUCharAt(r+f.border, c+f.border, code[r][c])
		}
	}
	for _, rect := range markerRects(wFull, hFull, f.border) {
		gocv.Rectangle(&img, rect, f.MarkerColor, -1)
	}

	out := image.NewGray(image.Rect(0, 0, wFull, hFull))
	for r := 0; r < hFull; r++ {
		for c := 0; c < wFull; c++ {
			out.SetGray(c, r, color.Gray{Y: img.GetUCharAt(r, c)})
		}
	}
	return out
}
