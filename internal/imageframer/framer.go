// Package imageframer locates FOCUS's calibration markers in a captured
// frame, rectifies the code region they bound, and overlays markers on a
// code being transmitted. It is FOCUS's one external-library-shaped
// collaborator implemented in this module (see DESIGN.md): Locate,
// Extract and AddMarkers are exactly the methods FOCUS calls on it.
//
// The OpenCV-backed implementation lives in framer_cv.go and is built
// only with the withcv tag, matching how this module's gocv dependency
// is gated elsewhere; framer_stub.go provides a pure-Go fallback for
// default builds without OpenCV installed.
package imageframer

import "image"

// minBorder is the smallest marker border New will accept, chosen so a
// marker square's area always clears minMarkerArea.
const minBorder = 11

// minMarkerArea discards contours too small to be a calibration marker.
const minMarkerArea = 100

// Framer locates, rectifies and overlays FOCUS's corner markers.
type Framer interface {
	// Locate finds the four corner markers in frame, returning their
	// centers in a fixed order: top-left, top-right, bottom-right,
	// bottom-left. hints holds the previous frame's corners for temporal
	// locality: when present, Locate matches each blob to its nearest
	// hint instead of to the frame's geometric quadrants, so a spurious
	// dark blob elsewhere in the frame doesn't steal a corner. Locate
	// must not mutate hints. ok is false if fewer than four distinct
	// markers were found.
	Locate(frame image.Image, hints []image.Point) (corners [4]image.Point, ok bool)

	// Extract rectifies gray by perspective-warping corners (as found by
	// Locate on the same captured frame) back onto code's original (H, W)
	// pixel grid, returning the rectified pixels. shape is the code
	// region's own (H, W), excluding the marker border AddMarkers added.
	Extract(gray *image.Gray, shape [2]int, corners [4]image.Point) ([][]byte, error)

	// AddMarkers pads code with a marker border and overlays solid
	// square calibration markers in that border, clear of every code
	// pixel.
	AddMarkers(code [][]uint8) *image.Gray
}

// normalizeBorder clamps a requested border (in pixels) to at least
// minBorder and rounds it up to odd, so a marker square's centroid
// falls on an exact pixel rather than a half-pixel.
func normalizeBorder(border int) int {
	if border < minBorder {
		border = minBorder
	}
	if border%2 == 0 {
		border++
	}
	return border
}

func distSq(a, b image.Point) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// markerRects returns the four marker squares of side border, placed at
// the corners of a (wFull, hFull) frame, flush with its outer edge.
func markerRects(wFull, hFull, border int) []image.Rectangle {
	return []image.Rectangle{
		image.Rect(0, 0, border, border),
		image.Rect(wFull-border, 0, wFull, border),
		image.Rect(wFull-border, hFull-border, wFull, hFull),
		image.Rect(0, hFull-border, border, hFull),
	}
}

// templateCorners returns the four marker centroids AddMarkers produces
// for a border-pixel marker border around a (w, h) code region, in the
// order Locate reports: top-left, top-right, bottom-right, bottom-left.
// Because border is odd, each centroid lands on an exact pixel.
func templateCorners(border, w, h int) [4]image.Point {
	half := (border - 1) / 2
	wFull, hFull := w+2*border, h+2*border
	return [4]image.Point{
		{X: half, Y: half},
		{X: wFull - 1 - half, Y: half},
		{X: wFull - 1 - half, Y: hFull - 1 - half},
		{X: half, Y: hFull - 1 - half},
	}
}

// seedHints returns the reference points Locate should match blobs
// against: the last four entries of hints if present (one prior frame's
// corners), else quad's own geometric corners.
func seedHints(hints []image.Point, quad [4]image.Point) [4]image.Point {
	if len(hints) >= 4 {
		var out [4]image.Point
		copy(out[:], hints[len(hints)-4:])
		return out
	}
	return quad
}
