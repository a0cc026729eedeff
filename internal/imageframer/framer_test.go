package imageframer

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func randomCode(h, w int, seed int64) [][]uint8 {
	r := rand.New(rand.NewSource(seed))
	code := make([][]uint8, h)
	for i := range code {
		code[i] = make([]uint8, w)
		for j := range code[i] {
			code[i][j] = uint8(r.Intn(256))
		}
	}
	return code
}

func toRGBA(gray *image.Gray) *image.RGBA {
	b := gray.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := gray.GrayAt(x, y).Y
			out.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

func TestAddMarkersDrawsFourCornersOutsideCode(t *testing.T) {
	const border = 11
	f := New(border)
	h, w := 128, 128
	code := randomCode(h, w, 1)
	img := f.AddMarkers(code)

	wFull, hFull := w+2*border, h+2*border
	if got := img.Bounds().Dx(); got != wFull {
		t.Fatalf("AddMarkers width = %d, want %d", got, wFull)
	}
	if got := img.Bounds().Dy(); got != hFull {
		t.Fatalf("AddMarkers height = %d, want %d", got, hFull)
	}

	for _, rect := range markerRects(wFull, hFull, border) {
		cx, cy := rect.Min.X+border/2, rect.Min.Y+border/2
		if img.GrayAt(cx, cy).Y != 0 {
			t.Fatalf("marker at %v not drawn", rect)
		}
	}

	// The code itself, pasted at (border, border), must be untouched.
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			if got := img.GrayAt(c+border, r+border).Y; got != code[r][c] {
				t.Fatalf("code pixel (%d,%d) = %d, want %d", r, c, got, code[r][c])
			}
		}
	}
}

func TestLocateFindsMarkersAddMarkersDrew(t *testing.T) {
	const border = 11
	f := New(border)
	h, w := 256, 256
	code := randomCode(h, w, 2)
	for i := range code {
		for j := range code[i] {
			code[i][j] = 200 // keep background bright so markers stand out
		}
	}
	gray := f.AddMarkers(code)
	rgba := toRGBA(gray)

	corners, ok := f.Locate(rgba, nil)
	if !ok {
		t.Fatalf("Locate did not find four markers")
	}

	want := templateCorners(border, w, h)
	if corners != want {
		t.Fatalf("corners = %v, want %v", corners, want)
	}
}

func TestExtractIdentityCornersRecoversCode(t *testing.T) {
	const border = 11
	f := New(border)
	h, w := 64, 64
	code := randomCode(h, w, 3)

	wFull, hFull := w+2*border, h+2*border
	gray := image.NewGray(image.Rect(0, 0, wFull, hFull))
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			gray.SetGray(c+border, r+border, color.Gray{Y: code[r][c]})
		}
	}

	corners := templateCorners(border, w, h)
	out, err := f.Extract(gray, [2]int{h, w}, corners)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(out) != h || len(out[0]) != w {
		t.Fatalf("shape = %dx%d, want %dx%d", len(out), len(out[0]), h, w)
	}
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			if out[r][c] != code[r][c] {
				t.Fatalf("out[%d][%d] = %d, want %d (exact identity)", r, c, out[r][c], code[r][c])
			}
		}
	}
}

// TestAddMarkersLocateExtractRoundTrip drives the three Framer methods
// together, AddMarkers -> Locate -> Extract, over an undistorted
// (un-warped) capture: the triple must be an exact inverse, recovering
// code byte-for-byte.
func TestAddMarkersLocateExtractRoundTrip(t *testing.T) {
	const border = 13
	f := New(border)
	h, w := 128, 128
	code := randomCode(h, w, 4)

	gray := f.AddMarkers(code)
	rgba := toRGBA(gray)

	corners, ok := f.Locate(rgba, nil)
	if !ok {
		t.Fatalf("Locate did not find four markers")
	}

	out, err := f.Extract(gray, [2]int{h, w}, corners)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			if out[r][c] != code[r][c] {
				t.Fatalf("round trip out[%d][%d] = %d, want %d", r, c, out[r][c], code[r][c])
			}
		}
	}
}

func TestLocateSeedsFromHints(t *testing.T) {
	const border = 11
	f := New(border)
	h, w := 200, 200
	code := randomCode(h, w, 5)
	gray := f.AddMarkers(code)
	rgba := toRGBA(gray)

	want := templateCorners(border, w, h)
	// A hint list whose last four points equal the true corners should
	// steer matching there even if it's also what the quadrant fallback
	// would have found; this mainly guards against hints being ignored.
	hints := append([]image.Point{{X: -1000, Y: -1000}}, want[:]...)
	corners, ok := f.Locate(rgba, hints)
	if !ok {
		t.Fatalf("Locate did not find four markers")
	}
	if corners != want {
		t.Fatalf("corners = %v, want %v", corners, want)
	}
}

func TestNormalizeBorderClampsAndRoundsOdd(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, minBorder},
		{5, minBorder},
		{12, 13},
		{13, 13},
		{24, 25},
	}
	for _, c := range cases {
		if got := normalizeBorder(c.in); got != c.want {
			t.Fatalf("normalizeBorder(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
