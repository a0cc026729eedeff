package multiproc

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/frederikhermans/focus/internal/ferrors"
)

func TestWireFrameRoundTrip(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 3))
	for i := range src.Pix {
		src.Pix[i] = byte(i * 7)
	}

	wf := ToWireFrame(src)
	if wf.W != 4 || wf.H != 3 {
		t.Fatalf("WireFrame shape = %dx%d, want 4x3", wf.W, wf.H)
	}

	got := wf.Image()
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if got.GrayAt(x, y) != src.GrayAt(x, y) {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got.GrayAt(x, y), src.GrayAt(x, y))
			}
		}
	}
}

func TestToWireFrameTakesGreenChannel(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 2, 2))
	rgba.Set(0, 0, color.RGBA{R: 10, G: 200, B: 30, A: 255})
	wf := ToWireFrame(rgba)
	if wf.Pix[0] != 200 {
		t.Fatalf("pixel 0 = %d, want 200 (green channel)", wf.Pix[0])
	}
}

func TestChunkWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	chunk := WireChunk{Frames: []WireFrame{ToWireFrame(image.NewGray(image.Rect(0, 0, 2, 2)))}}
	if err := WriteChunk(&buf, chunk); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}

	got, err := ReadChunk(&buf)
	if err != nil {
		t.Fatalf("ReadChunk: %v", err)
	}
	if len(got.Frames) != 1 || got.Frames[0].W != 2 || got.Frames[0].H != 2 {
		t.Fatalf("round-tripped chunk = %+v, want one 2x2 frame", got)
	}
}

func TestReadFramedRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff}) // length = 4294967295, past maxChunkBytes
	buf.Write([]byte("0123456789abcdef"))

	var chunk WireChunk
	err := readFramed(&buf, &chunk)
	if err == nil {
		t.Fatalf("readFramed accepted an oversized length")
	}
	if _, ok := err.(*ferrors.WorkerFramingError); !ok {
		t.Fatalf("err = %T, want *ferrors.WorkerFramingError", err)
	}
}
