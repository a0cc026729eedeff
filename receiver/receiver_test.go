package receiver

import (
	"image"
	"image/color"
	"testing"

	"github.com/frederikhermans/focus/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Height:       128,
		Width:        128,
		NSubchannels: 2,
		ParityLen:    16,
		CyclicPrefix: 4,
		Normalize:    true,
	}
}

func TestDecodeBlankFrameReportsNotFound(t *testing.T) {
	rx, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	blank := image.NewRGBA(image.Rect(0, 0, 136, 136))
	for y := blank.Bounds().Min.Y; y < blank.Bounds().Max.Y; y++ {
		for x := blank.Bounds().Min.X; x < blank.Bounds().Max.X; x++ {
			blank.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}

	result := rx.Decode(blank)
	if result.Status != StatusNotFound {
		t.Fatalf("Decode status = %v, want notfound", result.Status)
	}
	if result.Err == nil {
		t.Fatalf("Decode returned no error on notfound")
	}
}

func TestNewComputesCroppedBBoxWithinHalfSpectrum(t *testing.T) {
	rx, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	halfW := int(rx.cfg.Width)/2 + 1
	if rx.bboxW > halfW {
		t.Fatalf("bboxW = %d, exceeds half-spectrum width %d", rx.bboxW, halfW)
	}
	if rx.bboxH <= 0 || rx.bboxH > int(rx.cfg.Height) {
		t.Fatalf("bboxH = %d out of range for height %d", rx.bboxH, rx.cfg.Height)
	}
}
