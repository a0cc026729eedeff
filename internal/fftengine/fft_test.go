package fftengine

import (
	"math"
	"math/rand"
	"testing"
)

func TestRFFTIRFFTRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	h, w := 16, 20
	frame := make([][]float64, h)
	for r := range frame {
		frame[r] = make([]float64, w)
		for c := range frame[r] {
			frame[r][c] = rng.Float64()*2 - 1
		}
	}

	spectrum := RFFT2(frame)
	if len(spectrum) != h {
		t.Fatalf("spectrum has %d rows, want %d", len(spectrum), h)
	}
	if len(spectrum[0]) != w/2+1 {
		t.Fatalf("spectrum has %d cols, want %d", len(spectrum[0]), w/2+1)
	}

	got := IRFFT2(spectrum, Shape{h, w})
	for r := range frame {
		for c := range frame[r] {
			if math.Abs(got[r][c]-frame[r][c]) > 1e-9 {
				t.Fatalf("round trip mismatch at (%d,%d): got %v, want %v", r, c, got[r][c], frame[r][c])
			}
		}
	}
}

func TestGetCachedReturnsSameInstance(t *testing.T) {
	p1 := GetCached(Shape{8, 8})
	p2 := GetCached(Shape{8, 8})
	if p1 != p2 {
		t.Fatalf("GetCached returned distinct plans for the same shape")
	}
}

func TestWarmPrePlansShapes(t *testing.T) {
	Warm(Shape{4, 4}, Shape{6, 6})
	if GetCached(Shape{4, 4}) == nil || GetCached(Shape{6, 6}) == nil {
		t.Fatalf("Warm did not register plans")
	}
}

func TestIRFFT2ConstantFrameIsFlat(t *testing.T) {
	h, w := 4, 6
	frame := make([][]float64, h)
	for r := range frame {
		frame[r] = make([]float64, w)
		for c := range frame[r] {
			frame[r][c] = 5
		}
	}
	spectrum := RFFT2(frame)
	got := IRFFT2(spectrum, Shape{h, w})
	for r := range got {
		for c := range got[r] {
			if math.Abs(got[r][c]-5) > 1e-9 {
				t.Fatalf("constant-frame round trip at (%d,%d) = %v, want 5", r, c, got[r][c])
			}
		}
	}
}
