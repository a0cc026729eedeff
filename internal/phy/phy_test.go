package phy

import (
	"math/rand"
	"testing"

	"github.com/frederikhermans/focus/internal/fftengine"
)

func TestCyclicPrefixRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	h, w := 64, 64
	img := make([][]uint8, h)
	for r := range img {
		img[r] = make([]uint8, w)
		rng.Read(img[r])
	}

	for _, p := range []int{0, 8, 32} {
		withCP := AddCyclicPrefix(img, p)
		if len(withCP) != h+2*p || len(withCP[0]) != w+2*p {
			t.Fatalf("p=%d: AddCyclicPrefix shape = (%d,%d), want (%d,%d)", p, len(withCP), len(withCP[0]), h+2*p, w+2*p)
		}
		stripped := StripCyclicPrefix(withCP, p)
		if len(stripped) != h || len(stripped[0]) != w {
			t.Fatalf("p=%d: StripCyclicPrefix shape = (%d,%d), want (%d,%d)", p, len(stripped), len(stripped[0]), h, w)
		}
		for r := range img {
			for c := range img[r] {
				if stripped[r][c] != img[r][c] {
					t.Fatalf("p=%d: strip(add(img,p),p)[%d][%d] = %d, want %d", p, r, c, stripped[r][c], img[r][c])
				}
			}
		}
	}
}

func TestSNRIdenticalFramesIsInf(t *testing.T) {
	frame := []float64{1, 2, 3, 4}
	if s := snr(frame, frame); !isInf(s) {
		t.Fatalf("snr(x,x) = %v, want +Inf", s)
	}
}

func TestClipAndQuantizeRange(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	h, w := 8, 8
	frame := make([][]float64, h)
	for r := range frame {
		frame[r] = make([]float64, w)
		for c := range frame[r] {
			frame[r][c] = rng.NormFloat64() * 50
		}
	}
	out := clipAndQuantize(frame)
	for _, row := range out {
		for _, v := range row {
			if v > 255 {
				t.Fatalf("quantized value %d exceeds 255", v)
			}
		}
	}
}

func TestTxRxRoundTripPreservesShape(t *testing.T) {
	shape := fftengine.Shape{32, 32}
	spectrum := make([][]complex128, shape[0])
	rng := rand.New(rand.NewSource(3))
	for r := range spectrum {
		spectrum[r] = make([]complex128, shape[1]/2+1)
		for c := range spectrum[r] {
			spectrum[r][c] = complex(rng.Float64(), rng.Float64())
		}
	}

	framed := Tx(spectrum, shape, 4, true)
	if len(framed) != shape[0]+8 || len(framed[0]) != shape[1]+8 {
		t.Fatalf("Tx output shape = (%d,%d), want (%d,%d)", len(framed), len(framed[0]), shape[0]+8, shape[1]+8)
	}

	stripped := StripCyclicPrefix(framed, 4)
	rx := Rx(stripped)
	if len(rx) != shape[0] || len(rx[0]) != shape[1]/2+1 {
		t.Fatalf("Rx output shape = (%d,%d), want (%d,%d)", len(rx), len(rx[0]), shape[0], shape[1]/2+1)
	}
}

func isInf(f float64) bool {
	return f > 1e300
}
