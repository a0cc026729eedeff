package spectrum

import (
	"math/cmplx"
	"math/rand"
	"testing"
)

func TestConstructUnloadRoundTrip(t *testing.T) {
	const nsubchannels = 16
	const nelements = 512
	shape := Shape{512, 512}

	idxs := SubchannelIndices(nsubchannels, nelements, shape)

	rng := rand.New(rand.NewSource(1))
	symbols := make([][]complex128, nsubchannels)
	for i := range symbols {
		symbols[i] = make([]complex128, nelements)
		for k := range symbols[i] {
			symbols[i][k] = cmplx.Rect(1, rng.Float64()*6.28)
		}
	}

	spec := Construct(symbols, shape, idxs)

	for i, channel := range idxs {
		got := Unload(spec, shape, channel)
		for k := range got {
			if got[k] != symbols[i][k] {
				t.Fatalf("channel %d symbol %d: got %v, want %v", i, k, got[k], symbols[i][k])
			}
		}
	}
}

func TestUnloadDoesNotMutate(t *testing.T) {
	shape := Shape{64, 64}
	idxs := SubchannelIndices(2, 8, shape)
	symbols := [][]complex128{
		make([]complex128, 8),
		make([]complex128, 8),
	}
	for i := range symbols[0] {
		symbols[0][i] = complex(float64(i), 0)
		symbols[1][i] = complex(0, float64(i))
	}
	spec := Construct(symbols, shape, idxs)

	before := make([]complex128, len(spec))
	copy(before, spec)

	_ = Unload(spec, shape, idxs[0])

	for i := range spec {
		if spec[i] != before[i] {
			t.Fatalf("Unload mutated spectrum at index %d", i)
		}
	}
}

func TestBBoxBuildsLargeReceiver(t *testing.T) {
	// C=321, shape=512x512: mapping must fit within the shape's capacity.
	shape := Shape{512, 512}
	idxs := SubchannelIndices(321, 1, shape)
	h, w := BBox(idxs)
	if h <= 0 || h > shape[0] || w <= 0 || w > shape[1] {
		t.Fatalf("bbox (%d,%d) out of bounds for shape %v", h, w, shape)
	}
}

func TestCropIndicesRoundTrip(t *testing.T) {
	const nsubchannels = 8
	const nelements = 64
	shape := Shape{128, 128}

	idxs := SubchannelIndices(nsubchannels, nelements, shape)
	h, w := BBox(idxs)

	rng := rand.New(rand.NewSource(2))
	symbols := make([][]complex128, nsubchannels)
	for i := range symbols {
		symbols[i] = make([]complex128, nelements)
		for k := range symbols[i] {
			symbols[i][k] = cmplx.Rect(1, rng.Float64()*6.28)
		}
	}
	full := Construct(symbols, shape, idxs)
	cropped := Crop(full, shape, h, w)

	croppedIdxs, err := CropIndices(idxs, h, w)
	if err != nil {
		t.Fatalf("CropIndices: %v", err)
	}
	croppedShape := Shape{2 * h, w}

	for i, channel := range croppedIdxs {
		got := Unload(cropped, croppedShape, channel)
		for k := range got {
			if got[k] != symbols[i][k] {
				t.Fatalf("channel %d symbol %d after crop: got %v, want %v", i, k, got[k], symbols[i][k])
			}
		}
	}
}
