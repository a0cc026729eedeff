package link

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestMaskSelfInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	data := make([]byte, 1024)
	rng.Read(data)

	cp := make([]byte, len(data))
	copy(cp, data)

	Mask(cp, 3)
	Mask(cp, 3)

	if !bytes.Equal(cp, data) {
		t.Fatalf("masking twice did not restore original bytes")
	}
}

func TestS2MaskDeterminism(t *testing.T) {
	zeros := make([]byte, 8)
	Mask(zeros, 0)

	want := maskFor(0)[:8]
	if !bytes.Equal(zeros, want) {
		t.Fatalf("mask(zeros, 0) = %v, want prefix of PRNG(seed=39402) = %v", zeros, want)
	}

	Mask(zeros, 0)
	for _, b := range zeros {
		if b != 0 {
			t.Fatalf("masking twice should yield zeros again, got %v", zeros)
		}
	}
}

func TestDistinctChannelsDistinctMasks(t *testing.T) {
	a := maskFor(0)
	b := maskFor(1)
	if bytes.Equal(a, b) {
		t.Fatalf("channel 0 and 1 masks are identical")
	}
}

func TestMaskRowsBroadcasts(t *testing.T) {
	rows := [][]byte{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
	}
	orig := [][]byte{{1, 2, 3, 4}, {5, 6, 7, 8}}

	MaskRows(rows, 9)
	MaskRows(rows, 9)

	for r := range rows {
		if !bytes.Equal(rows[r], orig[r]) {
			t.Fatalf("row %d: masking twice did not restore original", r)
		}
	}
}
