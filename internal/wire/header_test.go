package wire

import (
	"bytes"
	"testing"
)

func TestS3PackHeader(t *testing.T) {
	got := PackHeader(3, 260)
	want := []byte{0x00, 0x03, 0x01, 0x04}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("PackHeader(3,260) = %v, want %v", got, want)
		}
	}
}

func TestS3UnpackHeader(t *testing.T) {
	n, l := UnpackHeader([]byte{0x00, 0x03, 0x01, 0x04})
	if n != 3 || l != 260 {
		t.Fatalf("UnpackHeader = (%d,%d), want (3,260)", n, l)
	}
}

func TestPackExtractFragmentsRoundTrip(t *testing.T) {
	const fragLen = 16
	payload := []byte("hello world, this is a test payload")

	frames, err := PackFragments(5, fragLen, payload)
	if err != nil {
		t.Fatalf("PackFragments: %v", err)
	}

	fragments := make([][]byte, 5)
	for i := range fragments {
		fragments[i] = frames[i*fragLen : (i+1)*fragLen]
	}

	n, l, ok := ExtractHeader(fragments)
	if !ok || n != 5 || int(l) != len(payload) {
		t.Fatalf("ExtractHeader = (%d,%d,%v), want (5,%d,true)", n, l, ok, len(payload))
	}

	got := UnpackFragments(fragments, int(l))
	if !bytes.Equal(got, payload) {
		t.Fatalf("UnpackFragments = %q, want %q", got, payload)
	}
}

func TestExtractHeaderToleratesOneCorruptFragment(t *testing.T) {
	const fragLen = 16
	payload := []byte("hello world, this is a test payload")

	frames, err := PackFragments(5, fragLen, payload)
	if err != nil {
		t.Fatalf("PackFragments: %v", err)
	}

	fragments := make([][]byte, 5)
	for i := range fragments {
		fragments[i] = append([]byte(nil), frames[i*fragLen:(i+1)*fragLen]...)
	}
	// Corrupt subchannel 0's header: the replication in the other four
	// fragments should still let a majority agree.
	fragments[0][0] ^= 0xff

	n, l, ok := ExtractHeader(fragments)
	if !ok || n != 5 || int(l) != len(payload) {
		t.Fatalf("ExtractHeader = (%d,%d,%v), want (5,%d,true)", n, l, ok, len(payload))
	}
}

func TestExtractHeaderNoMajorityFailsSilently(t *testing.T) {
	fragments := [][]byte{
		PackHeader(2, 100),
		PackHeader(3, 200),
	}
	n, l, ok := ExtractHeader(fragments)
	if ok || n != 0 || l != 0 {
		t.Fatalf("ExtractHeader on disagreeing headers = (%d,%d,%v), want (0,0,false)", n, l, ok)
	}
}

func TestExtractHeaderAllMissingFailsSilently(t *testing.T) {
	n, l, ok := ExtractHeader([][]byte{nil, {0x00, 0x01}, nil})
	if ok || n != 0 || l != 0 {
		t.Fatalf("ExtractHeader on all-missing fragments = (%d,%d,%v), want (0,0,false)", n, l, ok)
	}
}
