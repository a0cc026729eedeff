package transmitter

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/frederikhermans/focus/config"
	"github.com/frederikhermans/focus/receiver"
)

func testConfig() *config.Config {
	return &config.Config{
		Height:       256,
		Width:        256,
		NSubchannels: 4,
		ParityLen:    16,
		CyclicPrefix: 4,
		Normalize:    true,
	}
}

func TestEncodeRejectsWrongPayloadLength(t *testing.T) {
	tx, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := tx.Encode(make([]byte, 1)); err == nil {
		t.Fatalf("Encode with wrong payload length did not fail")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cfg := testConfig()
	tx, err := New(cfg)
	if err != nil {
		t.Fatalf("New transmitter: %v", err)
	}
	rx, err := receiver.New(testConfig())
	if err != nil {
		t.Fatalf("New receiver: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	data := make([]byte, tx.PayloadLen())
	rng.Read(data)

	gray, err := tx.Encode(data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	result := rx.Decode(toRGBA(gray))
	if result.Status != receiver.StatusOK {
		t.Fatalf("Decode status = %v, want OK (err=%v)", result.Status, result.Err)
	}

	for i, frag := range result.Fragments {
		if frag == nil {
			t.Fatalf("channel %d: fragment absent", i)
		}
		want := data[i*fragmentDataLen : (i+1)*fragmentDataLen]
		for k := range want {
			if frag[k] != want[k] {
				t.Fatalf("channel %d byte %d: got %#x, want %#x", i, k, frag[k], want[k])
			}
		}
	}
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
