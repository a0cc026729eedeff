package multiproc

import (
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/frederikhermans/focus/config"
	"github.com/frederikhermans/focus/receiver"
)

func blankFrame(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	return img
}

func testReceiverFactory() func() (*receiver.Receiver, error) {
	return func() (*receiver.Receiver, error) {
		return receiver.New(&config.Config{
			Height:       64,
			Width:        64,
			NSubchannels: 2,
			ParityLen:    16,
			CyclicPrefix: 4,
		})
	}
}

// TestPoolProcessesAllFrames mirrors scenario S6: dispatching 200
// identical frames with N=4, K=20 should invoke the callback with
// exactly 200 frames' worth of results in total.
func TestPoolProcessesAllFrames(t *testing.T) {
	const nframes = 200
	frames := make([]image.Image, nframes)
	for i := range frames {
		frames[i] = blankFrame(72, 72)
	}

	pool := NewPool(4, 20, testReceiverFactory())

	var mu sync.Mutex
	total := 0
	chunkCount := 0
	err := pool.Run(frames, func(r ChunkResult) {
		mu.Lock()
		defer mu.Unlock()
		total += len(r.Results)
		chunkCount++
		for _, res := range r.Results {
			if res.Status != receiver.StatusNotFound {
				t.Errorf("blank frame decoded with status %v, want notfound", res.Status)
			}
		}
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if total != nframes {
		t.Fatalf("total frames processed = %d, want %d", total, nframes)
	}
	if chunkCount != 10 {
		t.Fatalf("chunk count = %d, want 10 (200 frames / 20 per chunk)", chunkCount)
	}
}

func TestChunkFramesSplitsRemainder(t *testing.T) {
	frames := make([]image.Image, 45)
	chunks := chunkFrames(frames, 20)
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
	if len(chunks[0]) != 20 || len(chunks[1]) != 20 || len(chunks[2]) != 5 {
		t.Fatalf("chunk sizes = %d,%d,%d, want 20,20,5", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}
