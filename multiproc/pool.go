// Package multiproc parallelizes frame decoding across a worker pool.
// The default mode, Pool, dispatches in-process to goroutines sharing
// one Go channel; PipeWorker/PipeDispatcher (in pipeworker.go) retain an
// external-process, length-prefixed pipe protocol for a heterogeneous
// worker binary.
//
// A language with real threading should prefer an in-process worker
// pool over OS processes, keeping chunking as a batching heuristic
// rather than a parallelism boundary. Go's goroutines and channels make
// the external pipe protocol's "dispatch on start, redispatch on
// completion, drain on exhaustion" ready-set loop unnecessary to
// hand-roll: a shared work cursor and a fan-in result channel produce
// the same completion-order delivery.
package multiproc

import (
	"image"
	"sync"

	"github.com/frederikhermans/focus/receiver"
)

// ChunkResult is what Pool.Run and PipeDispatcher.Run deliver to the
// caller's callback: one chunk's worth of per-frame receive results,
// tagged with the chunk's position in the input stream. Results from
// different chunks arrive in completion order, not necessarily
// ChunkIndex order.
type ChunkResult struct {
	ChunkIndex int
	Results    []receiver.Result
}

// Pool dispatches frame decoding across n in-process worker goroutines,
// each owning its own *receiver.Receiver (hints are per-worker state).
type Pool struct {
	n           int
	k           int
	newReceiver func() (*receiver.Receiver, error)
}

// NewPool returns a Pool with n workers, each decoding chunks of up to k
// frames at a time. newReceiver builds one *receiver.Receiver per
// worker; it is called n times by Run.
func NewPool(n, k int, newReceiver func() (*receiver.Receiver, error)) *Pool {
	return &Pool{n: n, k: k, newReceiver: newReceiver}
}

// chunkFrames splits frames into groups of up to k.
func chunkFrames(frames []image.Image, k int) [][]image.Image {
	var chunks [][]image.Image
	for i := 0; i < len(frames); i += k {
		end := i + k
		if end > len(frames) {
			end = len(frames)
		}
		chunks = append(chunks, frames[i:end])
	}
	return chunks
}

// Run decodes frames, invoking cb once per chunk as soon as that
// chunk's results are ready. It returns once every chunk has been
// processed, or the first error building a worker's Receiver.
//
// With fewer than n*k frames there are fewer than n chunks, so some
// workers receive no chunk and exit idle; every frame is still decoded.
func (p *Pool) Run(frames []image.Image, cb func(ChunkResult)) error {
	chunks := chunkFrames(frames, p.k)

	var mu sync.Mutex
	next := 0
	nextChunk := func() (int, []image.Image, bool) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(chunks) {
			return 0, nil, false
		}
		idx := next
		next++
		return idx, chunks[idx], true
	}

	results := make(chan ChunkResult)
	errs := make(chan error, p.n)
	var wg sync.WaitGroup
	for w := 0; w < p.n; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rx, err := p.newReceiver()
			if err != nil {
				errs <- err
				return
			}
			for {
				idx, chunk, ok := nextChunk()
				if !ok {
					return
				}
				frameResults := make([]receiver.Result, len(chunk))
				for i, f := range chunk {
					frameResults[i] = rx.Decode(f)
				}
				results <- ChunkResult{ChunkIndex: idx, Results: frameResults}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		cb(r)
	}

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}
