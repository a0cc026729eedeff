package multiproc

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/frederikhermans/focus/receiver"
)

// RunPipeWorker is the worker-side loop of the external pipe protocol:
// it reads WireChunks from r until r is exhausted,
// decodes each frame with rx, and writes a WireResult to w for every
// chunk. It returns nil on a clean EOF, matching "workers exit when
// their stdin is closed".
func RunPipeWorker(r io.Reader, w io.Writer, rx *receiver.Receiver) error {
	for {
		chunk, err := ReadChunk(r)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		results := make([]receiver.Result, len(chunk.Frames))
		for i, f := range chunk.Frames {
			results[i] = rx.Decode(f.Image())
		}
		if err := WriteResult(w, WireResult{Results: results}); err != nil {
			return err
		}
	}
}

// PipeDispatcher is the parent side of the external pipe protocol: it
// launches n worker subprocesses and drives each over its stdin/stdout
// with the length-prefixed wire format in protocol.go. This mode exists
// only for a heterogeneous worker binary; the default is the in-process
// Pool.
type PipeDispatcher struct {
	cmds []*exec.Cmd
	ins  []io.WriteCloser
	outs []io.ReadCloser
}

// StartPipeDispatcher launches n copies of the named command (with
// args), each wired up to communicate over the wire protocol.
func StartPipeDispatcher(n int, name string, args ...string) (*PipeDispatcher, error) {
	d := &PipeDispatcher{}
	for i := 0; i < n; i++ {
		cmd := exec.Command(name, args...)
		in, err := cmd.StdinPipe()
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("multiproc: worker %d stdin pipe: %w", i, err)
		}
		out, err := cmd.StdoutPipe()
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("multiproc: worker %d stdout pipe: %w", i, err)
		}
		if err := cmd.Start(); err != nil {
			d.Close()
			return nil, fmt.Errorf("multiproc: worker %d start: %w", i, err)
		}
		d.cmds = append(d.cmds, cmd)
		d.ins = append(d.ins, in)
		d.outs = append(d.outs, out)
	}
	return d, nil
}

// Run dispatches frames, chunked into groups of up to k, across the
// dispatcher's workers. cb is invoked once per chunk as soon as that
// chunk's result arrives, in completion order. Run returns the first WorkerFramingError any worker
// produces; that error is fatal to the whole session
// and Run stops handing out further chunks once it occurs.
func (d *PipeDispatcher) Run(frames []WireFrame, k int, cb func(ChunkResult)) error {
	chunks := chunkWireFrames(frames, k)

	var mu sync.Mutex
	next := 0
	failed := false
	fail := func() {
		mu.Lock()
		failed = true
		mu.Unlock()
	}
	nextChunk := func() (int, []WireFrame, bool) {
		mu.Lock()
		defer mu.Unlock()
		if failed || next >= len(chunks) {
			return 0, nil, false
		}
		idx := next
		next++
		return idx, chunks[idx], true
	}

	type outcome struct {
		idx     int
		results []receiver.Result
		err     error
	}
	out := make(chan outcome)
	var wg sync.WaitGroup
	for w := 0; w < len(d.cmds); w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer d.ins[w].Close()
			for {
				idx, chunk, ok := nextChunk()
				if !ok {
					return
				}
				if err := WriteChunk(d.ins[w], WireChunk{Frames: chunk}); err != nil {
					fail()
					out <- outcome{idx: idx, err: err}
					return
				}
				res, err := ReadResult(d.outs[w])
				if err != nil {
					fail()
				}
				out <- outcome{idx: idx, results: res.Results, err: err}
				if err != nil {
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	var firstErr error
	for o := range out {
		if o.err != nil {
			if firstErr == nil {
				firstErr = o.err
			}
			continue
		}
		cb(ChunkResult{ChunkIndex: o.idx, Results: o.results})
	}
	return firstErr
}

// Close closes every worker's stdin (signalling it to exit once its
// current chunk completes) and waits for all of them to exit.
func (d *PipeDispatcher) Close() error {
	for _, in := range d.ins {
		if in != nil {
			in.Close()
		}
	}
	var firstErr error
	for _, cmd := range d.cmds {
		if err := cmd.Wait(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func chunkWireFrames(frames []WireFrame, k int) [][]WireFrame {
	var chunks [][]WireFrame
	for i := 0; i < len(frames); i += k {
		end := i + k
		if end > len(frames) {
			end = len(frames)
		}
		chunks = append(chunks, frames[i:end])
	}
	return chunks
}
