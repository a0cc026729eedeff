package main

import (
	"flag"
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/frederikhermans/focus/config"
	"github.com/frederikhermans/focus/internal/fftengine"
	"github.com/frederikhermans/focus/multiproc"
	"github.com/frederikhermans/focus/receiver"
	"github.com/frederikhermans/focus/transmitter"
)

// runBenchmark ports original_source/focus/fft.py's, receiver.py's and
// multiprocreceiver.py's benchmark() functions: instead of profiling
// against a pickled frame corpus, each target here generates its own
// synthetic frames with the same Transmitter a real session would use, so
// the benchmark exercises the whole encode path too.
func runBenchmark(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("benchmark: usage: focus benchmark <fft|receiver|multiprocreceiver> [flags]")
	}
	switch args[0] {
	case "fft":
		return benchmarkFFT(args[1:])
	case "receiver":
		return benchmarkReceiver(args[1:])
	case "multiprocreceiver":
		return benchmarkMultiProcReceiver(args[1:])
	default:
		return fmt.Errorf("benchmark: unknown target %q, want fft, receiver or multiprocreceiver", args[0])
	}
}

func benchmarkFFT(args []string) error {
	fs := flag.NewFlagSet("benchmark fft", flag.ExitOnError)
	shape := fs.String("shape", "512x512", "HxW shape to benchmark")
	n := fs.Int("n", 10, "number of transforms to run")
	fs.Parse(args)

	h, w, err := parseShape(*shape)
	if err != nil {
		return err
	}

	frames := make([][][]float64, *n)
	for i := range frames {
		frames[i] = randomFrame(int(h), int(w))
	}

	start := time.Now()
	spectra := make([][][]complex128, *n)
	for i, f := range frames {
		spectra[i] = fftengine.RFFT2(f)
	}
	fwd := time.Since(start)
	fmt.Printf("rfft2:  %d runs in %v (%.2f ms/call)\n", *n, fwd, float64(fwd.Microseconds())/1000/float64(*n))

	start = time.Now()
	for _, s := range spectra {
		fftengine.IRFFT2(s, fftengine.Shape{int(h), int(w)})
	}
	inv := time.Since(start)
	fmt.Printf("irfft2: %d runs in %v (%.2f ms/call)\n", *n, inv, float64(inv.Microseconds())/1000/float64(*n))
	return nil
}

func randomFrame(h, w int) [][]float64 {
	out := make([][]float64, h)
	for r := range out {
		out[r] = make([]float64, w)
		for c := range out[r] {
			out[r][c] = float64(rand.Intn(256))
		}
	}
	return out
}

func benchmarkReceiver(args []string) error {
	fs := flag.NewFlagSet("benchmark receiver", flag.ExitOnError)
	var c cliConfig
	fs.StringVar(&c.shape, "shape", "512x512", "frame shape, HxW")
	fs.UintVar(&c.nsubchannels, "nsubchannels", 16, "number of subchannels")
	fs.UintVar(&c.parityLen, "parity-len", 16, "Reed-Solomon parity length in bytes")
	fs.UintVar(&c.cyclicPrefix, "cyclic-prefix", 8, "cyclic prefix length in pixels")
	fs.Float64Var(&c.border, "border", 0.05, "calibration marker border, as a fraction of min(height,width)")
	nframes := fs.Int("n", 20, "number of frames to decode")
	fs.Parse(args)

	cfg, err := c.build()
	if err != nil {
		return err
	}
	frames, err := syntheticFrames(cfg, *nframes)
	if err != nil {
		return err
	}

	rx, err := receiver.New(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	for _, f := range frames {
		rx.Decode(f)
	}
	elapsed := time.Since(start)
	reportRate(len(frames), elapsed)
	return nil
}

func benchmarkMultiProcReceiver(args []string) error {
	fs := flag.NewFlagSet("benchmark multiprocreceiver", flag.ExitOnError)
	var c cliConfig
	fs.StringVar(&c.shape, "shape", "512x512", "frame shape, HxW")
	fs.UintVar(&c.nsubchannels, "nsubchannels", 16, "number of subchannels")
	fs.UintVar(&c.parityLen, "parity-len", 16, "Reed-Solomon parity length in bytes")
	fs.UintVar(&c.cyclicPrefix, "cyclic-prefix", 8, "cyclic prefix length in pixels")
	fs.Float64Var(&c.border, "border", 0.05, "calibration marker border, as a fraction of min(height,width)")
	nprocesses := fs.Int("nprocesses", 4, "number of decode workers")
	nframesPerProcess := fs.Int("nframes-per-process", 20, "frames dispatched per chunk")
	nframes := fs.Int("n", 200, "number of frames to decode")
	fs.Parse(args)

	cfg, err := c.build()
	if err != nil {
		return err
	}
	frames, err := syntheticFrames(cfg, *nframes)
	if err != nil {
		return err
	}

	pool := multiproc.NewPool(*nprocesses, *nframesPerProcess, func() (*receiver.Receiver, error) {
		return receiver.New(cfg)
	})

	start := time.Now()
	if err := pool.Run(frames, func(multiproc.ChunkResult) {}); err != nil {
		return fmt.Errorf("benchmark multiprocreceiver: %w", err)
	}
	elapsed := time.Since(start)
	reportRate(len(frames), elapsed)
	return nil
}

func reportRate(nframes int, elapsed time.Duration) {
	fmt.Printf("Processed %d frames\n", nframes)
	fmt.Printf("Took %.2f ms\n", float64(elapsed.Microseconds())/1000)
	fmt.Printf("Frame rate: %.2f fps\n", float64(nframes)/elapsed.Seconds())
}

func syntheticFrames(cfg *config.Config, n int) ([]image.Image, error) {
	tx, err := transmitter.New(cfg)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, tx.PayloadLen())
	for i := range payload {
		payload[i] = byte(rand.Intn(256))
	}
	code, err := tx.Encode(payload)
	if err != nil {
		return nil, err
	}

	frames := make([]image.Image, n)
	for i := range frames {
		frames[i] = code
	}
	return frames, nil
}
