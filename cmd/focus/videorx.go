package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	"os"
	"sync"

	"github.com/frederikhermans/focus/config"
	"github.com/frederikhermans/focus/multiproc"
	"github.com/frederikhermans/focus/receiver"
)

// frameSource yields decoded video frames in presentation order. The two
// implementations (videorx_cv.go, built with the withcv tag, and
// videorx_stub.go, the default) give it a gocv.VideoCapture-backed and an
// ffmpeg-subprocess-pipe-backed body respectively, the same split
// internal/imageframer uses for its own external-library collaborator.
type frameSource interface {
	// Next returns the next frame, or ok=false once the source is exhausted.
	Next() (frame image.Image, ok bool, err error)
	Close() error
}

// cropStrip removes videotx's frame-number label strip from the left edge
// of a captured frame, recovering the plain code region Decode expects.
func cropStrip(img image.Image) image.Image {
	b := img.Bounds()
	r := image.Rect(b.Min.X+stripWidth, b.Min.Y, b.Max.X, b.Max.Y)
	type subImager interface{ SubImage(image.Rectangle) image.Image }
	if si, ok := img.(subImager); ok {
		return si.SubImage(r)
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}

func runVideoRx(args []string) error {
	fs := flag.NewFlagSet("videorx", flag.ExitOnError)
	var c cliConfig
	fs.StringVar(&c.shape, "shape", "768x768", "frame shape, HxW, excluding the frame-number strip")
	fs.UintVar(&c.nsubchannels, "nsubchannels", 0, "number of subchannels (required)")
	fs.UintVar(&c.parityLen, "parity-len", 16, "Reed-Solomon parity length in bytes")
	fs.UintVar(&c.cyclicPrefix, "cyclic-prefix", 8, "cyclic prefix length in pixels")
	fs.Float64Var(&c.border, "border", 0.05, "calibration marker border, as a fraction of min(height,width)")
	nprocesses := fs.Int("nprocesses", 6, "number of decode workers")
	nframesPerProcess := fs.Int("nframes-per-process", 20, "frames dispatched per chunk")
	fs.Parse(args)

	if c.nsubchannels == 0 {
		return fmt.Errorf("videorx: -nsubchannels is required")
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("videorx: usage: focus videorx [flags] <filename>")
	}
	filename := fs.Arg(0)

	cfg, err := c.build()
	if err != nil {
		return err
	}

	src, err := openFrameSource(filename, int(cfg.Width)+stripWidth, int(cfg.Height))
	if err != nil {
		return err
	}
	defer src.Close()

	var frames []image.Image
	for {
		f, ok, err := src.Next()
		if err != nil {
			return fmt.Errorf("videorx: %w", err)
		}
		if !ok {
			break
		}
		frames = append(frames, cropStrip(f))
	}
	cfg.Logger.Info("videorx: read frames", "count", len(frames))

	pool := multiproc.NewPool(*nprocesses, *nframesPerProcess, func() (*receiver.Receiver, error) {
		return receiver.New(&config.Config{
			Height:       cfg.Height,
			Width:        cfg.Width,
			NSubchannels: cfg.NSubchannels,
			ParityLen:    cfg.ParityLen,
			CyclicPrefix: cfg.CyclicPrefix,
			Border:       cfg.Border,
			Normalize:    cfg.Normalize,
			UseHints:     cfg.UseHints,
			Logger:       cfg.Logger,
			LogLevel:     cfg.LogLevel,
		})
	})

	var mu sync.Mutex
	framesSeen, fragsOK, fragsTotal := 0, 0, 0
	err = pool.Run(frames, func(cr multiproc.ChunkResult) {
		mu.Lock()
		defer mu.Unlock()
		for _, res := range cr.Results {
			framesSeen++
			for _, frag := range res.Fragments {
				fragsTotal++
				if frag != nil {
					fragsOK++
					os.Stdout.Write(frag)
				}
			}
		}
		fmt.Fprintf(os.Stderr, "\rframes=%d fragments=%d/%d (%.2f%%)", framesSeen, fragsOK, fragsTotal, pct(fragsOK, fragsTotal))
	})
	if err != nil {
		return fmt.Errorf("videorx: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\nvideorx: decoded %d bytes from %d frames\n", fragsOK*64, framesSeen)
	return nil
}

func pct(ok, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(ok) / float64(total)
}
