package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/frederikhermans/focus/multiproc"
	"github.com/frederikhermans/focus/receiver"
)

// runReceiver runs this process as one external pipe worker: it speaks
// multiproc's length-prefixed wire protocol over its own stdin/stdout,
// decoding chunks of frames until stdin closes. A
// multiproc.PipeDispatcher (started with StartPipeDispatcher) in the
// parent process is the other end; this mode exists only for a
// heterogeneous worker binary, the in-process Pool is the default.
func runReceiver(args []string) error {
	fs := flag.NewFlagSet("receiver", flag.ExitOnError)
	var c cliConfig
	fs.StringVar(&c.shape, "shape", "512x512", "frame shape, HxW")
	fs.UintVar(&c.nsubchannels, "nsubchannels", 16, "number of subchannels")
	fs.UintVar(&c.parityLen, "parity-len", 16, "Reed-Solomon parity length in bytes")
	fs.UintVar(&c.cyclicPrefix, "cyclic-prefix", 8, "cyclic prefix length in pixels")
	fs.Float64Var(&c.border, "border", 0.05, "calibration marker border, as a fraction of min(height,width)")
	fs.BoolVar(&c.useHints, "use-hints", false, "reuse prior frames' marker positions as a search hint")
	fs.IntVar(&c.verbosity, "verbosity", 0, "log verbosity (0=debug .. 4=fatal)")
	fs.Parse(args)

	cfg, err := c.build()
	if err != nil {
		return err
	}
	rx, err := receiver.New(cfg)
	if err != nil {
		return err
	}

	cfg.Logger.Info("receiver: worker ready, waiting for chunks on stdin")
	if err := multiproc.RunPipeWorker(os.Stdin, os.Stdout, rx); err != nil {
		return fmt.Errorf("receiver: %w", err)
	}
	return nil
}
