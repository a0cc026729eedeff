package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"

	"github.com/frederikhermans/focus/internal/wire"
	"github.com/frederikhermans/focus/receiver"
)

func runSimpleRx(args []string) error {
	fs := flag.NewFlagSet("simplerx", flag.ExitOnError)
	var c cliConfig
	fs.StringVar(&c.shape, "shape", "768x768", "frame shape, HxW")
	fs.UintVar(&c.nsubchannels, "nsubchannels", 32, "number of subchannels")
	fs.UintVar(&c.parityLen, "parity-len", 16, "Reed-Solomon parity length in bytes")
	fs.UintVar(&c.cyclicPrefix, "cyclic-prefix", 8, "cyclic prefix length in pixels")
	fs.Float64Var(&c.border, "border", 0.05, "calibration marker border, as a fraction of min(height,width)")
	fs.IntVar(&c.verbosity, "verbosity", 1, "log verbosity (0=debug .. 4=fatal)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("simplerx: usage: focus simplerx [flags] <infile.png>")
	}
	infile := fs.Arg(0)

	cfg, err := c.build()
	if err != nil {
		return err
	}
	rx, err := receiver.New(cfg)
	if err != nil {
		return err
	}

	f, err := os.Open(infile)
	if err != nil {
		return fmt.Errorf("simplerx: could not open %s: %w", infile, err)
	}
	img, err := png.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("simplerx: could not decode %s: %w", infile, err)
	}

	result := rx.Decode(img)
	if result.Status != receiver.StatusOK {
		return fmt.Errorf("simplerx: decode failed: %v", result.Err)
	}

	nfragments, payloadLen, ok := wire.ExtractHeader(result.Fragments)
	if !ok || nfragments == 0 {
		return fmt.Errorf("simplerx: markers located but no majority of subchannels agree on a payload header (too many exhausted Reed-Solomon recovery)")
	}

	payload := wire.UnpackFragments(result.Fragments, int(payloadLen))
	if _, err := os.Stdout.Write(payload); err != nil {
		return fmt.Errorf("simplerx: could not write stdout: %w", err)
	}
	return nil
}
