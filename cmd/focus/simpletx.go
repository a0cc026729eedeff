package main

import (
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/frederikhermans/focus/internal/wire"
	"github.com/frederikhermans/focus/transmitter"
)

// packPayload frames a byte stream of at most nsubchannels*(fragLen-4)
// bytes into exactly capacity bytes (a longer stream is an error), where
// capacity is tx.PayloadLen() and fragLen is the
// per-subchannel fragment size (capacity/nsubchannels): a 4-byte header
// (nfragments, payload_len) replicated into the first 4 bytes of every
// subchannel's fragment, with data scattered across the remaining
// fragLen-4 bytes of each. Once the Transmitter reshapes this blob,
// every subchannel carries its own copy of the header, so simplerx can
// recover it even if one subchannel's fragment is corrupted.
func packPayload(data []byte, nsubchannels, capacity int) ([]byte, error) {
	fragLen := capacity / nsubchannels
	framed, err := wire.PackFragments(uint16(nsubchannels), fragLen, data)
	if err != nil {
		return nil, fmt.Errorf("simpletx: %w", err)
	}
	return framed, nil
}

func runSimpleTx(args []string) error {
	fs := flag.NewFlagSet("simpletx", flag.ExitOnError)
	var c cliConfig
	fs.StringVar(&c.shape, "shape", "768x768", "frame shape, HxW")
	fs.UintVar(&c.nsubchannels, "nsubchannels", 32, "number of subchannels")
	fs.UintVar(&c.parityLen, "parity-len", 16, "Reed-Solomon parity length in bytes")
	fs.UintVar(&c.cyclicPrefix, "cyclic-prefix", 8, "cyclic prefix length in pixels")
	fs.Float64Var(&c.border, "border", 0.05, "calibration marker border, as a fraction of min(height,width)")
	fs.BoolVar(&c.normalize, "normalize", true, "clip-and-quantize to the target SNR")
	fs.IntVar(&c.verbosity, "verbosity", 1, "log verbosity (0=debug .. 4=fatal)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("simpletx: usage: focus simpletx [flags] <outfile.png>")
	}
	outfile := fs.Arg(0)

	cfg, err := c.build()
	if err != nil {
		return err
	}
	tx, err := transmitter.New(cfg)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("simpletx: could not read stdin: %w", err)
	}

	payload, err := packPayload(data, int(c.nsubchannels), tx.PayloadLen())
	if err != nil {
		return err
	}

	code, err := tx.Encode(payload)
	if err != nil {
		return err
	}

	f, err := os.Create(outfile)
	if err != nil {
		return fmt.Errorf("simpletx: could not create %s: %w", outfile, err)
	}
	defer f.Close()
	if err := png.Encode(f, code); err != nil {
		return fmt.Errorf("simpletx: could not encode png: %w", err)
	}

	cfg.Logger.Info("simpletx: wrote code", "file", outfile, "bytes", len(data))
	return nil
}
