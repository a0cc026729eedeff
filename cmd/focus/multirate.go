package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// multirateFragLen mirrors transmitter/receiver's fragmentDataLen.
const multirateFragLen = 64

func parseIntList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// runMultirate interleaves per-subchannel reads from infile at independent
// cadences, writing one nsubchannels*64-byte frame to stdout per round: a
// low-rate subchannel's fragment is repeated across many output frames
// while a high-rate one refreshes every round. Ported from
// original_source/focus/video.py's multirate command.
func runMultirate(args []string) error {
	fs := flag.NewFlagSet("multirate", flag.ExitOnError)
	nsubchannels := fs.Uint("nsubchannels", 0, "number of subchannels (required)")
	updateEvery := fs.String("update-every", "", "comma-separated per-subchannel update cadence, one value per subchannel (required)")
	fs.Parse(args)

	if *nsubchannels == 0 {
		return fmt.Errorf("multirate: -nsubchannels is required")
	}
	if *updateEvery == "" {
		return fmt.Errorf("multirate: -update-every is required")
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("multirate: usage: focus multirate [flags] <infile>")
	}

	rates, err := parseIntList(*updateEvery)
	if err != nil {
		return fmt.Errorf("multirate: -update-every: %w", err)
	}
	if len(rates) != int(*nsubchannels) {
		return fmt.Errorf("multirate: must specify a rate for every subchannel: got %d rates for %d subchannels", len(rates), *nsubchannels)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("multirate: could not open %s: %w", fs.Arg(0), err)
	}
	defer f.Close()

	fragments := make([]byte, int(*nsubchannels)*multirateFragLen)
	frameno := 0
	for {
		done := false
		for i := 0; i < int(*nsubchannels); i++ {
			if frameno != 0 && frameno%rates[i] != 0 {
				continue
			}
			buf := make([]byte, multirateFragLen)
			if _, err := io.ReadFull(f, buf); err != nil {
				done = true
				break
			}
			copy(fragments[i*multirateFragLen:(i+1)*multirateFragLen], buf)
		}

		frameno++
		if _, err := os.Stdout.Write(fragments); err != nil {
			return fmt.Errorf("multirate: could not write stdout: %w", err)
		}
		if done {
			return nil
		}
	}
}
