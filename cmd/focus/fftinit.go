package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/frederikhermans/focus/internal/fftengine"
)

// runFFTInit pre-warms the FFT plan cache (and its on-disk wisdom file)
// for one or more shapes, so a later transmitter/receiver run on this
// host doesn't pay first-use planning cost on its first real frame.
func runFFTInit(args []string) error {
	fs := flag.NewFlagSet("fft_init", flag.ExitOnError)
	shapes := fs.String("shapes", "512x512,768x768", "comma-separated list of HxW shapes to pre-warm")
	fs.Parse(args)

	var parsed []fftengine.Shape
	for _, s := range strings.Split(*shapes, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		h, w, err := parseShape(s)
		if err != nil {
			return fmt.Errorf("fft_init: %w", err)
		}
		parsed = append(parsed, fftengine.Shape{int(h), int(w)})
	}
	if len(parsed) == 0 {
		return fmt.Errorf("fft_init: no shapes given")
	}

	fftengine.Warm(parsed...)

	names := make([]string, len(parsed))
	for i, s := range parsed {
		names[i] = strconv.Itoa(s[0]) + "x" + strconv.Itoa(s[1])
	}
	fmt.Printf("fft_init: warmed %s\n", strings.Join(names, ", "))
	return nil
}
