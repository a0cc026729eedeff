package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/frederikhermans/focus/config"
	"github.com/frederikhermans/focus/internal/fftengine"
	"github.com/frederikhermans/focus/internal/link"
	"github.com/frederikhermans/focus/internal/modulation"
	"github.com/frederikhermans/focus/internal/phy"
	"github.com/frederikhermans/focus/internal/spectrum"
	"github.com/frederikhermans/focus/receiver"
	"github.com/frederikhermans/focus/transmitter"
)

// selfTest is one named invariant check, run as a plain
// function call rather than through `go test` for on-device smoke
// testing where the Go toolchain isn't installed, mirroring
// original_source/focus/tests.py's run_tests().
type selfTest struct {
	name string
	run  func() error
}

var selfTests = []selfTest{
	{"mask_self_inverse", testMaskSelfInverse},
	{"qpsk_round_trip", testQPSKRoundTrip},
	{"spectrum_round_trip", testSpectrumRoundTrip},
	{"cyclic_prefix_round_trip", testCyclicPrefixRoundTrip},
	{"fft_round_trip", testFFTRoundTrip},
	{"bbox_sanity", testBBoxSanity},
	{"tx_rx_round_trip", testTxRxRoundTrip},
}

func runSelfTest(args []string) error {
	count, success := 0, 0
	for _, t := range selfTests {
		count++
		fmt.Printf("\r%-28s", t.name)
		if err := t.run(); err != nil {
			fmt.Printf("\r%s failed: %v\n", t.name, err)
			continue
		}
		success++
	}
	fmt.Printf("\rSucceeded: %d/%d%30s\n", success, count, "")
	if success != count {
		os.Exit(1)
	}
	return nil
}

func testMaskSelfInverse() error {
	orig := make([]byte, 64)
	for i := range orig {
		orig[i] = byte(rand.Intn(256))
	}
	got := append([]byte(nil), orig...)
	link.Mask(got, 3)
	link.Mask(got, 3)
	for i := range orig {
		if got[i] != orig[i] {
			return fmt.Errorf("mask is not its own inverse at byte %d", i)
		}
	}
	return nil
}

func testQPSKRoundTrip() error {
	q := modulation.New()
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(rand.Intn(256))
	}
	symbols := q.Modulate(data)
	got, err := q.Demodulate(symbols)
	if err != nil {
		return err
	}
	for i := range data {
		if got[i] != data[i] {
			return fmt.Errorf("demodulate(modulate(x)) != x at byte %d", i)
		}
	}
	return nil
}

func testSpectrumRoundTrip() error {
	const c, nelements = 4, 80
	shape := spectrum.Shape{512, 512}
	idxs := spectrum.SubchannelIndices(c, nelements, shape)

	symbols := make([][]complex128, c)
	for i := range symbols {
		symbols[i] = make([]complex128, nelements)
		for k := range symbols[i] {
			symbols[i][k] = complex(rand.Float64(), rand.Float64())
		}
	}

	flat := spectrum.Construct(symbols, shape, idxs)
	for i := 0; i < c; i++ {
		got := spectrum.Unload(flat, shape, idxs[i])
		for k := range got {
			if got[k] != symbols[i][k] {
				return fmt.Errorf("unload(construct(symbols)) != symbols at channel %d cell %d", i, k)
			}
		}
	}
	return nil
}

func testCyclicPrefixRoundTrip() error {
	const h, w, p = 64, 64, 8
	img := make([][]uint8, h)
	for r := range img {
		img[r] = make([]uint8, w)
		for c := range img[r] {
			img[r][c] = uint8(rand.Intn(256))
		}
	}
	framed := phy.AddCyclicPrefix(img, p)
	stripped := phy.StripCyclicPrefix(framed, p)
	for r := range img {
		for c := range img[r] {
			if stripped[r][c] != img[r][c] {
				return fmt.Errorf("strip(add(img, %d), %d) != img at (%d,%d)", p, p, r, c)
			}
		}
	}
	return nil
}

func testFFTRoundTrip() error {
	const h, w = 64, 64
	shape := fftengine.Shape{h, w}
	frame := make([][]float64, h)
	for r := range frame {
		frame[r] = make([]float64, w)
		for c := range frame[r] {
			frame[r][c] = float64(rand.Intn(256))
		}
	}

	spec := fftengine.RFFT2(frame)
	back := fftengine.IRFFT2(spec, shape)

	var maxDiff float64
	for r := range frame {
		for c := range frame[r] {
			d := math.Abs(back[r][c] - frame[r][c])
			if d > maxDiff {
				maxDiff = d
			}
		}
	}
	if maxDiff > 1e-6 {
		return fmt.Errorf("irfft2(rfft2(x)) deviates from x by %g, want < 1e-6", maxDiff)
	}
	return nil
}

func testBBoxSanity() error {
	const c, e = 321, 4
	shape := spectrum.Shape{512, 512}
	idxs := spectrum.SubchannelIndices(c, e, shape)
	h, w := spectrum.BBox(idxs)
	if h <= 0 || h > shape[0] || w <= 0 || w > shape[1] {
		return fmt.Errorf("bbox (%d,%d) out of range for shape %v", h, w, shape)
	}
	if _, err := spectrum.CropIndices(idxs, h, w); err != nil {
		return fmt.Errorf("cropindices on its own bbox: %w", err)
	}
	return nil
}

func testTxRxRoundTrip() error {
	const nsubchannels = 16
	cfg := &config.Config{
		Height: 512, Width: 512,
		NSubchannels: nsubchannels,
		ParityLen:    16,
		CyclicPrefix: 8,
		Normalize:    true,
	}
	cfg.Logger = newLogger(4) // fatal-only: self-test output shouldn't be chatty.
	if err := cfg.Validate(); err != nil {
		return err
	}

	tx, err := transmitter.New(cfg)
	if err != nil {
		return err
	}
	rx, err := receiver.New(cfg)
	if err != nil {
		return err
	}

	data := make([]byte, tx.PayloadLen())
	for i := range data {
		data[i] = byte(rand.Intn(256))
	}

	code, err := tx.Encode(data)
	if err != nil {
		return err
	}
	result := rx.Decode(code)
	if result.Status != receiver.StatusOK {
		return fmt.Errorf("decode status = %v, want ok", result.Status)
	}

	const fragLen = 64
	for i, frag := range result.Fragments {
		if frag == nil {
			return fmt.Errorf("channel %d: fragment absent", i)
		}
		want := data[i*fragLen : (i+1)*fragLen]
		for k := range want {
			if frag[k] != want[k] {
				return fmt.Errorf("channel %d byte %d: got %d, want %d", i, k, frag[k], want[k])
			}
		}
	}
	return nil
}
