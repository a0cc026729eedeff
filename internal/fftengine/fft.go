// Package fftengine wraps the 2-D real forward/inverse FFT FOCUS's
// physical layer needs, built on top of go-dsp's complex 2-D FFT, with a
// per-shape plan cache and host-local "wisdom" persistence as a lazy,
// process-wide singleton.
package fftengine

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mjibson/go-dsp/fft"
)

// Shape is a (height, width) pair.
type Shape [2]int

// androidMarker is the file whose presence indicates we're running inside
// the Android vizpy layout.
const androidMarker = "/data/data/se.sics.vizpy"

func isAndroid() bool {
	_, err := os.Stat(androidMarker)
	return err == nil
}

// wisdomPath returns the host-local path FFT planning data is persisted
// to, split between an Android layout and a plain desktop home directory.
func wisdomPath() (string, error) {
	if isAndroid() {
		return "/sdcard/wisdom-" + hostname(), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("fftengine: could not resolve home directory: %w", err)
	}
	return filepath.Join(home, ".focus-wisdom-"+hostname()), nil
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		out, err2 := exec.Command("hostname").Output()
		if err2 != nil {
			return "unknown-host"
		}
		return strings.TrimSpace(string(out))
	}
	return h
}

// wisdom is the opaque (to callers) planning-data payload persisted across
// runs. For the go-dsp backend there's no FFTW-style measured plan to
// reuse; what's worth remembering is simply which shapes have already been
// warmed up once, so a second run on the same host doesn't need to log a
// "no wisdom file" warning on first use.
type wisdom struct {
	WarmedShapes []Shape
}

// Plan is a cached FFT engine for one spectrum shape. Plans are built once
// and shared read-only afterwards.
type Plan struct {
	shape Shape
}

var (
	mu       sync.Mutex
	cache    = map[Shape]*Plan{}
	warmOnce sync.Once
	warmSet  map[Shape]bool
)

func loadWarmSet() map[Shape]bool {
	warmOnce.Do(func() {
		warmSet = map[Shape]bool{}
		path, err := wisdomPath()
		if err != nil {
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			// Missing wisdom file is a warning, not an error.
			fmt.Fprintf(os.Stderr, "fftengine: warning: no wisdom file loaded: %v\n", err)
			return
		}
		var w wisdom
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
			return
		}
		for _, s := range w.WarmedShapes {
			warmSet[s] = true
		}
	})
	return warmSet
}

// saveWisdom persists the current warm set to the host-local wisdom file.
// Writes are last-writer-wins; concurrent processes on one host should
// serialize via a single Warm call (the fft_init command).
func saveWisdom() error {
	path, err := wisdomPath()
	if err != nil {
		return err
	}
	set := loadWarmSet()
	shapes := make([]Shape, 0, len(set))
	for s := range set {
		shapes = append(shapes, s)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(wisdom{WarmedShapes: shapes}); err != nil {
		return fmt.Errorf("fftengine: could not encode wisdom: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("fftengine: could not write wisdom file %s: %w", path, err)
	}
	return nil
}

// GetCached returns the shared Plan for shape, building and registering it
// as "warmed" on first use.
func GetCached(shape Shape) *Plan {
	mu.Lock()
	defer mu.Unlock()
	if p, ok := cache[shape]; ok {
		return p
	}
	p := &Plan{shape: shape}
	cache[shape] = p

	set := loadWarmSet()
	if !set[shape] {
		set[shape] = true
		_ = saveWisdom() // Best-effort; planning-data persistence failures never block FFT use.
	}
	return p
}

// Warm pre-plans shape without needing an RFFT2/IRFFT2 call, for the
// fft_init command to pre-warm the shapes a session expects.
func Warm(shapes ...Shape) {
	for _, s := range shapes {
		GetCached(s)
	}
}

// RFFT2 computes the forward real 2-D FFT of frame (shape (H, W)),
// returning the non-redundant half-spectrum of shape (H, W/2+1).
func (p *Plan) RFFT2(frame [][]float64) [][]complex128 {
	h := len(frame)
	w := len(frame[0])

	in := make([][]complex128, h)
	for r := range frame {
		in[r] = make([]complex128, w)
		for c, v := range frame[r] {
			in[r][c] = complex(v, 0)
		}
	}

	full := fft.FFT2(in)

	halfW := w/2 + 1
	out := make([][]complex128, h)
	for r := range full {
		out[r] = append([]complex128(nil), full[r][:halfW]...)
	}
	return out
}

// IRFFT2 computes the inverse real 2-D FFT of a half-spectrum (shape
// (H, W/2+1)) back to a real (H, W) frame, reconstructing the redundant
// half via conjugate symmetry before taking the inverse complex FFT.
func (p *Plan) IRFFT2(spectrum [][]complex128, w int) [][]float64 {
	h := len(spectrum)
	halfW := len(spectrum[0])

	full := make([][]complex128, h)
	for r := 0; r < h; r++ {
		full[r] = make([]complex128, w)
		copy(full[r], spectrum[r][:min(halfW, w)])
		for c := halfW; c < w; c++ {
			srcRow := (h - r) % h
			srcCol := w - c
			full[r][c] = cmplxConj(spectrum[srcRow][srcCol])
		}
	}

	inv := fft.IFFT2(full)

	out := make([][]float64, h)
	for r := range inv {
		out[r] = make([]float64, w)
		for c, v := range inv[r] {
			out[r][c] = real(v)
		}
	}
	return out
}

func cmplxConj(c complex128) complex128 { return complex(real(c), -imag(c)) }

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// RFFT2 and IRFFT2 are also exposed at package level against the shared
// per-shape plan cache, as module-level convenience functions.

// RFFT2 forwards to GetCached(shape).RFFT2, where shape is frame's (H, W).
func RFFT2(frame [][]float64) [][]complex128 {
	shape := Shape{len(frame), len(frame[0])}
	return GetCached(shape).RFFT2(frame)
}

// IRFFT2 forwards to GetCached(shape).IRFFT2, where shape is the full
// output (H, W) of the frame to reconstruct.
func IRFFT2(spectrum [][]complex128, shape Shape) [][]float64 {
	return GetCached(shape).IRFFT2(spectrum, shape[1])
}
