package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"os/exec"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/frederikhermans/focus/transmitter"
)

// stripWidth is the width, in pixels, of the frame-number label painted
// beside each transmitted code, mirroring original_source/focus/video.py's
// add_frame_number strip (there rendered with cv2.putText/PIL).
const stripWidth = 90

// addFrameNumber pads code with a white strip on its left edge carrying
// "Frame NNN" in basicfont, the pure-Go stand-in for the original's
// OpenCV/PIL text rendering.
func addFrameNumber(code *image.Gray, frameNo int) *image.Gray {
	b := code.Bounds()
	out := image.NewGray(image.Rect(0, 0, stripWidth+b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(stripWidth, 0, stripWidth+b.Dx(), b.Dy()), code, b.Min, draw.Src)

	label := fmt.Sprintf("Frame %03d", frameNo)
	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(color.Gray{Y: 0}),
		Face: basicfont.Face7x13,
	}
	lineHeight := 13 * 3
	for y := 10; y+13 < b.Dy(); y += lineHeight {
		d.Dot = fixed.Point26_6{X: fixed.I(4), Y: fixed.I(y)}
		d.DrawString(label)
	}
	return out
}

// codeGenerator reads nsubchannels*64-byte payloads from in and encodes
// each into a code frame, padding (by tiling the short read across the
// remaining subchannel slots) the final, possibly-partial read, exactly
// as original_source/focus/video.py's code_generator does. It returns
// nil once in is exhausted.
func codeGenerator(tx *transmitter.Transmitter, nsubchannels int, in io.Reader) func() (*image.Gray, error) {
	const fragLen = 64
	return func() (*image.Gray, error) {
		want := nsubchannels * fragLen
		buf := make([]byte, want)
		n, err := io.ReadFull(in, buf)
		if n == 0 {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("videotx: could not read stdin: %w", err)
		}
		if n < want {
			nfrags := n / fragLen
			if nfrags == 0 {
				return nil, nil
			}
			padded := make([]byte, want)
			for i := 0; i < nsubchannels; i += nfrags {
				j := i + nfrags
				if j > nsubchannels {
					j = nsubchannels
				}
				copy(padded[i*fragLen:j*fragLen], buf[:(j-i)*fragLen])
			}
			buf = padded
		}
		return tx.Encode(buf)
	}
}

func runVideoTx(args []string) error {
	fs := flag.NewFlagSet("videotx", flag.ExitOnError)
	var c cliConfig
	fs.StringVar(&c.shape, "shape", "768x768", "frame shape, HxW")
	fs.UintVar(&c.nsubchannels, "nsubchannels", 0, "number of subchannels (required)")
	fs.UintVar(&c.parityLen, "parity-len", 16, "Reed-Solomon parity length in bytes")
	fs.UintVar(&c.cyclicPrefix, "cyclic-prefix", 8, "cyclic prefix length in pixels")
	fs.Float64Var(&c.border, "border", 0.05, "calibration marker border, as a fraction of min(height,width)")
	fs.BoolVar(&c.normalize, "normalize", true, "clip-and-quantize to the target SNR")
	txrate := fs.Int("txrate", 15, "new codes transmitted per second")
	videoFPS := fs.Int("video-fps", 30, "output video frame rate")
	fs.Parse(args)

	if c.nsubchannels == 0 {
		return fmt.Errorf("videotx: -nsubchannels is required")
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("videotx: usage: focus videotx [flags] <filename>")
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

	cmd := exec.Command("ffmpeg",
		"-loglevel", "fatal",
		"-framerate", fmt.Sprint(*txrate),
		"-f", "image2pipe",
		"-vcodec", "png",
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-r", fmt.Sprint(*videoFPS),
		"-c:v", "libx264",
		"-crf", "1",
		"-y", outfile,
	)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("videotx: could not open ffmpeg stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("videotx: could not start ffmpeg: %w", err)
	}

	next := codeGenerator(tx, int(c.nsubchannels), os.Stdin)
	frameNo := 0
	for {
		code, err := next()
		if err != nil {
			stdin.Close()
			cmd.Wait()
			return err
		}
		if code == nil {
			break
		}
		labeled := addFrameNumber(code, frameNo)
		if err := png.Encode(stdin, labeled); err != nil {
			stdin.Close()
			cmd.Wait()
			return fmt.Errorf("videotx: could not write frame %d: %w", frameNo, err)
		}
		if frameNo == 0 {
			// The encoder's first frame is sometimes dropped by ffmpeg's
			// image2pipe demuxer; send it twice.
			if err := png.Encode(stdin, labeled); err != nil {
				stdin.Close()
				cmd.Wait()
				return fmt.Errorf("videotx: could not write frame 0 (repeat): %w", err)
			}
		}
		cfg.Logger.Debug("videotx: sent frame", "frame", frameNo)
		frameNo++
	}

	stdin.Close()
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("videotx: ffmpeg failed: %w", err)
	}
	cfg.Logger.Info("videotx: wrote video", "file", outfile, "frames", frameNo)
	return nil
}
