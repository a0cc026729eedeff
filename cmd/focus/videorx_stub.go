//go:build !withcv

package main

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
)

// pipeFrameSource reads raw grayscale frames off an ffmpeg subprocess's
// stdout, the pure-Go fallback for cvFrameSource when this binary is built
// without cgo/OpenCV (see internal/imageframer's own withcv/!withcv split).
// ffmpeg handles the container demux and any colorspace conversion; this
// side only has to read fixed-size raw frames.
type pipeFrameSource struct {
	cmd *exec.Cmd
	r   *bufio.Reader
	w, h int
}

func openFrameSource(filename string, w, h int) (frameSource, error) {
	cmd := exec.Command("ffmpeg",
		"-i", filename,
		"-loglevel", "fatal",
		"-an",
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"-",
	)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("videorx: could not open ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("videorx: could not start ffmpeg: %w", err)
	}
	return &pipeFrameSource{cmd: cmd, r: bufio.NewReaderSize(out, w*h), w: w, h: h}, nil
}

func (s *pipeFrameSource) Next() (image.Image, bool, error) {
	buf := make([]byte, s.w*s.h)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("videorx: could not read frame: %w", err)
	}
	return &image.Gray{Pix: buf, Stride: s.w, Rect: image.Rect(0, 0, s.w, s.h)}, true, nil
}

func (s *pipeFrameSource) Close() error {
	return s.cmd.Wait()
}
