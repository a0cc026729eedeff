//go:build withcv

package main

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// cvFrameSource reads frames straight out of an encoded video file via
// gocv.VideoCaptureFile, gocv's own file-backed capture source.
type cvFrameSource struct {
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

func openFrameSource(filename string, w, h int) (frameSource, error) {
	vc, err := gocv.VideoCaptureFile(filename)
	if err != nil {
		return nil, fmt.Errorf("videorx: could not open %s: %w", filename, err)
	}
	return &cvFrameSource{vc: vc, mat: gocv.NewMat()}, nil
}

func (s *cvFrameSource) Next() (image.Image, bool, error) {
	if !s.vc.Read(&s.mat) || s.mat.Empty() {
		return nil, false, nil
	}
	img, err := s.mat.ToImage()
	if err != nil {
		return nil, false, fmt.Errorf("videorx: could not convert frame: %w", err)
	}
	return img, true, nil
}

func (s *cvFrameSource) Close() error {
	s.mat.Close()
	return s.vc.Close()
}
