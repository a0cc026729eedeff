package multiproc

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"image"
	"io"

	"github.com/frederikhermans/focus/internal/ferrors"
	"github.com/frederikhermans/focus/receiver"
)

func init() {
	// receiver.Result.Err is an error interface; gob requires the
	// concrete types that can flow through it to be registered up
	// front so a WireResult crossing the pipe protocol can carry one.
	gob.Register(&ferrors.ConfigError{})
	gob.Register(&ferrors.LocateFailure{})
	gob.Register(&ferrors.DemodInvalid{})
	gob.Register(&ferrors.DecodeFailure{})
	gob.Register(&ferrors.WorkerFramingError{})
}

// maxChunkBytes bounds how large a single length-prefixed payload this
// protocol will allocate for. A length beyond this is treated as
// corrupt framing, not a legitimately oversized chunk.
const maxChunkBytes = 256 << 20

// WireFrame is a self-contained grayscale frame, serializable with
// encoding/gob (an image.Image value isn't, since it's an interface).
type WireFrame struct {
	W, H int
	Pix  []byte
}

// ToWireFrame copies frame's pixels into a WireFrame, reducing to
// grayscale via the same green-channel rule the receiver itself applies
//, so a PipeWorker doesn't need image.Image at all.
func ToWireFrame(frame image.Image) WireFrame {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, g, _, _ := frame.At(x, y).RGBA()
			pix[i] = byte(g >> 8)
			i++
		}
	}
	return WireFrame{W: w, H: h, Pix: pix}
}

// Image rebuilds a *image.Gray from a WireFrame.
func (f WireFrame) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.W, f.H))
	copy(img.Pix, f.Pix)
	return img
}

// WireChunk is up to K frames dispatched to one worker in one round.
type WireChunk struct {
	Frames []WireFrame
}

// WireResult is one chunk's decoded results, in input order within the
// chunk.
type WireResult struct {
	Results []receiver.Result
}

// WriteChunk gob-encodes chunk and writes it to w behind a 4-byte
// big-endian length prefix.
func WriteChunk(w io.Writer, chunk WireChunk) error {
	return writeFramed(w, chunk)
}

// ReadChunk reads one length-prefixed gob-encoded WireChunk from r.
func ReadChunk(r io.Reader) (WireChunk, error) {
	var chunk WireChunk
	err := readFramed(r, &chunk)
	return chunk, err
}

// WriteResult gob-encodes result and writes it to w behind a 4-byte
// big-endian length prefix.
func WriteResult(w io.Writer, result WireResult) error {
	return writeFramed(w, result)
}

// ReadResult reads one length-prefixed gob-encoded WireResult from r.
func ReadResult(r io.Reader) (WireResult, error) {
	var result WireResult
	err := readFramed(r, &result)
	return result, err
}

func writeFramed(w io.Writer, v interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("multiproc: could not encode payload: %w", err)
	}

	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(buf.Len()))
	if _, err := w.Write(lenPrefix[:]); err != nil {
		return fmt.Errorf("multiproc: could not write length prefix: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("multiproc: could not write payload: %w", err)
	}
	return nil
}

// readFramed reads a 4-byte big-endian length prefix followed by that
// many gob-encoded bytes, decoding them into v. A length past
// maxChunkBytes dumps the next 16 bytes into the returned
// *ferrors.WorkerFramingError for diagnosis; a short read or an
// undecodable payload also returns a *ferrors.WorkerFramingError, without
// a byte dump.
func readFramed(r io.Reader, v interface{}) error {
	var lenPrefix [4]byte
	if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return &ferrors.WorkerFramingError{Msg: fmt.Sprintf("short length prefix: %v", err)}
	}

	n := binary.BigEndian.Uint32(lenPrefix[:])
	if n > maxChunkBytes {
		diag := make([]byte, 16)
		rn, _ := io.ReadFull(r, diag)
		return &ferrors.WorkerFramingError{
			Msg: fmt.Sprintf("chunk length %d exceeds max %d bytes; next %d bytes: %x", n, maxChunkBytes, rn, diag[:rn]),
		}
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return &ferrors.WorkerFramingError{Msg: fmt.Sprintf("short payload (want %d bytes): %v", n, err)}
	}

	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(v); err != nil {
		return &ferrors.WorkerFramingError{Msg: fmt.Sprintf("malformed gob payload: %v", err)}
	}
	return nil
}
