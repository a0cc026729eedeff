// Package wire packs and unpacks the 4-byte big-endian header carried
// in every fragment's payload, and reassembles a payload from a
// fragment set.
package wire

import (
	"encoding/binary"
	"fmt"
)

// HeaderLen is the fixed size, in bytes, of the header PackHeader produces.
const HeaderLen = 4

// PackHeader returns the 4-byte big-endian header
// [nfragments uint16][payload_len uint16].
func PackHeader(nfragments, payloadLen uint16) []byte {
	b := make([]byte, HeaderLen)
	binary.BigEndian.PutUint16(b[0:2], nfragments)
	binary.BigEndian.PutUint16(b[2:4], payloadLen)
	return b
}

// UnpackHeader reads the header fields back out of b's first 4 bytes.
func UnpackHeader(b []byte) (nfragments, payloadLen uint16) {
	return binary.BigEndian.Uint16(b[0:2]), binary.BigEndian.Uint16(b[2:4])
}

// FragmentCapacity is the number of payload bytes a fragment of fragLen
// bytes can carry once its first HeaderLen bytes are reserved for the
// replicated header.
func FragmentCapacity(fragLen int) int {
	return fragLen - HeaderLen
}

// PackFragments replicates a [nfragments][len(payload)] header into the
// first HeaderLen bytes of every one of nfragments fragments, each
// fragLen bytes long, and scatters payload across the remaining
// FragmentCapacity(fragLen) bytes of each. The returned blob is exactly
// int(nfragments)*fragLen bytes; payload is zero-padded if it doesn't
// fill every fragment.
func PackFragments(nfragments uint16, fragLen int, payload []byte) ([]byte, error) {
	capacity := FragmentCapacity(fragLen)
	if capacity <= 0 {
		return nil, fmt.Errorf("wire: fragment length %d too small to carry a %d-byte header", fragLen, HeaderLen)
	}
	if total := int(nfragments) * capacity; len(payload) > total {
		return nil, fmt.Errorf("wire: payload of %d bytes exceeds %d fragments' capacity of %d bytes", len(payload), nfragments, total)
	}

	header := PackHeader(nfragments, uint16(len(payload)))
	out := make([]byte, int(nfragments)*fragLen)
	for i := 0; i < int(nfragments); i++ {
		frag := out[i*fragLen : (i+1)*fragLen]
		copy(frag, header)

		start := i * capacity
		if start >= len(payload) {
			continue
		}
		end := start + capacity
		if end > len(payload) {
			end = len(payload)
		}
		copy(frag[HeaderLen:], payload[start:end])
	}
	return out, nil
}

// ExtractHeader recovers the header replicated across fragments, one
// slice per subchannel in subchannel order; a nil or short entry means
// that subchannel's fragment was not recovered. It requires a strict
// majority of the fragments that do carry a header to agree byte-for-byte,
// so a single corrupted fragment (commonly subchannel 0, historically
// the only one carrying a header) can't by itself sink recovery. ok is
// false if no such majority exists.
func ExtractHeader(fragments [][]byte) (nfragments, payloadLen uint16, ok bool) {
	type key [HeaderLen]byte
	votes := make(map[key]int)
	total := 0
	for _, frag := range fragments {
		if len(frag) < HeaderLen {
			continue
		}
		var k key
		copy(k[:], frag[:HeaderLen])
		votes[k]++
		total++
	}

	var winner key
	winnerVotes := 0
	for k, v := range votes {
		if v > winnerVotes {
			winner, winnerVotes = k, v
		}
	}
	if total == 0 || winnerVotes*2 <= total {
		return 0, 0, false
	}

	n, l := UnpackHeader(winner[:])
	return n, l, true
}

// UnpackFragments reassembles a payload of payloadLen bytes from
// fragments, stripping each fragment's own HeaderLen-byte header before
// concatenating. A nil or short fragment leaves its span zero-filled.
func UnpackFragments(fragments [][]byte, payloadLen int) []byte {
	out := make([]byte, payloadLen)
	for i, frag := range fragments {
		if len(frag) <= HeaderLen {
			continue
		}
		data := frag[HeaderLen:]
		start := i * len(data)
		if start >= payloadLen {
			continue
		}
		end := start + len(data)
		if end > payloadLen {
			end = payloadLen
		}
		copy(out[start:end], data[:end-start])
	}
	return out
}
