// Package link applies a deterministic per-subchannel XOR whitening mask to
// fragments before they're Reed-Solomon encoded, and undoes it after
// decode. It is a whitening step, not a cipher.
package link

import (
	"math/rand"
	"sync"
)

const maskLen = 32768

// seedBase is added to a channel's index to seed that channel's mask PRNG,
// so distinct channels never share a mask.
const seedBase = 39402

var (
	mu    sync.Mutex
	cache = map[int][]byte{}
)

// maskFor returns the cached 32768-byte mask for channel i, generating it
// on first use.
func maskFor(i int) []byte {
	mu.Lock()
	defer mu.Unlock()
	if m, ok := cache[i]; ok {
		return m
	}
	rng := rand.New(rand.NewSource(int64(seedBase + i)))
	m := make([]byte, maskLen)
	for k := range m {
		m[k] = byte(rng.Intn(256))
	}
	cache[i] = m
	return m
}

// Mask XORs the per-channel mask into fragment in place. It is its own
// inverse: Mask(Mask(fragment, i), i) restores the original bytes.
func Mask(fragment []byte, channel int) {
	m := maskFor(channel)
	for i := range fragment {
		fragment[i] ^= m[i]
	}
}

// MaskRows applies Mask to each row of a 2-D fragment batch, broadcasting
// the channel's mask across every row (used when masking several frames'
// worth of the same channel's fragment at once).
func MaskRows(rows [][]byte, channel int) {
	m := maskFor(channel)
	for _, row := range rows {
		for i := range row {
			row[i] ^= m[i]
		}
	}
}
