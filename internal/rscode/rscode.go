// Package rscode implements a classical Reed-Solomon codec over GF(256):
// systematic encoding by polynomial division against a generator built
// from consecutive roots, and syndrome/Berlekamp-Massey/Chien-search/
// Forney decoding that corrects symbol errors (not just erasures).
//
// FOCUS fragments need an error-correcting decode, not merely an
// erasure-reconstructing one, so this package is hand-written rather than
// wrapping a parity/erasure-coding library; see DESIGN.md for why no
// third-party codec fit the contract.
package rscode

// primPoly is the primitive polynomial x^8+x^4+x^3+x^2+1 used to build
// GF(256), the same field CDs, QR codes and most practical RS codecs use.
const primPoly = 0x11d

// Codec encodes and decodes fixed-parity-length Reed-Solomon codewords.
// A Codec is immutable after New and safe for concurrent use.
type Codec struct {
	parity int
	exp    [512]byte
	log    [256]byte
}

// New returns a Codec appending parity bytes of Reed-Solomon redundancy
// per codeword (so Encode(data) has length len(data)+parity).
func New(parity int) *Codec {
	c := &Codec{parity: parity}
	x := 1
	for i := 0; i < 255; i++ {
		c.exp[i] = byte(x)
		c.log[x] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= primPoly
		}
	}
	for i := 255; i < 512; i++ {
		c.exp[i] = c.exp[i-255]
	}
	return c
}

func (c *Codec) mul(x, y byte) byte {
	if x == 0 || y == 0 {
		return 0
	}
	return c.exp[int(c.log[x])+int(c.log[y])]
}

func (c *Codec) div(x, y byte) byte {
	if x == 0 {
		return 0
	}
	return c.exp[(int(c.log[x])+255-int(c.log[y]))%255]
}

func (c *Codec) pow(x byte, power int) byte {
	e := (int(c.log[x]) * power) % 255
	if e < 0 {
		e += 255
	}
	return c.exp[e]
}

func (c *Codec) inverse(x byte) byte {
	return c.exp[255-int(c.log[x])]
}

func (c *Codec) polyMul(p, q []byte) []byte {
	out := make([]byte, len(p)+len(q)-1)
	for i, pi := range p {
		if pi == 0 {
			continue
		}
		for j, qj := range q {
			out[i+j] ^= c.mul(pi, qj)
		}
	}
	return out
}

func polyAdd(p, q []byte) []byte {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make([]byte, n)
	copy(out[n-len(p):], p)
	for i, v := range q {
		out[n-len(q)+i] ^= v
	}
	return out
}

func (c *Codec) polyScale(p []byte, x byte) []byte {
	out := make([]byte, len(p))
	for i, v := range p {
		out[i] = c.mul(v, x)
	}
	return out
}

func (c *Codec) polyEval(p []byte, x byte) byte {
	y := p[0]
	for _, coef := range p[1:] {
		y = c.mul(y, x) ^ coef
	}
	return y
}

// polyDiv performs synthetic (long) division of dividend by divisor over
// GF(256), both MSB-first, returning quotient and remainder.
func (c *Codec) polyDiv(dividend, divisor []byte) (quotient, remainder []byte) {
	out := append([]byte(nil), dividend...)
	for i := 0; i <= len(dividend)-len(divisor); i++ {
		coef := out[i]
		if coef == 0 {
			continue
		}
		for j := 1; j < len(divisor); j++ {
			if divisor[j] == 0 {
				continue
			}
			out[i+j] ^= c.mul(divisor[j], coef)
		}
	}
	sep := len(dividend) - len(divisor) + 1
	return out[:sep], out[sep:]
}

func reverseBytes(p []byte) []byte {
	out := make([]byte, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

func allZero(p []byte) bool {
	for _, v := range p {
		if v != 0 {
			return false
		}
	}
	return true
}

func (c *Codec) generatorPoly(nsym int) []byte {
	g := []byte{1}
	for i := 0; i < nsym; i++ {
		g = c.polyMul(g, []byte{1, c.pow(2, i)})
	}
	return g
}

// Encode returns data with c.parity Reed-Solomon parity bytes appended.
func (c *Codec) Encode(data []byte) []byte {
	gen := c.generatorPoly(c.parity)
	padded := append(append([]byte(nil), data...), make([]byte, c.parity)...)
	_, remainder := c.polyDiv(padded, gen)

	out := make([]byte, len(data)+c.parity)
	copy(out, data)
	copy(out[len(data):], remainder)
	return out
}

// syndromes returns a length-(parity+1) slice whose element 0 is always
// zero (a padding convention the locator step below relies on) and whose
// elements 1..parity are the codeword evaluated at alpha^0..alpha^(parity-1).
func (c *Codec) syndromes(msg []byte) []byte {
	synd := make([]byte, c.parity+1)
	for i := 0; i < c.parity; i++ {
		synd[i+1] = c.polyEval(msg, c.pow(2, i))
	}
	return synd
}

// errorLocator runs Berlekamp-Massey against synd to find the error
// locator polynomial sigma(x). ok is false if more errors are present
// than the parity can correct.
func (c *Codec) errorLocator(synd []byte) (loc []byte, ok bool) {
	nsym := c.parity
	errLoc := []byte{1}
	oldLoc := []byte{1}
	shift := len(synd) - nsym

	for i := 0; i < nsym; i++ {
		k := i + shift
		delta := synd[k]
		for j := 1; j < len(errLoc); j++ {
			delta ^= c.mul(errLoc[len(errLoc)-1-j], synd[k-j])
		}
		oldLoc = append(oldLoc, 0)
		if delta != 0 {
			if len(oldLoc) > len(errLoc) {
				newLoc := c.polyScale(oldLoc, delta)
				oldLoc = c.polyScale(errLoc, c.inverse(delta))
				errLoc = newLoc
			}
			errLoc = polyAdd(errLoc, c.polyScale(oldLoc, delta))
		}
	}

	start := 0
	for start < len(errLoc)-1 && errLoc[start] == 0 {
		start++
	}
	errLoc = errLoc[start:]

	errs := len(errLoc) - 1
	if errs*2 > nsym {
		return nil, false
	}
	return errLoc, true
}

// findErrors Chien-searches errLoc (already reversed by the caller) for
// its roots across every codeword position, returning their positions
// from the start of msg. ok is false if the root count disagrees with
// errLoc's degree (uncorrectable).
func (c *Codec) findErrors(errLocRev []byte, nmess int) (positions []int, ok bool) {
	errs := len(errLocRev) - 1
	var pos []int
	for i := 0; i < nmess; i++ {
		if c.polyEval(errLocRev, c.pow(2, i)) == 0 {
			pos = append(pos, nmess-1-i)
		}
	}
	if len(pos) != errs {
		return nil, false
	}
	return pos, true
}

func (c *Codec) errataLocator(coefPos []int) []byte {
	loc := []byte{1}
	for _, i := range coefPos {
		term := polyAdd([]byte{1}, []byte{c.pow(2, i), 0})
		loc = c.polyMul(loc, term)
	}
	return loc
}

func (c *Codec) errorEvaluator(syndRev, errLoc []byte, nerrs int) []byte {
	divisor := make([]byte, nerrs+2)
	divisor[0] = 1
	_, remainder := c.polyDiv(c.polyMul(syndRev, errLoc), divisor)
	return remainder
}

// correctErrata applies the Forney algorithm to compute each error's
// magnitude and XORs the corrections into msg, returning the corrected
// codeword. nil signals an internal degeneracy (error locations that
// cannot be inverted), which the caller treats as a decode failure.
func (c *Codec) correctErrata(msg, synd []byte, errPos []int) []byte {
	coefPos := make([]int, len(errPos))
	for i, p := range errPos {
		coefPos[i] = len(msg) - 1 - p
	}
	errLoc := c.errataLocator(coefPos)
	remainder := c.errorEvaluator(reverseBytes(synd), errLoc, len(errLoc)-1)

	x := make([]byte, len(coefPos))
	for i, cp := range coefPos {
		x[i] = c.pow(2, -(255 - cp))
	}

	e := make([]byte, len(msg))
	for i, xi := range x {
		xiInv := c.inverse(xi)
		errLocPrime := byte(1)
		for j, xj := range x {
			if j == i {
				continue
			}
			errLocPrime = c.mul(errLocPrime, 1^c.mul(xiInv, xj))
		}
		if errLocPrime == 0 {
			return nil
		}
		y := c.mul(xi, c.polyEval(remainder, xiInv))
		e[errPos[i]] = c.div(y, errLocPrime)
	}

	out := make([]byte, len(msg))
	for i := range msg {
		out[i] = msg[i] ^ e[i]
	}
	return out
}

// Decode corrects up to parity/2 symbol errors in coded and returns the
// number of errors corrected and the leading len(coded)-parity data
// bytes. It returns (-1, nil) if the codeword cannot be corrected, per
// FOCUS's decode(coded) -> (error-count, fragment-or-failure) contract.
func (c *Codec) Decode(coded []byte) (nerrors int, data []byte) {
	dataLen := len(coded) - c.parity
	msg := append([]byte(nil), coded...)

	synd := c.syndromes(msg)
	if allZero(synd) {
		return 0, msg[:dataLen]
	}

	errLoc, ok := c.errorLocator(synd)
	if !ok {
		return -1, nil
	}

	errPos, ok := c.findErrors(reverseBytes(errLoc), len(msg))
	if !ok {
		return -1, nil
	}

	corrected := c.correctErrata(msg, synd, errPos)
	if corrected == nil {
		return -1, nil
	}

	if !allZero(c.syndromes(corrected)) {
		return -1, nil
	}

	return len(errPos), corrected[:dataLen]
}
