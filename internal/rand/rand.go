// Package rand provides the cryptographically suitable byte and integer
// source the core primitives draw on: PS octet sampling in pkcs1, and prime
// candidate and test-witness sampling in primes.
package rand

import (
	"crypto/rand"
	"io"
	"math/big"
)

// Read fills b with cryptographically secure random bytes.
func Read(b []byte) (int, error) {
	return io.ReadFull(rand.Reader, b)
}

// Reader returns the process-wide cryptographically secure random source.
func Reader() io.Reader {
	return rand.Reader
}

// Int returns a uniform random integer in [0, max).
func Int(max *big.Int) (*big.Int, error) {
	return rand.Int(rand.Reader, max)
}

// Bits returns a uniform random integer with exactly the given bit count set
// (the top bit is always 1), suitable for prime candidate generation.
func Bits(bits int) (*big.Int, error) {
	if bits <= 0 {
		panic("rand: bits must be positive")
	}
	buf := make([]byte, (bits+7)/8)
	if _, err := Read(buf); err != nil {
		return nil, err
	}
	x := new(big.Int).SetBytes(buf)

	// Trim down to exactly `bits` bits, then force the top bit on so the
	// candidate is never short.
	excess := len(buf)*8 - bits
	x.Rsh(x, uint(excess))
	x.SetBit(x, bits-1, 1)
	return x, nil
}

// NonZeroByte returns a uniform random byte in [1, 255], resampling on zero
// the way PKCS#1 v1.5 padding octets must never be zero.
func NonZeroByte() (byte, error) {
	var b [1]byte
	for {
		if _, err := Read(b[:]); err != nil {
			return 0, err
		}
		if b[0] != 0 {
			return b[0], nil
		}
	}
}
