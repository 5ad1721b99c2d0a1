// Package primes implements the probable-prime test and prime search used
// by key generation: a Solovay-Strassen primality test driven by the Jacobi
// symbol, plus the candidate search (Find/FindNext/FindPrevious) that turns
// it into a prime generator.
package primes

import (
	"math/big"
	"math/bits"

	"github.com/queros/rsafile/internal/rand"
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
	two  = big.NewInt(2)
)

// DefaultRounds is the round count used when callers don't need to tune the
// error bound themselves. Solovay-Strassen rejects a composite witness with
// probability at least 1/2 per round (Miller-Rabin: at least 3/4), so 80
// rounds are needed to reach a 2^-80 false-positive bound, twice the
// Miller-Rabin-equivalent count of 40.
const DefaultRounds = 80

// Is performs a Solovay-Strassen primality test on p. The probability of a
// false positive is at most 2^(-n).
func Is(p *big.Int, n int) (bool, error) {
	if p.Cmp(two) < 0 {
		return false, nil
	}
	if p.Cmp(two) == 0 {
		return true, nil
	}
	if p.Bit(0) == 0 {
		return false, nil
	}

	p = new(big.Int).Set(p)
	limit := new(big.Int).Sub(p, two)

	// pow = (p-1)/2
	pow := new(big.Int).Set(p)
	pow.Sub(pow, one).Rsh(pow, 1)

	for i := 0; i < n; i++ {
		a, err := rand.Int(limit)
		if err != nil {
			return false, err
		}
		a.Add(a, two) // a is random in [2,p)

		j := Jacobi(a, p)
		if j == 0 {
			return false, nil
		}
		jm := big.NewInt(int64(j))
		jm.Mod(jm, p)

		// Check if a^((p-1)/2) == j (mod p)
		m := a.Exp(a, pow, p)
		if m.Cmp(jm) != 0 {
			return false, nil
		}
	}
	return true, nil
}

// Jacobi computes the Jacobi symbol of a and b.
func Jacobi(a, b *big.Int) int {
	a = new(big.Int).Set(a)
	b = new(big.Int).Set(b)

	var (
		s = 1
		c = new(big.Int)
	)

	for {
		if b.Cmp(one) == 0 || a.Cmp(one) == 0 {
			return s
		}
		// All computations for the Jacobi are done in the (mod b) space.
		a.Mod(a, b)
		if a.Cmp(zero) == 0 {
			return 0
		}

		i := trailingZeroes(a)
		c.Rsh(a, i)

		// a and b are now odd, positive and coprime. Law of Quadratic
		// Reciprocity applies.

		if i&1 == 1 {
			// J(2a,b) = -1 if b = 3 or 5 (mod 8)
			if m := b.Bits()[0] & 7; m == 3 || m == 5 {
				s = -s
			}
		}

		// J(c,b)J(b,c) = -1 if n = m = 3 (mod 4)
		n := c.Bits()[0] & 3
		m := b.Bits()[0] & 3
		if n == 3 && m == 3 {
			s = -s
		}

		a.Set(b)
		b.Set(c)
	}
}

// trailingZeroes counts the trailing zero bits of a to do one `n` shift
// instead of `n` one-bit shifts.
func trailingZeroes(a *big.Int) uint {
	aw := a.Bits()

	var i int
	for i < len(aw) && aw[i] == 0 {
		i++
	}

	switch i {
	case len(aw):
		return uint(i * bits.UintSize)
	default:
		return uint(i*bits.UintSize + bits.TrailingZeros(uint(aw[i])))
	}
}

// Find samples a uniform candidate of the given bit length and advances it
// to the next probable prime, the way generate_prime in the reference
// implementation draws a random value and calls mpz_nextprime. Unlike the
// reference, the candidate comes from a cryptographically suitable source
// (internal/rand, backed by crypto/rand), not a rand()-seeded PRNG.
func Find(bitLen, rounds int) (*big.Int, error) {
	candidate, err := rand.Bits(bitLen)
	if err != nil {
		return nil, err
	}
	candidate.SetBit(candidate, 0, 1) // odd
	return FindNext(candidate, rounds)
}

// FindNext returns the smallest probable prime >= n.
func FindNext(n *big.Int, rounds int) (*big.Int, error) {
	c := new(big.Int).Set(n)
	if c.Cmp(two) <= 0 {
		return new(big.Int).Set(two), nil
	}
	if c.Bit(0) == 0 {
		c.Add(c, one)
	}
	for {
		ok, err := Is(c, rounds)
		if err != nil {
			return nil, err
		}
		if ok {
			return c, nil
		}
		c.Add(c, two)
	}
}

// FindPrevious returns the largest probable prime <= n.
func FindPrevious(n *big.Int, rounds int) (*big.Int, error) {
	c := new(big.Int).Set(n)
	if c.Bit(0) == 0 {
		c.Sub(c, one)
	}
	for c.Cmp(two) > 0 {
		ok, err := Is(c, rounds)
		if err != nil {
			return nil, err
		}
		if ok {
			return c, nil
		}
		c.Sub(c, two)
	}
	return new(big.Int).Set(two), nil
}
