// Package rsakey implements RSA key-pair generation and the RSAEP/RSADP
// primitives of RFC 8017 §5: the arithmetic core that the PKCS#1 padding
// and block-framing layers build on.
package rsakey

import (
	"errors"
	"math/big"

	"github.com/queros/rsafile/internal/primes"
)

// E is the fixed public exponent, the conventional choice for RSA key
// generation.
const E = 65537

var (
	one = big.NewInt(1)
	e   = big.NewInt(E)
)

// PublicKey is the (n, e) pair used by RSAEP.
type PublicKey struct {
	N *big.Int
	E *big.Int

	Bits int
}

// PrivateKey is the (n, d) pair used by RSADP, plus the CRT parameters
// (p, q, dP, dQ, qInv) that accelerate it.
type PrivateKey struct {
	N *big.Int
	E *big.Int
	D *big.Int

	P    *big.Int
	Q    *big.Int
	DP   *big.Int
	DQ   *big.Int
	QInv *big.Int

	Bits int
}

// Public returns the public half of priv.
func (priv *PrivateKey) Public() *PublicKey {
	return &PublicKey{N: priv.N, E: priv.E, Bits: priv.Bits}
}

// Zero overwrites the secret fields of priv so they don't linger in memory
// past the call that needed them.
func (priv *PrivateKey) Zero() {
	for _, v := range []*big.Int{priv.D, priv.P, priv.Q, priv.DP, priv.DQ, priv.QInv} {
		if v != nil {
			v.SetInt64(0)
		}
	}
}

// ErrKeyGenerationFailure is returned when key generation cannot make
// progress, e.g. because the random source failed.
var ErrKeyGenerationFailure = errors.New("rsakey: key generation failure")

// GenerateKeyPair generates an RSA key pair whose modulus is exactly kBits
// bits long: p and q are independently sampled probable primes of kBits/2
// bits each, guarded against Fermat factoring (FIPS 186-4 |p-q| distance)
// and against an undersized private exponent, with e fixed at 65537.
func GenerateKeyPair(kBits int) (*PrivateKey, error) {
	if kBits%2 != 0 {
		panic("rsakey: kBits must be even")
	}
	if kBits < 96 {
		panic("rsakey: kBits must be at least 96")
	}
	half := kBits / 2

	guardBits := half - 100
	if guardBits < 1 {
		guardBits = 1
	}
	fermatGuard := new(big.Int).Lsh(one, uint(guardBits))
	minD := new(big.Int).Lsh(one, uint(half))

	for {
		p, err := primes.Find(half, primes.DefaultRounds)
		if err != nil {
			return nil, errors.Join(ErrKeyGenerationFailure, err)
		}
		q, err := primes.Find(half, primes.DefaultRounds)
		if err != nil {
			return nil, errors.Join(ErrKeyGenerationFailure, err)
		}
		if p.Cmp(q) == 0 {
			continue
		}

		diff := new(big.Int).Sub(p, q)
		diff.Abs(diff)
		if diff.Cmp(fermatGuard) < 0 {
			continue
		}

		n := new(big.Int).Mul(p, q)
		if n.BitLen() != kBits {
			continue
		}

		p1 := new(big.Int).Sub(p, one)
		q1 := new(big.Int).Sub(q, one)
		p1q1 := new(big.Int).Mul(p1, q1)
		gcdPQ := new(big.Int).GCD(nil, nil, p1, q1)
		lambda := new(big.Int).Div(p1q1, gcdPQ)

		d := new(big.Int)
		gcdEL := new(big.Int).GCD(nil, d, lambda, e)
		if gcdEL.Cmp(one) != 0 {
			continue // gcd(e, lambda(n)) != 1, try a new modulus
		}
		if d.Sign() < 0 {
			d.Add(d, lambda)
		}
		if d.Cmp(minD) <= 0 {
			continue
		}

		dP := new(big.Int).Mod(d, p1)
		dQ := new(big.Int).Mod(d, q1)
		qInv := new(big.Int).ModInverse(q, p)

		return &PrivateKey{
			N:    n,
			E:    new(big.Int).Set(e),
			D:    d,
			P:    p,
			Q:    q,
			DP:   dP,
			DQ:   dQ,
			QInv: qInv,
			Bits: kBits,
		}, nil
	}
}

// ErrMessageOutOfRange is returned by RSAEP when m is not in [0, n-1].
var ErrMessageOutOfRange = errors.New("rsakey: message representative out of range")

// ErrCiphertextOutOfRange is returned by RSADP when c is not in [0, n-1].
var ErrCiphertextOutOfRange = errors.New("rsakey: ciphertext representative out of range")

// RSAEP applies the RSA encryption primitive: c = m^e mod n.
func RSAEP(pub *PublicKey, m *big.Int) (*big.Int, error) {
	if m.Sign() < 0 || m.Cmp(pub.N) >= 0 {
		return nil, ErrMessageOutOfRange
	}
	return new(big.Int).Exp(m, pub.E, pub.N), nil
}

// RSADP applies the RSA decryption primitive: m = c^d mod n. It uses CRT
// when priv carries the (p, q, dP, dQ, qInv) parameters, true for any key
// GenerateKeyPair produced, and falls back to plain modular exponentiation
// for a private key loaded from a store that only persists (n, d).
func RSADP(priv *PrivateKey, c *big.Int) (*big.Int, error) {
	if c.Sign() < 0 || c.Cmp(priv.N) >= 0 {
		return nil, ErrCiphertextOutOfRange
	}
	if priv.P != nil && priv.Q != nil && priv.DP != nil && priv.DQ != nil && priv.QInv != nil {
		return crtDecrypt(priv, c), nil
	}
	return new(big.Int).Exp(c, priv.D, priv.N), nil
}

func crtDecrypt(priv *PrivateKey, c *big.Int) *big.Int {
	m1 := new(big.Int).Exp(c, priv.DP, priv.P)
	m2 := new(big.Int).Exp(c, priv.DQ, priv.Q)

	// h = qInv * (m1 - m2) mod p
	h := new(big.Int).Sub(m1, m2)
	h.Mul(h, priv.QInv)
	h.Mod(h, priv.P)

	// m = m2 + q*h
	h.Mul(h, priv.Q)
	h.Add(h, m2)
	return h
}
