// Package blockcodec turns the fixed-width RSA primitives in rsakey and
// pkcs1 into a whole-file codec: plaintext is chunked into k-11-octet
// blocks, each padded, encrypted and framed into k octets; ciphertext is
// the concatenation of those blocks with no separate length header.
package blockcodec

import (
	"errors"

	"github.com/queros/rsafile/internal/octet"
	"github.com/queros/rsafile/pkcs1"
	"github.com/queros/rsafile/rsakey"
)

// ErrEmptyPlaintext is returned by Encrypt for a zero-byte input: the
// reference leaves that case undefined, so it's rejected outright rather
// than guessing at compatibility with undefined behavior.
var ErrEmptyPlaintext = errors.New("blockcodec: empty plaintext")

// ErrInvalidCiphertextLength is returned by Decrypt when the ciphertext
// isn't a positive multiple of the modulus octet length.
var ErrInvalidCiphertextLength = errors.New("blockcodec: invalid ciphertext length")

// ErrDecryptionError is returned by Decrypt for any PKCS#1 structural
// failure or out-of-range block, folding pkcs1.ErrDecryptionError and the
// rsakey range checks into a single opaque kind at the file level too.
var ErrDecryptionError = errors.New("blockcodec: decryption error")

func modulusOctetLen(bits int) int {
	return (bits + 7) / 8
}

// Encrypt partitions plaintext into k-11-octet blocks (the final block may
// be shorter, down to a single octet), PKCS#1-pads and RSA-encrypts each
// one independently, and concatenates the results in input order. Output
// length is always exactly b*k for b blocks.
func Encrypt(plaintext []byte, pub *rsakey.PublicKey) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}

	k := modulusOctetLen(pub.Bits)
	chunk := k - 11

	out := make([]byte, 0, (len(plaintext)/chunk+1)*k)
	for off := 0; off < len(plaintext); off += chunk {
		end := off + chunk
		if end > len(plaintext) {
			end = len(plaintext)
		}
		block := plaintext[off:end]

		em, err := pkcs1.Encode(block, k)
		if err != nil {
			return nil, err
		}
		m := octet.OS2IP(em)
		c, err := rsakey.RSAEP(pub, m)
		if err != nil {
			return nil, err
		}
		cBytes, err := octet.I2OSP(c, k)
		if err != nil {
			return nil, err
		}
		out = append(out, cBytes...)

		zero(em)
	}
	return out, nil
}

// Decrypt splits ciphertext into k-octet blocks, RSA-decrypts and
// PKCS#1-unpads each one, and concatenates the recovered plaintext blocks.
// It fails ErrInvalidCiphertextLength if the input isn't a positive
// multiple of k, and ErrDecryptionError for any per-block failure.
func Decrypt(ciphertext []byte, priv *rsakey.PrivateKey) ([]byte, error) {
	k := modulusOctetLen(priv.Bits)
	if len(ciphertext) == 0 || len(ciphertext)%k != 0 {
		return nil, ErrInvalidCiphertextLength
	}

	b := len(ciphertext) / k
	out := make([]byte, 0, len(ciphertext))
	for i := 0; i < b; i++ {
		block := ciphertext[i*k : (i+1)*k]

		c := octet.OS2IP(block)
		if c.Cmp(priv.N) >= 0 {
			return nil, ErrDecryptionError
		}
		m, err := rsakey.RSADP(priv, c)
		if err != nil {
			return nil, ErrDecryptionError
		}
		em, err := octet.I2OSP(m, k)
		if err != nil {
			return nil, ErrDecryptionError
		}
		plain, err := pkcs1.Decode(em, k)
		if err != nil {
			return nil, ErrDecryptionError
		}
		out = append(out, plain...)

		zero(em)
		m.SetInt64(0)
	}
	return out, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
