// Package pkcs1 implements EME-PKCS1-v1_5 encoding and decoding, RFC 8017
// §7.2: the padding scheme that turns a short message into a full-width
// encoded message ready for the RSA primitive, and back.
package pkcs1

import (
	"errors"

	"github.com/queros/rsafile/internal/rand"
)

// minPadLen is the minimum number of PS octets EME-PKCS1-v1_5 requires.
const minPadLen = 8

// ErrMessageTooLong is returned by Encode when the message doesn't fit in
// k-11 octets.
var ErrMessageTooLong = errors.New("pkcs1: message too long")

// ErrDecryptionError is the single opaque error Decode returns for every
// structural validation failure: surfacing which specific check failed
// would open a Bleichenbacher-style padding oracle.
var ErrDecryptionError = errors.New("pkcs1: decryption error")

// Encode produces the k-octet encoded message EM = 0x00 || 0x02 || PS ||
// 0x00 || M, where PS is |k - len(M) - 3| pseudo-randomly generated nonzero
// octets. It requires len(M) <= k - 11.
func Encode(m []byte, k int) ([]byte, error) {
	if len(m) > k-11 {
		return nil, ErrMessageTooLong
	}

	psLen := k - len(m) - 3
	em := make([]byte, k)
	em[0] = 0x00
	em[1] = 0x02
	for i := 0; i < psLen; i++ {
		b, err := rand.NonZeroByte()
		if err != nil {
			return nil, err
		}
		em[2+i] = b
	}
	em[2+psLen] = 0x00
	copy(em[3+psLen:], m)
	return em, nil
}

// Decode validates a k-octet encoded message and returns the recovered
// message. Every structural failure (missing 0x00/0x02 marker, no 0x00
// separator at index >= 10, PS too short) is surfaced as the single
// ErrDecryptionError.
func Decode(em []byte, k int) ([]byte, error) {
	if len(em) != k {
		return nil, ErrDecryptionError
	}

	ok := em[0] == 0x00
	ok = ok && em[1] == 0x02

	sepIdx := -1
	for i := 10; i < k; i++ {
		if em[i] == 0x00 {
			sepIdx = i
			break
		}
	}
	ok = ok && sepIdx >= 0

	// Every PS octet between index 2 and the separator must be nonzero.
	// Scanned unconditionally (not short-circuited on sepIdx) so the work
	// performed doesn't depend on which check above already failed.
	psEnd := sepIdx
	if psEnd < 0 {
		psEnd = k
	}
	for i := 2; i < psEnd; i++ {
		if em[i] == 0x00 {
			ok = false
		}
	}

	if !ok {
		return nil, ErrDecryptionError
	}

	m := make([]byte, k-sepIdx-1)
	copy(m, em[sepIdx+1:])
	return m, nil
}
