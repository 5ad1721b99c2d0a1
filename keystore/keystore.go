// Package keystore persists and loads RSA key pairs using a banner-style
// base-61 text format, a faithful reading of the reference
// implementation's rsa_keys.c. The format is treated as an implementation
// detail of this one KeyStore, not a protocol: it could be swapped for
// PEM/PKCS#8 as long as save/load round-trip bit-exactly, which is the
// only property the rest of the core depends on.
package keystore

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/queros/rsafile/internal/opfail"
	"github.com/queros/rsafile/rsakey"
)

const (
	base      = 61
	lineWidth = 50

	pubFile  = "rsa.pub"
	privFile = "rsa.priv"

	pubBegin  = "--- BEGIN PUBLIC KEY ---\n"
	pubEnd    = "--- END PUBLIC KEY ---\n"
	privBegin = "--- BEGIN PRIVATE KEY ---\n"
	privEnd   = "--- END PRIVATE KEY ---\n"
)

// ErrMalformedKeyFile is returned when a key file's banners, separator, or
// digits don't parse.
var ErrMalformedKeyFile = errors.New("keystore: malformed key file")

// SaveKeypair writes the public and private artifacts for priv into dir,
// creating or overwriting rsa.pub and rsa.priv. Each file is written to a
// temporary path in dir and renamed into place, so a failure partway
// through never leaves a half-written key file behind.
func SaveKeypair(dir string, priv *rsakey.PrivateKey) error {
	pubBody := wrapEvery(priv.E.Text(base)+"/"+priv.N.Text(base), lineWidth)
	pubContent := pubBegin + pubBody + "\n" + pubEnd

	privBody := wrapEvery(priv.D.Text(base)+"/"+priv.N.Text(base), lineWidth)
	privContent := privBegin + privBody + "\n" + privEnd

	if err := writeAtomic(filepath.Join(dir, pubFile), pubContent); err != nil {
		return opfail.Wrap("keystore.SaveKeypair", filepath.Join(dir, pubFile), err)
	}
	if err := writeAtomic(filepath.Join(dir, privFile), privContent); err != nil {
		return opfail.Wrap("keystore.SaveKeypair", filepath.Join(dir, privFile), err)
	}
	return nil
}

// LoadPublic reads the public key previously written by SaveKeypair.
func LoadPublic(dir string) (*rsakey.PublicKey, error) {
	path := filepath.Join(dir, pubFile)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, opfail.Wrap("keystore.LoadPublic", path, err)
	}

	eStr, nStr, err := parseBanner(string(content), pubBegin, pubEnd)
	if err != nil {
		return nil, opfail.Wrap("keystore.LoadPublic", path, err)
	}

	e, ok := new(big.Int).SetString(eStr, base)
	if !ok {
		return nil, opfail.Wrap("keystore.LoadPublic", path, ErrMalformedKeyFile)
	}
	n, ok := new(big.Int).SetString(nStr, base)
	if !ok {
		return nil, opfail.Wrap("keystore.LoadPublic", path, ErrMalformedKeyFile)
	}

	return &rsakey.PublicKey{N: n, E: e, Bits: n.BitLen()}, nil
}

// LoadPrivate reads the private key previously written by SaveKeypair.
func LoadPrivate(dir string) (*rsakey.PrivateKey, error) {
	path := filepath.Join(dir, privFile)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, opfail.Wrap("keystore.LoadPrivate", path, err)
	}

	dStr, nStr, err := parseBanner(string(content), privBegin, privEnd)
	if err != nil {
		return nil, opfail.Wrap("keystore.LoadPrivate", path, err)
	}

	d, ok := new(big.Int).SetString(dStr, base)
	if !ok {
		return nil, opfail.Wrap("keystore.LoadPrivate", path, ErrMalformedKeyFile)
	}
	n, ok := new(big.Int).SetString(nStr, base)
	if !ok {
		return nil, opfail.Wrap("keystore.LoadPrivate", path, ErrMalformedKeyFile)
	}

	return &rsakey.PrivateKey{N: n, D: d, E: big.NewInt(rsakey.E), Bits: n.BitLen()}, nil
}

// wrapEvery inserts a newline after every width runes of s, mirroring the
// reference implementation's write_chars, which carries its running column
// count across the "<exponent-or-digest>/<modulus>" boundary rather than
// resetting at the separator.
func wrapEvery(s string, width int) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/width)
	col := 0
	for _, r := range s {
		b.WriteRune(r)
		col++
		if col == width {
			b.WriteByte('\n')
			col = 0
		}
	}
	return b.String()
}

// parseBanner strips the begin/end banners, collapses the wrapped body back
// into one line, and splits it on the '/' separator.
func parseBanner(content, begin, end string) (first, second string, err error) {
	if !strings.HasPrefix(content, begin) || !strings.HasSuffix(content, end) {
		return "", "", ErrMalformedKeyFile
	}
	body := content[len(begin) : len(content)-len(end)]
	body = strings.ReplaceAll(body, "\n", "")

	idx := strings.IndexByte(body, '/')
	if idx < 0 {
		return "", "", ErrMalformedKeyFile
	}
	return body[:idx], body[idx+1:], nil
}

// writeAtomic writes content to path via a temporary file in the same
// directory, renamed into place on success.
func writeAtomic(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
