package pkcs1

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	k := 64
	for _, mLen := range []int{1, 5, 20, k - 11} {
		m := make([]byte, mLen)
		for i := range m {
			m[i] = byte(i + 1)
		}
		em, err := Encode(m, k)
		if err != nil {
			t.Fatalf("Encode(len=%d) failed: %v", mLen, err)
		}
		if len(em) != k {
			t.Fatalf("Encode(len=%d) produced %d octets, want %d", mLen, len(em), k)
		}

		got, err := Decode(em, k)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if !bytes.Equal(got, m) {
			t.Fatalf("Decode(Encode(m)) = %v, want %v", got, m)
		}
	}
}

func TestEncodeMaxLengthHasMinimumPS(t *testing.T) {
	k := 64
	m := make([]byte, k-11)
	em, err := Encode(m, k)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	// PS runs from index 2 to the 0x00 separator, which for a maximal
	// message sits at index 10 (8 octets of PS).
	if em[10] != 0x00 {
		t.Fatalf("separator at index 10 = 0x%02x, want 0x00", em[10])
	}
	for i := 2; i < 10; i++ {
		if em[i] == 0x00 {
			t.Fatalf("PS octet at index %d is zero", i)
		}
	}
}

func TestEncodeTooLong(t *testing.T) {
	k := 64
	m := make([]byte, k-10)
	if _, err := Encode(m, k); err != ErrMessageTooLong {
		t.Fatalf("Encode error = %v, want ErrMessageTooLong", err)
	}
}

func TestDecodeBadFirstMarker(t *testing.T) {
	k := 64
	em := make([]byte, k)
	em[0] = 0x01
	em[1] = 0x02
	for i := 2; i < 10; i++ {
		em[i] = 0xFF
	}
	em[10] = 0x00
	if _, err := Decode(em, k); err != ErrDecryptionError {
		t.Fatalf("Decode error = %v, want ErrDecryptionError", err)
	}
}

func TestDecodeBadSecondMarker(t *testing.T) {
	k := 64
	em := make([]byte, k)
	em[0] = 0x00
	em[1] = 0x01
	for i := 2; i < 10; i++ {
		em[i] = 0xFF
	}
	em[10] = 0x00
	if _, err := Decode(em, k); err != ErrDecryptionError {
		t.Fatalf("Decode error = %v, want ErrDecryptionError", err)
	}
}

func TestDecodeNoSeparator(t *testing.T) {
	k := 64
	em := make([]byte, k)
	em[0] = 0x00
	em[1] = 0x02
	for i := 2; i < k; i++ {
		em[i] = 0xFF // no zero octet anywhere after index 9
	}
	if _, err := Decode(em, k); err != ErrDecryptionError {
		t.Fatalf("Decode error = %v, want ErrDecryptionError", err)
	}
}

func TestDecodeSeparatorTooEarly(t *testing.T) {
	k := 64
	em := make([]byte, k)
	em[0] = 0x00
	em[1] = 0x02
	for i := 2; i < k; i++ {
		em[i] = 0xFF
	}
	em[9] = 0x00 // one octet short of the required 8-byte PS minimum
	if _, err := Decode(em, k); err != ErrDecryptionError {
		t.Fatalf("Decode error = %v, want ErrDecryptionError", err)
	}
}

func TestDecodeWrongLength(t *testing.T) {
	if _, err := Decode(make([]byte, 63), 64); err != ErrDecryptionError {
		t.Fatalf("Decode error = %v, want ErrDecryptionError", err)
	}
}
