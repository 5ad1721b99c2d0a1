package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// chdir switches to dir for the duration of the test and restores the
// original working directory afterward.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(old)
	})
}

func TestEndToEndGenerateEncryptDecrypt(t *testing.T) {
	chdir(t, t.TempDir())

	// Keep the test fast: override the default production key size for
	// the duration of this test.
	savedBits := keyBits
	keyBits = 512
	t.Cleanup(func() { keyBits = savedBits })

	var out bytes.Buffer
	if err := runGenerateKeyPair(&out, strings.NewReader("")); err != nil {
		t.Fatalf("runGenerateKeyPair failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(keyDir, "rsa.pub")); err != nil {
		t.Fatalf("rsa.pub was not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(keyDir, "rsa.priv")); err != nil {
		t.Fatalf("rsa.priv was not created: %v", err)
	}

	plaintext := []byte("the quick brown fox\n")
	if err := os.WriteFile("plain.txt", plaintext, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := runEncrypt("plain.txt"); err != nil {
		t.Fatalf("runEncrypt failed: %v", err)
	}
	if _, err := os.Stat("encrypted"); err != nil {
		t.Fatalf("encrypted was not created: %v", err)
	}

	if err := runDecrypt("encrypted"); err != nil {
		t.Fatalf("runDecrypt failed: %v", err)
	}

	got, err := os.ReadFile("decrypted")
	if err != nil {
		t.Fatalf("ReadFile(decrypted) failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("decrypted = %q, want %q", got, plaintext)
	}
}

func TestGenerateKeyPairPromptDeclines(t *testing.T) {
	chdir(t, t.TempDir())
	savedBits := keyBits
	keyBits = 512
	t.Cleanup(func() { keyBits = savedBits })

	var out bytes.Buffer
	if err := runGenerateKeyPair(&out, strings.NewReader("")); err != nil {
		t.Fatalf("first runGenerateKeyPair failed: %v", err)
	}
	before, err := os.ReadFile(filepath.Join(keyDir, "rsa.pub"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	out.Reset()
	if err := runGenerateKeyPair(&out, strings.NewReader("n\n")); err != nil {
		t.Fatalf("second runGenerateKeyPair failed: %v", err)
	}
	after, err := os.ReadFile(filepath.Join(keyDir, "rsa.pub"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("declining the overwrite prompt still regenerated the key pair")
	}
}

func TestGenerateKeyPairPromptRejectsUnknownAnswer(t *testing.T) {
	chdir(t, t.TempDir())
	savedBits := keyBits
	keyBits = 512
	t.Cleanup(func() { keyBits = savedBits })

	var out bytes.Buffer
	if err := runGenerateKeyPair(&out, strings.NewReader("")); err != nil {
		t.Fatalf("first runGenerateKeyPair failed: %v", err)
	}

	out.Reset()
	err := runGenerateKeyPair(&out, strings.NewReader("maybe\n"))
	if err == nil {
		t.Fatal("runGenerateKeyPair with an unrecognized answer succeeded")
	}
}

func TestDecryptMissingPrivateKey(t *testing.T) {
	chdir(t, t.TempDir())
	if err := os.WriteFile("ciphertext", []byte("not real ciphertext"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := runDecrypt("ciphertext"); err == nil {
		t.Fatal("runDecrypt without a private key succeeded")
	}
}
