package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/queros/rsafile/blockcodec"
	"github.com/queros/rsafile/keystore"
	"github.com/queros/rsafile/rsakey"
)

// keyDir is where key material lives, relative to the working directory.
const keyDir = ".rsa"

// keyBits is the modulus size new key pairs are generated at. Tests use
// smaller sizes for speed; real usage wants at least 2048. A var, not a
// const, so tests can shrink it.
var keyBits = 2048

var rootCmd = &cobra.Command{
	Use:   "rsafile",
	Short: "RSAES-PKCS1-v1_5 file encryption",
	Long: "rsafile generates an RSA key pair, then encrypts or decrypts files\n" +
		"by splitting them into RSAES-PKCS1-v1_5 blocks.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

var (
	flagGenerateKeyPair bool
	flagEncrypt         string
	flagDecrypt         string
)

func init() {
	rootCmd.Flags().BoolVar(&flagGenerateKeyPair, "generate-key-pair", false, "generate and save a new RSA key pair under ./.rsa")
	rootCmd.Flags().StringVar(&flagEncrypt, "encrypt", "", "encrypt the file at PATH with the public key, writing ./encrypted")
	rootCmd.Flags().StringVar(&flagDecrypt, "decrypt", "", "decrypt the file at PATH with the private key, writing ./decrypted")
}

func runRoot(cmd *cobra.Command, args []string) error {
	selected := 0
	for _, set := range []bool{flagGenerateKeyPair, flagEncrypt != "", flagDecrypt != ""} {
		if set {
			selected++
		}
	}
	if selected != 1 {
		return cmd.Usage()
	}

	switch {
	case flagGenerateKeyPair:
		return runGenerateKeyPair(cmd.OutOrStdout(), cmd.InOrStdin())
	case flagEncrypt != "":
		return runEncrypt(flagEncrypt)
	default:
		return runDecrypt(flagDecrypt)
	}
}

// runGenerateKeyPair reproduces main.c's --generate-key-pair branch: create
// ./.rsa if it doesn't exist and generate straight away; if it does exist,
// prompt before overwriting.
func runGenerateKeyPair(out io.Writer, in io.Reader) error {
	err := os.Mkdir(keyDir, 0o755)
	switch {
	case err == nil:
		// didn't exist; fall through to generation
	case os.IsExist(err):
		fmt.Fprint(out, "Directory exists. Generate new key pair? [y|n] ")
		reader := bufio.NewReader(in)
		line, readErr := reader.ReadString('\n')
		if readErr != nil && line == "" {
			return fmt.Errorf("rsafile: reading prompt response: %w", readErr)
		}
		answer := firstNonNewlineByte(line)
		switch answer {
		case 'y':
			// proceed to generation
		case 'n':
			return nil
		default:
			return fmt.Errorf("rsafile: aborting")
		}
	default:
		return fmt.Errorf("rsafile: creating %s: %w", keyDir, err)
	}

	fmt.Fprint(out, "Generating key pair...")
	priv, err := rsakey.GenerateKeyPair(keyBits)
	if err != nil {
		return fmt.Errorf("rsafile: generating key pair: %w", err)
	}
	fmt.Fprintln(out, " Done.")

	if err := keystore.SaveKeypair(keyDir, priv); err != nil {
		return err
	}
	priv.Zero()
	return nil
}

func firstNonNewlineByte(s string) byte {
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' && s[i] != '\r' {
			return s[i]
		}
	}
	return 0
}

func runEncrypt(path string) error {
	pub, err := keystore.LoadPublic(keyDir)
	if err != nil {
		return err
	}

	plaintext, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("rsafile: reading %s: %w", path, err)
	}

	ciphertext, err := blockcodec.Encrypt(plaintext, pub)
	if err != nil {
		return fmt.Errorf("rsafile: encrypting %s: %w", path, err)
	}

	if err := writeFileAtomic("encrypted", ciphertext); err != nil {
		return fmt.Errorf("rsafile: writing encrypted: %w", err)
	}
	return nil
}

func runDecrypt(path string) error {
	priv, err := keystore.LoadPrivate(keyDir)
	if err != nil {
		return err
	}
	defer priv.Zero()

	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("rsafile: reading %s: %w", path, err)
	}

	plaintext, err := blockcodec.Decrypt(ciphertext, priv)
	if err != nil {
		return fmt.Errorf("rsafile: decrypting %s: %w", path, err)
	}

	if err := writeFileAtomic("decrypted", plaintext); err != nil {
		return fmt.Errorf("rsafile: writing decrypted: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to name via a temp file in the same
// directory, renamed into place on success, so a cancelled or failed
// invocation never leaves a corrupt output file at name.
func writeFileAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(".", ".tmp-"+name+"-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, name)
}
