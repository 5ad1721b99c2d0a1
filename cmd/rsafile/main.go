// Command rsafile generates RSA key pairs and uses them to encrypt or
// decrypt files with RSAES-PKCS1-v1_5, one RSA block at a time.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
