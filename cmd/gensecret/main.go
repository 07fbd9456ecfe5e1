package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

const SecretKeyBytesLen = 32

// Prints a line ready to be appended to '.env' file
func main() {
	fs := pflag.NewFlagSet("gensecret", pflag.ExitOnError)
	n := fs.IntP("bytes", "n", SecretKeyBytesLen, "Length of the key in bytes")
	_ = fs.Parse(os.Args[1:])

	if err := writeSecret(os.Stdout, rand.Reader, *n); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}
}

func writeSecret(w io.Writer, random io.Reader, n int) error {
	if n < 16 {
		return fmt.Errorf("key of %d bytes is too short, use at least 16", n)
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(random, b); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "SECRET_KEY=%s\n", hex.EncodeToString(b))
	return err
}
