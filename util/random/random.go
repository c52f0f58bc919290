// Package random generates secrets from crypto/rand.
package random

import (
	"crypto/rand"
	"math/big"
)

const alphanumeric = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var alphabetSize = big.NewInt(int64(len(alphanumeric)))

// Seq returns n random alphanumeric characters. It panics if the system
// random source fails.
func Seq(n int) string {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = alphanumeric[idx.Int64()]
	}
	return string(b)
}
