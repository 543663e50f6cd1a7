package services

import (
	"crypto/rand"
	"math/big"
)

// Ambiguous characters (0/O, 1/I) are left out so codes can be read over the phone.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomCode(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range out {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = codeAlphabet[i%len(codeAlphabet)]
			continue
		}
		out[i] = codeAlphabet[v.Int64()]
	}
	return string(out)
}

// NewReservationCode returns a code like VJ-7KQ2MX.
func NewReservationCode() string {
	return "VJ-" + randomCode(6)
}

// NewAccessCode returns the six character boarding access code.
func NewAccessCode() string {
	return randomCode(6)
}
