// Package iphash anonymizes client IP addresses with a keyed hash.
package iphash

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Hasher produces stable, secret-keyed digests of IP addresses.
type Hasher struct {
	key [32]byte
}

// New derives a 32-byte BLAKE2b key from secret, so any secret length works.
func New(secret string) *Hasher {
	return &Hasher{key: blake2b.Sum256([]byte(secret))}
}

// Hash returns the hex digest of ip, or "" for an empty ip.
func (h *Hasher) Hash(ip string) string {
	if ip == "" {
		return ""
	}
	mac, err := blake2b.New256(h.key[:])
	if err != nil {
		// only fails for keys longer than 64 bytes
		panic(err)
	}
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))
}
