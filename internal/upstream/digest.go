package upstream

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Digest is the fixed one-way keyed transform applied to a password before
// it goes on the wire. The key comes from private config so digests are
// stable across restarts but useless without it.
type Digest struct {
	key []byte
}

func NewDigest(key string) *Digest {
	return &Digest{key: []byte(key)}
}

func (d *Digest) Sum(password string) string {
	mac := hmac.New(sha256.New, d.key)
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}
