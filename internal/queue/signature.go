package queue

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// SignatureHeader carries the queue provider's delivery signature.
const SignatureHeader = "Queue-Signature"

// ErrMissingSignature is returned when a delivery carries no signature header.
var ErrMissingSignature = errors.New("jobrelay: missing signature header")

// ErrBadSignature is returned when a signature matches neither signing key.
var ErrBadSignature = errors.New("jobrelay: invalid signature")

// Sign computes the hex HMAC-SHA256 signature over the delivery URL and
// the raw request body. Binding the URL prevents replaying a valid
// delivery against a different endpoint.
func Sign(key, url string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(url))
	mac.Write([]byte("\n"))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verifier checks delivery signatures against the current signing key
// and, to support zero-downtime key rotation, an optional next key.
type Verifier struct {
	currentKey string
	nextKey    string
}

// NewVerifier creates a Verifier. nextKey may be empty when no rotation
// is in progress.
func NewVerifier(currentKey, nextKey string) *Verifier {
	return &Verifier{currentKey: currentKey, nextKey: nextKey}
}

// Verify checks sig over the exact raw body bytes and the URL the queue
// believes it called. A signature valid under either key is accepted.
func (v *Verifier) Verify(sig, url string, body []byte) error {
	if sig == "" {
		return ErrMissingSignature
	}
	if v.match(v.currentKey, sig, url, body) {
		return nil
	}
	if v.nextKey != "" && v.match(v.nextKey, sig, url, body) {
		return nil
	}
	return ErrBadSignature
}

func (v *Verifier) match(key, sig, url string, body []byte) bool {
	if key == "" {
		return false
	}
	expected := Sign(key, url, body)
	return hmac.Equal([]byte(sig), []byte(expected))
}
