// Package webhook verifies that inbound deliveries really come from GitHub.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// SignatureHeader is the request header GitHub puts the payload HMAC in.
const SignatureHeader = "X-Hub-Signature-256"

const signaturePrefix = "sha256="

// ErrUnauthenticated is returned for a missing or mismatched signature.
// The caller must not process the payload when it sees this error.
var ErrUnauthenticated = errors.New("webhook signature verification failed")

// VerifySignature checks the HMAC-SHA256 of body against the header value
// ("sha256=<hex>") using the shared secret. The comparison is constant time.
// Each delivery is verified independently; there are no retries.
func VerifySignature(secret string, body []byte, signature string) error {
	if signature == "" {
		return ErrUnauthenticated
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := signaturePrefix + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrUnauthenticated
	}
	return nil
}
