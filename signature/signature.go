package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

/* Hex-encoded HMAC-SHA256 over the raw payload bytes
 * Destinations recompute the signature with the shared route secret
 * and compare it against the x-webhookhub-signature header
 */

// Sign computes the delivery signature for a payload under a route secret.
// Deterministic: identical secret and payload always produce the same signature.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify is for destinations to verify an incoming delivery.
func Verify(secret string, payload []byte, signature string) bool {
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
