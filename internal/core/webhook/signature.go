package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the hex-encoded HMAC-SHA256 of the JSON payload, sent to
// subscribers as X-Webhook-Signature so they can prove payload authenticity.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a received signature in constant time. Subscriber-side
// counterpart of Sign.
func Verify(secret string, payload []byte, signature string) bool {
	expected, err := hex.DecodeString(Sign(secret, payload))
	if err != nil {
		return false
	}
	received, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, received)
}
