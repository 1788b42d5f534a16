package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign_IsHexHMACSHA256(t *testing.T) {
	secret := "shhh"
	payload := []byte(`{"event":"lead.status_changed"}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, expected, Sign(secret, payload))
	assert.Len(t, Sign(secret, payload), 64)
}

func TestSign_Deterministic(t *testing.T) {
	payload := []byte(`{"a":1}`)
	assert.Equal(t, Sign("k", payload), Sign("k", payload))
	assert.NotEqual(t, Sign("k", payload), Sign("other", payload))
	assert.NotEqual(t, Sign("k", payload), Sign("k", []byte(`{"a":2}`)))
}

func TestVerify(t *testing.T) {
	secret := "s3cret"
	payload := []byte(`{"event":"deal.stage_changed","data":{}}`)
	signature := Sign(secret, payload)

	assert.True(t, Verify(secret, payload, signature))
	assert.False(t, Verify("wrong", payload, signature))
	assert.False(t, Verify(secret, []byte("tampered"), signature))
	assert.False(t, Verify(secret, payload, "not-hex!"))
	assert.False(t, Verify(secret, payload, ""))
}
