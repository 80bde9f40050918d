package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"subscription.updated"}`)
	secret := "whsec_test"

	assert.True(t, verifyWebhookSignature(body, signBody(body, secret), secret))

	// Case of the hex digest must not matter.
	upper := strings.ToUpper(signBody(body, secret))
	assert.True(t, verifyWebhookSignature(body, upper, secret))

	assert.False(t, verifyWebhookSignature(body, signBody(body, "wrong"), secret))
	assert.False(t, verifyWebhookSignature([]byte("tampered"), signBody(body, secret), secret))
	assert.False(t, verifyWebhookSignature(body, "", secret))
	assert.False(t, verifyWebhookSignature(body, signBody(body, secret), ""))
}

func TestIsSubscriptionEvent(t *testing.T) {
	assert.True(t, isSubscriptionEvent("subscription.created"))
	assert.True(t, isSubscriptionEvent("subscription.updated"))
	assert.True(t, isSubscriptionEvent("Subscription.Canceled"))
	assert.True(t, isSubscriptionEvent("  subscription.updated  "))

	assert.False(t, isSubscriptionEvent("invoice.paid"))
	assert.False(t, isSubscriptionEvent(""))
}

func TestEntitledStatus(t *testing.T) {
	assert.True(t, entitledStatus("active"))
	assert.True(t, entitledStatus("trialing"))
	assert.True(t, entitledStatus("ACTIVE"))

	assert.False(t, entitledStatus("past_due"))
	assert.False(t, entitledStatus("canceled"))
	assert.False(t, entitledStatus(""))
	assert.False(t, entitledStatus("something-new"))
}
