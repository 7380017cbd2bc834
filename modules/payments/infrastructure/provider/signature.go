// Package provider implements payment gateways: Razorpay over its REST API
// and a local sandbox that signs callbacks the same way.
package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the checkout signature: hex HMAC-SHA256 of
// "<order id>|<payment id>" keyed with the account secret.
func Sign(secret, providerOrderID, providerPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(providerOrderID + "|" + providerPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks signature in constant time.
func Verify(secret, providerOrderID, providerPaymentID, signature string) bool {
	want := Sign(secret, providerOrderID, providerPaymentID)
	return hmac.Equal([]byte(want), []byte(signature))
}
