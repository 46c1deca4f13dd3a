// Package payment verifies payment-gateway callbacks. The gateway signs
// the string "<gatewayOrderID>|<paymentID>" with HMAC-SHA256 using the
// merchant secret and sends the lowercase hex digest as the signature.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/kvvPro/foodcourt/internal/model"
)

// Sign computes the expected signature for the given gateway references.
func Sign(gatewayOrderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature and compares it constant-time against the
// supplied one. A mismatch returns (false, nil); only malformed input is an
// error.
func Verify(gatewayOrderID, paymentID, signature, secret string) (bool, error) {
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return false, fmt.Errorf("%w: gateway order id, payment id and signature are required", model.ErrInvalidRequest)
	}
	if secret == "" {
		return false, fmt.Errorf("%w: merchant secret is not configured", model.ErrInvalidRequest)
	}

	expected := Sign(gatewayOrderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}
