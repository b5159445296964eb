package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"learnhub/internal/domain"
	"learnhub/internal/models"
)

const tripaySignatureHeader = "X-Callback-Signature"

// Tripay signs callbacks with hmac-sha256 over the raw body using the
// merchant private key, delivered in the X-Callback-Signature header.
type TripayVerifier struct {
	credentials CredentialSource
}

// NewTripayVerifier returns verifier.
func NewTripayVerifier(credentials CredentialSource) *TripayVerifier {
	return &TripayVerifier{credentials: credentials}
}

type tripayCallback struct {
	MerchantRef string `json:"merchant_ref"`
	Status      string `json:"status"`
}

// Gateway returns the gateway identifier.
func (v *TripayVerifier) Gateway() string {
	return models.PaymentTypeTripay
}

// Verify authenticates the callback against its signature header.
func (v *TripayVerifier) Verify(ctx context.Context, rawBody []byte, headers http.Header) (*Result, error) {
	signature := headers.Get(tripaySignatureHeader)
	if signature == "" {
		return nil, fmt.Errorf("tripay: missing signature header: %w", domain.ErrSignature)
	}

	setting, err := v.credentials.GetByGateway(ctx, models.PaymentTypeTripay)
	if err != nil {
		return nil, fmt.Errorf("tripay: resolve credentials: %w", err)
	}

	mac := hmac.New(sha256.New, []byte(setting.PrivateKey))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, fmt.Errorf("tripay: signature mismatch: %w", domain.ErrSignature)
	}

	var callback tripayCallback
	if err := json.Unmarshal(rawBody, &callback); err != nil {
		return nil, fmt.Errorf("tripay: decode callback: %w", domain.ErrSignature)
	}
	if callback.MerchantRef == "" {
		return nil, fmt.Errorf("tripay: missing merchant_ref: %w", domain.ErrSignature)
	}

	return &Result{
		BookingTrxID: callback.MerchantRef,
		Paid:         callback.Status == "PAID",
		RawStatus:    callback.Status,
	}, nil
}
