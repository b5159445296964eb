package gateway

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"learnhub/internal/domain"
	"learnhub/internal/models"
)

// Midtrans signs notifications with
// sha512(order_id + status_code + gross_amount + server_key) carried in the
// payload itself. A transaction counts as paid on settlement, or on capture
// with fraud_status accept.
type MidtransVerifier struct {
	credentials CredentialSource
}

// NewMidtransVerifier returns verifier.
func NewMidtransVerifier(credentials CredentialSource) *MidtransVerifier {
	return &MidtransVerifier{credentials: credentials}
}

type midtransNotification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}

// Gateway returns the gateway identifier.
func (v *MidtransVerifier) Gateway() string {
	return models.PaymentTypeMidtrans
}

// Verify authenticates the notification body and extracts the result.
func (v *MidtransVerifier) Verify(ctx context.Context, rawBody []byte, _ http.Header) (*Result, error) {
	var note midtransNotification
	if err := json.Unmarshal(rawBody, &note); err != nil {
		return nil, fmt.Errorf("midtrans: decode notification: %w", domain.ErrSignature)
	}
	if note.OrderID == "" || note.SignatureKey == "" {
		return nil, fmt.Errorf("midtrans: incomplete notification: %w", domain.ErrSignature)
	}

	setting, err := v.credentials.GetByGateway(ctx, models.PaymentTypeMidtrans)
	if err != nil {
		return nil, fmt.Errorf("midtrans: resolve credentials: %w", err)
	}

	sum := sha512.Sum512([]byte(note.OrderID + note.StatusCode + note.GrossAmount + setting.ServerKey))
	expected := hex.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(expected), []byte(note.SignatureKey)) != 1 {
		return nil, fmt.Errorf("midtrans: signature mismatch for %s: %w", note.OrderID, domain.ErrSignature)
	}

	paid := note.TransactionStatus == "settlement" ||
		(note.TransactionStatus == "capture" && note.FraudStatus == "accept")

	return &Result{
		BookingTrxID: note.OrderID,
		Paid:         paid,
		RawStatus:    note.TransactionStatus,
	}, nil
}
