package gateway

import (
	"context"
	"net/http"

	"learnhub/internal/models"
)

// Result is the only thing the purchase core consumes from a webhook
// exchange: which transaction the gateway is talking about and whether the
// payload reports it as paid.
type Result struct {
	BookingTrxID string
	Paid         bool
	RawStatus    string
}

// Verifier authenticates a raw webhook delivery and extracts its Result.
// Implementations return domain.ErrSignature (wrapped) when the payload
// fails authentication.
type Verifier interface {
	Gateway() string
	Verify(ctx context.Context, rawBody []byte, headers http.Header) (*Result, error)
}

// CredentialSource resolves gateway credentials per request so key rotation
// and admin edits take effect without a restart.
type CredentialSource interface {
	GetByGateway(ctx context.Context, gateway string) (*models.GatewaySetting, error)
}
