package manual

import (
	"context"
	"errors"

	"github.com/Timiochukwu/pension-management-system-sub001/internal/modules/payments"
)

var ErrConfirmationRequired = errors.New("manual payment requires out-of-band confirmation")

// Gateway is the no-op adapter for bank-transfer style payments confirmed by
// an administrator. Initialize produces no hosted page; settlement happens
// only through the orchestrator's SettleManual entry point.
type Gateway struct{}

func New() *Gateway { return &Gateway{} }

func (*Gateway) Name() string { return payments.GatewayManual }

func (*Gateway) SignatureHeader() string { return "" }

func (*Gateway) Initialize(_ context.Context, _ payments.InitializeRequest) (payments.InitializeResponse, error) {
	return payments.InitializeResponse{}, nil
}

func (*Gateway) Verify(_ context.Context, _ string) (payments.VerifyResponse, error) {
	return payments.VerifyResponse{}, ErrConfirmationRequired
}

// No webhook channel exists for manual payments.
func (*Gateway) VerifySignature(_ []byte, _ string) bool { return false }

func (*Gateway) ExtractReference(_ []byte) string { return "" }
