package payments

import (
	"context"

	"github.com/shopspring/decimal"
)

const (
	GatewayPaystack    = "paystack"
	GatewayFlutterwave = "flutterwave"
	GatewayManual      = "manual"
)

type InitializeRequest struct {
	Reference    string
	Amount       decimal.Decimal
	Currency     string
	PayerContact string // email (or msisdn, gateway dependent)
	CallbackURL  string
}

type InitializeResponse struct {
	GatewayRef       string
	AuthorizationURL string // empty for gateways without a hosted page (manual)
}

type VerifyResponse struct {
	Succeeded  bool
	GatewayRef string
	RawPayload []byte
}

// Gateway is implemented once per payment provider. Implementations are
// stateless; all persistence belongs to the orchestrator.
type Gateway interface {
	Name() string

	Initialize(ctx context.Context, req InitializeRequest) (InitializeResponse, error)

	// Verify asks the provider for the authoritative outcome of a payment.
	// Safe to call repeatedly for the same reference.
	Verify(ctx context.Context, reference string) (VerifyResponse, error)

	// SignatureHeader names the HTTP header the provider signs webhooks with.
	SignatureHeader() string

	// VerifySignature checks a webhook body against its signature header.
	// Pure, no I/O, constant-time comparison.
	VerifySignature(payload []byte, signatureHeader string) bool

	// ExtractReference recovers our payment reference from a webhook body.
	// Returns "" when the payload carries none.
	ExtractReference(payload []byte) string
}

// Gateways is the closed set of configured providers, keyed by name.
type Gateways map[string]Gateway

func (g Gateways) Get(name string) Gateway { return g[name] }

func (g Gateways) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	return names
}
