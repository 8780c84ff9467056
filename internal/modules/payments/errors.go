package payments

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrAlreadyPaid     = errors.New("contribution already paid")
	ErrAmountMismatch  = errors.New("amount does not match outstanding contribution amount")
	ErrUnknownGateway  = errors.New("unknown payment gateway")

	// Adapter failure classes. Adapters wrap one of these so the
	// orchestrator and handlers can map them without knowing the provider.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayRejected    = errors.New("payment gateway rejected request")

	ErrVerificationFailed = errors.New("payment verification failed")

	// Payment is Succeeded but the contribution could not be marked paid.
	// The payment is never rolled back; reconciliation happens out of band.
	ErrContributionSync = errors.New("contribution sync failed after successful payment")

	ErrInvalidTransition = errors.New("payment status does not allow this transition")
)
