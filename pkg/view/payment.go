package view

import (
	"time"

	"github.com/Timiochukwu/pension-management-system-sub001/internal/modules/payments"
)

type Payment struct {
	Reference        string     `json:"reference"`
	ContributionID   string     `json:"contribution_id"`
	Gateway          string     `json:"gateway"`
	Status           string     `json:"status"`
	Amount           string     `json:"amount"`
	Currency         string     `json:"currency"`
	AuthorizationURL *string    `json:"authorization_url,omitempty"`
	GatewayRef       *string    `json:"gateway_ref,omitempty"`
	FailureReason    *string    `json:"failure_reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
}

func FromPayment(p payments.Payment) Payment {
	return Payment{
		Reference:        p.Reference,
		ContributionID:   p.ContributionID,
		Gateway:          p.Gateway,
		Status:           p.Status,
		Amount:           p.Amount.StringFixed(2),
		Currency:         p.Currency,
		AuthorizationURL: p.AuthorizationURL,
		GatewayRef:       p.GatewayRef,
		FailureReason:    p.FailureReason,
		CreatedAt:        p.CreatedAt,
		PaidAt:           p.PaidAt,
	}
}
