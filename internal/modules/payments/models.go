package payments

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	StatusInitiated  = "initiated"
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
	StatusExpired    = "expired"
)

// IsTerminal reports whether no further automatic transition can leave the
// status. Failed is terminal for the attempt only; a retry is a fresh payment
// with a fresh reference.
func IsTerminal(status string) bool {
	switch status {
	case StatusSucceeded, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

type Payment struct {
	ID             string          `gorm:"type:char(36);primaryKey"`
	Reference      string          `gorm:"type:varchar(64);not null;uniqueIndex:ux_payments_reference"`
	ContributionID string          `gorm:"type:char(36);not null;index:ix_payments_contribution_id"`
	Gateway        string          `gorm:"type:varchar(32);not null"`
	Status         string          `gorm:"type:varchar(32);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency       string          `gorm:"type:char(3);not null;default:'NGN'"`

	GatewayRef       *string        `gorm:"type:varchar(128)"`
	AuthorizationURL *string        `gorm:"type:varchar(512)"`
	GatewayPayload   datatypes.JSON `gorm:"type:json"`
	FailureReason    *string        `gorm:"type:varchar(255)"`

	CreatedAt time.Time  `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time  `gorm:"type:datetime(3);not null"`
	PaidAt    *time.Time `gorm:"type:datetime(3)"`
}

func (Payment) TableName() string { return "payments" }
