package contributions

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

type Contribution struct {
	ID        string          `gorm:"type:char(36);primaryKey"`
	MemberID  string          `gorm:"type:char(36);not null;index:ix_contributions_member_id"`
	Period    string          `gorm:"type:char(7);not null"` // YYYY-MM
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency  string          `gorm:"type:char(3);not null;default:'NGN'"`
	Status    string          `gorm:"type:varchar(32);not null"`

	// Set once, when a payment settles the contribution.
	PaymentReference *string    `gorm:"type:varchar(64)"`
	PaidAt           *time.Time `gorm:"type:datetime(3)"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Contribution) TableName() string { return "contributions" }
