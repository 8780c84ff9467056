package contributions

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, logger: slog.Default()}
}

func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *Service) LookupContribution(ctx context.Context, id string) (Contribution, error) {
	var c Contribution
	err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Contribution{}, ErrNotFound
	}
	if err != nil {
		return Contribution{}, err
	}
	return c, nil
}

// MarkContributionPaid settles the contribution against a payment reference.
// Idempotent on contribution id: a second call for an already-paid row is a
// no-op, regardless of which reference settled it first.
func (s *Service) MarkContributionPaid(ctx context.Context, id, paymentReference string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c Contribution
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&c, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if c.Status == StatusPaid {
			s.logger.InfoContext(ctx, "contribution already settled",
				"contribution_id", id, "payment_reference", paymentReference)
			return nil
		}

		now := time.Now()
		return tx.WithContext(ctx).Model(&Contribution{}).
			Where("id = ?", c.ID).
			Updates(map[string]any{
				"status":            StatusPaid,
				"payment_reference": paymentReference,
				"paid_at":           &now,
				"updated_at":        now,
			}).Error
	})
}
