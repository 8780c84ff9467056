package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GatewayEvent journals every webhook that passed the signature gate.
// unique(gateway, event_hash) dedupes redelivered notifications.
type GatewayEvent struct {
	ID          string         `gorm:"type:char(36);primaryKey"`
	Gateway     string         `gorm:"type:varchar(32);not null;uniqueIndex:ux_gateway_events_gateway_hash,priority:1"`
	EventHash   string         `gorm:"type:char(64);not null;uniqueIndex:ux_gateway_events_gateway_hash,priority:2"`
	Reference   *string        `gorm:"type:varchar(64)"`
	PayloadJSON datatypes.JSON `gorm:"type:json;not null"`

	ReceivedAt   time.Time  `gorm:"type:datetime(3);not null"`
	ProcessedAt  *time.Time `gorm:"type:datetime(3)"`
	ProcessError *string    `gorm:"type:varchar(255)"`
}

func (GatewayEvent) TableName() string { return "gateway_events" }

// HandleWebhook processes a provider push notification. It never fails from
// the provider's point of view: an invalid signature, an unknown reference
// and an internal error all end here, logged but swallowed, so the HTTP
// boundary answers 200 no matter what and leaks nothing to an attacker.
func (s *Service) HandleWebhook(ctx context.Context, gatewayName, signatureHeader string, rawPayload []byte) {
	gw := s.gateways.Get(gatewayName)
	if gw == nil {
		s.logger.WarnContext(ctx, "webhook for unknown gateway dropped", "gateway", gatewayName)
		return
	}

	if !gw.VerifySignature(rawPayload, signatureHeader) {
		// Loud server-side, silent to the caller.
		s.logger.ErrorContext(ctx, "webhook signature rejected",
			"gateway", gatewayName, "payload_bytes", len(rawPayload))
		return
	}

	sum := sha256.Sum256(rawPayload)
	ev := GatewayEvent{
		ID:          uuid.NewString(),
		Gateway:     gatewayName,
		EventHash:   hex.EncodeToString(sum[:]),
		PayloadJSON: datatypes.JSON(rawPayload),
		ReceivedAt:  time.Now(),
	}

	ref := gw.ExtractReference(rawPayload)
	if ref != "" {
		ev.Reference = &ref
	}

	if err := s.db.WithContext(ctx).Create(&ev).Error; err != nil {
		if isDup(err) {
			s.logger.InfoContext(ctx, "webhook event deduplicated",
				"gateway", gatewayName, "event_hash", ev.EventHash)
			return
		}
		s.logger.ErrorContext(ctx, "failed to journal webhook event",
			"gateway", gatewayName, "err", err)
		// Still attempt processing; the journal is an audit aid, not a gate.
	}

	if ref == "" {
		s.logger.WarnContext(ctx, "webhook payload carries no payment reference, ignored",
			"gateway", gatewayName)
		s.finishEvent(ctx, ev.ID, "no payment reference in payload")
		return
	}

	_, verr := s.VerifyPayment(ctx, ref)
	switch {
	case verr == nil:
		s.finishEvent(ctx, ev.ID, "")
	case errors.Is(verr, ErrPaymentNotFound):
		s.logger.WarnContext(ctx, "webhook references unknown payment, ignored",
			"gateway", gatewayName, "reference", ref)
		s.finishEvent(ctx, ev.ID, "unknown payment reference")
	case errors.Is(verr, ErrContributionSync):
		// Payment is settled; the sync warning is already logged loudly.
		s.finishEvent(ctx, ev.ID, truncate(verr.Error(), 250))
	default:
		s.logger.ErrorContext(ctx, "webhook-triggered verification failed",
			"gateway", gatewayName, "reference", ref, "err", verr)
		s.finishEvent(ctx, ev.ID, truncate(verr.Error(), 250))
	}
}

func (s *Service) finishEvent(ctx context.Context, eventID, processError string) {
	now := time.Now()
	updates := map[string]any{"processed_at": &now}
	if processError != "" {
		updates["process_error"] = processError
	}
	if err := s.db.WithContext(ctx).Model(&GatewayEvent{}).
		Where("id = ?", eventID).
		Updates(updates).Error; err != nil {
		s.logger.ErrorContext(ctx, "failed to mark webhook event processed",
			"event_id", eventID, "err", err)
	}
}

func isDup(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite (tests)
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
