package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Timiochukwu/pension-management-system-sub001/internal/modules/contributions"
	"github.com/Timiochukwu/pension-management-system-sub001/internal/shared/reference"
)

// ContributionSynchronizer is the consumed contribution collaborator. Both
// calls are assumed idempotent on contribution id.
type ContributionSynchronizer interface {
	LookupContribution(ctx context.Context, id string) (contributions.Contribution, error)
	MarkContributionPaid(ctx context.Context, id, paymentReference string) error
}

// Service is the payment orchestrator: the only writer of payment status.
type Service struct {
	db       *gorm.DB
	gateways Gateways
	contribs ContributionSynchronizer
	logger   *slog.Logger
	locks    *refLocks
}

func NewService(db *gorm.DB, gateways Gateways, contribs ContributionSynchronizer) *Service {
	return &Service{
		db:       db,
		gateways: gateways,
		contribs: contribs,
		logger:   slog.Default(),
		locks:    newRefLocks(),
	}
}

func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

type InitializePaymentInput struct {
	ContributionID string
	Amount         decimal.Decimal
	Gateway        string
	PayerContact   string
	CallbackURL    string
}

func (s *Service) InitializePayment(ctx context.Context, in InitializePaymentInput) (Payment, error) {
	gw := s.gateways.Get(in.Gateway)
	if gw == nil {
		return Payment{}, fmt.Errorf("%w: %q", ErrUnknownGateway, in.Gateway)
	}

	contrib, err := s.contribs.LookupContribution(ctx, in.ContributionID)
	if err != nil {
		return Payment{}, err
	}
	if contrib.Status == contributions.StatusPaid {
		return Payment{}, ErrAlreadyPaid
	}
	// Exact decimal equality, no tolerance. Mismatch is a rejection, never a
	// correction.
	if !in.Amount.Equal(contrib.Amount) {
		return Payment{}, fmt.Errorf("%w: got %s, outstanding %s",
			ErrAmountMismatch, in.Amount.String(), contrib.Amount.String())
	}

	now := time.Now()
	p := Payment{
		ID:             uuid.NewString(),
		Reference:      reference.NewPayment(),
		ContributionID: contrib.ID,
		Gateway:        gw.Name(),
		Status:         StatusInitiated,
		Amount:         in.Amount,
		Currency:       contrib.Currency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	// The row persists even if the gateway call below fails: audit trail plus
	// retry path (a retry is a new payment with a new reference).
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return Payment{}, err
	}

	res, gerr := gw.Initialize(ctx, InitializeRequest{
		Reference:    p.Reference,
		Amount:       p.Amount,
		Currency:     p.Currency,
		PayerContact: in.PayerContact,
		CallbackURL:  in.CallbackURL,
	})
	if gerr != nil {
		reason := truncate(gerr.Error(), 250)
		if uerr := s.db.WithContext(ctx).Model(&Payment{}).
			Where("id = ?", p.ID).
			Updates(map[string]any{
				"status":         StatusFailed,
				"failure_reason": reason,
				"updated_at":     time.Now(),
			}).Error; uerr != nil {
			s.logger.ErrorContext(ctx, "failed to record gateway initialize failure",
				"reference", p.Reference, "err", uerr)
		}
		p.Status = StatusFailed
		p.FailureReason = &reason
		return p, gerr
	}

	updates := map[string]any{
		"status":     StatusPending,
		"updated_at": time.Now(),
	}
	if res.GatewayRef != "" {
		updates["gateway_ref"] = res.GatewayRef
		p.GatewayRef = &res.GatewayRef
	}
	if res.AuthorizationURL != "" {
		updates["authorization_url"] = res.AuthorizationURL
		p.AuthorizationURL = &res.AuthorizationURL
	}
	if err := s.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ?", p.ID).
		Updates(updates).Error; err != nil {
		return Payment{}, err
	}
	p.Status = StatusPending

	s.logger.InfoContext(ctx, "payment initialized",
		"reference", p.Reference, "gateway", p.Gateway, "contribution_id", p.ContributionID,
		"amount", p.Amount.String())
	return p, nil
}

// VerifyPayment drives a payment to a terminal outcome using the gateway as
// the source of truth. Transitions for one reference are serialized, so the
// callback redirect and the webhook push cannot both advance the same row.
func (s *Service) VerifyPayment(ctx context.Context, ref string) (Payment, error) {
	release := s.locks.Acquire(ref)
	defer release()

	var p Payment
	err := s.db.WithContext(ctx).First(&p, "reference = ?", ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Payment{}, ErrPaymentNotFound
	}
	if err != nil {
		return Payment{}, err
	}

	// Idempotency short-circuit: a terminal record is returned as-is, the
	// gateway is not called again.
	if IsTerminal(p.Status) {
		return p, nil
	}
	// Manual payments settle only through SettleManual.
	if p.Gateway == GatewayManual {
		return p, nil
	}

	gw := s.gateways.Get(p.Gateway)
	if gw == nil {
		return Payment{}, fmt.Errorf("%w: %q", ErrUnknownGateway, p.Gateway)
	}

	if err := s.setStatus(ctx, p.ID, map[string]any{"status": StatusProcessing}); err != nil {
		return Payment{}, err
	}
	p.Status = StatusProcessing

	vres, verr := gw.Verify(ctx, ref)
	if verr != nil {
		reason := truncate(verr.Error(), 250)
		if err := s.setStatus(ctx, p.ID, map[string]any{
			"status":         StatusFailed,
			"failure_reason": reason,
		}); err != nil {
			return Payment{}, err
		}
		p.Status = StatusFailed
		p.FailureReason = &reason
		s.logger.WarnContext(ctx, "payment verification failed at gateway",
			"reference", ref, "gateway", p.Gateway, "err", verr)
		return p, fmt.Errorf("%w: %v", ErrVerificationFailed, verr)
	}

	if !vres.Succeeded {
		reason := "gateway reported payment not successful"
		updates := map[string]any{
			"status":         StatusFailed,
			"failure_reason": reason,
		}
		if len(vres.RawPayload) > 0 {
			updates["gateway_payload"] = vres.RawPayload
		}
		if err := s.setStatus(ctx, p.ID, updates); err != nil {
			return Payment{}, err
		}
		p.Status = StatusFailed
		p.FailureReason = &reason
		return p, nil
	}

	now := time.Now()
	updates := map[string]any{
		"status":         StatusSucceeded,
		"failure_reason": nil,
		"paid_at":        &now,
	}
	if vres.GatewayRef != "" {
		updates["gateway_ref"] = vres.GatewayRef
		p.GatewayRef = &vres.GatewayRef
	}
	if len(vres.RawPayload) > 0 {
		updates["gateway_payload"] = vres.RawPayload
	}
	if err := s.setStatus(ctx, p.ID, updates); err != nil {
		return Payment{}, err
	}
	p.Status = StatusSucceeded
	p.PaidAt = &now

	s.logger.InfoContext(ctx, "payment succeeded",
		"reference", ref, "gateway", p.Gateway, "contribution_id", p.ContributionID)

	// Money received is a fact: the payment stays Succeeded even if the
	// contribution write fails. The error is surfaced as a reconciliation
	// warning, never as a rollback.
	if err := s.contribs.MarkContributionPaid(ctx, p.ContributionID, p.Reference); err != nil {
		s.logger.ErrorContext(ctx, "reconciliation_needed: contribution sync failed after successful payment",
			"reference", ref, "contribution_id", p.ContributionID, "err", err)
		return p, fmt.Errorf("%w: %v", ErrContributionSync, err)
	}

	return p, nil
}

func (s *Service) GetPayment(ctx context.Context, ref string) (Payment, error) {
	var p Payment
	err := s.db.WithContext(ctx).First(&p, "reference = ?", ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Payment{}, ErrPaymentNotFound
	}
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

// SettleManual confirms a manual-gateway payment after out-of-band receipt of
// funds (admin action). Guarded: only a Pending manual payment settles.
func (s *Service) SettleManual(ctx context.Context, ref string) (Payment, error) {
	release := s.locks.Acquire(ref)
	defer release()

	p, err := s.GetPayment(ctx, ref)
	if err != nil {
		return Payment{}, err
	}
	if p.Status == StatusSucceeded {
		return p, nil
	}
	if p.Gateway != GatewayManual || p.Status != StatusPending {
		return Payment{}, ErrInvalidTransition
	}

	now := time.Now()
	if err := s.setStatus(ctx, p.ID, map[string]any{
		"status":         StatusSucceeded,
		"failure_reason": nil,
		"paid_at":        &now,
	}); err != nil {
		return Payment{}, err
	}
	p.Status = StatusSucceeded
	p.PaidAt = &now

	s.logger.InfoContext(ctx, "manual payment settled", "reference", ref, "contribution_id", p.ContributionID)

	if err := s.contribs.MarkContributionPaid(ctx, p.ContributionID, p.Reference); err != nil {
		s.logger.ErrorContext(ctx, "reconciliation_needed: contribution sync failed after manual settlement",
			"reference", ref, "contribution_id", p.ContributionID, "err", err)
		return p, fmt.Errorf("%w: %v", ErrContributionSync, err)
	}
	return p, nil
}

// CancelPayment transitions Pending -> Cancelled (user or admin signal).
func (s *Service) CancelPayment(ctx context.Context, ref string) (Payment, error) {
	return s.closePending(ctx, ref, StatusCancelled)
}

// ExpirePayment transitions Pending -> Expired (timeout sweep signal).
func (s *Service) ExpirePayment(ctx context.Context, ref string) (Payment, error) {
	return s.closePending(ctx, ref, StatusExpired)
}

func (s *Service) closePending(ctx context.Context, ref, to string) (Payment, error) {
	release := s.locks.Acquire(ref)
	defer release()

	p, err := s.GetPayment(ctx, ref)
	if err != nil {
		return Payment{}, err
	}
	if p.Status == to {
		return p, nil
	}
	if p.Status != StatusPending {
		return Payment{}, ErrInvalidTransition
	}

	if err := s.setStatus(ctx, p.ID, map[string]any{"status": to}); err != nil {
		return Payment{}, err
	}
	p.Status = to
	s.logger.InfoContext(ctx, "payment closed", "reference", ref, "status", to)
	return p, nil
}

func (s *Service) setStatus(ctx context.Context, id string, updates map[string]any) error {
	updates["updated_at"] = time.Now()
	return s.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
