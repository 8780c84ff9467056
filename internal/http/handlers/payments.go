package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Timiochukwu/pension-management-system-sub001/internal/http/middleware"
	"github.com/Timiochukwu/pension-management-system-sub001/internal/http/validation"
	"github.com/Timiochukwu/pension-management-system-sub001/internal/modules/contributions"
	"github.com/Timiochukwu/pension-management-system-sub001/internal/modules/payments"
	"github.com/Timiochukwu/pension-management-system-sub001/internal/shared/apperr"
	"github.com/Timiochukwu/pension-management-system-sub001/pkg/view"
)

type PaymentHandler struct {
	Logger *slog.Logger
	Svc    *payments.Service
}

func NewPaymentHandler(logger *slog.Logger, svc *payments.Service) *PaymentHandler {
	return &PaymentHandler{Logger: logger, Svc: svc}
}

type initializeInput struct {
	ContributionID string `json:"contribution_id" binding:"required,max=36"`
	Amount         string `json:"amount" binding:"required,max=32"`
	Gateway        string `json:"gateway" binding:"required,oneof=paystack flutterwave manual"`
	PayerContact   string `json:"payer_contact" binding:"required,max=255"`
	CallbackURL    string `json:"callback_url" binding:"omitempty,url,max=512"`
}

// POST /payments/initialize
func (h *PaymentHandler) Initialize(c *gin.Context) {
	var in initializeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Request validation failed.", fields))
		return
	}

	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("Request validation failed.",
			map[string]string{"amount": "Must be a decimal amount, e.g. \"50000.00\"."}))
		return
	}
	if !amount.IsPositive() {
		middleware.Fail(c, apperr.InvalidErr("Request validation failed.",
			map[string]string{"amount": "Must be greater than zero."}))
		return
	}

	p, err := h.Svc.InitializePayment(c.Request.Context(), payments.InitializePaymentInput{
		ContributionID: in.ContributionID,
		Amount:         amount,
		Gateway:        in.Gateway,
		PayerContact:   in.PayerContact,
		CallbackURL:    in.CallbackURL,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": view.FromPayment(p)})
}

// GET /payments/:reference
func (h *PaymentHandler) Get(c *gin.Context) {
	p, err := h.Svc.GetPayment(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": view.FromPayment(p)})
}

// GET /payments/verify/:reference
func (h *PaymentHandler) Verify(c *gin.Context) {
	h.verify(c, c.Param("reference"))
}

// GET /payments/callback?reference=...
// The gateway redirect may carry status fields in the query string; they are
// never trusted. Only the reference is read, and the outcome comes from a
// fresh verify call.
func (h *PaymentHandler) Callback(c *gin.Context) {
	ref := c.Query("reference")
	if ref == "" {
		ref = c.Query("trxref") // some gateways use their own param name
	}
	if ref == "" {
		middleware.Fail(c, apperr.InvalidErr("Missing payment reference.", nil))
		return
	}
	h.verify(c, ref)
}

func (h *PaymentHandler) verify(c *gin.Context, ref string) {
	p, err := h.Svc.VerifyPayment(c.Request.Context(), ref)
	if err != nil && !errors.Is(err, payments.ErrContributionSync) {
		h.fail(c, err)
		return
	}
	// ErrContributionSync: the payment itself is settled; the warning is
	// already logged for the reconciliation job.
	c.JSON(http.StatusOK, gin.H{"payment": view.FromPayment(p)})
}

func (h *PaymentHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, contributions.ErrNotFound):
		middleware.Fail(c, apperr.NotFoundErr("Contribution not found."))
	case errors.Is(err, payments.ErrPaymentNotFound):
		middleware.Fail(c, apperr.NotFoundErr("Payment not found."))
	case errors.Is(err, payments.ErrAlreadyPaid):
		middleware.Fail(c, apperr.ConflictErr("Contribution is already paid."))
	case errors.Is(err, payments.ErrAmountMismatch):
		middleware.Fail(c, apperr.InvalidErr("Amount does not match the outstanding contribution amount.", nil))
	case errors.Is(err, payments.ErrUnknownGateway):
		middleware.Fail(c, apperr.InvalidErr("Unknown payment gateway.", nil))
	case errors.Is(err, payments.ErrInvalidTransition):
		middleware.Fail(c, apperr.ConflictErr("Payment status does not allow this operation."))
	case errors.Is(err, payments.ErrGatewayRejected):
		middleware.Fail(c, apperr.InvalidErr("Payment gateway rejected the request.", nil))
	case errors.Is(err, payments.ErrGatewayUnavailable),
		errors.Is(err, payments.ErrVerificationFailed):
		middleware.Fail(c, apperr.UnavailableErr("Payment gateway is currently unavailable. Please try again.", err))
	default:
		middleware.Fail(c, apperr.Wrap(err))
	}
}
