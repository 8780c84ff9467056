package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Timiochukwu/pension-management-system-sub001/internal/modules/payments"
)

type WebhookHandler struct {
	Logger   *slog.Logger
	Svc      *payments.Service
	Gateways payments.Gateways
}

func NewWebhookHandler(logger *slog.Logger, svc *payments.Service, gateways payments.Gateways) *WebhookHandler {
	return &WebhookHandler{Logger: logger, Svc: svc, Gateways: gateways}
}

// POST /payments/webhook/:gateway
// Body is the raw provider payload; the signature header name is gateway
// specific. The response is 200 no matter what: an invalid signature must be
// indistinguishable from a processed event, and an internal error must not
// read as "retry forever" to the provider.
func (h *WebhookHandler) Handle(c *gin.Context) {
	gatewayName := c.Param("gateway")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		h.Logger.Warn("webhook body read failed", "gateway", gatewayName, "err", err)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	var sig string
	if gw := h.Gateways.Get(gatewayName); gw != nil && gw.SignatureHeader() != "" {
		sig = c.GetHeader(gw.SignatureHeader())
	}

	h.Svc.HandleWebhook(c.Request.Context(), gatewayName, sig, body)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
