package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Timiochukwu/pension-management-system-sub001/internal/config"
	"github.com/Timiochukwu/pension-management-system-sub001/internal/http/handlers"
	"github.com/Timiochukwu/pension-management-system-sub001/internal/http/middleware"
	"github.com/Timiochukwu/pension-management-system-sub001/internal/modules/contributions"
	"github.com/Timiochukwu/pension-management-system-sub001/internal/modules/payments"
	"github.com/Timiochukwu/pension-management-system-sub001/internal/modules/payments/flutterwave"
	"github.com/Timiochukwu/pension-management-system-sub001/internal/modules/payments/manual"
	"github.com/Timiochukwu/pension-management-system-sub001/internal/modules/payments/paystack"
)

func NewRouter(logger *slog.Logger, db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.ErrorHandler(logger))

	gateways := payments.Gateways{
		payments.GatewayPaystack: paystack.New(
			cfg.Paystack.SecretKey, cfg.Paystack.BaseURL, cfg.GatewayTimeout),
		payments.GatewayFlutterwave: flutterwave.New(
			cfg.Flutterwave.SecretKey, cfg.Flutterwave.SecretHash, cfg.Flutterwave.BaseURL, cfg.GatewayTimeout),
		payments.GatewayManual: manual.New(),
	}

	contribSvc := contributions.NewService(db)
	contribSvc.SetLogger(logger)

	paySvc := payments.NewService(db, gateways, contribSvc)
	paySvc.SetLogger(logger)

	paymentH := handlers.NewPaymentHandler(logger, paySvc)
	webhookH := handlers.NewWebhookHandler(logger, paySvc, gateways)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	pg := r.Group("/payments")
	{
		pg.POST("/initialize", paymentH.Initialize)
		pg.GET("/verify/:reference", paymentH.Verify)
		pg.GET("/callback", paymentH.Callback)
		pg.POST("/webhook/:gateway", webhookH.Handle)
		pg.GET("/:reference", paymentH.Get)
	}

	return r
}
