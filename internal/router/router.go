// Package router wires HTTP routes to handlers.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mishasvintus/delivery_team_backend/internal/handler"
	"github.com/mishasvintus/delivery_team_backend/internal/middleware"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Team         *handler.TeamHandler
	Payment      *handler.PaymentHandler
	Notification *handler.NotificationHandler
}

// Options configures cross-cutting middleware.
type Options struct {
	JWTSecret      []byte
	Users          middleware.UserLookup
	RequestTimeout time.Duration
	Log            *slog.Logger
}

// SetupRoutes configures all API routes.
func SetupRoutes(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(opts.Log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", middleware.Auth(opts.JWTSecret, opts.Users, opts.Log))

	// Live sessions outlive the request timeout.
	api.GET("/notifications/ws", h.Notification.Stream)

	timed := api.Group("", middleware.Timeout(opts.RequestTimeout))

	// Team endpoints
	timed.POST("/teams", h.Team.CreateTeam)
	timed.GET("/teams/my-team", h.Team.GetMyTeam)
	timed.GET("/teams/:id", h.Team.GetTeam)
	timed.DELETE("/teams/:id", h.Team.DeleteTeam)
	timed.POST("/teams/:id/invite", h.Team.Invite)
	timed.POST("/teams/:id/accept-invitation", h.Team.AcceptInvitation)
	timed.POST("/teams/:id/reject-invitation", h.Team.RejectInvitation)
	timed.DELETE("/teams/:id/members/:userId", h.Team.RemoveMember)

	// Payment endpoints
	timed.POST("/payments/create-customer", h.Payment.CreateCustomer)
	timed.GET("/payments/payment-methods", h.Payment.ListPaymentMethods)
	timed.DELETE("/payments/payment-methods/:id", h.Payment.DeletePaymentMethod)
	timed.POST("/payments/set-default-payment-method", h.Payment.SetDefaultPaymentMethod)
	timed.GET("/payments/check-payment-method", h.Payment.CheckPaymentMethod)
	timed.POST("/payments/charge", h.Payment.Charge)
	timed.POST("/payments/sync-charge", h.Payment.SyncCharge)

	// Notification endpoints
	timed.GET("/notifications", h.Notification.List)
	timed.PATCH("/notifications/read-all", h.Notification.MarkAllRead)
	timed.PATCH("/notifications/:id/read", h.Notification.MarkRead)

	return r
}
