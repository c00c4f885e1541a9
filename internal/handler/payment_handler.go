package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
	"github.com/mishasvintus/delivery_team_backend/internal/middleware"
)

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	paymentService PaymentServiceInterface
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(paymentService PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreateCustomer handles POST /api/payments/create-customer.
func (h *PaymentHandler) CreateCustomer(c *gin.Context) {
	ref, err := h.paymentService.EnsureCustomer(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, CustomerResponse{CustomerID: ref})
}

// ListPaymentMethods handles GET /api/payments/payment-methods.
func (h *PaymentHandler) ListPaymentMethods(c *gin.Context) {
	methods, err := h.paymentService.ListPaymentMethods(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaymentMethodsResponse{PaymentMethods: methods})
}

// SetDefaultPaymentMethod handles POST /api/payments/set-default-payment-method.
func (h *PaymentHandler) SetDefaultPaymentMethod(c *gin.Context) {
	var req SetDefaultPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "payment_method_id is required")
		return
	}

	if err := h.paymentService.SetDefaultPaymentMethod(c.Request.Context(), middleware.UserID(c), req.PaymentMethodID); err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Default payment method updated successfully"})
}

// DeletePaymentMethod handles DELETE /api/payments/payment-methods/:id.
func (h *PaymentHandler) DeletePaymentMethod(c *gin.Context) {
	if err := h.paymentService.DeletePaymentMethod(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Payment method removed successfully"})
}

// CheckPaymentMethod handles GET /api/payments/check-payment-method.
func (h *PaymentHandler) CheckPaymentMethod(c *gin.Context) {
	check, err := h.paymentService.CheckPaymentMethod(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, check)
}

// Charge handles POST /api/payments/charge.
func (h *PaymentHandler) Charge(c *gin.Context) {
	var req ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "booking_id, amount and description are required")
		return
	}

	result, err := h.paymentService.Charge(c.Request.Context(), domain.ChargeRequest{
		RequesterID: middleware.UserID(c),
		BookingID:   req.BookingID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SyncCharge handles POST /api/payments/sync-charge.
func (h *PaymentHandler) SyncCharge(c *gin.Context) {
	var req SyncChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "booking_id and payment_intent_id are required")
		return
	}

	result, err := h.paymentService.SyncCharge(c.Request.Context(), middleware.UserID(c), req.BookingID, req.PaymentIntentID)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
