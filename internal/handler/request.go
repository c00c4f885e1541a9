package handler

// CreateTeamRequest represents request body for POST /api/teams.
type CreateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

// InviteRequest represents request body for POST /api/teams/:id/invite.
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// SetDefaultPaymentMethodRequest represents request body for
// POST /api/payments/set-default-payment-method.
type SetDefaultPaymentMethodRequest struct {
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
}

// ChargeRequest represents request body for POST /api/payments/charge.
// Amount is in cents.
type ChargeRequest struct {
	BookingID   string `json:"booking_id" binding:"required"`
	Amount      int64  `json:"amount" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// SyncChargeRequest represents request body for POST /api/payments/sync-charge.
type SyncChargeRequest struct {
	BookingID       string `json:"booking_id" binding:"required"`
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}
