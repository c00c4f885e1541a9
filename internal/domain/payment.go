package domain

// PaymentSource names whose card a resolved payment uses.
type PaymentSource string

// Payment source constants.
const (
	SourceSelf     PaymentSource = "self"
	SourceOwner    PaymentSource = "owner"
	SourceTeammate PaymentSource = "teammate"
)

// PaymentMethod is a card on file with the payment provider.
type PaymentMethod struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"exp_month"`
	ExpYear  int64  `json:"exp_year"`
}

// ResolvedPayment is the customer/method pair a charge will use.
type ResolvedPayment struct {
	CustomerRef string        `json:"customer_ref"`
	MethodID    string        `json:"method_id"`
	Source      PaymentSource `json:"source"`
	PayerUserID string        `json:"payer_user_id"`
}

// CustomerProfile is what the provider needs to create a customer.
type CustomerProfile struct {
	UserID string
	Email  string
	Name   string
}

// ChargeStatus is the provider-reported status of a charge.
type ChargeStatus string

// ChargeSucceeded is the only status that marks a booking paid.
const ChargeSucceeded ChargeStatus = "succeeded"

// ProviderCharge is a charge as reported by the provider.
type ProviderCharge struct {
	ID       string
	Status   ChargeStatus
	Amount   int64
	MethodID string
	Metadata map[string]string
}

// ProviderChargeRequest is an immediate, pre-confirmed charge.
type ProviderChargeRequest struct {
	CustomerRef string
	MethodID    string
	Amount      int64
	Description string
	Metadata    map[string]string
}

// ChargeRequest is a caller's request to pay for a booking.
type ChargeRequest struct {
	RequesterID string
	BookingID   string
	Amount      int64
	Description string
}

// ChargeResult reports the outcome of a charge.
type ChargeResult struct {
	PaymentIntentID string        `json:"payment_intent_id"`
	Status          ChargeStatus  `json:"status"`
	Source          PaymentSource `json:"source"`
	Paid            bool          `json:"paid"`
}
