package payment

import (
	"context"
	"errors"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
)

// Stripe implements Provider on top of the Stripe API.
// Charges are PaymentIntents confirmed on creation.
type Stripe struct {
	api      *client.API
	currency stripe.Currency
}

// NewStripe creates a Stripe provider for the given secret key.
func NewStripe(secretKey string) *Stripe {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Stripe{api: api, currency: stripe.CurrencyUSD}
}

// ListCardMethods implements Provider.
func (s *Stripe) ListCardMethods(ctx context.Context, customerRef string) ([]domain.PaymentMethod, error) {
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerRef),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}
	params.Context = ctx

	var methods []domain.PaymentMethod
	iter := s.api.PaymentMethods.List(params)
	for iter.Next() {
		pm := iter.PaymentMethod()
		method := domain.PaymentMethod{ID: pm.ID}
		if pm.Card != nil {
			method.Brand = string(pm.Card.Brand)
			method.Last4 = pm.Card.Last4
			method.ExpMonth = pm.Card.ExpMonth
			method.ExpYear = pm.Card.ExpYear
		}
		methods = append(methods, method)
	}
	if err := iter.Err(); err != nil {
		return nil, wrapStripe(err)
	}
	return methods, nil
}

// CreateCustomer implements Provider.
func (s *Stripe) CreateCustomer(ctx context.Context, profile domain.CustomerProfile) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(profile.Email),
		Name:  stripe.String(profile.Name),
	}
	params.Context = ctx
	params.AddMetadata("userId", profile.UserID)

	customer, err := s.api.Customers.New(params)
	if err != nil {
		return "", wrapStripe(err)
	}
	return customer.ID, nil
}

// SetDefaultMethod implements Provider.
func (s *Stripe) SetDefaultMethod(ctx context.Context, customerRef, methodID string) error {
	params := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(methodID),
		},
	}
	params.Context = ctx

	if _, err := s.api.Customers.Update(customerRef, params); err != nil {
		return wrapStripe(err)
	}
	return nil
}

// DetachMethod implements Provider.
func (s *Stripe) DetachMethod(ctx context.Context, methodID string) error {
	params := &stripe.PaymentMethodDetachParams{}
	params.Context = ctx

	if _, err := s.api.PaymentMethods.Detach(methodID, params); err != nil {
		return wrapStripe(err)
	}
	return nil
}

// CreateCharge implements Provider.
func (s *Stripe) CreateCharge(ctx context.Context, req domain.ProviderChargeRequest) (*domain.ProviderCharge, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.Amount),
		Currency:      stripe.String(string(s.currency)),
		Customer:      stripe.String(req.CustomerRef),
		PaymentMethod: stripe.String(req.MethodID),
		Description:   stripe.String(req.Description),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, wrapStripe(err)
	}
	return toCharge(pi), nil
}

// RetrieveCharge implements Provider.
func (s *Stripe) RetrieveCharge(ctx context.Context, chargeID string) (*domain.ProviderCharge, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Get(chargeID, params)
	if err != nil {
		return nil, wrapStripe(err)
	}
	return toCharge(pi), nil
}

func toCharge(pi *stripe.PaymentIntent) *domain.ProviderCharge {
	c := &domain.ProviderCharge{
		ID:       pi.ID,
		Status:   domain.ChargeStatus(pi.Status),
		Amount:   pi.Amount,
		Metadata: pi.Metadata,
	}
	if pi.PaymentMethod != nil {
		c.MethodID = pi.PaymentMethod.ID
	}
	return c
}

func wrapStripe(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		return &Error{Code: string(serr.Code), Message: serr.Msg, Err: err}
	}
	return &Error{Message: err.Error(), Err: err}
}
