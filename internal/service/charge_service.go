package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
)

// Charge bills a booking to the card resolved for the requester, who must
// own the booking.
//
// Only a succeeded charge marks the booking paid. Any other provider status
// is returned as is and leaves the booking untouched. A provider error
// returns a PaymentFailedError and never touches the booking.
func (s *PaymentService) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	req.BookingID = strings.TrimSpace(req.BookingID)
	req.Description = strings.TrimSpace(req.Description)

	switch {
	case req.Amount <= 0:
		return nil, validationError("amount must be positive")
	case req.BookingID == "":
		return nil, validationError("booking id is required")
	case req.Description == "":
		return nil, validationError("description is required")
	}

	booking, err := s.bookings.GetBooking(ctx, req.BookingID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking.UserID != req.RequesterID {
		return nil, ErrNotBookingOwner
	}
	if booking.IsPaid {
		return nil, ErrBookingAlreadyPaid
	}

	resolved, err := s.resolver.ResolvePaymentMethod(ctx, req.RequesterID)
	if err != nil {
		return nil, err
	}

	pctx, cancel := withProviderTimeout(ctx, s.timeout)
	charge, err := s.provider.CreateCharge(pctx, domain.ProviderChargeRequest{
		CustomerRef: resolved.CustomerRef,
		MethodID:    resolved.MethodID,
		Amount:      req.Amount,
		Description: req.Description,
		Metadata: map[string]string{
			"bookingId": booking.BookingID,
			"userId":    req.RequesterID,
		},
	})
	cancel()
	if err != nil {
		s.log.Warn("charge failed",
			"booking_id", booking.BookingID,
			"payer_id", resolved.PayerUserID,
			"error", err,
		)
		notify(ctx, s.notifier, s.log, req.RequesterID, "failed", domain.NotificationPayment, MessageParams{Amount: req.Amount})
		return nil, providerFailure(err)
	}

	result := &domain.ChargeResult{
		PaymentIntentID: charge.ID,
		Status:          charge.Status,
		Source:          resolved.Source,
	}
	if charge.Status != domain.ChargeSucceeded {
		s.log.Info("charge not settled", "booking_id", booking.BookingID, "status", string(charge.Status))
		return result, nil
	}

	result.Paid = s.settle(ctx, booking.BookingID, charge.ID, resolved.MethodID)
	s.log.Info("booking charged",
		"booking_id", booking.BookingID,
		"payment_intent_id", charge.ID,
		"source", string(resolved.Source),
	)
	s.notifySettled(ctx, req.RequesterID, req.Amount)

	return result, nil
}

// SyncCharge re-reads a charge that was not settled when it was created and
// marks the booking paid once the provider reports it succeeded. The charge
// must have been created by the requester for their own booking.
func (s *PaymentService) SyncCharge(ctx context.Context, requesterID, bookingID, chargeID string) (*domain.ChargeResult, error) {
	bookingID = strings.TrimSpace(bookingID)
	chargeID = strings.TrimSpace(chargeID)
	if bookingID == "" || chargeID == "" {
		return nil, validationError("booking id and payment intent id are required")
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking.UserID != requesterID {
		return nil, ErrNotBookingOwner
	}

	pctx, cancel := withProviderTimeout(ctx, s.timeout)
	charge, err := s.provider.RetrieveCharge(pctx, chargeID)
	cancel()
	if err != nil {
		return nil, providerFailure(err)
	}
	if charge.Metadata["bookingId"] != booking.BookingID || charge.Metadata["userId"] != requesterID {
		return nil, ErrChargeMismatch
	}

	result := &domain.ChargeResult{PaymentIntentID: charge.ID, Status: charge.Status}
	if booking.IsPaid {
		result.Paid = true
		return result, nil
	}
	if charge.Status != domain.ChargeSucceeded {
		return result, nil
	}

	result.Paid = s.settle(ctx, booking.BookingID, charge.ID, charge.MethodID)
	s.log.Info("booking charge synced", "booking_id", booking.BookingID, "payment_intent_id", charge.ID)
	s.notifySettled(ctx, requesterID, charge.Amount)

	return result, nil
}

// settle records a succeeded charge on the booking and reports whether the
// update was written.
func (s *PaymentService) settle(ctx context.Context, bookingID, chargeID, methodID string) bool {
	// The money has moved; the booking update must not be abandoned with the request.
	err := s.bookings.MarkBookingPaid(context.WithoutCancel(ctx), bookingID, domain.BookingPayment{
		PaymentIntentID: chargeID,
		PaymentMethodID: methodID,
		PaidAt:          s.now().UTC(),
	})
	if err != nil {
		s.log.Error("charge succeeded but booking was not updated",
			"booking_id", bookingID,
			"payment_intent_id", chargeID,
			"error", err,
		)
		return false
	}
	return true
}

func (s *PaymentService) notifySettled(ctx context.Context, userID string, amount int64) {
	notify(ctx, s.notifier, s.log, userID, "success", domain.NotificationPayment, MessageParams{Amount: amount})
	notify(ctx, s.notifier, s.log, userID, "processing", domain.NotificationOrderStatus, MessageParams{})
}
