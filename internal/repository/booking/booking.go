package booking

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
	"github.com/mishasvintus/delivery_team_backend/internal/repository"
)

// Create inserts a booking with its initial payment state.
func Create(ctx context.Context, exec repository.DBTX, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (booking_id, user_id, payment_status, is_paid, order_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := exec.QueryRowContext(ctx, query, b.BookingID, b.UserID, b.PaymentStatus, b.IsPaid, b.OrderStatus).Scan(&b.CreatedAt)
	if err != nil {
		return repository.WrapWrite("create booking", err)
	}
	return nil
}

// Get retrieves a booking by ID.
func Get(ctx context.Context, exec repository.DBTX, bookingID string) (*domain.Booking, error) {
	query := `
		SELECT booking_id, user_id, payment_intent_id, payment_method_id,
		       payment_status, is_paid, paid_at, order_status, created_at
		FROM bookings
		WHERE booking_id = $1
	`
	var b domain.Booking
	err := exec.QueryRowContext(ctx, query, bookingID).Scan(
		&b.BookingID,
		&b.UserID,
		&b.PaymentIntentID,
		&b.PaymentMethodID,
		&b.PaymentStatus,
		&b.IsPaid,
		&b.PaidAt,
		&b.OrderStatus,
		&b.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

// MarkPaid writes the payment fields of a succeeded charge in one statement.
func MarkPaid(ctx context.Context, exec repository.DBTX, bookingID string, p domain.BookingPayment) error {
	query := `
		UPDATE bookings
		SET payment_intent_id = $1,
		    payment_method_id = $2,
		    payment_status = $3,
		    is_paid = true,
		    paid_at = $4,
		    order_status = $5
		WHERE booking_id = $6
	`
	result, err := exec.ExecContext(ctx, query,
		p.PaymentIntentID, p.PaymentMethodID, string(domain.PaymentPaid), p.PaidAt, string(domain.OrderProcessing), bookingID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark booking paid: %w", err)
	}
	if err := repository.RequireAffected(result); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}
