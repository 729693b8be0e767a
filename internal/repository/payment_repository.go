package repository

import (
	"context"
	"fmt"
	"go-flight-booking/internal/model"
	apperrors "go-flight-booking/pkg/app_errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository interface {
	FindByBookingID(ctx context.Context, bookingID int) (*model.Payment, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) (*model.Payment, error)
	FindByBookingIDWithLock(ctx context.Context, tx pgx.Tx, bookingID int) (*model.Payment, error)
	UpdateStatusWithLock(ctx context.Context, tx pgx.Tx, id int, status model.PaymentStatus) (*model.Payment, error)
}

type PaymentRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &PaymentRepositoryImpl{
		pool: pool,
	}
}

const paymentColumns = `id, booking_id, amount, payment_method, transaction_id, status, created_at, updated_at`

func scanPayment(row pgx.Row, payment *model.Payment) error {
	return row.Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Amount,
		&payment.PaymentMethod,
		&payment.TransactionID,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) (*model.Payment, error) {
	query := `
		INSERT INTO payments (booking_id, amount, payment_method, transaction_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + paymentColumns

	err := scanPayment(tx.QueryRow(ctx, query,
		payment.BookingID, payment.Amount, payment.PaymentMethod,
		payment.TransactionID, payment.Status,
	), payment)

	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return payment, nil
}

func (r *PaymentRepositoryImpl) FindByBookingID(ctx context.Context, bookingID int) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE booking_id = $1
	`

	var payment model.Payment
	err := scanPayment(r.pool.QueryRow(ctx, query, bookingID), &payment)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, err
	}

	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindByBookingIDWithLock(ctx context.Context, tx pgx.Tx, bookingID int) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE booking_id = $1
		FOR UPDATE
	`

	var payment model.Payment
	err := scanPayment(tx.QueryRow(ctx, query, bookingID), &payment)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, err
	}

	return &payment, nil
}

func (r *PaymentRepositoryImpl) UpdateStatusWithLock(
	ctx context.Context,
	tx pgx.Tx,
	id int,
	status model.PaymentStatus,
) (*model.Payment, error) {
	query := `
		UPDATE payments
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + paymentColumns

	var payment model.Payment
	err := scanPayment(tx.QueryRow(ctx, query, status, time.Now().UTC(), id), &payment)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}

	return &payment, nil
}
