package apperrors

import "errors"

var (
	ErrFlightNotFound  = errors.New("flight not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrUserNotFound    = errors.New("user not found")

	ErrInsufficientSeats = errors.New("insufficient seats")

	ErrInvalidBookingStatus  = errors.New("invalid booking status")
	ErrBookingNotCancellable = errors.New("booking not cancellable")
	ErrBookingAlreadyPaid    = errors.New("booking already paid")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrFlightHasBookings     = errors.New("flight has active bookings")

	ErrInvalidInput = errors.New("invalid input")
	ErrCacheMiss    = errors.New("cache miss")

	// ErrSeatReconciliation 代表座位數與訂票總和不一致，屬於內部錯誤而非業務失敗
	ErrSeatReconciliation  = errors.New("seat count reconciliation failed")
	ErrInternalServerError = errors.New("internal server error")
)
