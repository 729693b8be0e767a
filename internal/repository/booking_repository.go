package repository

import (
	"context"
	"errors"
	"fmt"
	"go-flight-booking/internal/model"
	apperrors "go-flight-booking/pkg/app_errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// 訂票編號撞號時的重新產生次數上限
const maxReferenceAttempts = 5

type BookingRepository interface {
	List(ctx context.Context) ([]*model.Booking, error)
	FindByID(ctx context.Context, id int) (*model.Booking, error)
	FindByReference(ctx context.Context, reference string) (*model.Booking, error)
	FindByUserID(ctx context.Context, userID int) ([]*model.Booking, error)
	CountActiveSeats(ctx context.Context, flightID int) (int, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, booking *model.Booking) (*model.Booking, error)
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Booking, error)
	UpdateStatusWithLock(ctx context.Context, tx pgx.Tx, id int, status model.BookingStatus) (*model.Booking, error)
}

type BookingRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &BookingRepositoryImpl{
		pool: pool,
	}
}

const bookingColumns = `id, user_id, flight_id, booking_reference, total_cost, meal_option,
		status, passenger_count, passenger_details, created_at, updated_at`

func scanBooking(row pgx.Row, booking *model.Booking) error {
	return row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.FlightID,
		&booking.BookingReference,
		&booking.TotalCost,
		&booking.MealOption,
		&booking.Status,
		&booking.PassengerCount,
		&booking.PassengerDetails,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
}

// Create 寫入訂票。訂票編號由這裡產生，遇到唯一鍵衝突就換一個重試，
// 撞號不是呼叫方的錯，不會往上傳遞。
func (r *BookingRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, booking *model.Booking) (*model.Booking, error) {
	query := `
		INSERT INTO bookings (
			user_id, flight_id, booking_reference, total_cost, meal_option,
			status, passenger_count, passenger_details
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + bookingColumns

	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		if booking.BookingReference == "" {
			booking.BookingReference = model.NewBookingReference()
		}

		// 唯一鍵衝突會讓整個交易進入 aborted 狀態，
		// 每次嘗試包在 savepoint 裡才能在同一交易內重試。
		sp, err := tx.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create booking: %w", err)
		}

		err = scanBooking(sp.QueryRow(ctx, query,
			booking.UserID, booking.FlightID, booking.BookingReference,
			booking.TotalCost, booking.MealOption, booking.Status,
			booking.PassengerCount, booking.PassengerDetails,
		), booking)

		if err == nil {
			if err := sp.Commit(ctx); err != nil {
				return nil, fmt.Errorf("failed to create booking: %w", err)
			}
			return booking, nil
		}

		_ = sp.Rollback(ctx)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "bookings_booking_reference_key" {
			booking.BookingReference = ""
			continue
		}

		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return nil, fmt.Errorf("failed to create booking: reference collisions exceeded %d attempts", maxReferenceAttempts)
}

func (r *BookingRepositoryImpl) List(ctx context.Context) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*model.Booking

	for rows.Next() {
		var booking model.Booking
		if err := scanBooking(rows, &booking); err != nil {
			return nil, err
		}
		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`

	var booking model.Booking
	err := scanBooking(r.pool.QueryRow(ctx, query, id), &booking)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}

	return &booking, nil
}

func (r *BookingRepositoryImpl) FindByReference(ctx context.Context, reference string) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_reference = $1
	`

	var booking model.Booking
	err := scanBooking(r.pool.QueryRow(ctx, query, reference), &booking)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}

	return &booking, nil
}

func (r *BookingRepositoryImpl) FindByUserID(ctx context.Context, userID int) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*model.Booking

	for rows.Next() {
		var booking model.Booking
		if err := scanBooking(rows, &booking); err != nil {
			return nil, err
		}
		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *BookingRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`

	var booking model.Booking
	err := scanBooking(tx.QueryRow(ctx, query, id), &booking)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}

	return &booking, nil
}

func (r *BookingRepositoryImpl) UpdateStatusWithLock(
	ctx context.Context,
	tx pgx.Tx,
	id int,
	status model.BookingStatus,
) (*model.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + bookingColumns

	var booking model.Booking
	err := scanBooking(tx.QueryRow(ctx, query, status, time.Now().UTC(), id), &booking)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	return &booking, nil
}

// CountActiveSeats 回傳某航班 pending/confirmed 訂票持有的座位總數，
// 供庫存核對與航班刪除守門使用。
func (r *BookingRepositoryImpl) CountActiveSeats(ctx context.Context, flightID int) (int, error) {
	query := `
		SELECT COALESCE(SUM(passenger_count), 0)
		FROM bookings
		WHERE flight_id = $1
		  AND status IN ($2, $3)
	`

	var total int
	err := r.pool.QueryRow(ctx, query, flightID,
		model.BookingStatusPending, model.BookingStatusConfirmed,
	).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}
