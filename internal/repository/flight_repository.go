package repository

import (
	"context"
	"fmt"
	"go-flight-booking/internal/model"
	apperrors "go-flight-booking/pkg/app_errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *model.Flight) (*model.Flight, error)
	List(ctx context.Context) ([]*model.Flight, error)
	Search(ctx context.Context, params model.SearchFlightsParams) ([]*model.Flight, error)
	FindByID(ctx context.Context, id int) (*model.Flight, error)
	Update(ctx context.Context, id int, values map[string]interface{}) (*model.Flight, error)
	Delete(ctx context.Context, id int) error

	// Transaction methods
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Flight, error)
	ReserveSeats(ctx context.Context, tx pgx.Tx, id int, count int) error
	ReleaseSeats(ctx context.Context, tx pgx.Tx, id int, count int) error
}

type FlightRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewFlightRepository(pool *pgxpool.Pool) FlightRepository {
	return &FlightRepositoryImpl{
		pool: pool,
	}
}

const flightColumns = `id, flight_number, origin, destination, departure_time, arrival_time,
		price_without_meal, price_with_meal, total_seats, available_seats,
		created_at, updated_at, deleted_at`

func scanFlight(row pgx.Row, flight *model.Flight) error {
	return row.Scan(
		&flight.ID,
		&flight.FlightNumber,
		&flight.Origin,
		&flight.Destination,
		&flight.DepartureTime,
		&flight.ArrivalTime,
		&flight.PriceWithoutMeal,
		&flight.PriceWithMeal,
		&flight.TotalSeats,
		&flight.AvailableSeats,
		&flight.CreatedAt,
		&flight.UpdatedAt,
		&flight.DeletedAt,
	)
}

func (r *FlightRepositoryImpl) Create(ctx context.Context, flight *model.Flight) (*model.Flight, error) {
	query := `
		INSERT INTO flights (
			flight_number, origin, destination, departure_time, arrival_time,
			price_without_meal, price_with_meal, total_seats, available_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + flightColumns

	err := scanFlight(r.pool.QueryRow(ctx, query,
		flight.FlightNumber, flight.Origin, flight.Destination,
		flight.DepartureTime, flight.ArrivalTime,
		flight.PriceWithoutMeal, flight.PriceWithMeal,
		flight.TotalSeats, flight.AvailableSeats,
	), flight)

	if err != nil {
		return nil, err
	}

	return flight, nil
}

func (r *FlightRepositoryImpl) List(ctx context.Context) ([]*model.Flight, error) {
	query := `
		SELECT ` + flightColumns + `
		FROM flights
		WHERE deleted_at IS NULL
		ORDER BY departure_time ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]*model.Flight, 0)

	for rows.Next() {
		var flight model.Flight
		if err := scanFlight(rows, &flight); err != nil {
			return nil, err
		}
		flights = append(flights, &flight)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return flights, nil
}

func (r *FlightRepositoryImpl) Search(ctx context.Context, params model.SearchFlightsParams) ([]*model.Flight, error) {
	query := `
		SELECT ` + flightColumns + `
		FROM flights
		WHERE deleted_at IS NULL
		  AND origin = $1
		  AND destination = $2
		  AND departure_time::date = $3::date
		  AND available_seats >= $4
	`
	args := []interface{}{params.Origin, params.Destination, params.DepartureDate, params.Passengers}

	if params.MaxPrice != nil {
		query += fmt.Sprintf(" AND price_without_meal <= $%d", len(args)+1)
		args = append(args, *params.MaxPrice)
	}

	query += " ORDER BY departure_time ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]*model.Flight, 0)

	for rows.Next() {
		var flight model.Flight
		if err := scanFlight(rows, &flight); err != nil {
			return nil, err
		}
		flights = append(flights, &flight)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return flights, nil
}

func (r *FlightRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Flight, error) {
	query := `
		SELECT ` + flightColumns + `
		FROM flights
		WHERE id = $1 AND deleted_at IS NULL
	`

	var flight model.Flight
	err := scanFlight(r.pool.QueryRow(ctx, query, id), &flight)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrFlightNotFound
		}
		return nil, err
	}

	return &flight, nil
}

func (r *FlightRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Flight, error) {
	query := `
		SELECT ` + flightColumns + `
		FROM flights
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`

	var flight model.Flight
	err := scanFlight(tx.QueryRow(ctx, query, id), &flight)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrFlightNotFound
		}
		return nil, err
	}

	return &flight, nil
}

func (r *FlightRepositoryImpl) Update(ctx context.Context, id int, values map[string]interface{}) (*model.Flight, error) {
	allowedFields := map[string]bool{
		"flight_number":      true,
		"origin":             true,
		"destination":        true,
		"price_without_meal": true,
		"price_with_meal":    true,
	}

	sets := []string{}
	args := []interface{}{}
	argPos := 1

	for column, value := range values {
		if ok := allowedFields[column]; !ok {
			return nil, apperrors.ErrInvalidInput
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE flights
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING `+flightColumns, strings.Join(sets, ", "), argPos)

	var flight model.Flight
	err := scanFlight(r.pool.QueryRow(ctx, query, args...), &flight)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrFlightNotFound
		}
		return nil, err
	}

	return &flight, nil
}

// ReserveSeats 以單一條件式 UPDATE 扣減座位：只有在剩餘座位足夠時才會生效，
// 同一航班的併發請求會在這一行序列化，不同航班互不阻塞。
func (r *FlightRepositoryImpl) ReserveSeats(ctx context.Context, tx pgx.Tx, id int, count int) error {
	if count <= 0 {
		return apperrors.ErrInvalidInput
	}

	query := `
		UPDATE flights
		SET available_seats = available_seats - $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL AND available_seats >= $1
	`

	result, err := tx.Exec(ctx, query, count, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInsufficientSeats
	}

	return nil
}

// ReleaseSeats 歸還座位。釋放後超過總座位數代表帳目已經不一致，
// 直接回報 ErrSeatReconciliation，不做靜默截斷。
func (r *FlightRepositoryImpl) ReleaseSeats(ctx context.Context, tx pgx.Tx, id int, count int) error {
	if count <= 0 {
		return apperrors.ErrInvalidInput
	}

	query := `
		UPDATE flights
		SET available_seats = available_seats + $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL AND available_seats + $1 <= total_seats
	`

	result, err := tx.Exec(ctx, query, count, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM flights WHERE id = $1 AND deleted_at IS NULL)`, id,
		).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrFlightNotFound
		}
		return apperrors.ErrSeatReconciliation
	}

	return nil
}

func (r *FlightRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `
		UPDATE flights
		SET deleted_at = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`

	now := time.Now().UTC()
	result, err := r.pool.Exec(ctx, query, now, now, id)
	if err != nil {
		return err
	}

	// check if flight exists and not already deleted
	if result.RowsAffected() == 0 {
		return apperrors.ErrFlightNotFound
	}

	return nil
}
