package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-flight-booking/internal/model"
	"go-flight-booking/internal/repository"
	apperrors "go-flight-booking/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 併發搶票：成功的預訂數不得超過座位數，其餘一律 ErrInsufficientSeats。
func TestBookingService_BookFlight_Concurrent(t *testing.T) {
	svc := newBookingService()
	ctx := context.Background()

	t.Run("oversell prevention", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		const (
			totalSeats = 10
			requests   = 50
		)

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA401", totalSeats, totalSeats, 80.00, 100.00)

		var (
			wg            sync.WaitGroup
			mu            sync.Mutex
			successCount  int
			soldOutCount  int
			unexpectedErr error
		)

		for i := 0; i < requests; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				_, err := svc.BookFlight(ctx, model.CreateBookingRequest{
					UserID:           userID,
					FlightID:         flightID,
					PassengerDetails: passengers(1),
				})

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successCount++
				case errors.Is(err, apperrors.ErrInsufficientSeats):
					soldOutCount++
				default:
					unexpectedErr = err
				}
			}()
		}

		wg.Wait()

		require.NoError(t, unexpectedErr)
		assert.Equal(t, totalSeats, successCount)
		assert.Equal(t, requests-totalSeats, soldOutCount)
		assert.Equal(t, 0, getAvailableSeats(t, flightID))

		// 帳目持有的座位總數必須等於賣出的座位數
		bookingRepo := repository.NewBookingRepository(testDB)
		active, err := bookingRepo.CountActiveSeats(ctx, flightID)
		require.NoError(t, err)
		assert.Equal(t, totalSeats, active)
	})

	t.Run("last seat has exactly one winner", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA402", 10, 1, 80.00, 100.00)

		var (
			wg           sync.WaitGroup
			mu           sync.Mutex
			successCount int
		)

		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				_, err := svc.BookFlight(ctx, model.CreateBookingRequest{
					UserID:           userID,
					FlightID:         flightID,
					PassengerDetails: passengers(1),
				})
				if err == nil {
					mu.Lock()
					successCount++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, successCount)
		assert.Equal(t, 0, getAvailableSeats(t, flightID))
	})

	t.Run("concurrent multi-seat requests never go negative", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA403", 7, 7, 80.00, 100.00)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = svc.BookFlight(ctx, model.CreateBookingRequest{
					UserID:           userID,
					FlightID:         flightID,
					PassengerDetails: passengers(3),
				})
			}()
		}
		wg.Wait()

		available := getAvailableSeats(t, flightID)
		assert.GreaterOrEqual(t, available, 0)

		bookingRepo := repository.NewBookingRepository(testDB)
		active, err := bookingRepo.CountActiveSeats(ctx, flightID)
		require.NoError(t, err)
		assert.Equal(t, 7-available, active)
	})
}

// 同一筆訂票併發付款：只能有一筆付款成立。
func TestBookingService_ConfirmPayment_Concurrent(t *testing.T) {
	svc := newBookingService()
	ctx := context.Background()

	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	userID := createTestUser(t, "Alice", "alice@test.com")
	flightID := createTestFlight(t, "JA404", 100, 100, 80.00, 100.00)
	bookingID := createTestBooking(t, userID, flightID, 1, 80.00, model.BookingStatusPending)

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		successCount int
	)

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := svc.ConfirmPayment(ctx, model.ProcessPaymentRequest{
				BookingID:     bookingID,
				PaymentMethod: "paypal",
			})
			if err == nil {
				mu.Lock()
				successCount++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, successCount)

	var paymentCount int
	err := testDB.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE booking_id = $1`, bookingID).Scan(&paymentCount)
	require.NoError(t, err)
	assert.Equal(t, 1, paymentCount)
}
