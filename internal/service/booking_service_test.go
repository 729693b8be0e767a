package service

import (
	"context"
	"regexp"
	"testing"

	"go-flight-booking/internal/model"
	"go-flight-booking/internal/repository"
	apperrors "go-flight-booking/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingService_BookFlight(t *testing.T) {
	svc := newBookingService()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA301", 100, 100, 80.00, 100.00)

		booking, err := svc.BookFlight(ctx, model.CreateBookingRequest{
			UserID:           userID,
			FlightID:         flightID,
			MealOption:       true,
			PassengerDetails: passengers(2),
		})
		require.NoError(t, err)

		assert.Equal(t, model.BookingStatusPending, booking.Status)
		assert.Equal(t, 200.00, booking.TotalCost)
		assert.Equal(t, 2, booking.PassengerCount)
		assert.Regexp(t, regexp.MustCompile(`^JA[0-9A-F]{8}$`), booking.BookingReference)
		require.NotNil(t, booking.Flight)
		assert.Equal(t, 98, booking.Flight.AvailableSeats)

		assert.Equal(t, 98, getAvailableSeats(t, flightID))
	})

	t.Run("Success - price without meal", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA302", 100, 100, 80.00, 100.00)

		booking, err := svc.BookFlight(ctx, model.CreateBookingRequest{
			UserID:           userID,
			FlightID:         flightID,
			MealOption:       false,
			PassengerDetails: passengers(3),
		})
		require.NoError(t, err)
		assert.Equal(t, 240.00, booking.TotalCost)
	})

	t.Run("Failed - ErrInsufficientSeats", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA303", 10, 2, 80.00, 100.00)

		booking, err := svc.BookFlight(ctx, model.CreateBookingRequest{
			UserID:           userID,
			FlightID:         flightID,
			PassengerDetails: passengers(3),
		})
		assert.ErrorIs(t, err, apperrors.ErrInsufficientSeats)
		assert.Nil(t, booking)

		// 失敗的預訂不得留下任何帳目或座位異動
		assert.Equal(t, 2, getAvailableSeats(t, flightID))

		bookingRepo := repository.NewBookingRepository(testDB)
		active, err := bookingRepo.CountActiveSeats(ctx, flightID)
		require.NoError(t, err)
		assert.Equal(t, 0, active)
	})

	t.Run("Failed - ErrFlightNotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")

		_, err := svc.BookFlight(ctx, model.CreateBookingRequest{
			UserID:           userID,
			FlightID:         999999,
			PassengerDetails: passengers(1),
		})
		assert.ErrorIs(t, err, apperrors.ErrFlightNotFound)
	})

	t.Run("Failed - ErrInvalidInput for empty passenger details", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA304", 10, 10, 80.00, 100.00)

		_, err := svc.BookFlight(ctx, model.CreateBookingRequest{
			UserID:           userID,
			FlightID:         flightID,
			PassengerDetails: []model.PassengerDetail{},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Failed - ErrInvalidInput for blank passenger fields", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA305", 10, 10, 80.00, 100.00)

		_, err := svc.BookFlight(ctx, model.CreateBookingRequest{
			UserID:   userID,
			FlightID: flightID,
			PassengerDetails: []model.PassengerDetail{
				{Name: "  ", Email: "a@test.com", Phone: "0912345678"},
			},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Equal(t, 10, getAvailableSeats(t, flightID))
	})
}

func TestBookingService_ConfirmPayment(t *testing.T) {
	svc := newBookingService()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA306", 100, 100, 80.00, 100.00)
		bookingID := createTestBooking(t, userID, flightID, 2, 160.00, model.BookingStatusPending)

		confirmed, err := svc.ConfirmPayment(ctx, model.ProcessPaymentRequest{
			BookingID:     bookingID,
			PaymentMethod: "paypal",
		})
		require.NoError(t, err)

		assert.Equal(t, model.BookingStatusConfirmed, confirmed.Status)
		require.NotNil(t, confirmed.Payment)
		assert.Equal(t, model.PaymentStatusCompleted, confirmed.Payment.Status)
		assert.Equal(t, 160.00, confirmed.Payment.Amount)
		assert.Regexp(t, regexp.MustCompile(`^TX[0-9A-F]{10}$`), confirmed.Payment.TransactionID)
	})

	t.Run("Failed - ErrBookingAlreadyPaid", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA307", 100, 100, 80.00, 100.00)
		bookingID := createTestBooking(t, userID, flightID, 1, 80.00, model.BookingStatusPending)

		_, err := svc.ConfirmPayment(ctx, model.ProcessPaymentRequest{
			BookingID:     bookingID,
			PaymentMethod: "bank_transfer",
		})
		require.NoError(t, err)

		_, err = svc.ConfirmPayment(ctx, model.ProcessPaymentRequest{
			BookingID:     bookingID,
			PaymentMethod: "bank_transfer",
		})
		assert.ErrorIs(t, err, apperrors.ErrBookingAlreadyPaid)
	})

	t.Run("Failed - ErrInvalidPaymentMethod", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA308", 100, 100, 80.00, 100.00)
		bookingID := createTestBooking(t, userID, flightID, 1, 80.00, model.BookingStatusPending)

		_, err := svc.ConfirmPayment(ctx, model.ProcessPaymentRequest{
			BookingID:     bookingID,
			PaymentMethod: "cash",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentMethod)
	})

	t.Run("Failed - ErrInvalidInput for credit card without details", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA309", 100, 100, 80.00, 100.00)
		bookingID := createTestBooking(t, userID, flightID, 1, 80.00, model.BookingStatusPending)

		_, err := svc.ConfirmPayment(ctx, model.ProcessPaymentRequest{
			BookingID:     bookingID,
			PaymentMethod: "credit_card",
			CardNumber:    "4111111111111111",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Failed - ErrInvalidBookingStatus for cancelled booking", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA310", 100, 100, 80.00, 100.00)
		bookingID := createTestBooking(t, userID, flightID, 1, 80.00, model.BookingStatusCancelled)

		_, err := svc.ConfirmPayment(ctx, model.ProcessPaymentRequest{
			BookingID:     bookingID,
			PaymentMethod: "paypal",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidBookingStatus)
	})

	t.Run("Failed - ErrBookingNotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		_, err := svc.ConfirmPayment(ctx, model.ProcessPaymentRequest{
			BookingID:     999999,
			PaymentMethod: "paypal",
		})
		assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)
	})
}

func TestBookingService_CancelBooking(t *testing.T) {
	svc := newBookingService()
	ctx := context.Background()

	t.Run("Success - seats restored and payment refunded", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA311", 100, 100, 80.00, 100.00)

		booking, err := svc.BookFlight(ctx, model.CreateBookingRequest{
			UserID:           userID,
			FlightID:         flightID,
			PassengerDetails: passengers(3),
		})
		require.NoError(t, err)
		require.Equal(t, 97, getAvailableSeats(t, flightID))

		_, err = svc.ConfirmPayment(ctx, model.ProcessPaymentRequest{
			BookingID:     booking.ID,
			PaymentMethod: "paypal",
		})
		require.NoError(t, err)

		cancelled, err := svc.CancelBooking(ctx, booking.ID)
		require.NoError(t, err)

		assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
		require.NotNil(t, cancelled.Payment)
		assert.Equal(t, model.PaymentStatusRefunded, cancelled.Payment.Status)
		assert.Equal(t, 100, getAvailableSeats(t, flightID))
	})

	t.Run("Failed - ErrBookingNotCancellable for pending booking", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA312", 100, 100, 80.00, 100.00)
		bookingID := createTestBooking(t, userID, flightID, 2, 160.00, model.BookingStatusPending)

		_, err := svc.CancelBooking(ctx, bookingID)
		assert.ErrorIs(t, err, apperrors.ErrBookingNotCancellable)
	})

	t.Run("Failed - ErrBookingNotCancellable on second cancel", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA313", 100, 100, 80.00, 100.00)

		booking, err := svc.BookFlight(ctx, model.CreateBookingRequest{
			UserID:           userID,
			FlightID:         flightID,
			PassengerDetails: passengers(1),
		})
		require.NoError(t, err)

		_, err = svc.ConfirmPayment(ctx, model.ProcessPaymentRequest{
			BookingID:     booking.ID,
			PaymentMethod: "paypal",
		})
		require.NoError(t, err)

		_, err = svc.CancelBooking(ctx, booking.ID)
		require.NoError(t, err)

		// 第二次取消必須失敗，座位不得重複歸還
		_, err = svc.CancelBooking(ctx, booking.ID)
		assert.ErrorIs(t, err, apperrors.ErrBookingNotCancellable)
		assert.Equal(t, 100, getAvailableSeats(t, flightID))
	})

	t.Run("Success - cancelled seats can be rebooked", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA314", 2, 2, 80.00, 100.00)

		first, err := svc.BookFlight(ctx, model.CreateBookingRequest{
			UserID:           userID,
			FlightID:         flightID,
			PassengerDetails: passengers(2),
		})
		require.NoError(t, err)

		_, err = svc.ConfirmPayment(ctx, model.ProcessPaymentRequest{
			BookingID:     first.ID,
			PaymentMethod: "paypal",
		})
		require.NoError(t, err)

		_, err = svc.CancelBooking(ctx, first.ID)
		require.NoError(t, err)

		second, err := svc.BookFlight(ctx, model.CreateBookingRequest{
			UserID:           userID,
			FlightID:         flightID,
			PassengerDetails: passengers(2),
		})
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusPending, second.Status)
		assert.Equal(t, 0, getAvailableSeats(t, flightID))
	})

	t.Run("Failed - ErrBookingNotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		_, err := svc.CancelBooking(ctx, 999999)
		assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)
	})
}

func TestBookingService_GetBookingByID(t *testing.T) {
	svc := newBookingService()
	ctx := context.Background()

	t.Run("Success - includes flight and payment", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		userID := createTestUser(t, "Alice", "alice@test.com")
		flightID := createTestFlight(t, "JA315", 100, 100, 80.00, 100.00)

		booking, err := svc.BookFlight(ctx, model.CreateBookingRequest{
			UserID:           userID,
			FlightID:         flightID,
			PassengerDetails: passengers(1),
		})
		require.NoError(t, err)

		_, err = svc.ConfirmPayment(ctx, model.ProcessPaymentRequest{
			BookingID:     booking.ID,
			PaymentMethod: "paypal",
		})
		require.NoError(t, err)

		fetched, err := svc.GetBookingByID(ctx, booking.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched.Flight)
		assert.Equal(t, "JA315", fetched.Flight.FlightNumber)
		require.NotNil(t, fetched.Payment)
		assert.Equal(t, model.PaymentStatusCompleted, fetched.Payment.Status)
	})

	t.Run("Failed - ErrBookingNotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		_, err := svc.GetBookingByID(ctx, 999999)
		assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)
	})
}

func TestBookingService_ListUserBookings(t *testing.T) {
	svc := newBookingService()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		aliceID := createTestUser(t, "Alice", "alice@test.com")
		bobID := createTestUser(t, "Bob", "bob@test.com")
		flightID := createTestFlight(t, "JA316", 100, 100, 80.00, 100.00)

		createTestBooking(t, aliceID, flightID, 1, 80.00, model.BookingStatusPending)
		createTestBooking(t, aliceID, flightID, 2, 160.00, model.BookingStatusConfirmed)
		createTestBooking(t, bobID, flightID, 1, 80.00, model.BookingStatusPending)

		bookings, err := svc.ListUserBookings(ctx, aliceID)
		require.NoError(t, err)
		assert.Len(t, bookings, 2)
		for _, b := range bookings {
			assert.Equal(t, aliceID, b.UserID)
		}
	})
}
