package service

import (
	"context"
	"errors"
	"go-flight-booking/internal/cache"
	"go-flight-booking/internal/model"
	"go-flight-booking/internal/queue"
	"go-flight-booking/internal/repository"
	apperrors "go-flight-booking/pkg/app_errors"
	"go-flight-booking/pkg/logger"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// BookingService 是唯一可以同時動到座位庫存與訂票狀態的協調層。
// 每個操作都是一個資料庫交易：預留座位、寫入帳目、退款補償
// 全部在同一個 commit 內生效，任何一步失敗就整筆回滾，座位不會外漏。
type BookingService interface {
	BookFlight(ctx context.Context, req model.CreateBookingRequest) (*model.Booking, error)
	ConfirmPayment(ctx context.Context, req model.ProcessPaymentRequest) (*model.Booking, error)
	CancelBooking(ctx context.Context, id int) (*model.Booking, error)
	GetBookingByID(ctx context.Context, id int) (*model.Booking, error)
	ListUserBookings(ctx context.Context, userID int) ([]*model.Booking, error)
}

type BookingServiceImpl struct {
	pool              *pgxpool.Pool
	repository        repository.BookingRepository
	flightRepository  repository.FlightRepository
	paymentRepository repository.PaymentRepository
	flightCache       cache.FlightCache
	eventQueue        queue.BookingEventQueue
}

func NewBookingService(
	pool *pgxpool.Pool,
	bookingRepository repository.BookingRepository,
	flightRepository repository.FlightRepository,
	paymentRepository repository.PaymentRepository,
	flightCache cache.FlightCache,
	eventQueue queue.BookingEventQueue,
) BookingService {
	return &BookingServiceImpl{
		pool:              pool,
		repository:        bookingRepository,
		flightRepository:  flightRepository,
		paymentRepository: paymentRepository,
		flightCache:       flightCache,
		eventQueue:        eventQueue,
	}
}

func validatePassengerDetails(details []model.PassengerDetail) error {
	if len(details) == 0 {
		return apperrors.ErrInvalidInput
	}
	for _, d := range details {
		if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Email) == "" || strings.TrimSpace(d.Phone) == "" {
			return apperrors.ErrInvalidInput
		}
	}
	return nil
}

func (s *BookingServiceImpl) BookFlight(ctx context.Context, req model.CreateBookingRequest) (*model.Booking, error) {
	if err := validatePassengerDetails(req.PassengerDetails); err != nil {
		return nil, err
	}
	passengerCount := len(req.PassengerDetails)

	// 先確認航班存在並取得票價，不存在就不用開交易
	flight, err := s.flightRepository.FindByID(ctx, req.FlightID)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 1. 條件式扣減座位：座位不夠時這裡直接失敗，沒有任何副作用
	err = s.flightRepository.ReserveSeats(ctx, tx, flight.ID, passengerCount)
	if err != nil {
		return nil, err
	}

	// 2. 寫入訂票帳目。失敗時交易回滾，已扣的座位跟著還原
	booking := &model.Booking{
		UserID:           req.UserID,
		FlightID:         flight.ID,
		TotalCost:        flight.UnitPrice(req.MealOption) * float64(passengerCount),
		MealOption:       req.MealOption,
		Status:           model.BookingStatusPending,
		PassengerCount:   passengerCount,
		PassengerDetails: req.PassengerDetails,
	}

	createdBooking, err := s.repository.Create(ctx, tx, booking)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.invalidateFlightCache(ctx, flight.ID)
	s.publishEvent(ctx, queue.EventBookingCreated, createdBooking)

	flight.AvailableSeats -= passengerCount
	createdBooking.Flight = flight
	return createdBooking, nil
}

func (s *BookingServiceImpl) ConfirmPayment(ctx context.Context, req model.ProcessPaymentRequest) (*model.Booking, error) {
	method := model.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, apperrors.ErrInvalidPaymentMethod
	}
	if method == model.PaymentMethodCreditCard {
		if req.CardNumber == "" || req.ExpiryDate == "" || req.CVV == "" || req.CardHolderName == "" {
			return nil, apperrors.ErrInvalidInput
		}
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	booking, err := s.repository.FindByIDWithLock(ctx, tx, req.BookingID)
	if err != nil {
		return nil, err
	}

	existing, err := s.paymentRepository.FindByBookingIDWithLock(ctx, tx, booking.ID)
	if err != nil && !errors.Is(err, apperrors.ErrPaymentNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == model.PaymentStatusCompleted {
		return nil, apperrors.ErrBookingAlreadyPaid
	}

	if !booking.Status.CanTransitionTo(model.BookingStatusConfirmed) {
		return nil, apperrors.ErrInvalidBookingStatus
	}

	// 沒有串接真正的金流，付款在這裡直接視為成功
	payment := &model.Payment{
		BookingID:     booking.ID,
		Amount:        booking.TotalCost,
		PaymentMethod: method,
		TransactionID: model.NewTransactionID(),
		Status:        model.PaymentStatusCompleted,
	}

	createdPayment, err := s.paymentRepository.Create(ctx, tx, payment)
	if err != nil {
		return nil, err
	}

	confirmed, err := s.repository.UpdateStatusWithLock(ctx, tx, booking.ID, model.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, queue.EventBookingConfirmed, confirmed)

	confirmed.Payment = createdPayment
	return confirmed, nil
}

func (s *BookingServiceImpl) CancelBooking(ctx context.Context, id int) (*model.Booking, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	booking, err := s.repository.FindByIDWithLock(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	// 只有 confirmed 可以取消；pending 訂票持有座位直到付款確認
	if !booking.Status.CanTransitionTo(model.BookingStatusCancelled) {
		return nil, apperrors.ErrBookingNotCancellable
	}

	cancelled, err := s.repository.UpdateStatusWithLock(ctx, tx, booking.ID, model.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}

	// 歸還座位。ReleaseSeats 回報不一致時整筆交易回滾，
	// 取消不會生效，帳目和庫存維持一致，錯誤原樣往上傳
	err = s.flightRepository.ReleaseSeats(ctx, tx, booking.FlightID, booking.PassengerCount)
	if err != nil {
		if errors.Is(err, apperrors.ErrSeatReconciliation) {
			logger.WithComponent("service").Error("seat release would exceed total seats",
				zap.Int("booking_id", booking.ID),
				zap.Int("flight_id", booking.FlightID),
				zap.Int("passenger_count", booking.PassengerCount),
			)
		}
		return nil, err
	}

	payment, err := s.paymentRepository.FindByBookingIDWithLock(ctx, tx, booking.ID)
	if err != nil && !errors.Is(err, apperrors.ErrPaymentNotFound) {
		return nil, err
	}
	if payment != nil && payment.Status == model.PaymentStatusCompleted {
		payment, err = s.paymentRepository.UpdateStatusWithLock(ctx, tx, payment.ID, model.PaymentStatusRefunded)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.invalidateFlightCache(ctx, booking.FlightID)
	s.publishEvent(ctx, queue.EventBookingCancelled, cancelled)

	cancelled.Payment = payment
	return cancelled, nil
}

func (s *BookingServiceImpl) GetBookingByID(ctx context.Context, id int) (*model.Booking, error) {
	booking, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	flight, err := s.flightRepository.FindByID(ctx, booking.FlightID)
	if err != nil && !errors.Is(err, apperrors.ErrFlightNotFound) {
		return nil, err
	}
	booking.Flight = flight

	payment, err := s.paymentRepository.FindByBookingID(ctx, booking.ID)
	if err != nil && !errors.Is(err, apperrors.ErrPaymentNotFound) {
		return nil, err
	}
	booking.Payment = payment

	return booking, nil
}

func (s *BookingServiceImpl) ListUserBookings(ctx context.Context, userID int) ([]*model.Booking, error) {
	return s.repository.FindByUserID(ctx, userID)
}

// invalidateFlightCache 座位異動後清掉航班快取。清不掉只記 log：
// 快取有 TTL，資料庫才是座位數的真相。
func (s *BookingServiceImpl) invalidateFlightCache(ctx context.Context, flightID int) {
	if s.flightCache == nil {
		return
	}
	if err := s.flightCache.InvalidateFlight(ctx, flightID); err != nil {
		logger.WithComponent("service").Warn("failed to invalidate flight cache",
			zap.Int("flight_id", flightID), zap.Error(err))
	}
}

// publishEvent 於 commit 之後發送事件。發送失敗只記 log，不影響已生效的訂票
func (s *BookingServiceImpl) publishEvent(ctx context.Context, eventType string, booking *model.Booking) {
	if s.eventQueue == nil {
		return
	}

	contactEmail := ""
	if len(booking.PassengerDetails) > 0 {
		contactEmail = booking.PassengerDetails[0].Email
	}

	event := &queue.BookingEvent{
		Type:             eventType,
		BookingID:        booking.ID,
		BookingReference: booking.BookingReference,
		UserID:           booking.UserID,
		FlightID:         booking.FlightID,
		Status:           booking.Status,
		TotalCost:        booking.TotalCost,
		ContactEmail:     contactEmail,
		OccurredAt:       time.Now().UTC(),
	}

	if err := s.eventQueue.PublishBookingEvent(ctx, event); err != nil {
		logger.WithComponent("service").Warn("failed to publish booking event",
			zap.String("type", eventType),
			zap.String("booking_reference", booking.BookingReference),
			zap.Error(err))
	}
}
