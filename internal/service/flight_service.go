package service

import (
	"context"
	"errors"
	"go-flight-booking/internal/cache"
	"go-flight-booking/internal/model"
	"go-flight-booking/internal/repository"
	apperrors "go-flight-booking/pkg/app_errors"
	"go-flight-booking/pkg/logger"
	"time"

	"go.uber.org/zap"
)

const defaultFlightCacheTTL = 5 * time.Minute

type FlightService interface {
	Create(ctx context.Context, req model.CreateFlightRequest) (*model.Flight, error)
	List(ctx context.Context) ([]*model.Flight, error)
	Search(ctx context.Context, req model.SearchFlightsRequest) ([]*model.Flight, error)
	GetByID(ctx context.Context, id int) (*model.Flight, error)
	Update(ctx context.Context, id int, params model.UpdateFlightParams) (*model.Flight, error)
	Delete(ctx context.Context, id int) error
}

type FlightServiceImpl struct {
	repository        repository.FlightRepository
	bookingRepository repository.BookingRepository
	flightCache       cache.FlightCache
	cacheTTL          time.Duration
}

func NewFlightService(
	flightRepository repository.FlightRepository,
	bookingRepository repository.BookingRepository,
	flightCache cache.FlightCache,
) FlightService {
	return &FlightServiceImpl{
		repository:        flightRepository,
		bookingRepository: bookingRepository,
		flightCache:       flightCache,
		cacheTTL:          defaultFlightCacheTTL,
	}
}

func (s *FlightServiceImpl) Create(ctx context.Context, req model.CreateFlightRequest) (*model.Flight, error) {
	if !req.ArrivalTime.After(req.DepartureTime) {
		return nil, apperrors.ErrInvalidInput
	}
	if req.PriceWithoutMeal < 0 || req.PriceWithMeal < 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// 沒給 available_seats 就當作整台空機
	availableSeats := req.TotalSeats
	if req.AvailableSeats != nil {
		availableSeats = *req.AvailableSeats
	}
	if availableSeats < 0 || availableSeats > req.TotalSeats {
		return nil, apperrors.ErrInvalidInput
	}

	flight := &model.Flight{
		FlightNumber:     req.FlightNumber,
		Origin:           req.Origin,
		Destination:      req.Destination,
		DepartureTime:    req.DepartureTime,
		ArrivalTime:      req.ArrivalTime,
		PriceWithoutMeal: req.PriceWithoutMeal,
		PriceWithMeal:    req.PriceWithMeal,
		TotalSeats:       req.TotalSeats,
		AvailableSeats:   availableSeats,
	}

	return s.repository.Create(ctx, flight)
}

func (s *FlightServiceImpl) List(ctx context.Context) ([]*model.Flight, error) {
	return s.repository.List(ctx)
}

func (s *FlightServiceImpl) Search(ctx context.Context, req model.SearchFlightsRequest) ([]*model.Flight, error) {
	departureDate, err := time.Parse("2006-01-02", req.DepartureDate)
	if err != nil {
		return nil, apperrors.ErrInvalidInput
	}
	if req.Passengers < 1 {
		return nil, apperrors.ErrInvalidInput
	}

	return s.repository.Search(ctx, model.SearchFlightsParams{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: departureDate,
		Passengers:    req.Passengers,
		MaxPrice:      req.MaxPrice,
	})
}

func (s *FlightServiceImpl) GetByID(ctx context.Context, id int) (*model.Flight, error) {
	if s.flightCache != nil {
		cached, err := s.flightCache.GetFlight(ctx, id)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, apperrors.ErrCacheMiss) {
			logger.WithComponent("service").Warn("flight cache read failed",
				zap.Int("flight_id", id), zap.Error(err))
		}
	}

	flight, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.flightCache != nil {
		if err := s.flightCache.SetFlight(ctx, flight, s.cacheTTL); err != nil {
			logger.WithComponent("service").Warn("flight cache write failed",
				zap.Int("flight_id", id), zap.Error(err))
		}
	}

	return flight, nil
}

func (s *FlightServiceImpl) Update(ctx context.Context, id int, params model.UpdateFlightParams) (*model.Flight, error) {
	values := map[string]interface{}{}
	if params.FlightNumber != nil {
		values["flight_number"] = *params.FlightNumber
	}
	if params.Origin != nil {
		values["origin"] = *params.Origin
	}
	if params.Destination != nil {
		values["destination"] = *params.Destination
	}
	if params.PriceWithoutMeal != nil {
		if *params.PriceWithoutMeal < 0 {
			return nil, apperrors.ErrInvalidInput
		}
		values["price_without_meal"] = *params.PriceWithoutMeal
	}
	if params.PriceWithMeal != nil {
		if *params.PriceWithMeal < 0 {
			return nil, apperrors.ErrInvalidInput
		}
		values["price_with_meal"] = *params.PriceWithMeal
	}

	flight, err := s.repository.Update(ctx, id, values)
	if err != nil {
		return nil, err
	}

	if s.flightCache != nil {
		if err := s.flightCache.InvalidateFlight(ctx, id); err != nil {
			logger.WithComponent("service").Warn("failed to invalidate flight cache",
				zap.Int("flight_id", id), zap.Error(err))
		}
	}

	return flight, nil
}

// Delete 刪除航班。還有 pending/confirmed 訂票引用時拒絕刪除
func (s *FlightServiceImpl) Delete(ctx context.Context, id int) error {
	activeSeats, err := s.bookingRepository.CountActiveSeats(ctx, id)
	if err != nil {
		return err
	}
	if activeSeats > 0 {
		return apperrors.ErrFlightHasBookings
	}

	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}

	if s.flightCache != nil {
		if err := s.flightCache.InvalidateFlight(ctx, id); err != nil {
			logger.WithComponent("service").Warn("failed to invalidate flight cache",
				zap.Int("flight_id", id), zap.Error(err))
		}
	}

	return nil
}
