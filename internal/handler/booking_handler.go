package handler

import (
	"errors"
	"go-flight-booking/internal/model"
	"go-flight-booking/internal/service"
	apperrors "go-flight-booking/pkg/app_errors"
	"go-flight-booking/pkg/logger"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service service.BookingService
}

func NewBookingHandler(service service.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("bookings", h.GetBookings)
		router.GET("bookings/:id", h.GetBooking)
		router.POST("bookings", h.CreateBooking)
		router.PUT("bookings/:id/cancel", h.CancelBooking)
	}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var bookingReq model.CreateBookingRequest

	if err := BindJson(c, &bookingReq); err != nil {
		return
	}

	created, err := h.service.BookFlight(c, bookingReq)
	if err != nil {
		h.handleBookingError(c, err, "CreateBooking")
		return
	}

	h.handleBookingSuccess(c, created, http.StatusCreated)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	id := c.Param("id")
	idInt, err := strconv.Atoi(id)
	if err != nil {
		h.handleBookingError(c, apperrors.ErrInvalidInput, "GetBooking")
		return
	}
	booking, err := h.service.GetBookingByID(c, idInt)
	if err != nil {
		h.handleBookingError(c, err, "GetBooking")
		return
	}

	h.handleBookingSuccess(c, booking, http.StatusOK)
}

func (h *BookingHandler) GetBookings(c *gin.Context) {
	// 認證在這一層之外處理，user_id 由 request layer 帶進來
	userID, err := strconv.Atoi(c.Query("user_id"))
	if err != nil {
		h.handleBookingError(c, apperrors.ErrInvalidInput, "GetBookings")
		return
	}

	bookings, err := h.service.ListUserBookings(c, userID)
	if err != nil {
		h.handleBookingError(c, err, "GetBookings")
		return
	}

	h.handleBookingSuccess(c, bookings, http.StatusOK)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id := c.Param("id")
	idInt, err := strconv.Atoi(id)
	if err != nil {
		h.handleBookingError(c, apperrors.ErrInvalidInput, "CancelBooking")
		return
	}
	cancelled, err := h.service.CancelBooking(c, idInt)
	if err != nil {
		h.handleBookingError(c, err, "CancelBooking")
		return
	}

	h.handleBookingSuccess(c, cancelled, http.StatusOK)
}

// Helper functions

func (h *BookingHandler) handleBookingError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInsufficientSeats):
		log.Warn("Insufficient seats")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Not enough seats available for this flight",
		})
	case errors.Is(err, apperrors.ErrBookingNotCancellable):
		log.Warn("Booking not cancellable")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "This booking cannot be cancelled",
		})
	case errors.Is(err, apperrors.ErrInvalidBookingStatus):
		log.Warn("Invalid booking status")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Operation not valid for current booking status",
		})
	case errors.Is(err, apperrors.ErrFlightNotFound):
		log.Warn("Flight not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Flight not found",
		})
	case errors.Is(err, apperrors.ErrBookingNotFound):
		log.Warn("Booking not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Booking not found",
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Invalid input",
		})
	case errors.Is(err, apperrors.ErrSeatReconciliation):
		// 庫存不一致是系統問題，和一般業務失敗分開呈現
		log.Error("Seat reconciliation failure")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal inventory inconsistency",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func (h *BookingHandler) handleBookingSuccess(c *gin.Context, data interface{}, statusCode int) {
	if data != nil {
		c.JSON(statusCode, data)
	} else {
		c.Status(statusCode)
	}
}
