package handler

import (
	"errors"
	"go-flight-booking/internal/model"
	"go-flight-booking/internal/service"
	apperrors "go-flight-booking/pkg/app_errors"
	"go-flight-booking/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service service.BookingService
}

func NewPaymentHandler(service service.BookingService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("payments", h.ProcessPayment)
	}
}

func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var paymentReq model.ProcessPaymentRequest

	if err := BindJson(c, &paymentReq); err != nil {
		return
	}

	booking, err := h.service.ConfirmPayment(c, paymentReq)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *PaymentHandler) handlePaymentError(c *gin.Context, err error) {
	log := logger.WithComponent("handler").With(zap.String("operation", "ProcessPayment"), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrBookingAlreadyPaid):
		log.Warn("Booking already paid")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "This booking has already been paid",
		})
	case errors.Is(err, apperrors.ErrInvalidPaymentMethod):
		log.Warn("Invalid payment method")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid payment method",
		})
	case errors.Is(err, apperrors.ErrInvalidBookingStatus):
		log.Warn("Invalid booking status")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Operation not valid for current booking status",
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
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
