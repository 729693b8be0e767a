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

type FlightHandler struct {
	service service.FlightService
}

func NewFlightHandler(service service.FlightService) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("flights", h.GetFlights)
		router.GET("flights/search", h.SearchFlights)
		router.GET("flights/:id", h.GetFlight)
	}

	// 管理介面的認證在這一層之外
	admin := r.Group("/api/v1/admin")
	{
		admin.POST("flights", h.CreateFlight)
		admin.PUT("flights/:id", h.UpdateFlight)
		admin.DELETE("flights/:id", h.DeleteFlight)
	}
}

func (h *FlightHandler) GetFlights(c *gin.Context) {
	flights, err := h.service.List(c)
	if err != nil {
		h.handleFlightError(c, err, "GetFlights")
		return
	}

	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) SearchFlights(c *gin.Context) {
	var searchReq model.SearchFlightsRequest

	if err := BindQuery(c, &searchReq); err != nil {
		return
	}

	flights, err := h.service.Search(c, searchReq)
	if err != nil {
		h.handleFlightError(c, err, "SearchFlights")
		return
	}

	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) GetFlight(c *gin.Context) {
	id := c.Param("id")
	idInt, err := strconv.Atoi(id)
	if err != nil {
		h.handleFlightError(c, apperrors.ErrInvalidInput, "GetFlight")
		return
	}
	flight, err := h.service.GetByID(c, idInt)
	if err != nil {
		h.handleFlightError(c, err, "GetFlight")
		return
	}

	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) CreateFlight(c *gin.Context) {
	var flightReq model.CreateFlightRequest

	if err := BindJson(c, &flightReq); err != nil {
		return
	}

	created, err := h.service.Create(c, flightReq)
	if err != nil {
		h.handleFlightError(c, err, "CreateFlight")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *FlightHandler) UpdateFlight(c *gin.Context) {
	id := c.Param("id")
	idInt, err := strconv.Atoi(id)
	if err != nil {
		h.handleFlightError(c, apperrors.ErrInvalidInput, "UpdateFlight")
		return
	}

	var body struct {
		FlightNumber     *string  `json:"flight_number"`
		Origin           *string  `json:"origin"`
		Destination      *string  `json:"destination"`
		PriceWithoutMeal *float64 `json:"price_without_meal"`
		PriceWithMeal    *float64 `json:"price_with_meal"`
	}
	if err := BindJson(c, &body); err != nil {
		return
	}

	updated, err := h.service.Update(c, idInt, model.UpdateFlightParams{
		FlightNumber:     body.FlightNumber,
		Origin:           body.Origin,
		Destination:      body.Destination,
		PriceWithoutMeal: body.PriceWithoutMeal,
		PriceWithMeal:    body.PriceWithMeal,
	})
	if err != nil {
		h.handleFlightError(c, err, "UpdateFlight")
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *FlightHandler) DeleteFlight(c *gin.Context) {
	id := c.Param("id")
	idInt, err := strconv.Atoi(id)
	if err != nil {
		h.handleFlightError(c, apperrors.ErrInvalidInput, "DeleteFlight")
		return
	}
	err = h.service.Delete(c, idInt)
	if err != nil {
		h.handleFlightError(c, err, "DeleteFlight")
		return
	}

	c.Status(http.StatusOK)
}

func (h *FlightHandler) handleFlightError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrFlightNotFound):
		log.Warn("Flight not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Flight not found",
		})
	case errors.Is(err, apperrors.ErrFlightHasBookings):
		log.Warn("Flight has active bookings")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Flight has active bookings and cannot be deleted",
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
