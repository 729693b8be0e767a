package main

import (
	"context"
	"errors"
	"go-flight-booking/config"
	"go-flight-booking/internal/cache"
	"go-flight-booking/internal/database"
	"go-flight-booking/internal/handler"
	"go-flight-booking/internal/queue"
	"go-flight-booking/internal/repository"
	"go-flight-booking/internal/service"
	"go-flight-booking/pkg/logger"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	log := logger.WithComponent("server")
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	defer rdb.Close()

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	flightCache := cache.NewRedisFlightCache(rdb)

	eventQueue, err := queue.NewRedisStreamBookingEventQueue(rdb, os.Getenv("CONSUMER_ID"), nil)
	if err != nil {
		log.Fatal("Failed to initialize booking event queue", zap.Error(err))
	}

	flightService := service.NewFlightService(flightRepo, bookingRepo, flightCache)
	bookingService := service.NewBookingService(pool, bookingRepo, flightRepo, paymentRepo, flightCache, eventQueue)

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	handler.NewFlightHandler(flightService).RegisterRoutes(router)
	handler.NewBookingHandler(bookingService).RegisterRoutes(router)
	handler.NewPaymentHandler(bookingService).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
