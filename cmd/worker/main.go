package main

import (
	"context"
	"go-flight-booking/config"
	"go-flight-booking/internal/database"
	"go-flight-booking/internal/email"
	"go-flight-booking/internal/queue"
	"go-flight-booking/internal/worker"
	"go-flight-booking/pkg/logger"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	log := logger.WithComponent("worker")
	cfg := config.LoadConfig()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	defer rdb.Close()

	eventQueue, err := queue.NewRedisStreamBookingEventQueue(rdb, os.Getenv("CONSUMER_ID"), nil)
	if err != nil {
		log.Fatal("Failed to initialize booking event queue", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notificationWorker := worker.NewNotificationWorker(email.NewSender(), eventQueue)
	if err := notificationWorker.Start(ctx); err != nil {
		log.Fatal("Failed to start notification worker", zap.Error(err))
	}

	log.Info("notification worker started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info("received signal, shutting down", zap.String("signal", s.String()))
}
