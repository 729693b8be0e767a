package email

import (
	"context"
	"go-flight-booking/internal/queue"
	"go-flight-booking/pkg/logger"

	"go.uber.org/zap"
)

// Sender 模擬寄送訂票通知信。真實系統會接 SMTP 或郵件服務，
// 這裡只寫 log，但保留失敗回傳讓 worker 的重試路徑可用。
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event *queue.BookingEvent) error {
	logger.WithComponent("email").Info("send booking notification",
		zap.String("to", event.ContactEmail),
		zap.String("type", event.Type),
		zap.String("booking_reference", event.BookingReference),
		zap.Int("flight_id", event.FlightID),
		zap.Float64("total_cost", event.TotalCost),
	)
	return nil
}
