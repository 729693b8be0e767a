package worker

import (
	"context"
	"go-flight-booking/internal/email"
	"go-flight-booking/internal/queue"
	"go-flight-booking/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// 超過這個時間還停在 created 的訂票視為疑似被遺棄的 pending，
// 只示警不處理：系統沒有自動釋放座位的政策。
const stalePendingThreshold = 24 * time.Hour

type NotificationWorker interface {
	// 訂閱訂票事件隊列
	Start(ctx context.Context) error
}

type NotificationWorkerImpl struct {
	sender *email.Sender
	queue  queue.BookingEventQueue
}

func NewNotificationWorker(sender *email.Sender, queue queue.BookingEventQueue) NotificationWorker {
	return &NotificationWorkerImpl{
		sender: sender,
		queue:  queue,
	}
}

func (w *NotificationWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeBookingEvents(ctx)
	if err != nil {
		return err
	}

	go func() {
		log := logger.WithComponent("worker")
		for msg := range msgs {
			event := msg.Data

			if event.Type == queue.EventBookingCreated && time.Since(event.OccurredAt) > stalePendingThreshold {
				log.Warn("pending booking has held seats past threshold",
					zap.String("booking_reference", event.BookingReference),
					zap.Int("flight_id", event.FlightID),
					zap.Time("occurred_at", event.OccurredAt),
				)
			}

			if err := w.sender.Send(ctx, event); err != nil {
				// 寄送暫時失敗，留給隊列重試
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}
