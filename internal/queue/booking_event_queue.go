package queue

import (
	"context"
	"go-flight-booking/internal/model"
	"time"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
)

// BookingEvent 訂票生命週期事件，於資料庫 commit 之後發送
type BookingEvent struct {
	Type             string              `json:"type"`
	BookingID        int                 `json:"booking_id"`
	BookingReference string              `json:"booking_reference"`
	UserID           int                 `json:"user_id"`
	FlightID         int                 `json:"flight_id"`
	Status           model.BookingStatus `json:"status"`
	TotalCost        float64             `json:"total_cost"`
	ContactEmail     string              `json:"contact_email"`
	OccurredAt       time.Time           `json:"occurred_at"`
}

type Delivery struct {
	Data *BookingEvent
	Ack  func()
	Nack func(requeue bool)
}

type BookingEventQueue interface {
	// 發送訂票事件到隊列
	PublishBookingEvent(ctx context.Context, event *BookingEvent) error
	// 訂閱訂票事件隊列
	SubscribeBookingEvents(ctx context.Context) (<-chan Delivery, error)
}

type BookingEventQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch chan *BookingEvent
}

func NewBookingEventQueue(bufferSize int) BookingEventQueue {
	return &BookingEventQueueImpl{
		ch: make(chan *BookingEvent, bufferSize),
	}
}

func (q *BookingEventQueueImpl) PublishBookingEvent(ctx context.Context, event *BookingEvent) error {
	// 模擬 MQ 發送
	q.ch <- event
	return nil
}

func (q *BookingEventQueueImpl) SubscribeBookingEvents(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				// 將原始 BookingEvent 包裝成 Delivery 格式給 Worker
				out <- Delivery{
					Data: event,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- event // 簡單模擬重回隊列
						}
					},
				}
			}
		}
	}()

	return out, nil
}
