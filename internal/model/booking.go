package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingStatus 訂票狀態類型
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsValid 驗證狀態是否有效
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態。
// pending 沒有直接到 cancelled 的路徑：未付款的訂票會一直持有座位，
// 直到付款確認為止（沿用原系統行為，沒有自動過期釋放）。
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	transitions := map[BookingStatus][]BookingStatus{
		BookingStatusPending:   {BookingStatusConfirmed},
		BookingStatusConfirmed: {BookingStatusCancelled},
		BookingStatusCancelled: {}, // 終態，不能轉換到任何狀態
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// PassengerDetail 單一乘客資料
type PassengerDetail struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

// Booking 訂票模型
type Booking struct {
	ID               int               `json:"id" db:"id"`
	UserID           int               `json:"user_id" db:"user_id"`
	FlightID         int               `json:"flight_id" db:"flight_id"`
	BookingReference string            `json:"booking_reference" db:"booking_reference"`
	TotalCost        float64           `json:"total_cost" db:"total_cost"`
	MealOption       bool              `json:"meal_option" db:"meal_option"`
	Status           BookingStatus     `json:"status" db:"status"`
	PassengerCount   int               `json:"passenger_count" db:"passenger_count"`
	PassengerDetails []PassengerDetail `json:"passenger_details" db:"passenger_details"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at"`

	Flight  *Flight  `json:"flight,omitempty" db:"-"`
	Payment *Payment `json:"payment,omitempty" db:"-"`
}

// NewBookingReference 產生訂票編號："JA" + 8 碼大寫十六進位
func NewBookingReference() string {
	u := uuid.New()
	return fmt.Sprintf("JA%X", u[0:4])
}

// CreateBookingRequest 創建訂票請求
type CreateBookingRequest struct {
	UserID           int               `json:"user_id" binding:"required"`
	FlightID         int               `json:"flight_id" binding:"required"`
	MealOption       bool              `json:"meal_option"`
	PassengerDetails []PassengerDetail `json:"passenger_details" binding:"required,min=1,dive"`
}
