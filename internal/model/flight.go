package model

import "time"

// Flight 航班模型
type Flight struct {
	ID               int        `json:"id" db:"id"`
	FlightNumber     string     `json:"flight_number" db:"flight_number"`
	Origin           string     `json:"origin" db:"origin"`
	Destination      string     `json:"destination" db:"destination"`
	DepartureTime    time.Time  `json:"departure_time" db:"departure_time"`
	ArrivalTime      time.Time  `json:"arrival_time" db:"arrival_time"`
	PriceWithoutMeal float64    `json:"price_without_meal" db:"price_without_meal"`
	PriceWithMeal    float64    `json:"price_with_meal" db:"price_with_meal"`
	TotalSeats       int        `json:"total_seats" db:"total_seats"`
	AvailableSeats   int        `json:"available_seats" db:"available_seats"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted 檢查航班是否已刪除
func (f *Flight) IsDeleted() bool {
	return f.DeletedAt != nil
}

// HasAvailableSeats 檢查航班是否還有足夠座位
func (f *Flight) HasAvailableSeats(count int) bool {
	return !f.IsDeleted() && f.AvailableSeats >= count
}

// UnitPrice 依是否含餐回傳每位乘客票價
func (f *Flight) UnitPrice(mealOption bool) float64 {
	if mealOption {
		return f.PriceWithMeal
	}
	return f.PriceWithoutMeal
}

// CreateFlightRequest 創建航班請求
type CreateFlightRequest struct {
	FlightNumber     string    `json:"flight_number" binding:"required"`
	Origin           string    `json:"origin" binding:"required"`
	Destination      string    `json:"destination" binding:"required"`
	DepartureTime    time.Time `json:"departure_time" binding:"required"`
	ArrivalTime      time.Time `json:"arrival_time" binding:"required"`
	PriceWithoutMeal float64   `json:"price_without_meal" binding:"min=0"`
	PriceWithMeal    float64   `json:"price_with_meal" binding:"min=0"`
	TotalSeats       int       `json:"total_seats" binding:"required,min=1"`
	AvailableSeats   *int      `json:"available_seats,omitempty"`
}

type UpdateFlightParams struct {
	FlightNumber     *string
	Origin           *string
	Destination      *string
	PriceWithoutMeal *float64
	PriceWithMeal    *float64
}

// SearchFlightsRequest 航班搜尋條件(query string 綁定)
type SearchFlightsRequest struct {
	Origin        string   `form:"origin" binding:"required"`
	Destination   string   `form:"destination" binding:"required"`
	DepartureDate string   `form:"departure_date" binding:"required"`
	Passengers    int      `form:"passengers" binding:"required,min=1"`
	MaxPrice      *float64 `form:"max_price"`
}

// SearchFlightsParams 解析後的搜尋條件，交給 repository 使用
type SearchFlightsParams struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	Passengers    int
	MaxPrice      *float64
}
