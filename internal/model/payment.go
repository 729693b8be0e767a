package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus 付款狀態類型
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// PaymentMethod 付款方式
type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodPaypal       PaymentMethod = "paypal"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// IsValid 驗證付款方式是否有效
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodPaypal, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// Payment 付款模型，一筆訂票同時最多一筆付款
type Payment struct {
	ID            int           `json:"id" db:"id"`
	BookingID     int           `json:"booking_id" db:"booking_id"`
	Amount        float64       `json:"amount" db:"amount"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	TransactionID string        `json:"transaction_id" db:"transaction_id"`
	Status        PaymentStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// NewTransactionID 產生交易編號："TX" + 10 碼大寫十六進位
func NewTransactionID() string {
	u := uuid.New()
	return fmt.Sprintf("TX%X", u[0:5])
}

// ProcessPaymentRequest 付款請求；卡片欄位僅在 credit_card 時必填
type ProcessPaymentRequest struct {
	BookingID      int    `json:"booking_id" binding:"required"`
	PaymentMethod  string `json:"payment_method" binding:"required"`
	CardNumber     string `json:"card_number"`
	ExpiryDate     string `json:"expiry_date"`
	CVV            string `json:"cvv"`
	CardHolderName string `json:"card_holder_name"`
}
