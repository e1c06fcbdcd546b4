package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencySign задаёт знак валюты магазина.
const CurrencySign = "₱"

// FormatMoney форматирует сумму для отображения с округлением до двух знаков.
func FormatMoney(d decimal.Decimal) string {
	return CurrencySign + d.StringFixed(2)
}

// CheckoutStatus описывает итог оформления продажи.
type CheckoutStatus string

const (
	CheckoutStatusCompleted CheckoutStatus = "COMPLETED"
	CheckoutStatusFailed    CheckoutStatus = "FAILED"
)

// CheckoutLine описывает результат отправки одной позиции корзины.
type CheckoutLine struct {
	Product    int64
	Quantity   int
	TotalPrice decimal.Decimal
	SaleID     *int64
	Error      string
}

// CheckoutRecord описывает запись журнала об одной попытке оформления продажи.
type CheckoutRecord struct {
	ID           int64
	StartedAt    time.Time
	FinishedAt   time.Time
	Loyalty      bool
	Customer     *int64
	Status       CheckoutStatus
	PointsEarned *int
	Error        string
	Lines        []CheckoutLine
}
