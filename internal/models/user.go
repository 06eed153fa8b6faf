package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID         uint            `gorm:"primaryKey"`
	TelegramID int64           `gorm:"uniqueIndex;not null"`
	Username   string          `gorm:"size:255"`
	Balance    decimal.Decimal `gorm:"type:numeric(18,2)"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
