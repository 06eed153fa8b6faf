package ledger

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hashwheel-bot/internal/models"
)

// GORM persists balances in the users table. Every operation runs in a
// transaction with the row locked, so Debit keeps the same atomicity
// contract as Memory.
type GORM struct {
	db *gorm.DB
}

func NewGORM(db *gorm.DB) *GORM {
	return &GORM{db: db}
}

func (g *GORM) load(tx *gorm.DB, userID int64) (*models.User, error) {
	var user models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("telegram_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{TelegramID: userID, Balance: InitialBalance}
		if err := tx.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *GORM) Balance(userID int64) decimal.Decimal {
	var balance decimal.Decimal
	err := g.db.Transaction(func(tx *gorm.DB) error {
		user, err := g.load(tx, userID)
		if err != nil {
			return err
		}
		balance = user.Balance
		return nil
	})
	if err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("ledger balance lookup failed")
		return decimal.Zero
	}
	return balance
}

func (g *GORM) Debit(userID int64, amount decimal.Decimal) bool {
	ok := false
	err := g.db.Transaction(func(tx *gorm.DB) error {
		user, err := g.load(tx, userID)
		if err != nil {
			return err
		}
		if user.Balance.LessThan(amount) {
			return nil
		}
		user.Balance = user.Balance.Sub(amount)
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		ok = true
		return nil
	})
	if err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("ledger debit failed")
		return false
	}
	return ok
}

func (g *GORM) Credit(userID int64, amount decimal.Decimal) {
	err := g.db.Transaction(func(tx *gorm.DB) error {
		user, err := g.load(tx, userID)
		if err != nil {
			return err
		}
		user.Balance = user.Balance.Add(amount)
		return tx.Save(user).Error
	})
	if err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("ledger credit failed")
	}
}
