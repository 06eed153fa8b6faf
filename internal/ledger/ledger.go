package ledger

import (
	"sync"

	"github.com/shopspring/decimal"
)

// InitialBalance is credited to every account on first access.
var InitialBalance = decimal.NewFromInt(500)

// Ledger tracks per-user simulated balances. Debit is atomic: it either
// subtracts the full amount and reports true, or leaves the balance
// untouched and reports false.
type Ledger interface {
	Balance(userID int64) decimal.Decimal
	Debit(userID int64, amount decimal.Decimal) bool
	Credit(userID int64, amount decimal.Decimal)
}

// Memory keeps balances in process memory. This is the reference backend:
// balances reset on restart, matching the simulated product.
type Memory struct {
	mu       sync.Mutex
	balances map[int64]decimal.Decimal
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[int64]decimal.Decimal)}
}

func (m *Memory) balanceLocked(userID int64) decimal.Decimal {
	b, ok := m.balances[userID]
	if !ok {
		b = InitialBalance
		m.balances[userID] = b
	}
	return b
}

func (m *Memory) Balance(userID int64) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balanceLocked(userID)
}

func (m *Memory) Debit(userID int64, amount decimal.Decimal) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.balanceLocked(userID)
	if b.LessThan(amount) {
		return false
	}
	m.balances[userID] = b.Sub(amount)
	return true
}

func (m *Memory) Credit(userID int64, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = m.balanceLocked(userID).Add(amount)
}
