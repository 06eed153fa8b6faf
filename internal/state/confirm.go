package state

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ContinuousCount marks a confirmation for a run-until-stopped campaign.
const ContinuousCount = -1

// Confirmation is a pending two-phase bet approval, keyed by the prompt
// message it was attached to. Count is 0 for a single bet, a positive
// number for a fixed campaign, and ContinuousCount for a continuous one.
type Confirmation struct {
	UserID    int64
	ChatID    int64
	MessageID int
	Amount    decimal.Decimal
	Count     int
	CreatedAt time.Time
}

// Confirmations holds every outstanding approval. A user may have several
// at once; each one resolves or expires independently.
type Confirmations struct {
	mu     sync.Mutex
	byUser map[int64]map[int]Confirmation
}

func NewConfirmations() *Confirmations {
	return &Confirmations{byUser: make(map[int64]map[int]Confirmation)}
}

func (c *Confirmations) Add(conf Confirmation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs, ok := c.byUser[conf.UserID]
	if !ok {
		msgs = make(map[int]Confirmation)
		c.byUser[conf.UserID] = msgs
	}
	msgs[conf.MessageID] = conf
}

func (c *Confirmations) Get(userID int64, messageID int) (Confirmation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conf, ok := c.byUser[userID][messageID]
	return conf, ok
}

// Remove deletes one confirmation, leaving any siblings in place.
func (c *Confirmations) Remove(userID int64, messageID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byUser[userID], messageID)
	if len(c.byUser[userID]) == 0 {
		delete(c.byUser, userID)
	}
}

// Expired removes and returns every confirmation of the user older than
// window at the given instant.
func (c *Confirmations) Expired(userID int64, window time.Duration, now time.Time) []Confirmation {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Confirmation
	for id, conf := range c.byUser[userID] {
		if now.Sub(conf.CreatedAt) > window {
			out = append(out, conf)
			delete(c.byUser[userID], id)
		}
	}
	if len(c.byUser[userID]) == 0 {
		delete(c.byUser, userID)
	}
	return out
}
