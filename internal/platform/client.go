// Package platform talks to the betting platform's account API. The shipped
// client is a local mock: registration mints deterministic credentials and
// login always succeeds, which is all the simulated product needs.
package platform

import (
	"fmt"
	"math/rand"
	"sync"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

type Account struct {
	Username string
	Password string
}

type Client struct {
	mu       sync.Mutex
	accounts map[int64]Account
	loggedIn map[int64]bool
	rng      *rand.Rand
}

func NewClient(rng *rand.Rand) *Client {
	return &Client{
		accounts: make(map[int64]Account),
		loggedIn: make(map[int64]bool),
		rng:      rng,
	}
}

func (c *Client) Exists(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.accounts[userID]
	return ok
}

// Register creates the platform account for a Telegram user. The username
// is derived from the Telegram id; the password is 8 random characters.
func (c *Client) Register(userID int64) Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	if acc, ok := c.accounts[userID]; ok {
		return acc
	}
	pw := make([]byte, 8)
	for i := range pw {
		pw[i] = passwordAlphabet[c.rng.Intn(len(passwordAlphabet))]
	}
	acc := Account{
		Username: fmt.Sprintf("tg%d", userID),
		Password: string(pw),
	}
	c.accounts[userID] = acc
	return acc
}

func (c *Client) Login(userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.accounts[userID]; !ok {
		return fmt.Errorf("no account for user %d", userID)
	}
	c.loggedIn[userID] = true
	return nil
}

func (c *Client) IsLoggedIn(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedIn[userID]
}

func (c *Client) AccountOf(userID int64) (Account, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	acc, ok := c.accounts[userID]
	return acc, ok
}
