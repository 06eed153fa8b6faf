// Package artifact abstracts the win-image renderer. The bot only needs a
// file to attach; when no renderer is wired in, callers fall back to the
// text result message.
package artifact

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnavailable means no image could be produced and the caller should
// degrade to text.
var ErrUnavailable = errors.New("win image unavailable")

type Params struct {
	GameName   string
	TxHash     string
	PlayerName string
	Stake      decimal.Decimal
	Payout     decimal.Decimal
	Result     string
	When       time.Time
}

type Generator interface {
	WinImage(p Params) (string, error)
}

// Disabled is the default generator: it renders nothing.
type Disabled struct{}

func (Disabled) WinImage(Params) (string, error) {
	return "", ErrUnavailable
}
