package betting

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mymmrac/telego"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"hashwheel-bot/internal/artifact"
	"hashwheel-bot/internal/keyboards"
	"hashwheel-bot/internal/ledger"
	"hashwheel-bot/internal/messages"
	"hashwheel-bot/internal/state"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrCampaignActive    = errors.New("auto-bet campaign already active")
)

// Sender delivers bet progress messages. Implementations must treat every
// call as best effort: the engine logs failures and keeps going.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, markup telego.ReplyMarkup) error
	SendHTML(ctx context.Context, chatID int64, text string, markup telego.ReplyMarkup) error
	SendPhoto(ctx context.Context, chatID int64, path, caption string, markup telego.ReplyMarkup) error
}

// Engine runs single bets and auto-bet campaigns. A user has at most one
// campaign running; a stop request never interrupts a bet whose stake is
// already debited.
type Engine struct {
	sender Sender
	ledger ledger.Ledger
	states *state.Store
	images artifact.Generator
	delay  time.Duration

	winDraw    func() bool
	payoutDraw func() decimal.Decimal

	mu     sync.Mutex
	active map[int64]struct{}
	wg     sync.WaitGroup
}

func NewEngine(sender Sender, l ledger.Ledger, states *state.Store, images artifact.Generator, resolveDelay time.Duration) *Engine {
	return &Engine{
		sender:  sender,
		ledger:  l,
		states:  states,
		images:  images,
		delay:   resolveDelay,
		winDraw: func() bool { return rand.Float64() < 0.5 },
		payoutDraw: func() decimal.Decimal {
			// Uniform 0.05 .. 100.00 in cents.
			return decimal.New(rand.Int63n(9996)+5, -2)
		},
		active: make(map[int64]struct{}),
	}
}

// NewEngineWithDraws builds an engine with fixed outcome draws, for
// deterministic simulation runs.
func NewEngineWithDraws(sender Sender, l ledger.Ledger, states *state.Store, images artifact.Generator, resolveDelay time.Duration, win func() bool, payout func() decimal.Decimal) *Engine {
	e := NewEngine(sender, l, states, images, resolveDelay)
	e.winDraw = win
	e.payoutDraw = payout
	return e
}

// Wait blocks until every running campaign has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) gameName(userID int64) string {
	// Every room currently resolves as the hash wheel.
	return "哈希转盘"
}

func (e *Engine) playerName(userID int64) string {
	if u := e.states.Get(userID); u.PlatformUser != "" {
		return u.PlatformUser
	}
	return messages.FallbackPlayerName(userID)
}

// PlaceBet runs one bet to completion: debit, accept message, draw after the
// resolve delay, then the result message. markup, when non-nil, is attached
// to the result so campaign runs keep the stop button visible.
func (e *Engine) PlaceBet(ctx context.Context, chatID, userID int64, amount decimal.Decimal, markup telego.ReplyMarkup) error {
	if !e.ledger.Debit(userID, amount) {
		balance := e.ledger.Balance(userID)
		if err := e.sender.SendText(ctx, chatID, messages.InsufficientBalance(balance, amount), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send insufficient-balance message failed")
		}
		return ErrInsufficientFunds
	}
	after := e.ledger.Balance(userID)

	if err := e.sender.SendText(ctx, chatID, messages.BetSuccess(amount, after), nil); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send bet-accepted message failed")
	}
	e.resolve(ctx, chatID, userID, amount, markup)
	return nil
}

// resolve runs everything after the debit: the waiting notice, the delay,
// the draw and the result delivery. The bet always settles once the stake
// is taken.
func (e *Engine) resolve(ctx context.Context, chatID, userID int64, amount decimal.Decimal, markup telego.ReplyMarkup) {
	if err := e.sender.SendText(ctx, chatID, messages.WaitingHash(), markup); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send waiting message failed")
	}

	time.Sleep(e.delay)
	betTime := time.Now()

	if !e.winDraw() {
		text := messages.HashResult(decimal.Zero, messages.DemoHashValue, messages.DemoHashURL, decimal.Zero)
		if err := e.sender.SendHTML(ctx, chatID, text, markup); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send no-win result failed")
		}
		log.Info().Int64("user", userID).Str("amount", amount.String()).Msg("bet lost")
		return
	}

	payout := e.payoutDraw()
	e.ledger.Credit(userID, payout)
	final := e.ledger.Balance(userID)
	log.Info().Int64("user", userID).
		Str("amount", amount.String()).
		Str("payout", payout.String()).
		Msg("bet won")

	path, err := e.images.WinImage(artifact.Params{
		GameName:   e.gameName(userID),
		TxHash:     messages.DemoHashPlain(),
		PlayerName: e.playerName(userID),
		Stake:      amount,
		Payout:     payout,
		Result:     messages.DemoHashTailResult(),
		When:       betTime,
	})
	if err == nil {
		caption := messages.WinCaption(e.gameName(userID), amount, payout, betTime, final)
		if err := e.sender.SendPhoto(ctx, chatID, path, caption, markup); err == nil {
			return
		}
		log.Warn().Int64("user", userID).Msg("win image send failed, falling back to text")
	}

	text := messages.HashResult(payout, messages.DemoHashValue, messages.DemoHashURL, final)
	if err := e.sender.SendHTML(ctx, chatID, text, markup); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send win result failed")
	}
}

func (e *Engine) acquire(userID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.active[userID]; busy {
		return false
	}
	e.active[userID] = struct{}{}
	return true
}

func (e *Engine) release(userID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.active, userID)
}

// stopRequested reports whether the user asked the campaign to stop: the
// count was cleared or they left the stopping menu.
func (e *Engine) stopRequested(userID int64, continuous bool) bool {
	u := e.states.Get(userID)
	if u.Menu != state.MenuAutoBetStopping {
		return true
	}
	if continuous {
		return !u.Continuous
	}
	return u.AutoCount == 0
}

// endCampaign clears the auto-bet fields and drops the user back into the
// hash wheel room.
func (e *Engine) endCampaign(ctx context.Context, chatID, userID int64) {
	e.states.Update(userID, func(u *state.User) {
		state.ClearCampaign(u)
	})
	if err := e.sender.SendText(ctx, chatID, messages.ChooseOne, keyboards.HashWheelBetting()); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send room menu failed")
	}
	e.states.SetMenu(userID, state.MenuBeginnerRoomBetting)
	e.states.Update(userID, func(u *state.User) {
		u.Source = state.SourceHashWheel
	})
}

// StartFixed launches a campaign of total bets of amount each. amountLabel
// is the stake as shown on the keyboard ("2", "50"), used in progress texts.
func (e *Engine) StartFixed(ctx context.Context, chatID, userID int64, amount decimal.Decimal, amountLabel string, total int) error {
	if !e.acquire(userID) {
		return ErrCampaignActive
	}
	campaign := uuid.New().String()
	e.states.Update(userID, func(u *state.User) {
		u.AutoAmount = amount
		u.AutoCount = total
		u.Continuous = false
	})
	e.states.SetMenu(userID, state.MenuAutoBetStopping)
	log.Info().Int64("user", userID).Str("campaign", campaign).
		Int("count", total).Str("amount", amount.String()).
		Msg("fixed auto-bet campaign started")

	// The stop keyboard goes up before the first stake is taken.
	if err := e.sender.SendText(ctx, chatID, messages.AutoBetFixedStart(), keyboards.StopBetting()); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send campaign start message failed")
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.release(userID)
		e.runFixed(ctx, chatID, userID, amount, amountLabel, total, campaign)
	}()
	return nil
}

func (e *Engine) runFixed(ctx context.Context, chatID, userID int64, amount decimal.Decimal, amountLabel string, total int, campaign string) {
	done := 0
	for i := 1; i <= total; i++ {
		if e.stopRequested(userID, false) {
			e.sendStopped(ctx, chatID, userID, done, total)
			break
		}
		if balance := e.ledger.Balance(userID); balance.LessThan(amount) {
			if err := e.sender.SendText(ctx, chatID, messages.AutoBetHaltedInsufficient(balance, done, total), nil); err != nil {
				log.Error().Err(err).Int64("user", userID).Msg("send halt message failed")
			}
			break
		}
		if !e.campaignBet(ctx, chatID, userID, amount, amountLabel, i, total) {
			break
		}
		done = i
		if i < total && e.stopRequested(userID, false) {
			e.sendStopped(ctx, chatID, userID, done, total)
			break
		}
	}
	if err := e.sender.SendText(ctx, chatID, messages.AutoBetCompleted(total, done), nil); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send completion message failed")
	}
	log.Info().Int64("user", userID).Str("campaign", campaign).
		Int("done", done).Int("total", total).
		Msg("fixed auto-bet campaign finished")
	e.endCampaign(ctx, chatID, userID)
}

// campaignBet is one fixed-campaign bet: debit, accept message, progress
// count, then resolution, all carrying the stop keyboard.
func (e *Engine) campaignBet(ctx context.Context, chatID, userID int64, amount decimal.Decimal, amountLabel string, current, total int) bool {
	if !e.ledger.Debit(userID, amount) {
		balance := e.ledger.Balance(userID)
		if err := e.sender.SendText(ctx, chatID, messages.InsufficientBalance(balance, amount), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send insufficient-balance message failed")
		}
		return false
	}
	after := e.ledger.Balance(userID)

	if err := e.sender.SendText(ctx, chatID, messages.BetSuccess(amount, after), keyboards.StopBetting()); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send bet-accepted message failed")
	}
	if err := e.sender.SendText(ctx, chatID, messages.AutoBetStart(current, total, amountLabel), keyboards.StopBetting()); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send progress message failed")
	}
	e.resolve(ctx, chatID, userID, amount, keyboards.StopBetting())
	return true
}

func (e *Engine) sendStopped(ctx context.Context, chatID, userID int64, done, total int) {
	if err := e.sender.SendText(ctx, chatID, messages.AutoBetStopped(done, total), nil); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send stopped message failed")
	}
}

// StartContinuous launches a run-until-stopped campaign.
func (e *Engine) StartContinuous(ctx context.Context, chatID, userID int64, amount decimal.Decimal) error {
	if !e.acquire(userID) {
		return ErrCampaignActive
	}
	campaign := uuid.New().String()
	e.states.Update(userID, func(u *state.User) {
		u.AutoAmount = amount
		u.AutoCount = 0
		u.Continuous = true
	})
	e.states.SetMenu(userID, state.MenuAutoBetStopping)
	log.Info().Int64("user", userID).Str("campaign", campaign).
		Str("amount", amount.String()).
		Msg("continuous auto-bet campaign started")

	if err := e.sender.SendText(ctx, chatID, messages.AutoBetContinuousStart(), keyboards.StopBetting()); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send campaign start message failed")
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.release(userID)
		e.runContinuous(ctx, chatID, userID, amount, campaign)
	}()
	return nil
}

func (e *Engine) runContinuous(ctx context.Context, chatID, userID int64, amount decimal.Decimal, campaign string) {
	count := 0
	for !e.stopRequested(userID, true) {
		count++
		balance := e.ledger.Balance(userID)
		if balance.LessThan(amount) {
			if err := e.sender.SendText(ctx, chatID, messages.AutoBetContinuousHaltedInsufficient(balance), nil); err != nil {
				log.Error().Err(err).Int64("user", userID).Msg("send halt message failed")
			}
			break
		}
		if !e.continuousBet(ctx, chatID, userID, amount, count) {
			break
		}
	}
	log.Info().Int64("user", userID).Str("campaign", campaign).
		Int("done", count).
		Msg("continuous auto-bet campaign finished")
	e.endCampaign(ctx, chatID, userID)
}

// continuousBet is PlaceBet with the running-count message format.
func (e *Engine) continuousBet(ctx context.Context, chatID, userID int64, amount decimal.Decimal, count int) bool {
	if !e.ledger.Debit(userID, amount) {
		balance := e.ledger.Balance(userID)
		if err := e.sender.SendText(ctx, chatID, messages.AutoBetContinuousHaltedInsufficient(balance), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send halt message failed")
		}
		return false
	}
	after := e.ledger.Balance(userID)
	if err := e.sender.SendText(ctx, chatID, messages.AutoBetStopBet(count, amount, after), nil); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send bet-accepted message failed")
	}
	e.resolve(ctx, chatID, userID, amount, keyboards.StopBetting())
	return true
}
