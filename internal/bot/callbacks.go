package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"hashwheel-bot/internal/keyboards"
	"hashwheel-bot/internal/messages"
	"hashwheel-bot/internal/state"
)

func (b *Bot) handleCallback(ctx context.Context, chatID, userID int64, messageID int, data string) {
	// An inline press means the user moved on from any open text dialogue.
	b.states.Update(userID, func(u *state.User) {
		u.Depositing = false
		u.AwaitingCard = false
		u.AwaitingWallet = state.WalletNone
	})

	switch {
	case strings.HasPrefix(data, "pwd_"):
		b.passwordPad(ctx, chatID, userID, messageID, strings.TrimPrefix(data, "pwd_"))
	case data == "official_service":
		b.sendCustomerService(ctx, chatID)
	case strings.HasPrefix(data, "withdraw_method_"):
		b.withdrawMethod(ctx, chatID, userID, messageID, strings.TrimPrefix(data, "withdraw_method_"))
	case strings.HasPrefix(data, "daily_report_"):
		b.dailyReportNav(ctx, chatID, userID, messageID, strings.TrimPrefix(data, "daily_report_"))
	case strings.HasPrefix(data, "monthly_report_"):
		b.monthlyReportNav(ctx, chatID, userID, messageID, strings.TrimPrefix(data, "monthly_report_"))
	// The stop prefix contains the plain auto-bet prefix, so it goes first.
	case strings.HasPrefix(data, "confirm_auto_bet_stop_"):
		label := strings.TrimPrefix(data, "confirm_auto_bet_stop_")
		b.confirmBet(ctx, chatID, userID, messageID, label, state.ContinuousCount)
	case strings.HasPrefix(data, "confirm_auto_bet_"):
		rest := strings.TrimPrefix(data, "confirm_auto_bet_")
		parts := strings.SplitN(rest, "_", 2)
		if len(parts) != 2 {
			return
		}
		count, err := strconv.Atoi(parts[1])
		if err != nil || count <= 0 {
			return
		}
		b.confirmBet(ctx, chatID, userID, messageID, parts[0], count)
	case strings.HasPrefix(data, "confirm_bet_"):
		b.confirmBet(ctx, chatID, userID, messageID, strings.TrimPrefix(data, "confirm_bet_"), 0)
	}
}

// registerConfirmation stores the pending approval and arms its timeout.
func (b *Bot) registerConfirmation(chatID, userID int64, messageID int, amount decimal.Decimal, count int) {
	b.confirms.Add(state.Confirmation{
		UserID:    userID,
		ChatID:    chatID,
		MessageID: messageID,
		Amount:    amount,
		Count:     count,
		CreatedAt: time.Now(),
	})
	window := b.cfg.ConfirmWindow
	go func() {
		time.Sleep(window)
		for _, conf := range b.confirms.Expired(userID, window, time.Now()) {
			text := messages.BetTimeout()
			if conf.Count != 0 {
				text = messages.AutoBetTimeout()
			}
			if err := b.sender.EditText(context.Background(), conf.ChatID, conf.MessageID, text, nil); err != nil {
				log.Warn().Err(err).Int64("user", userID).Int("message", conf.MessageID).
					Msg("edit expired confirmation failed")
			}
			log.Info().Int64("user", userID).Int("message", conf.MessageID).Msg("bet confirmation expired")
		}
	}()
}

func (b *Bot) sendBetConfirmation(ctx context.Context, chatID, userID int64, label string) {
	amount, err := decimal.NewFromString(label)
	if err != nil {
		return
	}
	msgID, sendErr := b.sender.SendText(ctx, chatID, messages.BetConfirmation(label), keyboards.BetConfirm(label))
	if sendErr != nil {
		log.Error().Err(sendErr).Int64("user", userID).Msg("send bet confirmation failed")
		return
	}
	b.registerConfirmation(chatID, userID, msgID, amount, 0)
}

func (b *Bot) sendAutoBetConfirmation(ctx context.Context, chatID, userID int64, amount decimal.Decimal, count int) {
	label := amount.String()
	total := amount.Mul(decimal.NewFromInt(int64(count)))
	text := messages.AutoBetConfirmation(label, count, total)
	msgID, err := b.sender.SendText(ctx, chatID, text, keyboards.AutoBetConfirm(label, count))
	if err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send auto-bet confirmation failed")
		return
	}
	b.registerConfirmation(chatID, userID, msgID, amount, count)
}

func (b *Bot) sendAutoBetStopConfirmation(ctx context.Context, chatID, userID int64, amount decimal.Decimal) {
	label := amount.String()
	text := messages.AutoBetStopConfirmation(label)
	msgID, err := b.sender.SendText(ctx, chatID, text, keyboards.AutoBetStopConfirm(label))
	if err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send auto-bet confirmation failed")
		return
	}
	b.registerConfirmation(chatID, userID, msgID, amount, state.ContinuousCount)
}

// confirmBet resolves a confirmation button press. The press only counts
// when a live record exists for this exact message with the exact amount
// and count; anything else is treated as expired.
func (b *Bot) confirmBet(ctx context.Context, chatID, userID int64, messageID int, label string, count int) {
	amount, err := decimal.NewFromString(label)
	if err != nil {
		return
	}

	conf, ok := b.confirms.Get(userID, messageID)
	stale := !ok ||
		!conf.Amount.Equal(amount) ||
		conf.Count != count ||
		time.Since(conf.CreatedAt) > b.cfg.ConfirmWindow
	if stale {
		b.confirms.Remove(userID, messageID)
		text := messages.BetTimeout()
		if count != 0 {
			text = messages.AutoBetTimeout()
		}
		if err := b.sender.EditText(ctx, chatID, messageID, text, nil); err != nil {
			log.Warn().Err(err).Int64("user", userID).Msg("edit stale confirmation failed")
		}
		return
	}
	b.confirms.Remove(userID, messageID)
	if err := b.sender.RemoveMarkup(ctx, chatID, messageID); err != nil {
		log.Warn().Err(err).Int64("user", userID).Msg("remove confirmation button failed")
	}

	switch {
	case count == 0:
		b.tasks.Add(1)
		go func() {
			defer b.tasks.Done()
			if err := b.engine.PlaceBet(context.Background(), chatID, userID, amount, nil); err != nil {
				log.Info().Err(err).Int64("user", userID).Msg("single bet not placed")
			}
		}()
	case count == state.ContinuousCount:
		if err := b.engine.StartContinuous(context.Background(), chatID, userID, amount); err != nil {
			log.Warn().Err(err).Int64("user", userID).Msg("continuous campaign not started")
		}
	default:
		if err := b.engine.StartFixed(context.Background(), chatID, userID, amount, label, count); err != nil {
			log.Warn().Err(err).Int64("user", userID).Msg("fixed campaign not started")
		}
	}
}

// withdrawMethod handles a choice from the method selection. The keyboard
// only shows bound channels, so an unbound method here means a stale press.
func (b *Bot) withdrawMethod(ctx context.Context, chatID, userID int64, messageID int, method string) {
	u := b.states.Get(userID)
	if u.WithdrawStep != state.WithdrawSelectMethod {
		return
	}

	switch method {
	case "bank_card":
		if u.BankCard == "" {
			return
		}
	case "trc20":
		if u.WalletTRC20 == "" {
			return
		}
	case "erc20":
		if u.WalletERC20 == "" {
			return
		}
	default:
		return
	}

	// The selection message has served its purpose.
	if err := b.sender.DeleteMessage(ctx, chatID, messageID); err != nil {
		log.Warn().Err(err).Int64("user", userID).Msg("delete method selection failed")
	}

	b.states.Update(userID, func(u *state.User) {
		u.WithdrawMethod = method
		u.WithdrawStep = state.WithdrawEnterAmount
	})
	if _, err := b.sender.SendText(ctx, chatID, messages.WithdrawAmountPrompt(b.ledger.Balance(userID)), nil); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send withdraw amount prompt failed")
	}
}

// passwordPad drives the four-digit PIN dialogue on the inline keypad.
func (b *Bot) passwordPad(ctx context.Context, chatID, userID int64, messageID int, key string) {
	u := b.states.Get(userID)
	if u.PasswordStep == state.PasswordNone {
		return
	}

	switch key {
	case "cancel":
		b.states.Update(userID, func(u *state.User) {
			u.PasswordStep = state.PasswordNone
			u.PasswordBuffer = ""
			u.PasswordFirst = ""
		})
		if err := b.sender.DeleteMessage(ctx, chatID, messageID); err != nil {
			log.Warn().Err(err).Int64("user", userID).Msg("delete password pad failed")
		}
		return
	case "delete":
		if u.PasswordBuffer != "" {
			u.PasswordBuffer = u.PasswordBuffer[:len(u.PasswordBuffer)-1]
			b.states.Update(userID, func(s *state.User) {
				s.PasswordBuffer = u.PasswordBuffer
			})
		}
		b.renderPasswordPad(ctx, chatID, userID, messageID, u.PasswordStep, len(u.PasswordBuffer))
		return
	}

	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return
	}
	if len(u.PasswordBuffer) >= 4 {
		return
	}
	buffer := u.PasswordBuffer + key
	if len(buffer) < 4 {
		b.states.Update(userID, func(s *state.User) {
			s.PasswordBuffer = buffer
		})
		b.renderPasswordPad(ctx, chatID, userID, messageID, u.PasswordStep, len(buffer))
		return
	}

	// Four digits entered.
	if u.PasswordStep == state.PasswordInputting {
		b.states.Update(userID, func(s *state.User) {
			s.PasswordFirst = buffer
			s.PasswordBuffer = ""
			s.PasswordStep = state.PasswordConfirming
		})
		b.renderPasswordPad(ctx, chatID, userID, messageID, state.PasswordConfirming, 0)
		return
	}

	if buffer == u.PasswordFirst {
		b.states.Update(userID, func(s *state.User) {
			s.WithdrawPassword = buffer
			s.PasswordStep = state.PasswordNone
			s.PasswordBuffer = ""
			s.PasswordFirst = ""
		})
		if err := b.sender.EditText(ctx, chatID, messageID, messages.WithdrawalPasswordSuccess(), nil); err != nil {
			log.Warn().Err(err).Int64("user", userID).Msg("edit password pad failed")
		}
		log.Info().Int64("user", userID).Msg("withdraw password set")
		return
	}

	// Mismatch ends the dialogue; setting a password starts over from the
	// security center.
	b.states.Update(userID, func(s *state.User) {
		s.PasswordStep = state.PasswordNone
		s.PasswordBuffer = ""
		s.PasswordFirst = ""
	})
	if err := b.sender.EditText(ctx, chatID, messageID, messages.WithdrawalPasswordMismatch(), nil); err != nil {
		log.Warn().Err(err).Int64("user", userID).Msg("edit password pad failed")
	}
	log.Info().Int64("user", userID).Msg("withdraw password confirmation mismatch")
}

func (b *Bot) renderPasswordPad(ctx context.Context, chatID, userID int64, messageID int, step state.PasswordStep, entered int) {
	text := messages.WithdrawalPasswordSetup(entered)
	if step == state.PasswordConfirming {
		text = messages.WithdrawalPasswordConfirm(entered)
	}
	if err := b.sender.EditText(ctx, chatID, messageID, text, keyboards.PasswordPad()); err != nil {
		log.Warn().Err(err).Int64("user", userID).Msg("edit password pad failed")
	}
}
