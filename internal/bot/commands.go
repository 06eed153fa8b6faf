package bot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"hashwheel-bot/internal/keyboards"
	"hashwheel-bot/internal/messages"
	"hashwheel-bot/internal/state"
)

const (
	startGameImage = "images/开始游戏.jpg"
	depositQRImage = "images/地址二维码.jpg"
)

// handleStart is the /start entry. Repeated deliveries of the same update
// are dropped through the dedup filter before any state changes.
func (b *Bot) handleStart(ctx context.Context, chatID, userID int64, messageID int) {
	key := fmt.Sprintf("%d:%d", userID, messageID)
	if b.dedup.Seen(ctx, key) {
		log.Info().Int64("user", userID).Str("key", key).Msg("duplicate /start dropped")
		return
	}
	b.dedup.Mark(ctx, key)
	b.returnToHome(ctx, chatID, userID)
}

// returnToHome provisions the platform account if needed, logs the user in
// and lands them on the home menu.
func (b *Bot) returnToHome(ctx context.Context, chatID, userID int64) {
	freshAccount := !b.platform.Exists(userID)
	acc := b.platform.Register(userID)
	loggedIn := b.platform.IsLoggedIn(userID)
	if !loggedIn {
		if err := b.platform.Login(userID); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("platform login failed")
		}
	}
	b.states.Update(userID, func(u *state.User) {
		state.ResetFlows(u)
		u.PlatformUser = acc.Username
		u.PlatformPassword = acc.Password
		u.LoggedIn = true
	})

	if _, err := b.sender.SendText(ctx, chatID, messages.UserCheck(!freshAccount, loggedIn), nil); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send user check failed")
	}

	// A freshly registered account shows its generated password once.
	info := messages.AccountInfo(userID, acc.Username, freshAccount, acc.Password, b.ledger.Balance(userID))
	if _, err := b.sender.SendText(ctx, chatID, info, keyboards.Home()); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send account info failed")
	}
	b.states.SetMenu(userID, state.MenuHome)
}

// handleGameCommand shows the game lobby: the intro artwork with the
// customer service button, then the first-level game menu.
func (b *Bot) handleGameCommand(ctx context.Context, chatID, userID int64) {
	if _, err := b.sender.SendPhoto(ctx, chatID, startGameImage, messages.StartGameInfo(), keyboards.OfficialService()); err != nil {
		log.Warn().Err(err).Int64("user", userID).Msg("start game image unavailable, sending text")
		if _, err := b.sender.SendText(ctx, chatID, messages.StartGameInfo(), keyboards.OfficialService()); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send start game info failed")
		}
	}
	if _, err := b.sender.SendText(ctx, chatID, messages.ChooseOne, keyboards.GameLevel1()); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send game menu failed")
	}
	b.states.SetMenu(userID, state.MenuGameLevel1)
}

func (b *Bot) handleProfileCommand(ctx context.Context, chatID, userID int64) {
	if _, err := b.sender.SendText(ctx, chatID, messages.ProfileInfo(), keyboards.Profile()); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send profile failed")
	}
	b.states.SetMenu(userID, state.MenuProfile)
}

func (b *Bot) startDeposit(ctx context.Context, chatID, userID int64) {
	b.states.Update(userID, func(u *state.User) {
		state.ResetFlows(u)
		u.Depositing = true
	})
	if _, err := b.sender.SendText(ctx, chatID, messages.DepositAmountPrompt(b.ledger.Balance(userID)), nil); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send deposit prompt failed")
	}
}

func (b *Bot) startWithdraw(ctx context.Context, chatID, userID int64) {
	u := b.states.Get(userID)
	if u.BankCard == "" && u.WalletTRC20 == "" && u.WalletERC20 == "" {
		if _, err := b.sender.SendText(ctx, chatID, messages.NoWithdrawMethods(), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send no withdraw methods failed")
		}
		return
	}
	b.states.Update(userID, func(u *state.User) {
		state.ResetFlows(u)
		u.WithdrawStep = state.WithdrawSelectMethod
	})
	markup := keyboards.WithdrawMethods(u.BankCard, u.WalletTRC20, u.WalletERC20)
	if _, err := b.sender.SendText(ctx, chatID, messages.WithdrawMethodSelection(), markup); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send withdraw methods failed")
	}
}

func (b *Bot) sendCustomerService(ctx context.Context, chatID int64) {
	if _, err := b.sender.SendText(ctx, chatID, messages.CustomerService(b.username), nil); err != nil {
		log.Error().Err(err).Int64("chat", chatID).Msg("send customer service failed")
	}
}
