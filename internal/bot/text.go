package bot

import (
	"context"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"hashwheel-bot/internal/keyboards"
	"hashwheel-bot/internal/messages"
	"hashwheel-bot/internal/state"
)

// menuButtons is every reply-keyboard label. Pressing any of them cancels an
// in-progress dialogue before the label is dispatched.
var menuButtons = func() map[string]struct{} {
	labels := []string{
		"开始游戏", "个人中心", "充值", "提款",
		"哈希转盘", "平倍牛牛", "十倍牛牛", "幸运庄闲", "更多游戏", "返回主页",
		"幸运哈希", "哈希单双", "哈希大小", "百家乐", "上一页",
		"报表中心", "安全中心",
		"提款密码", "银行卡绑定", "USDT-TRC20绑定", "USDT-ERC20绑定", "返回上页",
		"日统计", "月统计",
		"自动下注", "确认当前房型", "返回房型选单",
		"下注到点击停止", "停止下注",
	}
	set := make(map[string]struct{}, len(labels)+len(keyboards.BetAmounts)+len(keyboards.BetCounts))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	for _, a := range keyboards.BetAmounts {
		set[a+"元"] = struct{}{}
	}
	for _, c := range keyboards.BetCounts {
		set[c+"次"] = struct{}{}
	}
	return set
}()

func betAmountLabel(text string) (string, bool) {
	if !strings.HasSuffix(text, "元") {
		return "", false
	}
	label := strings.TrimSuffix(text, "元")
	for _, a := range keyboards.BetAmounts {
		if a == label {
			return label, true
		}
	}
	return "", false
}

func betCount(text string) (int, bool) {
	if !strings.HasSuffix(text, "次") {
		return 0, false
	}
	label := strings.TrimSuffix(text, "次")
	for _, c := range keyboards.BetCounts {
		if c == label {
			n, err := decimal.NewFromString(label)
			if err != nil {
				return 0, false
			}
			return int(n.IntPart()), true
		}
	}
	return 0, false
}

func (b *Bot) handleText(ctx context.Context, chatID, userID int64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if _, isMenu := menuButtons[text]; isMenu {
		// A menu press while a dialogue is open abandons the dialogue.
		b.states.Update(userID, func(u *state.User) {
			state.ResetFlows(u)
		})
	} else if b.handleDialogueInput(ctx, chatID, userID, text) {
		return
	}

	switch b.states.Menu(userID) {
	case state.MenuHome:
		b.textHome(ctx, chatID, userID, text)
	case state.MenuGameLevel1:
		b.textGameLevel1(ctx, chatID, userID, text)
	case state.MenuGameLevel2:
		b.textGameLevel2(ctx, chatID, userID, text)
	case state.MenuProfile:
		b.textProfile(ctx, chatID, userID, text)
	case state.MenuSecurityCenter:
		b.textSecurityCenter(ctx, chatID, userID, text)
	case state.MenuPersonalReport, state.MenuDailyReport, state.MenuMonthlyReport:
		b.textReports(ctx, chatID, userID, text)
	case state.MenuBeginnerRoomBetting:
		b.textBettingRoom(ctx, chatID, userID, text)
	case state.MenuAutoBetAmountSelection:
		b.textAutoBetAmount(ctx, chatID, userID, text)
	case state.MenuAutoBetCountSelection:
		b.textAutoBetCount(ctx, chatID, userID, text)
	case state.MenuAutoBetStopping:
		b.textAutoBetStopping(ctx, chatID, userID, text)
	default:
		b.states.SetMenu(userID, state.MenuHome)
	}
}

// handleDialogueInput consumes free text captured by an open dialogue.
// It reports whether the text was handled.
func (b *Bot) handleDialogueInput(ctx context.Context, chatID, userID int64, text string) bool {
	u := b.states.Get(userID)

	switch {
	case u.Depositing:
		b.depositAmount(ctx, chatID, userID, text)
		return true
	case u.WithdrawStep == state.WithdrawEnterAmount:
		b.withdrawAmount(ctx, chatID, userID, text)
		return true
	case u.WithdrawStep == state.WithdrawEnterPassword:
		b.withdrawPassword(ctx, chatID, userID, text)
		return true
	case u.AwaitingCard:
		b.bindCard(ctx, chatID, userID, text)
		return true
	case u.AwaitingWallet != state.WalletNone:
		b.bindWallet(ctx, chatID, userID, text, u.AwaitingWallet)
		return true
	}
	return false
}

func (b *Bot) depositAmount(ctx context.Context, chatID, userID int64, text string) {
	amount, err := decimal.NewFromString(text)
	if err != nil || !amount.IsPositive() {
		// The dialogue stays open for another attempt.
		if _, err := b.sender.SendText(ctx, chatID, messages.DepositInvalidAmount(), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send invalid amount message failed")
		}
		return
	}
	b.states.Update(userID, func(u *state.User) {
		u.Depositing = false
	})
	if _, err := b.sender.SendPhoto(ctx, chatID, depositQRImage, messages.DepositInfo(amount), nil); err != nil {
		log.Warn().Err(err).Int64("user", userID).Msg("deposit QR image unavailable, sending text")
		if _, err := b.sender.SendHTML(ctx, chatID, messages.DepositInfo(amount), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send deposit info failed")
		}
	}
	// The simulated transfer lands after a fixed delay.
	b.tasks.Add(1)
	go func() {
		defer b.tasks.Done()
		time.Sleep(b.cfg.DepositCreditDelay)
		b.ledger.Credit(userID, amount)
		newBalance := b.ledger.Balance(userID)
		log.Info().Int64("user", userID).Str("amount", amount.String()).Msg("deposit credited")
		if _, err := b.sender.SendText(context.Background(), chatID, messages.DepositSuccess(amount, newBalance), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send deposit success failed")
		}
	}()
}

func (b *Bot) withdrawAmount(ctx context.Context, chatID, userID int64, text string) {
	amount, err := decimal.NewFromString(text)
	if err != nil || !amount.IsPositive() {
		if _, err := b.sender.SendText(ctx, chatID, messages.WithdrawInvalidAmount(), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send invalid amount message failed")
		}
		return
	}
	b.states.Update(userID, func(u *state.User) {
		u.WithdrawAmount = amount
		u.WithdrawStep = state.WithdrawEnterPassword
	})
	if _, err := b.sender.SendText(ctx, chatID, messages.WithdrawPasswordPrompt(), nil); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send password prompt failed")
	}
}

func (b *Bot) withdrawPassword(ctx context.Context, chatID, userID int64, text string) {
	u := b.states.Get(userID)
	if text != u.WithdrawPassword {
		if _, err := b.sender.SendText(ctx, chatID, messages.WithdrawPasswordError(), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send password error failed")
		}
		return
	}
	b.states.Update(userID, func(u *state.User) {
		u.WithdrawStep = state.WithdrawNone
		u.WithdrawAmount = decimal.Zero
		u.WithdrawMethod = ""
	})
	log.Info().Int64("user", userID).Str("amount", u.WithdrawAmount.String()).
		Str("method", u.WithdrawMethod).Msg("withdrawal request submitted")
	if _, err := b.sender.SendText(ctx, chatID, messages.WithdrawSuccess(), nil); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send withdraw success failed")
	}
}

// bindCard expects the four-line card form; the card number is the second
// line. Anything else is rejected and the dialogue stays open.
func (b *Bot) bindCard(ctx context.Context, chatID, userID int64, text string) {
	lines := nonEmptyLines(text)
	if len(lines) != 4 {
		if _, err := b.sender.SendText(ctx, chatID, messages.BindingFailure(), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send binding failure failed")
		}
		return
	}
	if b.states.Get(userID).WithdrawPassword == "" {
		b.states.Update(userID, func(u *state.User) {
			u.AwaitingCard = false
		})
		if _, err := b.sender.SendText(ctx, chatID, messages.WithdrawPasswordRequired(), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send password required failed")
		}
		return
	}
	b.states.Update(userID, func(u *state.User) {
		u.BankCard = lines[1]
		u.AwaitingCard = false
	})
	if _, err := b.sender.SendText(ctx, chatID, messages.BindingSuccess(), nil); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send binding success failed")
	}
}

// bindWallet expects two lines: address and the withdraw password, which
// must match the one set with the bank card.
func (b *Bot) bindWallet(ctx context.Context, chatID, userID int64, text string, kind state.WalletKind) {
	lines := nonEmptyLines(text)
	if len(lines) != 2 {
		if _, err := b.sender.SendText(ctx, chatID, messages.BindingFailure(), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send binding failure failed")
		}
		return
	}
	if lines[1] != b.states.Get(userID).WithdrawPassword {
		if _, err := b.sender.SendText(ctx, chatID, messages.PasswordMismatch(), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send password mismatch failed")
		}
		return
	}
	b.states.Update(userID, func(u *state.User) {
		switch kind {
		case state.WalletTRC20:
			u.WalletTRC20 = lines[0]
		case state.WalletERC20:
			u.WalletERC20 = lines[0]
		}
		u.AwaitingWallet = state.WalletNone
	})
	if _, err := b.sender.SendText(ctx, chatID, messages.BindingSuccess(), nil); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send binding success failed")
	}
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func (b *Bot) showMenu(ctx context.Context, chatID, userID int64, markup telego.ReplyMarkup, menu state.Menu) {
	if _, err := b.sender.SendText(ctx, chatID, messages.ChooseOne, markup); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send menu failed")
	}
	b.states.SetMenu(userID, menu)
}

func (b *Bot) textHome(ctx context.Context, chatID, userID int64, text string) {
	switch text {
	case "开始游戏":
		b.handleGameCommand(ctx, chatID, userID)
	case "个人中心":
		b.handleProfileCommand(ctx, chatID, userID)
	case "充值":
		b.startDeposit(ctx, chatID, userID)
	case "提款":
		b.startWithdraw(ctx, chatID, userID)
	}
}

func (b *Bot) sendGamePreview(ctx context.Context, chatID, userID int64, game string) {
	path := "images/" + game + ".jpg"
	if _, err := b.sender.SendPhoto(ctx, chatID, path, game, nil); err != nil {
		log.Warn().Err(err).Str("game", game).Msg("game preview unavailable")
		if _, err := b.sender.SendText(ctx, chatID, messages.FeatureDeveloping, nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send fallback failed")
		}
	}
}

// enterHashWheel opens the hash wheel room: rules first, then the stake
// keyboard.
func (b *Bot) enterHashWheel(ctx context.Context, chatID, userID int64) {
	if _, err := b.sender.SendText(ctx, chatID, messages.HashWheelInfo(), nil); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send room info failed")
	}
	prompt := messages.BetSelectionPrompt(b.ledger.Balance(userID))
	if _, err := b.sender.SendText(ctx, chatID, prompt, keyboards.HashWheelBetting()); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send stake menu failed")
	}
	b.states.SetMenu(userID, state.MenuBeginnerRoomBetting)
	b.states.Update(userID, func(u *state.User) {
		u.Source = state.SourceHashWheel
	})
}

func (b *Bot) textGameLevel1(ctx context.Context, chatID, userID int64, text string) {
	switch text {
	case "哈希转盘":
		b.enterHashWheel(ctx, chatID, userID)
	case "平倍牛牛", "十倍牛牛", "幸运庄闲":
		b.sendGamePreview(ctx, chatID, userID, text)
	case "更多游戏":
		b.showMenu(ctx, chatID, userID, keyboards.GameLevel2(), state.MenuGameLevel2)
	case "返回主页":
		b.showMenu(ctx, chatID, userID, keyboards.Home(), state.MenuHome)
	}
}

func (b *Bot) textGameLevel2(ctx context.Context, chatID, userID int64, text string) {
	switch text {
	case "幸运哈希", "哈希单双", "哈希大小", "百家乐":
		b.sendGamePreview(ctx, chatID, userID, text)
	case "上一页":
		b.showMenu(ctx, chatID, userID, keyboards.GameLevel1(), state.MenuGameLevel1)
	}
}

func (b *Bot) textProfile(ctx context.Context, chatID, userID int64, text string) {
	switch text {
	case "报表中心":
		b.showMenu(ctx, chatID, userID, keyboards.PersonalReport(), state.MenuPersonalReport)
	case "安全中心":
		b.showMenu(ctx, chatID, userID, keyboards.SecurityCenter(), state.MenuSecurityCenter)
	case "返回主页":
		b.showMenu(ctx, chatID, userID, keyboards.Home(), state.MenuHome)
	}
}

func (b *Bot) textSecurityCenter(ctx context.Context, chatID, userID int64, text string) {
	switch text {
	case "提款密码":
		b.startPasswordSetup(ctx, chatID, userID)
	case "银行卡绑定":
		b.startCardBinding(ctx, chatID, userID)
	case "USDT-TRC20绑定":
		b.startWalletBinding(ctx, chatID, userID, state.WalletTRC20)
	case "USDT-ERC20绑定":
		b.startWalletBinding(ctx, chatID, userID, state.WalletERC20)
	case "返回上页":
		b.showMenu(ctx, chatID, userID, keyboards.Profile(), state.MenuProfile)
	}
}

func (b *Bot) startPasswordSetup(ctx context.Context, chatID, userID int64) {
	b.states.Update(userID, func(u *state.User) {
		u.PasswordStep = state.PasswordInputting
		u.PasswordBuffer = ""
		u.PasswordFirst = ""
	})
	if _, err := b.sender.SendText(ctx, chatID, messages.WithdrawalPasswordSetup(0), keyboards.PasswordPad()); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send password pad failed")
	}
}

func (b *Bot) startCardBinding(ctx context.Context, chatID, userID int64) {
	u := b.states.Get(userID)
	if u.WithdrawPassword == "" {
		if _, err := b.sender.SendText(ctx, chatID, messages.WithdrawPasswordRequired(), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send password required failed")
		}
		return
	}
	current := ""
	if u.BankCard != "" {
		current = messages.MaskCard(u.BankCard)
	}
	b.states.Update(userID, func(u *state.User) {
		u.AwaitingCard = true
	})
	if _, err := b.sender.SendText(ctx, chatID, messages.BankCardBinding(current), nil); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send card binding prompt failed")
	}
}

func (b *Bot) startWalletBinding(ctx context.Context, chatID, userID int64, kind state.WalletKind) {
	u := b.states.Get(userID)
	if u.WithdrawPassword == "" {
		if _, err := b.sender.SendText(ctx, chatID, messages.BankCardRequired(), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send card required failed")
		}
		return
	}
	current := ""
	switch kind {
	case state.WalletTRC20:
		current = u.WalletTRC20
	case state.WalletERC20:
		current = u.WalletERC20
	}
	if current != "" {
		current = messages.MaskWallet(current)
	}
	b.states.Update(userID, func(u *state.User) {
		u.AwaitingWallet = kind
	})
	if _, err := b.sender.SendText(ctx, chatID, messages.WalletBinding(current), nil); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send wallet binding prompt failed")
	}
}

func (b *Bot) textReports(ctx context.Context, chatID, userID int64, text string) {
	switch text {
	case "日统计":
		b.showDailyReport(ctx, chatID, userID)
	case "月统计":
		b.showMonthlyReport(ctx, chatID, userID)
	case "返回上页":
		// One level of undo: back to the profile when that is where the
		// user came from, otherwise all the way home.
		if b.states.Get(userID).PrevMenu == state.MenuProfile {
			b.showMenu(ctx, chatID, userID, keyboards.Profile(), state.MenuProfile)
			return
		}
		if _, err := b.sender.SendText(ctx, chatID, messages.QuickActionsHint(), keyboards.Home()); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send home menu failed")
		}
		b.states.SetMenu(userID, state.MenuHome)
	}
}

func (b *Bot) textBettingRoom(ctx context.Context, chatID, userID int64, text string) {
	if label, ok := betAmountLabel(text); ok {
		b.sendBetConfirmation(ctx, chatID, userID, label)
		return
	}
	switch text {
	case "自动下注":
		prompt := messages.AutoBetAmountPrompt(b.ledger.Balance(userID))
		if _, err := b.sender.SendText(ctx, chatID, prompt, keyboards.AutoBetAmount()); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send auto-bet amounts failed")
		}
		b.states.SetMenu(userID, state.MenuAutoBetAmountSelection)
	case "确认当前房型":
		if _, err := b.sender.SendText(ctx, chatID, messages.CurrentRoom(), nil); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send room info failed")
		}
	case "返回房型选单", "返回上页":
		b.showMenu(ctx, chatID, userID, keyboards.GameLevel1(), state.MenuGameLevel1)
	}
}

func (b *Bot) roomKeyboard(userID int64) telego.ReplyMarkup {
	if b.states.Get(userID).Source == state.SourceBeginnerRoom {
		return keyboards.BeginnerRoomBetting()
	}
	return keyboards.HashWheelBetting()
}

func (b *Bot) textAutoBetAmount(ctx context.Context, chatID, userID int64, text string) {
	if label, ok := betAmountLabel(text); ok {
		amount, _ := decimal.NewFromString(label)
		b.states.Update(userID, func(u *state.User) {
			u.AutoAmount = amount
		})
		prompt := messages.AutoBetCountPrompt(b.ledger.Balance(userID))
		if _, err := b.sender.SendText(ctx, chatID, prompt, keyboards.AutoBetCount()); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send auto-bet counts failed")
		}
		b.states.SetMenu(userID, state.MenuAutoBetCountSelection)
		return
	}
	if text == "返回上页" {
		b.showMenu(ctx, chatID, userID, b.roomKeyboard(userID), state.MenuBeginnerRoomBetting)
	}
}

func (b *Bot) textAutoBetCount(ctx context.Context, chatID, userID int64, text string) {
	u := b.states.Get(userID)
	if u.AutoAmount.IsZero() {
		// Count selection without an amount should not happen; restart.
		prompt := messages.AutoBetAmountPrompt(b.ledger.Balance(userID))
		if _, err := b.sender.SendText(ctx, chatID, prompt, keyboards.AutoBetAmount()); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send auto-bet amounts failed")
		}
		b.states.SetMenu(userID, state.MenuAutoBetAmountSelection)
		return
	}

	if text == "下注到点击停止" {
		b.sendAutoBetStopConfirmation(ctx, chatID, userID, u.AutoAmount)
		return
	}
	if count, ok := betCount(text); ok {
		b.sendAutoBetConfirmation(ctx, chatID, userID, u.AutoAmount, count)
		return
	}
	if text == "返回上页" {
		prompt := messages.AutoBetAmountPrompt(b.ledger.Balance(userID))
		if _, err := b.sender.SendText(ctx, chatID, prompt, keyboards.AutoBetAmount()); err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("send auto-bet amounts failed")
		}
		b.states.SetMenu(userID, state.MenuAutoBetAmountSelection)
	}
}

func (b *Bot) textAutoBetStopping(ctx context.Context, chatID, userID int64, text string) {
	if text != "停止下注" {
		return
	}
	// The campaign loop observes the cleared fields at the next bet
	// boundary; an in-flight bet still settles.
	b.states.Update(userID, func(u *state.User) {
		u.Continuous = false
		u.AutoCount = 0
	})
	log.Info().Int64("user", userID).Msg("auto-bet stop requested")
}
