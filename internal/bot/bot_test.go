package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/shopspring/decimal"

	"hashwheel-bot/internal/artifact"
	"hashwheel-bot/internal/betting"
	"hashwheel-bot/internal/config"
	"hashwheel-bot/internal/dedup"
	"hashwheel-bot/internal/ledger"
	"hashwheel-bot/internal/state"
)

type sentMessage struct {
	id     int
	chatID int64
	text   string
	markup bool
}

type fakeSender struct {
	mu      sync.Mutex
	nextID  int
	sent    []sentMessage
	edits   []sentMessage
	deleted []int
	photos  []string
}

func (f *fakeSender) send(chatID int64, text string, markup telego.ReplyMarkup) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, sentMessage{id: f.nextID, chatID: chatID, text: text, markup: markup != nil})
	return f.nextID, nil
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, text string, markup telego.ReplyMarkup) (int, error) {
	return f.send(chatID, text, markup)
}

func (f *fakeSender) SendHTML(_ context.Context, chatID int64, text string, markup telego.ReplyMarkup) (int, error) {
	return f.send(chatID, text, markup)
}

func (f *fakeSender) SendPhoto(_ context.Context, _ int64, path, _ string, _ telego.ReplyMarkup) (int, error) {
	f.mu.Lock()
	f.photos = append(f.photos, path)
	f.mu.Unlock()
	// No image assets in tests; exercise the text fallback.
	return 0, errors.New("no image")
}

func (f *fakeSender) EditText(_ context.Context, chatID int64, messageID int, text string, markup *telego.InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, sentMessage{id: messageID, chatID: chatID, text: text, markup: markup != nil})
	return nil
}

func (f *fakeSender) RemoveMarkup(_ context.Context, _ int64, _ int) error {
	return nil
}

func (f *fakeSender) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) lastSent() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func (f *fakeSender) sentContains(substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.sent {
		if strings.Contains(m.text, substr) {
			return true
		}
	}
	return false
}

func (f *fakeSender) editsContain(substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.edits {
		if strings.Contains(m.text, substr) {
			return true
		}
	}
	return false
}

func newTestBot(t *testing.T) (*Bot, *fakeSender, *ledger.Memory) {
	t.Helper()
	cfg := &config.Config{
		BetResolveDelay:    time.Millisecond,
		ConfirmWindow:      50 * time.Millisecond,
		DepositCreditDelay: time.Millisecond,
		DedupTTL:           time.Hour,
		DedupMaxEntries:    100,
	}
	sender := &fakeSender{}
	l := ledger.NewMemory()
	b := newBot(cfg, sender, l, dedup.NewMemory(cfg.DedupTTL, cfg.DedupMaxEntries), artifact.Disabled{})
	// Deterministic draws: every bet loses.
	b.engine = betting.NewEngineWithDraws(engineSender{sender}, l, b.states, artifact.Disabled{},
		cfg.BetResolveDelay,
		func() bool { return false },
		func() decimal.Decimal { return decimal.RequireFromString("12.34") },
	)
	return b, sender, l
}

const (
	testChat int64 = 7
	testUser int64 = 7
)

func enterBettingRoom(b *Bot) {
	ctx := context.Background()
	b.handleText(ctx, testChat, testUser, "开始游戏")
	b.handleText(ctx, testChat, testUser, "哈希转盘")
}

func TestUnknownInputSilentlyIgnored(t *testing.T) {
	b, sender, _ := newTestBot(t)

	b.handleText(context.Background(), testChat, testUser, "你好")
	if sender.sentCount() != 0 {
		t.Fatalf("unknown input produced %d messages, want 0", sender.sentCount())
	}
	if b.states.Menu(testUser) != state.MenuHome {
		t.Fatal("unknown input must not change the menu state")
	}
}

func TestMenuNavigationIntoBettingRoom(t *testing.T) {
	b, sender, _ := newTestBot(t)

	enterBettingRoom(b)
	u := b.states.Get(testUser)
	if u.Menu != state.MenuBeginnerRoomBetting {
		t.Fatalf("menu = %v, want betting room", u.Menu)
	}
	if u.Source != state.SourceHashWheel {
		t.Fatalf("source = %v, want hash wheel", u.Source)
	}
	if !sender.sentContains("请选择下注金额") {
		t.Fatal("stake prompt not sent")
	}
}

func TestBackNavigation(t *testing.T) {
	b, _, _ := newTestBot(t)
	ctx := context.Background()

	b.handleText(ctx, testChat, testUser, "开始游戏")
	b.handleText(ctx, testChat, testUser, "更多游戏")
	if b.states.Menu(testUser) != state.MenuGameLevel2 {
		t.Fatal("should be on the second game level")
	}
	b.handleText(ctx, testChat, testUser, "上一页")
	if b.states.Menu(testUser) != state.MenuGameLevel1 {
		t.Fatal("should be back on the first game level")
	}
	b.handleText(ctx, testChat, testUser, "返回主页")
	if b.states.Menu(testUser) != state.MenuHome {
		t.Fatal("should be back home")
	}
}

func TestSingleBetConfirmAndSettle(t *testing.T) {
	b, sender, l := newTestBot(t)
	ctx := context.Background()

	enterBettingRoom(b)
	b.handleText(ctx, testChat, testUser, "10元")
	confirmMsg := sender.lastSent()
	if !strings.Contains(confirmMsg.text, "请确认是否下注 10 元") || !confirmMsg.markup {
		t.Fatalf("bad confirmation prompt: %+v", confirmMsg)
	}

	b.handleCallback(ctx, testChat, testUser, confirmMsg.id, "confirm_bet_10")
	b.tasks.Wait()

	if got := l.Balance(testUser); !got.Equal(decimal.NewFromInt(490)) {
		t.Fatalf("balance after losing bet = %s, want 490", got)
	}
	if !sender.sentContains("投注 10.00 成功") {
		t.Fatal("bet accepted message not sent")
	}
	if !sender.sentContains("未中奖") {
		t.Fatal("result message not sent")
	}
}

func TestConfirmationExpires(t *testing.T) {
	b, sender, l := newTestBot(t)
	ctx := context.Background()

	enterBettingRoom(b)
	b.handleText(ctx, testChat, testUser, "10元")
	confirmMsg := sender.lastSent()

	time.Sleep(80 * time.Millisecond)
	b.handleCallback(ctx, testChat, testUser, confirmMsg.id, "confirm_bet_10")
	b.tasks.Wait()

	if got := l.Balance(testUser); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expired confirmation must not debit, balance = %s", got)
	}
	if !sender.editsContain("投注超时") {
		t.Fatal("timeout text not shown")
	}
}

func TestConfirmWithWrongAmountIsStale(t *testing.T) {
	b, sender, l := newTestBot(t)
	ctx := context.Background()

	enterBettingRoom(b)
	b.handleText(ctx, testChat, testUser, "10元")
	confirmMsg := sender.lastSent()

	b.handleCallback(ctx, testChat, testUser, confirmMsg.id, "confirm_bet_50")
	b.tasks.Wait()

	if got := l.Balance(testUser); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("mismatched confirmation must not debit, balance = %s", got)
	}
	if !sender.editsContain("投注超时") {
		t.Fatal("mismatch should be answered with the timeout text")
	}
}

func TestTwoConfirmationsResolveIndependently(t *testing.T) {
	b, sender, l := newTestBot(t)
	ctx := context.Background()

	enterBettingRoom(b)
	b.handleText(ctx, testChat, testUser, "10元")
	first := sender.lastSent()
	b.handleText(ctx, testChat, testUser, "50元")
	second := sender.lastSent()

	b.handleCallback(ctx, testChat, testUser, first.id, "confirm_bet_10")
	b.tasks.Wait()
	if got := l.Balance(testUser); !got.Equal(decimal.NewFromInt(490)) {
		t.Fatalf("balance after first bet = %s, want 490", got)
	}

	// The second confirmation is untouched by the first resolution.
	b.handleCallback(ctx, testChat, testUser, second.id, "confirm_bet_50")
	b.tasks.Wait()
	if got := l.Balance(testUser); !got.Equal(decimal.NewFromInt(440)) {
		t.Fatalf("balance after second bet = %s, want 440", got)
	}
}

func TestFixedCampaignEndToEnd(t *testing.T) {
	b, sender, l := newTestBot(t)
	ctx := context.Background()

	enterBettingRoom(b)
	b.handleText(ctx, testChat, testUser, "自动下注")
	if b.states.Menu(testUser) != state.MenuAutoBetAmountSelection {
		t.Fatal("should be selecting the auto-bet amount")
	}
	b.handleText(ctx, testChat, testUser, "10元")
	if b.states.Menu(testUser) != state.MenuAutoBetCountSelection {
		t.Fatal("should be selecting the auto-bet count")
	}
	b.handleText(ctx, testChat, testUser, "20次")
	confirmMsg := sender.lastSent()
	if !strings.Contains(confirmMsg.text, "下注 20 次，共 200.00 元") {
		t.Fatalf("bad campaign confirmation: %q", confirmMsg.text)
	}

	b.handleCallback(ctx, testChat, testUser, confirmMsg.id, "confirm_auto_bet_10_20")
	b.engine.Wait()

	if got := l.Balance(testUser); !got.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("balance after 20 losing bets of 10 = %s, want 300", got)
	}
	if !sender.sentContains("自动下注 20 次已完成（实际完成 20 次）") {
		t.Fatal("completion summary not sent")
	}
	if b.states.Menu(testUser) != state.MenuBeginnerRoomBetting {
		t.Fatal("should be back in the betting room")
	}
}

func TestPasswordPadMismatchThenRetry(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()

	b.handleText(ctx, testChat, testUser, "个人中心")
	b.handleText(ctx, testChat, testUser, "安全中心")
	b.handleText(ctx, testChat, testUser, "提款密码")
	pad := sender.lastSent()
	if !strings.Contains(pad.text, "请设置提现密码") {
		t.Fatalf("password pad not shown: %q", pad.text)
	}

	press := func(keys ...string) {
		for _, k := range keys {
			b.handleCallback(ctx, testChat, testUser, pad.id, "pwd_"+k)
		}
	}

	press("1", "2", "3", "4")
	if b.states.Get(testUser).PasswordStep != state.PasswordConfirming {
		t.Fatal("should be confirming after four digits")
	}
	press("5", "6", "7", "8")
	if !sender.editsContain("两次输入的密码不一致") {
		t.Fatal("mismatch message not shown on the pad")
	}
	u := b.states.Get(testUser)
	if u.PasswordStep != state.PasswordNone || u.PasswordFirst != "" || u.PasswordBuffer != "" {
		t.Fatal("mismatch must close the dialogue completely")
	}
	if u.WithdrawPassword != "" {
		t.Fatal("no password may be stored after a mismatch")
	}

	// The dead pad no longer accepts digits.
	press("9", "9", "9", "9")
	press("9", "9", "9", "9")
	if got := b.states.Get(testUser).WithdrawPassword; got != "" {
		t.Fatalf("dead pad stored password %q", got)
	}

	// Setting the password means starting over from the security center.
	b.handleText(ctx, testChat, testUser, "提款密码")
	pad = sender.lastSent()
	press("1", "2", "3", "4")
	press("1", "2", "3", "4")
	u = b.states.Get(testUser)
	if u.WithdrawPassword != "1234" {
		t.Fatalf("password = %q, want 1234", u.WithdrawPassword)
	}
	if u.PasswordStep != state.PasswordNone {
		t.Fatal("dialogue should be closed after success")
	}
	if !sender.editsContain("提款密码设置成功") {
		t.Fatal("success text not shown")
	}
}

func TestMenuPressCancelsOpenDialogue(t *testing.T) {
	b, sender, l := newTestBot(t)
	ctx := context.Background()

	b.handleText(ctx, testChat, testUser, "充值")
	if !b.states.Get(testUser).Depositing {
		t.Fatal("deposit dialogue should be open")
	}
	b.handleText(ctx, testChat, testUser, "开始游戏")
	if b.states.Get(testUser).Depositing {
		t.Fatal("menu press must abandon the deposit dialogue")
	}

	// The amount text now falls through to the menu and is ignored.
	before := sender.sentCount()
	b.handleText(ctx, testChat, testUser, "123")
	b.tasks.Wait()
	if sender.sentCount() != before {
		t.Fatal("abandoned dialogue must not consume input")
	}
	if got := l.Balance(testUser); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("balance = %s, want 500", got)
	}
}

func TestDepositCreditsAfterDelay(t *testing.T) {
	b, sender, l := newTestBot(t)
	ctx := context.Background()

	b.handleText(ctx, testChat, testUser, "充值")
	b.handleText(ctx, testChat, testUser, "abc")
	if !sender.sentContains("请输入有效的充值金额") {
		t.Fatal("invalid amount must get a corrective message")
	}
	if !b.states.Get(testUser).Depositing {
		t.Fatal("invalid amount must keep the dialogue open")
	}

	b.handleText(ctx, testChat, testUser, "25.5")
	if !sender.sentContains("请充值25.50") {
		t.Fatal("deposit info not sent")
	}
	// The address goes out as a QR photo first, text is the fallback.
	sender.mu.Lock()
	photoTried := len(sender.photos) > 0 && sender.photos[len(sender.photos)-1] == "images/地址二维码.jpg"
	sender.mu.Unlock()
	if !photoTried {
		t.Fatal("deposit QR photo not attempted")
	}
	b.tasks.Wait()

	want := decimal.RequireFromString("525.5")
	if got := l.Balance(testUser); !got.Equal(want) {
		t.Fatalf("balance after deposit = %s, want %s", got, want)
	}
	if !sender.sentContains("充值 25.50 USDT成功") {
		t.Fatal("deposit success not sent")
	}
}

func TestWithdrawFlow(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()

	b.states.Update(testUser, func(u *state.User) {
		u.WithdrawPassword = "1234"
		u.BankCard = "6222021234567890"
	})

	b.handleText(ctx, testChat, testUser, "提款")
	selection := sender.lastSent()
	if !strings.Contains(selection.text, "请选择提款方式") || !selection.markup {
		t.Fatalf("bad method selection: %+v", selection)
	}
	b.handleCallback(ctx, testChat, testUser, selection.id, "withdraw_method_bank_card")
	if b.states.Get(testUser).WithdrawStep != state.WithdrawEnterAmount {
		t.Fatal("should be entering the amount")
	}
	sender.mu.Lock()
	selectionDeleted := len(sender.deleted) == 1 && sender.deleted[0] == selection.id
	sender.mu.Unlock()
	if !selectionDeleted {
		t.Fatal("method selection message should be deleted after the choice")
	}
	b.handleText(ctx, testChat, testUser, "xyz")
	if !sender.sentContains("请输入有效的提款金额") {
		t.Fatal("invalid amount must get a corrective message")
	}
	if b.states.Get(testUser).WithdrawStep != state.WithdrawEnterAmount {
		t.Fatal("invalid amount must keep the dialogue open")
	}
	b.handleText(ctx, testChat, testUser, "50")
	if !sender.sentContains("请输入提款密码") {
		t.Fatal("password prompt not sent")
	}
	b.handleText(ctx, testChat, testUser, "0000")
	if !sender.sentContains("密码错误，请重新输入。") {
		t.Fatal("wrong password not rejected")
	}
	b.handleText(ctx, testChat, testUser, "1234")
	if !sender.sentContains("提款申请已送出") {
		t.Fatal("withdraw success not sent")
	}
	if b.states.Get(testUser).WithdrawStep != state.WithdrawNone {
		t.Fatal("withdraw dialogue should be closed")
	}
}

func TestWithdrawRequiresBoundMethod(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()

	b.handleText(ctx, testChat, testUser, "提款")
	if !sender.sentContains("您尚未绑定任何提款方式，请先前往安全中心绑定") {
		t.Fatal("unbound user should be pointed at the security center")
	}
	if b.states.Get(testUser).WithdrawStep != state.WithdrawNone {
		t.Fatal("no withdraw dialogue may open without a bound method")
	}

	// Only the bound channels appear, labeled by their tails.
	b.states.Update(testUser, func(u *state.User) {
		u.WithdrawPassword = "1234"
		u.WalletTRC20 = "TWuN26pEnPDe5Fg15wWtdcTXcetzxgJS4V"
	})
	b.handleText(ctx, testChat, testUser, "提款")
	selection := sender.lastSent()
	b.handleCallback(ctx, testChat, testUser, selection.id, "withdraw_method_bank_card")
	if b.states.Get(testUser).WithdrawStep != state.WithdrawSelectMethod {
		t.Fatal("an unbound method press must be ignored")
	}
	b.handleCallback(ctx, testChat, testUser, selection.id, "withdraw_method_trc20")
	if b.states.Get(testUser).WithdrawStep != state.WithdrawEnterAmount {
		t.Fatal("the bound method should advance to the amount")
	}
}

func TestWalletBindingGuards(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()

	b.handleText(ctx, testChat, testUser, "个人中心")
	b.handleText(ctx, testChat, testUser, "安全中心")

	b.handleText(ctx, testChat, testUser, "USDT-TRC20绑定")
	if !sender.sentContains("请先绑定银行卡和设定提款密码") {
		t.Fatal("binding without a withdraw password should be refused")
	}

	b.states.Update(testUser, func(u *state.User) {
		u.WithdrawPassword = "1234"
	})
	b.handleText(ctx, testChat, testUser, "USDT-TRC20绑定")
	if b.states.Get(testUser).AwaitingWallet != state.WalletTRC20 {
		t.Fatal("wallet dialogue should be open")
	}

	b.handleText(ctx, testChat, testUser, "TWuN26pEnPDe5Fg15wWtdcTXcetzxgJS4V\n9999")
	if !sender.sentContains("密码错误，提款密码必须与首次绑定银行卡的密码一致") {
		t.Fatal("password mismatch not rejected")
	}
	b.handleText(ctx, testChat, testUser, "TWuN26pEnPDe5Fg15wWtdcTXcetzxgJS4V\n1234")
	u := b.states.Get(testUser)
	if u.WalletTRC20 != "TWuN26pEnPDe5Fg15wWtdcTXcetzxgJS4V" {
		t.Fatalf("wallet not bound: %q", u.WalletTRC20)
	}
	if u.AwaitingWallet != state.WalletNone {
		t.Fatal("wallet dialogue should be closed")
	}
}

func TestBankCardBindingFormat(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()

	b.handleText(ctx, testChat, testUser, "个人中心")
	b.handleText(ctx, testChat, testUser, "安全中心")

	b.handleText(ctx, testChat, testUser, "银行卡绑定")
	if !sender.sentContains("请先设置提款密码") {
		t.Fatal("binding without a withdraw password should be refused")
	}

	b.states.Update(testUser, func(u *state.User) {
		u.WithdrawPassword = "1234"
	})
	b.handleText(ctx, testChat, testUser, "银行卡绑定")
	if !b.states.Get(testUser).AwaitingCard {
		t.Fatal("card dialogue should be open")
	}

	b.handleText(ctx, testChat, testUser, "王小明\n1234567890123456")
	if !sender.sentContains("绑定失败") {
		t.Fatal("short form should be rejected")
	}
	b.handleText(ctx, testChat, testUser, "王小明\n1234567890123456\nvisa银行\n无")
	u := b.states.Get(testUser)
	if u.BankCard != "1234567890123456" {
		t.Fatalf("card = %q, want second line", u.BankCard)
	}
	if u.AwaitingCard {
		t.Fatal("card dialogue should be closed after binding")
	}
}

func TestInlineButtonCancelsDialogue(t *testing.T) {
	b, _, _ := newTestBot(t)
	ctx := context.Background()

	b.handleText(ctx, testChat, testUser, "充值")
	if !b.states.Get(testUser).Depositing {
		t.Fatal("deposit dialogue should be open")
	}
	b.handleCallback(ctx, testChat, testUser, 0, "official_service")
	if b.states.Get(testUser).Depositing {
		t.Fatal("an inline press must abandon the deposit dialogue")
	}
}

func TestStartDeduplicated(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()

	b.handleStart(ctx, testChat, testUser, 42)
	first := sender.sentCount()
	if first == 0 {
		t.Fatal("first /start should answer")
	}
	b.handleStart(ctx, testChat, testUser, 42)
	if sender.sentCount() != first {
		t.Fatal("duplicate /start delivery must be dropped")
	}

	b.handleStart(ctx, testChat, testUser, 43)
	if sender.sentCount() == first {
		t.Fatal("a new /start message must be answered")
	}
}

func TestReportBackNavigation(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()

	// Entered from the profile: back returns there.
	b.handleText(ctx, testChat, testUser, "个人中心")
	b.handleText(ctx, testChat, testUser, "报表中心")
	b.handleText(ctx, testChat, testUser, "返回上页")
	if b.states.Menu(testUser) != state.MenuProfile {
		t.Fatal("back from the report center should return to the profile")
	}

	// From a report view the previous step is the report center, so back
	// falls through to the home menu.
	b.handleText(ctx, testChat, testUser, "报表中心")
	b.handleText(ctx, testChat, testUser, "日统计")
	b.handleText(ctx, testChat, testUser, "返回上页")
	if b.states.Menu(testUser) != state.MenuHome {
		t.Fatal("back from a report view should land on the home menu")
	}
	if !sender.sentContains("💡 使用底部按钮快速操作") {
		t.Fatal("home hint not sent")
	}
}

func TestReportNavigation(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()

	b.handleText(ctx, testChat, testUser, "个人中心")
	b.handleText(ctx, testChat, testUser, "报表中心")
	b.handleText(ctx, testChat, testUser, "日统计")
	if b.states.Menu(testUser) != state.MenuDailyReport {
		t.Fatal("should be on the daily report")
	}
	reportMsg := sender.lastSent()
	if !strings.Contains(reportMsg.text, "报表类型：总计") {
		t.Fatalf("bad report body: %q", reportMsg.text)
	}

	b.handleCallback(ctx, testChat, testUser, reportMsg.id, "daily_report_prev_day")
	// Navigation deletes the old view and sends a fresh one.
	sender.mu.Lock()
	deleted := len(sender.deleted)
	sender.mu.Unlock()
	if deleted == 0 {
		t.Fatal("old report message should be deleted")
	}
	prevDay := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	if !sender.sentContains(prevDay) {
		t.Fatal("report should show the previous day")
	}

	b.handleCallback(ctx, testChat, testUser, sender.lastSent().id, "daily_report_game_哈希转盘")
	if !sender.sentContains("报表类型：哈希转盘") {
		t.Fatal("report should show the selected game")
	}
}
