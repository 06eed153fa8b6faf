// Package messages holds every text the bot sends. The copy is the live
// product's Chinese wording; keep it byte-identical when touching this file.
package messages

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Demo transaction used for every simulated draw. The starred segments are
// rendered bold in chat.
const (
	DemoHashValue = "e540d19aa31f8770dec2064ac88e2864849cdc28340f4ba3c27e7b94**654**feb**32**"
	DemoHashURL   = "https://tronscan.org/#/transaction/e540d19aa31f8770dec2064ac88e2864849cdc28340f4ba3c27e7b94654feb32"

	DepositAddress = "TQs4qwRey1fa8z4qwvP1fT28J8TSnS6b25"

	FeatureDeveloping = "功能开发中..."
	ChooseOne         = "请选择"
)

var boldMark = regexp.MustCompile(`\*\*(\d+)\*\*`)

// DemoHashPlain is the demo hash with the bold markers stripped.
func DemoHashPlain() string {
	return strings.ReplaceAll(DemoHashValue, "**", "")
}

// DemoHashTailResult names the draw outcome derived from the hash tail.
func DemoHashTailResult() string {
	plain := DemoHashPlain()
	return fmt.Sprintf("尾数 %c", plain[len(plain)-1])
}

func FallbackPlayerName(userID int64) string {
	return fmt.Sprintf("用户%d", userID)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func BetSuccess(amount, balanceAfter decimal.Decimal) string {
	return fmt.Sprintf("投注 %s 成功，投注后余额 %s", money(amount), money(balanceAfter))
}

func WaitingHash() string {
	return "请稍等哈希结果！"
}

// HashResult renders the draw outcome. A zero bonus is the losing text.
func HashResult(bonus decimal.Decimal, hashValue, hashURL string, finalBalance decimal.Decimal) string {
	formatted := boldMark.ReplaceAllString(hashValue, "<b>$1</b>")
	link := fmt.Sprintf(`<a href="%s">%s</a>`, hashURL, formatted)
	if bonus.IsPositive() {
		return fmt.Sprintf("恭喜中奖 %s USDT！\n\nUSDT馀额：%s\n\n哈希值：%s",
			money(bonus), money(finalBalance), link)
	}
	return fmt.Sprintf("未中奖\n\n哈希值：%s", link)
}

func WinCaption(gameName string, amount, bonus decimal.Decimal, betTime time.Time, finalBalance decimal.Decimal) string {
	return fmt.Sprintf("🎉 恭喜中奖！\n\n游戏：%s\n投注金额：%s USDT\n中奖金额：%s USDT\n时间：%s\n\n当前余额：%s USDT",
		gameName, money(amount), money(bonus),
		betTime.Format("2006-01-02 15:04:05"), money(finalBalance))
}

func InsufficientBalance(balance, needed decimal.Decimal) string {
	return fmt.Sprintf("余额不足！当前余额：%s USDT，需要：%s USDT", money(balance), money(needed))
}

func BetConfirmation(amount string) string {
	return fmt.Sprintf("请确认是否下注 %s 元？", amount)
}

func BetTimeout() string {
	return "投注超时，请重新选择投注金额。"
}

func AutoBetConfirmation(amount string, count int, total decimal.Decimal) string {
	return fmt.Sprintf("请确认是否下注 %s 元，下注 %d 次，共 %s 元？", amount, count, money(total))
}

func AutoBetStopConfirmation(amount string) string {
	return fmt.Sprintf("请确认是否下注 %s 元，下注到再次点击停止？", amount)
}

func AutoBetTimeout() string {
	return "自动投注超时，请重新选择投注金额。"
}

func AutoBetStart(current, total int, amount string) string {
	return fmt.Sprintf("已开始自动下注，当前次数为（%d / %d），每次下注金额 %s USDT", current, total, amount)
}

func AutoBetFixedStart() string {
	return "已开始自动下注，点击「停止下注」可停止下注"
}

func AutoBetContinuousStart() string {
	return "已开始持续自动下注，点击「停止下注」可停止下注"
}

func AutoBetStopBet(count int, amount, balanceAfter decimal.Decimal) string {
	return fmt.Sprintf("自动投注第 %d 次，投注 %s 元成功，投注后馀额 %s 元", count, money(amount), money(balanceAfter))
}

func AutoBetStopped(done, total int) string {
	return fmt.Sprintf("已停止自动下注，已完成 %d/%d 次", done, total)
}

func AutoBetCompleted(total, done int) string {
	return fmt.Sprintf("自动下注 %d 次已完成（实际完成 %d 次）", total, done)
}

func AutoBetHaltedInsufficient(balance decimal.Decimal, done, total int) string {
	return fmt.Sprintf("余额不足，自动下注已停止。当前余额：%s USDT，已完成 %d/%d 次", money(balance), done, total)
}

func AutoBetContinuousHaltedInsufficient(balance decimal.Decimal) string {
	return fmt.Sprintf("余额不足，自动下注已停止。当前余额：%s USDT", money(balance))
}

func AutoBetAmountPrompt(balance decimal.Decimal) string {
	return fmt.Sprintf("当前USDT余额：%s\n请先选择自动下注金额", money(balance))
}

func AutoBetCountPrompt(balance decimal.Decimal) string {
	return fmt.Sprintf("当前USDT余额：%s\n请选择下注次数", money(balance))
}

func BetSelectionPrompt(balance decimal.Decimal) string {
	return fmt.Sprintf("当前USDT余额：%s\n请选择下注金额", money(balance))
}

func StartGameInfo() string {
	return "欢迎来到哈希游戏大厅！\n\n" +
		"所有游戏结果均以区块链交易哈希判定，链上可查，公平公正。\n" +
		"请在下方选单选择游戏"
}

func HashWheelInfo() string {
	return "哈希转盘玩法说明\n\n" +
		"以区块链交易哈希的尾数判定开奖结果，投注后约 3 秒开奖。\n" +
		"哈希值可于 tronscan 查证，公平公正。"
}

func CurrentRoom() string {
	return "当前房型：哈希新手场"
}

func ProfileInfo() string {
	return "个人中心\n请选择功能"
}

func CustomerService(botUsername string) string {
	return fmt.Sprintf("请联系客服(@%s)", botUsername)
}

func UserCheck(userExists, userLoggedIn bool) string {
	msg := "【首先确认是否有这个TG ID用户】\n\n"
	if !userExists {
		return msg +
			"【如果没有这个TG ID 用户】\n" +
			"于网投平台注册该TG用户\n" +
			"帐号生成优先度：TG绑定手机号>TGusernam>平台会员ID\n" +
			"密码生成方式：8码随机小写英文＋数字\n" +
			"TG ID必须写入网投，后续只要机器人请求登入时带TG ID就给登入\n\n" +
			"第二则讯息维持显示密码\n\n" +
			"【如果有这个TG ID用户】\n" +
			"若用户有登入，带入第二则讯息，但是无显示密码\n" +
			"若用户无登入，帮用户登入，带入第二则讯息，但是无显示密码"
	}
	msg += "【如果有这个TG ID用户】\n\n"
	if userLoggedIn {
		return msg + "若用户有登入，带入第二则讯息，但是无显示密码"
	}
	return msg + "若用户无登入，帮用户登入，带入第二则讯息，但是无显示密码"
}

func AccountInfo(telegramID int64, username string, showPassword bool, password string, balance decimal.Decimal) string {
	msg := fmt.Sprintf("用户名：%s\n", username)
	if showPassword && password != "" {
		msg += fmt.Sprintf("密码：%s\n", password)
	}
	msg += fmt.Sprintf("电报ID：%d\nUSDT余额：%s", telegramID, money(balance))
	return msg
}

func QuickActionsHint() string {
	return "💡 使用底部按钮快速操作"
}

func DepositAmountPrompt(balance decimal.Decimal) string {
	return fmt.Sprintf("当前USDT余额：%s\n请输入充值金额", money(balance))
}

func DepositInfo(amount decimal.Decimal) string {
	return fmt.Sprintf("请充值%s，到此充值地址，点击地址可直接复制\n\n<code>%s</code>\n\n转帐成功后3分钟内上分",
		money(amount), DepositAddress)
}

func DepositInvalidAmount() string {
	return "请输入有效的充值金额"
}

func DepositSuccess(amount, newBalance decimal.Decimal) string {
	return fmt.Sprintf("充值 %s USDT成功！\n当前USDT余额：%s", money(amount), money(newBalance))
}

func WithdrawAmountPrompt(balance decimal.Decimal) string {
	return fmt.Sprintf("当前USDT余额：%s\n请输入提款金额", money(balance))
}

func WithdrawInvalidAmount() string {
	return "请输入有效的提款金额"
}

func WithdrawMethodSelection() string {
	return "请选择提款方式"
}

func NoWithdrawMethods() string {
	return "您尚未绑定任何提款方式，请先前往安全中心绑定"
}

func WithdrawPasswordRequired() string {
	return "请先设置提款密码"
}

func WithdrawPasswordPrompt() string {
	return "请输入提款密码"
}

func WithdrawPasswordError() string {
	return "密码错误，请重新输入。"
}

func WithdrawSuccess() string {
	return "提款申请已送出，将为您尽速处理！"
}

func BankCardBinding(currentCard string) string {
	msg := ""
	if currentCard != "" {
		msg = fmt.Sprintf("当前银行卡：%s\n\n", currentCard)
	}
	return msg + "请依照下列格式输入银行卡资料，如无开户银行、开户城市，则于对应行填写\"无\"即可\n" +
		"\n------------\n\n" +
		"开户姓名\n银行卡号\n开户银行\n开户城市\n" +
		"\n------------\n\n" +
		"填写范例：\n\n王小明\n1234567890123456\nvisa银行\n无"
}

func BindingSuccess() string {
	return "绑定成功！"
}

func BindingFailure() string {
	return "绑定失败，请依照指定格式送入资料"
}

func WalletBinding(currentAddress string) string {
	msg := ""
	if currentAddress != "" {
		msg = fmt.Sprintf("当前钱包地址：%s\n\n", currentAddress)
	}
	return msg + "请依照下列格式输入钱包地址\n" +
		"\n------------\n\n" +
		"钱包地址\n提款密码（需与首次绑定银行卡的密码一致）\n" +
		"\n------------\n\n" +
		"填写范例：\n\nTWuN26pEnPDe5Fg15wWtdcTXcetzxgJS4V\n1234"
}

func BankCardRequired() string {
	return "请先绑定银行卡和设定提款密码"
}

func PasswordMismatch() string {
	return "密码错误，提款密码必须与首次绑定银行卡的密码一致"
}

func passwordDisplay(entered int) string {
	if entered < 0 {
		entered = 0
	}
	if entered > 4 {
		entered = 4
	}
	return strings.Repeat("*", entered) + strings.Repeat("-", 4-entered)
}

func WithdrawalPasswordSetup(entered int) string {
	return fmt.Sprintf("请设置提现密码\n----------------------------------------\n🔑:%s", passwordDisplay(entered))
}

func WithdrawalPasswordConfirm(entered int) string {
	return fmt.Sprintf("输入确认密码\n----------------------------------------\n🔑:%s", passwordDisplay(entered))
}

func WithdrawalPasswordSuccess() string {
	return "提款密码设置成功！"
}

func WithdrawalPasswordMismatch() string {
	return "两次输入的密码不一致，请重新设置"
}

// MaskCard hides all but the last six digits of a card number.
func MaskCard(card string) string {
	if len(card) <= 6 {
		return card
	}
	return strings.Repeat("*", len(card)-6) + card[len(card)-6:]
}

// MaskWallet keeps the first two and last six characters of an address.
func MaskWallet(address string) string {
	if len(address) <= 8 {
		return address
	}
	return address[:2] + strings.Repeat("*", len(address)-8) + address[len(address)-6:]
}

func DailyReport(date time.Time, game string) string {
	return fmt.Sprintf("报表类型：%s\n时间：%s\n活跃账号：0\n"+
		"------------------------------------\n"+
		"投注金额：0 USDT\n派奖金额：0 USDT\n投注盈亏：0 USDT\n"+
		"充值总额：0 USDT\n提款总额：0 USDT\n充提输赢：0 USDT\n转账笔数：0\n",
		game, date.Format("2006-01-02"))
}

func MonthlyReport(month time.Time, game string) string {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	end := start.AddDate(0, 1, -1)
	return fmt.Sprintf("报表类型：%s\n时间：%s ~ %s\n活跃帐号：0\n"+
		"------------------------------------\n"+
		"投注金额：0 USDT\n派奖金额：0 USDT\n投注盈亏：0 USDT\n"+
		"充值总额：0 USDT\n提款总额：0 USDT\n充提输赢：0 USDT\n转账笔数：0\n",
		game, start.Format("2006-01-02"), end.Format("2006-01-02"))
}
