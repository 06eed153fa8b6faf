// Package keyboards builds every reply and inline keyboard the bot shows.
// Button labels double as dispatch keys, so they must stay in sync with the
// text handlers.
package keyboards

import (
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Games listed in the report views, in display order.
var Games = []string{
	"哈希转盘", "哈希大小", "哈希单双", "幸运哈希",
	"幸运庄闲", "平倍牛牛", "十倍牛牛", "百家乐",
}

// BetAmounts are the stake labels of the betting rooms, without the 元 suffix.
var BetAmounts = []string{"2", "5", "10", "30", "50", "100", "150", "200", "300", "500"}

// BetCounts are the fixed campaign sizes, without the 次 suffix.
var BetCounts = []string{"10", "20", "30", "50", "100", "150", "200", "300", "500", "1000"}

func replyRow(labels ...string) []telego.KeyboardButton {
	row := make([]telego.KeyboardButton, 0, len(labels))
	for _, l := range labels {
		row = append(row, tu.KeyboardButton(l))
	}
	return row
}

func reply(rows ...[]telego.KeyboardButton) *telego.ReplyKeyboardMarkup {
	return tu.Keyboard(rows...).WithResizeKeyboard()
}

func Home() *telego.ReplyKeyboardMarkup {
	return reply(
		replyRow("开始游戏", "个人中心"),
		replyRow("充值", "提款"),
	)
}

func GameLevel1() *telego.ReplyKeyboardMarkup {
	return reply(
		replyRow("哈希转盘", "平倍牛牛", "十倍牛牛"),
		replyRow("幸运庄闲", "更多游戏", "返回主页"),
	)
}

func GameLevel2() *telego.ReplyKeyboardMarkup {
	return reply(
		replyRow("幸运哈希", "哈希单双", "哈希大小"),
		replyRow("百家乐", "上一页"),
	)
}

func Profile() *telego.ReplyKeyboardMarkup {
	return reply(
		replyRow("报表中心", "安全中心"),
		replyRow("返回主页"),
	)
}

func SecurityCenter() *telego.ReplyKeyboardMarkup {
	return reply(
		replyRow("提款密码", "银行卡绑定"),
		replyRow("USDT-TRC20绑定", "USDT-ERC20绑定"),
		replyRow("返回上页"),
	)
}

func PersonalReport() *telego.ReplyKeyboardMarkup {
	return reply(
		replyRow("日统计", "月统计"),
		replyRow("返回上页"),
	)
}

func BeginnerRoomBetting() *telego.ReplyKeyboardMarkup {
	return reply(
		replyRow("2元", "5元", "10元", "30元"),
		replyRow("50元", "自动下注", "确认当前房型", "返回房型选单"),
	)
}

func HashWheelBetting() *telego.ReplyKeyboardMarkup {
	return reply(
		replyRow("2元", "5元", "10元", "30元", "50元"),
		replyRow("100元", "150元", "200元", "300元", "500元"),
		replyRow("自动下注", "返回上页"),
	)
}

func AutoBetAmount() *telego.ReplyKeyboardMarkup {
	return reply(
		replyRow("2元", "5元", "10元", "30元", "50元"),
		replyRow("100元", "150元", "200元", "300元", "500元"),
		replyRow("返回上页"),
	)
}

func AutoBetCount() *telego.ReplyKeyboardMarkup {
	return reply(
		replyRow("10次", "20次", "30次", "50次", "100次"),
		replyRow("150次", "200次", "300次", "500次", "1000次"),
		replyRow("下注到点击停止", "返回上页"),
	)
}

func StopBetting() *telego.ReplyKeyboardMarkup {
	return reply(replyRow("停止下注"))
}

func PasswordPad() *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("1").WithCallbackData("pwd_1"),
			tu.InlineKeyboardButton("2").WithCallbackData("pwd_2"),
			tu.InlineKeyboardButton("3").WithCallbackData("pwd_3"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("4").WithCallbackData("pwd_4"),
			tu.InlineKeyboardButton("5").WithCallbackData("pwd_5"),
			tu.InlineKeyboardButton("6").WithCallbackData("pwd_6"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("7").WithCallbackData("pwd_7"),
			tu.InlineKeyboardButton("8").WithCallbackData("pwd_8"),
			tu.InlineKeyboardButton("9").WithCallbackData("pwd_9"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("取消").WithCallbackData("pwd_cancel"),
			tu.InlineKeyboardButton("0").WithCallbackData("pwd_0"),
			tu.InlineKeyboardButton("删除").WithCallbackData("pwd_delete"),
		),
	)
}

func BetConfirm(amount string) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("确认下注").WithCallbackData("confirm_bet_" + amount),
		),
	)
}

func AutoBetConfirm(amount string, count int) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("确认下注").
				WithCallbackData(fmt.Sprintf("confirm_auto_bet_%s_%d", amount, count)),
		),
	)
}

func AutoBetStopConfirm(amount string) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("确认下注").WithCallbackData("confirm_auto_bet_stop_" + amount),
		),
	)
}

func OfficialService() *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("官方客服").WithCallbackData("official_service"),
		),
	)
}

// WithdrawMethods lists only the channels the user has bound, each labeled
// with the tail of its account. Callers must not build an empty keyboard.
func WithdrawMethods(bankCard, trc20, erc20 string) *telego.InlineKeyboardMarkup {
	var row []telego.InlineKeyboardButton
	if bankCard != "" {
		row = append(row, tu.InlineKeyboardButton("银行卡：尾号 "+tail(bankCard)).
			WithCallbackData("withdraw_method_bank_card"))
	}
	if trc20 != "" {
		row = append(row, tu.InlineKeyboardButton("USDT-TRC20：尾数 "+tail(trc20)).
			WithCallbackData("withdraw_method_trc20"))
	}
	if erc20 != "" {
		row = append(row, tu.InlineKeyboardButton("USDT-ERC20：尾数 "+tail(erc20)).
			WithCallbackData("withdraw_method_erc20"))
	}
	return tu.InlineKeyboard(row)
}

func tail(s string) string {
	if len(s) <= 6 {
		return s
	}
	return s[len(s)-6:]
}

func gameRows(prefix string) [][]telego.InlineKeyboardButton {
	rows := make([][]telego.InlineKeyboardButton, 0, len(Games)/2)
	for i := 0; i < len(Games); i += 2 {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("查看 "+Games[i]).WithCallbackData(prefix+Games[i]),
			tu.InlineKeyboardButton("查看 "+Games[i+1]).WithCallbackData(prefix+Games[i+1]),
		))
	}
	return rows
}

func DailyReportNav() *telego.InlineKeyboardMarkup {
	rows := [][]telego.InlineKeyboardButton{
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("上一日").WithCallbackData("daily_report_prev_day"),
			tu.InlineKeyboardButton("总计").WithCallbackData("daily_report_game_总计"),
			tu.InlineKeyboardButton("下一日").WithCallbackData("daily_report_next_day"),
		),
	}
	rows = append(rows, gameRows("daily_report_game_")...)
	return tu.InlineKeyboard(rows...)
}

func MonthlyReportNav() *telego.InlineKeyboardMarkup {
	rows := [][]telego.InlineKeyboardButton{
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("上一月").WithCallbackData("monthly_report_prev_month"),
			tu.InlineKeyboardButton("总计").WithCallbackData("monthly_report_game_总计"),
			tu.InlineKeyboardButton("下一月").WithCallbackData("monthly_report_next_month"),
		),
	}
	rows = append(rows, gameRows("monthly_report_game_")...)
	return tu.InlineKeyboard(rows...)
}
