package bot

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hashwheel-bot/internal/keyboards"
	"hashwheel-bot/internal/messages"
	"hashwheel-bot/internal/state"
)

const reportAllGames = "总计"

// showDailyReport sends the daily view for the user's cursor, replacing any
// report message already on screen.
func (b *Bot) showDailyReport(ctx context.Context, chatID, userID int64) {
	u := b.states.Get(userID)
	date := u.ReportDate
	if date.IsZero() {
		date = time.Now()
	}
	game := u.ReportGame
	if game == "" {
		game = reportAllGames
	}
	b.replaceReport(ctx, chatID, userID, messages.DailyReport(date, game), true)
	b.states.Update(userID, func(s *state.User) {
		s.ReportDate = date
		s.ReportGame = game
	})
	b.states.SetMenu(userID, state.MenuDailyReport)
}

func (b *Bot) showMonthlyReport(ctx context.Context, chatID, userID int64) {
	u := b.states.Get(userID)
	month := u.ReportMonth
	if month.IsZero() {
		month = time.Now()
	}
	game := u.ReportGame
	if game == "" {
		game = reportAllGames
	}
	b.replaceReport(ctx, chatID, userID, messages.MonthlyReport(month, game), false)
	b.states.Update(userID, func(s *state.User) {
		s.ReportMonth = month
		s.ReportGame = game
	})
	b.states.SetMenu(userID, state.MenuMonthlyReport)
}

// replaceReport deletes the previous report message, sends the new one and
// remembers its id. Report views are never edited in place.
func (b *Bot) replaceReport(ctx context.Context, chatID, userID int64, text string, daily bool) {
	if prev := b.states.Get(userID).ReportMsgID; prev != 0 {
		if err := b.sender.DeleteMessage(ctx, chatID, prev); err != nil {
			log.Warn().Err(err).Int64("user", userID).Int("message", prev).Msg("delete old report failed")
		}
	}
	markup := keyboards.MonthlyReportNav()
	if daily {
		markup = keyboards.DailyReportNav()
	}
	msgID, err := b.sender.SendText(ctx, chatID, text, markup)
	if err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("send report failed")
		return
	}
	b.states.Update(userID, func(s *state.User) {
		s.ReportMsgID = msgID
	})
}

func (b *Bot) dailyReportNav(ctx context.Context, chatID, userID int64, messageID int, action string) {
	u := b.states.Get(userID)
	date := u.ReportDate
	if date.IsZero() {
		date = time.Now()
	}
	game := u.ReportGame
	if game == "" {
		game = reportAllGames
	}

	switch {
	case action == "prev_day":
		date = date.AddDate(0, 0, -1)
	case action == "next_day":
		date = date.AddDate(0, 0, 1)
	case strings.HasPrefix(action, "game_"):
		game = strings.TrimPrefix(action, "game_")
	default:
		return
	}

	b.states.Update(userID, func(s *state.User) {
		s.ReportDate = date
		s.ReportGame = game
		if s.ReportMsgID == 0 {
			s.ReportMsgID = messageID
		}
	})
	b.replaceReport(ctx, chatID, userID, messages.DailyReport(date, game), true)
}

func (b *Bot) monthlyReportNav(ctx context.Context, chatID, userID int64, messageID int, action string) {
	u := b.states.Get(userID)
	month := u.ReportMonth
	if month.IsZero() {
		month = time.Now()
	}
	game := u.ReportGame
	if game == "" {
		game = reportAllGames
	}

	switch {
	case action == "prev_month":
		month = month.AddDate(0, -1, 0)
	case action == "next_month":
		month = month.AddDate(0, 1, 0)
	case strings.HasPrefix(action, "game_"):
		game = strings.TrimPrefix(action, "game_")
	default:
		return
	}

	b.states.Update(userID, func(s *state.User) {
		s.ReportMonth = month
		s.ReportGame = game
		if s.ReportMsgID == 0 {
			s.ReportMsgID = messageID
		}
	})
	b.replaceReport(ctx, chatID, userID, messages.MonthlyReport(month, game), false)
}
