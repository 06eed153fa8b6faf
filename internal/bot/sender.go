package bot

import (
	"context"
	"os"
	"sync"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Sender is the outbound side of the bot. Every method is best effort:
// callers log failures and move on, a decided state transition is never
// rolled back because a message did not arrive.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, markup telego.ReplyMarkup) (int, error)
	SendHTML(ctx context.Context, chatID int64, text string, markup telego.ReplyMarkup) (int, error)
	SendPhoto(ctx context.Context, chatID int64, path, caption string, markup telego.ReplyMarkup) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string, markup *telego.InlineKeyboardMarkup) error
	RemoveMarkup(ctx context.Context, chatID int64, messageID int) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// telegoSender sends through the Bot API. Uploaded photos are cached by
// file_id so each image file is uploaded once.
type telegoSender struct {
	bot *telego.Bot

	mu      sync.Mutex
	fileIDs map[string]string
}

func newTelegoSender(bot *telego.Bot) *telegoSender {
	return &telegoSender{bot: bot, fileIDs: make(map[string]string)}
}

func (s *telegoSender) SendText(ctx context.Context, chatID int64, text string, markup telego.ReplyMarkup) (int, error) {
	params := tu.Message(tu.ID(chatID), text)
	if markup != nil {
		params = params.WithReplyMarkup(markup)
	}
	msg, err := s.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

func (s *telegoSender) SendHTML(ctx context.Context, chatID int64, text string, markup telego.ReplyMarkup) (int, error) {
	params := tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML)
	if markup != nil {
		params = params.WithReplyMarkup(markup)
	}
	msg, err := s.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

func (s *telegoSender) SendPhoto(ctx context.Context, chatID int64, path, caption string, markup telego.ReplyMarkup) (int, error) {
	s.mu.Lock()
	fileID, cached := s.fileIDs[path]
	s.mu.Unlock()

	var file telego.InputFile
	if cached {
		file = tu.FileFromID(fileID)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		file = tu.File(f)
	}

	params := tu.Photo(tu.ID(chatID), file).WithCaption(caption).WithParseMode(telego.ModeHTML)
	if markup != nil {
		params = params.WithReplyMarkup(markup)
	}
	msg, err := s.bot.SendPhoto(ctx, params)
	if err != nil {
		return 0, err
	}
	if !cached && len(msg.Photo) > 0 {
		s.mu.Lock()
		s.fileIDs[path] = msg.Photo[len(msg.Photo)-1].FileID
		s.mu.Unlock()
	}
	return msg.MessageID, nil
}

func (s *telegoSender) EditText(ctx context.Context, chatID int64, messageID int, text string, markup *telego.InlineKeyboardMarkup) error {
	_, err := s.bot.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:      tu.ID(chatID),
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: markup,
	})
	return err
}

func (s *telegoSender) RemoveMarkup(ctx context.Context, chatID int64, messageID int) error {
	_, err := s.bot.EditMessageReplyMarkup(ctx, &telego.EditMessageReplyMarkupParams{
		ChatID:    tu.ID(chatID),
		MessageID: messageID,
	})
	return err
}

func (s *telegoSender) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return s.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    tu.ID(chatID),
		MessageID: messageID,
	})
}

// engineSender narrows Sender for the betting engine, which never needs
// message ids back.
type engineSender struct {
	s Sender
}

func (es engineSender) SendText(ctx context.Context, chatID int64, text string, markup telego.ReplyMarkup) error {
	_, err := es.s.SendText(ctx, chatID, text, markup)
	return err
}

func (es engineSender) SendHTML(ctx context.Context, chatID int64, text string, markup telego.ReplyMarkup) error {
	_, err := es.s.SendHTML(ctx, chatID, text, markup)
	return err
}

func (es engineSender) SendPhoto(ctx context.Context, chatID int64, path, caption string, markup telego.ReplyMarkup) error {
	_, err := es.s.SendPhoto(ctx, chatID, path, caption, markup)
	return err
}
