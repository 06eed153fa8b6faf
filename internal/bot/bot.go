package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/rs/zerolog/log"

	"hashwheel-bot/internal/artifact"
	"hashwheel-bot/internal/betting"
	"hashwheel-bot/internal/config"
	"hashwheel-bot/internal/dedup"
	"hashwheel-bot/internal/ledger"
	"hashwheel-bot/internal/platform"
	"hashwheel-bot/internal/state"
)

type Bot struct {
	instance *telego.Bot
	handler  *th.BotHandler

	cfg      *config.Config
	sender   Sender
	states   *state.Store
	confirms *state.Confirmations
	ledger   ledger.Ledger
	engine   *betting.Engine
	platform *platform.Client
	dedup    dedup.Filter

	username string
	tasks    sync.WaitGroup
}

func NewBot(cfg *config.Config, l ledger.Ledger, filter dedup.Filter, images artifact.Generator) (*Bot, error) {
	tgBot, err := telego.NewBot(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	b := newBot(cfg, newTelegoSender(tgBot), l, filter, images)
	b.instance = tgBot
	return b, nil
}

// newBot wires everything except the transport, so tests can drive the
// dispatch with a fake Sender.
func newBot(cfg *config.Config, sender Sender, l ledger.Ledger, filter dedup.Filter, images artifact.Generator) *Bot {
	states := state.NewStore()
	return &Bot{
		cfg:      cfg,
		sender:   sender,
		states:   states,
		confirms: state.NewConfirmations(),
		ledger:   l,
		engine:   betting.NewEngine(engineSender{sender}, l, states, images, cfg.BetResolveDelay),
		platform: platform.NewClient(rand.New(rand.NewSource(time.Now().UnixNano()))),
		dedup:    filter,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	updates, err := b.instance.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	if me, err := b.instance.GetMe(ctx); err == nil {
		b.username = me.Username
	} else {
		log.Warn().Err(err).Msg("could not resolve bot username")
	}

	handler, err := th.NewBotHandler(b.instance, updates)
	if err != nil {
		return fmt.Errorf("failed to create handler: %w", err)
	}
	b.handler = handler

	handler.Handle(func(hctx *th.Context, update telego.Update) error {
		msg := update.Message
		b.handleStart(hctx.Context(), msg.Chat.ID, msg.From.ID, msg.MessageID)
		return nil
	}, th.CommandEqual("start"))

	handler.Handle(func(hctx *th.Context, update telego.Update) error {
		msg := update.Message
		b.handleGameCommand(hctx.Context(), msg.Chat.ID, msg.From.ID)
		return nil
	}, th.CommandEqual("game"))

	handler.Handle(func(hctx *th.Context, update telego.Update) error {
		msg := update.Message
		b.handleProfileCommand(hctx.Context(), msg.Chat.ID, msg.From.ID)
		return nil
	}, th.CommandEqual("profile"))

	handler.Handle(func(hctx *th.Context, update telego.Update) error {
		msg := update.Message
		b.startDeposit(hctx.Context(), msg.Chat.ID, msg.From.ID)
		return nil
	}, th.CommandEqual("deposit"))

	handler.Handle(func(hctx *th.Context, update telego.Update) error {
		msg := update.Message
		b.startWithdraw(hctx.Context(), msg.Chat.ID, msg.From.ID)
		return nil
	}, th.CommandEqual("withdraw"))

	handler.Handle(func(hctx *th.Context, update telego.Update) error {
		msg := update.Message
		b.sendCustomerService(hctx.Context(), msg.Chat.ID)
		return nil
	}, th.CommandEqual("customer_service"))

	handler.Handle(func(hctx *th.Context, update telego.Update) error {
		q := update.CallbackQuery
		chatID := q.From.ID
		messageID := 0
		if q.Message != nil {
			chatID = q.Message.GetChat().ID
			messageID = q.Message.GetMessageID()
		}
		b.handleCallback(hctx.Context(), chatID, q.From.ID, messageID, q.Data)
		_ = hctx.Bot().AnswerCallbackQuery(hctx.Context(), tu.CallbackQuery(q.ID))
		return nil
	}, th.AnyCallbackQueryWithMessage())

	handler.Handle(func(hctx *th.Context, update telego.Update) error {
		msg := update.Message
		if strings.HasPrefix(msg.Text, "/") {
			return nil
		}
		b.handleText(hctx.Context(), msg.Chat.ID, msg.From.ID, msg.Text)
		return nil
	}, th.AnyMessageWithText())

	handler.Start()
	return nil
}

// Stop halts update processing and waits for running campaigns.
func (b *Bot) Stop() {
	if b.handler != nil {
		b.handler.Stop()
	}
	b.engine.Wait()
	b.tasks.Wait()
}
