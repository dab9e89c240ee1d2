package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"tapgame_webapp/internal/logger"
	"tapgame_webapp/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WelcomeBot greets players in the bot chat, creates their account ahead of
// the first web-app open and applies referral deep links (/start ref_CODE).
type WelcomeBot struct {
	bot       *tgbotapi.BotAPI
	users     *service.UserService
	referrals *service.ReferralService
	username  string
	stopCh    chan struct{}
	wg        sync.WaitGroup
	log       *slog.Logger
}

func NewWelcomeBot(token, botUsername string, users *service.UserService, referrals *service.ReferralService) (*WelcomeBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "welcome_bot")
	log.Info("bot authorized", "username", api.Self.UserName)

	return &WelcomeBot{
		bot:       api,
		users:     users,
		referrals: referrals,
		username:  botUsername,
		stopCh:    make(chan struct{}),
		log:       log,
	}, nil
}

func (b *WelcomeBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop gracefully stops the bot
func (b *WelcomeBot) Stop() {
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *WelcomeBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var reply string
	switch msg.Command() {
	case "start":
		reply = b.handleStart(ctx, msg)
	case "help":
		reply = b.helpMessage()
	default:
		return
	}

	if reply == "" {
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, reply)
	out.ParseMode = tgbotapi.ModeHTML
	if _, err := b.bot.Send(out); err != nil {
		b.log.Warn("send failed", "chat_id", msg.Chat.ID, "error", err)
	}
}

func (b *WelcomeBot) handleStart(ctx context.Context, msg *tgbotapi.Message) string {
	from := msg.From
	if from == nil {
		return ""
	}

	user, created, err := b.users.GetOrCreate(ctx, from.ID, from.UserName, from.FirstName)
	if err != nil {
		b.log.Error("get or create failed", "tg_id", from.ID, "error", err)
		return "Something went wrong, please try again later."
	}

	// /start ref_CODE from a shared link binds the referral before the
	// first web-app open.
	var referralNote string
	if payload := msg.CommandArguments(); strings.HasPrefix(payload, "ref_") {
		code := strings.TrimPrefix(payload, "ref_")
		if _, err := b.referrals.Apply(ctx, user.ID, code); err != nil {
			switch {
			case errors.Is(err, service.ErrSelfReferral),
				errors.Is(err, service.ErrDuplicateReferral),
				errors.Is(err, service.ErrInvalidCode):
				// expected, stay silent
			default:
				b.log.Warn("referral apply failed", "user_id", user.ID, "error", err)
			}
		} else {
			referralNote = "\n\nReferral bonus credited! 🎁"
		}
	}

	greeting := "Welcome back"
	if created {
		greeting = "Welcome"
	}

	return fmt.Sprintf(
		"%s, <b>%s</b>!\n\nTap to earn coins, level up and climb the leaderboard.\n\nYour referral link:\nhttps://t.me/%s?startapp=ref_%s%s",
		greeting, from.FirstName, b.username, user.ReferralCode, referralNote,
	)
}

func (b *WelcomeBot) helpMessage() string {
	return strings.Join([]string{
		"<b>Commands</b>",
		"/start - open your account and referral link",
		"/help - this message",
	}, "\n")
}
