package relay

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type updater interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram relays group chats the bot is a member of. Group ids are the
// decimal chat ids.
type Telegram struct {
	u      updater
	s      sender
	offset int
}

func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return &Telegram{u: api, s: api}, nil
}

func (t *Telegram) Fetch(ctx context.Context) ([]Inbound, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := tgbotapi.NewUpdate(t.offset)
	cfg.Timeout = 0
	cfg.AllowedUpdates = []string{"message"}
	updates, err := t.u.GetUpdates(cfg)
	if err != nil {
		return nil, fmt.Errorf("telegram getUpdates: %w", err)
	}

	var out []Inbound
	for _, upd := range updates {
		if upd.UpdateID >= t.offset {
			t.offset = upd.UpdateID + 1
		}
		msg := upd.Message
		if msg == nil || msg.Chat == nil {
			continue
		}
		in := Inbound{
			Group: strconv.FormatInt(msg.Chat.ID, 10),
			Text:  msg.Text,
		}
		if msg.From != nil {
			in.Sender = msg.From.UserName
			if in.Sender == "" {
				in.Sender = strconv.FormatInt(msg.From.ID, 10)
			}
		}
		out = append(out, in)
	}
	return out, nil
}

func (t *Telegram) Send(ctx context.Context, group, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(group, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", group, err)
	}
	if _, err := t.s.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
