package relay

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeUpdater struct {
	batches [][]tgbotapi.Update
	offsets []int
}

func (f *fakeUpdater) GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	f.offsets = append(f.offsets, cfg.Offset)
	if len(f.batches) == 0 {
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

type fakeSender struct{ sent []tgbotapi.MessageConfig }

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestTelegramFetch_AdvancesOffset(t *testing.T) {
	u := &fakeUpdater{batches: [][]tgbotapi.Update{
		{
			{UpdateID: 10, Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: -100}, From: &tgbotapi.User{ID: 1, UserName: "alice"}, Text: "hi"}},
			{UpdateID: 11, Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: -100}, From: &tgbotapi.User{ID: 2}, Text: "yo"}},
			{UpdateID: 12},
		},
	}}
	tg := &Telegram{u: u, s: &fakeSender{}}
	got, err := tg.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 || got[0] != (Inbound{Group: "-100", Sender: "alice", Text: "hi"}) || got[1].Sender != "2" {
		t.Fatalf("unexpected inbound: %+v", got)
	}
	if _, err := tg.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch2: %v", err)
	}
	if len(u.offsets) != 2 || u.offsets[0] != 0 || u.offsets[1] != 13 {
		t.Fatalf("unexpected offsets: %v", u.offsets)
	}
}

func TestTelegramSend(t *testing.T) {
	s := &fakeSender{}
	tg := &Telegram{u: &fakeUpdater{}, s: s}
	if err := tg.Send(context.Background(), "-100", "answer"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(s.sent) != 1 || s.sent[0].ChatID != -100 || s.sent[0].Text != "answer" {
		t.Fatalf("unexpected sent: %+v", s.sent)
	}
	if err := tg.Send(context.Background(), "Unknown Group", "x"); err == nil {
		t.Fatalf("expected error for non-numeric group")
	}
}
