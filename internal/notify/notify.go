// Package notify sends optional Telegram notifications about lifecycle
// events: a new instance spawned, or a record that failed its cycle.
//
// Notifications are best-effort. A send failure is logged and dropped; it
// never fails the cycle that triggered it.
package notify

import (
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"

	"recurd/pkg/logx"
)

type Config struct {
	Enabled bool
	Token   string
	ChatID  int64
}

type Service struct {
	bot    *tele.Bot
	chatID int64
	log    logx.Logger
}

// New builds the notifier. Returns (nil, nil) when disabled; a nil *Service
// is safe to call.
func New(cfg Config, log logx.Logger) (*Service, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	bot, err := tele.NewBot(tele.Settings{
		Token: cfg.Token,
		// No poller: this bot only sends.
		Synchronous: true,
	})
	if err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}
	return &Service{bot: bot, chatID: cfg.ChatID, log: log}, nil
}

// Spawned announces a freshly created instance.
func (s *Service) Spawned(title, id string) {
	s.send(fmt.Sprintf("📋 created %q (instance %s)", title, id))
}

// Failed announces a record whose cycle errored.
func (s *Service) Failed(task string, err error) {
	s.send(fmt.Sprintf("⚠️ %s: %v", task, err))
}

func (s *Service) send(text string) {
	if s == nil || s.bot == nil {
		return
	}
	start := time.Now()
	_, err := s.bot.Send(&tele.Chat{ID: s.chatID}, text, &tele.SendOptions{DisableWebPagePreview: true})
	if err != nil {
		s.log.Warn("notification send failed", logx.Err(err), logx.Duration("took", time.Since(start)))
		return
	}
	s.log.Debug("notification sent", logx.Duration("took", time.Since(start)))
}
