package middleware

import (
	"runtime/debug"

	"github.com/m3rciful/fishbot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware keeps a panicking handler from taking the poller down.
// The panic is logged with the chat it came from; the update is dropped and
// the conversation state stays wherever the last successful dispatch left it.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				var chatID int64
				if chat := c.Chat(); chat != nil {
					chatID = chat.ID
				}
				logger.TG.Error("panic recovered",
					slog.String("event", "tg.panic"),
					slog.Int64("chat_id", chatID),
					slog.Int("update_id", c.Update().ID),
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}
