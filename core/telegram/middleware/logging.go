package middleware

import (
	"strings"
	"time"

	"github.com/m3rciful/fishbot/core/logger"
	tghelpers "github.com/m3rciful/fishbot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// LoggerMiddleware logs a single receipt line per update and sets rid.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()

		chatID, userID := int64(0), int64(0)
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		attrs := []slog.Attr{
			slog.String("status", "ok"),
		}
		if user != nil && user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}
		switch {
		case upd.Callback != nil:
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(CallbackToken(upd.Callback), 256)))
		case upd.Message != nil:
			if t := c.Text(); t != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
			}
		}
		logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)

		return next(c)
	}
}

// CallbackToken extracts the raw button payload from a callback update.
// Telebot prefixes callback data created via markup.Data with "\f<unique>|";
// buttons built from raw InlineButton values carry the payload verbatim.
func CallbackToken(cb *tele.Callback) string {
	if cb == nil {
		return ""
	}
	raw := cb.Data
	raw = strings.TrimPrefix(raw, "\f")
	if cb.Unique != "" {
		if raw == "" {
			return cb.Unique
		}
		return cb.Unique + " " + raw
	}
	if idx := strings.Index(raw, "|"); idx >= 0 && strings.HasPrefix(cb.Data, "\f") {
		return raw[idx+1:]
	}
	return raw
}
