// Package helpers bridges telebot's per-update context and the
// context.Context the rest of the bot logs and dispatches with.
package helpers

import (
	"context"

	"github.com/m3rciful/fishbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const contextKey = "logger_ctx"

// StoreContext caches a request context on the update so every consumer of
// the same update shares one rid and metadata set.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(contextKey, ctx)
}

// ContextFrom returns the cached request context, if the logging middleware
// (or an earlier helper) stored one.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	if v := c.Get(contextKey); v != nil {
		if ctx, ok := v.(context.Context); ok {
			return ctx, true
		}
	}
	return nil, false
}

// WithHandler returns the request context scoped to a handler name, building
// one from the update when no middleware has run yet.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx, ok := ContextFrom(c)
	if !ok {
		ctx = buildContext(c)
	}
	if handler == "" {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}

func buildContext(c tele.Context) context.Context {
	upd := c.Update()

	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}

	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(upd.ID, chatID, userID)
	}

	ctx := logger.WithRID(context.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}
