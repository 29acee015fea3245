package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

// contextKey is a private type to avoid collisions in context.
type contextKey string

const (
	ctxRID      contextKey = "rid"
	ctxUpdateID contextKey = "update_id"
	ctxUserID   contextKey = "user_id"
	ctxChatID   contextKey = "chat_id"
	ctxLogger   contextKey = "logger"
	ctxHandler  contextKey = "handler"
)

// WithLogger stores the provided slog.Logger in context for propagation across layers.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxLogger, log)
}

// FromContext extracts slog.Logger from context or returns global default.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if v := ctx.Value(ctxLogger); v != nil {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// WithRID attaches request correlation id into context.
func WithRID(ctx context.Context, rid string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRID, rid)
}

// RIDFrom extracts rid from context if present.
func RIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRID).(string); ok {
		return v
	}
	return ""
}

// WithUpdateMeta stores update/user/chat identifiers for downstream logging.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUpdateID, updateID)
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxChatID, chatID)
}

// UpdateIDFrom extracts the update id from context, zero when absent.
func UpdateIDFrom(ctx context.Context) int {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxUpdateID).(int); ok {
		return v
	}
	return 0
}

// UserIDFrom extracts the user id from context, zero when absent.
func UserIDFrom(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxUserID).(int64); ok {
		return v
	}
	return 0
}

// ChatIDFrom extracts the chat id from context, zero when absent.
func ChatIDFrom(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxChatID).(int64); ok {
		return v
	}
	return 0
}

// WithHandler stores the active handler name in context.
func WithHandler(ctx context.Context, handler string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if handler == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxHandler, handler)
}

// HandlerFrom extracts the handler name from context.
func HandlerFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxHandler).(string); ok {
		return v
	}
	return ""
}

// BuildRID composes a correlation id from update, chat, and user identifiers.
func BuildRID(updateID int, chatID, userID int64) string {
	return fmt.Sprintf("%d:%d:%d", updateID, chatID, userID)
}

// SanitizeLimit strips control characters and truncates the value to limit runes.
func SanitizeLimit(value string, limit int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, value)
	if limit <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) <= limit {
		return cleaned
	}
	return string(runes[:limit])
}

// contextHandler enriches records with correlation metadata carried in context.
type contextHandler struct {
	inner slog.Handler
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if rid := RIDFrom(ctx); rid != "" && !recordHas(rec, "rid") {
		rec.AddAttrs(slog.String("rid", rid))
	}
	if id := UpdateIDFrom(ctx); id != 0 && !recordHas(rec, "update_id") {
		rec.AddAttrs(slog.Int("update_id", id))
	}
	if id := ChatIDFrom(ctx); id != 0 && !recordHas(rec, "chat_id") {
		rec.AddAttrs(slog.Int64("chat_id", id))
	}
	if id := UserIDFrom(ctx); id != 0 && !recordHas(rec, "user_id") {
		rec.AddAttrs(slog.Int64("user_id", id))
	}
	if handler := HandlerFrom(ctx); handler != "" && !recordHas(rec, "handler") {
		rec.AddAttrs(slog.String("handler", handler))
	}
	return h.inner.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{inner: h.inner.WithGroup(name)}
}

func recordHas(rec slog.Record, key string) bool {
	found := false
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			found = true
			return false
		}
		return true
	})
	return found
}

// CompactRID shortens a raw "update:chat:user" rid to its update component for dense output.
func CompactRID(rid string) string {
	if idx := strings.Index(rid, ":"); idx > 0 {
		if _, err := strconv.Atoi(rid[:idx]); err == nil {
			return rid[:idx]
		}
	}
	return rid
}
