package shop

import (
	"context"
	"errors"
	"strconv"

	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/m3rciful/fishbot/core/telegram"
	tghelpers "github.com/m3rciful/fishbot/core/telegram/helpers"
	"github.com/m3rciful/fishbot/core/telegram/keyboard"
	"github.com/m3rciful/fishbot/core/telegram/middleware"
)

// BotTransport delivers rendered messages through telebot. The bot is
// attached with Bind once it has been constructed, before polling starts.
type BotTransport struct {
	bot *tele.Bot
}

// NewBotTransport builds an unbound transport.
func NewBotTransport() *BotTransport {
	return &BotTransport{}
}

// Bind attaches the connected bot.
func (t *BotTransport) Bind(bot *tele.Bot) {
	t.bot = bot
}

// Send delivers a message, as a photo with caption when PhotoURL is set.
func (t *BotTransport) Send(_ context.Context, chatID int64, msg Message) error {
	if t.bot == nil {
		return errors.New("shop: transport not bound")
	}
	opts := make([]any, 0, 1)
	if markup := markupFor(msg.Keyboard); markup != nil {
		opts = append(opts, markup)
	}

	var err error
	if msg.PhotoURL != "" {
		photo := &tele.Photo{File: tele.FromURL(msg.PhotoURL), Caption: msg.Text}
		_, err = t.bot.Send(tele.ChatID(chatID), photo, opts...)
	} else {
		_, err = t.bot.Send(tele.ChatID(chatID), msg.Text, opts...)
	}
	return err
}

// Delete removes a previously sent message from the chat.
func (t *BotTransport) Delete(_ context.Context, chatID int64, messageID int) error {
	if t.bot == nil {
		return errors.New("shop: transport not bound")
	}
	return t.bot.Delete(&tele.StoredMessage{
		ChatID:    chatID,
		MessageID: strconv.Itoa(messageID),
	})
}

func markupFor(rows [][]Button) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	btnRows := make([][]keyboard.InlineBtn, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		btnRow := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			btnRow = append(btnRow, keyboard.InlineBtn{Text: b.Label, Data: b.Token})
		}
		btnRows = append(btnRows, btnRow)
	}
	if len(btnRows) == 0 {
		return nil
	}
	return keyboard.InlineButtonsRows(btnRows...)
}

// Routes binds the conversation to the bot endpoints. Commands, plain text,
// and callbacks all funnel into Machine.Dispatch.
func Routes(machine *Machine) []coretelegram.Route {
	handle := func(c tele.Context) error {
		ctx := tghelpers.WithHandler(c, "shop.dispatch")
		if cb := c.Callback(); cb != nil {
			// Stop the client-side spinner before doing any real work.
			_ = c.Respond(&tele.CallbackResponse{})
		}
		// Dispatch replies and logs on failure; nothing left for telebot to do.
		_ = machine.Dispatch(ctx, eventFrom(c))
		return nil
	}

	return []coretelegram.Route{
		{Endpoint: "/start", Handler: handle},
		{Endpoint: tele.OnText, Handler: handle},
		{Endpoint: tele.OnCallback, Handler: handle},
	}
}

func eventFrom(c tele.Context) Event {
	ev := Event{}
	if chat := c.Chat(); chat != nil {
		ev.ChatID = chat.ID
	}
	if sender := c.Sender(); sender != nil {
		ev.SenderName = sender.FirstName
		if ev.SenderName == "" {
			ev.SenderName = sender.Username
		}
	}
	if cb := c.Callback(); cb != nil {
		ev.Callback = true
		ev.Payload = middleware.CallbackToken(cb)
		if cb.Message != nil {
			ev.MessageID = cb.Message.ID
		}
		return ev
	}
	if msg := c.Message(); msg != nil {
		ev.Payload = msg.Text
		ev.MessageID = msg.ID
	}
	return ev
}
