package telegram

import (
	"GreenPay/internal/core/ports"
	"context"
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// tgClient implements the BotClientPort.
type tgClient struct {
	api *tgbotapi.BotAPI
	log zerolog.Logger
}

var _ ports.BotClientPort = (*tgClient)(nil)

// NewClient creates a new Telegram client adapter.
func NewClient(api *tgbotapi.BotAPI, baseLogger *zerolog.Logger) ports.BotClientPort {
	log := baseLogger.With().Str("component", "tg_client").Logger()
	return &tgClient{api: api, log: log}
}

// SendMessage translates our params into a tgbotapi message.
func (c *tgClient) SendMessage(ctx context.Context, params ports.SendMessageParams) (int, error) {
	if params.ReplyMarkup != nil && !params.ReplyMarkup.IsInline && hasWebAppButton(params.ReplyMarkup) {
		return c.sendWithWebAppKeyboard(params)
	}

	msg := tgbotapi.NewMessage(params.ChatID, params.Text)
	msg.ParseMode = params.ParseMode

	if params.RemoveKeyboard {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	} else if params.ReplyMarkup != nil {
		if params.ReplyMarkup.IsInline {
			msg.ReplyMarkup = c.buildInlineKeyboard(params.ReplyMarkup.Buttons)
		} else {
			msg.ReplyMarkup = c.buildReplyKeyboard(params.ReplyMarkup.Buttons)
		}
	}

	sent, err := c.api.Send(msg)
	if err != nil {
		c.log.Error().Err(err).Int64("chat_id", params.ChatID).Msg("Failed to send message")
		return 0, err
	}
	return sent.MessageID, nil
}

// SendPhoto uploads raw bytes; Telegram re-encodes and stores the image.
func (c *tgClient) SendPhoto(ctx context.Context, params ports.SendPhotoParams) (int, error) {
	name := params.FileName
	if name == "" {
		name = "photo.jpg"
	}

	photo := tgbotapi.NewPhoto(params.ChatID, tgbotapi.FileBytes{Name: name, Bytes: params.Photo})
	photo.Caption = params.Caption
	photo.ParseMode = params.ParseMode
	if params.ReplyMarkup != nil && params.ReplyMarkup.IsInline {
		photo.ReplyMarkup = c.buildInlineKeyboard(params.ReplyMarkup.Buttons)
	}

	sent, err := c.api.Send(photo)
	if err != nil {
		c.log.Error().Err(err).Int64("chat_id", params.ChatID).Int("bytes", len(params.Photo)).Msg("Failed to send photo")
		return 0, err
	}
	return sent.MessageID, nil
}

// EditMessageCaption replaces a caption. Without ReplyMarkup Telegram drops
// the inline keyboard.
func (c *tgClient) EditMessageCaption(ctx context.Context, params ports.EditMessageCaptionParams) error {
	edit := tgbotapi.NewEditMessageCaption(params.ChatID, params.MessageID, params.Caption)
	edit.ParseMode = params.ParseMode
	if params.ReplyMarkup != nil && params.ReplyMarkup.IsInline {
		markup := c.buildInlineKeyboard(params.ReplyMarkup.Buttons)
		edit.ReplyMarkup = &markup
	}

	if _, err := c.api.Request(edit); err != nil {
		c.log.Error().Err(err).
			Int64("chat_id", params.ChatID).
			Int("message_id", params.MessageID).
			Msg("Failed to edit message caption")
		return err
	}
	return nil
}

// AnswerCallbackQuery sends a response to a callback query (stops the spinner)
func (c *tgClient) AnswerCallbackQuery(ctx context.Context, params ports.AnswerCallbackParams) error {
	callbackConfig := tgbotapi.NewCallback(params.CallbackQueryID, params.Text)
	callbackConfig.ShowAlert = params.ShowAlert

	if _, err := c.api.Request(callbackConfig); err != nil {
		c.log.Error().Err(err).
			Str("callback_query_id", params.CallbackQueryID).
			Msg("Failed to answer callback query")
		return err
	}
	return nil
}

// SetMenuCommands sets the bot's menu. The reviewer gets a chat-scoped menu
// with the moderation commands; chatID 0 sets the default menu.
func (c *tgClient) SetMenuCommands(ctx context.Context, chatID int64, isReviewer bool) error {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Boshlash"},
		{Command: "mytrees", Description: "Mening daraxtlarim"},
	}
	if isReviewer {
		commands = append(commands, tgbotapi.BotCommand{Command: "pending", Description: "Tekshiruvdagi daraxtlar"})
	}

	var config tgbotapi.SetMyCommandsConfig
	if chatID != 0 {
		config = tgbotapi.NewSetMyCommandsWithScope(tgbotapi.NewBotCommandScopeChat(chatID), commands...)
	} else {
		config = tgbotapi.NewSetMyCommands(commands...)
	}

	if _, err := c.api.Request(config); err != nil {
		c.log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to set menu commands")
		return err
	}
	return nil
}

// buildInlineKeyboard is a helper to create the inline keyboard.
func (c *tgClient) buildInlineKeyboard(buttons [][]ports.Button) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, buttonRow := range buttons {
		var row []tgbotapi.InlineKeyboardButton
		for _, btn := range buttonRow {
			if btn.URL != "" {
				row = append(row, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
			} else {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
			}
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildReplyKeyboard is a helper to create the reply (non-inline) keyboard.
func (c *tgClient) buildReplyKeyboard(buttons [][]ports.Button) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for _, buttonRow := range buttons {
		var row []tgbotapi.KeyboardButton
		for _, btn := range buttonRow {
			row = append(row, tgbotapi.NewKeyboardButton(btn.Text))
		}
		rows = append(rows, row)
	}

	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

// --- Mini App keyboards ---
// tgbotapi v5.5 has no web_app button, so these go through MakeRequest.

type webAppInfo struct {
	URL string `json:"url"`
}

type webAppKeyboardButton struct {
	Text   string      `json:"text"`
	WebApp *webAppInfo `json:"web_app,omitempty"`
}

type webAppReplyKeyboard struct {
	Keyboard       [][]webAppKeyboardButton `json:"keyboard"`
	ResizeKeyboard bool                     `json:"resize_keyboard"`
}

func hasWebAppButton(markup *ports.ReplyMarkup) bool {
	for _, row := range markup.Buttons {
		for _, btn := range row {
			if btn.WebAppURL != "" {
				return true
			}
		}
	}
	return false
}

func buildWebAppKeyboard(buttons [][]ports.Button) webAppReplyKeyboard {
	kb := webAppReplyKeyboard{ResizeKeyboard: true}
	for _, buttonRow := range buttons {
		var row []webAppKeyboardButton
		for _, btn := range buttonRow {
			b := webAppKeyboardButton{Text: btn.Text}
			if btn.WebAppURL != "" {
				b.WebApp = &webAppInfo{URL: btn.WebAppURL}
			}
			row = append(row, b)
		}
		kb.Keyboard = append(kb.Keyboard, row)
	}
	return kb
}

func (c *tgClient) sendWithWebAppKeyboard(params ports.SendMessageParams) (int, error) {
	p := tgbotapi.Params{}
	p.AddNonZero64("chat_id", params.ChatID)
	p["text"] = params.Text
	p.AddNonEmpty("parse_mode", params.ParseMode)
	if err := p.AddInterface("reply_markup", buildWebAppKeyboard(params.ReplyMarkup.Buttons)); err != nil {
		return 0, fmt.Errorf("encode web app keyboard: %w", err)
	}

	resp, err := c.api.MakeRequest("sendMessage", p)
	if err != nil {
		c.log.Error().Err(err).Int64("chat_id", params.ChatID).Msg("Failed to send web app keyboard")
		return 0, err
	}

	var sent tgbotapi.Message
	if err := json.Unmarshal(resp.Result, &sent); err != nil {
		return 0, fmt.Errorf("decode sent message: %w", err)
	}
	return sent.MessageID, nil
}
