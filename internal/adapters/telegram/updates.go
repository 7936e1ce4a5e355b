package telegram

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bus topics the bot server publishes raw updates to.
const (
	TopicMessage       = "telegram:message"
	TopicCallbackQuery = "telegram:callback_query"
)

// AllowedUpdates limits what Telegram delivers to us.
var AllowedUpdates = []string{"message", "callback_query"}

// WebAppData is what a Mini App sends with Telegram.WebApp.sendData.
type WebAppData struct {
	Data       string `json:"data"`
	ButtonText string `json:"button_text"`
}

// Update is a tgbotapi.Update plus message.web_app_data, which the
// library version we use does not model.
type Update struct {
	tgbotapi.Update
	WebAppData *WebAppData
}

// DecodeUpdate parses one update object as sent by Telegram.
func DecodeUpdate(raw []byte) (Update, error) {
	var u Update
	if err := json.Unmarshal(raw, &u.Update); err != nil {
		return Update{}, fmt.Errorf("decode update: %w", err)
	}

	var extra struct {
		Message *struct {
			WebAppData *WebAppData `json:"web_app_data"`
		} `json:"message"`
	}
	if err := json.Unmarshal(raw, &extra); err != nil {
		return Update{}, fmt.Errorf("decode web_app_data: %w", err)
	}
	if extra.Message != nil {
		u.WebAppData = extra.Message.WebAppData
	}
	return u, nil
}

// DecodeUpdates parses the result array of getUpdates. One bad element
// does not discard the rest; its id is still reported so the offset moves.
func DecodeUpdates(raw json.RawMessage) ([]Update, []error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, []error{fmt.Errorf("decode updates array: %w", err)}
	}

	updates := make([]Update, 0, len(items))
	var errs []error
	for _, item := range items {
		u, err := DecodeUpdate(item)
		if err != nil {
			var idOnly struct {
				UpdateID int `json:"update_id"`
			}
			if json.Unmarshal(item, &idOnly) == nil && idOnly.UpdateID != 0 {
				updates = append(updates, Update{Update: tgbotapi.Update{UpdateID: idOnly.UpdateID}})
			}
			errs = append(errs, err)
			continue
		}
		updates = append(updates, u)
	}
	return updates, errs
}

// Topic returns the bus topic for u, or "" for update kinds we ignore.
func Topic(u Update) string {
	switch {
	case u.CallbackQuery != nil:
		return TopicCallbackQuery
	case u.Message != nil:
		return TopicMessage
	}
	return ""
}
