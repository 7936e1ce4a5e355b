package ports

import (
	"context"
)

// --- Bot Message Structures ---

// Button represents a single button in a keyboard.
type Button struct {
	Text      string
	Data      string // For callbacks
	URL       string // For URL buttons
	WebAppURL string // Opens a Mini App (reply keyboards only)
}

// ReplyMarkup represents any kind of keyboard markup.
type ReplyMarkup struct {
	Buttons  [][]Button
	IsInline bool // Differentiates between Inline and Reply keyboards
}

// SendMessageParams holds all possible options for sending a message.
type SendMessageParams struct {
	ChatID         int64
	Text           string
	ParseMode      string // e.g., "MarkdownV2" or "HTML"
	ReplyMarkup    *ReplyMarkup
	RemoveKeyboard bool
}

// SendPhotoParams uploads raw image bytes with an optional caption.
type SendPhotoParams struct {
	ChatID      int64
	Photo       []byte
	FileName    string
	Caption     string
	ParseMode   string
	ReplyMarkup *ReplyMarkup
}

// EditMessageCaptionParams replaces a photo caption. A nil ReplyMarkup
// removes the inline keyboard.
type EditMessageCaptionParams struct {
	ChatID      int64
	MessageID   int
	Caption     string
	ParseMode   string
	ReplyMarkup *ReplyMarkup
}

// AnswerCallbackParams stops the loading indicator on a pressed button.
type AnswerCallbackParams struct {
	CallbackQueryID string
	Text            string
	ShowAlert       bool
}

// --- Bot Client Port (Outbound) ---

// BotClientPort defines the interface for talking to the Bot API.
type BotClientPort interface {
	// SendMessage returns the id of the sent message.
	SendMessage(ctx context.Context, params SendMessageParams) (int, error)
	SendPhoto(ctx context.Context, params SendPhotoParams) (int, error)
	EditMessageCaption(ctx context.Context, params EditMessageCaptionParams) error
	AnswerCallbackQuery(ctx context.Context, params AnswerCallbackParams) error
	SetMenuCommands(ctx context.Context, chatID int64, isReviewer bool) error
}

// --- Bot Handler Port (Inbound) ---

// BotUpdate represents a simplified, generic update.
type BotUpdate struct {
	MessageID       int
	ChatID          int64
	UserID          int64
	UserFullName    string
	Text            string
	Command         string
	CallbackQueryID string
	CallbackData    *string
	MessageCaption  string  // Caption of the message a callback belongs to
	WebAppData      *string // Raw Mini App payload
}

// CommandHandler defines the "plugin" interface for handling bot commands.
type CommandHandler interface {
	// Command returns the command string (e.g., "/start")
	Command() string
	// Handle processes the update.
	Handle(ctx context.Context, update *BotUpdate) error
}

// CallbackHandler defines the interface for handling callback queries.
type CallbackHandler interface {
	// Prefix returns the prefix for the callback (e.g., "approve:")
	Prefix() string
	// Handle processes the callback.
	Handle(ctx context.Context, update *BotUpdate) error
}

// MessageHandler handles non-command messages. Handlers are tried in
// registration order; the first one that claims the update wins.
type MessageHandler interface {
	// Name identifies the handler in logs.
	Name() string
	// CanHandle reports whether the handler wants this update.
	CanHandle(update *BotUpdate) bool
	Handle(ctx context.Context, update *BotUpdate) error
}
