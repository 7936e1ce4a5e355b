package messages

import (
	"GreenPay/internal/core/ports"
	"strings"
)

// markdownV2Special lists the characters Telegram requires escaped in MarkdownV2.
const markdownV2Special = "_*[]()~`>#+-=|{}.!\\"

// Builder helps construct complex SendMessageParams.
type Builder struct {
	params ports.SendMessageParams
}

// NewBuilder creates a new message builder.
func NewBuilder(chatID int64) *Builder {
	return &Builder{
		params: ports.SendMessageParams{
			ChatID:    chatID,
			ParseMode: "MarkdownV2", // Default to Markdown
		},
	}
}

// WithText sets the message text.
func (b *Builder) WithText(text string) *Builder {
	b.params.Text = text
	return b
}

// WithParseMode overrides the default parse mode.
func (b *Builder) WithParseMode(mode string) *Builder {
	b.params.ParseMode = mode
	return b
}

// WithRemoveKeyboard adds a flag to remove the reply keyboard.
func (b *Builder) WithRemoveKeyboard() *Builder {
	b.params.RemoveKeyboard = true
	b.params.ReplyMarkup = nil // Ensure no other markup is set
	return b
}

// WithWebAppButton adds a reply keyboard with a single Mini App button.
// Only reply keyboard buttons deliver web_app_data back to the bot.
func (b *Builder) WithWebAppButton(text, url string) *Builder {
	b.params.RemoveKeyboard = false
	b.params.ReplyMarkup = &ports.ReplyMarkup{
		IsInline: false,
		Buttons: [][]ports.Button{
			{
				{Text: text, WebAppURL: url},
			},
		},
	}
	return b
}

// WithInlineButtons adds a set of inline buttons.
func (b *Builder) WithInlineButtons(buttons [][]ports.Button) *Builder {
	b.params.RemoveKeyboard = false
	b.params.ReplyMarkup = &ports.ReplyMarkup{
		IsInline: true,
		Buttons:  buttons,
	}
	return b
}

// Build returns the final SendMessageParams struct.
func (b *Builder) Build() ports.SendMessageParams {
	return b.params
}

// EscapeMarkdown escapes user-supplied text for MarkdownV2.
func EscapeMarkdown(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownV2Special, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
