package types

import "context"

// BotClient is the surface of the Telegram Bot API the bot consumes. The
// services depend on this interface rather than the HTTP client so tests can
// substitute mocks.
type BotClient interface {
	GetMe(ctx context.Context) (*User, error)
	GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error)

	// Chat and membership queries. GetChat accepts a numeric id rendered as
	// a string, a bare username, or an @username.
	GetChat(ctx context.Context, ref string) (*Chat, error)
	GetChatMember(ctx context.Context, chatID, userID int64) (*ChatMember, error)
	GetChatAdministrators(ctx context.Context, chatID int64) ([]ChatMember, error)

	// Messaging.
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) (*Message, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error

	// Typed content re-emission, one method per payload variant.
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error
	SendVideo(ctx context.Context, chatID int64, fileID, caption string) error
	SendDocument(ctx context.Context, chatID int64, fileID, caption string) error
	SendAudio(ctx context.Context, chatID int64, fileID, caption string) error
	SendVoice(ctx context.Context, chatID int64, fileID, caption string) error
	SendAnimation(ctx context.Context, chatID int64, fileID, caption string) error
	SendPoll(ctx context.Context, chatID int64, poll *Poll) error

	// Membership management.
	InviteChatMember(ctx context.Context, chatID, userID int64) error
	BanChatMember(ctx context.Context, chatID, userID int64) error
	UnbanChatMember(ctx context.Context, chatID, userID int64) error
}
