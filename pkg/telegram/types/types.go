package types

import "strings"

// Member roles as reported by getChatMember / getChatAdministrators.
const (
	RoleCreator       = "creator"
	RoleAdministrator = "administrator"
	RoleMember        = "member"
	RoleRestricted    = "restricted"
	RoleLeft          = "left"
	RoleKicked        = "kicked"
)

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DisplayName returns the user's full name, falling back to the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	return u.Username
}

type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

// ChatMember is the subset of the Bot API chat member object the bot
// inspects: the role string and the invite permission flag.
type ChatMember struct {
	User           User   `json:"user"`
	Status         string `json:"status"`
	CanInviteUsers bool   `json:"can_invite_users,omitempty"`
}

type PhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id,omitempty"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileSize     int64  `json:"file_size,omitempty"`
}

type Video struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration,omitempty"`
}

type Document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
}

type Audio struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration,omitempty"`
}

type Voice struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration,omitempty"`
}

type Animation struct {
	FileID string `json:"file_id"`
}

type PollOption struct {
	Text       string `json:"text"`
	VoterCount int    `json:"voter_count,omitempty"`
}

type Poll struct {
	ID                    string       `json:"id,omitempty"`
	Question              string       `json:"question"`
	Options               []PollOption `json:"options"`
	IsAnonymous           bool         `json:"is_anonymous"`
	Type                  string       `json:"type,omitempty"`
	AllowsMultipleAnswers bool         `json:"allows_multiple_answers"`
}

type Message struct {
	MessageID      int64       `json:"message_id"`
	From           *User       `json:"from,omitempty"`
	Chat           Chat        `json:"chat"`
	Date           int64       `json:"date,omitempty"`
	Text           string      `json:"text,omitempty"`
	Caption        string      `json:"caption,omitempty"`
	Photo          []PhotoSize `json:"photo,omitempty"`
	Video          *Video      `json:"video,omitempty"`
	Document       *Document   `json:"document,omitempty"`
	Audio          *Audio      `json:"audio,omitempty"`
	Voice          *Voice      `json:"voice,omitempty"`
	Animation      *Animation  `json:"animation,omitempty"`
	Poll           *Poll       `json:"poll,omitempty"`
	ReplyToMessage *Message    `json:"reply_to_message,omitempty"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

type Update struct {
	UpdateID          int64          `json:"update_id"`
	Message           *Message       `json:"message,omitempty"`
	EditedMessage     *Message       `json:"edited_message,omitempty"`
	ChannelPost       *Message       `json:"channel_post,omitempty"`
	EditedChannelPost *Message       `json:"edited_channel_post,omitempty"`
	CallbackQuery     *CallbackQuery `json:"callback_query,omitempty"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}
