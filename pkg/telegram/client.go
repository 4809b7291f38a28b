package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"channelguard/pkg/telegram/types"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// Client is the HTTP implementation of types.BotClient against the Telegram
// Bot API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// apiResponse is the Bot API envelope every method returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

func NewClient(token string) *Client {
	return NewClientWithBaseURL(token, defaultAPIBaseURL)
}

// NewClientWithBaseURL allows pointing the client at a test server.
func NewClientWithBaseURL(token, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 65 * time.Second, // must outlive a long-poll getUpdates call
		},
	}
}

// call POSTs a JSON payload to a Bot API method and decodes the result into
// out when out is non-nil.
func (c *Client) call(ctx context.Context, method string, payload interface{}, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !result.OK {
		return fmt.Errorf("%s failed with status %d: %s", method, result.ErrorCode, result.Description)
	}

	if out != nil {
		if err := json.Unmarshal(result.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}

	return nil
}

func (c *Client) GetMe(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := c.call(ctx, "getMe", struct{}{}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]types.Update, error) {
	payload := map[string]interface{}{
		"offset":  offset,
		"timeout": timeoutSec,
	}

	var updates []types.Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) GetChat(ctx context.Context, ref string) (*types.Chat, error) {
	var chat types.Chat
	if err := c.call(ctx, "getChat", map[string]interface{}{"chat_id": chatRef(ref)}, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (c *Client) GetChatMember(ctx context.Context, chatID, userID int64) (*types.ChatMember, error) {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"user_id": userID,
	}

	var member types.ChatMember
	if err := c.call(ctx, "getChatMember", payload, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Client) GetChatAdministrators(ctx context.Context, chatID int64) ([]types.ChatMember, error) {
	var admins []types.ChatMember
	if err := c.call(ctx, "getChatAdministrators", map[string]interface{}{"chat_id": chatID}, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard *types.InlineKeyboardMarkup) (*types.Message, error) {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}

	var msg types.Message
	if err := c.call(ctx, "sendMessage", payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	return c.call(ctx, "editMessageText", payload, nil)
}

func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	return c.call(ctx, "deleteMessage", payload, nil)
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]interface{}{"callback_query_id": callbackQueryID}, nil)
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	return c.sendFileRef(ctx, "sendPhoto", "photo", chatID, fileID, caption)
}

func (c *Client) SendVideo(ctx context.Context, chatID int64, fileID, caption string) error {
	return c.sendFileRef(ctx, "sendVideo", "video", chatID, fileID, caption)
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, fileID, caption string) error {
	return c.sendFileRef(ctx, "sendDocument", "document", chatID, fileID, caption)
}

func (c *Client) SendAudio(ctx context.Context, chatID int64, fileID, caption string) error {
	return c.sendFileRef(ctx, "sendAudio", "audio", chatID, fileID, caption)
}

func (c *Client) SendVoice(ctx context.Context, chatID int64, fileID, caption string) error {
	return c.sendFileRef(ctx, "sendVoice", "voice", chatID, fileID, caption)
}

func (c *Client) SendAnimation(ctx context.Context, chatID int64, fileID, caption string) error {
	return c.sendFileRef(ctx, "sendAnimation", "animation", chatID, fileID, caption)
}

// sendFileRef re-sends previously uploaded content by file id. The Bot API
// accepts the same {chat_id, <field>, caption} shape for every media method.
func (c *Client) sendFileRef(ctx context.Context, method, field string, chatID int64, fileID, caption string) error {
	payload := map[string]interface{}{
		"chat_id": chatID,
		field:     fileID,
	}
	if caption != "" {
		payload["caption"] = caption
	}
	return c.call(ctx, method, payload, nil)
}

func (c *Client) SendPoll(ctx context.Context, chatID int64, poll *types.Poll) error {
	options := make([]string, 0, len(poll.Options))
	for _, opt := range poll.Options {
		options = append(options, opt.Text)
	}

	payload := map[string]interface{}{
		"chat_id":                 chatID,
		"question":                poll.Question,
		"options":                 options,
		"is_anonymous":            poll.IsAnonymous,
		"allows_multiple_answers": poll.AllowsMultipleAnswers,
	}
	if poll.Type != "" {
		payload["type"] = poll.Type
	}
	return c.call(ctx, "sendPoll", payload, nil)
}

func (c *Client) InviteChatMember(ctx context.Context, chatID, userID int64) error {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"user_id": userID,
	}
	return c.call(ctx, "inviteChatMember", payload, nil)
}

func (c *Client) BanChatMember(ctx context.Context, chatID, userID int64) error {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"user_id": userID,
	}
	return c.call(ctx, "banChatMember", payload, nil)
}

func (c *Client) UnbanChatMember(ctx context.Context, chatID, userID int64) error {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"user_id": userID,
	}
	return c.call(ctx, "unbanChatMember", payload, nil)
}

// chatRef passes numeric ids through as numbers and prefixes bare usernames
// with @ the way the Bot API expects.
func chatRef(ref string) interface{} {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id
	}
	if len(ref) > 0 && ref[0] == '@' {
		return ref
	}
	return "@" + ref
}
