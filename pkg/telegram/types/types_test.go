package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"full name", User{FirstName: "Alice", LastName: "Admin"}, "Alice Admin"},
		{"first name only", User{FirstName: "Alice"}, "Alice"},
		{"username fallback", User{Username: "alice_a"}, "alice_a"},
		{"whitespace names fall back", User{FirstName: " ", Username: "alice_a"}, "alice_a"},
		{"empty", User{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}

func TestUpdateDecoding(t *testing.T) {
	raw := `{
		"update_id": 9001,
		"channel_post": {
			"message_id": 77,
			"chat": {"id": -100200300, "type": "channel", "title": "My Channel"},
			"from": {"id": 222, "first_name": "Alice"},
			"photo": [
				{"file_id": "small", "width": 90, "height": 90},
				{"file_id": "large", "width": 1280, "height": 720}
			],
			"caption": "a sunset"
		}
	}`

	var update Update
	require.NoError(t, json.Unmarshal([]byte(raw), &update))

	assert.Equal(t, int64(9001), update.UpdateID)
	require.NotNil(t, update.ChannelPost)
	assert.Equal(t, int64(-100200300), update.ChannelPost.Chat.ID)
	require.Len(t, update.ChannelPost.Photo, 2)
	assert.Equal(t, "large", update.ChannelPost.Photo[1].FileID)
	assert.Equal(t, "a sunset", update.ChannelPost.Caption)
}

func TestCallbackQueryDecoding(t *testing.T) {
	raw := `{
		"update_id": 9002,
		"callback_query": {
			"id": "cb-1",
			"from": {"id": 111, "first_name": "Owner"},
			"data": "approve_-100200300_1700000000",
			"message": {"message_id": 500, "chat": {"id": 111, "type": "private"}}
		}
	}`

	var update Update
	require.NoError(t, json.Unmarshal([]byte(raw), &update))

	require.NotNil(t, update.CallbackQuery)
	assert.Equal(t, "approve_-100200300_1700000000", update.CallbackQuery.Data)
	require.NotNil(t, update.CallbackQuery.Message)
	assert.Equal(t, int64(500), update.CallbackQuery.Message.MessageID)
}

func TestInlineKeyboardEncoding(t *testing.T) {
	markup := InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{
			{Text: "Approve", CallbackData: "approve_x"},
		}},
	}

	raw, err := json.Marshal(markup)
	require.NoError(t, err)
	assert.JSONEq(t, `{"inline_keyboard":[[{"text":"Approve","callback_data":"approve_x"}]]}`, string(raw))
}
