package models

import (
	"testing"

	"channelguard/pkg/telegram/types"

	"github.com/stretchr/testify/assert"
)

func TestContentFromMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  *types.Message
		want Content
	}{
		{
			name: "text",
			msg:  &types.Message{Text: "plain body"},
			want: Content{Kind: ContentText, Text: "plain body"},
		},
		{
			name: "photo keeps largest size",
			msg: &types.Message{
				Photo: []types.PhotoSize{
					{FileID: "small", Width: 90, Height: 90},
					{FileID: "large", Width: 1280, Height: 720},
					{FileID: "medium", Width: 320, Height: 320},
				},
				Caption: "a sunset",
			},
			want: Content{Kind: ContentPhoto, FileID: "large", Caption: "a sunset"},
		},
		{
			name: "video",
			msg:  &types.Message{Video: &types.Video{FileID: "v1"}, Caption: "clip"},
			want: Content{Kind: ContentVideo, FileID: "v1", Caption: "clip"},
		},
		{
			name: "document",
			msg:  &types.Message{Document: &types.Document{FileID: "d1"}},
			want: Content{Kind: ContentDocument, FileID: "d1"},
		},
		{
			name: "audio",
			msg:  &types.Message{Audio: &types.Audio{FileID: "a1"}},
			want: Content{Kind: ContentAudio, FileID: "a1"},
		},
		{
			name: "voice",
			msg:  &types.Message{Voice: &types.Voice{FileID: "vo1"}},
			want: Content{Kind: ContentVoice, FileID: "vo1"},
		},
		{
			name: "animation",
			msg:  &types.Message{Animation: &types.Animation{FileID: "an1"}},
			want: Content{Kind: ContentAnimation, FileID: "an1"},
		},
		{
			name: "empty message",
			msg:  &types.Message{},
			want: Content{Kind: ContentUnsupported},
		},
		{
			name: "unknown payload",
			msg:  &types.Message{MessageID: 4},
			want: Content{Kind: ContentUnsupported},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentFromMessage(tt.msg))
		})
	}
}

func TestContentFromMessagePoll(t *testing.T) {
	poll := &types.Poll{
		Question:              "Release on Friday?",
		Options:               []types.PollOption{{Text: "Yes"}, {Text: "No"}},
		IsAnonymous:           false,
		Type:                  "regular",
		AllowsMultipleAnswers: false,
	}

	got := ContentFromMessage(&types.Message{Poll: poll})

	assert.Equal(t, ContentPoll, got.Kind)
	assert.Same(t, poll, got.Poll, "polls are carried by reference, fields intact")
}

func TestContentPreview(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		want    string
	}{
		{"text", Content{Kind: ContentText, Text: "full body"}, "full body"},
		{"poll", Content{Kind: ContentPoll, Poll: &types.Poll{Question: "Q?"}}, "Poll: Q?"},
		{"captioned media", Content{Kind: ContentPhoto, Caption: "holiday"}, "photo: holiday"},
		{"bare media", Content{Kind: ContentVideo}, "Non-text content (video)"},
		{"unsupported", Content{Kind: ContentUnsupported}, "Non-text content (unsupported)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.content.Preview())
		})
	}
}
