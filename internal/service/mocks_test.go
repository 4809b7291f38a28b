package service

import (
	"context"
	"io"
	"time"

	"channelguard/internal/errors"
	"channelguard/pkg/telegram/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

type mockBot struct {
	mock.Mock
}

func (m *mockBot) GetMe(ctx context.Context) (*types.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *mockBot) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]types.Update, error) {
	args := m.Called(ctx, offset, timeoutSec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Update), args.Error(1)
}

func (m *mockBot) GetChat(ctx context.Context, ref string) (*types.Chat, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Chat), args.Error(1)
}

func (m *mockBot) GetChatMember(ctx context.Context, chatID, userID int64) (*types.ChatMember, error) {
	args := m.Called(ctx, chatID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatMember), args.Error(1)
}

func (m *mockBot) GetChatAdministrators(ctx context.Context, chatID int64) ([]types.ChatMember, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ChatMember), args.Error(1)
}

func (m *mockBot) SendMessage(ctx context.Context, chatID int64, text string, keyboard *types.InlineKeyboardMarkup) (*types.Message, error) {
	args := m.Called(ctx, chatID, text, keyboard)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Message), args.Error(1)
}

func (m *mockBot) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	args := m.Called(ctx, chatID, messageID, text)
	return args.Error(0)
}

func (m *mockBot) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

func (m *mockBot) AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error {
	args := m.Called(ctx, callbackQueryID)
	return args.Error(0)
}

func (m *mockBot) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	args := m.Called(ctx, chatID, fileID, caption)
	return args.Error(0)
}

func (m *mockBot) SendVideo(ctx context.Context, chatID int64, fileID, caption string) error {
	args := m.Called(ctx, chatID, fileID, caption)
	return args.Error(0)
}

func (m *mockBot) SendDocument(ctx context.Context, chatID int64, fileID, caption string) error {
	args := m.Called(ctx, chatID, fileID, caption)
	return args.Error(0)
}

func (m *mockBot) SendAudio(ctx context.Context, chatID int64, fileID, caption string) error {
	args := m.Called(ctx, chatID, fileID, caption)
	return args.Error(0)
}

func (m *mockBot) SendVoice(ctx context.Context, chatID int64, fileID, caption string) error {
	args := m.Called(ctx, chatID, fileID, caption)
	return args.Error(0)
}

func (m *mockBot) SendAnimation(ctx context.Context, chatID int64, fileID, caption string) error {
	args := m.Called(ctx, chatID, fileID, caption)
	return args.Error(0)
}

func (m *mockBot) SendPoll(ctx context.Context, chatID int64, poll *types.Poll) error {
	args := m.Called(ctx, chatID, poll)
	return args.Error(0)
}

func (m *mockBot) InviteChatMember(ctx context.Context, chatID, userID int64) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

func (m *mockBot) BanChatMember(ctx context.Context, chatID, userID int64) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

func (m *mockBot) UnbanChatMember(ctx context.Context, chatID, userID int64) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) RecordDecision(ctx context.Context, requestID string, chatID int64, submitterName, contentKind, decision string, decidedAt time.Time) error {
	args := m.Called(ctx, requestID, chatID, submitterName, contentKind, decision, decidedAt)
	return args.Error(0)
}

func (m *mockAudit) RecordBulkRun(ctx context.Context, runID string, channelID int64, attempted, added, failed int, finishedAt time.Time) error {
	args := m.Called(ctx, runID, channelID, attempted, added, failed, finishedAt)
	return args.Error(0)
}

func testLogger() *errors.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return errors.WrapLogger(l)
}
