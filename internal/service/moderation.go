package service

import (
	"context"
	"fmt"

	"channelguard/internal/errors"
	"channelguard/pkg/telegram/types"

	"github.com/sirupsen/logrus"
)

// ModerationService handles the reply-based /ban and /unban commands in
// groups.
type ModerationService struct {
	bot    types.BotClient
	logger *errors.Logger
}

func NewModerationService(bot types.BotClient, logger *errors.Logger) *ModerationService {
	return &ModerationService{bot: bot, logger: logger}
}

// Ban bans the author of the replied-to message. The actor must be an
// administrator or the creator, and cannot ban themselves.
func (ms *ModerationService) Ban(ctx context.Context, msg *types.Message) {
	if !ms.actorPrivileged(ctx, msg) {
		return
	}
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		ms.reply(ctx, msg.Chat.ID, "Please reply to a user's message to ban them.")
		return
	}

	target := msg.ReplyToMessage.From
	if msg.From != nil && target.ID == msg.From.ID {
		ms.reply(ctx, msg.Chat.ID, "You cannot ban yourself.")
		return
	}

	if err := ms.bot.BanChatMember(ctx, msg.Chat.ID, target.ID); err != nil {
		ms.logger.LogError(errors.NewTransportError("banChatMember", err),
			"Failed to ban user", logrus.Fields{"chat_id": msg.Chat.ID, "user_id": target.ID})
		ms.reply(ctx, msg.Chat.ID, "An error occurred while trying to ban the user.")
		return
	}

	ms.reply(ctx, msg.Chat.ID, fmt.Sprintf("User %s has been banned.", target.FirstName))
}

// Unban lifts a ban on the author of the replied-to message.
func (ms *ModerationService) Unban(ctx context.Context, msg *types.Message) {
	if !ms.actorPrivileged(ctx, msg) {
		return
	}
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		ms.reply(ctx, msg.Chat.ID, "Please reply to a user's message to unban them.")
		return
	}

	target := msg.ReplyToMessage.From
	if err := ms.bot.UnbanChatMember(ctx, msg.Chat.ID, target.ID); err != nil {
		ms.logger.LogError(errors.NewTransportError("unbanChatMember", err),
			"Failed to unban user", logrus.Fields{"chat_id": msg.Chat.ID, "user_id": target.ID})
		ms.reply(ctx, msg.Chat.ID, "An error occurred while trying to unban the user.")
		return
	}

	ms.reply(ctx, msg.Chat.ID, fmt.Sprintf("User %s has been unbanned.", target.FirstName))
}

// actorPrivileged checks that the command issuer is an administrator or the
// creator of the chat, messaging the actor otherwise.
func (ms *ModerationService) actorPrivileged(ctx context.Context, msg *types.Message) bool {
	if msg.From == nil {
		return false
	}

	member, err := ms.bot.GetChatMember(ctx, msg.Chat.ID, msg.From.ID)
	if err != nil {
		ms.logger.LogError(errors.NewTransportError("getChatMember", err),
			"Failed to check actor role", logrus.Fields{"chat_id": msg.Chat.ID, "user_id": msg.From.ID})
		ms.reply(ctx, msg.Chat.ID, "An error occurred while checking admin permissions.")
		return false
	}

	if member.Status != types.RoleAdministrator && member.Status != types.RoleCreator {
		ms.reply(ctx, msg.Chat.ID, "Only admins can use this command.")
		return false
	}

	return true
}

func (ms *ModerationService) reply(ctx context.Context, chatID int64, text string) {
	if _, err := ms.bot.SendMessage(ctx, chatID, text, nil); err != nil {
		ms.logger.LogWarn(errors.NewTransportError("sendMessage", err),
			"Failed to send reply", logrus.Fields{"chat_id": chatID})
	}
}
