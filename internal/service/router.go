package service

import (
	"context"
	"strings"

	"channelguard/internal/errors"
	"channelguard/internal/tracing"
	"channelguard/pkg/telegram/types"

	"go.opentelemetry.io/otel/attribute"
)

const helpText = "Available commands:\n" +
	"/ban - Ban a user (reply to their message)\n" +
	"/unban - Unban a user (reply to their message)\n" +
	"/add - Start the user addition wizard\n" +
	"/addgroup <group_link> - Add users from a specific group link\n" +
	"/help - Show this help message\n\n" +
	"Channel Features:\n" +
	"• All posts from admins are sent to the channel creator for approval\n" +
	"• Channel creator can approve or reject posts before they are published\n" +
	"• You can add users from a group to a channel using the /add or /addgroup commands"

const startText = "Hi! I'm a management bot for groups and channels.\n\n" +
	"Available commands:\n" +
	"/ban - Ban a user (reply to their message)\n" +
	"/unban - Unban a user (reply to their message)\n" +
	"/add - Add users from a group to a channel\n" +
	"/addgroup - Add users from a specific group link\n" +
	"/help - Show this help message"

// Router takes each incoming update to the component that owns it: decision
// callbacks and channel posts to the approval service, commands and
// stage-tagged text to the bulk-add pipeline and moderation.
type Router struct {
	bot        types.BotClient
	approval   *ApprovalService
	bulkAdd    *BulkAddService
	moderation *ModerationService
	logger     *errors.Logger
}

func NewRouter(bot types.BotClient, approval *ApprovalService, bulkAdd *BulkAddService, moderation *ModerationService, logger *errors.Logger) *Router {
	return &Router{
		bot:        bot,
		approval:   approval,
		bulkAdd:    bulkAdd,
		moderation: moderation,
		logger:     logger,
	}
}

// Dispatch routes one update. Handlers are boundaries: they log and message
// their own failures, so Dispatch never returns an error.
func (r *Router) Dispatch(ctx context.Context, update types.Update) {
	ctx, span := tracing.StartSpan(ctx, "update.dispatch",
		attribute.String("update.kind", updateKind(update)),
		attribute.Int64("update.id", update.UpdateID))
	defer span.End()

	switch {
	case update.CallbackQuery != nil:
		r.approval.HandleDecision(ctx, update.CallbackQuery)
	case update.ChannelPost != nil:
		r.approval.HandleChannelPost(ctx, update.ChannelPost)
	case update.EditedChannelPost != nil:
		r.approval.HandleChannelPost(ctx, update.EditedChannelPost)
	case update.Message != nil:
		r.dispatchMessage(ctx, update.Message)
	}
}

func (r *Router) dispatchMessage(ctx context.Context, msg *types.Message) {
	if msg.Text == "" {
		return
	}

	if strings.HasPrefix(msg.Text, "/") {
		command, args := splitCommand(msg.Text)
		r.dispatchCommand(ctx, msg, command, args)
		return
	}

	// A bulk-add conversation in flight claims all free text.
	if r.bulkAdd.HandleText(ctx, msg.Chat.ID, msg.Text) {
		return
	}

	// Legacy plain-text aliases for the moderation commands, only as a
	// reply inside a group.
	if msg.ReplyToMessage != nil && isGroupChat(msg.Chat.Type) {
		switch strings.ToLower(msg.Text) {
		case "ban":
			r.moderation.Ban(ctx, msg)
		case "unban":
			r.moderation.Unban(ctx, msg)
		}
	}
}

func (r *Router) dispatchCommand(ctx context.Context, msg *types.Message, command, args string) {
	switch command {
	case "start":
		r.reply(ctx, msg.Chat.ID, startText)
	case "help":
		r.reply(ctx, msg.Chat.ID, helpText)
	case "ban":
		r.moderation.Ban(ctx, msg)
	case "unban":
		r.moderation.Unban(ctx, msg)
	case "add":
		r.bulkAdd.StartAdd(ctx, msg.Chat.ID)
	case "addgroup":
		r.bulkAdd.StartAddGroup(ctx, msg.Chat.ID, args)
	case "cancel":
		r.bulkAdd.Cancel(ctx, msg.Chat.ID)
	}
}

func (r *Router) reply(ctx context.Context, chatID int64, text string) {
	if _, err := r.bot.SendMessage(ctx, chatID, text, nil); err != nil {
		r.logger.LogWarn(errors.NewTransportError("sendMessage", err), "Failed to send reply")
	}
}

// splitCommand parses "/cmd@BotName args" into ("cmd", "args").
func splitCommand(text string) (command, args string) {
	text = strings.TrimPrefix(text, "/")
	if i := strings.IndexAny(text, " \n"); i >= 0 {
		command, args = text[:i], strings.TrimSpace(text[i+1:])
	} else {
		command = text
	}
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}
	return command, args
}

func isGroupChat(chatType string) bool {
	return chatType == "group" || chatType == "supergroup"
}

func updateKind(update types.Update) string {
	switch {
	case update.CallbackQuery != nil:
		return "callback_query"
	case update.ChannelPost != nil, update.EditedChannelPost != nil:
		return "channel_post"
	case update.Message != nil:
		return "message"
	default:
		return "other"
	}
}
