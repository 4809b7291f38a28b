package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"channelguard/internal/errors"
	"channelguard/internal/metrics"
	"channelguard/internal/models"
	"channelguard/pkg/telegram/types"

	"github.com/sirupsen/logrus"
)

// Decision actions carried in callback payloads. The request id may itself
// contain underscores, so parsing takes the first token as the action and
// rejoins the rest.
const (
	actionApprove = "approve"
	actionReject  = "reject"
)

// AuditRecorder is the subset of the audit database the services write to.
// A nil recorder disables auditing.
type AuditRecorder interface {
	RecordDecision(ctx context.Context, requestID string, chatID int64, submitterName, contentKind, decision string, decidedAt time.Time) error
	RecordBulkRun(ctx context.Context, runID string, channelID int64, attempted, added, failed int, finishedAt time.Time) error
}

// ApprovalService intercepts channel posts from non-owner administrators and
// routes them to the channel creator for an approve/reject decision before
// publication.
type ApprovalService struct {
	bot    types.BotClient
	store  *PendingStore
	audit  AuditRecorder
	logger *errors.Logger
	now    func() time.Time
}

func NewApprovalService(bot types.BotClient, store *PendingStore, audit AuditRecorder, logger *errors.Logger) *ApprovalService {
	return &ApprovalService{
		bot:    bot,
		store:  store,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// HandleChannelPost decides whether a channel post needs owner approval.
// Posts by the creator pass through untouched, as do posts whose author role
// cannot be determined and posts into channels where no creator is locatable
// (fail-open: a missed review beats a silently swallowed post, and the
// warning log keeps the gap visible to operators).
func (as *ApprovalService) HandleChannelPost(ctx context.Context, post *types.Message) {
	if post == nil || post.From == nil {
		return
	}

	chatID := post.Chat.ID
	member, err := as.bot.GetChatMember(ctx, chatID, post.From.ID)
	if err != nil {
		as.logger.LogError(errors.NewTransportError("getChatMember", err),
			"Failed to check poster role, allowing post through", logrus.Fields{"chat_id": chatID})
		return
	}

	if member.Status != types.RoleAdministrator {
		// Creator posts (and anything else) are not intercepted.
		return
	}

	admins, err := as.bot.GetChatAdministrators(ctx, chatID)
	if err != nil {
		as.logger.LogError(errors.NewTransportError("getChatAdministrators", err),
			"Failed to list administrators, allowing post through", logrus.Fields{"chat_id": chatID})
		return
	}

	var creator *types.User
	for i := range admins {
		if admins[i].Status == types.RoleCreator {
			creator = &admins[i].User
			break
		}
	}
	if creator == nil {
		as.logger.WithContext(logrus.Fields{"chat_id": chatID}).
			Warn("Could not find channel creator, allowing post without approval")
		return
	}

	req := &models.PendingRequest{
		ID:            models.NewRequestID(chatID, as.now()),
		ChatID:        chatID,
		Content:       models.ContentFromMessage(post),
		SubmitterID:   post.From.ID,
		SubmitterName: post.From.DisplayName(),
		CreatedAt:     as.now(),
	}

	keyboard := &types.InlineKeyboardMarkup{
		InlineKeyboard: [][]types.InlineKeyboardButton{{
			{Text: "Approve", CallbackData: actionApprove + "_" + req.ID},
			{Text: "Reject", CallbackData: actionReject + "_" + req.ID},
		}},
	}
	prompt := fmt.Sprintf("New post from admin %s needs approval for channel %s:\n\n%s",
		req.SubmitterName, post.Chat.Title, req.Content.Preview())

	if _, err := as.bot.SendMessage(ctx, creator.ID, prompt, keyboard); err != nil {
		as.logger.LogError(errors.NewTransportError("sendMessage", err),
			"Failed to send approval prompt, allowing post through", logrus.Fields{"chat_id": chatID})
		return
	}

	as.store.Put(req)
	metrics.IncrementCounter("approval_requests_created", nil, "Pending requests created")
	metrics.SetGauge("approval_requests_pending", float64(as.store.Len()), nil, "Requests awaiting a decision")

	// Remove the original so the unreviewed post never publishes. Failure
	// here is non-fatal but means the content may duplicate on approval.
	if err := as.bot.DeleteMessage(ctx, chatID, post.MessageID); err != nil {
		as.logger.LogWarn(errors.NewTransportError("deleteMessage", err),
			"Failed to delete original post pending approval",
			logrus.Fields{"chat_id": chatID, "request_id": req.ID})
	}

	as.notifyBestEffort(ctx, req.SubmitterID,
		fmt.Sprintf("Your post to %s has been sent to the channel owner for approval.", post.Chat.Title))
}

// HandleDecision resolves an approval callback. Each request resolves at
// most once: the id is removed from the store before any side effect, so a
// repeated press finds nothing and gets the "no longer valid" response.
func (as *ApprovalService) HandleDecision(ctx context.Context, query *types.CallbackQuery) {
	if err := as.bot.AnswerCallbackQuery(ctx, query.ID); err != nil {
		as.logger.LogWarn(errors.NewTransportError("answerCallbackQuery", err),
			"Failed to acknowledge callback query")
	}

	action, requestID, ok := parseDecision(query.Data)
	if !ok {
		as.logger.LogWarn(errors.New(errors.ErrCodeProtocolInvalid, "malformed decision payload"),
			"Ignoring callback with unparseable data", logrus.Fields{"data": query.Data})
		return
	}

	req, found := as.store.Take(requestID)
	if !found {
		protoErr := errors.NewProtocolError(requestID)
		as.logger.LogWarn(protoErr, "Decision for unknown or already-resolved request")
		as.editPrompt(ctx, query, errors.GetUserMessage(protoErr))
		return
	}

	switch action {
	case actionApprove:
		as.approve(ctx, query, req)
	case actionReject:
		as.reject(ctx, query, req)
	}

	metrics.IncrementCounter("approval_decisions", map[string]string{"decision": action}, "Owner decisions processed")
	metrics.SetGauge("approval_requests_pending", float64(as.store.Len()), nil, "Requests awaiting a decision")
	as.recordDecision(ctx, req, action)
}

func (as *ApprovalService) approve(ctx context.Context, query *types.CallbackQuery, req *models.PendingRequest) {
	if err := as.forward(ctx, req.ChatID, req.Content); err != nil {
		as.logger.LogError(err, "Failed to publish approved post",
			logrus.Fields{"request_id": req.ID, "chat_id": req.ChatID})
		as.editPrompt(ctx, query, fmt.Sprintf("⚠️ Error publishing the post: %v", err))
		return
	}

	as.editPrompt(ctx, query, fmt.Sprintf("✅ Post from %s has been approved and published.", req.SubmitterName))
	as.notifyBestEffort(ctx, req.SubmitterID, "Your post to the channel has been approved and published.")
}

func (as *ApprovalService) reject(ctx context.Context, query *types.CallbackQuery, req *models.PendingRequest) {
	as.editPrompt(ctx, query, fmt.Sprintf("❌ Post from %s has been rejected.", req.SubmitterName))
	as.notifyBestEffort(ctx, req.SubmitterID, "Your post to the channel has been rejected by the channel owner.")
}

// forward re-emits approved content to its destination chat using the
// platform primitive matching the payload variant. Polls are reconstructed
// field by field since the platform cannot re-send them by reference.
func (as *ApprovalService) forward(ctx context.Context, chatID int64, content models.Content) error {
	var err error
	switch content.Kind {
	case models.ContentText:
		_, err = as.bot.SendMessage(ctx, chatID, content.Text, nil)
	case models.ContentPhoto:
		err = as.bot.SendPhoto(ctx, chatID, content.FileID, content.Caption)
	case models.ContentVideo:
		err = as.bot.SendVideo(ctx, chatID, content.FileID, content.Caption)
	case models.ContentDocument:
		err = as.bot.SendDocument(ctx, chatID, content.FileID, content.Caption)
	case models.ContentAudio:
		err = as.bot.SendAudio(ctx, chatID, content.FileID, content.Caption)
	case models.ContentVoice:
		err = as.bot.SendVoice(ctx, chatID, content.FileID, content.Caption)
	case models.ContentAnimation:
		err = as.bot.SendAnimation(ctx, chatID, content.FileID, content.Caption)
	case models.ContentPoll:
		err = as.bot.SendPoll(ctx, chatID, content.Poll)
	default:
		_, err = as.bot.SendMessage(ctx, chatID,
			"Content was approved but could not be properly forwarded due to unsupported format.", nil)
	}

	if err != nil {
		return errors.NewTransportError("forward "+string(content.Kind), err)
	}
	return nil
}

// editPrompt updates the owner's original approval message with the outcome.
func (as *ApprovalService) editPrompt(ctx context.Context, query *types.CallbackQuery, text string) {
	if query.Message == nil {
		return
	}
	if err := as.bot.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID, text); err != nil {
		as.logger.LogWarn(errors.NewTransportError("editMessageText", err),
			"Failed to update approval prompt")
	}
}

// notifyBestEffort sends a courtesy message and only logs a failure. Every
// submitter notification goes through here so the fire-and-forget policy is
// explicit at the call site.
func (as *ApprovalService) notifyBestEffort(ctx context.Context, chatID int64, text string) {
	if _, err := as.bot.SendMessage(ctx, chatID, text, nil); err != nil {
		as.logger.LogWarn(errors.Wrap(err, errors.ErrCodeNotifyFailed, "submitter notification failed"),
			"Could not notify submitter", logrus.Fields{"chat_id": chatID})
	}
}

func (as *ApprovalService) recordDecision(ctx context.Context, req *models.PendingRequest, action string) {
	if as.audit == nil {
		return
	}
	err := as.audit.RecordDecision(ctx, req.ID, req.ChatID, req.SubmitterName, string(req.Content.Kind), action, as.now())
	if err != nil {
		as.logger.LogWarn(errors.NewDatabaseError("record decision", err),
			"Audit write failed", logrus.Fields{"request_id": req.ID})
	}
}

// parseDecision splits callback data of the form action_<id>, where <id> may
// contain underscores.
func parseDecision(data string) (action, requestID string, ok bool) {
	parts := strings.Split(data, "_")
	if len(parts) < 2 {
		return "", "", false
	}
	action = parts[0]
	if action != actionApprove && action != actionReject {
		return "", "", false
	}
	return action, strings.Join(parts[1:], "_"), true
}
