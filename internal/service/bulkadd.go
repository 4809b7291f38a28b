package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"channelguard/internal/constants"
	"channelguard/internal/errors"
	"channelguard/internal/metrics"
	"channelguard/internal/models"
	"channelguard/pkg/telegram/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	msgAskDestination = "Please send me the channel username or invite link where you want to add users.\n" +
		"Make sure I am an admin in the channel with user add permissions."
	msgChannelInaccessible = "I couldn't access that channel. Please make sure:\n" +
		"1. The channel exists\n" +
		"2. I'm a member of the channel\n" +
		"3. You provided a valid username or invite link\n\n" +
		"Please try again or use /cancel to stop."
	msgNotAdmin = "I need to be an administrator in the channel to add users. " +
		"Please add me as an admin with user add permissions and try again."
	msgNoInvitePermission = "I am an admin in the channel, but I don't have permission to add users. " +
		"Please update my permissions and try again."
	msgPrivateInvite = "I can't automatically extract users from private group invites. " +
		"Please provide a list of usernames instead (one per line)."
	msgGroupInaccessible = "I couldn't access the group members. " +
		"Please provide a list of usernames instead (one per line)."
	msgNoUsernames = "No valid usernames found. Please provide at least one valid username."
	msgCancelled   = "Operation cancelled."
)

// BulkAddService runs the membership-import dialogue: destination channel
// acquisition, bot permission validation, candidate-list acquisition, and
// the sequential add loop with progress reporting.
//
// Sessions are keyed by conversation chat id. Webhook mode dispatches each
// update on its own goroutine, so every entry point serializes on a
// per-conversation lock; session fields are only touched while it is held.
type BulkAddService struct {
	bot    types.BotClient
	audit  AuditRecorder
	logger *errors.Logger

	sessions map[int64]*models.BulkAddSession
	locks    map[int64]*sync.Mutex
	mu       sync.Mutex

	selfID int64
}

func NewBulkAddService(bot types.BotClient, audit AuditRecorder, logger *errors.Logger) *BulkAddService {
	return &BulkAddService{
		bot:      bot,
		audit:    audit,
		logger:   logger,
		sessions: make(map[int64]*models.BulkAddSession),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// conversationLock returns the lock serializing all updates for one
// conversation. Locks are created on first use and kept for the life of the
// process; one mutex per conversation the bot has ever run a wizard in.
func (bs *BulkAddService) conversationLock(chatID int64) *sync.Mutex {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	lock, ok := bs.locks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		bs.locks[chatID] = lock
	}
	return lock
}

// StartAdd begins the /add wizard: the next text message from this
// conversation is taken as the destination channel reference.
func (bs *BulkAddService) StartAdd(ctx context.Context, chatID int64) {
	lock := bs.conversationLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	bs.setSession(chatID, &models.BulkAddSession{Stage: models.StageDestination})
	bs.reply(ctx, chatID, msgAskDestination)
}

// StartAddGroup begins the /addgroup flow with the group link already given
// as a command argument; only the destination channel remains to be asked.
func (bs *BulkAddService) StartAddGroup(ctx context.Context, chatID int64, args string) {
	link := strings.TrimSpace(args)
	if link == "" {
		bs.reply(ctx, chatID, "Please provide a group link after the command. For example:\n"+
			"/addgroup https://t.me/your_group_name")
		return
	}
	if !strings.HasPrefix(link, "https://t.me/") {
		bs.reply(ctx, chatID, "That doesn't look like a valid Telegram group link. "+
			"Please provide a link in the format: https://t.me/your_group_name")
		return
	}

	lock := bs.conversationLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	bs.setSession(chatID, &models.BulkAddSession{
		Stage:     models.StageDestinationForGroup,
		GroupLink: link,
	})
	bs.reply(ctx, chatID, msgAskDestination)
}

// Cancel unconditionally terminates the conversation's session.
func (bs *BulkAddService) Cancel(ctx context.Context, chatID int64) {
	lock := bs.conversationLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	bs.clearSession(chatID)
	bs.reply(ctx, chatID, msgCancelled)
}

// HandleText feeds a conversational text message into the session's current
// stage. It reports whether the message was consumed; text arriving with no
// active session is left for other handlers. Concurrent deliveries for the
// same conversation queue on the conversation lock, so exactly one of them
// drives each stage transition.
func (bs *BulkAddService) HandleText(ctx context.Context, chatID int64, text string) bool {
	lock := bs.conversationLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	session, ok := bs.getSession(chatID)
	if !ok {
		return false
	}

	switch session.Stage {
	case models.StageDestination:
		if bs.resolveDestination(ctx, chatID, session, text) {
			session.Stage = models.StageSource
			bs.reply(ctx, chatID, fmt.Sprintf("Great! I'm an admin in the channel %s.\n\n"+
				"Now, please send me the link to the group or a list of usernames (one per line) "+
				"from which you want to add users.", session.DestinationTitle))
		}
	case models.StageDestinationForGroup:
		if bs.resolveDestination(ctx, chatID, session, text) {
			bs.reply(ctx, chatID, fmt.Sprintf("Great! I'm an admin in the channel %s.\n\n"+
				"Now processing the group link you provided. This might take some time...", session.DestinationTitle))
			bs.acquireAndRun(ctx, chatID, session, session.GroupLink)
		}
	case models.StageSource:
		bs.reply(ctx, chatID, "Processing your request. This might take some time...")
		bs.acquireAndRun(ctx, chatID, session, text)
	}

	return true
}

// resolveDestination normalizes and resolves the channel reference, then
// validates that the bot is an administrator with the invite permission.
// Either failed condition gets its own terminal message. Returns false after
// clearing the session on any failure.
func (bs *BulkAddService) resolveDestination(ctx context.Context, chatID int64, session *models.BulkAddSession, ref string) bool {
	session.DestinationRef = models.NormalizeChannelRef(ref)

	chat, err := bs.bot.GetChat(ctx, session.DestinationRef)
	if err != nil {
		bs.logger.LogError(errors.NewResolutionError(session.DestinationRef, err),
			"Failed to resolve destination channel", logrus.Fields{"chat_id": chatID})
		bs.failSession(ctx, chatID, msgChannelInaccessible)
		return false
	}
	session.DestinationID = chat.ID
	session.DestinationTitle = chat.Title

	selfID, err := bs.self(ctx)
	if err != nil {
		bs.logger.LogError(errors.NewTransportError("getMe", err), "Failed to resolve own identity")
		bs.failSession(ctx, chatID, msgChannelInaccessible)
		return false
	}

	member, err := bs.bot.GetChatMember(ctx, chat.ID, selfID)
	if err != nil {
		bs.logger.LogError(errors.NewTransportError("getChatMember", err),
			"Failed to check own membership in destination channel", logrus.Fields{"channel_id": chat.ID})
		bs.failSession(ctx, chatID, msgChannelInaccessible)
		return false
	}

	if member.Status != types.RoleAdministrator {
		bs.logger.LogWarn(errors.NewPermissionError("bot", "administrator role in destination channel"),
			"Bulk add refused", logrus.Fields{"channel_id": chat.ID, "status": member.Status})
		bs.failSession(ctx, chatID, msgNotAdmin)
		return false
	}
	if !member.CanInviteUsers {
		bs.logger.LogWarn(errors.NewPermissionError("bot", "invite permission in destination channel"),
			"Bulk add refused", logrus.Fields{"channel_id": chat.ID})
		bs.failSession(ctx, chatID, msgNoInvitePermission)
		return false
	}

	return true
}

// acquireAndRun turns the source input (username list or group link) into a
// candidate sequence and, if non-empty, runs the add loop. Every path out of
// here is terminal for the session.
func (bs *BulkAddService) acquireAndRun(ctx context.Context, chatID int64, session *models.BulkAddSession, input string) {
	input = strings.TrimSpace(input)

	var candidates []string
	if strings.HasPrefix(input, "https://") {
		var ok bool
		candidates, ok = bs.candidatesFromGroup(ctx, chatID, input)
		if !ok {
			return
		}
	} else {
		candidates = models.ParseIdentities(input)
	}

	if len(candidates) == 0 {
		bs.failSession(ctx, chatID, msgNoUsernames)
		return
	}

	session.Identities = candidates
	bs.runAdd(ctx, chatID, session)
}

// candidatesFromGroup derives candidates from a public group link using the
// group's administrator list. That list is the only membership subset the
// Bot API lets a bot enumerate, so it stands in for the full member list;
// the count message makes the approximation explicit to the user. Private
// invite links (a + in the path) are rejected before any network call.
func (bs *BulkAddService) candidatesFromGroup(ctx context.Context, chatID int64, link string) ([]string, bool) {
	rest, ok := strings.CutPrefix(link, "https://t.me/")
	if !ok {
		bs.failSession(ctx, chatID, "Invalid group link format. "+
			"Please provide a valid Telegram group link starting with https://t.me/")
		return nil, false
	}

	if strings.Contains(rest, "+") {
		bs.failSession(ctx, chatID, msgPrivateInvite)
		return nil, false
	}

	group, err := bs.bot.GetChat(ctx, rest)
	if err != nil {
		bs.logger.LogError(errors.NewResolutionError(rest, err), "Failed to resolve source group")
		bs.failSession(ctx, chatID, msgGroupInaccessible)
		return nil, false
	}

	admins, err := bs.bot.GetChatAdministrators(ctx, group.ID)
	if err != nil {
		bs.logger.LogError(errors.NewTransportError("getChatAdministrators", err),
			"Failed to list source group administrators", logrus.Fields{"group_id": group.ID})
		bs.failSession(ctx, chatID, msgGroupInaccessible)
		return nil, false
	}

	var usernames []string
	for _, admin := range admins {
		if admin.User.Username != "" {
			usernames = append(usernames, admin.User.Username)
		}
	}

	bs.reply(ctx, chatID, fmt.Sprintf("I could only retrieve %d users from the group due to Telegram API limitations.\n"+
		"I'll proceed with adding these users to the channel.", len(usernames)))

	return usernames, true
}

// runAdd processes candidates strictly in order: resolve the handle, attempt
// the invite, classify the outcome, and keep going. "Already a member"
// invite errors count as added. A single standing status message is edited
// after every 5th candidate and always after the last.
func (bs *BulkAddService) runAdd(ctx context.Context, chatID int64, session *models.BulkAddSession) {
	defer bs.clearSession(chatID)

	report := models.BulkAddReport{}
	total := len(session.Identities)

	progress, err := bs.bot.SendMessage(ctx, chatID, "Starting to add users to the channel...", nil)
	if err != nil {
		bs.logger.LogWarn(errors.NewTransportError("sendMessage", err),
			"Failed to create progress message; continuing without progress updates")
		progress = nil
	}

	for i, username := range session.Identities {
		if username == "" {
			continue
		}

		bs.addOne(ctx, session.DestinationID, username, &report)

		if (i+1)%constants.ProgressUpdateEvery == 0 || i == total-1 {
			bs.updateProgress(ctx, chatID, progress, i+1, total, &report)
		}
	}

	bs.reply(ctx, chatID, formatReport(&report))

	metrics.IncrementCounter("bulk_add_runs", nil, "Completed bulk-add runs")
	metrics.SetGauge("bulk_add_last_added", float64(report.Added), nil, "Members added in the last run")
	metrics.SetGauge("bulk_add_last_failed", float64(report.Failed), nil, "Failures in the last run")

	bs.recordRun(ctx, session.DestinationID, total, &report)
}

func (bs *BulkAddService) addOne(ctx context.Context, channelID int64, username string, report *models.BulkAddReport) {
	user, err := bs.bot.GetChat(ctx, username)
	if err != nil {
		report.Failed++
		report.FailedIdentities = append(report.FailedIdentities, username)
		bs.logger.LogError(errors.NewResolutionError(username, err), "Could not resolve user")
		return
	}

	if err := bs.bot.InviteChatMember(ctx, channelID, user.ID); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already a member") {
			report.Added++
			return
		}
		report.Failed++
		report.FailedIdentities = append(report.FailedIdentities, username)
		bs.logger.LogError(errors.NewTransportError("inviteChatMember", err),
			"Could not add user to channel", logrus.Fields{"username": username, "channel_id": channelID})
		return
	}

	report.Added++
}

func (bs *BulkAddService) updateProgress(ctx context.Context, chatID int64, progress *types.Message, processed, total int, report *models.BulkAddReport) {
	if progress == nil {
		return
	}
	text := fmt.Sprintf("Progress: %d/%d users processed.\nAdded: %d, Failed: %d",
		processed, total, report.Added, report.Failed)
	if err := bs.bot.EditMessageText(ctx, chatID, progress.MessageID, text); err != nil {
		bs.logger.LogWarn(errors.NewTransportError("editMessageText", err), "Failed to update progress message")
	}
}

func formatReport(report *models.BulkAddReport) string {
	if len(report.FailedIdentities) == 0 {
		return fmt.Sprintf("User addition complete!\n\n"+
			"✅ Successfully added: %d users\n"+
			"All users were added successfully!", report.Added)
	}

	shown := report.FailedIdentities
	overflow := 0
	if len(shown) > constants.FailedListDisplayLimit {
		overflow = len(shown) - constants.FailedListDisplayLimit
		shown = shown[:constants.FailedListDisplayLimit]
	}

	text := fmt.Sprintf("User addition complete!\n\n"+
		"✅ Successfully added: %d users\n"+
		"❌ Failed to add: %d users\n\n"+
		"Some users that couldn't be added (first 10):\n%s",
		report.Added, report.Failed, strings.Join(shown, "\n"))
	if overflow > 0 {
		text += fmt.Sprintf("... and %d more", overflow)
	}
	return text
}

func (bs *BulkAddService) recordRun(ctx context.Context, channelID int64, attempted int, report *models.BulkAddReport) {
	if bs.audit == nil {
		return
	}
	runID := uuid.New().String()
	err := bs.audit.RecordBulkRun(ctx, runID, channelID, attempted, report.Added, report.Failed, time.Now())
	if err != nil {
		bs.logger.LogWarn(errors.NewDatabaseError("record bulk run", err),
			"Audit write failed", logrus.Fields{"run_id": runID})
	}
}

// failSession ends the session with a user-facing message.
func (bs *BulkAddService) failSession(ctx context.Context, chatID int64, text string) {
	bs.clearSession(chatID)
	bs.reply(ctx, chatID, text)
}

func (bs *BulkAddService) reply(ctx context.Context, chatID int64, text string) {
	if _, err := bs.bot.SendMessage(ctx, chatID, text, nil); err != nil {
		bs.logger.LogWarn(errors.NewTransportError("sendMessage", err),
			"Failed to send reply", logrus.Fields{"chat_id": chatID})
	}
}

// self returns the bot's own user id, fetched once and cached.
func (bs *BulkAddService) self(ctx context.Context) (int64, error) {
	bs.mu.Lock()
	cached := bs.selfID
	bs.mu.Unlock()
	if cached != 0 {
		return cached, nil
	}

	me, err := bs.bot.GetMe(ctx)
	if err != nil {
		return 0, err
	}

	bs.mu.Lock()
	bs.selfID = me.ID
	bs.mu.Unlock()
	return me.ID, nil
}

func (bs *BulkAddService) getSession(chatID int64) (*models.BulkAddSession, bool) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	s, ok := bs.sessions[chatID]
	return s, ok
}

func (bs *BulkAddService) setSession(chatID int64, s *models.BulkAddSession) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.sessions[chatID] = s
}

func (bs *BulkAddService) clearSession(chatID int64) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	delete(bs.sessions, chatID)
}

// HasSession reports whether a bulk-add conversation is in flight for the
// chat. Used by the router to give conversational text to this service.
func (bs *BulkAddService) HasSession(chatID int64) bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	_, ok := bs.sessions[chatID]
	return ok
}
