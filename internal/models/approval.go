package models

import (
	"fmt"
	"time"
)

// PendingRequest is one channel post awaiting the owner's decision. It is
// created when a non-owner administrator posts into a monitored channel and
// deleted the moment a decision is recorded; it is never mutated in between.
type PendingRequest struct {
	ID            string
	ChatID        int64
	Content       Content
	SubmitterID   int64
	SubmitterName string
	CreatedAt     time.Time
}

// NewRequestID builds the queue key for a pending request. The source chat id
// plus a nanosecond timestamp keeps ids unique for the life of the process;
// note the id itself contains underscores, so decision callbacks must rejoin
// everything after the action token.
func NewRequestID(chatID int64, now time.Time) string {
	return fmt.Sprintf("%d_%d", chatID, now.UnixNano())
}
