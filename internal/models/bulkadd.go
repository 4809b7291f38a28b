package models

import "strings"

// BulkAddStage is the explicit stage of a bulk-add conversation. Events
// arriving for any other stage are defined no-ops.
type BulkAddStage int

const (
	// StageDestination waits for the destination channel reference (entry
	// via /add).
	StageDestination BulkAddStage = iota
	// StageSource waits for a username list or a public group link.
	StageSource
	// StageDestinationForGroup waits for the destination channel when a
	// group link was already supplied via /addgroup.
	StageDestinationForGroup
)

// BulkAddSession is the per-conversation working state of one pipeline run.
// A session belongs to exactly one conversation and is discarded on every
// terminal outcome (completion, validation failure, cancellation).
type BulkAddSession struct {
	Stage            BulkAddStage
	DestinationRef   string
	DestinationID    int64
	DestinationTitle string
	GroupLink        string
	Identities       []string
}

// BulkAddReport is the outcome of one pipeline run.
// Added+Failed always equals the number of non-blank identities attempted;
// "already a member" errors count as added.
type BulkAddReport struct {
	Added            int
	Failed           int
	FailedIdentities []string
}

// NormalizeChannelRef reduces a destination reference to a bare identifier:
// t.me deep links lose their prefix, a single leading @ is stripped.
func NormalizeChannelRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if rest, ok := strings.CutPrefix(ref, "https://t.me/"); ok {
		return rest
	}
	return strings.TrimPrefix(ref, "@")
}

// ParseIdentities splits free-text input into candidate handles, one per
// line, trimming surrounding whitespace and a single leading @ and dropping
// blank lines.
func ParseIdentities(input string) []string {
	var out []string
	for _, line := range strings.Split(input, "\n") {
		handle := strings.TrimPrefix(strings.Trim(line, " \t\r"), "@")
		if handle == "" {
			continue
		}
		out = append(out, handle)
	}
	return out
}
