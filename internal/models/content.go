package models

import "channelguard/pkg/telegram/types"

// ContentKind tags the payload variant carried by a Content value.
type ContentKind string

const (
	ContentText        ContentKind = "text"
	ContentPhoto       ContentKind = "photo"
	ContentVideo       ContentKind = "video"
	ContentDocument    ContentKind = "document"
	ContentAudio       ContentKind = "audio"
	ContentVoice       ContentKind = "voice"
	ContentAnimation   ContentKind = "animation"
	ContentPoll        ContentKind = "poll"
	ContentUnsupported ContentKind = "unsupported"
)

// Content is the payload of an intercepted channel post, reduced to the
// fields its re-emission needs. Exactly one variant's fields are populated,
// selected by Kind.
type Content struct {
	Kind    ContentKind
	Text    string
	FileID  string
	Caption string
	Poll    *types.Poll
}

// ContentFromMessage classifies a message into its payload variant. Photo
// messages keep only the highest-resolution representation; anything outside
// the known variants becomes ContentUnsupported.
func ContentFromMessage(msg *types.Message) Content {
	switch {
	case msg.Text != "":
		return Content{Kind: ContentText, Text: msg.Text}
	case len(msg.Photo) > 0:
		return Content{Kind: ContentPhoto, FileID: largestPhoto(msg.Photo).FileID, Caption: msg.Caption}
	case msg.Video != nil:
		return Content{Kind: ContentVideo, FileID: msg.Video.FileID, Caption: msg.Caption}
	case msg.Document != nil:
		return Content{Kind: ContentDocument, FileID: msg.Document.FileID, Caption: msg.Caption}
	case msg.Audio != nil:
		return Content{Kind: ContentAudio, FileID: msg.Audio.FileID, Caption: msg.Caption}
	case msg.Voice != nil:
		return Content{Kind: ContentVoice, FileID: msg.Voice.FileID, Caption: msg.Caption}
	case msg.Animation != nil:
		return Content{Kind: ContentAnimation, FileID: msg.Animation.FileID, Caption: msg.Caption}
	case msg.Poll != nil:
		return Content{Kind: ContentPoll, Poll: msg.Poll}
	default:
		return Content{Kind: ContentUnsupported}
	}
}

// Preview returns the text shown to the owner in the approval prompt.
func (c Content) Preview() string {
	if c.Kind == ContentText {
		return c.Text
	}
	if c.Kind == ContentPoll && c.Poll != nil {
		return "Poll: " + c.Poll.Question
	}
	if c.Caption != "" {
		return string(c.Kind) + ": " + c.Caption
	}
	return "Non-text content (" + string(c.Kind) + ")"
}

func largestPhoto(sizes []types.PhotoSize) types.PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}
