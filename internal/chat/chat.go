// Package chat implements direct messages between two accounts.
package chat

import (
	"errors"
	"io"
	"time"
)

var (
	// ErrEmptyMessage is returned when a message has neither text nor images.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrInvalidParticipants is returned for a missing or repeated uid.
	ErrInvalidParticipants = errors.New("a conversation needs two distinct accounts")
	// ErrNotFound is returned for unknown conversations.
	ErrNotFound = errors.New("conversation not found")
	// ErrNotParticipant is returned when an account reads someone else's conversation.
	ErrNotParticipant = errors.New("not a participant of the conversation")
)

// ImageFolder is where chat attachments are stored.
const ImageFolder = "chatImages"

// idSeparator joins the two uids of a CombinedID. Uids containing it cannot
// chat.
const idSeparator = ":"

// CombinedID identifies the conversation between two accounts regardless of
// who writes first.
func CombinedID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + idSeparator + b
}

// Message is one chat message.
type Message struct {
	ID         string    `json:"id"`
	CombinedID string    `json:"combined_id"`
	SenderID   string    `json:"sender_id"`
	Text       string    `json:"text"`
	Images     []string  `json:"images"`
	CreatedAt  time.Time `json:"created_at"`
}

// Conversation is one entry of an account's inbox.
type Conversation struct {
	CombinedID  string    `json:"combined_id"`
	With        string    `json:"with"`
	LastMessage string    `json:"last_message"`
	LastSender  string    `json:"last_sender"`
	IsRead      bool      `json:"is_read"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Attachment is an image sent with a message.
type Attachment struct {
	Ext  string
	Body io.Reader
}

// lastLine is what the inbox previews: the last image when there is one,
// the text otherwise.
func lastLine(text string, images []string) string {
	if len(images) > 0 {
		return images[len(images)-1]
	}
	return text
}
