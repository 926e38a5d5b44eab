package model

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	ids "AProject/tools/ids"
)

const (
	MessageTableName = "chat_messages"

	// Body length bounds enforced before a message is accepted for routing.
	MinMessageLen = 1
	MaxMessageLen = 5000
)

// ChatMessage is one direct chat message. Immutable after creation except
// for the read/edited flags, which are flipped by the history features,
// never by the routing core.
type ChatMessage struct {
	ID                 int64     `bson:"_id" json:"id"`
	FromUserID         int64     `bson:"from_user_id" json:"fromUserId"`
	ToUserID           int64     `bson:"to_user_id" json:"toUserId"`
	FromUserServer     string    `bson:"from_user_server,omitempty" json:"fromUserServer,omitempty"` // empty = local
	ToUserServer       string    `bson:"to_user_server,omitempty" json:"toUserServer,omitempty"`     // empty = local
	Message            string    `bson:"message" json:"message"`
	IsRead             bool      `bson:"is_read" json:"isRead"`
	IsEdited           bool      `bson:"is_edited" json:"isEdited"`
	CreatedAt          time.Time `bson:"created_at" json:"createdAt"`
	FederatedMessageID string    `bson:"federated_message_id,omitempty" json:"federatedMessageId,omitempty"`
}

// BodyInRange reports whether the body is within MinMessageLen..MaxMessageLen
// characters. The bound counts runes, not bytes, so multibyte text gets the
// full 5000 characters.
func BodyInRange(body string) bool {
	n := utf8.RuneCountInString(body)
	return n >= MinMessageLen && n <= MaxMessageLen
}

// NewChatMessage builds a message at send time. Server fields may be empty
// (meaning local); the router stamps them before federated delivery.
func NewChatMessage(fromUserID int64, fromServer string, toUserID int64, toServer string, body string) *ChatMessage {
	return &ChatMessage{
		ID:                 ids.Generate(),
		FromUserID:         fromUserID,
		FromUserServer:     fromServer,
		ToUserID:           toUserID,
		ToUserServer:       toServer,
		Message:            body,
		CreatedAt:          time.Now(),
		FederatedMessageID: GenerateFederatedMessageID(fromUserID, fromServer),
	}
}

// GenerateFederatedMessageID returns <server>:<userId>:<snowflake>. The id
// only needs to be unique within the federation exchange; the snowflake
// component keeps it collision-safe under concurrent sends from one user.
func GenerateFederatedMessageID(userID int64, server string) string {
	if server == "" {
		server = "local"
	}
	return fmt.Sprintf("%s:%d:%s", server, userID, ids.GenerateString())
}

func (m *ChatMessage) IsFederated() bool {
	return m.FromUserServer != ""
}

func (m *ChatMessage) FromFederatedID() string {
	if m.FromUserServer != "" {
		return fmt.Sprintf("%d@%s", m.FromUserID, m.FromUserServer)
	}
	return strconv.FormatInt(m.FromUserID, 10)
}

func (m *ChatMessage) ToFederatedID() string {
	if m.ToUserServer != "" {
		return fmt.Sprintf("%d@%s", m.ToUserID, m.ToUserServer)
	}
	return strconv.FormatInt(m.ToUserID, 10)
}
