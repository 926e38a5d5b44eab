package federation

import (
	"time"

	chatmodel "AProject/module/chat/model"
)

// Envelope is the wire representation of a message crossing servers. It is
// never persisted; each side keeps its own ChatMessage record.
type Envelope struct {
	FromUserID int64  `json:"fromUserId"`
	FromServer string `json:"fromServer"`
	ToUserID   int64  `json:"toUserId"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
}

// ServerInfo is the discovery document served at /.well-known/federation.
type ServerInfo struct {
	ServerDomain string            `json:"serverDomain"`
	Version      string            `json:"version"`
	Endpoints    map[string]string `json:"endpoints"`
}

func envelopeFromMessage(msg *chatmodel.ChatMessage, localDomain string) *Envelope {
	fromServer := msg.FromUserServer
	if fromServer == "" {
		fromServer = localDomain
	}
	return &Envelope{
		FromUserID: msg.FromUserID,
		FromServer: fromServer,
		ToUserID:   msg.ToUserID,
		Message:    msg.Message,
		Timestamp:  time.Now().UnixMilli(),
	}
}
