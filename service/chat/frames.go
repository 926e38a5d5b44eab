package chat

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	chatmodel "AProject/module/chat/model"
	usermodel "AProject/module/user/model"
	decode "AProject/tools/decode"
	errs "AProject/tools/errs"
)

// FrameType is the closed set of tags carried in the "type" discriminator
// of inbound and outbound frames. Unknown tags are logged and dropped
// without closing the connection.
type FrameType string

const (
	FrameSendMessage        FrameType = "SEND_MESSAGE"
	FrameUserLogin          FrameType = "USER_LOGIN"
	FrameUserLogout         FrameType = "USER_LOGOUT"
	FrameSendChannelMessage FrameType = "SEND_CHANNEL_MESSAGE" // reserved, not routed
)

func (t FrameType) Known() bool {
	switch t {
	case FrameSendMessage, FrameUserLogin, FrameUserLogout, FrameSendChannelMessage:
		return true
	}
	return false
}

// InboundFrame is a structured text frame received after authentication:
//
//	{"type":"SEND_MESSAGE","toUserId":"<id>[@homeServer]","message":"<text>"}
type InboundFrame struct {
	Type     FrameType `json:"type"`
	ToUserID string    `json:"toUserId"`
	Message  string    `json:"message"`
}

// ParseInboundFrame unmarshals the tagged envelope and decodes the rest of
// the fields against the tag.
func ParseInboundFrame(raw []byte) (*InboundFrame, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errs.WrapMsg(err, "unmarshal frame")
	}
	tag, err := decode.ReadString(m, "type")
	if err != nil {
		return nil, errs.WrapMsg(err, "frame type discriminator")
	}
	if !FrameType(tag).Known() {
		return nil, errs.ErrFrameUnsupported.WithDetail(tag)
	}
	frame, err := decode.DecodeMap[InboundFrame](m)
	if err != nil {
		return nil, errs.WrapMsg(err, "decode frame", "type", tag)
	}
	return frame, nil
}

// ParseRecipient splits "<recipientId>[@<homeServer>]". An absent server
// segment means local to this server.
func ParseRecipient(ident string) (userID int64, server string, err error) {
	idPart := ident
	if at := strings.Index(ident, "@"); at >= 0 {
		idPart = ident[:at]
		server = ident[at+1:]
	}
	userID, perr := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if perr != nil || userID <= 0 {
		return 0, "", errs.ErrBadRecipient.WithDetail(ident)
	}
	return userID, server, nil
}

// PushFrame is the outbound push schema shared by chat and presence events:
//
//	{"type":..., "subject":..., "timestamp":<epoch-ms>, "payload":...}
//
// Subject is the serialized public identity; Payload carries the serialized
// message and is present only for SEND_MESSAGE.
type PushFrame struct {
	Type      FrameType       `json:"type"`
	Subject   json.RawMessage `json:"subject"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func BuildChatPush(recipient usermodel.UserDTO, msg *chatmodel.ChatMessage) ([]byte, error) {
	subject, err := json.Marshal(recipient)
	if err != nil {
		return nil, errs.WrapMsg(err, "marshal push subject")
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, errs.WrapMsg(err, "marshal push payload")
	}
	return json.Marshal(PushFrame{
		Type:      FrameSendMessage,
		Subject:   subject,
		Timestamp: time.Now().UnixMilli(),
		Payload:   payload,
	})
}

func BuildPresenceEvent(t FrameType, user usermodel.UserDTO) ([]byte, error) {
	subject, err := json.Marshal(user)
	if err != nil {
		return nil, errs.WrapMsg(err, "marshal presence subject")
	}
	return json.Marshal(PushFrame{
		Type:      t,
		Subject:   subject,
		Timestamp: time.Now().UnixMilli(),
	})
}
