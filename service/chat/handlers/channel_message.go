package handlers

import (
	"AProject/logger"
	"AProject/service/chat"
)

// ChannelMessageHandler reserves the SEND_CHANNEL_MESSAGE tag. Channel
// routing is not implemented; recognized frames are logged and dropped so
// clients sending them don't get disconnected.
type ChannelMessageHandler struct{}

func NewChannelMessageHandler() chat.Handler { return &ChannelMessageHandler{} }

func (h *ChannelMessageHandler) Type() chat.FrameType { return chat.FrameSendChannelMessage }

func (h *ChannelMessageHandler) Handle(_ *chat.ChatContext, _ *chat.InboundFrame, sess *chat.Session) error {
	logger.Infof("[chat] channel messages not supported, drop frame from user %d", sess.UserID)
	return nil
}
