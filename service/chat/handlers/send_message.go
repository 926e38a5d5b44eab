package handlers

import (
	"AProject/logger"
	"AProject/service/chat"
)

// SendMessageHandler feeds SEND_MESSAGE frames into the router. Routing
// errors are contained to the single message: log, drop, connection stays
// open.
type SendMessageHandler struct{}

func NewSendMessageHandler() chat.Handler { return &SendMessageHandler{} }

func (h *SendMessageHandler) Type() chat.FrameType { return chat.FrameSendMessage }

func (h *SendMessageHandler) Handle(ctx *chat.ChatContext, f *chat.InboundFrame, sess *chat.Session) error {
	if err := ctx.S.Router().Route(ctx.Ctx, sess.User, f.ToUserID, f.Message); err != nil {
		logger.Warnf("[chat] drop message from user %d to %q: %v", sess.UserID, f.ToUserID, err)
	}
	return nil
}
