package chat

import "context"

// Handler processes one inbound frame kind for an authenticated session.
type Handler interface {
	Type() FrameType
	Handle(ctx *ChatContext, f *InboundFrame, sess *Session) error
}

// ChatContext carries the server and the request-scoped context into frame
// handlers.
type ChatContext struct {
	S   *Server
	Ctx context.Context
}
