package chat

import (
	"AProject/logger"
)

// Dispatcher maps frame tags to handlers. Tag-based dispatch keeps the set
// of recognized frames closed; anything else is logged and dropped upstream.
type Dispatcher struct {
	handlers map[FrameType]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[FrameType]Handler)}
}

func (d *Dispatcher) Register(h Handler) { d.handlers[h.Type()] = h }

func (d *Dispatcher) GetHandler(t FrameType) Handler {
	h, ok := d.handlers[t]
	if !ok {
		logger.Infof("no handler for type=%s", t)
		return nil
	}
	return h
}
