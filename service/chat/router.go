package chat

import (
	"context"

	"AProject/logger"
	chatmodel "AProject/module/chat/model"
	usermodel "AProject/module/user/model"
	storage "AProject/service/storage"
	errs "AProject/tools/errs"
)

// MessageStore is the durable append/query capability the router persists
// through. Persistence is unconditional and independent of delivery outcome.
type MessageStore interface {
	Save(ctx context.Context, msg *chatmodel.ChatMessage) error
}

// Forwarder pushes an already-persisted message to the recipient's home
// server. It reports success only; all failures stay behind this boundary.
type Forwarder interface {
	Send(ctx context.Context, msg *chatmodel.ChatMessage) bool
}

// Router decides local vs federated delivery for an outgoing chat message,
// persists it, and triggers the delivery side effects.
type Router struct {
	domain string
	reg    *ConnManager
	store  MessageStore
	fed    Forwarder
	outbox *Outbox
}

func NewRouter(domain string, reg *ConnManager, store MessageStore, fed Forwarder, outbox *Outbox) *Router {
	return &Router{domain: domain, reg: reg, store: store, fed: fed, outbox: outbox}
}

// Route handles one SEND_MESSAGE frame from an authenticated sender. A
// malformed recipient or out-of-range body is an error contained to this
// message; the caller logs and drops it, the connection stays open.
func (r *Router) Route(ctx context.Context, sender usermodel.UserDTO, recipient, body string) error {
	if !chatmodel.BodyInRange(body) {
		return errs.ErrMessageTooLong.WithDetail("chars out of 1..5000")
	}

	toUserID, toServer, err := ParseRecipient(recipient)
	if err != nil {
		return err
	}

	// An absent home server means local; a matching one too
	// (case-sensitive exact match).
	if toServer == "" || toServer == r.domain {
		msg := chatmodel.NewChatMessage(sender.ID, "", toUserID, "", body)
		return r.DeliverLocal(ctx, msg)
	}
	return r.deliverFederated(ctx, sender, toUserID, toServer, body)
}

// DeliverLocal persists the message and attempts a live push to the locally
// connected recipient. The push is best-effort: an absent or inactive
// session leaves the persisted record as the only trace, which the history
// query surfaces later.
func (r *Router) DeliverLocal(ctx context.Context, msg *chatmodel.ChatMessage) error {
	if err := r.store.Save(ctx, msg); err != nil {
		logger.Errorf("[router] persist message %d: %v", msg.ID, err)
		return err
	}

	sess, ok := r.reg.Lookup(msg.ToUserID)
	if !ok || !sess.Active() {
		// Hand-off point for an offline-notification extension. The redis
		// mirror distinguishes truly-offline from online-elsewhere.
		if gw, online, perr := storage.PresenceLookup(ctx, msg.ToUserID); perr == nil && online {
			logger.Debugf("[router] user %d has no local session but is online on %s, stored for later", msg.ToUserID, gw)
		} else {
			logger.Debugf("[router] user %d is not connected, stored for later", msg.ToUserID)
		}
		return nil
	}

	payload, err := BuildChatPush(sess.User, msg)
	if err != nil {
		logger.Errorf("[router] serialize push for user %d: %v", msg.ToUserID, err)
		return nil
	}
	if !sess.Push(payload) {
		logger.Debugf("[router] push dropped for user %d, message %d persisted", msg.ToUserID, msg.ID)
	}
	return nil
}

func (r *Router) deliverFederated(ctx context.Context, sender usermodel.UserDTO, toUserID int64, toServer, body string) error {
	fromServer := sender.ServerDomain
	if fromServer == "" {
		fromServer = r.domain
	}
	msg := chatmodel.NewChatMessage(sender.ID, fromServer, toUserID, toServer, body)
	logger.Infof("[router] routing message to federated user %s", msg.ToFederatedID())

	// Persist locally first: the durability anchor for at-most-once-effort
	// federation.
	if err := r.store.Save(ctx, msg); err != nil {
		logger.Errorf("[router] persist federated message %d: %v", msg.ID, err)
		return err
	}

	r.outbox.Submit(func() {
		if !r.fed.Send(context.Background(), msg) {
			logger.Errorf("[router] failed to deliver federated message %s to %s",
				msg.FederatedMessageID, toServer)
		}
	})
	return nil
}
