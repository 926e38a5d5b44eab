package chat

import (
	"AProject/logger"
	usermodel "AProject/module/user/model"
)

// Broadcaster fans login/logout notifications out to every registered local
// session. Per-recipient failures are isolated inside Session.Push and never
// abort the broadcast to remaining recipients.
type Broadcaster struct {
	reg    *ConnManager
	fanout *Fanout
}

func NewBroadcaster(reg *ConnManager, fanout *Fanout) *Broadcaster {
	return &Broadcaster{reg: reg, fanout: fanout}
}

func (b *Broadcaster) BroadcastLogin(user usermodel.UserDTO) {
	b.broadcast(FrameUserLogin, user)
}

func (b *Broadcaster) BroadcastLogout(user usermodel.UserDTO) {
	b.broadcast(FrameUserLogout, user)
}

func (b *Broadcaster) broadcast(t FrameType, user usermodel.UserDTO) {
	payload, err := BuildPresenceEvent(t, user)
	if err != nil {
		logger.Errorf("[presence] build %s event for user %d: %v", t, user.ID, err)
		return
	}

	// Everyone except the subject themself.
	all := b.reg.Snapshot()
	targets := all[:0]
	for _, s := range all {
		if s.UserID == user.ID || !s.Active() {
			continue
		}
		targets = append(targets, s)
	}
	b.fanout.Broadcast(targets, payload)
}
