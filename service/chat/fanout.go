package chat

import (
	"AProject/logger"
	safe "AProject/tools/safe"
)

type fanoutJob struct {
	sessions []*Session
	payload  []byte
}

// Fanout pushes one payload to many sessions on a bounded worker pool, so a
// large broadcast never runs on the goroutine that triggered it.
type Fanout struct {
	jobs chan fanoutJob
}

func NewFanout(workers, queue int) *Fanout {
	f := &Fanout{jobs: make(chan fanoutJob, queue)}
	for i := 0; i < workers; i++ {
		safe.SafeGo(func() {
			for job := range f.jobs {
				for _, s := range job.sessions {
					// Push already isolates slow/closed recipients.
					s.Push(job.payload)
				}
			}
		})
	}
	return f
}

// Broadcast enqueues without blocking. A full queue drops the whole job;
// the caller may be a connection's handler goroutine and must not stall.
func (f *Fanout) Broadcast(sessions []*Session, payload []byte) bool {
	if len(sessions) == 0 || len(payload) == 0 {
		return false
	}
	select {
	case f.jobs <- fanoutJob{sessions: sessions, payload: payload}:
		return true
	default:
		logger.Warn("[fanout] queue full, drop broadcast")
		return false
	}
}
