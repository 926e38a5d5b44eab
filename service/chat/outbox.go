package chat

import (
	"AProject/logger"
	safe "AProject/tools/safe"
)

// Outbox is the asynchronous boundary for federation network calls: jobs run
// on a bounded worker pool so an unreachable remote server cannot stall the
// goroutines serving local sessions.
type Outbox struct {
	jobs chan func()
}

func NewOutbox(workers, queue int) *Outbox {
	o := &Outbox{jobs: make(chan func(), queue)}
	for i := 0; i < workers; i++ {
		safe.SafeGo(func() {
			for job := range o.jobs {
				job()
			}
		})
	}
	return o
}

// Submit enqueues a job without blocking. A full queue drops the job; the
// message is already persisted by then, so losing the forward attempt is the
// documented at-most-once behavior, not data loss.
func (o *Outbox) Submit(job func()) bool {
	select {
	case o.jobs <- job:
		return true
	default:
		logger.Warn("[outbox] queue full, drop forward attempt")
		return false
	}
}
