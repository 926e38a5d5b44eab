package chat

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"AProject/logger"
	usermodel "AProject/module/user/model"
)

const (
	// Session lifecycle. The connecting phase lives in HandleWS before the
	// session value exists; a Session is born authenticated.
	stateAuthenticated int32 = 1
	stateClosed        int32 = 2

	sendQueueSize = 256

	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
)

// Session is the immutable per-connection context constructed at the moment
// authentication succeeds. All outbound traffic goes through the Send queue
// and is written by a single writer goroutine; Push is safe to call from any
// other session's goroutine.
type Session struct {
	ConnID string
	UserID int64
	User   usermodel.UserDTO
	Conn   *websocket.Conn
	Send   chan []byte

	state int32
	done  chan struct{}
}

func NewSession(connID string, user usermodel.UserDTO, ws *websocket.Conn) *Session {
	return &Session{
		ConnID: connID,
		UserID: user.ID,
		User:   user,
		Conn:   ws,
		Send:   make(chan []byte, sendQueueSize),
		state:  stateAuthenticated,
		done:   make(chan struct{}),
	}
}

func (s *Session) Active() bool {
	return atomic.LoadInt32(&s.state) == stateAuthenticated
}

// Push enqueues a payload for the writer goroutine. It never blocks: a
// closed session or a full queue drops the frame and returns false.
func (s *Session) Push(payload []byte) bool {
	if !s.Active() {
		return false
	}
	select {
	case s.Send <- payload:
		return true
	default:
		logger.Warnf("[WS] send queue full, drop frame connID=%s user=%d", s.ConnID, s.UserID)
		return false
	}
}

// Close transitions the session to its terminal state. Idempotent; any
// in-flight Push after this fails silently instead of crashing the caller.
func (s *Session) Close() {
	if atomic.CompareAndSwapInt32(&s.state, stateAuthenticated, stateClosed) {
		close(s.done)
	}
}

// writePump drains the send queue and keeps the connection alive with
// protocol pings. It owns all writes on the transport.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = s.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = s.Conn.Close()
	}()

	for {
		select {
		case <-s.done:
			return
		case payload := <-s.Send:
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Infof("[WS] write err connID=%s user=%d err=%v", s.ConnID, s.UserID, err)
				s.Close()
				return
			}
		case <-ticker.C:
			if err := s.Conn.WriteControl(websocket.PingMessage, []byte("ping"),
				time.Now().Add(writeWait)); err != nil {
				logger.Infof("[WS] ping err connID=%s user=%d err=%v", s.ConnID, s.UserID, err)
				s.Close()
				return
			}
		}
	}
}
