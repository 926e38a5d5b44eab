package chat

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"AProject/logger"
	usermodel "AProject/module/user/model"
	storage "AProject/service/storage"
	errs "AProject/tools/errs"
	ids "AProject/tools/ids"
	safe "AProject/tools/safe"
	security "AProject/tools/security"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWS is the connection entry point. The bearer token travels as the
// `token` query parameter because the websocket handshake carries no custom
// header channel; a missing or invalid token closes the connection before
// the protocol upgrade, with no registry mutation.
func (s *Server) HandleWS(c *gin.Context) {
	user, err := s.authenticateUpgrade(c)
	if err != nil {
		logger.Warnf("[WS] rejected connection from %s: %v", c.ClientIP(), err)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[WS] upgrade websocket error: %v", err)
		return
	}

	sess := NewSession(ids.GenerateString(), user, ws)
	logger.Infof("[WS] authenticated user: %s (%s) connID=%s", user.Username, user.FederatedID(), sess.ConnID)

	// Last connect wins: the superseded session is actively closed.
	if prev := s.connMgr.Register(user.ID, sess); prev != nil {
		logger.Infof("[WS] superseding session connID=%s for user %d", prev.ConnID, user.ID)
		prev.Close()
	}

	{
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if perr := storage.PresenceOnline(ctx, user.ID, s.gwID, s.presenceTTL); perr != nil {
			logger.Errorf("[WS] presence online user=%d: %v", user.ID, perr)
		}
		cancel()
	}
	s.presence.BroadcastLogin(user)

	safe.SafeGo(sess.writePump)
	s.readLoop(c.Request.Context(), sess)

	// Teardown. The compare-and-swap unregister keeps a superseded
	// session's late exit from tearing down its replacement.
	if s.connMgr.Unregister(user.ID, sess) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if perr := storage.PresenceOffline(ctx, user.ID); perr != nil {
			logger.Errorf("[WS] presence offline user=%d: %v", user.ID, perr)
		}
		cancel()
		s.presence.BroadcastLogout(user)
	}
	sess.Close()
	logger.Infof("[WS] user %d disconnected connID=%s", user.ID, sess.ConnID)
}

// authenticateUpgrade is the identity gate: one shot, no retries.
func (s *Server) authenticateUpgrade(c *gin.Context) (usermodel.UserDTO, error) {
	token := c.Query("token")
	if token == "" {
		return usermodel.UserDTO{}, errs.ErrTokenMissing
	}
	claims, err := security.Verify(s.jwtOpts, token)
	if err != nil {
		return usermodel.UserDTO{}, err
	}
	user, err := s.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return usermodel.UserDTO{}, errs.WrapMsg(err, "resolve identity", "userId", claims.UserID)
	}
	return user.DTO(), nil
}

// readLoop drives the authenticated half of the session state machine:
// frames in, dispatch, until the peer closes or the transport errors. Every
// per-message failure is contained to that message.
func (s *Server) readLoop(ctx context.Context, sess *Session) {
	ws := sess.Conn
	ws.SetReadLimit(1 << 20) // 1MB
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	ws.SetPingHandler(func(appData string) error {
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		return ws.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
	})

	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[WS] peer closed connID=%s err=%v", sess.ConnID, rerr)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[WS] read timeout connID=%s err=%v", sess.ConnID, rerr)
			} else {
				logger.Infof("[WS] read err connID=%s err=%v", sess.ConnID, rerr)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		frame, perr := ParseInboundFrame(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[WS] drop frame connID=%s err=%v sample=%q", sess.ConnID, perr, sample)
			continue
		}

		handler := s.disp.GetHandler(frame.Type)
		if handler == nil {
			continue
		}
		if herr := handler.Handle(&ChatContext{S: s, Ctx: ctx}, frame, sess); herr != nil {
			logger.Infof("[WS] handler %s err connID=%s: %v", frame.Type, sess.ConnID, herr)
		}
	}
}
