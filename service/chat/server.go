package chat

import (
	"context"
	"time"

	usermodel "AProject/module/user/model"
	security "AProject/tools/security"
)

// UserDirectory resolves a validated token's numeric id to a full identity.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*usermodel.User, error)
}

// Server owns the websocket side of the gateway: the identity gate, the
// connection registry, the frame dispatcher, the router, and the presence
// broadcaster.
type Server struct {
	gwID   string
	domain string

	jwtOpts     security.Options
	users       UserDirectory
	connMgr     *ConnManager
	disp        *Dispatcher
	router      *Router
	presence    *Broadcaster
	presenceTTL time.Duration
}

func NewServer(gwID, domain string, jwtOpts security.Options, users UserDirectory,
	connMgr *ConnManager, store MessageStore, fed Forwarder, presenceTTL time.Duration) *Server {

	fanout := NewFanout(4, 1024)
	outbox := NewOutbox(4, 1024)

	if presenceTTL <= 0 {
		presenceTTL = 2 * time.Minute
	}
	s := &Server{
		gwID:        gwID,
		domain:      domain,
		jwtOpts:     jwtOpts,
		users:       users,
		connMgr:     connMgr,
		disp:        NewDispatcher(),
		presence:    NewBroadcaster(connMgr, fanout),
		presenceTTL: presenceTTL,
	}
	s.router = NewRouter(domain, connMgr, store, fed, outbox)
	return s
}

func (s *Server) GwID() string           { return s.gwID }
func (s *Server) Domain() string         { return s.domain }
func (s *Server) ConnMgr() *ConnManager  { return s.connMgr }
func (s *Server) Disp() *Dispatcher      { return s.disp }
func (s *Server) Router() *Router        { return s.router }
func (s *Server) Presence() *Broadcaster { return s.presence }
