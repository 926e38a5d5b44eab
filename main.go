package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"AProject/global"
	mid "AProject/middleware"
	chathttp "AProject/module/chat"
	"AProject/module/chat/message"
	"AProject/module/user"
	userservice "AProject/module/user/service"
	"AProject/service/chat"
	"AProject/service/chat/handlers"
	"AProject/service/federation"
	"AProject/service/storage"
)

func main() {
	cfg := global.LoadConfig()

	global.ConfigIds()
	global.ConfigMiddleware(cfg)
	if err := global.ConfigRedis(cfg); err != nil {
		log.Fatalf("redis init failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := global.ConfigMongo(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("mongo init failed: %v", err)
	}

	// Stores and services.
	msgStore := message.NewStore(db)
	users := userservice.NewUserService(db)
	auth := userservice.NewAuthService(users, storage.NewLockoutStore(), cfg.JWTOptions(), cfg.ServerDomain)

	// Gateway core.
	connMgr := chat.NewConnManager(cfg.GatewayID)
	fedClient := federation.NewClient(cfg.ServerDomain)
	srv := chat.NewServer(cfg.GatewayID, cfg.ServerDomain, cfg.JWTOptions(),
		users, connMgr, msgStore, fedClient, cfg.PresenceTTL)

	srv.Disp().Register(handlers.NewSendMessageHandler())
	srv.Disp().Register(handlers.NewChannelMessageHandler())

	fedGateway := federation.NewGateway(cfg.ServerDomain, cfg.PublicEndpoint, srv.Router())

	// HTTP + WebSocket.
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", srv.HandleWS) // e.g. ws://localhost:8080/ws?token=<jwt>

	mid.POST(r, "/auth/login", user.HandlerLogin(auth), mid.RouteOpt{IsAuth: false})
	mid.POST(r, "/auth/register", user.HandlerRegister(auth), mid.RouteOpt{IsAuth: false})
	mid.GET(r, "/users/me", user.HandlerMe(users), mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/users/get_all_users", user.HandlerOnlineUsers(connMgr), mid.RouteOpt{IsAuth: true})
	mid.POST(r, "/users/:userId/keys", user.HandlerUploadKeys(users), mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/users/:userId/public-key", user.HandlerPublicKey(users), mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/users/me/private-key", user.HandlerPrivateKey(users), mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/chat_messages/get_chat_history", chathttp.HandlerChatHistory(msgStore), mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/chat_messages/unread", chathttp.HandlerUnreadMessages(msgStore), mid.RouteOpt{IsAuth: true})

	// Server-to-server surface.
	r.POST("/federation/messages", fedGateway.HandleInbound)
	r.GET("/.well-known/federation", fedGateway.HandleWellKnown)

	log.Printf("[HTTP] %s listening on %s (domain=%s)", cfg.GatewayID, cfg.ListenAddr, cfg.ServerDomain)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}
