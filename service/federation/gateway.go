package federation

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"AProject/logger"
	chatmodel "AProject/module/chat/model"
)

// LocalDeliverer is the local half of the routing pipeline: once an
// envelope has crossed the federation boundary inbound, it is always a
// local delivery.
type LocalDeliverer interface {
	DeliverLocal(ctx context.Context, msg *chatmodel.ChatMessage) error
}

// Gateway receives envelopes pushed by other servers and serves the
// discovery document.
//
// The origin header is not cryptographically verified: the sender claims a
// domain and this side records it. Known gap in the federation protocol;
// adding verification changes observable behavior and is deliberately not
// done here.
type Gateway struct {
	domain         string
	publicEndpoint string
	deliver        LocalDeliverer
}

func NewGateway(domain, publicEndpoint string, deliver LocalDeliverer) *Gateway {
	return &Gateway{domain: domain, publicEndpoint: publicEndpoint, deliver: deliver}
}

// HandleInbound accepts a pushed envelope and feeds it into local delivery.
// Acceptance is fire-and-forget: the response is 200 regardless of delivery
// outcome, mirroring the sending side's at-most-once-effort semantics.
func (g *Gateway) HandleInbound(c *gin.Context) {
	var env Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		logger.Warnf("[federation] drop malformed inbound envelope from %s: %v", c.ClientIP(), err)
		c.Status(http.StatusBadRequest)
		return
	}

	if !chatmodel.BodyInRange(env.Message) {
		logger.Warnf("[federation] drop inbound envelope from %s: body out of 1..5000 chars", c.ClientIP())
		c.Status(http.StatusBadRequest)
		return
	}

	origin := c.GetHeader(originHeader)
	if origin == "" {
		origin = env.FromServer
	}

	msg := chatmodel.NewChatMessage(env.FromUserID, origin, env.ToUserID, g.domain, env.Message)
	logger.Infof("[federation] received message %s from %s", msg.FederatedMessageID, msg.FromFederatedID())
	if err := g.deliver.DeliverLocal(c.Request.Context(), msg); err != nil {
		logger.Errorf("[federation] local delivery of %s: %v", msg.FederatedMessageID, err)
	}

	c.Status(http.StatusOK)
}

// HandleWellKnown serves the discovery document other servers fetch before
// forwarding.
func (g *Gateway) HandleWellKnown(c *gin.Context) {
	c.JSON(http.StatusOK, ServerInfo{
		ServerDomain: g.domain,
		Version:      "1.0",
		Endpoints: map[string]string{
			"messages": g.publicEndpoint + messagesPath,
		},
	})
}
