package federation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"AProject/logger"
	chatmodel "AProject/module/chat/model"
)

const (
	wellKnownPath = "/.well-known/federation"
	messagesPath  = "/federation/messages"

	// The origin header on forwarded envelopes. The receiving side trusts
	// it as-is; see Gateway.
	originHeader = "X-Server-Domain"
)

// Client discovers a remote server's message-intake endpoint and forwards
// envelopes to it. Every failure is caught and converted to false; nothing
// escapes this boundary.
type Client struct {
	domain string // local server domain, sent as the origin header
	scheme string
	http   *http.Client
}

func NewClient(domain string) *Client {
	return &Client{
		domain: domain,
		scheme: "https",
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Discover fetches the well-known document and extracts the "messages"
// endpoint. On any failure (network, parse, missing key) it falls back to
// the conventional endpoint derived from the domain alone.
func (c *Client) Discover(ctx context.Context, serverDomain string) string {
	fallback := c.scheme + "://" + serverDomain + messagesPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.scheme+"://"+serverDomain+wellKnownPath, nil)
	if err != nil {
		return fallback
	}
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warnf("[federation] could not discover server info for %s, using default: %v", serverDomain, err)
		return fallback
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warnf("[federation] discovery for %s returned %d, using default", serverDomain, resp.StatusCode)
		return fallback
	}

	var info ServerInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		logger.Warnf("[federation] bad discovery document from %s, using default: %v", serverDomain, err)
		return fallback
	}
	if ep := info.Endpoints["messages"]; ep != "" {
		return ep
	}
	return fallback
}

// Forward POSTs the envelope to the endpoint. Success is any 2xx status.
func (c *Client) Forward(ctx context.Context, env *Envelope, endpoint string) bool {
	body, err := json.Marshal(env)
	if err != nil {
		logger.Errorf("[federation] marshal envelope: %v", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		logger.Errorf("[federation] build forward request to %s: %v", endpoint, err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(originHeader, c.domain)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Errorf("[federation] forward to %s: %v", endpoint, err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Send resolves the recipient server's intake endpoint and forwards the
// message envelope. This performs network I/O; the router calls it from its
// outbox workers, never from a session's read goroutine.
func (c *Client) Send(ctx context.Context, msg *chatmodel.ChatMessage) bool {
	if msg.ToUserServer == "" {
		logger.Errorf("[federation] message %d has no recipient server", msg.ID)
		return false
	}
	endpoint := c.Discover(ctx, msg.ToUserServer)
	return c.Forward(ctx, envelopeFromMessage(msg, c.domain), endpoint)
}
