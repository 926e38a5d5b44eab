package federation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	chatmodel "AProject/module/chat/model"
)

type captureDeliverer struct {
	msgs []*chatmodel.ChatMessage
}

func (d *captureDeliverer) DeliverLocal(_ context.Context, msg *chatmodel.ChatMessage) error {
	d.msgs = append(d.msgs, msg)
	return nil
}

func newTestGateway(deliver LocalDeliverer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := NewGateway("chat.local", "https://chat.local", deliver)
	r := gin.New()
	r.POST("/federation/messages", g.HandleInbound)
	r.GET("/.well-known/federation", g.HandleWellKnown)
	return r
}

func TestHandleInboundDeliversLocally(t *testing.T) {
	deliver := &captureDeliverer{}
	r := newTestGateway(deliver)

	body := `{"fromUserId":5,"fromServer":"chat.remote","toUserId":9,"message":"hi","timestamp":1712000000000}`
	req := httptest.NewRequest(http.MethodPost, "/federation/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Server-Domain", "chat.remote")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if len(deliver.msgs) != 1 {
		t.Fatalf("delivered=%d, want 1", len(deliver.msgs))
	}
	msg := deliver.msgs[0]
	if msg.FromUserID != 5 || msg.ToUserID != 9 || msg.Message != "hi" {
		t.Fatalf("message: %+v", msg)
	}
	if msg.FromUserServer != "chat.remote" {
		t.Fatalf("origin=%q, want chat.remote", msg.FromUserServer)
	}
	if msg.ToUserServer != "chat.local" {
		t.Fatalf("local side=%q, want chat.local", msg.ToUserServer)
	}
	if !msg.IsFederated() {
		t.Fatal("inbound message not marked federated")
	}
}

func TestHandleInboundOriginFallsBackToEnvelope(t *testing.T) {
	deliver := &captureDeliverer{}
	r := newTestGateway(deliver)

	body := `{"fromUserId":5,"fromServer":"chat.remote","toUserId":9,"message":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/federation/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if len(deliver.msgs) != 1 || deliver.msgs[0].FromUserServer != "chat.remote" {
		t.Fatalf("delivered: %+v", deliver.msgs)
	}
}

func TestHandleInboundEnforcesBodyBounds(t *testing.T) {
	deliver := &captureDeliverer{}
	r := newTestGateway(deliver)

	send := func(message string) int {
		env := map[string]any{"fromUserId": 5, "fromServer": "chat.remote", "toUserId": 9, "message": message}
		body, _ := json.Marshal(env)
		req := httptest.NewRequest(http.MethodPost, "/federation/messages", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := send(""); code != http.StatusBadRequest {
		t.Fatalf("empty body: status=%d, want 400", code)
	}
	if code := send(strings.Repeat("a", 5001)); code != http.StatusBadRequest {
		t.Fatalf("oversize body: status=%d, want 400", code)
	}
	if len(deliver.msgs) != 0 {
		t.Fatalf("out-of-range envelopes delivered: %d", len(deliver.msgs))
	}

	// 3000 characters of multibyte text are in range despite 9000 bytes.
	if code := send(strings.Repeat("语", 3000)); code != http.StatusOK {
		t.Fatalf("3000-char body: status=%d, want 200", code)
	}
	if len(deliver.msgs) != 1 {
		t.Fatalf("delivered=%d, want 1", len(deliver.msgs))
	}
}

func TestHandleInboundRejectsMalformedBody(t *testing.T) {
	deliver := &captureDeliverer{}
	r := newTestGateway(deliver)

	req := httptest.NewRequest(http.MethodPost, "/federation/messages", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
	if len(deliver.msgs) != 0 {
		t.Fatal("malformed envelope was delivered")
	}
}

func TestHandleWellKnown(t *testing.T) {
	r := newTestGateway(&captureDeliverer{})

	req := httptest.NewRequest(http.MethodGet, "/.well-known/federation", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var info ServerInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.ServerDomain != "chat.local" {
		t.Fatalf("domain=%q", info.ServerDomain)
	}
	if info.Endpoints["messages"] != "https://chat.local/federation/messages" {
		t.Fatalf("messages endpoint=%q", info.Endpoints["messages"])
	}
}
