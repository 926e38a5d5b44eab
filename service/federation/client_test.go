package federation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chatmodel "AProject/module/chat/model"
)

func newTestClient(domain string) *Client {
	c := NewClient(domain)
	c.scheme = "http"
	return c
}

func TestDiscoverUsesWellKnownDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/federation" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(ServerInfo{
			ServerDomain: "chat.remote",
			Version:      "1.0",
			Endpoints:    map[string]string{"messages": "http://custom.host/inbox"},
		})
	}))
	defer srv.Close()

	remote := strings.TrimPrefix(srv.URL, "http://")
	got := newTestClient("chat.local").Discover(context.Background(), remote)
	if got != "http://custom.host/inbox" {
		t.Fatalf("discover=%q", got)
	}
}

func TestDiscoverFallsBack(t *testing.T) {
	// Unreachable server: conventional endpoint derived from the domain.
	c := newTestClient("chat.local")
	got := c.Discover(context.Background(), "127.0.0.1:1")
	if got != "http://127.0.0.1:1/federation/messages" {
		t.Fatalf("fallback=%q", got)
	}

	// Reachable server with a broken document: same fallback.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()
	remote := strings.TrimPrefix(srv.URL, "http://")
	if got := c.Discover(context.Background(), remote); got != "http://"+remote+"/federation/messages" {
		t.Fatalf("fallback with bad document=%q", got)
	}
}

func TestForwardSetsOriginHeader(t *testing.T) {
	var gotOrigin, gotContentType string
	var gotEnv Envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrigin = r.Header.Get("X-Server-Domain")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotEnv)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient("chat.local")
	env := &Envelope{FromUserID: 1, FromServer: "chat.local", ToUserID: 9, Message: "hi"}
	if !c.Forward(context.Background(), env, srv.URL) {
		t.Fatal("forward reported failure on 200")
	}
	if gotOrigin != "chat.local" {
		t.Fatalf("origin header=%q", gotOrigin)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content type=%q", gotContentType)
	}
	if gotEnv.FromUserID != 1 || gotEnv.ToUserID != 9 || gotEnv.Message != "hi" {
		t.Fatalf("received envelope: %+v", gotEnv)
	}
}

func TestForwardFailureModes(t *testing.T) {
	c := newTestClient("chat.local")
	env := &Envelope{FromUserID: 1, ToUserID: 9, Message: "hi"}

	if c.Forward(context.Background(), env, "http://127.0.0.1:1/federation/messages") {
		t.Fatal("forward to unreachable endpoint reported success")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	if c.Forward(context.Background(), env, srv.URL) {
		t.Fatal("forward reported success on 500")
	}
}

func TestSendDiscoversAndForwards(t *testing.T) {
	received := make(chan Envelope, 1)
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/.well-known/federation", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ServerInfo{
			ServerDomain: "chat.remote",
			Version:      "1.0",
			Endpoints:    map[string]string{"messages": srv.URL + "/federation/messages"},
		})
	})
	mux.HandleFunc("/federation/messages", func(w http.ResponseWriter, r *http.Request) {
		var env Envelope
		_ = json.NewDecoder(r.Body).Decode(&env)
		received <- env
		w.WriteHeader(http.StatusOK)
	})

	remote := strings.TrimPrefix(srv.URL, "http://")
	msg := chatmodel.NewChatMessage(1, "chat.local", 9, remote, "federated hello")

	c := newTestClient("chat.local")
	if !c.Send(context.Background(), msg) {
		t.Fatal("send failed")
	}
	env := <-received
	if env.FromUserID != 1 || env.FromServer != "chat.local" || env.ToUserID != 9 || env.Message != "federated hello" {
		t.Fatalf("envelope: %+v", env)
	}
	if env.Timestamp == 0 {
		t.Fatal("envelope timestamp not set")
	}
}

func TestSendRequiresRecipientServer(t *testing.T) {
	msg := chatmodel.NewChatMessage(1, "", 9, "", "local only")
	if newTestClient("chat.local").Send(context.Background(), msg) {
		t.Fatal("send succeeded without a recipient server")
	}
}
