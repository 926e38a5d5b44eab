package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	mwsecurity "AProject/middleware/security"
	chatmodel "AProject/module/chat/model"
)

type fakeHistory struct {
	byPair map[[2]int64][]chatmodel.ChatMessage
	unread map[int64][]chatmodel.ChatMessage
}

func (f *fakeHistory) HistoryBetween(_ context.Context, userID, otherID int64) ([]chatmodel.ChatMessage, error) {
	return f.byPair[[2]int64{userID, otherID}], nil
}

func (f *fakeHistory) UnreadFor(_ context.Context, userID int64) ([]chatmodel.ChatMessage, error) {
	return f.unread[userID], nil
}

func identityAs(uid int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(mwsecurity.CtxUserIDKey, uid)
	}
}

func newHistoryEngine(uid int64, store *fakeHistory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/chat_messages/get_chat_history", identityAs(uid), HandlerChatHistory(store))
	r.GET("/chat_messages/unread", identityAs(uid), HandlerUnreadMessages(store))
	return r
}

func TestChatHistoryUsesCallerIdentity(t *testing.T) {
	msg := chatmodel.ChatMessage{ID: 10, FromUserID: 1, ToUserID: 2, Message: "hi", CreatedAt: time.Now()}
	store := &fakeHistory{byPair: map[[2]int64][]chatmodel.ChatMessage{
		{1, 2}: {msg},
	}}
	r := newHistoryEngine(1, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat_messages/get_chat_history?toUserId=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var out []chatmodel.ChatMessage
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].ID != 10 {
		t.Fatalf("history: %+v", out)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat_messages/get_chat_history", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing toUserId: status=%d, want 400", w.Code)
	}
}

func TestUnreadMessagesForCaller(t *testing.T) {
	store := &fakeHistory{unread: map[int64][]chatmodel.ChatMessage{
		1: {
			{ID: 11, FromUserID: 2, ToUserID: 1, Message: "missed me?"},
			{ID: 12, FromUserID: 3, ToUserID: 1, Message: "ping"},
		},
	}}
	r := newHistoryEngine(1, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat_messages/unread", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var out []chatmodel.ChatMessage
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("unread: %+v", out)
	}
	for _, m := range out {
		if m.ToUserID != 1 {
			t.Fatalf("unread for someone else: %+v", m)
		}
	}
}
