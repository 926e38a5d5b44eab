package chat

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"AProject/logger"
	mwsecurity "AProject/middleware/security"
	chatmodel "AProject/module/chat/model"
)

// HistoryStore is the read side of the message store the history endpoints
// query.
type HistoryStore interface {
	HistoryBetween(ctx context.Context, userID, otherID int64) ([]chatmodel.ChatMessage, error)
	UnreadFor(ctx context.Context, userID int64) ([]chatmodel.ChatMessage, error)
}

// HandlerChatHistory returns both directions of the conversation between the
// authenticated caller and the peer named by toUserId, oldest first.
func HandlerChatHistory(store HistoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := mwsecurity.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}
		// An explicit userId param keeps the legacy call shape working; it
		// still only selects which side of the pair the caller is.
		if v := c.Query("userId"); v != "" {
			if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
				uid = parsed
			}
		}
		peer, err := strconv.ParseInt(c.Query("toUserId"), 10, 64)
		if err != nil || peer <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "toUserId is required"})
			return
		}
		history, herr := store.HistoryBetween(c.Request.Context(), uid, peer)
		if herr != nil {
			logger.Errorf("[chat] history query for %d<->%d: %v", uid, peer, herr)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "history query failed"})
			return
		}
		c.JSON(http.StatusOK, history)
	}
}

// HandlerUnreadMessages returns the messages addressed to the caller that
// have not been read yet. Messages persisted while the recipient was offline
// surface here; the gateway never redelivers them over the socket.
func HandlerUnreadMessages(store HistoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := mwsecurity.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}
		unread, err := store.UnreadFor(c.Request.Context(), uid)
		if err != nil {
			logger.Errorf("[chat] unread query for %d: %v", uid, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "unread query failed"})
			return
		}
		c.JSON(http.StatusOK, unread)
	}
}
