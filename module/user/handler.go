package user

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"AProject/logger"
	mwsecurity "AProject/middleware/security"
	usermodel "AProject/module/user/model"
	userservice "AProject/module/user/service"
	chat "AProject/service/chat"
	errs "AProject/tools/errs"
)

type credentialsReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandlerLogin authenticates a username/password pair and returns a JWT the
// websocket upgrade later validates.
func HandlerLogin(auth *userservice.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		resp, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
		if err != nil {
			status := http.StatusUnauthorized
			if errs.ErrAccountLocked.Is(err) {
				status = http.StatusLocked
			}
			c.JSON(status, gin.H{"message": errMessage(err)})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandlerRegister creates a new account on this server's domain.
func HandlerRegister(auth *userservice.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		username := strings.TrimSpace(req.Username)
		if username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
			return
		}
		u, err := auth.Register(c.Request.Context(), username, strings.TrimSpace(req.Email), req.Password)
		if err != nil {
			if errs.ErrRecordIsExist.Is(err) {
				c.JSON(http.StatusConflict, gin.H{"message": "username already taken"})
				return
			}
			logger.Errorf("[user] register %s: %v", username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "registration failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Registration successful", "user": u.DTO()})
	}
}

// HandlerMe returns the authenticated caller's public identity.
func HandlerMe(users *userservice.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := mwsecurity.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
			return
		}
		u, err := users.GetByID(c.Request.Context(), uid)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		c.JSON(http.StatusOK, u.DTO())
	}
}

// HandlerOnlineUsers lists the users currently registered on this gateway,
// excluding the caller themself.
func HandlerOnlineUsers(connMgr *chat.ConnManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, _ := mwsecurity.UserID(c)
		sessions := connMgr.Snapshot()
		out := make([]usermodel.UserDTO, 0, len(sessions))
		for _, s := range sessions {
			if s.Active() && s.UserID != uid {
				out = append(out, s.User)
			}
		}
		c.JSON(http.StatusOK, out)
	}
}

// KeyDirectory is the slice of the user directory the key-management
// endpoints need.
type KeyDirectory interface {
	GetByID(ctx context.Context, id int64) (*usermodel.User, error)
	SavePublicPrivateKeys(ctx context.Context, userID int64, publicKey, encryptedPrivateKey string) error
}

type keyUploadReq struct {
	PublicKey           string `json:"publicKey"`
	EncryptedPrivateKey string `json:"encryptedPrivateKey"`
}

type PublicKeyResponse struct {
	UserID    int64  `json:"userId"`
	PublicKey string `json:"publicKey"`
}

type PrivateKeyResponse struct {
	EncryptedPrivateKey string `json:"encryptedPrivateKey"`
}

// HandlerUploadKeys stores the caller's key pair. Only the account owner may
// upload keys for a user id.
func HandlerUploadKeys(keys KeyDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := mwsecurity.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
			return
		}
		target, err := strconv.ParseInt(c.Param("userId"), 10, 64)
		if err != nil || target <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
			return
		}
		if target != uid {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		var req keyUploadReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		if serr := keys.SavePublicPrivateKeys(c.Request.Context(), target, req.PublicKey, req.EncryptedPrivateKey); serr != nil {
			logger.Errorf("[user] save keys for %d: %v", target, serr)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "could not store keys"})
			return
		}
		c.Status(http.StatusOK)
	}
}

// HandlerPublicKey serves another user's public key for client-side
// encryption.
func HandlerPublicKey(keys KeyDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := strconv.ParseInt(c.Param("userId"), 10, 64)
		if err != nil || target <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
			return
		}
		u, gerr := keys.GetByID(c.Request.Context(), target)
		if gerr != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		c.JSON(http.StatusOK, PublicKeyResponse{UserID: u.ID, PublicKey: u.PublicKey})
	}
}

// HandlerPrivateKey returns the caller's own encrypted private key, 404 when
// none was ever uploaded.
func HandlerPrivateKey(keys KeyDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := mwsecurity.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
			return
		}
		u, err := keys.GetByID(c.Request.Context(), uid)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		if u.EncryptedPrivateKey == "" {
			c.Status(http.StatusNotFound)
			return
		}
		c.JSON(http.StatusOK, PrivateKeyResponse{EncryptedPrivateKey: u.EncryptedPrivateKey})
	}
}

func errMessage(err error) string {
	if errs.ErrAccountLocked.Is(err) {
		return "Account is locked. Please try again later."
	}
	return "Invalid username or password"
}
