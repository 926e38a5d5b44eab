package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"AProject/logger"
	usermodel "AProject/module/user/model"
	errs "AProject/tools/errs"
	security "AProject/tools/security"
)

const (
	MaxFailedAttempts   = 3
	LockDuration        = 30 * time.Second
	failedAttemptWindow = 10 * time.Minute
)

// UserAccounts is the slice of the user directory the auth flow needs.
type UserAccounts interface {
	GetByUsername(ctx context.Context, username string) (*usermodel.User, error)
	Create(ctx context.Context, username, email, passwordHash, serverDomain string) (*usermodel.User, error)
}

// LockoutStore tracks failed login attempts per username. The gateway keeps
// these counters in redis so the lock survives a process restart.
type LockoutStore interface {
	IsLocked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string, window time.Duration) (int64, error)
	Lock(ctx context.Context, username string, d time.Duration) error
	Reset(ctx context.Context, username string) error
}

type AuthResponse struct {
	Token   string            `json:"token"`
	Message string            `json:"message"`
	User    usermodel.UserDTO `json:"user"`
}

// AuthService verifies credentials, applies the failed-attempt lockout
// policy, and issues the JWTs the websocket identity gate later validates.
type AuthService struct {
	users   UserAccounts
	lockout LockoutStore
	jwtOpts security.Options
	domain  string
}

func NewAuthService(users UserAccounts, lockout LockoutStore, jwtOpts security.Options, domain string) *AuthService {
	return &AuthService{users: users, lockout: lockout, jwtOpts: jwtOpts, domain: domain}
}

func (a *AuthService) Authenticate(ctx context.Context, username, password string) (*AuthResponse, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		logger.Warnf("[auth] login attempt for non-existent user: %s", username)
		return nil, errs.ErrBadCredentials
	}

	if locked, lerr := a.lockout.IsLocked(ctx, username); lerr != nil {
		logger.Errorf("[auth] lockout check failed for %s: %v", username, lerr)
	} else if locked {
		logger.Warnf("[auth] login attempt for locked account: %s", username)
		return nil, errs.ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		attempts, lerr := a.lockout.RecordFailure(ctx, username, failedAttemptWindow)
		if lerr != nil {
			logger.Errorf("[auth] record failure for %s: %v", username, lerr)
		}
		logger.Warnf("[auth] failed login attempt for user %s (attempt %d/%d)",
			username, attempts, MaxFailedAttempts)
		if attempts >= MaxFailedAttempts {
			if lerr := a.lockout.Lock(ctx, username, LockDuration); lerr != nil {
				logger.Errorf("[auth] lock account %s: %v", username, lerr)
			} else {
				logger.Warnf("[auth] account locked for user %s for %s", username, LockDuration)
			}
		}
		return nil, errs.ErrBadCredentials
	}

	if err := a.lockout.Reset(ctx, username); err != nil {
		logger.Errorf("[auth] reset lockout for %s: %v", username, err)
	}

	token, _, err := security.Generate(a.jwtOpts, user.Username, user.ID)
	if err != nil {
		return nil, errs.WrapMsg(err, "generate token", "username", username)
	}

	logger.Infof("[auth] user %s logged in successfully", username)
	return &AuthResponse{Token: token, Message: "Login successful", User: user.DTO()}, nil
}

func (a *AuthService) Register(ctx context.Context, username, email, password string) (*usermodel.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.WrapMsg(err, "hash password")
	}
	return a.users.Create(ctx, username, email, string(hash), a.domain)
}
