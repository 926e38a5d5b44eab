package errs

// Error codes grouped the same way the HTTP layer reports them:
// 1xxx auth, 2xxx records, 3xxx routing/protocol.
var (
	ErrTokenMissing     = NewCodeError(1001, "token missing")
	ErrTokenInvalid     = NewCodeError(1002, "token invalid")
	ErrTokenExpired     = NewCodeError(1003, "token expired")
	ErrAccountLocked    = NewCodeError(1004, "account locked")
	ErrBadCredentials   = NewCodeError(1005, "bad credentials")
	ErrRecordNotFound   = NewCodeError(2001, "record not found")
	ErrRecordIsExist    = NewCodeError(2002, "record already exists")
	ErrBadRecipient     = NewCodeError(3001, "bad recipient identifier")
	ErrMessageTooLong   = NewCodeError(3002, "message length out of range")
	ErrFrameUnsupported = NewCodeError(3003, "unsupported frame type")
)
