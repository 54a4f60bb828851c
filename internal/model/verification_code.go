package model

const (
	CodePurposeEmailVerification = "email_verification"
	CodePurposePasswordReset     = "password_reset"
)

// CodeMaxAttempts is the number of failed verifications after which a
// code is locked for good.
const CodeMaxAttempts = 3

type CodeStatus string

const (
	CodeStatusActive   CodeStatus = "active"
	CodeStatusConsumed CodeStatus = "consumed"
	CodeStatusExpired  CodeStatus = "expired"
	CodeStatusLocked   CodeStatus = "locked"
)

// VerificationCode is one issued OTP. Codes are never deleted; a newer
// code supersedes the previous one by marking it used. Ctime doubles as
// the resend rate-limit anchor.
type VerificationCode struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Purpose   string `json:"purpose"`
	CodeHash  string `json:"-"`
	Used      bool   `json:"used"`
	Attempts  int    `json:"attempts"`
	Ctime     int64  `json:"ctime"`
	ExpiresAt int64  `json:"expires_at"`
}

// Status derives the code's lifecycle state from the stored fields.
// Used with exhausted attempts means the code was locked, not consumed.
func (c *VerificationCode) Status(now int64) CodeStatus {
	if c.Used {
		if c.Attempts >= CodeMaxAttempts {
			return CodeStatusLocked
		}
		return CodeStatusConsumed
	}
	if now >= c.ExpiresAt {
		return CodeStatusExpired
	}
	return CodeStatusActive
}
