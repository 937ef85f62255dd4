package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strconv"
	"strings"
	"time"
)

const (
	SessionCookieName = "session"
	SessionTTL        = 7 * 24 * time.Hour

	// Insecure fallback for development only. Running on it is warned about
	// loudly and alerted to operators, but does not stop the process.
	devFallbackSecret = "dev-secret"
)

// SessionService mints and verifies stateless session tokens of the form
// phone.issuedAt.signature, signed with HMAC-SHA256 over "phone:issuedAt".
// Validity depends on nothing but the token and the process secret; there is
// no revocation list, the cookie max-age is the only TTL.
type SessionService struct {
	secret []byte
}

func NewSessionService(secret string, alerts *TelegramAlerter) *SessionService {
	if secret == "" {
		log.Printf("[session][config] SESSION_SECRET not set, falling back to an INSECURE development secret")
		alerts.Alert("session signing secret is not configured; portal is running on the insecure development fallback")
		secret = devFallbackSecret
	}
	return &SessionService{secret: []byte(secret)}
}

func (s *SessionService) sign(number, issuedAt string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(number + ":" + issuedAt))
	return hex.EncodeToString(mac.Sum(nil))
}

// Issue mints a session token for a phone number that already passed OTP
// verification.
func (s *SessionService) Issue(number string) string {
	issuedAt := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return number + "." + issuedAt + "." + s.sign(number, issuedAt)
}

// Verify recomputes the signature over the token's first two fields and
// fails closed on anything that is not exactly three dot-joined fields.
func (s *SessionService) Verify(token string) (number string, ok bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", false
	}
	expected := s.sign(parts[0], parts[1])
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return "", false
	}
	return parts[0], true
}
