package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"cwportal/internal/models"
	"cwportal/internal/phone"
	"cwportal/internal/sms"
)

var (
	ErrInvalidPhone      = errors.New("invalid phone")
	ErrChallengeNotFound = errors.New("otp not requested")
	ErrPhoneMismatch     = errors.New("phone mismatch")
	ErrCodeExpired       = errors.New("otp expired")
	ErrTooManyAttempts   = errors.New("too many attempts")
	ErrCodeInvalid       = errors.New("invalid otp")
)

const (
	defaultOTPTTL     = 5 * time.Minute
	maxVerifyAttempts = 3
	defaultBrand      = "China Wholesale"
)

// OTPService issues and verifies one-time codes. Challenge state lives in a
// client-held cookie, so the service itself is stateless; callers persist the
// challenge the service hands back.
type OTPService struct {
	SMS     sms.Sender
	Brand   string
	CodeTTL time.Duration // if 0, defaultOTPTTL is used
}

func NewOTPService(sender sms.Sender, brand string) *OTPService {
	if brand == "" {
		brand = defaultBrand
	}
	return &OTPService{
		SMS:     sender,
		Brand:   brand,
		CodeTTL: defaultOTPTTL,
	}
}

func (s *OTPService) ttl() time.Duration {
	if s.CodeTTL <= 0 {
		return defaultOTPTTL
	}
	return s.CodeTTL
}

// generateCode draws a uniform six-digit code. The lower bound keeps the
// first digit non-zero so the code survives any integer round trip.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("otp randomness: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func codeHash(number, code string) string {
	sum := sha256.Sum256([]byte(number + ":" + code))
	return hex.EncodeToString(sum[:])
}

// Issue validates the phone, generates a fresh challenge and dispatches the
// code by SMS. The dispatch result is returned alongside the challenge so
// the caller can decide whether to persist it; a failed dispatch means the
// code never reached the phone.
func (s *OTPService) Issue(ctx context.Context, rawPhone string) (models.OtpChallenge, models.DispatchResult, error) {
	number := phone.Normalize(rawPhone)
	if !phone.IsValid(number) {
		return models.OtpChallenge{}, models.DispatchResult{}, ErrInvalidPhone
	}

	code, err := generateCode()
	if err != nil {
		return models.OtpChallenge{}, models.DispatchResult{}, err
	}

	challenge := models.OtpChallenge{
		Number:    number,
		Hash:      codeHash(number, code),
		ExpiresAt: time.Now().Add(s.ttl()).UnixMilli(),
		Attempts:  0,
	}

	text := fmt.Sprintf("Your %s OTP is %s", s.Brand, code)
	result := s.SMS.Send(ctx, number, text)
	if result.OK {
		log.Printf("[otp][issue] dispatched: number=%s expires_at=%d", number, challenge.ExpiresAt)
	} else {
		log.Printf("[otp][issue] dispatch failed: number=%s code=%d msg=%q", number, result.Code, result.Message)
	}
	return challenge, result, nil
}

// Verify runs one verification attempt against the challenge state machine.
// On ErrCodeInvalid and on the ErrTooManyAttempts that a miss triggers, the
// challenge is mutated in place (attempts incremented) and the caller must
// re-persist it with its remaining TTL. On success the caller consumes the
// challenge and mints a session.
func (s *OTPService) Verify(challenge *models.OtpChallenge, rawPhone, code string) error {
	if challenge == nil {
		return ErrChallengeNotFound
	}
	number := phone.Normalize(rawPhone)
	if challenge.Number != number {
		return ErrPhoneMismatch
	}
	if challenge.Expired(time.Now()) {
		return ErrCodeExpired
	}
	if challenge.Attempts >= maxVerifyAttempts {
		return ErrTooManyAttempts
	}

	expected := codeHash(number, code)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(challenge.Hash)) != 1 {
		challenge.Attempts++
		log.Printf("[otp][verify] mismatch: number=%s attempts=%d", number, challenge.Attempts)
		if challenge.Attempts >= maxVerifyAttempts {
			return ErrTooManyAttempts
		}
		return ErrCodeInvalid
	}

	log.Printf("[otp][verify] OK number=%s", number)
	return nil
}
