package models

import "time"

// OtpChallenge is the JSON payload of the challenge cookie. The server keeps
// no copy; the client carries it between the start and verify calls. Hash is
// hex(sha256(number + ":" + code)), so the raw code never leaves the SMS.
type OtpChallenge struct {
	Number    string `json:"number"`
	Hash      string `json:"hash"`
	ExpiresAt int64  `json:"expires_at"` // unix milliseconds
	Attempts  int    `json:"attempts"`
}

func (c *OtpChallenge) Expired(now time.Time) bool {
	return now.UnixMilli() > c.ExpiresAt
}

// Remaining is the time-to-live left on the challenge. Callers re-persisting
// the cookie after a failed attempt must use this, not the full TTL.
func (c *OtpChallenge) Remaining(now time.Time) time.Duration {
	return time.Duration(c.ExpiresAt-now.UnixMilli()) * time.Millisecond
}
