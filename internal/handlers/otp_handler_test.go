package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"

	"cwportal/internal/models"
	"cwportal/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSender struct {
	lastMessage string
	result      models.DispatchResult
}

func (f *fakeSender) Send(_ context.Context, number, message string) models.DispatchResult {
	f.lastMessage = message
	return f.result
}

var codeInMessage = regexp.MustCompile(`\b(\d{6})\b`)

func (f *fakeSender) code(t *testing.T) string {
	t.Helper()
	m := codeInMessage.FindStringSubmatch(f.lastMessage)
	if m == nil {
		t.Fatalf("no six-digit code in message %q", f.lastMessage)
	}
	return m[1]
}

// portal wires the OTP endpoints the way internal/routes does, minus the
// parts irrelevant to the handlers under test.
func portal(sender *fakeSender) (*gin.Engine, *services.SessionService) {
	sessions := services.NewSessionService("test-secret", nil)
	otp := services.NewOTPService(sender, "")
	otpHandler := NewOTPHandler(otp, sessions)
	sessionHandler := NewSessionHandler(sessions)

	r := gin.New()
	r.POST("/otp/start", otpHandler.Start)
	r.POST("/otp/verify", otpHandler.Verify)
	r.POST("/logout", sessionHandler.Logout)
	return r, sessions
}

// jar carries cookies between requests the way a browser would.
type jar struct {
	cookies map[string]*http.Cookie
}

func newJar() *jar { return &jar{cookies: map[string]*http.Cookie{}} }

func (j *jar) update(resp *http.Response) {
	for _, cookie := range resp.Cookies() {
		if cookie.MaxAge < 0 {
			delete(j.cookies, cookie.Name)
			continue
		}
		j.cookies[cookie.Name] = cookie
	}
}

func (j *jar) post(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range j.cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	j.update(w.Result())
	return w
}

func okResult() models.DispatchResult {
	return models.DispatchResult{OK: true, Code: 202, Message: "SMS submitted successfully"}
}

func TestStartSetsChallengeCookie(t *testing.T) {
	sender := &fakeSender{result: okResult()}
	router, _ := portal(sender)
	j := newJar()

	w := j.post(t, router, "/otp/start", gin.H{"phone": "+8801711111111"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	cookie, ok := j.cookies[OtpCookieName]
	if !ok {
		t.Fatal("challenge cookie not set")
	}
	if cookie.MaxAge <= 0 || cookie.MaxAge > 300 {
		t.Errorf("challenge cookie max-age = %d", cookie.MaxAge)
	}
}

func TestStartRejectsInvalidPhone(t *testing.T) {
	sender := &fakeSender{result: okResult()}
	router, _ := portal(sender)
	j := newJar()

	w := j.post(t, router, "/otp/start", gin.H{"phone": "12345"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if _, ok := j.cookies[OtpCookieName]; ok {
		t.Error("challenge cookie set for invalid phone")
	}
}

func TestStartRollsBackOnDispatchFailure(t *testing.T) {
	sender := &fakeSender{result: models.DispatchResult{OK: false, Code: 1007, Message: "Insufficient balance"}}
	router, _ := portal(sender)
	j := newJar()

	w := j.post(t, router, "/otp/start", gin.H{"phone": "8801711111111"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.OK || body.Code != 1007 || body.Error != "Insufficient balance" {
		t.Errorf("body = %+v", body)
	}
	if _, ok := j.cookies[OtpCookieName]; ok {
		t.Error("challenge cookie left behind after failed dispatch")
	}
}

func TestVerifyWithoutChallenge(t *testing.T) {
	sender := &fakeSender{result: okResult()}
	router, _ := portal(sender)
	j := newJar()

	w := j.post(t, router, "/otp/verify", gin.H{"phone": "8801711111111", "otp": "123456"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestVerifyHappyPathConsumesChallenge(t *testing.T) {
	sender := &fakeSender{result: okResult()}
	router, sessions := portal(sender)
	j := newJar()

	if w := j.post(t, router, "/otp/start", gin.H{"phone": "+8801711111111"}); w.Code != http.StatusOK {
		t.Fatalf("start: %d", w.Code)
	}
	code := sender.code(t)

	w := j.post(t, router, "/otp/verify", gin.H{"phone": "8801711111111", "otp": code})
	if w.Code != http.StatusOK {
		t.Fatalf("verify: %d body = %s", w.Code, w.Body.String())
	}
	if _, ok := j.cookies[OtpCookieName]; ok {
		t.Error("challenge cookie not consumed")
	}
	session, ok := j.cookies[services.SessionCookieName]
	if !ok {
		t.Fatal("session cookie not set")
	}
	if number, valid := sessions.Verify(session.Value); !valid || number != "8801711111111" {
		t.Errorf("session cookie does not verify: %q", session.Value)
	}
	if session.MaxAge != int(services.SessionTTL.Seconds()) {
		t.Errorf("session max-age = %d", session.MaxAge)
	}

	// the challenge was consumed, so the same code cannot be replayed
	w = j.post(t, router, "/otp/verify", gin.H{"phone": "8801711111111", "otp": code})
	if w.Code != http.StatusBadRequest {
		t.Errorf("replay status = %d, want 400", w.Code)
	}
}

func TestVerifyPhoneMismatch(t *testing.T) {
	sender := &fakeSender{result: okResult()}
	router, _ := portal(sender)
	j := newJar()

	j.post(t, router, "/otp/start", gin.H{"phone": "8801711111111"})
	w := j.post(t, router, "/otp/verify", gin.H{"phone": "8801722222222", "otp": sender.code(t)})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

// The documented abuse scenario: three wrong codes lock the challenge, a
// fresh start resets the counter.
func TestVerifyAttemptLimitAndReset(t *testing.T) {
	sender := &fakeSender{result: okResult()}
	router, _ := portal(sender)
	j := newJar()

	if w := j.post(t, router, "/otp/start", gin.H{"phone": "+8801711111111"}); w.Code != http.StatusOK {
		t.Fatalf("start: %d", w.Code)
	}
	code := sender.code(t)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	for i, want := range []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests} {
		w := j.post(t, router, "/otp/verify", gin.H{"phone": "8801711111111", "otp": wrong})
		if w.Code != want {
			t.Fatalf("wrong attempt %d: status = %d, want %d", i+1, w.Code, want)
		}
	}

	// even the right code is refused now
	w := j.post(t, router, "/otp/verify", gin.H{"phone": "8801711111111", "otp": code})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("after lockout: status = %d, want 429", w.Code)
	}

	// a fresh request replaces the challenge and resets the counter
	if w := j.post(t, router, "/otp/start", gin.H{"phone": "+8801711111111"}); w.Code != http.StatusOK {
		t.Fatalf("restart: %d", w.Code)
	}
	var challenge models.OtpChallenge
	raw := j.cookies[OtpCookieName].Value
	if unescaped, err := unescapeCookie(raw); err == nil {
		raw = unescaped
	}
	if err := json.Unmarshal([]byte(raw), &challenge); err != nil {
		t.Fatalf("decode fresh challenge: %v", err)
	}
	if challenge.Attempts != 0 {
		t.Errorf("fresh challenge attempts = %d", challenge.Attempts)
	}

	w = j.post(t, router, "/otp/verify", gin.H{"phone": "8801711111111", "otp": sender.code(t)})
	if w.Code != http.StatusOK {
		t.Fatalf("verify after restart: %d body = %s", w.Code, w.Body.String())
	}
}

func TestLogoutClearsSession(t *testing.T) {
	sender := &fakeSender{result: okResult()}
	router, _ := portal(sender)
	j := newJar()

	j.post(t, router, "/otp/start", gin.H{"phone": "8801711111111"})
	j.post(t, router, "/otp/verify", gin.H{"phone": "8801711111111", "otp": sender.code(t)})
	if _, ok := j.cookies[services.SessionCookieName]; !ok {
		t.Fatal("no session to log out of")
	}

	w := j.post(t, router, "/logout", gin.H{})
	if w.Code != http.StatusOK {
		t.Fatalf("logout: %d", w.Code)
	}
	if _, ok := j.cookies[services.SessionCookieName]; ok {
		t.Error("session cookie survived logout")
	}
}

func TestVerifyExpiredChallenge(t *testing.T) {
	sender := &fakeSender{result: okResult()}
	router, _ := portal(sender)
	j := newJar()

	j.post(t, router, "/otp/start", gin.H{"phone": "8801711111111"})
	code := sender.code(t)

	// rewrite the cookie with an expiry in the past; the hash stays intact
	raw := j.cookies[OtpCookieName].Value
	if unescaped, err := unescapeCookie(raw); err == nil {
		raw = unescaped
	}
	var challenge models.OtpChallenge
	if err := json.Unmarshal([]byte(raw), &challenge); err != nil {
		t.Fatalf("decode challenge: %v", err)
	}
	challenge.ExpiresAt = 1
	expired, _ := json.Marshal(challenge)
	j.cookies[OtpCookieName].Value = escapeCookie(string(expired))

	w := j.post(t, router, "/otp/verify", gin.H{"phone": "8801711111111", "otp": code})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "OTP expired" {
		t.Errorf("error = %q, want %q", body.Error, "OTP expired")
	}
}

func TestStartOverwritesEarlierChallenge(t *testing.T) {
	sender := &fakeSender{result: okResult()}
	router, _ := portal(sender)
	j := newJar()

	j.post(t, router, "/otp/start", gin.H{"phone": "8801711111111"})
	first := sender.code(t)
	j.post(t, router, "/otp/start", gin.H{"phone": "8801711111111"})
	second := sender.code(t)

	if first != second {
		// the earlier code must be dead
		w := j.post(t, router, "/otp/verify", gin.H{"phone": "8801711111111", "otp": first})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("stale code status = %d, want 400", w.Code)
		}
	}
	w := j.post(t, router, "/otp/verify", gin.H{"phone": "8801711111111", "otp": second})
	if w.Code != http.StatusOK {
		t.Fatalf("fresh code status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestVerifyMalformedPayload(t *testing.T) {
	sender := &fakeSender{result: okResult()}
	router, _ := portal(sender)

	req := httptest.NewRequest(http.MethodPost, "/otp/verify", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

// gin query-escapes cookie values on write and unescapes on read; tests that
// inspect or rewrite the challenge cookie must do the same.
func escapeCookie(v string) string { return url.QueryEscape(v) }

func unescapeCookie(v string) (string, error) { return url.QueryUnescape(v) }
