package services

import (
	"strings"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	svc := NewSessionService("test-secret", nil)

	token := svc.Issue("8801711111111")
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token %q does not have three fields", token)
	}
	if parts[0] != "8801711111111" {
		t.Errorf("subject field = %q", parts[0])
	}

	number, ok := svc.Verify(token)
	if !ok {
		t.Fatal("freshly issued token did not verify")
	}
	if number != "8801711111111" {
		t.Errorf("verified number = %q", number)
	}
}

func TestSignatureIsDeterministic(t *testing.T) {
	svc := NewSessionService("test-secret", nil)
	a := svc.sign("8801711111111", "1700000000000")
	b := svc.sign("8801711111111", "1700000000000")
	if a != b {
		t.Errorf("same inputs produced different signatures: %q vs %q", a, b)
	}
	if c := svc.sign("8801711111112", "1700000000000"); c == a {
		t.Error("different phone produced the same signature")
	}
	if d := svc.sign("8801711111111", "1700000000001"); d == a {
		t.Error("different issuedAt produced the same signature")
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	svc := NewSessionService("test-secret", nil)
	token := svc.Issue("8801711111111")
	parts := strings.Split(token, ".")

	flip := func(s string) string {
		b := []byte(s)
		if b[0] == 'x' {
			b[0] = 'y'
		} else {
			b[0] = 'x'
		}
		return string(b)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"tampered phone", flip(parts[0]) + "." + parts[1] + "." + parts[2]},
		{"tampered issuedAt", parts[0] + "." + flip(parts[1]) + "." + parts[2]},
		{"tampered signature", parts[0] + "." + parts[1] + "." + flip(parts[2])},
		{"two fields", parts[0] + "." + parts[1]},
		{"four fields", token + ".extra"},
		{"empty", ""},
		{"garbage", "not-a-token"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if number, ok := svc.Verify(test.token); ok {
				t.Errorf("tampered token verified as %q", number)
			}
		})
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token := NewSessionService("secret-a", nil).Issue("8801711111111")
	if _, ok := NewSessionService("secret-b", nil).Verify(token); ok {
		t.Error("token signed with a different secret verified")
	}
}

func TestEmptySecretFallsBackWithoutCrashing(t *testing.T) {
	svc := NewSessionService("", nil)
	token := svc.Issue("8801711111111")
	if _, ok := svc.Verify(token); !ok {
		t.Error("fallback-secret service cannot verify its own token")
	}
}
