package sms

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cwportal/internal/models"
	"cwportal/internal/phone"
)

const (
	// CodeSubmitted is the provider's only success code.
	CodeSubmitted = 202
	// CodeUnknown is reported when no code could be extracted or the
	// provider was unreachable.
	CodeUnknown = -1

	DefaultBaseURL = "http://bulksmsbd.net/api"

	defaultTimeout = 10 * time.Second
)

// Sender delivers a text message to a phone number. Handlers and services
// depend on this instead of the concrete client so tests can substitute a
// double.
type Sender interface {
	Send(ctx context.Context, number, message string) models.DispatchResult
}

var codeMessages = map[int]string{
	202:  "SMS submitted successfully",
	1001: "Invalid number",
	1002: "Sender ID incorrect or disabled",
	1003: "Required field missing",
	1005: "Internal error",
	1006: "Balance validity not available",
	1007: "Insufficient balance",
	1011: "User ID not found",
	1012: "Masking SMS must be sent in Bengali",
	1013: "Sender ID gateway not found by API key",
	1014: "Sender type name not found",
	1015: "No valid gateway found for this Sender ID",
	1016: "Active price info not found (sender)",
	1017: "Price info not found (sender)",
	1018: "Account disabled",
	1019: "Price of this account is disabled",
	1020: "Parent account not found",
	1021: "Parent active price not found",
	1031: "Account not verified",
	1032: "IP not whitelisted",
}

// MapCode translates a provider response code into a human-readable message.
func MapCode(code int) string {
	if msg, ok := codeMessages[code]; ok {
		return msg
	}
	return "Unknown response"
}

// Client talks to a bulksmsbd-style HTTP SMS gateway. The provider takes a
// single GET with credentials and message as query parameters and answers
// with an unstructured body.
type Client struct {
	BaseURL  string
	APIKey   string
	SenderID string
	HTTP     *http.Client
}

func NewClient(baseURL, apiKey, senderID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		SenderID: senderID,
		HTTP:     &http.Client{Timeout: defaultTimeout},
	}
}

var (
	numericCode = regexp.MustCompile(`\b(\d{3,4})\b`)
	successText = regexp.MustCompile(`(?i)submitted|success`)
)

// Send issues one GET to the provider and interprets the response. Transport
// errors and configuration gaps come back as failed results, never as faults.
func (c *Client) Send(ctx context.Context, number, message string) models.DispatchResult {
	if c.APIKey == "" {
		log.Printf("[sms][send] API key not configured, refusing to call provider")
		return models.DispatchResult{OK: false, Code: CodeUnknown, Message: "SMS API key not configured on server"}
	}

	number = phone.Normalize(number)
	if !phone.IsValid(number) {
		return models.DispatchResult{OK: false, Code: CodeUnknown, Message: "Invalid Bangladeshi phone number"}
	}

	query := url.Values{
		"api_key":  {c.APIKey},
		"type":     {"text"},
		"number":   {number},
		"senderid": {c.SenderID},
		"message":  {message},
	}
	endpoint := c.BaseURL + "/smsapi?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.DispatchResult{OK: false, Code: CodeUnknown, Message: fmt.Sprintf("build provider request: %v", err)}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Printf("[sms][send] provider unreachable: %v", err)
		return models.DispatchResult{OK: false, Code: CodeUnknown, Message: fmt.Sprintf("failed to contact SMS provider: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.DispatchResult{OK: false, Code: CodeUnknown, Message: fmt.Sprintf("read provider response: %v", err)}
	}

	result := interpret(strings.TrimSpace(string(raw)))
	log.Printf("[sms][send] number=%s ok=%v code=%d msg=%q", number, result.OK, result.Code, result.Message)
	return result
}

// interpret extracts the numeric response code from a body that may be a bare
// code, JSON, or prose. Success is exactly CodeSubmitted; anything ambiguous
// is a failure.
func interpret(body string) models.DispatchResult {
	code := CodeUnknown
	if m := numericCode.FindStringSubmatch(body); m != nil {
		code, _ = strconv.Atoi(m[1])
	} else if successText.MatchString(body) {
		code = CodeSubmitted
	}

	message := MapCode(code)
	if code == CodeUnknown {
		if body != "" {
			message = body
		} else {
			message = "Unknown response"
		}
	}
	return models.DispatchResult{OK: code == CodeSubmitted, Code: code, Message: message}
}
