package models

// DispatchResult is the outcome of a single SMS send attempt. Not persisted.
type DispatchResult struct {
	OK      bool   `json:"ok"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type OtpStartRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type OtpVerifyRequest struct {
	Phone string `json:"phone" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

type SMSSendRequest struct {
	Number  string `json:"number" binding:"required"`
	Message string `json:"message" binding:"required"`
}
