// Package kuro implements the SMS gateway and account detail providers
// against the Kuro game-account API.
package kuro

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kurologin/internal/domain/login"
	"kurologin/internal/shared/logger"
)

const (
	// DefaultBaseURL is the Kuro account API host.
	DefaultBaseURL = "https://api.kurobbs.com"
	// defaultRequestTimeout bounds each gateway round trip.
	defaultRequestTimeout = 10 * time.Second
	// maxResponseSize caps gateway response bodies (64KB).
	maxResponseSize = 64 << 10

	// successCode is the gateway's application-level success marker.
	successCode = 200

	sendCodePath = "/user/getSmsCode"
	sdkLoginPath = "/user/sdkLogin"

	sourceAndroid = "android"
)

// envelope is the gateway's common response wrapper. Data is decoded
// per call.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// sdkLoginData is the verification call's payload.
type sdkLoginData struct {
	Token  string      `json:"token"`
	UserID json.Number `json:"userId"`
}

// Config holds the Kuro client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// SMSClient dispatches and verifies one-time SMS codes via the Kuro API.
type SMSClient struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Interface
}

// NewSMSClient creates a Kuro SMS gateway client.
func NewSMSClient(cfg Config, log logger.Interface) *SMSClient {
	return &SMSClient{
		httpClient: newHTTPClient(cfg.Timeout),
		baseURL:    baseURLOrDefault(cfg.BaseURL),
		logger:     log,
	}
}

// Ensure SMSClient implements login.SMSGateway
var _ login.SMSGateway = (*SMSClient)(nil)

// SendCode requests SMS delivery for the phone number. The returned receipt
// carries the dispatch context the verification call must replay.
func (c *SMSClient) SendCode(ctx context.Context, phoneNumber, deviceID, secCode string) (*login.DispatchReceipt, error) {
	form := url.Values{}
	form.Set("mobile", phoneNumber)
	form.Set("geeTestData", secCode)

	env, err := postForm(ctx, c.httpClient, c.baseURL+sendCodePath, deviceID, "", form)
	if err != nil {
		return nil, fmt.Errorf("failed to request sms dispatch: %w", err)
	}

	if env.Code != successCode {
		return nil, fmt.Errorf("sms dispatch rejected: %s (code %d)", env.Msg, env.Code)
	}

	c.logger.Infow("sms code dispatched",
		"phone", maskPhone(phoneNumber),
	)

	return &login.DispatchReceipt{
		PhoneNumber: phoneNumber,
		DeviceID:    deviceID,
		SecCode:     secCode,
		Message:     env.Msg,
	}, nil
}

// VerifyCode exchanges the user-submitted code for a bearer token and user
// id. A gateway rejection wraps login.ErrCodeRejected so callers can tell
// a wrong code from a transport fault.
func (c *SMSClient) VerifyCode(ctx context.Context, receipt *login.DispatchReceipt, code string) (*login.Credentials, error) {
	if receipt == nil {
		return nil, fmt.Errorf("dispatch receipt is required")
	}

	form := url.Values{}
	form.Set("mobile", receipt.PhoneNumber)
	form.Set("code", code)
	form.Set("devCode", receipt.DeviceID)
	form.Set("geeTestData", receipt.SecCode)

	env, err := postForm(ctx, c.httpClient, c.baseURL+sdkLoginPath, receipt.DeviceID, "", form)
	if err != nil {
		return nil, fmt.Errorf("failed to verify sms code: %w", err)
	}

	if env.Code != successCode {
		return nil, fmt.Errorf("%w: %s (code %d)", login.ErrCodeRejected, env.Msg, env.Code)
	}

	var data sdkLoginData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode login payload: %w", err)
	}
	if data.Token == "" {
		return nil, fmt.Errorf("login payload missing token")
	}

	c.logger.Infow("sms code verified",
		"phone", maskPhone(receipt.PhoneNumber),
		"user_id", data.UserID.String(),
	)

	return &login.Credentials{
		Token:  data.Token,
		UserID: data.UserID.String(),
	}, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &http.Client{Timeout: timeout}
}

func baseURLOrDefault(baseURL string) string {
	if baseURL == "" {
		return DefaultBaseURL
	}
	return baseURL
}

func postForm(ctx context.Context, client *http.Client, requestURL, deviceID, token string, form url.Values) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("source", sourceAndroid)
	if deviceID != "" {
		req.Header.Set("devCode", deviceID)
	}
	if token != "" {
		req.Header.Set("token", token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &env, nil
}

// maskPhone hides the middle digits of a phone number for log output.
func maskPhone(phone string) string {
	if len(phone) != 11 {
		return "***"
	}
	return phone[:3] + "****" + phone[7:]
}
