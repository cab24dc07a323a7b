// Package geetest implements the anti-bot challenge provider against the
// GeeTest v4 public endpoints.
package geetest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"kurologin/internal/domain/login"
	"kurologin/internal/shared/logger"
)

const (
	// DefaultBaseURL is the GeeTest v4 API host.
	DefaultBaseURL = "https://gcaptcha4.geetest.com"
	// defaultRequestTimeout bounds each challenge round trip.
	defaultRequestTimeout = 10 * time.Second
	// maxResponseSize caps challenge API response bodies (64KB).
	maxResponseSize = 64 << 10

	clientType = "android"
)

// loadResponse is the payload of the challenge registration call.
type loadResponse struct {
	Status string `json:"status"`
	Data   struct {
		LotNumber    string `json:"lot_number"`
		Payload      string `json:"payload"`
		ProcessToken string `json:"process_token"`
		PayloadType  string `json:"payload_protocol_type"`
	} `json:"data"`
}

// verifyResponse is the payload of the challenge verification call.
type verifyResponse struct {
	Status string `json:"status"`
	Data   struct {
		Result  string `json:"result"`
		SecCode struct {
			LotNumber     string `json:"lot_number"`
			PassToken     string `json:"pass_token"`
			GenTime       string `json:"gen_time"`
			CaptchaOutput string `json:"captcha_output"`
		} `json:"seccode"`
	} `json:"data"`
}

// secCodePayload is the opaque security code handed to the SMS gateway,
// serialized exactly as the gateway expects it.
type secCodePayload struct {
	CaptchaID     string `json:"captcha_id"`
	LotNumber     string `json:"lot_number"`
	PassToken     string `json:"pass_token"`
	GenTime       string `json:"gen_time"`
	CaptchaOutput string `json:"captcha_output"`
}

// Client obtains security codes from GeeTest for a single configured
// captcha id.
type Client struct {
	httpClient *http.Client
	baseURL    string
	captchaID  string
	logger     logger.Interface
}

// Config holds the GeeTest client settings.
type Config struct {
	CaptchaID string
	BaseURL   string
	Timeout   time.Duration
}

// NewClient creates a GeeTest challenge client.
func NewClient(cfg Config, log logger.Interface) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   baseURL,
		captchaID: cfg.CaptchaID,
		logger:    log,
	}
}

// Ensure Client implements login.ChallengeProvider
var _ login.ChallengeProvider = (*Client)(nil)

// SecCode runs the register/verify challenge handshake and returns the
// serialized security code. The code is opaque to callers; it is passed
// unchanged to the SMS dispatch and verification calls.
func (c *Client) SecCode(ctx context.Context) (string, error) {
	challenge := uuid.NewString()

	loaded, err := c.load(ctx, challenge)
	if err != nil {
		return "", fmt.Errorf("failed to register challenge: %w", err)
	}

	verified, err := c.verify(ctx, loaded)
	if err != nil {
		return "", fmt.Errorf("failed to verify challenge: %w", err)
	}

	payload := secCodePayload{
		CaptchaID:     c.captchaID,
		LotNumber:     verified.Data.SecCode.LotNumber,
		PassToken:     verified.Data.SecCode.PassToken,
		GenTime:       verified.Data.SecCode.GenTime,
		CaptchaOutput: verified.Data.SecCode.CaptchaOutput,
	}

	secCode, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize security code: %w", err)
	}

	c.logger.Debugw("obtained security code",
		"lot_number", payload.LotNumber,
	)

	return string(secCode), nil
}

func (c *Client) load(ctx context.Context, challenge string) (*loadResponse, error) {
	query := url.Values{}
	query.Set("captcha_id", c.captchaID)
	query.Set("challenge", challenge)
	query.Set("client_type", clientType)

	var result loadResponse
	if err := c.getJSON(ctx, "/load", query, &result); err != nil {
		return nil, err
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("challenge registration rejected: status %q", result.Status)
	}
	if result.Data.LotNumber == "" {
		return nil, fmt.Errorf("challenge registration returned empty lot number")
	}

	return &result, nil
}

func (c *Client) verify(ctx context.Context, loaded *loadResponse) (*verifyResponse, error) {
	query := url.Values{}
	query.Set("captcha_id", c.captchaID)
	query.Set("client_type", clientType)
	query.Set("lot_number", loaded.Data.LotNumber)
	query.Set("payload", loaded.Data.Payload)
	query.Set("process_token", loaded.Data.ProcessToken)
	query.Set("payload_protocol", loaded.Data.PayloadType)

	var result verifyResponse
	if err := c.getJSON(ctx, "/verify", query, &result); err != nil {
		return nil, err
	}

	if result.Status != "success" || result.Data.Result != "success" {
		return nil, fmt.Errorf("challenge verification rejected: status %q result %q",
			result.Status, result.Data.Result)
	}

	return &result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	requestURL := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach challenge provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
