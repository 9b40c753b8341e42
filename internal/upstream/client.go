// Package upstream implements the HTTP client for the external account
// service. Every operation is a single form-encoded POST answered with a
// JSON {code, msg, ticket?} body; code 0 is the only success the caller
// recognizes. Anti-abuse parameters of the real service (captcha tokens,
// browser header mimicry) are out of scope and not reproduced here.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/accmint-dev/accmint/internal/config"
	"github.com/accmint-dev/accmint/internal/domain"
	"github.com/accmint-dev/accmint/internal/middleware/metrics"
	"github.com/accmint-dev/accmint/internal/service"
)

// step names double as metric labels
const (
	stepCreateTicket  = "create_ticket"
	stepCheckEmail    = "check_email"
	stepCheckUsername = "check_username"
	stepSendCode      = "send_code"
	stepVerifyCode    = "verify_code"
)

var stepPaths = map[string]string{
	stepCreateTicket:  "/register/create_ticket",
	stepCheckEmail:    "/register/check_email",
	stepCheckUsername: "/register/check_account_name",
	stepSendCode:      "/register/send_code",
	stepVerifyCode:    "/register/verify_code",
}

const deviceIDHeader = "Device-Id"

type response struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Ticket string `json:"ticket"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// Ensure Client implements the interface at compile time.
var _ service.AccountClient = (*Client)(nil)

func New(cfg config.Upstream) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// post performs one form-encoded exchange. Transport failures and unreadable
// bodies fold into StatusTransportError; any non-zero upstream code is a
// rejection with the upstream message as reason. Every exchange is counted
// in the step metrics.
func (c *Client) post(ctx context.Context, step, deviceID string, form url.Values) (res domain.StepResult) {
	defer func() { metrics.ObserveStep(step, res.Status) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+stepPaths[step], strings.NewReader(form.Encode()))
	if err != nil {
		return transportError(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(deviceIDHeader, deviceID)

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return transportError(fmt.Errorf("unreadable response (status %d): %w", resp.StatusCode, err))
	}

	if body.Code != 0 {
		reason := body.Msg
		if reason == "" {
			reason = fmt.Sprintf("upstream code %d", body.Code)
		}
		return domain.StepResult{Status: domain.StatusRejected, Reason: reason}
	}
	return domain.StepResult{Status: domain.StatusOk, Ticket: body.Ticket}
}

func transportError(err error) domain.StepResult {
	return domain.StepResult{Status: domain.StatusTransportError, Reason: err.Error()}
}

// CreateTicket opens a registration attempt for the given device identity.
func (c *Client) CreateTicket(ctx context.Context, deviceID string) domain.StepResult {
	return c.post(ctx, stepCreateTicket, deviceID, url.Values{})
}

// CheckEmail asks whether email is free to register.
func (c *Client) CheckEmail(ctx context.Context, email, deviceID, ticket string) domain.StepResult {
	form := url.Values{"email": {email}, "ticket": {ticket}}
	return c.post(ctx, stepCheckEmail, deviceID, form)
}

// CheckUsername asks whether the account name is free.
func (c *Client) CheckUsername(ctx context.Context, username, deviceID, ticket string) domain.StepResult {
	form := url.Values{"account_name": {username}, "ticket": {ticket}}
	return c.post(ctx, stepCheckUsername, deviceID, form)
}

// SendCode dispatches the single-use verification code to email.
func (c *Client) SendCode(ctx context.Context, email, deviceID, ticket string) domain.StepResult {
	form := url.Values{"email": {email}, "ticket": {ticket}}
	return c.post(ctx, stepSendCode, deviceID, form)
}

// Register submits the human-supplied code with the settled account details.
func (c *Client) Register(ctx context.Context, reg domain.Registration) domain.StepResult {
	form := url.Values{
		"email":         {reg.Email},
		"code":          {reg.Code},
		"account_name":  {reg.Username},
		"hash_password": {reg.PasswordDigest},
		"ticket":        {reg.Ticket},
	}
	return c.post(ctx, stepVerifyCode, reg.DeviceID, form)
}
