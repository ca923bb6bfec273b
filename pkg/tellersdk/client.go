// Package tellersdk is a small Go client for the teller desk service. It
// also defines the wire types and error shapes the server emits, so the two
// sides cannot drift apart.
package tellersdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client talks to a teller desk instance.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh rotates a refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	req := RefreshRequest{RefreshToken: refreshToken}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/refresh", "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the access token's jti server side.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/auth/logout", accessToken, nil, nil, http.StatusOK)
}

// EnrollMFA starts TOTP enrolment for the authenticated user.
func (c *Client) EnrollMFA(ctx context.Context, accessToken string) (*MFAEnrollResponse, error) {
	var out MFAEnrollResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/mfa/totp/enroll", accessToken, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyMFA confirms a TOTP code and enables MFA for the user.
func (c *Client) VerifyMFA(ctx context.Context, accessToken, code string) error {
	req := MFAVerifyRequest{Code: code}
	return c.doJSON(ctx, http.MethodPost, "/v1/mfa/totp/verify", accessToken, req, nil, http.StatusOK)
}

// ListTools returns the tools the caller's roles may invoke.
func (c *Client) ListTools(ctx context.Context, accessToken string) (*ToolsResponse, error) {
	var out ToolsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/tools", accessToken, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CallTool invokes a tool through the gateway.
func (c *Client) CallTool(ctx context.Context, accessToken string, req ToolCallRequest) (*ToolCallResponse, error) {
	var out ToolCallResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/tools/call", accessToken, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat runs one conversation turn on a thread.
func (c *Client) Chat(ctx context.Context, accessToken, threadID, text string) (*ChatResponse, error) {
	var out ChatResponse
	req := ChatRequest{Text: text}
	path := "/v1/chat/" + threadID
	if err := c.doJSON(ctx, http.MethodPost, path, accessToken, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAuditEvents returns recent audit events, newest first. Admin only.
func (c *Client) ListAuditEvents(ctx context.Context, accessToken string, limit int) (*AuditResponse, error) {
	path := "/v1/audit"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var out AuditResponse
	if err := c.doJSON(ctx, http.MethodGet, path, accessToken, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness checks if the service is ready to take traffic.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, bearer string, in, out any, wantStatus int) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return parseAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func parseAPIError(resp *http.Response) error {
	var wire ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil || wire.Error == "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        ErrorCodeServerError,
			Description: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        wire.Error,
		Description: wire.ErrorDescription,
	}
}
