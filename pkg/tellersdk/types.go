package tellersdk

// ErrorResponse is the wire shape of an APIError, used by clients to parse
// failures.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	TenantID string `json:"tenant_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	OTPCode  string `json:"otp_code,omitempty"`
}

// RefreshRequest is the body for POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned by the login and refresh endpoints.
type TokenResponse struct {
	// AccessToken is the JWT access token used to authenticate API requests
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque token used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`
}

// MFAEnrollResponse is returned by POST /v1/mfa/totp/enroll.
type MFAEnrollResponse struct {
	Secret  string `json:"secret"`
	URL     string `json:"url"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

// MFAVerifyRequest is the body for POST /v1/mfa/totp/verify.
type MFAVerifyRequest struct {
	Code string `json:"code"`
}

// ToolInfo describes one callable tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolsResponse is returned by GET /v1/tools.
type ToolsResponse struct {
	Tools []ToolInfo `json:"tools"`
}

// ToolCallRequest is the body for POST /v1/tools/call. The declared ids are
// only honoured for development identities.
type ToolCallRequest struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
	TenantID  string         `json:"tenant_id,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	ThreadID  string         `json:"thread_id,omitempty"`
}

// ToolCallResponse is the structured tool outcome. Tool execution failures
// arrive here with Success=false rather than as transport errors.
type ToolCallResponse struct {
	Success         bool   `json:"success"`
	Result          any    `json:"result,omitempty"`
	Error           string `json:"error,omitempty"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
}

// ChatRequest is the body for POST /v1/chat/{threadId}.
type ChatRequest struct {
	Text string `json:"text"`
}

// ChatMessage is one message produced during a turn.
type ChatMessage struct {
	Role   string `json:"role"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// ChatResponse is returned by the chat endpoint.
type ChatResponse struct {
	ActiveHandler string        `json:"active_handler"`
	Messages      []ChatMessage `json:"messages"`
}

// AuditEvent is one security-relevant event as returned by the audit listing.
type AuditEvent struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	TenantID   string `json:"tenant_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
	Detail     string `json:"detail,omitempty"`
	ClientAddr string `json:"client_addr,omitempty"`
	Success    bool   `json:"success"`
	CreatedAt  string `json:"created_at"`
}

// AuditResponse is returned by GET /v1/audit.
type AuditResponse struct {
	Events []AuditEvent `json:"events"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
