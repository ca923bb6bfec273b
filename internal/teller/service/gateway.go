package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/tools"
	"github.com/aussiebroadwan/tellerdesk/pkg/ratelimit"
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("rate_limited")
	ErrValidation   = errors.New("validation_error")
	ErrToolNotFound = errors.New("tool_not_found")
)

// InvokeRequest is an inbound tool call. Declared ids are advisory; they are
// only honoured for tokens carrying the development identity claim.
type InvokeRequest struct {
	ToolName         string
	Arguments        map[string]any
	BearerToken      string
	DeclaredTenantID string
	DeclaredUserID   string
	DeclaredThreadID string
	ClientAddr       string
}

// GatewayService is the single choke point for tool side effects. Every
// request is verified, rate limited, permission checked, sanitized and
// identity injected before the tool runs; rejections happen before any tool
// side effect.
type GatewayService struct {
	Tokens    *TokenService
	Limiter   *ratelimit.Limiter
	Registry  *tools.Registry
	Audit     *AuditService
	Sanitizer *Sanitizer

	AccountPattern *regexp.Regexp
	AmountPattern  *regexp.Regexp
	ToolTimeout    time.Duration
}

// Invoke runs one gateway pass. A non-nil error is a gateway rejection; tool
// execution failures and timeouts come back as a ToolResult with
// success=false and a nil error.
func (s *GatewayService) Invoke(ctx context.Context, req InvokeRequest) (domain.ToolResult, error) {
	l := slogx.FromContext(ctx)

	// 1. Verify the bearer token
	claims, err := s.Tokens.Verify(ctx, req.BearerToken)
	if err != nil {
		s.Audit.Record(ctx, domain.AuditEvent{
			Type:       domain.AuditAuthRejected,
			ToolName:   req.ToolName,
			Detail:     err.Error(),
			ClientAddr: req.ClientAddr,
		})
		return domain.ToolResult{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	tenantID := claims.TenantID
	userID := claims.Subject
	roles := domain.RolesFromStrings(claims.Roles)

	// 2. Sliding window rate limit keyed by tenant and user
	limitKey := tenantID + ":" + userID
	if limitKey == ":" {
		limitKey = req.ClientAddr
	}
	if !s.Limiter.Allow(limitKey) {
		s.Audit.Record(ctx, domain.AuditEvent{
			Type:       domain.AuditRateLimitExceeded,
			TenantID:   tenantID,
			UserID:     userID,
			ToolName:   req.ToolName,
			ClientAddr: req.ClientAddr,
		})
		return domain.ToolResult{}, ErrRateLimited
	}

	// 3. Resolve the tool and check permissions (fail-closed)
	if !ValidToolName(req.ToolName) {
		return domain.ToolResult{}, fmt.Errorf("%w: bad tool name", ErrValidation)
	}
	tool, ok := s.Registry.Get(req.ToolName)
	if !ok {
		return domain.ToolResult{}, ErrToolNotFound
	}
	if !tools.Permitted(req.ToolName, roles) {
		s.Audit.Record(ctx, domain.AuditEvent{
			Type:       domain.AuditToolDenied,
			TenantID:   tenantID,
			UserID:     userID,
			ToolName:   req.ToolName,
			ClientAddr: req.ClientAddr,
		})
		return domain.ToolResult{}, ErrForbidden
	}

	// 4. Sanitize arguments before anything downstream touches them
	args := s.Sanitizer.Clean(req.Arguments)

	// 5. Identity injection. The token's identity always wins unless the
	// token carries the signed development claim, which may substitute the
	// declared ids for testing against other identities.
	threadID := req.DeclaredThreadID
	if claims.Dev {
		if req.DeclaredTenantID != "" {
			tenantID = req.DeclaredTenantID
		}
		if req.DeclaredUserID != "" {
			userID = req.DeclaredUserID
		}
	}

	// 6. Domain validation on well-known argument shapes
	if err := s.validateArgs(args); err != nil {
		return domain.ToolResult{}, err
	}

	// 7. Execute with a bounded timeout and panic recovery
	call := tools.Call{
		TenantID: tenantID,
		UserID:   userID,
		ThreadID: threadID,
		Args:     args,
	}
	started := time.Now()
	result := s.execute(ctx, tool, call)
	result.ExecutionTimeMs = time.Since(started).Milliseconds()

	// 8. Audit the attempt and return the structured result
	s.Audit.Record(ctx, domain.AuditEvent{
		Type:       domain.AuditToolCall,
		TenantID:   tenantID,
		UserID:     userID,
		ToolName:   req.ToolName,
		Detail:     result.Error,
		ClientAddr: req.ClientAddr,
		Success:    result.Success,
	})
	if !result.Success {
		l.Info("tool execution failed",
			slog.String("tool", req.ToolName),
			slog.String("error", result.Error),
		)
	}
	return result, nil
}

// validateArgs applies the configured account number and amount formats to
// every argument whose key suggests one.
func (s *GatewayService) validateArgs(args map[string]any) error {
	for key, value := range args {
		str, ok := value.(string)
		if !ok {
			continue
		}
		switch {
		case strings.Contains(key, "account") && !strings.Contains(key, "name"):
			if !s.AccountPattern.MatchString(str) {
				return fmt.Errorf("%w: invalid account number in %q", ErrValidation, key)
			}
		case strings.Contains(key, "amount"):
			if !s.AmountPattern.MatchString(str) {
				return fmt.Errorf("%w: invalid amount in %q", ErrValidation, key)
			}
		}
	}
	return nil
}

// execute runs the tool under the configured deadline. Timeouts and panics
// are folded into a failed result rather than surfacing as errors.
func (s *GatewayService) execute(ctx context.Context, tool tools.Tool, call tools.Call) domain.ToolResult {
	ctx, cancel := context.WithTimeout(ctx, s.ToolTimeout)
	defer cancel()

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("tool panicked: %v", r)}
			}
		}()
		res, err := tool.Execute(ctx, call)
		done <- outcome{result: res, err: err}
	}()

	select {
	case <-ctx.Done():
		// The child deadline expiring is a tool timeout; anything else
		// means the caller abandoned the request.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.ToolResult{Success: false, Error: "tool_timeout"}
		}
		return domain.ToolResult{Success: false, Error: "request_cancelled"}
	case out := <-done:
		if out.err != nil {
			return domain.ToolResult{Success: false, Error: out.err.Error()}
		}
		return domain.ToolResult{Success: true, Result: out.result}
	}
}
