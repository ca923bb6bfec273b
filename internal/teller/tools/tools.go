// Package tools holds the callable banking tool set behind the invocation
// gateway. Each tool decodes its own typed arguments from the sanitized
// argument map, so a bad payload fails before any side effect.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
)

// Call is the identity-injected invocation context a tool receives. Tenant,
// user and thread ids come from the verified token (or a trusted override),
// never from model output.
type Call struct {
	TenantID string
	UserID   string
	ThreadID string
	Args     map[string]any
}

// Tool is one callable operation. Execute returns a JSON-marshallable result
// or an error; the gateway wraps either into a ToolResult.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, call Call) (any, error)
}

// Registry is the typed tool lookup table.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns tool metadata sorted by name.
func (r *Registry) List() []domain.ToolInfo {
	out := make([]domain.ToolInfo, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, domain.ToolInfo{Name: t.Name(), Description: t.Description()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// decodeArgs maps the sanitized argument map onto a typed argument struct.
func decodeArgs(args map[string]any, dst any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}

// parseAmountCents converts a decimal amount string ("125.50") into cents.
// The gateway has already validated the format; this keeps the arithmetic in
// integers.
func parseAmountCents(s string) (int64, error) {
	whole, frac, _ := strings.Cut(s, ".")

	var cents int64
	for _, c := range whole {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents = cents*10 + int64(c-'0')
	}
	cents *= 100

	if frac != "" {
		if len(frac) > 2 {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		var f int64
		for _, c := range frac {
			if c < '0' || c > '9' {
				return 0, fmt.Errorf("invalid amount %q", s)
			}
			f = f*10 + int64(c-'0')
		}
		if len(frac) == 1 {
			f *= 10
		}
		cents += f
	}
	return cents, nil
}

// formatCents renders cents back into a decimal string.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
