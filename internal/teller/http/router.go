package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/service"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/tools"
	"github.com/aussiebroadwan/tellerdesk/pkg/httpx"
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"

	_ "github.com/aussiebroadwan/tellerdesk/api/teller" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     httpx.TokenVerifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store               store.Store
	Registry            *tools.Registry
	TokenService        *service.TokenService
	UserService         *service.UserService
	MFAService          *service.MFAService
	GatewayService      *service.GatewayService
	ConversationService *service.ConversationService
	AuditService        *service.AuditService
}

// NewRouter builds a router. The verifier must be revocation aware; every
// authenticated route rejects revoked tokens, not just tool calls.
func NewRouter(
	verifier httpx.TokenVerifier,
	buildVersion string,
	allowedOrigins []string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORSMiddleware(allowedOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMFA()
	r.registerTools()
	r.registerChat()
	r.registerAudit()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Teller Desk API
//	@version		0.1.0
//	@description	Conversation router and tool invocation gateway for a multi-party
//	@description	banking assistant. Every tool side effect passes through a single
//	@description	verified, rate limited and sanitized gateway.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tellerdesk
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /auth/login - strict rate limit by IP (authentication attempts)
	loginHandler := &LoginHandler{
		UserService:  r.UserService,
		TokenService: r.TokenService,
		AuditService: r.AuditService,
	}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/refresh - strict rate limit by IP (rotation attempts)
	refreshHandler := &RefreshHandler{
		TokenService: r.TokenService,
		AuditService: r.AuditService,
	}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/logout - authenticated, moderate rate limit by user
	logoutHandler := &LogoutHandler{
		TokenService: r.TokenService,
		AuditService: r.AuditService,
	}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	// POST /mfa/totp/enroll - moderate rate limit by user
	securedEnroll := httpx.Chain(http.HandlerFunc(h.HandleEnroll),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	// POST /mfa/totp/verify - strict rate limit by user (prevent brute force of TOTP codes)
	securedVerify := httpx.Chain(http.HandlerFunc(h.HandleVerify),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.StrictLimit),
	)

	r.Mux.Handle("POST /v1/mfa/totp/enroll", securedEnroll)
	r.Mux.Handle("POST /v1/mfa/totp/verify", securedVerify)
}

func (r *Router) registerTools() {
	h := &ToolsHandler{
		Registry:       r.Registry,
		GatewayService: r.GatewayService,
	}

	// GET /tools - authenticated read, lenient rate limit by user
	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)

	// POST /tools/call - the gateway applies its own sliding window limit,
	// so the HTTP layer only authenticates here
	securedCall := httpx.Chain(http.HandlerFunc(h.HandleCall),
		httpx.AuthnMiddleware(r.verifier),
	)

	r.Mux.Handle("GET /v1/tools", securedList)
	r.Mux.Handle("POST /v1/tools/call", securedCall)
}

func (r *Router) registerChat() {
	h := &ChatHandler{ConversationService: r.ConversationService}

	// POST /chat/{threadId} - tool calls inside the turn go through the
	// gateway's own limiter
	secured := httpx.Chain(http.HandlerFunc(h.HandleTurn),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	r.Mux.Handle("POST /v1/chat/{threadId}", secured)
}

func (r *Router) registerAudit() {
	h := &AuditHandler{AuditService: r.AuditService}

	// GET /audit - admin only, moderate rate limit by user
	secured := httpx.Chain(http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyRole(string(domain.RoleAdmin)),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	r.Mux.Handle("GET /v1/audit", secured)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
