package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/internal/auth/service"
	"github.com/oakmontlabs/gatehouse/internal/auth/store"
	"github.com/oakmontlabs/gatehouse/pkg/httpx"
	"github.com/oakmontlabs/gatehouse/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	TokenService      *service.TokenService
	AccountService    *service.AccountService
	PermissionService *service.PermissionService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Request logging first so every later middleware logs with request
	// context, then IP attribution for storage writes.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		AuditIP(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerPassword()
	r.registerVerify()
	r.registerSessions()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	login := &LoginHandler{AccountService: r.AccountService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIP(httpx.StrictLimit),
			DeviceGate(),
		),
	)

	refresh := &RefreshHandler{AccountService: r.AccountService}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refresh,
			httpx.RateLimitByIP(httpx.StrictLimit),
			DeviceGate(),
		),
	)

	logout := &LogoutHandler{AccountService: r.AccountService}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logout,
			httpx.RateLimitByIP(httpx.LenientLimit),
			DeviceGate(),
			Authenticate(r.TokenService, domain.TokenKindAccess),
		),
	)
}

func (r *Router) registerPassword() {
	h := &PasswordHandler{AccountService: r.AccountService}

	r.Mux.Handle("POST /v1/auth/password/forgot",
		httpx.Chain(http.HandlerFunc(h.HandleForgot),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/password/reset",
		httpx.Chain(http.HandlerFunc(h.HandleReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerVerify() {
	h := &VerifyHandler{AccountService: r.AccountService, Store: r.store}

	r.Mux.Handle("POST /v1/auth/verify/request",
		httpx.Chain(http.HandlerFunc(h.HandleRequest),
			httpx.RateLimitByIP(httpx.StrictLimit),
			Authenticate(r.TokenService, domain.TokenKindAccess),
		),
	)
	r.Mux.Handle("POST /v1/auth/verify/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleConfirm),
			httpx.RateLimitByIP(httpx.StrictLimit),
			Authenticate(r.TokenService, domain.TokenKindAccess),
		),
	)
}

func (r *Router) registerSessions() {
	h := &SessionsHandler{AccountService: r.AccountService, Store: r.store}

	r.Mux.Handle("GET /v1/sessions",
		httpx.Chain(http.HandlerFunc(h.HandleOwn),
			httpx.RateLimitByIP(httpx.LenientLimit),
			Authenticate(r.TokenService, domain.TokenKindAccess),
		),
	)
}

func (r *Router) registerAdmin() {
	grants := &GrantsHandler{PermissionService: r.PermissionService}
	sessions := &SessionsHandler{AccountService: r.AccountService, Store: r.store}

	r.Mux.Handle("GET /v1/admin/grants",
		httpx.Chain(http.HandlerFunc(grants.HandleList),
			httpx.RateLimitByIP(httpx.LenientLimit),
			Authenticate(r.TokenService, domain.TokenKindAccess),
			RequireGrants(r.PermissionService, domain.NewRequirement("admin", "dashboard", "view")),
		),
	)
	r.Mux.Handle("POST /v1/admin/grants",
		httpx.Chain(http.HandlerFunc(grants.HandleCreate),
			httpx.RateLimitByIP(httpx.LenientLimit),
			Authenticate(r.TokenService, domain.TokenKindAccess),
			RequireGrants(r.PermissionService, domain.NewRequirement("admin", "dashboard", "create")),
		),
	)
	r.Mux.Handle("GET /v1/admin/sessions",
		httpx.Chain(http.HandlerFunc(sessions.HandleAdminList),
			httpx.RateLimitByIP(httpx.LenientLimit),
			Authenticate(r.TokenService, domain.TokenKindAccess),
			RequireGrants(r.PermissionService, domain.NewRequirement("admin", "dashboard", "view")),
		),
	)
}

func (r *Router) registerSystem() {
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
