package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gavel-oj/gavel/pkg/config"
	"github.com/gavel-oj/gavel/pkg/contextkeys"
	"github.com/gavel-oj/gavel/pkg/errs"
	"github.com/gavel-oj/gavel/pkg/httputil"
	"github.com/gavel-oj/gavel/pkg/middleware"
	"github.com/gavel-oj/gavel/pkg/observability"
	"github.com/gavel-oj/gavel/pkg/problemsets"
	"github.com/gavel-oj/gavel/pkg/session"
	"github.com/gavel-oj/gavel/pkg/users"
)

// AuthHandlers provides registration, login and logout
type AuthHandlers struct {
	users       *users.PostgresService
	problemSets *problemsets.PostgresService
	sessions    *session.Store
	cfg         config.SessionConfig
	metrics     *observability.Metrics
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(userService *users.PostgresService, setService *problemsets.PostgresService, sessions *session.Store, cfg config.SessionConfig, metrics *observability.Metrics) *AuthHandlers {
	return &AuthHandlers{
		users:       userService,
		problemSets: setService,
		sessions:    sessions,
		cfg:         cfg,
		metrics:     metrics,
	}
}

// RegisterRoutes registers auth routes
func (h *AuthHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/register", h.register).Methods("POST")
	router.HandleFunc("/auth/login", h.login).Methods("POST")
	router.HandleFunc("/auth/logout", h.logout).Methods("POST")
}

type registerRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// register handles POST /auth/register
func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) != nil {
		httputil.WriteError(w, r, errs.NewAuth(errs.AlreadyLoggedIn))
		return
	}

	var req registerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	ctx := r.Context()
	user, err := h.users.Register(ctx, req.UserName, req.Email, req.Password, clientIP(r))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	// every account gets its owner-only problem set
	if _, err := h.problemSets.CreatePrivate(ctx, user.UUID); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteResult(w, user)
}

// login handles POST /auth/login
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) != nil {
		httputil.WriteError(w, r, errs.NewAuth(errs.AlreadyLoggedIn))
		return
	}

	var req loginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := h.users.FindByUserName(r.Context(), req.UserName)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if req.Password == "" || !user.CheckPassword(req.Password) {
		httputil.WriteError(w, r, errs.NewAuth(errs.WrongPassword))
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteResult(w, user)
}

// logout handles POST /auth/logout
func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) == nil {
		httputil.WriteError(w, r, errs.NewAuth(errs.NotLoggedIn))
		return
	}

	ctx := r.Context()
	if token := contextkeys.SessionToken(ctx); token != "" {
		err := h.sessions.Delete(ctx, token)
		h.metrics.ObserveSessionOperation("delete", err)
		if err != nil {
			observability.FromContext(ctx).WithError(err).Warn("failed to delete session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
	})
	httputil.WriteOK(w)
}

func (h *AuthHandlers) startSession(w http.ResponseWriter, r *http.Request, user *users.User) error {
	token, err := h.sessions.Create(r.Context(), user.UUID)
	h.metrics.ObserveSessionOperation("create", err)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
	})
	return nil
}

// clientIP extracts the remote address without the port
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host := r.RemoteAddr
	for i := len(host) - 1; i >= 0; i-- {
		if host[i] == ':' {
			return host[:i]
		}
	}
	return host
}
