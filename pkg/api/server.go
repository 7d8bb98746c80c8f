package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gavel-oj/gavel/pkg/config"
	"github.com/gavel-oj/gavel/pkg/groups"
	"github.com/gavel-oj/gavel/pkg/httputil"
	"github.com/gavel-oj/gavel/pkg/middleware"
	"github.com/gavel-oj/gavel/pkg/observability"
	"github.com/gavel-oj/gavel/pkg/problems"
	"github.com/gavel-oj/gavel/pkg/problemsets"
	"github.com/gavel-oj/gavel/pkg/session"
	"github.com/gavel-oj/gavel/pkg/storage/postgres"
	"github.com/gavel-oj/gavel/pkg/users"
)

// Server represents the Gavel API server
type Server struct {
	cfg    *config.Config
	router *mux.Router
	db     *sql.DB

	users       *users.PostgresService
	groups      *groups.PostgresService
	problemSets *problemsets.PostgresService
	problems    *problems.PostgresService
	sessions    *session.Store

	logger  *observability.Logger
	metrics *observability.Metrics
	health  *observability.HealthChecker

	authHandlers       *AuthHandlers
	userHandlers       *UserHandlers
	groupHandlers      *GroupHandlers
	problemSetHandlers *ProblemSetHandlers
	problemHandlers    *ProblemHandlers
}

// resolver satisfies permission.Resolver by combining the two services
type resolver struct {
	users  *users.PostgresService
	groups *groups.PostgresService
}

func (r *resolver) ResolveUser(ctx context.Context, id string) (uuid.UUID, bool, error) {
	return r.users.ResolveUser(ctx, id)
}

func (r *resolver) ResolveGroup(ctx context.Context, id string) (uuid.UUID, bool, error) {
	return r.groups.ResolveGroup(ctx, id)
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, db *sql.DB, sessions *session.Store, logger *observability.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		router:      mux.NewRouter(),
		db:          db,
		users:       users.NewPostgresService(db),
		groups:      groups.NewPostgresService(db),
		problemSets: problemsets.NewPostgresService(db),
		problems:    problems.NewPostgresService(db),
		sessions:    sessions,
		logger:      logger,
		metrics:     observability.NewMetrics(prometheus.NewRegistry()),
		health:      observability.NewHealthChecker(db, sessions.Client()),
	}

	res := &resolver{s.users, s.groups}
	s.authHandlers = NewAuthHandlers(s.users, s.problemSets, sessions, cfg.Session, s.metrics)
	s.userHandlers = NewUserHandlers(s.users)
	s.groupHandlers = NewGroupHandlers(s.groups)
	s.problemSetHandlers = NewProblemSetHandlers(s.problemSets, res, cfg.Limits, s.metrics)
	s.problemHandlers = NewProblemHandlers(s.problems, s.problemSets, res, cfg.Limits, s.metrics)

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	logging := middleware.NewLoggingMiddleware(s.logger, s.metrics)
	recovery := middleware.NewRecoveryMiddleware()
	sessions := middleware.NewSessionMiddleware(s.sessions, s.users, s.cfg.Session.CookieName)

	s.router.Use(logging.Handler, recovery.Handler, sessions.Handler)

	s.authHandlers.RegisterRoutes(s.router)
	s.userHandlers.RegisterRoutes(s.router)
	s.groupHandlers.RegisterRoutes(s.router)
	s.problemSetHandlers.RegisterRoutes(s.router)
	s.problemHandlers.RegisterRoutes(s.router)

	s.router.HandleFunc("/healthz", s.health.Liveness).Methods("GET")
	s.router.HandleFunc("/readyz", s.health.Readiness).Methods("GET")
	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	if s.cfg.TestMode {
		s.router.HandleFunc("/test/dropDatabase", s.dropDatabase).Methods("POST")
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// dropDatabase wipes all entity data. Only wired when test mode is on.
func (s *Server) dropDatabase(w http.ResponseWriter, r *http.Request) {
	if err := postgres.DropAllData(r.Context(), s.db); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	s.sessions.Client().FlushAll(r.Context())
	httputil.WriteOK(w)
}
