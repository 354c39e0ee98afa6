package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/config"
	"github.com/dukerupert/census/internal/handler"
	"github.com/dukerupert/census/internal/middleware"
	"github.com/dukerupert/census/internal/service"
	"github.com/dukerupert/census/internal/store"
	ws "github.com/dukerupert/census/internal/websocket"
)

const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	resolver    *auth.Resolver
	rateLimiter *middleware.RateLimiter
	clientIP    *middleware.ClientIP
	origins     []string

	authH       *handler.AuthHandler
	userH       *handler.UserHandler
	lienholderH *handler.LienholderHandler
	householdH  *handler.HouseholdHandler
	recordH     *handler.RecordHandler
	relativeH   *handler.RelativeHandler

	logger *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	svc := service.NewFromDB(db, tokens, logger)
	clientIP, err := middleware.NewClientIP(cfg.TrustedProxies)
	if err != nil {
		logger.Error("ignoring trusted proxies", "error", err)
		clientIP = nil
	}

	deps := func(component string) handler.Deps {
		return handler.Deps{
			Service:     svc,
			Hub:         hub,
			DebugErrors: cfg.DebugErrors,
			Logger:      logger.With("component", component),
		}
	}

	return &Server{
		db:          db,
		hub:         hub,
		resolver:    auth.NewResolver(tokens, store.NewUserStore(db)),
		rateLimiter: middleware.NewRateLimiter(),
		clientIP:    clientIP,
		origins:     cfg.AllowedOrigins,
		authH:       handler.NewAuthHandler(deps("auth"), cfg.CookieSecure),
		userH:       handler.NewUserHandler(deps("user")),
		lienholderH: handler.NewLienholderHandler(deps("lienholder")),
		householdH:  handler.NewHouseholdHandler(deps("household")),
		recordH:     handler.NewRecordHandler(deps("record")),
		relativeH:   handler.NewRelativeHandler(deps("relative")),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the change feed hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /ws", middleware.RequireAuth(ws.HandleWebSocket(s.hub, s.origins, s.logger.With("component", "websocket"))))

	// Auth
	mux.Handle("POST /api/auth/register", s.rateLimited("register", s.authH.Register))
	mux.Handle("POST /api/auth/login", s.rateLimited("login", s.authH.Login))
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("POST /api/auth/password", s.authH.Password)

	// Users
	mux.HandleFunc("GET /api/user", s.userH.Get)
	mux.HandleFunc("PATCH /api/user", s.userH.Update)
	mux.HandleFunc("DELETE /api/user", s.userH.Delete)
	mux.HandleFunc("GET /api/user/id/{id}", s.userH.GetByID)
	mux.HandleFunc("GET /api/user/email/{email}", s.userH.GetByEmail)
	mux.Handle("GET /api/users", middleware.RequireAuth(http.HandlerFunc(s.userH.List)))
	mux.Handle("PATCH /api/users", middleware.RequireAuth(http.HandlerFunc(s.userH.Update)))
	mux.Handle("DELETE /api/users", middleware.RequireAuth(http.HandlerFunc(s.userH.Delete)))
	mux.Handle("GET /api/users/id/{id}", middleware.RequireAuth(http.HandlerFunc(s.userH.GetByID)))

	// Lienholders
	mux.HandleFunc("GET /api/lienholder", s.lienholderH.List)
	mux.HandleFunc("PUT /api/lienholder", s.lienholderH.Create)
	mux.HandleFunc("PATCH /api/lienholder", s.lienholderH.Update)
	mux.HandleFunc("DELETE /api/lienholder", s.lienholderH.DeleteByName)
	mux.HandleFunc("GET /api/lienholder/id/{id}", s.lienholderH.GetByID)
	mux.HandleFunc("DELETE /api/lienholder/id/{id}", s.lienholderH.DeleteByID)

	// Households
	mux.HandleFunc("GET /api/household", s.householdH.Get)
	mux.HandleFunc("PUT /api/household", s.householdH.Create)
	mux.HandleFunc("PATCH /api/household", s.householdH.Update)
	mux.HandleFunc("GET /api/household/id/{id}", s.householdH.GetByID)
	mux.HandleFunc("GET /api/household/user/id/{id}", s.householdH.GetByUserID)
	mux.HandleFunc("GET /api/household/user/email/{email}", s.householdH.GetByUserEmail)

	// Records
	mux.HandleFunc("PUT /api/record", s.recordH.Create)
	mux.HandleFunc("PATCH /api/record", s.recordH.Update)
	mux.HandleFunc("GET /api/record/id/{id}", s.recordH.GetByID)
	mux.HandleFunc("DELETE /api/record/id/{id}", s.recordH.Delete)
	mux.HandleFunc("GET /api/record/household/id/{id}", s.recordH.ListByHousehold)
	mux.HandleFunc("DELETE /api/record/household/id/{id}", s.recordH.DeleteByHousehold)
	mux.HandleFunc("GET /api/record/user", s.recordH.ListByUser)
	mux.HandleFunc("GET /api/record/user/id/{id}", s.recordH.ListByUserID)
	mux.HandleFunc("GET /api/record/user/email/{email}", s.recordH.ListByUserEmail)

	// Records with the caller's relationship to them
	mux.HandleFunc("GET /api/record/relative", s.relativeH.ListWithRecords)
	mux.HandleFunc("PUT /api/record/relative", s.relativeH.CreateWithRecord)
	mux.HandleFunc("PATCH /api/record/relative", s.relativeH.UpdateWithRecord)
	mux.HandleFunc("GET /api/record/relative/user", s.relativeH.ListWithRecords)
	mux.HandleFunc("GET /api/record/relative/user/id/{id}", s.relativeH.ListWithRecordsByUserID)
	mux.HandleFunc("GET /api/record/relative/user/email/{email}", s.relativeH.ListWithRecordsByUserEmail)

	// Relatives
	mux.HandleFunc("GET /api/relative/user/id/{id}", s.relativeH.ListByUserID)
	mux.HandleFunc("PUT /api/relative", s.relativeH.Create)
	mux.HandleFunc("PATCH /api/relative", s.relativeH.Update)

	var h http.Handler = mux
	h = middleware.ResolvePrincipal(s.resolver, s.logger.With("component", "auth"))(h)
	h = middleware.Recover(s.logger.With("component", "http"))(h)
	return middleware.RequestLogger(s.logger.With("component", "http"), s.clientIP)(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) rateLimited(scope string, h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter, s.clientIP, scope, authRateLimit, authRateWindow)(h)
}
