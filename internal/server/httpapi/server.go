// Package httpapi serves the identity server's REST surface: the legacy
// login endpoint, a health check and Prometheus metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/easydrink/internal/common"
	"github.com/dmitrijs2005/easydrink/internal/logging"
	"github.com/dmitrijs2005/easydrink/internal/server/metrics"
	"github.com/dmitrijs2005/easydrink/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	msgLoginOK            = "Login realizado com sucesso!"
	msgInvalidCredentials = "Credenciais inválidas"
	msgBadRequest         = "Requisição inválida"
	msgTooManyRequests    = "Muitas tentativas. Tente novamente mais tarde."
	msgInternal           = "Erro interno do servidor"
)

// Authenticator is the part of the user service the legacy login needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*services.Session, error)
}

type HTTPServer struct {
	address string
	users   Authenticator
	ping    func(context.Context) error
	metrics *metrics.Metrics
	logger  logging.Logger
}

// NewHTTPServer builds the server. ping backs /healthz and may be nil.
func NewHTTPServer(a string, l logging.Logger, users Authenticator, ping func(context.Context) error, m *metrics.Metrics) *HTTPServer {
	return &HTTPServer{
		address: a,
		users:   users,
		ping:    ping,
		metrics: m,
		logger:  l.With("module", "http_server"),
	}
}

// Router returns the chi router with all routes mounted.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)

	r.Post("/auth/login", s.login)
	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.HTTPTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type loginUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Nome  string `json:"nome"`
}

type loginResponse struct {
	Message string    `json:"message"`
	User    loginUser `json:"user"`
	Token   string    `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *HTTPServer) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(ctx, "write response", "error", err)
	}
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		s.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: msgBadRequest})
		return
	}

	sess, err := s.users.Login(ctx, req.Email, req.Senha)
	if err != nil {
		var se *services.Error
		switch {
		case errors.As(err, &se) && se.Code == common.CodeTooManyRequests:
			s.metrics.RecordAuth("legacy_login", se.Code)
			s.writeJSON(ctx, w, http.StatusTooManyRequests, errorResponse{Error: msgTooManyRequests})
		case errors.As(err, &se):
			s.metrics.RecordAuth("legacy_login", se.Code)
			s.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: msgInvalidCredentials})
		default:
			s.logger.Error(ctx, "legacy login failed", "error", err)
			s.metrics.RecordAuth("legacy_login", common.CodeInternalError)
			s.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: msgInternal})
		}
		return
	}

	s.metrics.RecordAuth("legacy_login", "ok")
	s.writeJSON(ctx, w, http.StatusOK, loginResponse{
		Message: msgLoginOK,
		User:    loginUser{ID: sess.User.ID, Email: sess.User.Email, Nome: sess.User.DisplayName},
		Token:   sess.AccessToken,
	})
}

func (s *HTTPServer) healthz(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			s.logger.Warn(r.Context(), "health check failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
