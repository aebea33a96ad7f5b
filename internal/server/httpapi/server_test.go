package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/easydrink/internal/common"
	"github.com/dmitrijs2005/easydrink/internal/logging"
	"github.com/dmitrijs2005/easydrink/internal/server/metrics"
	"github.com/dmitrijs2005/easydrink/internal/server/models"
	"github.com/dmitrijs2005/easydrink/internal/server/services"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	sess              *services.Session
	err               error
	gotEmail, gotPass string
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*services.Session, error) {
	f.gotEmail, f.gotPass = email, password
	return f.sess, f.err
}

func newTestServer(auth Authenticator, ping func(context.Context) error) (*HTTPServer, http.Handler) {
	s := NewHTTPServer("127.0.0.1:0", logging.Nop(), auth, ping, metrics.New())
	return s, s.Router()
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func TestLogin_OK(t *testing.T) {
	auth := &fakeAuth{sess: &services.Session{
		TokenPair: services.TokenPair{AccessToken: "jwt"},
		User:      &models.User{ID: "u-1", Email: "user@teste.com", DisplayName: "Usuário Teste"},
	}}
	s, h := newTestServer(auth, nil)

	rec := post(h, `{"email":"user@teste.com","senha":"123456"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"message": "Login realizado com sucesso!",
		"user": {"id": "u-1", "email": "user@teste.com", "nome": "Usuário Teste"},
		"token": "jwt"
	}`, rec.Body.String())
	assert.Equal(t, "user@teste.com", auth.gotEmail)
	assert.Equal(t, "123456", auth.gotPass)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.HTTPTotal.WithLabelValues("/auth/login", "200")))
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		want   string
	}{
		{"wrong password", `{"email":"a@b.co","senha":"x"}`, &services.Error{Code: common.CodeWrongPassword}, http.StatusUnauthorized, `{"error":"Credenciais inválidas"}`},
		{"unknown user", `{"email":"a@b.co","senha":"x"}`, &services.Error{Code: common.CodeUserNotFound}, http.StatusUnauthorized, `{"error":"Credenciais inválidas"}`},
		{"throttled", `{"email":"a@b.co","senha":"x"}`, &services.Error{Code: common.CodeTooManyRequests}, http.StatusTooManyRequests, `{"error":"Muitas tentativas. Tente novamente mais tarde."}`},
		{"internal", `{"email":"a@b.co","senha":"x"}`, errors.New("db down"), http.StatusInternalServerError, `{"error":"Erro interno do servidor"}`},
		{"bad json", `{"email":`, nil, http.StatusBadRequest, `{"error":"Requisição inválida"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestServer(&fakeAuth{err: tt.err}, nil)
			rec := post(h, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestLogin_MethodNotAllowed(t *testing.T) {
	_, h := newTestServer(&fakeAuth{}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(&fakeAuth{}, func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	_, h = newTestServer(&fakeAuth{}, func(context.Context) error { return errors.New("db gone") })
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(&fakeAuth{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `easydrink_identity_http_requests_total{route="/healthz",status="200"} 1`)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := NewHTTPServer("127.0.0.1:0", logging.Nop(), &fakeAuth{}, nil, metrics.New())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
