package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/easydrink/internal/common"
	"github.com/dmitrijs2005/easydrink/internal/logging"
	pb "github.com/dmitrijs2005/easydrink/internal/proto"
	"github.com/dmitrijs2005/easydrink/internal/server/auth"
	"github.com/dmitrijs2005/easydrink/internal/server/metrics"
	"github.com/dmitrijs2005/easydrink/internal/server/models"
	"github.com/dmitrijs2005/easydrink/internal/server/services"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// fakeUsers records calls and returns canned results.
type fakeUsers struct {
	session *services.Session
	account *models.User
	err     error

	gotEmail, gotPassword, gotName, gotRefresh, gotUserID string
}

func (f *fakeUsers) Register(_ context.Context, email, password, name string) (*services.Session, error) {
	f.gotEmail, f.gotPassword, f.gotName = email, password, name
	return f.session, f.err
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*services.Session, error) {
	f.gotEmail, f.gotPassword = email, password
	return f.session, f.err
}

func (f *fakeUsers) RefreshToken(_ context.Context, token string) (*services.Session, error) {
	f.gotRefresh = token
	return f.session, f.err
}

func (f *fakeUsers) Logout(_ context.Context, token string) error {
	f.gotRefresh = token
	return f.err
}

func (f *fakeUsers) RequestPasswordReset(_ context.Context, email string) error {
	f.gotEmail = email
	return f.err
}

func (f *fakeUsers) Account(_ context.Context, userID string) (*models.User, error) {
	f.gotUserID = userID
	return f.account, f.err
}

var ana = &models.User{ID: "u-1", Email: "ana@example.com", DisplayName: "Ana"}

func newTestServer(users UserService) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), users, auth.NewSigner("secret", time.Hour), metrics.New())
}

// dial starts s on an in-memory listener and returns a client for it.
func dial(t *testing.T, s *GRPCServer) pb.IdentityServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-done
	})
	return pb.NewIdentityServiceClient(conn)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeUsers{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), &fakeUsers{}, auth.NewSigner("k", time.Hour), metrics.New())
	assert.Error(t, srv.Run(context.Background()))
}

func TestSignIn_RoundTrip(t *testing.T) {
	users := &fakeUsers{session: &services.Session{
		TokenPair: services.TokenPair{AccessToken: "at", RefreshToken: "rt"},
		User:      ana,
	}}
	s := newTestServer(users)
	client := dial(t, s)

	got, err := client.SignIn(context.Background(), &pb.SignInRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, &pb.Session{
		AccessToken:  "at",
		RefreshToken: "rt",
		Account:      &pb.Account{Uid: "u-1", Email: "ana@example.com", DisplayName: "Ana"},
	}, got)
	assert.Equal(t, "ana@example.com", users.gotEmail)
	assert.Equal(t, "secret1", users.gotPassword)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.AuthEvents.WithLabelValues("sign_in", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.RPCTotal.WithLabelValues(pb.IdentityService_SignIn_FullMethodName, "OK")))
}

func TestErrors_TravelAsAuthCodes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    codes.Code
		message string
	}{
		{"wrong password", &services.Error{Code: common.CodeWrongPassword}, codes.Unauthenticated, common.CodeWrongPassword},
		{"duplicate", &services.Error{Code: common.CodeEmailAlreadyInUse}, codes.AlreadyExists, common.CodeEmailAlreadyInUse},
		{"weak", &services.Error{Code: common.CodeWeakPassword}, codes.InvalidArgument, common.CodeWeakPassword},
		{"throttled", &services.Error{Code: common.CodeTooManyRequests}, codes.ResourceExhausted, common.CodeTooManyRequests},
		{"refresh expired", common.ErrRefreshTokenExpired, codes.Unauthenticated, common.ErrRefreshTokenExpired.Error()},
		{"internal", assert.AnError, codes.Internal, common.CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := dial(t, newTestServer(&fakeUsers{err: tt.err}))

			_, err := client.SignUp(context.Background(), &pb.SignUpRequest{Email: "a@b.co", Password: "x"})
			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.message, st.Message())
		})
	}
}

func TestSignOutRefreshAndReset(t *testing.T) {
	users := &fakeUsers{session: &services.Session{User: ana}}
	client := dial(t, newTestServer(users))
	ctx := context.Background()

	_, err := client.SignOut(ctx, &pb.SignOutRequest{RefreshToken: "rt-1"})
	require.NoError(t, err)
	assert.Equal(t, "rt-1", users.gotRefresh)

	_, err = client.Refresh(ctx, &pb.RefreshRequest{RefreshToken: "rt-2"})
	require.NoError(t, err)
	assert.Equal(t, "rt-2", users.gotRefresh)

	_, err = client.SendPasswordReset(ctx, &pb.PasswordResetRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", users.gotEmail)

	resp, err := client.Ping(ctx, &pb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)
}

func TestGetAccount_RequiresAccessToken(t *testing.T) {
	users := &fakeUsers{account: ana}
	s := newTestServer(users)
	client := dial(t, s)

	_, err := client.GetAccount(context.Background(), &pb.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	token, err := s.signer.Issue("u-1", "ana@example.com")
	require.NoError(t, err)
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, token)

	got, err := client.GetAccount(ctx, &pb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.Uid)
	assert.Equal(t, "u-1", users.gotUserID)
}
