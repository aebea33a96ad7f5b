package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/easydrink/internal/common"
	pb "github.com/dmitrijs2005/easydrink/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// GRPCClient is the Provider backed by the EasyDrink identity server.
type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	api         pb.IdentityServiceClient
	tokens      *TokenStore
	now         func() time.Time

	mu      sync.Mutex
	session *StoredSession
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) snapshot() *StoredSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

func (s *GRPCClient) setSession(ctx context.Context, sess *StoredSession) error {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	if sess == nil {
		return s.tokens.Clear(ctx)
	}
	return s.tokens.Save(ctx, sess)
}

// accessTokenInterceptor attaches the current access token and, when the
// server answers that it expired, refreshes the pair once and retries.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	sess := s.snapshot()
	if sess == nil || sess.AccessToken == "" {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, sess.AccessToken), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if sess.RefreshToken == "" {
		return err
	}

	if err := s.refresh(ctx, sess); err != nil {
		return err
	}
	return invoker(withAccessToken(ctx, s.snapshot().AccessToken), method, req, reply, cc, opts...)
}

// NewGRPCClient dials endpointURL lazily; no network traffic happens until the
// first call.
func NewGRPCClient(endpointURL string, tokens *TokenStore, extra ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, tokens: tokens, now: time.Now}

	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, extra...)
	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.api = pb.NewIdentityServiceClient(conn)
	return c, nil
}

func accountFromPB(a *pb.Account) *Account {
	if a == nil {
		return nil
	}
	return &Account{UID: a.Uid, Email: a.Email, DisplayName: a.DisplayName}
}

func (s *GRPCClient) startSession(ctx context.Context, resp *pb.Session) (*Account, error) {
	acc := accountFromPB(resp.Account)
	if acc == nil {
		return nil, &ProviderError{Code: common.CodeInternalError, Message: "no account in session"}
	}
	sess := &StoredSession{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken, Account: acc}
	if err := s.setSession(ctx, sess); err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password, displayName string) (*Account, error) {
	resp, err := s.api.SignUp(ctx, &pb.SignUpRequest{Email: email, Password: password, DisplayName: displayName})
	if err != nil {
		return nil, s.mapError(err)
	}
	return s.startSession(ctx, resp)
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (*Account, error) {
	resp, err := s.api.SignIn(ctx, &pb.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	return s.startSession(ctx, resp)
}

func (s *GRPCClient) SignOut(ctx context.Context) error {
	sess := s.snapshot()
	if sess != nil && sess.RefreshToken != "" {
		if _, err := s.api.SignOut(ctx, &pb.SignOutRequest{RefreshToken: sess.RefreshToken}); err != nil {
			return s.mapError(err)
		}
	}
	return s.setSession(ctx, nil)
}

func (s *GRPCClient) SendPasswordReset(ctx context.Context, email string) error {
	if _, err := s.api.SendPasswordReset(ctx, &pb.PasswordResetRequest{Email: email}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) refresh(ctx context.Context, sess *StoredSession) error {
	resp, err := s.api.Refresh(ctx, &pb.RefreshRequest{RefreshToken: sess.RefreshToken})
	if err != nil {
		return s.mapError(err)
	}
	next := &StoredSession{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken, Account: sess.Account}
	if acc := accountFromPB(resp.Account); acc != nil {
		next.Account = acc
	}
	return s.setSession(ctx, next)
}

// CurrentAccount loads the persisted session, renews an expired access token
// and confirms the account with the server. When the server cannot be reached
// the cached account is returned so a restart without connectivity keeps the
// user signed in.
func (s *GRPCClient) CurrentAccount(ctx context.Context) (*Account, error) {
	sess := s.snapshot()
	if sess == nil {
		stored, err := s.tokens.Load(ctx)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, nil
		}
		s.mu.Lock()
		s.session = stored
		s.mu.Unlock()
		sess = stored
	}

	if TokenExpired(sess.AccessToken, s.now()) {
		if err := s.refresh(ctx, sess); err != nil {
			if errors.Is(err, ErrUnavailable) {
				return sess.Account, nil
			}
			return nil, s.setSession(ctx, nil)
		}
	}

	acc, err := s.api.GetAccount(ctx, &pb.Empty{})
	if err != nil {
		mapped := s.mapError(err)
		if errors.Is(mapped, ErrUnavailable) {
			return sess.Account, nil
		}
		if errors.Is(mapped, ErrUnauthorized) {
			return nil, s.setSession(ctx, nil)
		}
		return nil, mapped
	}
	return accountFromPB(acc), nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.api.Ping(ctx, &pb.Empty{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return NetworkError(errors.New("server status " + resp.Status))
	}
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// mapError turns a gRPC status into a ProviderError. The identity server puts
// its "auth/..." code in the status message.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return NetworkError(err)
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return NetworkError(err)
	case codes.Unauthenticated, codes.PermissionDenied:
		code := st.Message()
		if !strings.HasPrefix(code, "auth/") {
			code = common.CodeInvalidCredential
		}
		return &ProviderError{Code: code, Err: errors.Join(ErrUnauthorized, err)}
	}

	if strings.HasPrefix(st.Message(), "auth/") {
		return &ProviderError{Code: st.Message(), Err: err}
	}
	return &ProviderError{Code: common.CodeInternalError, Message: st.Message(), Err: err}
}
