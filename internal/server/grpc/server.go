// Package grpc serves the identity service over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/easydrink/internal/logging"
	pb "github.com/dmitrijs2005/easydrink/internal/proto"
	"github.com/dmitrijs2005/easydrink/internal/server/auth"
	"github.com/dmitrijs2005/easydrink/internal/server/metrics"
	"github.com/dmitrijs2005/easydrink/internal/server/models"
	"github.com/dmitrijs2005/easydrink/internal/server/services"
	"google.golang.org/grpc"
)

// UserService is the account logic behind the handlers.
type UserService interface {
	Register(ctx context.Context, email, password, displayName string) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	RequestPasswordReset(ctx context.Context, email string) error
	Account(ctx context.Context, userID string) (*models.User, error)
}

type GRPCServer struct {
	address string
	users   UserService
	signer  *auth.Signer
	metrics *metrics.Metrics
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us UserService, signer *auth.Signer, m *metrics.Metrics) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		signer:  signer,
		metrics: m,
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor))
	pb.RegisterIdentityServiceServer(srv, s)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
