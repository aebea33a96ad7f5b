package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/easydrink/internal/common"
	pb "github.com/dmitrijs2005/easydrink/internal/proto"
	"github.com/dmitrijs2005/easydrink/internal/server/models"
	"github.com/dmitrijs2005/easydrink/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusCodes places each auth/ code on a gRPC status code. Codes the
// client treats as a rejected session use Unauthenticated.
var statusCodes = map[string]codes.Code{
	common.CodeInvalidEmail:        codes.InvalidArgument,
	common.CodeWeakPassword:        codes.InvalidArgument,
	common.CodeOperationNotAllowed: codes.FailedPrecondition,
	common.CodeEmailAlreadyInUse:   codes.AlreadyExists,
	common.CodeTooManyRequests:     codes.ResourceExhausted,
	common.CodeUserNotFound:        codes.Unauthenticated,
	common.CodeUserDisabled:        codes.Unauthenticated,
	common.CodeWrongPassword:       codes.Unauthenticated,
	common.CodeInvalidCredential:   codes.Unauthenticated,
}

// toStatus converts a service error into a status whose message is the
// auth/ code. Anything unexpected is logged and hidden behind
// auth/internal-error.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	var se *services.Error
	switch {
	case errors.As(err, &se):
		s.metrics.RecordAuth(method, se.Code)
		code, ok := statusCodes[se.Code]
		if !ok {
			code = codes.Unknown
		}
		return status.Error(code, se.Code)
	case errors.Is(err, common.ErrRefreshTokenExpired):
		s.metrics.RecordAuth(method, common.CodeInvalidCredential)
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	}

	s.logger.Error(ctx, "request failed", "method", method, "error", err)
	s.metrics.RecordAuth(method, common.CodeInternalError)
	return status.Error(codes.Internal, common.CodeInternalError)
}

func toAccount(u *models.User) *pb.Account {
	return &pb.Account{Uid: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}

func (s *GRPCServer) toSession(method string, sess *services.Session) *pb.Session {
	s.metrics.RecordAuth(method, "ok")
	return &pb.Session{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		Account:      toAccount(sess.User),
	}
}

func (s *GRPCServer) SignUp(ctx context.Context, req *pb.SignUpRequest) (*pb.Session, error) {
	sess, err := s.users.Register(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		return nil, s.toStatus(ctx, "sign_up", err)
	}
	s.logger.Info(ctx, "Registered", "user_id", sess.User.ID)
	return s.toSession("sign_up", sess), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *pb.SignInRequest) (*pb.Session, error) {
	sess, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "sign_in", err)
	}
	return s.toSession("sign_in", sess), nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *pb.RefreshRequest) (*pb.Session, error) {
	sess, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, "refresh", err)
	}
	return s.toSession("refresh", sess), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *pb.SignOutRequest) (*pb.Empty, error) {
	if err := s.users.Logout(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, "sign_out", err)
	}
	return &pb.Empty{}, nil
}

func (s *GRPCServer) SendPasswordReset(ctx context.Context, req *pb.PasswordResetRequest) (*pb.Empty, error) {
	if err := s.users.RequestPasswordReset(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, "password_reset", err)
	}
	return &pb.Empty{}, nil
}

func (s *GRPCServer) GetAccount(ctx context.Context, _ *pb.Empty) (*pb.Account, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.CodeInvalidCredential)
	}
	u, err := s.users.Account(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "get_account", err)
	}
	return toAccount(u), nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *pb.Empty) (*pb.PingResponse, error) {
	return &pb.PingResponse{Status: "OK"}, nil
}
