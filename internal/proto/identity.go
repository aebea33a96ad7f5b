// Package proto describes the EasyDrink identity gRPC service.
//
// The service descriptor is maintained by hand. Messages travel on the wire as
// google.protobuf.Struct, so the default proto codec is used and no code
// generation step is needed; the typed Go messages below are converted at the
// edges with protojson.
package proto

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const IdentityServiceName = "easydrink.identity.v1.IdentityService"

const (
	IdentityService_SignUp_FullMethodName            = "/" + IdentityServiceName + "/SignUp"
	IdentityService_SignIn_FullMethodName            = "/" + IdentityServiceName + "/SignIn"
	IdentityService_Refresh_FullMethodName           = "/" + IdentityServiceName + "/Refresh"
	IdentityService_SignOut_FullMethodName           = "/" + IdentityServiceName + "/SignOut"
	IdentityService_SendPasswordReset_FullMethodName = "/" + IdentityServiceName + "/SendPasswordReset"
	IdentityService_GetAccount_FullMethodName        = "/" + IdentityServiceName + "/GetAccount"
	IdentityService_Ping_FullMethodName              = "/" + IdentityServiceName + "/Ping"
)

type Empty struct{}

type Account struct {
	Uid         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	Account      *Account `json:"account,omitempty"`
}

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PingResponse struct {
	Status string `json:"status"`
}

// Encode converts a typed message into its wire form.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return out, nil
}

// Decode fills v from a wire message. Unknown fields are ignored.
func Decode(in *structpb.Struct, v any) error {
	b, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

// IdentityServiceServer is implemented by the identity server.
type IdentityServiceServer interface {
	SignUp(context.Context, *SignUpRequest) (*Session, error)
	SignIn(context.Context, *SignInRequest) (*Session, error)
	Refresh(context.Context, *RefreshRequest) (*Session, error)
	SignOut(context.Context, *SignOutRequest) (*Empty, error)
	SendPasswordReset(context.Context, *PasswordResetRequest) (*Empty, error)
	GetAccount(context.Context, *Empty) (*Account, error)
	Ping(context.Context, *Empty) (*PingResponse, error)
}

func unaryHandler[Req, Resp any](fullMethod string, call func(IdentityServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		req := new(Req)
		if err := Decode(in, req); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}

		handler := func(ctx context.Context, r any) (any, error) {
			resp, err := call(srv.(IdentityServiceServer), ctx, r.(*Req))
			if err != nil {
				return nil, err
			}
			return Encode(resp)
		}
		if interceptor == nil {
			return handler(ctx, req)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, req, info, handler)
	}
}

var IdentityService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: IdentityServiceName,
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignUp", Handler: unaryHandler(IdentityService_SignUp_FullMethodName, IdentityServiceServer.SignUp)},
		{MethodName: "SignIn", Handler: unaryHandler(IdentityService_SignIn_FullMethodName, IdentityServiceServer.SignIn)},
		{MethodName: "Refresh", Handler: unaryHandler(IdentityService_Refresh_FullMethodName, IdentityServiceServer.Refresh)},
		{MethodName: "SignOut", Handler: unaryHandler(IdentityService_SignOut_FullMethodName, IdentityServiceServer.SignOut)},
		{MethodName: "SendPasswordReset", Handler: unaryHandler(IdentityService_SendPasswordReset_FullMethodName, IdentityServiceServer.SendPasswordReset)},
		{MethodName: "GetAccount", Handler: unaryHandler(IdentityService_GetAccount_FullMethodName, IdentityServiceServer.GetAccount)},
		{MethodName: "Ping", Handler: unaryHandler(IdentityService_Ping_FullMethodName, IdentityServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "easydrink/identity/v1/identity.proto",
}

func RegisterIdentityServiceServer(s grpc.ServiceRegistrar, srv IdentityServiceServer) {
	s.RegisterService(&IdentityService_ServiceDesc, srv)
}

// IdentityServiceClient is the client API for IdentityService.
type IdentityServiceClient interface {
	SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*Session, error)
	SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*Session, error)
	Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*Session, error)
	SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*Empty, error)
	SendPasswordReset(ctx context.Context, in *PasswordResetRequest, opts ...grpc.CallOption) (*Empty, error)
	GetAccount(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Account, error)
	Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error)
}

type identityServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewIdentityServiceClient(cc grpc.ClientConnInterface) IdentityServiceClient {
	return &identityServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	req, err := Encode(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, method, req, out, opts...); err != nil {
		return nil, err
	}
	resp := new(Resp)
	if err := Decode(out, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *identityServiceClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, IdentityService_SignUp_FullMethodName, in, opts...)
}

func (c *identityServiceClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, IdentityService_SignIn_FullMethodName, in, opts...)
}

func (c *identityServiceClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, IdentityService_Refresh_FullMethodName, in, opts...)
}

func (c *identityServiceClient) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, IdentityService_SignOut_FullMethodName, in, opts...)
}

func (c *identityServiceClient) SendPasswordReset(ctx context.Context, in *PasswordResetRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, IdentityService_SendPasswordReset_FullMethodName, in, opts...)
}

func (c *identityServiceClient) GetAccount(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, IdentityService_GetAccount_FullMethodName, in, opts...)
}

func (c *identityServiceClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, IdentityService_Ping_FullMethodName, in, opts...)
}
