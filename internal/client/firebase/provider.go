// Package firebase is an identity Provider backed by Firebase Authentication
// (Google Identity Toolkit). Sessions are kept in the local metadata store
// and renewed through the Secure Token endpoint.
package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/easydrink/internal/client/client"
	"github.com/dmitrijs2005/easydrink/internal/common"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

const defaultTokenEndpoint = "https://securetoken.googleapis.com/v1/token"

// Settings configures the provider. Endpoint and TokenEndpoint are only set
// for emulators and tests.
type Settings struct {
	APIKey        string
	Endpoint      string
	TokenEndpoint string
	HTTPClient    *http.Client
}

type Provider struct {
	api           *identitytoolkit.RelyingpartyService
	apiKey        string
	tokenEndpoint string
	httpClient    *http.Client
	tokens        *client.TokenStore
	now           func() time.Time
}

// reasons maps Identity Toolkit error reasons to provider codes.
var reasons = map[string]string{
	"EMAIL_EXISTS":                common.CodeEmailAlreadyInUse,
	"INVALID_EMAIL":               common.CodeInvalidEmail,
	"MISSING_EMAIL":               common.CodeInvalidEmail,
	"OPERATION_NOT_ALLOWED":       common.CodeOperationNotAllowed,
	"PASSWORD_LOGIN_DISABLED":     common.CodeOperationNotAllowed,
	"WEAK_PASSWORD":               common.CodeWeakPassword,
	"USER_DISABLED":               common.CodeUserDisabled,
	"EMAIL_NOT_FOUND":             common.CodeUserNotFound,
	"USER_NOT_FOUND":              common.CodeUserNotFound,
	"INVALID_PASSWORD":            common.CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":   common.CodeInvalidCredential,
	"INVALID_ID_TOKEN":            common.CodeInvalidCredential,
	"TOKEN_EXPIRED":               common.CodeInvalidCredential,
	"INVALID_REFRESH_TOKEN":       common.CodeInvalidCredential,
	"TOO_MANY_ATTEMPTS_TRY_LATER": common.CodeTooManyRequests,
}

func New(ctx context.Context, s Settings, tokens *client.TokenStore) (*Provider, error) {
	if s.APIKey == "" {
		return nil, errors.New("firebase: api key is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(s.APIKey)}
	if s.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.Endpoint))
	}
	if s.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(s.HTTPClient))
	}

	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: %w", err)
	}

	p := &Provider{
		api:           svc.Relyingparty,
		apiKey:        s.APIKey,
		tokenEndpoint: s.TokenEndpoint,
		httpClient:    s.HTTPClient,
		tokens:        tokens,
		now:           time.Now,
	}
	if p.tokenEndpoint == "" {
		p.tokenEndpoint = defaultTokenEndpoint
	}
	if p.httpClient == nil {
		p.httpClient = http.DefaultClient
	}
	return p, nil
}

func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) (*client.Account, error) {
	resp, err := p.api.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}

	acc := &client.Account{UID: resp.LocalId, Email: resp.Email, DisplayName: resp.DisplayName}
	if acc.Email == "" {
		acc.Email = email
	}
	if acc.DisplayName == "" {
		acc.DisplayName = displayName
	}
	return acc, p.save(ctx, resp.IdToken, resp.RefreshToken, acc)
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*client.Account, error) {
	resp, err := p.api.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}

	acc := &client.Account{UID: resp.LocalId, Email: resp.Email, DisplayName: resp.DisplayName}
	if acc.Email == "" {
		acc.Email = email
	}
	return acc, p.save(ctx, resp.IdToken, resp.RefreshToken, acc)
}

// SignOut only forgets the local session; Firebase has no server-side sign-out.
func (p *Provider) SignOut(ctx context.Context) error {
	return p.tokens.Clear(ctx)
}

func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	_, err := p.api.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		Email:       email,
		RequestType: "PASSWORD_RESET",
	}).Context(ctx).Do()
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (p *Provider) CurrentAccount(ctx context.Context) (*client.Account, error) {
	sess, err := p.tokens.Load(ctx)
	if err != nil || sess == nil {
		return nil, err
	}

	if client.TokenExpired(sess.AccessToken, p.now()) {
		renewed, err := p.refresh(ctx, sess.RefreshToken)
		if err != nil {
			if errors.Is(err, client.ErrUnavailable) {
				return sess.Account, nil
			}
			return nil, p.tokens.Clear(ctx)
		}
		sess.AccessToken = renewed.IDToken
		if renewed.RefreshToken != "" {
			sess.RefreshToken = renewed.RefreshToken
		}
		if err := p.tokens.Save(ctx, sess); err != nil {
			return nil, err
		}
	}

	info, err := p.api.GetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		IdToken: sess.AccessToken,
	}).Context(ctx).Do()
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, client.ErrUnavailable) {
			return sess.Account, nil
		}
		if errors.Is(mapped, client.ErrUnauthorized) {
			return nil, p.tokens.Clear(ctx)
		}
		return nil, mapped
	}
	if len(info.Users) == 0 || info.Users[0].Disabled {
		return nil, p.tokens.Clear(ctx)
	}

	u := info.Users[0]
	return &client.Account{UID: u.LocalId, Email: u.Email, DisplayName: u.DisplayName}, nil
}

func (p *Provider) Close() error {
	return nil
}

func (p *Provider) save(ctx context.Context, idToken, refreshToken string, acc *client.Account) error {
	return p.tokens.Save(ctx, &client.StoredSession{AccessToken: idToken, RefreshToken: refreshToken, Account: acc})
}

type tokenResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

type tokenError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// refresh exchanges a refresh token for a new ID token.
func (p *Provider) refresh(ctx context.Context, refreshToken string) (*tokenResponse, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	endpoint := p.tokenEndpoint + "?key=" + url.QueryEscape(p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, client.NetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var te tokenError
		_ = json.NewDecoder(resp.Body).Decode(&te)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, client.NetworkError(fmt.Errorf("token endpoint: %s", resp.Status))
		}
		return nil, reasonError(te.Error.Message, fmt.Errorf("token endpoint: %s", resp.Status))
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &out, nil
}

// reasonError builds a ProviderError from an Identity Toolkit reason such as
// "WEAK_PASSWORD : Password should be at least 6 characters".
func reasonError(message string, cause error) *client.ProviderError {
	reason, detail, _ := strings.Cut(message, " : ")
	reason = strings.TrimSpace(reason)

	code, ok := reasons[reason]
	if !ok {
		return &client.ProviderError{Code: reason, Message: strings.TrimSpace(detail), Err: cause}
	}

	pe := &client.ProviderError{Code: code, Err: cause}
	switch code {
	case common.CodeUserDisabled, common.CodeUserNotFound, common.CodeWrongPassword, common.CodeInvalidCredential:
		pe.Err = errors.Join(client.ErrUnauthorized, cause)
	}
	return pe
}

func mapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code >= http.StatusInternalServerError {
			return client.NetworkError(err)
		}
		return reasonError(gerr.Message, err)
	}

	var nerr net.Error
	var uerr *url.Error
	if errors.As(err, &nerr) || errors.As(err, &uerr) {
		return client.NetworkError(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return client.NetworkError(err)
	}
	return &client.ProviderError{Code: common.CodeInternalError, Message: err.Error(), Err: err}
}
