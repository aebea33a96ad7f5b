package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/easydrink/internal/client/client"
	"github.com/dmitrijs2005/easydrink/internal/client/models"
	"github.com/dmitrijs2005/easydrink/internal/logging"
)

// AuthService adapts an identity provider to the application: it turns
// accounts into users, provider failures into *common.UserError, and keeps
// the current session observable.
type AuthService struct {
	provider client.Provider
	log      logging.Logger

	// notify serializes deliveries so observers see changes in order.
	notify sync.Mutex

	mu      sync.Mutex
	current *models.User
	known   bool
	nextID  uint64
	subs    map[uint64]*subscription
}

type subscription struct {
	mu     sync.Mutex
	active bool
	fn     func(*models.User)
}

func (s *subscription) deliver(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		s.fn(u)
	}
}

func NewAuthService(provider client.Provider, log logging.Logger) *AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &AuthService{
		provider: provider,
		log:      log,
		subs:     make(map[uint64]*subscription),
	}
}

// emailLocalPart returns the part of email before "@".
func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func userFromAccount(acc *client.Account, name string) *models.User {
	if acc == nil {
		return nil
	}
	u := &models.User{ID: acc.UID, Email: acc.Email, Name: acc.DisplayName}
	if u.Name == "" {
		u.Name = name
	}
	if u.Name == "" {
		u.Name = emailLocalPart(acc.Email)
	}
	return u
}

func sameAccount(a, b *models.User) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}

// publish records u as the current session and tells every observer.
func (a *AuthService) publish(u *models.User) {
	a.notify.Lock()
	defer a.notify.Unlock()

	a.mu.Lock()
	a.current = u
	a.known = true
	subs := make([]*subscription, 0, len(a.subs))
	for _, s := range a.subs {
		subs = append(subs, s)
	}
	a.mu.Unlock()

	for _, s := range subs {
		s.deliver(u)
	}
}

func (a *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	acc, err := a.provider.SignUp(ctx, email, password, name)
	if err != nil {
		a.log.Warn(ctx, "sign up failed", "code", client.CodeOf(err), "error", err)
		return nil, translateError(err)
	}

	u := userFromAccount(acc, name)
	a.log.Info(ctx, "user registered", "user", u.ID)
	a.publish(u)
	return u, nil
}

func (a *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	acc, err := a.provider.SignIn(ctx, email, password)
	if err != nil {
		a.log.Warn(ctx, "sign in failed", "code", client.CodeOf(err), "error", err)
		return nil, translateError(err)
	}

	u := userFromAccount(acc, "")
	a.log.Info(ctx, "user signed in", "user", u.ID)
	a.publish(u)
	return u, nil
}

func (a *AuthService) Logout(ctx context.Context) error {
	if err := a.provider.SignOut(ctx); err != nil {
		a.log.Warn(ctx, "sign out failed", "error", err)
		return logoutError(err)
	}
	a.publish(nil)
	return nil
}

func (a *AuthService) ResetPassword(ctx context.Context, email string) error {
	if err := a.provider.SendPasswordReset(ctx, email); err != nil {
		a.log.Warn(ctx, "password reset failed", "code", client.CodeOf(err), "error", err)
		return translateError(err)
	}
	return nil
}

// CurrentUser returns the last published session, or nil.
func (a *AuthService) CurrentUser() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// ObserveSession registers fn. fn is called with the current session as soon
// as it is known (immediately, once Restore has run) and again on every
// change. The returned function unsubscribes; it may be called any number of
// times, and once it returns fn is not called again. fn must not call it.
func (a *AuthService) ObserveSession(fn func(*models.User)) (unsubscribe func()) {
	sub := &subscription{active: true, fn: fn}

	a.notify.Lock()
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = sub
	known, current := a.known, a.current
	a.mu.Unlock()
	if known {
		sub.deliver(current)
	}
	a.notify.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs, id)
			a.mu.Unlock()

			sub.mu.Lock()
			sub.active = false
			sub.mu.Unlock()
		})
	}
}

// Restore derives the initial session from the provider's persisted state.
// Observers are notified even when it fails, with no user.
func (a *AuthService) Restore(ctx context.Context) error {
	acc, err := a.provider.CurrentAccount(ctx)
	if err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
		a.publish(nil)
		return translateError(err)
	}

	u := userFromAccount(acc, "")
	if u != nil {
		a.log.Info(ctx, "session restored", "user", u.ID)
	}
	a.publish(u)
	return nil
}

// WatchSession polls the provider every interval and publishes when the
// session appeared, ended or switched account. It returns when ctx is done.
func (a *AuthService) WatchSession(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.checkSession(ctx)
		}
	}
}

func (a *AuthService) checkSession(ctx context.Context) {
	acc, err := a.provider.CurrentAccount(ctx)
	if err != nil {
		a.log.Debug(ctx, "session check failed", "error", err)
		return
	}

	next := userFromAccount(acc, "")
	if sameAccount(a.CurrentUser(), next) {
		return
	}
	a.log.Info(ctx, "session changed", "signed_in", next != nil)
	a.publish(next)
}

// Close releases the provider.
func (a *AuthService) Close() error {
	return a.provider.Close()
}
