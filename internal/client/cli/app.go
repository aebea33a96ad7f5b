package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/easydrink/internal/client/catalog"
	"github.com/dmitrijs2005/easydrink/internal/client/client"
	"github.com/dmitrijs2005/easydrink/internal/client/config"
	"github.com/dmitrijs2005/easydrink/internal/client/firebase"
	"github.com/dmitrijs2005/easydrink/internal/client/models"
	"github.com/dmitrijs2005/easydrink/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/easydrink/internal/client/repositories/objects"
	"github.com/dmitrijs2005/easydrink/internal/client/repositories/rediskv"
	"github.com/dmitrijs2005/easydrink/internal/client/services"
	"github.com/dmitrijs2005/easydrink/internal/logging"
)

type authAPI interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
}

type favoritesAPI interface {
	Favorites(ctx context.Context) ([]models.Drink, error)
	Add(ctx context.Context, drink models.Drink) error
	Remove(ctx context.Context, idDrink string) error
	IsFavorite(ctx context.Context, idDrink string) (bool, error)
}

type catalogAPI interface {
	RandomDrinks(ctx context.Context, count int) *catalog.RandomBatch
	SearchDrinks(ctx context.Context, term string) ([]models.Drink, error)
	DrinkByID(ctx context.Context, id string) (*models.DrinkDetail, error)
}

type App struct {
	config    *config.Config
	log       logging.Logger
	authSvc   *services.AuthService
	auth      authAPI
	session   services.UserSource
	store     *services.SessionStore
	favorites favoritesAPI
	catalog   catalogAPI
	reader    *bufio.Reader
	out       io.Writer
	closers   []func() error
}

func newProvider(ctx context.Context, c *config.Config, repo metadata.Repository) (client.Provider, error) {
	switch c.IdentityProvider {
	case config.ProviderFirebase:
		p, err := firebase.New(ctx, firebase.Settings{APIKey: c.FirebaseAPIKey}, client.NewTokenStore(repo, config.ProviderFirebase))
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderServer, "":
		p, err := client.NewGRPCClient(c.ServerEndpointAddr, client.NewTokenStore(repo, config.ProviderServer))
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown identity provider %q", c.IdentityProvider)
	}
}

func (a *App) newFavoritesStore(ctx context.Context, repo metadata.Repository) (services.KeyValueStore, error) {
	c := a.config
	switch c.FavoritesBackend {
	case config.BackendS3:
		r, err := objects.NewS3Repository(ctx, objects.Settings{
			AccessKey:    c.S3.AccessKey,
			SecretKey:    c.S3.SecretKey,
			Bucket:       c.S3.Bucket,
			Region:       c.S3.Region,
			BaseEndpoint: c.S3.Endpoint,
			Prefix:       c.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.BackendRedis:
		r, err := rediskv.New(c.RedisURL, "easydrink:")
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, r.Close)
		return r, nil
	case config.BackendSQLite, "":
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown favorites backend %q", c.FavoritesBackend)
	}
}

// NewApp opens the local database and builds the services named by c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	a := &App{config: c, log: log, reader: bufio.NewReader(os.Stdin), out: os.Stdout}

	db, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	if err := a.wire(ctx, db); err != nil {
		_ = a.close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context, db *sql.DB) error {
	repo := metadata.NewSQLiteRepository(db)

	provider, err := newProvider(ctx, a.config, repo)
	if err != nil {
		return err
	}
	a.authSvc = services.NewAuthService(provider, a.log.With("component", "auth"))
	a.closers = append(a.closers, a.authSvc.Close)
	a.auth = a.authSvc

	a.store = services.NewSessionStore()
	a.store.Bind(a.authSvc.ObserveSession)
	a.session = a.store

	kv, err := a.newFavoritesStore(ctx, repo)
	if err != nil {
		return err
	}
	a.favorites = services.NewFavoritesService(kv, a.store, a.log.With("component", "favorites"))
	a.catalog = catalog.New(a.config.CatalogBaseURL, nil, a.log.With("component", "catalog"))
	return nil
}

func (a *App) close() error {
	if a.store != nil {
		a.store.Close()
	}
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// Run restores the session, starts the session watcher and blocks in the
// REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.close(); err != nil {
			a.log.Warn(ctx, "shutdown", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := a.authSvc.Restore(ctx); err != nil {
			a.log.Warn(ctx, "restore session", "error", err)
		}
		a.authSvc.WatchSession(ctx, a.config.SessionCheckInterval)
	}()

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session != nil && a.session.CurrentUser() != nil
}
