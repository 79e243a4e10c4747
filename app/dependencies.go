package app

import (
	"context"
	"fmt"

	"github.com/taskdeck/taskdeck/config"
	"github.com/taskdeck/taskdeck/middleware"
	"github.com/taskdeck/taskdeck/oauth"
	"github.com/taskdeck/taskdeck/repositories"
	"github.com/taskdeck/taskdeck/repositories/postgres"
	"github.com/taskdeck/taskdeck/services"
	"github.com/taskdeck/taskdeck/token"
	"go.uber.org/zap"
)

// PublicPathPrefixes lists the request path prefixes the authentication
// middleware skips entirely. Signup, login, the federated flow and the
// probes must stay reachable without a token.
var PublicPathPrefixes = []string{
	"/users/signup",
	"/users/login",
	"/oauth2/",
	"/login/oauth2/",
	"/swagger",
	"/healthz",
	"/readyz",
}

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Accounts   repositories.AccountRepository
	Identities repositories.ExternalIdentityRepository
	Tasks      repositories.TaskRepository
	TxManager  repositories.TransactionManager

	// Token codec
	Codec *token.Codec

	// Services
	AccountService    *services.AccountService
	LoginService      *services.LoginService
	ReconcilerService *services.ReconcilerService
	TaskService       *services.TaskService

	// Federated login
	OAuthRegistry *oauth.Registry

	// Auth
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initServices(cfg)
	deps.initAuth(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection, factory and schema
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Accounts = repos.Accounts
	d.Identities = repos.Identities
	d.Tasks = repos.Tasks
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initServices wires the domain services
func (d *Dependencies) initServices(cfg *config.Config) {
	d.Codec = token.NewCodec(cfg.Auth.JWTSecret)
	hasher := services.NewBcryptHasher(0)

	d.AccountService = services.NewAccountService(d.Accounts, hasher, d.Logger)
	d.LoginService = services.NewLoginService(d.Accounts, hasher, d.Codec, cfg.Auth.TokenTTL, d.Logger)
	d.ReconcilerService = services.NewReconcilerService(d.Accounts, d.Identities, d.TxManager, hasher, d.Logger)
	d.TaskService = services.NewTaskService(d.Tasks, d.Logger)

	d.OAuthRegistry = oauth.NewRegistry(cfg.OAuth, d.Logger)

	d.Logger.Info("services initialized")
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Codec, PublicPathPrefixes, d.Logger)
	d.Logger.Info("auth middleware initialized")
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
