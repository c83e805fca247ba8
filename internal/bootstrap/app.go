package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "farewell-backend/internal/auth"
	"farewell-backend/internal/entitlements"
	"farewell-backend/internal/exports"
	"farewell-backend/internal/orgs"
	"farewell-backend/internal/plans"
	"farewell-backend/internal/settings"
	"farewell-backend/internal/shared/config"
	"farewell-backend/internal/shared/server"
	"farewell-backend/internal/shared/storage/db"
	"farewell-backend/internal/shared/storage/object"
	localstore "farewell-backend/internal/shared/storage/object/local"
	s3store "farewell-backend/internal/shared/storage/object/s3"
	"farewell-backend/internal/users"
)

// planRepo is the full persistence surface a plan store must provide.
type planRepo interface {
	plans.Repo
	plans.AuxCounter
}

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	PlansRepo    planRepo
	SettingsRepo settings.Repo
	OrgsRepo     orgs.Repo
	UsersRepo    users.Repo
	ExportsRepo  exports.Repo

	PlansService        *plans.Service
	Scorer              *plans.Scorer
	Resolver            *plans.Resolver
	ExportsService      *exports.Service
	EntitlementsService *entitlements.Service
	UsersService        *users.Service

	PlansHandler        *plans.Handler
	ExportsHandler      *exports.Handler
	EntitlementsHandler *entitlements.Handler
	UsersHandler        *users.Handler
	GoogleAuth          *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		PlanHandler:        app.PlansHandler,
		ExportHandler:      app.ExportsHandler,
		EntitlementHandler: app.EntitlementsHandler,
		UserHandler:        app.UsersHandler,
		GoogleAuth:         app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var (
		plansRepo    planRepo
		settingsRepo settings.Repo
		orgsRepo     orgs.Repo
		usersRepo    users.Repo
		exportsRepo  exports.Repo
	)

	if app.DB != nil {
		plansRepo = &plans.PGRepo{DB: app.DB}
		settingsRepo = &settings.PGRepo{DB: app.DB}
		orgsRepo = &orgs.PGRepo{DB: app.DB}
		usersRepo = &users.PGRepo{DB: app.DB}
		exportsRepo = &exports.PGRepo{DB: app.DB}
	} else {
		plansRepo = plans.NewMemoryRepo()
		settingsRepo = settings.NewMemoryRepo()
		orgsRepo = orgs.NewMemoryRepo()
		usersRepo = users.NewMemoryRepo()
		exportsRepo = exports.NewMemoryRepo()
	}

	scorer := plans.NewScorer(plansRepo, plansRepo)
	resolver := &plans.Resolver{
		Plans:    plansRepo,
		Settings: settingsRepo,
		Orgs:     orgsRepo,
		Users:    usersRepo,
		Selector: scorer,
	}
	plansSvc := &plans.Service{
		Repo:     plansRepo,
		Resolver: resolver,
		Scorer:   scorer,
	}

	var entitlementsSvc *entitlements.Service
	if app.DB != nil {
		entitlementsSvc = entitlements.NewPostgresService(entitlements.NewPGStore(app.DB))
	} else {
		entitlementsSvc = entitlements.NewService()
	}

	exportsSvc := &exports.Service{
		Repo:         exportsRepo,
		Plans:        plansSvc,
		Entitlements: entitlementsSvc,
		Store:        app.Store,
	}

	usersSvc := users.NewService(usersRepo)
	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		usersSvc,
	)

	app.PlansRepo = plansRepo
	app.SettingsRepo = settingsRepo
	app.OrgsRepo = orgsRepo
	app.UsersRepo = usersRepo
	app.ExportsRepo = exportsRepo
	app.PlansService = plansSvc
	app.Scorer = scorer
	app.Resolver = resolver
	app.ExportsService = exportsSvc
	app.EntitlementsService = entitlementsSvc
	app.UsersService = usersSvc
	app.PlansHandler = plans.NewHandler(plansSvc)
	app.ExportsHandler = exports.NewHandler(exportsSvc)
	app.EntitlementsHandler = entitlements.NewHandler(entitlementsSvc)
	app.UsersHandler = users.NewHandler(usersSvc)
	app.GoogleAuth = googleAuthSvc

	if app.PlansHandler == nil || app.ExportsHandler == nil || app.EntitlementsHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}
