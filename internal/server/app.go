// Package server wires budgetkeeper together: it opens and migrates the
// database, builds the domain services and runs the HTTP and gRPC servers
// until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/config"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/services"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/storage"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/budgetkeeper/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.HTTPServer
	grpcServer *gs.GRPCServer
}

// Dialect returns the SQL dialect selected by c.
func Dialect(c *config.Config) dbx.Dialect {
	if c.Postgres() {
		return dbx.DialectPostgres
	}
	return dbx.DialectSQLite
}

// OpenDatabase opens the configured database and applies pending migrations.
func OpenDatabase(ctx context.Context, c *config.Config) (*sql.DB, repomanager.RepositoryManager, error) {
	dsn, err := c.DSN()
	if err != nil {
		return nil, nil, err
	}

	dialect := Dialect(c)
	db, err := dbx.Open(ctx, dialect, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewSQLRepositoryManager(dialect)
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}

	return db, rm, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel)

	db, rm, err := OpenDatabase(ctx, c)
	if err != nil {
		return nil, err
	}

	roles := services.NewRoleService(db, rm)
	if err := roles.EnsureDefaults(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("default roles: %w", err)
	}

	var uploader services.Uploader
	if c.S3Bucket != "" {
		u, err := storage.NewS3Uploader(ctx, c)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		uploader = u
	}

	health := services.NewHealthService(db)
	svc := httpapi.Services{
		Users:       services.NewUserService(db, rm, c),
		Profiles:    services.NewProfileService(db, rm),
		Security:    services.NewSecurityService(db, rm, c),
		Roles:       roles,
		Permissions: services.NewPermissionService(db, rm),
		Auth:        services.NewAuthService(db, rm, c),
		Audit:       services.NewAuditService(db, rm, uploader),
		Health:      health,
	}

	if c.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(svc, httpapi.Options{
		JWTSecret:    []byte(c.SecretKey),
		EnforceRoles: c.EnforceRoles,
	}, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		httpServer: httpapi.NewHTTPServer(c.HTTPAddr, router, c.CORSAllowedOrigins, logger),
		grpcServer: gs.NewGRPCServer(c.GRPCAddr, logger, health, c.SecretKey),
	}, nil
}

// Run serves HTTP and gRPC until ctx is cancelled, a termination signal
// arrives or either server fails. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "env", app.config.Environment, "driver", app.config.DBDriver)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.httpServer.Run(ctx) })
	g.Go(func() error { return app.grpcServer.Run(ctx) })

	err := g.Wait()
	if cerr := app.db.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}

	app.logger.Info(context.Background(), "App stopped")
	return err
}
