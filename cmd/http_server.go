package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/valcriss/sovrane/internal"
	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/auth"
	"github.com/valcriss/sovrane/internal/core/events"
	"github.com/valcriss/sovrane/internal/department"
	departmentPG "github.com/valcriss/sovrane/internal/department/postgres"
	"github.com/valcriss/sovrane/internal/permission"
	permissionPG "github.com/valcriss/sovrane/internal/permission/postgres"
	"github.com/valcriss/sovrane/internal/role"
	rolePG "github.com/valcriss/sovrane/internal/role/postgres"
	"github.com/valcriss/sovrane/internal/site"
	sitePG "github.com/valcriss/sovrane/internal/site/postgres"
	"github.com/valcriss/sovrane/internal/transport/rest"
	"github.com/valcriss/sovrane/internal/transport/swagger"
	"github.com/valcriss/sovrane/internal/user"
	userPG "github.com/valcriss/sovrane/internal/user/postgres"
	"github.com/valcriss/sovrane/internal/usergroup"
	usergroupPG "github.com/valcriss/sovrane/internal/usergroup/postgres"
	"github.com/valcriss/sovrane/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		lg.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		lg.Error("failed to access database handle", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, sqlDB, buildHandlers(cfg, db, lg), cfg.Server.AllowedOrigins, lg)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	lg.Info("starting HTTP server", "address", addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("server shutdown error", "error", err)
		}
		if err := sqlDB.Close(); err != nil {
			lg.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			lg.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	lg.Info("server stopped")
}

// buildHandlers wires repositories, services and handlers. Every service
// shares one resolver and one event bus.
func buildHandlers(cfg *internal.Config, db *gorm.DB, lg *slog.Logger) rest.Handlers {
	resolver := accesscontrol.NewResolver(lg)
	bus := events.NewEventBus(lg)

	userRepo := userPG.NewUserRepository(db)
	siteRepo := sitePG.NewSiteRepository(db)
	departmentRepo := departmentPG.NewDepartmentRepository(db)
	groupRepo := usergroupPG.NewUserGroupRepository(db)
	permissionRepo := permissionPG.NewPermissionRepository(db)
	roleRepo := rolePG.NewRoleRepository(db)

	userService := user.NewService(userRepo, resolver, cfg.Security.BCryptCost, lg)
	siteService := site.NewService(siteRepo, userRepo, departmentRepo, resolver, lg)
	departmentService := department.NewService(departmentRepo, userRepo, permissionRepo, resolver, lg)
	groupService := usergroup.NewService(groupRepo, userRepo, resolver, lg)
	permissionService := permission.NewService(permissionRepo, resolver, lg)
	roleService := role.NewService(roleRepo, resolver, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(userRepo, tokenGen)

	handlers := rest.Handlers{
		Auth: auth.NewHandler(authService),
		User: user.NewHandler(userService, bus, func(r *http.Request) (*user.User, bool) {
			return auth.ActorFromContext(r.Context())
		}),
		Department: department.NewHandler(departmentService, bus),
		Site:       site.NewHandler(siteService, bus),
		Group:      usergroup.NewHandler(groupService, bus),
		Permission: permission.NewHandler(permissionService, bus),
		Role:       role.NewHandler(roleService, bus),
	}

	if cfg.Server.OpenAPIPath != "" {
		specHandler, err := swagger.SpecHandler(context.Background(), cfg.Server.OpenAPIPath)
		if err != nil {
			lg.Warn("openapi document unavailable, docs routes disabled", "error", err)
		} else {
			handlers.OpenAPISpec = specHandler
		}
	}

	return handlers
}

func initDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(gormPostgres.Open(cfg.Source), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access db handle: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
