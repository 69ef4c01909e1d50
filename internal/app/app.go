package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"taskManager/internal/auth"
	"taskManager/internal/config"
	"taskManager/internal/database"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	taskrepo "taskManager/internal/repository/task/relational"
	userrepo "taskManager/internal/repository/user/relational"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/afero"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// uploads may carry several images plus multipart framing
const uploadRequestOverhead = 1 << 20

type App struct {
	config    *config.Config
	fs        afero.Fs
	db        *database.DB
	server    *http.Server
	router    *chi.Mux
	shutdowns []func() error
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		fs:        afero.NewOsFs(),
		shutdowns: make([]func() error, 0),
	}
}

// Init connects to the database, applies migrations when configured and
// builds the HTTP router. The logger must already be initialised.
func (a *App) Init(ctx context.Context) error {
	db, err := database.Open(ctx, a.config.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = db
	a.shutdowns = append(a.shutdowns, db.Close)

	if a.config.Database.AutoMigrate {
		if err := db.MigrateUp(); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	tasks := taskrepo.New(db.Gorm)
	users := userrepo.NewUserStorage(db.Gorm)
	externalUsers := userrepo.NewExternalUserStorage(db.Gorm)

	tokens := auth.NewTokenManager(a.config.Auth.JWTSecret, a.config.Auth.Issuer, a.config.Auth.TokenTTL)
	passwords := auth.NewPasswordManager(0)

	verifier, err := a.verifier(tokens)
	if err != nil {
		return err
	}

	if a.config.Seed.Demo {
		if err := service.SeedDemo(ctx, users, tasks, passwords); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	a.router = a.routes(
		auth.NewResolver(verifier),
		handlers.NewTaskHandler(service.NewTaskService(tasks)),
		handlers.NewAuthHandler(service.NewAuthService(users, passwords, tokens)),
		handlers.NewExternalUserHandler(service.NewExternalUserService(externalUsers)),
		handlers.NewFileHandler(
			service.NewImageService(a.fs, a.config.Upload),
			a.config.Upload.MaxFileSize*10+uploadRequestOverhead,
		),
	)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, "taskmanager"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		ErrorLog:     logger.StdLog("http"),
	}
	return nil
}

// verifier accepts the tokens this server issues and, when a provider key
// is configured, provider-issued RS256 tokens as well.
func (a *App) verifier(tokens *auth.TokenManager) (auth.Verifier, error) {
	if a.config.Auth.Mode == config.AuthModeUnverified {
		logger.Warn("App: token signatures are NOT verified, use only for local development",
			zap.String("auth_mode", a.config.Auth.Mode))
		return auth.UnverifiedVerifier{}, nil
	}

	chain := auth.ChainVerifier{tokens.Verifier()}
	if path := a.config.Auth.ExternalPublicKeyFile; path != "" {
		pem, err := afero.ReadFile(a.fs, path)
		if err != nil {
			return nil, fmt.Errorf("read external public key: %w", err)
		}
		rsa, err := auth.NewRSAVerifier(pem, a.config.Auth.ExternalIssuer)
		if err != nil {
			return nil, fmt.Errorf("parse external public key: %w", err)
		}
		chain = append(chain, rsa)
		logger.Info("App: external identity provider enabled", zap.String("key_file", path))
	}
	return chain, nil
}

func (a *App) routes(
	resolver *auth.Resolver,
	taskHandler *handlers.TaskHandler,
	authHandler *handlers.AuthHandler,
	externalUserHandler *handlers.ExternalUserHandler,
	fileHandler *handlers.FileHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RateLimit(a.config.RateLimit.RequestsPerMinute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if a.config.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(a.config.Server.RequestTimeout))
	}
	r.Use(middleware.Authenticate(resolver))

	r.Get("/health", taskHandler.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)       // POST /api/auth/login
			r.Post("/register", authHandler.Register) // POST /api/auth/register
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(middleware.RequireIdentity)

			r.Get("/", taskHandler.ListTasks)   // GET /api/tasks?userEmail=
			r.Post("/", taskHandler.CreateTask) // POST /api/tasks

			r.Get("/status/{status}", taskHandler.TasksByStatus) // GET /api/tasks/status/{status}
			r.Get("/stats/summary", taskHandler.Stats)           // GET /api/tasks/stats/summary

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)       // GET /api/tasks/{id}
				r.Put("/", taskHandler.UpdateTask)    // PUT /api/tasks/{id}
				r.Delete("/", taskHandler.DeleteTask) // DELETE /api/tasks/{id}

				r.Post("/share", taskHandler.ShareTask) // POST /api/tasks/{id}/share
			})
		})

		r.Route("/external-users", func(r chi.Router) {
			r.Get("/", externalUserHandler.List)         // GET /api/external-users?search=
			r.Post("/", externalUserHandler.Create)      // POST /api/external-users
			r.Get("/active", externalUserHandler.Active) // GET /api/external-users/active

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", externalUserHandler.Get)
				r.Put("/", externalUserHandler.Update)
				r.Delete("/", externalUserHandler.Delete)
			})
		})

		r.Route("/files", func(r chi.Router) {
			r.Post("/upload", fileHandler.Upload)                   // POST /api/files/upload
			r.Get("/images/{filename}", fileHandler.GetImage)       // GET /api/files/images/{filename}
			r.Delete("/images/{filename}", fileHandler.DeleteImage) // DELETE /api/files/images/{filename}
		})
	})

	return r
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close releases everything Init acquired, newest first.
func (a *App) Close() error {
	var err error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i]())
	}
	a.shutdowns = nil
	return err
}

// Migrate applies ("up") or reverts ("down") the schema without starting
// the server.
func Migrate(ctx context.Context, cfg *config.Config, direction string) (err error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, db.Close())
	}()

	switch direction {
	case "up":
		return db.MigrateUp()
	case "down":
		return db.MigrateDown()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
}
