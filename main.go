package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/K-sous4/scarf-store/cache"
	"github.com/K-sous4/scarf-store/config"
	"github.com/K-sous4/scarf-store/controllers"
	"github.com/K-sous4/scarf-store/csrf"
	"github.com/K-sous4/scarf-store/database"
	"github.com/K-sous4/scarf-store/middleware"
	"github.com/K-sous4/scarf-store/repositories"
	"github.com/K-sous4/scarf-store/services"
	"github.com/K-sous4/scarf-store/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg)

	// Initialize database and run migrations
	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	// Connect to Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid REDIS_URL")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	cancel()

	// Redis-backed stores
	sessions := session.NewStore(redisClient, cfg.SessionTTL, cfg.StoreTimeout)
	csrfTokens := csrf.NewStore(redisClient, cfg.CSRFTTL, cfg.StoreTimeout)
	filterCache := cache.New(redisClient, cache.DefaultTTL, log)

	// Initialize repositories
	repos := repositories.NewRepositories(db)

	// Initialize services
	srvs := services.NewServices(repos, sessions, csrfTokens, filterCache, cfg.AuditBufferSize, log)
	defer srvs.Audit.Close()

	// Initialize controllers
	ctrl := controllers.NewControllers(srvs, cfg, log)

	// Authentication gate for protected routes
	gate := middleware.NewAuthGate(sessions, repos.Users, log)

	r := setupRouter(ctrl, gate, srvs, csrfTokens, sessions, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for shutdown signal, then drain in-flight requests and flush the
	// audit queue.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

// newLogger builds the application logger from configuration.
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.LogFormat == "console" || cfg.IsDevelopment() {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stderr)
	}

	return log.Level(level).With().Timestamp().Logger()
}

// setupRouter configures the middleware pipeline and all routes. Middleware
// order matters: the audit logger wraps everything so it observes the final
// status of each exchange, including recovered panics.
func setupRouter(
	ctrl *controllers.Controllers,
	gate *middleware.AuthGate,
	srvs *services.Services,
	csrfTokens *csrf.Store,
	sessions *session.Store,
	log zerolog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.AuditLogger(srvs.Audit, log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CSRFValidator(csrfTokens, log))
	r.Use(middleware.SessionRefresher(sessions, log))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"healthy","service":"scarf-store"}`)
	})
	r.Get("/ping", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"message":"pong"}`)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// PUBLIC ROUTES (no authentication required)
		r.Post("/auth/sign-in", ctrl.Auth.SignIn)
		r.Post("/auth/login", ctrl.Auth.Login)
		r.Post("/auth/logout", ctrl.Auth.Logout)

		r.Get("/products", ctrl.Products.List)
		r.Get("/products/{id}", ctrl.Products.Get)

		r.Get("/parameters/categories", ctrl.Parameters.ListCategories)
		r.Get("/parameters/colors", ctrl.Parameters.ListColors)
		r.Get("/parameters/materials", ctrl.Parameters.ListMaterials)

		// PROTECTED ROUTES (authentication required)
		r.Group(func(r chi.Router) {
			r.Use(gate.RequireAuth)

			r.Get("/auth/profile", ctrl.Auth.Profile)
			r.Get("/users/me", ctrl.Users.Me)
			r.Put("/users/me", ctrl.Users.UpdateMe)
		})

		// ADMIN ROUTES (admin role required)
		r.Route("/admin", func(r chi.Router) {
			r.Use(gate.RequireAdmin)

			r.Get("/users", ctrl.Users.List)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", ctrl.Products.AdminList)
				r.Get("/low-stock", ctrl.Products.LowStock)
				r.Get("/{id}", ctrl.Products.AdminGet)
				r.Post("/", ctrl.Products.Create)
				r.Put("/{id}", ctrl.Products.Update)
				r.Delete("/{id}", ctrl.Products.Delete)
				r.Post("/{id}/stock", ctrl.Products.AdjustStock)
			})

			r.Route("/parameters", func(r chi.Router) {
				r.Post("/categories", ctrl.Parameters.CreateCategory)
				r.Put("/categories/{id}", ctrl.Parameters.UpdateCategory)
				r.Delete("/categories/{id}", ctrl.Parameters.DeleteCategory)

				r.Post("/colors", ctrl.Parameters.CreateColor)
				r.Put("/colors/{id}", ctrl.Parameters.UpdateColor)
				r.Delete("/colors/{id}", ctrl.Parameters.DeleteColor)

				r.Post("/materials", ctrl.Parameters.CreateMaterial)
				r.Put("/materials/{id}", ctrl.Parameters.UpdateMaterial)
				r.Delete("/materials/{id}", ctrl.Parameters.DeleteMaterial)
			})
		})
	})

	return r
}
