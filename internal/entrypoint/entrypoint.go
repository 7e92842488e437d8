package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/neighborhood-library/api-service/internal/config"
	"github.com/neighborhood-library/api-service/internal/database"
	"github.com/neighborhood-library/api-service/internal/database/books"
	"github.com/neighborhood-library/api-service/internal/database/borrowings"
	"github.com/neighborhood-library/api-service/internal/database/members"
	"github.com/neighborhood-library/api-service/internal/database/stats"
	"github.com/neighborhood-library/api-service/internal/database/subscriptions"
	"github.com/neighborhood-library/api-service/internal/database/testimonials"
	"github.com/neighborhood-library/api-service/internal/database/users"
	http_controllers "github.com/neighborhood-library/api-service/internal/http"
	"github.com/neighborhood-library/api-service/internal/reminder"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown signal received, waiting up to %v", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the database pools, repositories, routes and background jobs,
// then serves until shutdown.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting neighborhood-library API v%s", version)

	if cfg.Auth.JWTSecret == "" {
		log.Fatalf("JWT_SECRET is not set")
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	booksRepo := books.NewRepository(db)
	membersRepo := members.NewRepository(db)
	borrowingsRepo := borrowings.NewRepository(db)
	usersRepo := users.NewRepository(db)
	testimonialsRepo := testimonials.NewRepository(db)
	subscriptionsRepo := subscriptions.NewRepository(db)
	statsRepo := stats.NewRepository(db)

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Config:  cfg,
		DB:      db,
		Version: version,

		Books:         booksRepo,
		Members:       membersRepo,
		Borrowings:    borrowingsRepo,
		Users:         usersRepo,
		Testimonials:  testimonialsRepo,
		Subscriptions: subscriptionsRepo,
		Stats:         statsRepo,
	})

	reminderScheduler := reminder.NewScheduler(borrowingsRepo, reminder.NewMailer(cfg.Reminder), cfg.Reminder)
	if err := reminderScheduler.Start(context.Background()); err != nil {
		log.Printf("WARNING: reminder scheduler failed to start: %v", err)
	}

	Serve(router, cfg, func(ctx context.Context) {
		reminderScheduler.Stop()
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database pools: %v", err)
		}
	})
}
