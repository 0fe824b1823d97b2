package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/coreybb/locallibrary/api"
	"github.com/coreybb/locallibrary/auth"
	"github.com/coreybb/locallibrary/circulation"
	"github.com/coreybb/locallibrary/datastore"
	"github.com/coreybb/locallibrary/delivery"
	rh "github.com/coreybb/locallibrary/route-handlers"
	"github.com/coreybb/locallibrary/scheduler"
)

const (
	dbPingTimeout     = 5 * time.Second
	shutdownTimeout   = 15 * time.Second
	bootstrapTimeout  = 10 * time.Second
	dbMaxOpenConns    = 25
	dbMaxIdleConns    = 25
	dbConnMaxLifetime = 5 * time.Minute
)

// catalogCounts serves the home page counts from several repositories.
type catalogCounts struct {
	*datastore.BookRepository
	*datastore.BookCopyRepository
	*datastore.AuthorRepository
	*datastore.GenreRepository
}

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := setupDatabase(cfg.databaseURL)
	if err != nil {
		log.Fatalf("Database setup failed: %v", err)
	}
	defer db.Close()

	genreRepo := datastore.NewGenreRepository(db)
	languageRepo := datastore.NewLanguageRepository(db)
	authorRepo := datastore.NewAuthorRepository(db)
	bookRepo := datastore.NewBookRepository(db)
	copyRepo := datastore.NewBookCopyRepository(db)
	userRepo := datastore.NewUserRepository(db)
	sessionRepo := datastore.NewSessionRepository(db)

	policy := auth.NewCapabilityPolicy()
	tokens := auth.NewTokenIssuer(cfg.jwtSecret)
	manager := circulation.NewManager(copyRepo, policy)

	if err := bootstrapLibrarian(ctx, userRepo, cfg.librarianUsername, cfg.librarianPassword); err != nil {
		log.Fatalf("Librarian bootstrap failed: %v", err)
	}

	// Initialize reminder delivery
	providers := []delivery.ReminderProvider{delivery.NewLogReminderProvider(nil)}
	if cfg.sendGridAPIKey != "" {
		providers = append(providers, delivery.NewEmailReminderProvider(cfg.sendGridAPIKey, cfg.sendGridFromEmail, cfg.sendGridFromName))
	}
	reminderService := delivery.NewReminderService(providers...)
	overdueScheduler := scheduler.New(copyRepo, userRepo, reminderService)

	handlers := api.Handlers{
		Index: rh.NewIndexHandler(
			catalogCounts{bookRepo, copyRepo, authorRepo, genreRepo},
			sessionRepo,
			cfg.homeGenres,
		),
		Auth:      rh.NewAuthHandler(userRepo, tokens),
		Books:     rh.NewBookHandler(bookRepo, copyRepo),
		Authors:   rh.NewAuthorHandler(authorRepo, bookRepo),
		Genres:    rh.NewGenreHandler(genreRepo),
		Languages: rh.NewLanguageHandler(languageRepo),
		Copies:    rh.NewBookCopyHandler(copyRepo, manager),
	}

	limiter := api.NewRateLimiter(cfg.rateLimitRPS, cfg.rateLimitBurst)
	go limiter.RunJanitor(ctx)

	router := api.SetupRoutes(handlers, api.Options{
		Tokens:         tokens,
		Policy:         policy,
		RateLimiter:    limiter,
		AllowedOrigins: cfg.corsAllowedOrigins,
	})
	api.MountScheduler(router, overdueScheduler.HandleTick, cfg.schedulerToken)

	startServer(cfg.port, router)
}

func setupDatabase(connStr string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection successful")
	return db, nil
}

func startServer(port string, router http.Handler) {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownSignal
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
