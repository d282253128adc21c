package cli

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assignment-service/internal/app"
	"assignment-service/internal/auth"
	"assignment-service/internal/config"
	boltstore "assignment-service/internal/infra/bolt"
	"assignment-service/internal/infra/memory"
	pgstore "assignment-service/internal/infra/postgres"
	redisstore "assignment-service/internal/infra/redis"
	transport "assignment-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assignment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.Server.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var (
		assignments app.AssignmentRepository
		submissions app.SubmissionRepository
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store := pgstore.NewStore(pool)
		assignments, submissions = store, store
		log.Printf("using postgres store")
	} else if cfg.Bolt.Path != "" {
		store, err := boltstore.Open(cfg.Bolt.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		assignments, submissions = store, store
		log.Printf("using bolt store at %s", cfg.Bolt.Path)
	} else {
		store := memory.NewStore()
		assignments, submissions = store, store
		log.Printf("using in-memory store")
	}

	cacheTTL := config.TTLDuration(cfg.Assignments.CacheTTL, 10*time.Minute)
	draftTTL := config.TTLDuration(cfg.Assignments.DraftTTL, 7*24*time.Hour)
	attemptGrace := config.TTLDuration(cfg.Assignments.AttemptGrace, 5*time.Minute)

	var (
		attempts app.AttemptRepository
		drafts   app.DraftRepository
	)
	if redisClient != nil {
		assignments = redisstore.NewAssignmentCache(redisClient, assignments, cacheTTL)
		attempts = redisstore.NewAttemptStore(redisClient, attemptGrace)
		drafts = redisstore.NewDraftStore(redisClient, draftTTL)
	} else {
		assignments = memory.NewAssignmentCache(assignments, cacheTTL)
		attempts = memory.NewAttemptStore()
		drafts = memory.NewDraftStore()
	}

	service := app.NewService(assignments, submissions, attempts, drafts)
	authenticator := auth.NewAuthenticator(cfg.Auth)
	api := transport.NewServer(service, authenticator, transport.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		LogLevel:       logLevel,
		Concise:        true,
	})

	// only the header read is bounded; attempt websockets stay open for the whole time limit
	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting assignment service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
