package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"contractor-card-service/internal/app"
	"contractor-card-service/internal/auth"
	"contractor-card-service/internal/config"
	"contractor-card-service/internal/domain"
	"contractor-card-service/internal/infra/memory"
	"contractor-card-service/internal/infra/oss"
	"contractor-card-service/internal/infra/postgres"
	rediscache "contractor-card-service/internal/infra/redis"
	transport "contractor-card-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the intake and admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// backends holds the storage side of the service; each piece falls back to
// memory when its infrastructure is not configured.
type backends struct {
	submissions app.SubmissionRepository
	companies   app.CompanyRepository
	questions   app.QuestionRepository
	loader      memory.CatalogLoader
	closers     []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	if cfg.Postgres.URL == "" {
		log.Printf("postgres not configured, using in-memory stores")
		companies := memory.NewCompanyStore(sampleCompanies()...)
		questions := memory.NewQuestionStore(sampleQuestions()...)
		return &backends{
			submissions: memory.NewSubmissionStore(),
			companies:   companies,
			questions:   questions,
			loader:      memory.NewStoreCatalogLoader(companies, questions),
		}, nil
	}

	db := openBun(cfg.Postgres.URL)
	if err := migrateDB(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &backends{
		submissions: postgres.NewSubmissionRepository(db),
		companies:   postgres.NewCompanyRepository(db),
		questions:   postgres.NewQuestionRepository(db),
		loader:      postgres.NewCatalogLoader(pool),
		closers:     []func(){func() { _ = db.Close() }, pool.Close},
	}, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	stores, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 5*time.Minute)
	var catalog app.CatalogRepository
	if redisClient != nil {
		catalog = rediscache.NewCatalogCache(redisClient, stores.loader, catalogTTL)
	} else {
		catalog = memory.NewCatalogCache(stores.loader, catalogTTL)
	}

	var events app.EventBus
	if redisClient != nil {
		bus := rediscache.NewEventBus(redisClient, cfg.Redis.Channel)
		if err := bus.Start(ctx); err != nil {
			return fmt.Errorf("start event bus: %w", err)
		}
		defer bus.Close()
		events = bus
	} else {
		events = memory.NewEventHub()
	}

	var photos app.PhotoStore
	if cfg.OSS.Bucket != "" {
		photos, err = oss.NewPhotoStore(oss.Config{
			Endpoint:        cfg.OSS.Endpoint,
			AccessKeyID:     cfg.OSS.AccessKeyID,
			AccessKeySecret: cfg.OSS.AccessKeySecret,
			Bucket:          cfg.OSS.Bucket,
			PublicBaseURL:   cfg.OSS.PublicBaseURL,
		})
		if err != nil {
			return err
		}
	} else {
		log.Printf("oss bucket not configured, photos are kept in memory")
		photos = memory.NewPhotoStore("memory://photos")
	}

	intake := app.NewIntakeService(stores.submissions, photos, events, app.IntakeOptions{
		MaxAttempts:       cfg.Intake.MaxAttempts,
		PhotoMaxDimension: cfg.Photo.MaxDimension,
	})
	admin := app.NewAdminService(stores.submissions, stores.companies, stores.questions, catalog, events)

	handlers := transport.Handlers{
		Submit: transport.NewSubmitHandler(intake, cfg.Photo.MaxBytes),
		Quiz:   transport.NewQuizHandler(app.NewQuizService(catalog)),
		Admin:  transport.NewAdminHandler(admin),
		Stream: transport.NewWSHandler(events),
	}
	if cfg.Auth.SessionSecret != "" {
		authService, err := auth.NewService(auth.Config{
			ClientID:      cfg.Auth.GoogleClientID,
			ClientSecret:  cfg.Auth.GoogleClientSecret,
			RedirectURL:   cfg.Auth.GoogleRedirectURL,
			SessionSecret: cfg.Auth.SessionSecret,
			AllowedEmails: auth.ParseAllowList(cfg.Auth.AdminEmails),
		}, auth.NewGoogleVerifier(cfg.Auth.GoogleClientID))
		if err != nil {
			return err
		}
		secure := strings.HasPrefix(cfg.Auth.GoogleRedirectURL, "https://")
		handlers.Auth = authService
		handlers.Login = transport.NewAuthHandler(authService, cfg.Server.AdminRedirect, secure)
	} else {
		log.Printf("session secret not configured, admin API disabled")
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(handlers),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("starting contractor card service on :%s", finalPort)
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

// sampleCompanies seeds the in-memory master data for local runs.
func sampleCompanies() []domain.Company {
	return []domain.Company{
		{FullName: "Acme Engineering Co., Ltd.", ShortName: "ACM"},
		{FullName: "Siam Scaffolding", ShortName: "SSF"},
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{Question: "What must be worn at all times in the plant area?", Options: []string{"Safety helmet", "Cap", "Nothing"}, CorrectIndex: 0},
		{Question: "Who may enter a confined space?", Options: []string{"Anyone", "Only permit holders"}, CorrectIndex: 1},
		{Question: "What do you do when the fire alarm sounds?", Options: []string{"Keep working", "Go to the assembly point", "Hide", "Call a friend"}, CorrectIndex: 1},
	}
}
