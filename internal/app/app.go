package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"

	"github.com/auctionarena/auction-arena/internal/config"
	"github.com/auctionarena/auction-arena/internal/domain/auction"
	"github.com/auctionarena/auction-arena/internal/domain/auctionset"
	"github.com/auctionarena/auction-arena/internal/domain/player"
	"github.com/auctionarena/auction-arena/internal/domain/team"
	"github.com/auctionarena/auction-arena/internal/infrastructure/account/authgate"
	"github.com/auctionarena/auction-arena/internal/infrastructure/activitylog"
	"github.com/auctionarena/auction-arena/internal/infrastructure/blob"
	"github.com/auctionarena/auction-arena/internal/infrastructure/repository/memory"
	"github.com/auctionarena/auction-arena/internal/infrastructure/repository/postgres"
	"github.com/auctionarena/auction-arena/internal/interfaces/httpapi"
	"github.com/auctionarena/auction-arena/internal/platform/cache"
	idgen "github.com/auctionarena/auction-arena/internal/platform/id"
	"github.com/auctionarena/auction-arena/internal/platform/logging"
	"github.com/auctionarena/auction-arena/internal/platform/resilience"
	"github.com/auctionarena/auction-arena/internal/usecase"
)

type repositories struct {
	auctions auction.Repository
	teams    team.Repository
	sets     auctionset.Repository
	players  player.Repository
}

// NewHTTPServer builds the fully wired API server. The returned cleanup
// releases the database handle and flushes the activity publisher; call it
// after the server has shut down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, db, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var publisher *activitylog.WebhookPublisher
	var activity usecase.ActivityRecorder
	if cfg.ActivityWebhookEnabled {
		publisher, err = activitylog.NewWebhookPublisher(activitylog.WebhookConfig{
			URL:           cfg.ActivityWebhookURL,
			Token:         cfg.ActivityWebhookToken,
			QueueSize:     cfg.ActivityWebhookQueueSize,
			BatchSize:     cfg.ActivityWebhookBatchSize,
			FlushInterval: cfg.ActivityWebhookFlushInterval,
			Timeout:       cfg.ActivityWebhookTimeout,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("build activity publisher: %w", err)
		}
		activity = publisher
	}

	logos, err := buildLogoStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	var readCache *cache.Store
	if cfg.CacheEnabled {
		readCache = cache.NewStore(cfg.CacheTTL)
	}

	ids := idgen.NewRandomGenerator()
	ledger := usecase.NewBudgetLedger(repos.teams, repos.players, logger)

	handler := httpapi.NewHandler(
		usecase.NewAuctionService(repos.auctions, repos.teams, repos.sets, repos.players, ledger, ids, logger),
		usecase.NewTeamService(repos.auctions, repos.teams, repos.players, ledger, logos, ids, logger),
		usecase.NewSetService(repos.auctions, repos.sets, repos.players, activity, ids, logger),
		usecase.NewPlayerService(repos.auctions, repos.teams, repos.sets, repos.players, ledger, activity, ids, logger),
		usecase.NewStatsService(repos.auctions, repos.teams, repos.sets, repos.players, readCache, logger),
		usecase.NewImportService(repos.auctions, repos.sets, repos.players, activity, nil, ids, logger),
		logger,
	)

	var breaker *resilience.CircuitBreaker
	if cfg.AuthGateCircuitEnabled {
		breaker = resilience.NewCircuitBreaker(
			cfg.AuthGateCircuitFailureCount,
			cfg.AuthGateCircuitOpenTimeout,
			cfg.AuthGateCircuitHalfOpenReq,
		)
	}
	verifier := authgate.NewClient(
		&http.Client{Timeout: cfg.AuthGateTimeout},
		cfg.AuthGateBaseURL,
		cfg.AuthGateIntrospectPath,
		breaker,
		logger,
	)

	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	cleanup := func(context.Context) error {
		if publisher != nil {
			publisher.Close()
		}
		if db != nil {
			return db.Close()
		}
		return nil
	}

	return server, cleanup, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, *sqlx.DB, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Info("storage driver", "driver", config.StorageMemory)
		return repositories{
			auctions: memory.NewAuctionRepository(nil),
			teams:    memory.NewTeamRepository(nil),
			sets:     memory.NewSetRepository(nil),
			players:  memory.NewPlayerRepository(nil),
		}, nil, nil
	case config.StoragePostgres:
		db, err := openDB(cfg)
		if err != nil {
			return repositories{}, nil, err
		}
		logger.Info("storage driver", "driver", config.StoragePostgres, "database", dbNameFromURL(cfg.DBURL))
		return repositories{
			auctions: postgres.NewAuctionRepository(db),
			teams:    postgres.NewTeamRepository(db),
			sets:     postgres.NewSetRepository(db),
			players:  postgres.NewPlayerRepository(db),
		}, db, nil
	default:
		return repositories{}, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return db, nil
}

func buildLogoStore(cfg config.Config) (usecase.LogoStore, error) {
	if !cfg.LogoStoreEnabled {
		return blob.NewMemoryStore(), nil
	}

	store, err := blob.NewS3Store(blob.S3Config{
		Endpoint:      cfg.LogoS3Endpoint,
		Region:        cfg.LogoS3Region,
		Bucket:        cfg.LogoS3Bucket,
		AccessKey:     cfg.LogoS3AccessKey,
		SecretKey:     cfg.LogoS3SecretKey,
		PublicBaseURL: cfg.LogoS3PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("build logo store: %w", err)
	}

	return store, nil
}
