package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/pitchrank/pitchrank/internal/config"
	"github.com/pitchrank/pitchrank/internal/infrastructure/repository/postgres"
	"github.com/pitchrank/pitchrank/internal/interfaces/httpapi"
	"github.com/pitchrank/pitchrank/internal/platform/cache"
	"github.com/pitchrank/pitchrank/internal/platform/id"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
	"github.com/pitchrank/pitchrank/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	_ "github.com/lib/pq"
)

// App bundles the HTTP server with the resources it owns.
type App struct {
	Server *http.Server
	DB     *sqlx.DB
}

// Services is the full use-case layer wired onto one database handle. The
// HTTP server and the one-shot CLIs share this wiring.
type Services struct {
	Staging   *usecase.StagingService
	Promotion *usecase.PromotionService
	Repair    *usecase.RepairService
	Audit     *usecase.AuditService
	Registry  *usecase.RegistryService
	Resolver  *usecase.TeamResolverService
}

func BuildServices(cfg config.Config, db *sqlx.DB, logger *logging.Logger) *Services {
	if logger == nil {
		logger = logging.Default()
	}

	teamRepo := postgres.NewTeamRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	registryRepo := postgres.NewRegistryRepository(db)
	stagingRepo := postgres.NewStagingRepository(db)
	matchRepo := postgres.NewMatchRepository(db)

	policy := usecase.DefaultMatchingPolicy()
	policy.SimilarityThreshold = cfg.SimilarityThreshold

	var resolutionCache *cache.Store
	if cfg.CacheEnabled {
		resolutionCache = cache.NewStore(cfg.CacheTTL)
	}

	registrySvc := usecase.NewRegistryService(registryRepo, logger)
	resolver := usecase.NewTeamResolverService(
		teamRepo,
		registrySvc,
		id.NewUUIDGenerator(),
		resolutionCache,
		policy,
		logger,
	)

	return &Services{
		Staging: usecase.NewStagingService(stagingRepo, policy, logger),
		Promotion: usecase.NewPromotionService(
			stagingRepo,
			matchRepo,
			eventRepo,
			teamRepo,
			resolver,
			registrySvc,
			id.NewUUIDGenerator(),
			logger,
		),
		Repair:   usecase.NewRepairService(matchRepo, teamRepo, eventRepo, registrySvc, registryRepo, logger),
		Audit:    usecase.NewAuditService(registrySvc, teamRepo, matchRepo, logger),
		Registry: registrySvc,
		Resolver: resolver,
	}
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	services := BuildServices(cfg, db, logger)
	handler := httpapi.NewHandler(
		services.Staging,
		services.Promotion,
		services.Repair,
		services.Audit,
		services.Registry,
		services.Resolver,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = db.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{Server: server, DB: db}, nil
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// OpenDB connects with OpenTelemetry instrumentation so each statement
// shows up as a span under the request trace.
func OpenDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
