package bootstrap

import (
	"context"
	"fmt"
	"time"

	"talent_server/adapter/out/persistence"
	"talent_server/adapter/out/realtime"
	"talent_server/adapter/out/storage"
	"talent_server/config"
	"talent_server/core/port/out"
	"talent_server/core/service/consultant"
	"talent_server/core/service/notification"
	"talent_server/infra/database"
	"talent_server/infra/middleware"
	"talent_server/internal/stream"
	"talent_server/pkg/cache"
	"talent_server/pkg/logger"
	"talent_server/pkg/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const effectConsumerGroup = "effect-workers"

type Dependencies struct {
	Config *config.Config
	DB     *pgxpool.Pool
	SQLDB  *sqlx.DB
	Redis  *redis.Client
	Mongo  *mongo.Client

	// Repositories
	ConsultantRepo   *persistence.ConsultantAdapter
	NotificationRepo *persistence.NotificationAdapter
	TagRepo          *persistence.TagAdapter
	ProfileRepo      *persistence.ProfileAdapter

	// CV storage. Files is set only when CVs are served from GridFS.
	Storage out.FileStoragePort
	Files   *storage.GridFSStorage

	// Realtime
	SSEAdapter *realtime.SSEAdapter
	Fanout     *realtime.RedisFanout
	Realtime   out.RealtimePort
	SSEHub     *realtime.SSEHub

	// Side effects
	EffectStream *stream.RedisStream
	Inline       *consultant.InlineDispatcher
	Dispatcher   consultant.Dispatcher

	// Services
	NotificationService *notification.Service
	ConsultantService   *consultant.Service
	TagService          *consultant.TagService

	// HTTP collaborators
	Auth  *middleware.Authenticator
	Audit *middleware.AuditLog
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	ctx := context.Background()
	deps := &Dependencies{Config: cfg}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// PostgreSQL
	pool, err := database.NewPostgres(ctx, cfg.DatabaseURL, database.DefaultPostgresConfig(cfg.DBMaxConns))
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	deps.DB = pool
	closers = append(closers, pool.Close)

	sqlxDB, err := database.NewSQLX(cfg.DatabaseURL, int(cfg.DBMaxConns))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("sqlx: %w", err)
	}
	deps.SQLDB = sqlxDB
	closers = append(closers, func() { sqlxDB.Close() })

	if err := metrics.RegisterDBStats(sqlxDB.DB, "talent"); err != nil {
		logger.WithError(err).Warn("db stats collector not registered")
	}

	// Redis (optional)
	if cfg.RedisURL != "" {
		client, err := database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			if cfg.SideEffectMode == config.SideEffectsStream {
				cleanup()
				return nil, nil, fmt.Errorf("redis: %w", err)
			}
			logger.WithError(err).Warn("Redis unavailable, continuing in single-instance mode")
		} else {
			deps.Redis = client
			closers = append(closers, func() { client.Close() })
		}
	}

	// MongoDB (optional, CV fallback store)
	if cfg.MongoDBURL != "" {
		client, err := database.NewMongo(ctx, cfg.MongoDBURL)
		if err != nil {
			logger.WithError(err).Warn("MongoDB unavailable, GridFS CV storage disabled")
		} else {
			deps.Mongo = client
			closers = append(closers, func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(shutdownCtx)
			})
		}
	}

	deps.ConsultantRepo = persistence.NewConsultantAdapter(sqlxDB)
	deps.NotificationRepo = persistence.NewNotificationAdapter(sqlxDB)
	deps.TagRepo = persistence.NewTagAdapter(sqlxDB)
	deps.ProfileRepo = persistence.NewProfileAdapter(pool)

	deps.initStorage(cfg)
	deps.initRealtime(cfg)

	deps.NotificationService = notification.NewService(deps.NotificationRepo, deps.Realtime)
	deps.Inline = consultant.NewInlineDispatcher(deps.NotificationService, deps.Realtime)
	deps.Dispatcher = deps.Inline

	if deps.Redis != nil {
		deps.EffectStream = stream.NewRedisStream(
			deps.Redis,
			effectConsumerGroup,
			cfg.ConsumerBatchSize,
			cfg.ConsumerBlock(),
			logger.Default().Zerolog(),
		)
		if cfg.SideEffectMode == config.SideEffectsStream {
			producer := stream.NewProducer(deps.EffectStream, cfg.EffectStream)
			deps.Dispatcher = consultant.NewQueueDispatcher(producer, deps.Inline)
			logger.Info("Side effects queued on stream %s", cfg.EffectStream)
		}
	}

	deps.ConsultantService = consultant.NewService(deps.ConsultantRepo, deps.Storage, deps.Dispatcher)
	deps.TagService = consultant.NewTagService(deps.TagRepo, deps.Dispatcher)

	authCfg := middleware.AuthConfig{
		JWTSecret:   cfg.JWTSecret,
		SupabaseURL: cfg.SupabaseURL,
		Profiles:    deps.ProfileRepo,
		Redis:       deps.Redis,
		CacheTTL:    cfg.ProfileCacheTTL,
	}
	if deps.Redis != nil {
		authCfg.Cache = cache.NewRedisCache(deps.Redis, "profile:")
		deps.Audit = middleware.NewAuditLog(deps.Redis, "")
	}
	deps.Auth = middleware.NewAuthenticator(authCfg)

	return deps, cleanup, nil
}

func (d *Dependencies) initStorage(cfg *config.Config) {
	switch {
	case cfg.SupabaseStorageEnabled():
		d.Storage = storage.NewSupabaseStorage(storage.SupabaseConfig{
			URL:        cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseServiceRoleKey,
			Bucket:     cfg.CVBucket,
		}, nil, logger.Default().Zerolog())
		logger.Info("CV storage: Supabase bucket %s", cfg.CVBucket)

	case d.Mongo != nil:
		d.Files = storage.NewGridFSStorage(d.Mongo.Database(cfg.MongoDBName), "", cfg.PublicBaseURL)
		d.Storage = d.Files
		logger.Info("CV storage: GridFS in %s", cfg.MongoDBName)

	default:
		logger.Warn("No CV storage configured, uploads will be skipped")
	}
}

func (d *Dependencies) initRealtime(cfg *config.Config) {
	d.SSEAdapter = realtime.NewSSEAdapter(logger.Default().Zerolog())
	d.Realtime = d.SSEAdapter
	if d.Redis != nil {
		d.Fanout = realtime.NewRedisFanout(d.Redis, cfg.RealtimeChannel, d.SSEAdapter, logger.Default().Zerolog())
		d.Realtime = d.Fanout
	}
	d.SSEHub = realtime.NewSSEHub(d.Realtime, logger.Default().Zerolog())
}
