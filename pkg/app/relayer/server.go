// Package relayer implements app.Runner for the bridge relayer process.
package relayer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chainsafe/burnmint-bridge/pkg/app"
	"github.com/chainsafe/burnmint-bridge/pkg/app/api"
	apphttp "github.com/chainsafe/burnmint-bridge/pkg/app/http"
	"github.com/chainsafe/burnmint-bridge/pkg/auth"
	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
	"github.com/chainsafe/burnmint-bridge/pkg/config"
	"github.com/chainsafe/burnmint-bridge/pkg/ethereum"
	"github.com/chainsafe/burnmint-bridge/pkg/keys"
	"github.com/chainsafe/burnmint-bridge/pkg/ledger"
	"github.com/chainsafe/burnmint-bridge/pkg/pgutil"
	"github.com/chainsafe/burnmint-bridge/pkg/queue"
	"github.com/chainsafe/burnmint-bridge/pkg/ratelimit"
	"github.com/chainsafe/burnmint-bridge/pkg/relay"
	"github.com/chainsafe/burnmint-bridge/pkg/relayer"
	"github.com/chainsafe/burnmint-bridge/pkg/watcher"
)

const rateLimitPrefix = "bridge:ratelimit"

// Server holds configuration for the relayer process.
type Server struct {
	cfg *config.Config
}

// NewServer initializes a new relayer Server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Run starts the chain watcher, the settlement engine and the HTTP API.
// It blocks until an OS shutdown signal is received or a fatal server error occurs.
func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("nil config")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting burn/mint bridge relayer",
		zap.String("relay_mode", cfg.Relay.Mode),
		zap.String("queue_backend", cfg.Queue.Backend))

	db, err := pgutil.ConnectDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("connect ledger db: %w", err)
	}
	defer func() { _ = db.Close() }()
	store := ledger.NewStore(db)
	logger.Info("Database connection established")

	var rdb *redis.Client
	if cfg.Queue.Backend == config.QueueBackendRedis || cfg.Relay.SharedRateLimit {
		rdb, err = queue.NewRedisClient(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DialTimeout)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		logger.Info("Redis connection established")
	}

	var jobs queue.Queue
	if cfg.Queue.Backend == config.QueueBackendRedis {
		jobs = queue.NewRedisQueue(rdb, cfg.Queue.Prefix, cfg.Queue.Visibility)
	} else {
		logger.Warn("Using in-memory job queue, scheduled jobs are lost on restart")
		jobs = queue.NewMemoryQueue(cfg.Queue.Visibility)
	}

	var limiter ratelimit.Limiter
	if cfg.Relay.SharedRateLimit {
		limiter = ratelimit.NewRedisWindow(rdb, rateLimitPrefix, cfg.Relay.RateLimit, cfg.Relay.RateWindow)
	} else {
		limiter = ratelimit.NewSlidingWindow(cfg.Relay.RateLimit, cfg.Relay.RateWindow)
	}

	registry, err := watcher.BuildRegistry(cfg.Networks, cfg.Watcher, nil, logger)
	if err != nil {
		return fmt.Errorf("build network registry: %w", err)
	}
	defer registry.Close()

	authorizer, operator, err := newAuthorizer(cfg.Relay, registry)
	if err != nil {
		return err
	}

	deriver, err := bridge.NewDeriver(bridge.BurnIDStrategy(cfg.Bridge.BurnIDStrategy))
	if err != nil {
		return fmt.Errorf("create burn id deriver: %w", err)
	}

	worker := queue.NewWorker(jobs, queue.WorkerConfig{
		Concurrency:    cfg.Queue.Workers,
		BatchSize:      cfg.Queue.BatchSize,
		PollInterval:   cfg.Queue.PollInterval,
		HandlerTimeout: cfg.Queue.HandlerTimeout,
		MaxDeliveries:  cfg.Queue.MaxDeliveries,
		RetryBaseDelay: cfg.Queue.RetryBaseDelay,
		RetryMaxDelay:  cfg.Queue.RetryMaxDelay,
	}, logger.Named("queue"))

	engine := relayer.NewEngine(&relayer.Deps{
		Store:      store,
		Queue:      jobs,
		Relay:      relay.NewHTTPClient(cfg.Relay.BaseURL, cfg.Relay.RequestTimeout),
		Authorizer: authorizer,
		Limiter:    limiter,
		Chains:     registry,
		Deriver:    deriver,
		Config:     cfg.Bridge,
		Logger:     logger.Named("relayer"),
	}, worker, operator)

	startBlocks := make(map[bridge.Network]uint64, len(cfg.Networks))
	for _, n := range cfg.Networks {
		if n.StartBlock > 0 {
			startBlocks[bridge.NormalizeNetwork(n.Name)] = n.StartBlock
		}
	}
	watchLogger := logger.Named("watcher")
	chainWatcher := watcher.New(registry, watcher.NewIngestor(store, registry, engine.Dispatcher(), watchLogger),
		store, cfg.Watcher, startBlocks, watchLogger)
	chainWatcher.OnFirstConnect(func(ctx context.Context, conn *ethereum.Connection) {
		engine.CheckOperator(ctx, conn)
	})

	stopAll, err := app.StartAll(ctx, logger,
		app.Named{Name: "relayer engine", Component: engine},
		app.Named{Name: "chain watcher", Component: chainWatcher},
	)
	if err != nil {
		return err
	}
	defer stopAll()

	router := s.newRouter(store, registry, logger)
	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

// newAuthorizer picks the relay authorization mode. In erc2771 mode it also
// returns the operator address whose allow-list membership is checked on startup.
func newAuthorizer(cfg config.RelayConfig, registry *watcher.Registry) (relay.Authorizer, *common.Address, error) {
	if cfg.Mode != config.RelayModeERC2771 {
		return relay.NewSponsorKey(cfg.APIKey), nil, nil
	}

	key, err := keys.LoadOperatorKey(cfg.OperatorPrivateKey, cfg.MasterKey)
	if err != nil {
		return nil, nil, fmt.Errorf("load relay operator key: %w", err)
	}
	forwarders := make(map[uint64]common.Address)
	for _, conn := range registry.Connections() {
		forwarders[conn.ChainID()] = conn.RelayForwarder()
	}
	authorizer := relay.NewERC2771(cfg.APIKey, key, forwarders, registry, cfg.UserDeadline)
	operator := authorizer.Operator()
	return authorizer, &operator, nil
}

func (s *Server) newRouter(store ledger.Store, registry *watcher.Registry, logger *zap.Logger) http.Handler {
	cfg := s.cfg

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	var authn func(http.Handler) http.Handler
	if cfg.API.JWTSecret != "" {
		authn = auth.NewJWTValidator(cfg.API.JWTSecret, cfg.API.JWTIssuer).Middleware
	} else {
		logger.Warn("api.jwt_secret is not set, the bridge endpoint is unauthenticated")
	}

	h := api.NewHTTP(store, registry, cfg.Relay.CheckCredentials, logger.Named("api"))
	api.RegisterRoutes(r, h, authn)

	if cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	return r
}
