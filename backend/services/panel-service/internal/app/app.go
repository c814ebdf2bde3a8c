package app

import (
	"context"
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libredis "sensorpanel/backend/libs/redis"
	"sensorpanel/backend/services/panel-service/internal/clients"
	"sensorpanel/backend/services/panel-service/internal/config"
	"sensorpanel/backend/services/panel-service/internal/display"
	httpserver "sensorpanel/backend/services/panel-service/internal/http"
	"sensorpanel/backend/services/panel-service/internal/http/handlers"
	"sensorpanel/backend/services/panel-service/internal/http/web"
	"sensorpanel/backend/services/panel-service/internal/metrics"
	redisstore "sensorpanel/backend/services/panel-service/internal/redis"
	"sensorpanel/backend/services/panel-service/internal/scheduler"
	"sensorpanel/backend/services/panel-service/internal/service"
	"sensorpanel/backend/services/panel-service/internal/ws"
)

// App wires panel-service dependencies.
type App struct {
	cfg         *config.Config
	server      *httpserver.Server
	panel       *service.PanelService
	memory      *display.Memory
	redisClient *redis.Client
	stopPanels  context.CancelFunc
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	memory := display.NewMemory()
	hub := ws.NewHub(memory, m, logger)
	outputs := display.Fanout{memory, hub}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		client, err := libredis.NewRedisClient(context.Background(), libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		redisClient = client

		store := redisstore.NewSlotStore(client, cfg.Redis.KeyPrefix, cfg.RedisTTL())
		restoreSlots(context.Background(), store, memory, logger)
		outputs = append(outputs, store)
	}

	source := clients.NewMeasurementsClient(
		cfg.Source.URL,
		clients.NewDefaultHTTPClient(cfg.SourceTimeout()),
		logger,
	)
	panel := service.NewPanelService(source, outputs, m, logger)

	panelsCtx, stopPanels := context.WithCancel(context.Background())
	wsServer := ws.NewServer(panelsCtx, hub, cfg.WriteTimeout(), cfg.PingInterval(), logger)

	routes := httpserver.Routes{
		Index:   web.Handler(),
		WS:      wsServer.HandleWS,
		Display: handlers.NewDisplayHandler(memory),
		Health:  handlers.NewHealthHandler(),
		Metrics: metrics.Handler(registry),
	}
	router := httpserver.NewRouter(routes, cfg.HTTP.AllowedOrigins)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger, httpserver.RequestLogger(logger))

	return &App{
		cfg:         cfg,
		server:      server,
		panel:       panel,
		memory:      memory,
		redisClient: redisClient,
		stopPanels:  stopPanels,
		logger:      logger,
	}, nil
}

// restoreSlots seeds memory with the last mirrored text so panels that
// connect before the first poll completes see something.
func restoreSlots(ctx context.Context, store *redisstore.SlotStore, memory *display.Memory, logger *zap.Logger) {
	for _, slot := range display.Slots {
		text, ok, err := store.Get(ctx, slot)
		if err != nil {
			logger.Warn("failed to restore slot", zap.String("slot", slot), zap.Error(err))
			continue
		}
		if ok {
			_ = memory.SetSlot(ctx, slot, text)
		}
	}
}

// Run starts the poller and the HTTP server and blocks until ctx ends.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr())
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	a.logger.Info("polling measurements",
		zap.String("url", a.cfg.Source.URL),
		zap.Duration("interval", a.cfg.PollInterval()),
	)
	handle, err := scheduler.Start(ctx, a.cfg.PollInterval(), func(ctx context.Context) {
		a.panel.RefreshDisplay(ctx)
	})
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer handle.Stop()
	defer a.stopPanels()

	return a.server.Serve(ctx, ln)
}

// RefreshOnce performs a single refresh cycle and returns the resulting
// slot texts.
func (a *App) RefreshOnce(ctx context.Context) (service.Outcome, map[string]string) {
	outcome := a.panel.RefreshDisplay(ctx)
	return outcome, a.memory.Snapshot()
}

// Close releases resources.
func (a *App) Close() {
	a.stopPanels()
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
