package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/catalystqa/e2eagent/internal/application/orchestration"
	"github.com/catalystqa/e2eagent/internal/application/run"
	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/infrastructure/config"
	"github.com/catalystqa/e2eagent/internal/infrastructure/executor"
	"github.com/catalystqa/e2eagent/internal/infrastructure/history"
	"github.com/catalystqa/e2eagent/internal/infrastructure/orchestrator"
	"github.com/catalystqa/e2eagent/internal/infrastructure/parser"
	"github.com/catalystqa/e2eagent/internal/infrastructure/poller"
	"github.com/catalystqa/e2eagent/internal/infrastructure/server"
	"github.com/catalystqa/e2eagent/internal/infrastructure/sessions"
	"github.com/catalystqa/e2eagent/internal/infrastructure/templates"
	"github.com/catalystqa/e2eagent/internal/infrastructure/workflows"
	"github.com/catalystqa/e2eagent/internal/pkg/logger"
	"github.com/catalystqa/e2eagent/internal/ports"
)

// Container wires the client application service with its infrastructure
// adapters.
type Container struct {
	RunService     *run.Service
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	HistoryStore   ports.RunRepository
	Config         domain.Config
}

// BuildContainer constructs the client dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New(verbose)
	historyStore := history.NewSQLiteStore()

	client := orchestrator.New(cfg.Backend.Endpoint, &http.Client{Timeout: cfg.Backend.Timeout})
	statusPoller := poller.New(cfg.Polling.Interval, cfg.Polling.Ceiling)

	runService := &run.Service{
		Orchestrator: client,
		Poller:       statusPoller,
		History:      historyStore,
		Logger:       log,
	}

	return &Container{
		RunService:     runService,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		HistoryStore:   historyStore,
		Config:         cfg,
	}, nil
}

// ServerContainer wires the orchestration service with its adapters.
type ServerContainer struct {
	Service    *orchestration.Service
	Router     *gin.Engine
	Registry   *templates.Registry
	Sessions   *sessions.Manager
	ListenAddr string
}

// BuildServerContainer constructs the e2eagentd dependency graph. The
// template registry seeds and watches the configured templates directory;
// Close releases its watcher.
func BuildServerContainer(ctx context.Context, verbose bool) (*ServerContainer, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New(verbose)

	registry, err := templates.NewRegistry(cfg.Server.TemplatesDir, log)
	if err != nil {
		return nil, err
	}

	store := sessions.NewManager(cfg.Server.SessionTTL, nil)
	resolver := &workflows.Resolver{
		Registry:  registry,
		Inventory: workflows.NewStaticInventory(cfg.Server.Fabrics),
		Logger:    log,
	}
	runner := &executor.SimulatedRunner{StepDelay: 500 * time.Millisecond}
	engine := executor.NewEngine(store, registry, runner, log, cfg.Server.MaxConcurrentExecutions)

	svc := &orchestration.Service{
		Parser:   parser.New(),
		Resolver: resolver,
		Store:    store,
		Registry: registry,
		Executor: engine,
		Logger:   log,
	}

	return &ServerContainer{
		Service:    svc,
		Router:     server.NewRouter(svc, log, verbose),
		Registry:   registry,
		Sessions:   store,
		ListenAddr: cfg.Server.ListenAddr,
	}, nil
}

// Close releases server resources.
func (c *ServerContainer) Close() error {
	return c.Registry.Close()
}
