package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/os-ghost/core/internal/agent"
	"github.com/os-ghost/core/internal/config"
	"github.com/os-ghost/core/internal/eventbus"
	"github.com/os-ghost/core/internal/extension"
	"github.com/os-ghost/core/internal/guard"
	"github.com/os-ghost/core/internal/identity"
	"github.com/os-ghost/core/internal/logging"
	"github.com/os-ghost/core/internal/mcpserver"
	"github.com/os-ghost/core/internal/orchestrator"
	"github.com/os-ghost/core/internal/policy"
	"github.com/os-ghost/core/internal/provider"
	"github.com/os-ghost/core/internal/queue"
	"github.com/os-ghost/core/internal/rollback"
	"github.com/os-ghost/core/internal/statusapi"
	"github.com/os-ghost/core/internal/store"
	"github.com/os-ghost/core/internal/workflow"
)

// shutdownTimeout bounds how long "ghost run" waits for Shutdown after
// receiving SIGINT/SIGTERM before the process exits anyway.
const shutdownTimeout = 10 * time.Second

// app bundles every long-lived collaborator the run command needs, so
// buildApp can be exercised in tests without going through cobra or
// starting any listener.
type app struct {
	cfg       *config.Config
	configDir string

	store   *store.Store
	pol     *policy.Policy
	ledger  *queue.Ledger
	queue   *queue.Queue
	preview *rollback.PreviewManager

	router       *provider.Router
	orchestrator *orchestrator.Orchestrator

	backend  *mcpserver.Backend
	state    *mcpserver.BrowserState
	invoker  *mcpserver.Invoker
	mcp      *mcpserver.Server

	events *eventbus.Bus
	status *statusapi.Server

	cron *cron.Cron

	installID string
}

// buildApp wires the store, policy, identity, ledger and queue, preview
// manager, provider router, companion agent, guard, MCP bridge,
// orchestrator, event bus and status API into a single running process.
// The adaptive monitor (C10) and the rollback undo manager are not built
// here. Following the teacher's root-command pattern, all construction
// happens up front and one object is handed back for the command layer
// to start/stop.
func buildApp(cfg *config.Config, configDir string) (*app, error) {
	dbPath := filepath.Join(configDir, "store.db")
	st, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	pol, err := policy.Open(filepath.Join(configDir, "privacy_settings.json"))
	if err != nil {
		return nil, fmt.Errorf("open policy: %w", err)
	}

	rec, err := identity.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	logging.Boot("install id %s", rec.InstallID)

	extID, extVersion := extension.DefaultHandshakeID(configDir)
	logging.BootDebug("default extension handshake id=%s version=%s", extID, extVersion)

	ledger := queue.NewLedger(
		filepath.Join(configDir, "ledger.json"),
		cfg.Limits.LedgerBatchSize,
		time.Duration(cfg.Limits.LedgerFlushIntervalMs)*time.Millisecond,
	)
	q := queue.New(ledger)
	preview := rollback.NewPreviewManager()

	primary := provider.NewAnthropicClient(cfg.Provider.APIKey, cfg.Provider.Model, cfg.Provider.BaseURL, cfg.Provider.Temperature, cfg.ProviderTimeout())
	secondary := provider.NewOllamaClient(cfg.Secondary.Model, cfg.Secondary.BaseURL, cfg.SecondaryProviderTimeout())
	router, err := provider.NewRouter(primary, secondary, cfg.Limits.ProviderRateLimitRPM)
	if err != nil {
		return nil, fmt.Errorf("build provider router: %w", err)
	}

	companion := agent.NewCompanion(router, provider.Medium)

	g := guard.New(guard.ScreenBounds{Width: 1920, Height: 1080}, 50*time.Millisecond, pol.Load().BlockedSites)

	state := mcpserver.NewBrowserState()
	registry := mcpserver.NewRegistry()
	backend := mcpserver.NewBackend(mcpserver.BackendConfig{Headless: true})
	mcpserver.RegisterBrowserTools(registry, backend, state)

	effects := make(chan map[string]any, 32)
	invoker := mcpserver.NewInvoker(registry, pol, q, preview, effects)
	mcp := mcpserver.New(cfg.MCPServer, pol, state, registry, effects)

	orch := orchestrator.New(orchestrator.Config{
		Agents:         []agent.Agent{companion},
		LegacyWorkflow: workflow.AgentStep{Agent: companion},
		Router:         router,
		Memory:         st,
		InputGuard:     g,
		OutputGuard:    g,
		Guardrails:     true,
	})

	events := eventbus.New(10 * time.Second)

	status := statusapi.New(statusapi.Deps{
		Orchestrator: orch,
		MCP:          invoker,
		Queue:        q,
		Preview:      preview,
		Memory:       st,
		Policy:       pol,
		Events:       events,
	}, cfg.StatusAPI.AllowOrigins)

	return &app{
		cfg:          cfg,
		configDir:    configDir,
		store:        st,
		pol:          pol,
		ledger:       ledger,
		queue:        q,
		preview:      preview,
		router:       router,
		orchestrator: orch,
		backend:      backend,
		state:        state,
		invoker:      invoker,
		mcp:          mcp,
		events:       events,
		status:       status,
		cron:         cron.New(),
		installID:    rec.InstallID,
	}, nil
}

// Start initializes the orchestrator, launches the MCP bridge and the
// status API in their own goroutines (they run until ctx is cancelled),
// and schedules the once-a-minute queue-expiry cron sweep. It returns
// without waiting for the listeners to bind.
func (a *app) Start(ctx context.Context) error {
	if err := a.orchestrator.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize orchestrator: %w", err)
	}

	go func() {
		if err := a.mcp.ListenAndServe(ctx); err != nil {
			logging.MCPError("mcp bridge stopped: %v", err)
		}
	}()

	addr := fmt.Sprintf("127.0.0.1:%d", a.cfg.StatusAPI.Port)
	go func() {
		if err := a.status.ListenAndServe(ctx, addr); err != nil {
			logging.APIError("status api stopped: %v", err)
		}
	}()

	if _, err := a.cron.AddFunc("@every 1m", a.expireStaleActions); err != nil {
		return fmt.Errorf("schedule expiry sweep: %w", err)
	}
	a.cron.Start()

	return nil
}

// expireStaleActions is the periodic queue sweep: any pending action
// past its own expiry time (set when it was queued) is expired so it
// stops showing up as actionable.
func (a *app) expireStaleActions() {
	expired := a.queue.ExpireStale()
	if len(expired) > 0 {
		logging.Queue("expired %d stale pending action(s)", len(expired))
	}
}

// Shutdown tears the process down in roughly reverse dependency order:
// cron first (stop scheduling new sweeps), then the orchestrator (which
// flushes memory), then the browser backend, then the ledger and store.
func (a *app) Shutdown(ctx context.Context) error {
	cronCtx := a.cron.Stop()
	<-cronCtx.Done()

	if err := a.orchestrator.Shutdown(ctx); err != nil {
		logging.BootWarn("orchestrator shutdown error: %v", err)
	}
	if err := a.backend.Close(); err != nil {
		logging.BootWarn("browser backend close error: %v", err)
	}
	if err := a.ledger.Close(); err != nil {
		logging.BootWarn("ledger close error: %v", err)
	}
	return a.store.Close()
}
