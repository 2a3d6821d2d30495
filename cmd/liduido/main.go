package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/orwee/liduido/internal/config"
	"github.com/orwee/liduido/internal/export"
	"github.com/orwee/liduido/internal/logger"
	"github.com/orwee/liduido/internal/store"
	"github.com/orwee/liduido/internal/ui"
	"github.com/orwee/liduido/internal/ui/screen"
)

// AppModel is the top-level TUI model. The dashboard is a single screen,
// so it just forwards everything to the compare screen.
type AppModel struct {
	screen *screen.CompareScreen
}

func NewAppModel(services *ui.Services) *AppModel {
	return &AppModel{
		screen: screen.NewCompareScreen(services),
	}
}

// Init initializes the application
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.screen.Init(),
		tea.EnterAltScreen,
	)
}

// Update handles application-level updates
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	updatedScreen, cmd := m.screen.Update(msg)
	m.screen = updatedScreen
	return m, cmd
}

// View renders the application
func (m *AppModel) View() string {
	return m.screen.View()
}

func main() {
	configPath := flag.String("config", "", "Path to config file (optional)")
	flag.Parse()

	// A local .env is a convenience; deployed environments set the
	// variables directly.
	_ = godotenv.Load()

	startupLogger, err := logger.CreatePrettyLogger(false)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Missing credentials are fatal before any query is attempted.
	cfg, err := config.Load(*configPath)
	if err != nil {
		startupLogger.Fatal("Configuration error", zap.Error(err))
	}

	appLogger, err := logger.NewFileLogger(cfg.LogFile, cfg.DebugLogging)
	if err != nil {
		startupLogger.Fatal("Failed to init file logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(appLogger)
	}()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var base store.Store
	switch cfg.Transport {
	case config.TransportPostgres:
		base, err = store.NewPostgresStore(rootCtx, cfg.PostgresURL, cfg.Table, cfg.Network, appLogger)
		if err != nil {
			startupLogger.Fatal("Failed to connect to Postgres", zap.Error(err))
		}
	default:
		base = store.NewRESTStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Table, cfg.Network, appLogger)
	}

	cache := store.NewCached(base, cfg.CacheTTL, appLogger)
	defer cache.Close()

	services := ui.NewServices(cache, export.NewComparisonExporter(appLogger), cfg, appLogger)

	appLogger.Info("Starting DEX pair comparator",
		zap.String("network", cfg.Network),
		zap.String("transport", cfg.Transport),
		zap.Duration("cache_ttl", cfg.CacheTTL))

	program := tea.NewProgram(
		NewAppModel(services),
		tea.WithAltScreen(),
	)

	// Quit cleanly on SIGINT/SIGTERM.
	go func() {
		<-rootCtx.Done()
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		appLogger.Error("TUI application failed", zap.Error(err))
		startupLogger.Fatal("Application failed", zap.Error(err))
	}

	appLogger.Info("Shutting down")
}
