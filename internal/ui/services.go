package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/orwee/liduido/internal/config"
	"github.com/orwee/liduido/internal/export"
	"github.com/orwee/liduido/internal/store"
)

// loadDeadline bounds one full load pass, cache miss included.
const loadDeadline = 15 * time.Second

// Services provides the screens access to the loader, exporter and config.
type Services struct {
	Cache    *store.Cached
	Exporter *export.ComparisonExporter
	Config   *config.Config
	Logger   *zap.Logger
}

func NewServices(cache *store.Cached, exporter *export.ComparisonExporter, cfg *config.Config, logger *zap.Logger) *Services {
	return &Services{
		Cache:    cache,
		Exporter: exporter,
		Config:   cfg,
		Logger:   logger.Named("ui"),
	}
}

// LoadPoolsCmd loads the pool table, served from cache while fresh.
func (s *Services) LoadPoolsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadDeadline)
		defer cancel()

		records, err := s.Cache.LoadPools(ctx)
		if err != nil {
			s.Logger.Error("pool load failed", zap.Error(err))
			return PoolsLoadedMsg{Err: err}
		}
		return PoolsLoadedMsg{Records: records}
	}
}

// ReloadCmd clears the memoized table and refetches.
func (s *Services) ReloadCmd() tea.Cmd {
	s.Cache.Invalidate()
	s.Logger.Info("manual reload requested")
	return s.LoadPoolsCmd()
}

// ExportCmd writes the given sections to the configured export directory.
func (s *Services) ExportCmd(sections []export.Section) tea.Cmd {
	return func() tea.Msg {
		path, err := s.Exporter.Export(sections, export.Options{
			Format:    export.FormatCSV,
			OutputDir: s.Config.ExportDir,
		})
		return ExportDoneMsg{Path: path, Err: err}
	}
}
