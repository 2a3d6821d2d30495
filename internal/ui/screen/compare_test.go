package screen

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orwee/liduido/internal/config"
	"github.com/orwee/liduido/internal/export"
	"github.com/orwee/liduido/internal/pool"
	"github.com/orwee/liduido/internal/store"
	"github.com/orwee/liduido/internal/ui"
)

type stubStore struct {
	records []pool.Record
	err     error
}

func (s *stubStore) LoadPools(ctx context.Context) ([]pool.Record, error) {
	return s.records, s.err
}

func (s *stubStore) Close() {}

func testServices(t *testing.T, records []pool.Record) *ui.Services {
	t.Helper()
	cfg := &config.Config{
		Network:      config.DefaultNetwork,
		Table:        config.DefaultTable,
		ReferenceDEX: "hyperswap",
		CacheTTL:     config.DefaultCacheTTL,
		ExportDir:    t.TempDir(),
	}
	cache := store.NewCached(&stubStore{records: records}, time.Hour, zap.NewNop())
	exporter := export.NewComparisonExporter(zap.NewNop())
	return ui.NewServices(cache, exporter, cfg, zap.NewNop())
}

func testRecords() []pool.Record {
	return []pool.Record{
		{Pair: "A/B", DEX: "x", APY24h: 10, Tier: 1, TVL: 5000, Volume24h: 800},
		{Pair: "A/B", DEX: "y", APY24h: 5, Tier: 0.3, TVL: 9000, Volume24h: 100},
		{Pair: "C/D", DEX: "hyperswap", APY24h: 20, Tier: 2.5, TVL: 80000, Volume24h: 40000},
	}
}

func loadedScreen(t *testing.T, records []pool.Record) *CompareScreen {
	t.Helper()
	s := NewCompareScreen(testServices(t, records))
	s.SetSize(140, 40)
	s.onPoolsLoaded(ui.PoolsLoadedMsg{Records: records})
	return s
}

func TestBuildComparisonMergesCalculatorRow(t *testing.T) {
	records := []pool.Record{
		{Pair: "A/B", DEX: "x", APY24h: 10},
		{Pair: "A/B", DEX: "y", APY24h: 5},
	}
	in := pool.CalculatorInputs{Tier: 2, TVL: 1000, Volume: 500}

	rows := buildComparison(records, "A/B", in, "hyperswap")

	require.Len(t, rows, 3, "real rows + calculator row")
	assert.Equal(t, "hyperswap-test", rows[0].DEX)
	assert.InDelta(t, 365, rows[0].APY24h, 1e-9)
	assert.Equal(t, "x", rows[1].DEX)
	assert.Equal(t, "y", rows[2].DEX)
}

func TestBuildComparisonDoesNotMutateSource(t *testing.T) {
	records := testRecords()
	buildComparison(records, "A/B", pool.CalculatorInputs{Tier: 9, TVL: 1, Volume: 9e9}, "hyperswap")

	assert.Equal(t, "x", records[0].DEX, "source table order must be untouched")
	assert.Equal(t, "y", records[1].DEX)
}

func TestFirstLoadPreselectsFirstPair(t *testing.T) {
	s := loadedScreen(t, testRecords())

	assert.Equal(t, []string{"A/B"}, s.selected)
	assert.Contains(t, s.inputs, "A/B")
}

func TestReloadKeepsEmptySelection(t *testing.T) {
	s := loadedScreen(t, testRecords())
	s.togglePair("A/B") // deselect everything

	s.onPoolsLoaded(ui.PoolsLoadedMsg{Records: testRecords()})
	assert.Empty(t, s.selected, "a later reload must not resurrect the default selection")
}

func TestTogglePairSeedsDefaultsFromReferenceVenue(t *testing.T) {
	s := loadedScreen(t, testRecords())

	s.togglePair("C/D")
	require.Contains(t, s.inputs, "C/D")
	got := s.inputs["C/D"].values()
	assert.Equal(t, pool.CalculatorInputs{Tier: 2.5, TVL: 80000, Volume: 40000}, got)
}

func TestTogglePairFallbackDefaults(t *testing.T) {
	s := loadedScreen(t, testRecords())

	// A/B has no hyperswap row; the preselection used the fixed fallbacks.
	got := s.inputs["A/B"].values()
	assert.Equal(t, pool.CalculatorInputs{
		Tier:   pool.DefaultTier,
		TVL:    pool.DefaultTVL,
		Volume: pool.DefaultVolume,
	}, got)
}

func TestTogglePairDeselectDiscardsInputs(t *testing.T) {
	s := loadedScreen(t, testRecords())

	s.togglePair("A/B")
	assert.Empty(t, s.selected)
	assert.NotContains(t, s.inputs, "A/B", "calculator state dies with the section")
}

func TestEmptySelectionRendersPromptOnly(t *testing.T) {
	s := loadedScreen(t, testRecords())
	s.togglePair("A/B")

	view := s.View()
	assert.Contains(t, view, "Select at least one pair")
	assert.NotContains(t, view, "APY 24h", "no tables may render without a selection")
}

func TestLoadErrorDegradesToEmptyTable(t *testing.T) {
	s := NewCompareScreen(testServices(t, nil))
	s.SetSize(140, 40)

	s.onPoolsLoaded(ui.PoolsLoadedMsg{Err: errors.New("store http 500")})

	assert.Empty(t, s.records)
	view := s.View()
	assert.Contains(t, view, "Failed to load pool data")
	assert.Contains(t, view, "No data available")
}

func TestEmptyLoadShowsInfoNotice(t *testing.T) {
	s := loadedScreen(t, nil)

	view := s.View()
	assert.Contains(t, view, "No data found for network")
	assert.NotContains(t, view, "Failed to load")
}

func TestUnparseableInputCoercesToZero(t *testing.T) {
	s := loadedScreen(t, testRecords())

	s.inputs["A/B"].tvl.SetValue("not a number")
	got := s.inputs["A/B"].values()
	assert.Equal(t, 0.0, got.TVL)

	rows := buildComparison(s.records, "A/B", got, "hyperswap")
	for _, row := range rows {
		if row.DEX == "hyperswap-test" {
			assert.Equal(t, 0.0, row.APY24h, "zero tvl must yield zero apy")
		}
	}
}

func TestReferenceRowsHighlighted(t *testing.T) {
	s := loadedScreen(t, testRecords())
	s.togglePair("C/D")

	view := s.View()
	// Both the real reference venue row and the calculator sentinel render.
	assert.Contains(t, view, "hyperswap")
	assert.Contains(t, view, "hyperswap-test")
}

func TestSelectionOrderPreserved(t *testing.T) {
	records := append(testRecords(), pool.Record{Pair: "E/F", DEX: "z", APY24h: 1})
	s := loadedScreen(t, records)

	s.togglePair("E/F")
	s.togglePair("C/D")

	sections := s.buildSections()
	require.Len(t, sections, 3)
	assert.Equal(t, "A/B", sections[0].Pair)
	assert.Equal(t, "E/F", sections[1].Pair)
	assert.Equal(t, "C/D", sections[2].Pair)
}

func TestSectionRowCounts(t *testing.T) {
	s := loadedScreen(t, testRecords())

	sections := s.buildSections()
	require.Len(t, sections, 1)
	assert.Len(t, sections[0].Rows, 3, "two real rows + calculator")
}

func TestExportStatusMessages(t *testing.T) {
	s := loadedScreen(t, testRecords())

	updated, _ := s.Update(ui.ExportDoneMsg{Path: "exports/comparison_x.csv"})
	assert.Contains(t, updated.statusMsg, "Exported to")
	assert.False(t, updated.statusIsErr)

	updated, _ = s.Update(ui.ExportDoneMsg{Err: errors.New("disk full")})
	assert.Contains(t, updated.statusMsg, "Export failed")
	assert.True(t, updated.statusIsErr)
}

func TestQuitKey(t *testing.T) {
	s := loadedScreen(t, testRecords())

	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestCalculatorFocusCycle(t *testing.T) {
	s := loadedScreen(t, testRecords())

	// tab from the pair list enters the first section's first field
	s.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusCalculator, s.focus)
	assert.Equal(t, 0, s.focusField)

	s.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, s.focusField)

	// tab past the last field falls back out to the pair list
	s.Update(tea.KeyMsg{Type: tea.KeyTab})
	s.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusPairs, s.focus)
}

func TestCalculatorEditUpdatesAPY(t *testing.T) {
	s := loadedScreen(t, testRecords())

	in := s.inputs["A/B"]
	in.tier.SetValue("2")
	in.tvl.SetValue("1000")
	in.volume.SetValue("500")

	view := s.View()
	assert.True(t, strings.Contains(view, "365.00%"), "calculator APY must re-render from the edited inputs")
}
