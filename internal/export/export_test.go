package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orwee/liduido/internal/pool"
)

func testSections() []Section {
	return []Section{
		{
			Pair: "A/B",
			Rows: []pool.Record{
				{Pair: "A/B", DEX: "hyperswap-test", Tier: 2, TVL: 1000, Volume24h: 500, APY24h: 365},
				{Pair: "A/B", DEX: "x", APY24h: 10},
			},
		},
		{
			Pair: "C/D",
			Rows: []pool.Record{
				{Pair: "C/D", DEX: "y", APY24h: 5},
			},
		},
	}
}

func TestExportCSV(t *testing.T) {
	exporter := NewComparisonExporter(zap.NewNop())

	path, err := exporter.Export(testSections(), Options{Format: FormatCSV, OutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".csv"))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4) // header + 3 rows
	assert.Equal(t, []string{"pair", "dex", "tier", "apy_24h", "tvl", "volume24h", "fees24h"}, rows[0])
	assert.Equal(t, "hyperswap-test", rows[1][1])
	assert.Equal(t, "365", rows[1][3])
	assert.Equal(t, "C/D", rows[3][0])
}

func TestExportJSON(t *testing.T) {
	exporter := NewComparisonExporter(zap.NewNop())

	path, err := exporter.Export(testSections(), Options{Format: FormatJSON, OutputDir: t.TempDir()})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded struct {
		PairCount int       `json:"pair_count"`
		Sections  []Section `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.PairCount)
	require.Len(t, decoded.Sections, 2)
	assert.Equal(t, "A/B", decoded.Sections[0].Pair)
}

func TestExportNothingSelected(t *testing.T) {
	exporter := NewComparisonExporter(zap.NewNop())

	_, err := exporter.Export(nil, Options{Format: FormatCSV, OutputDir: t.TempDir()})
	assert.Error(t, err)
}

func TestExportUnsupportedFormat(t *testing.T) {
	exporter := NewComparisonExporter(zap.NewNop())

	_, err := exporter.Export(testSections(), Options{Format: "xml", OutputDir: t.TempDir()})
	assert.Error(t, err)
}
