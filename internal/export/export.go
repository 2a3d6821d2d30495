package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/orwee/liduido/internal/pool"
)

// Format represents the export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Section is one pair's rendered comparison: its real rows merged with the
// calculator row, already sorted by APY.
type Section struct {
	Pair string        `json:"pair"`
	Rows []pool.Record `json:"rows"`
}

// Options configures the export behavior
type Options struct {
	Format    Format
	OutputDir string
}

// ComparisonExporter writes rendered comparisons to disk. It only ever
// exports derived output; nothing is written back to the store.
type ComparisonExporter struct {
	logger *zap.Logger
}

func NewComparisonExporter(logger *zap.Logger) *ComparisonExporter {
	return &ComparisonExporter{logger: logger}
}

// Export writes the sections in their given order and returns the path of
// the written file.
func (e *ComparisonExporter) Export(sections []Section, options Options) (string, error) {
	if len(sections) == 0 {
		return "", fmt.Errorf("nothing to export")
	}

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("comparison_%s.%s", time.Now().Format("20060102_150405"), options.Format)
	outputPath := filepath.Join(options.OutputDir, filename)

	var err error
	switch options.Format {
	case FormatCSV:
		err = e.exportToCSV(sections, outputPath)
	case FormatJSON:
		err = e.exportToJSON(sections, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("Comparison exported",
		zap.String("file", outputPath),
		zap.Int("pairs", len(sections)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

func (e *ComparisonExporter) exportToCSV(sections []Section, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"pair", "dex", "tier", "apy_24h", "tvl", "volume24h", "fees24h"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, section := range sections {
		for _, row := range section.Rows {
			record := []string{
				row.Pair,
				row.DEX,
				formatFloat(row.Tier),
				formatFloat(row.APY24h),
				formatFloat(row.TVL),
				formatFloat(row.Volume24h),
				formatFloat(row.Fees24h),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	return nil
}

func (e *ComparisonExporter) exportToJSON(sections []Section, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	exportData := struct {
		ExportTime time.Time `json:"export_time"`
		PairCount  int       `json:"pair_count"`
		Sections   []Section `json:"sections"`
	}{
		ExportTime: time.Now(),
		PairCount:  len(sections),
		Sections:   sections,
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
