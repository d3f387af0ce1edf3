package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"

	"github.com/adanbank/signal-sentinel/internal/logger"
)

// Category is the closed label set for training examples.
type Category string

const (
	CategoryPositive  Category = "Positive"
	CategoryNegative  Category = "Negative"
	CategoryNeutral   Category = "Neutral"
	CategoryGibberish Category = "Gibberish"
)

// Categories lists all valid categories in a stable order.
var Categories = []Category{CategoryPositive, CategoryNegative, CategoryNeutral, CategoryGibberish}

// ParseCategory maps a raw label to a Category, reporting validity.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.TrimSpace(s)) {
	case CategoryPositive:
		return CategoryPositive, true
	case CategoryNegative:
		return CategoryNegative, true
	case CategoryNeutral:
		return CategoryNeutral, true
	case CategoryGibberish:
		return CategoryGibberish, true
	}
	return "", false
}

// Format identifies the on-disk corpus file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// DetectFormat determines the corpus format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported corpus format: %s", filepath.Ext(path))
	}
}

// Corpus holds labeled training examples pooled by category.
type Corpus struct {
	pools  map[Category][]string
	rng    *rand.Rand
	logger *logger.Logger
}

type parquetRow struct {
	Signals string `parquet:"Signals"`
	Type    string `parquet:"Type"`
}

// Load reads the labeled example file at path. Rows with unknown labels or
// empty text are skipped. A missing file, unreadable content, or zero
// usable rows is an error.
func Load(path string, seed int64, log *logger.Logger) (*Corpus, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var rows [][2]string
	switch format {
	case FormatCSV:
		rows, err = readCSV(path)
	case FormatParquet:
		rows, err = readParquet(path)
	}
	if err != nil {
		return nil, err
	}

	c := &Corpus{
		pools:  make(map[Category][]string),
		rng:    rand.New(rand.NewSource(seed)),
		logger: log.WithComponent("corpus"),
	}

	skipped := 0
	for _, row := range rows {
		text := strings.TrimSpace(row[0])
		cat, ok := ParseCategory(row[1])
		if text == "" || !ok {
			skipped++
			continue
		}
		c.pools[cat] = append(c.pools[cat], text)
	}

	total := 0
	for _, pool := range c.pools {
		total += len(pool)
	}
	if total == 0 {
		return nil, fmt.Errorf("corpus %s contains no usable rows", path)
	}

	c.logger.Info("training corpus loaded",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("examples", total),
		zap.Int("skipped", skipped))

	return c, nil
}

func readCSV(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus header: %w", err)
	}

	textCol, typeCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "Signals":
			textCol = i
		case "Type":
			typeCol = i
		}
	}
	if textCol < 0 || typeCol < 0 {
		return nil, fmt.Errorf("corpus missing Signals/Type columns, got %v", header)
	}

	var rows [][2]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus row: %w", err)
		}
		if len(record) <= textCol || len(record) <= typeCol {
			continue
		}
		rows = append(rows, [2]string{record[textCol], record[typeCol]})
	}
	return rows, nil
}

func readParquet(path string) ([][2]string, error) {
	records, err := parquet.ReadFile[parquetRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet corpus: %w", err)
	}
	rows := make([][2]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, [2]string{rec.Signals, rec.Type})
	}
	return rows, nil
}

// PoolSize returns the number of examples loaded for a category.
func (c *Corpus) PoolSize(cat Category) int {
	return len(c.pools[cat])
}

// Sample returns up to min(n, pool size) examples for the category without
// replacement within one call. An empty pool yields an empty slice.
func (c *Corpus) Sample(cat Category, n int) []string {
	pool := c.pools[cat]
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	if n > len(pool) {
		n = len(pool)
	}
	idx := c.rng.Perm(len(pool))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}
