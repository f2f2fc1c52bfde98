// Package fixedwidthparser reads supplier price lists laid out in fixed
// character columns.
package fixedwidthparser

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/parser"
)

// Parser slices each data line into the configured columns.
type Parser struct {
	parser.BaseParser
	config *models.FixedWidthConfig
}

// NewParser creates a fixed-width parser. cfg must have passed schema validation.
func NewParser(cfg *models.FixedWidthConfig, logger logging.Logger) *Parser {
	return &Parser{
		BaseParser: parser.NewBaseParser(logger),
		config:     cfg,
	}
}

type column struct {
	field models.Field
	start int
	end   int
}

// Parse implements parser.Parser. Offsets count characters, not bytes.
func (p *Parser) Parse(r io.Reader) (*models.ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	columns := make([]column, 0, len(p.config.Columns))
	for _, c := range p.config.Columns {
		f, ok := models.NormalizeField(c.Field)
		if !ok {
			continue
		}
		columns = append(columns, column{field: f, start: c.Start, end: c.End()})
	}
	ts := models.NormalizeTransformations(p.config.Transformations)

	agg := parser.NewAggregator()
	lines := strings.Split(strings.TrimPrefix(string(data), "\uFEFF"), "\n")
	for i, line := range lines {
		row := i + 1
		if i < p.config.SkipRows {
			continue
		}
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		values, err := slice([]rune(line), columns)
		if err != nil {
			agg.AddError(row, err)
			continue
		}
		item, err := p.MapRecord(row, values, ts)
		if err != nil {
			agg.AddError(row, err)
			continue
		}
		agg.AddItem(item)
	}

	result := agg.Result()
	p.GetLogger().Info("Parsed fixed-width price list",
		logging.F(logging.FieldParser, string(models.ParserTypeFixedWidth)),
		logging.F(logging.FieldTotalRows, result.TotalRows),
		logging.F(logging.FieldCount, result.ProcessedRows),
		logging.F(logging.FieldErrorCount, len(result.Errors)))
	return result, nil
}

// slice extracts every column of one line. A column that starts past the end
// of the line fails the row; one that is cut short keeps what is there.
func slice(line []rune, columns []column) (map[models.Field]string, error) {
	values := make(map[models.Field]string, len(columns))
	for _, c := range columns {
		if c.start >= len(line) {
			return nil, fmt.Errorf("line has %d characters, column %s starts at %d", len(line), c.field, c.start)
		}
		end := c.end
		if end > len(line) {
			end = len(line)
		}
		values[c.field] = string(line[c.start:end])
	}
	return values, nil
}
