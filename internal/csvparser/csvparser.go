// Package csvparser reads delimited supplier price lists.
//
// The delimiter and quote character come from the parser configuration, which
// is why lines are split here rather than with encoding/csv: its quote is
// fixed to '"'. Fields never span lines.
package csvparser

import (
	"fmt"
	"io"

	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/parser"
)

// Parser parses CSV payloads laid out as described by a CsvConfig.
type Parser struct {
	parser.BaseParser
	config *models.CsvConfig
	source string
}

// NewParser creates a CSV parser. cfg must have passed schema validation.
func NewParser(cfg *models.CsvConfig, logger logging.Logger) *Parser {
	return &Parser{
		BaseParser: parser.NewBaseParser(logger),
		config:     cfg,
	}
}

// WithSource names the payload in format errors.
func (p *Parser) WithSource(source string) *Parser {
	p.source = source
	return p
}

// Parse implements parser.Parser.
func (p *Parser) Parse(r io.Reader) (*models.ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	lines := splitLines(string(data))
	p.GetLogger().Debug("Splitting CSV payload",
		logging.F(logging.FieldDelimiter, p.config.Delimiter),
		logging.F(logging.FieldCount, len(lines)))

	records := toRecords(lines, p.config.DelimiterRune(), p.config.QuoteRune())
	result, err := p.ParseTable(p.config, records, parser.TableOptions{Source: p.source})
	if err != nil {
		return nil, err
	}

	p.GetLogger().Info("Parsed CSV price list",
		logging.F(logging.FieldParser, string(models.ParserTypeCSV)),
		logging.F(logging.FieldTotalRows, result.TotalRows),
		logging.F(logging.FieldCount, result.ProcessedRows),
		logging.F(logging.FieldErrorCount, len(result.Errors)),
		logging.F(logging.FieldWarnings, len(result.Warnings)))
	return result, nil
}
