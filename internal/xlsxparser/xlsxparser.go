// Package xlsxparser reads supplier price lists delivered as Excel workbooks.
// Rows of the selected sheet go through the same header and mapping pipeline
// as CSV lines.
package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/parser"

	"github.com/xuri/excelize/v2"
)

// Parser parses XLSX payloads with a CsvConfig; delimiter and quote are unused.
type Parser struct {
	parser.BaseParser
	config *models.CsvConfig
	source string
}

// NewParser creates an XLSX parser. cfg must have passed schema validation.
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
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			p.GetLogger().WithError(cerr).Warn("Failed to close workbook")
		}
	}()

	sheet, err := p.sheetName(f)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	p.GetLogger().Debug("Read workbook sheet",
		logging.F("sheet", sheet),
		logging.F(logging.FieldCount, len(rows)))

	records := make([]parser.Record, 0, len(rows))
	for i, cells := range rows {
		rec := parser.Record{Line: i + 1, Cells: cells}
		rec.Blank = isBlank(cells)
		records = append(records, rec)
	}

	result, err := p.ParseTable(p.config, records, parser.TableOptions{PadShortRows: true, Source: p.source})
	if err != nil {
		return nil, err
	}

	p.GetLogger().Info("Parsed XLSX price list",
		logging.F(logging.FieldParser, "xlsx"),
		logging.F(logging.FieldTotalRows, result.TotalRows),
		logging.F(logging.FieldCount, result.ProcessedRows),
		logging.F(logging.FieldErrorCount, len(result.Errors)))
	return result, nil
}

func (p *Parser) sheetName(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("no sheets found in Excel file")
	}
	if p.config.Sheet == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if strings.EqualFold(s, p.config.Sheet) {
			return s, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found (available: %s)", p.config.Sheet, strings.Join(sheets, ", "))
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
