// Package factory hands out the parser matching a parser configuration.
package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/pricelist-import/internal/csvparser"
	"fjacquet/pricelist-import/internal/fixedwidthparser"
	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/parser"
	"fjacquet/pricelist-import/internal/schema"
	"fjacquet/pricelist-import/internal/xlsxparser"
)

// GetParser validates cfg and returns the parser for its type. Template
// references must be resolved before calling.
func GetParser(cfg models.ParserConfig, logger logging.Logger) (parser.FullParser, error) {
	if cfg.IsTemplateReference() {
		return nil, fmt.Errorf("parser template %q is not resolved", cfg.TemplateName)
	}
	if err := schema.Validate(cfg); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case models.ParserTypeCSV:
		return csvparser.NewParser(cfg.CSV, logger), nil
	case models.ParserTypeFixedWidth:
		return fixedwidthparser.NewParser(cfg.FixedWidth, logger), nil
	default:
		return nil, fmt.Errorf("unknown parser type: %s", cfg.Type)
	}
}

// GetParserForFile is GetParser for a payload read from path: CSV
// configurations read .xlsx files as workbooks and name the file in format
// errors.
func GetParserForFile(cfg models.ParserConfig, path string, logger logging.Logger) (parser.FullParser, error) {
	p, err := GetParser(cfg, logger)
	if err != nil {
		return nil, err
	}
	switch typed := p.(type) {
	case *csvparser.Parser:
		if IsWorkbook(path) {
			return xlsxparser.NewParser(cfg.CSV, logger).WithSource(path), nil
		}
		return typed.WithSource(path), nil
	}
	if IsWorkbook(path) {
		return nil, fmt.Errorf("%s: %s configurations cannot read Excel workbooks", path, cfg.Type)
	}
	return p, nil
}

// IsWorkbook reports whether path names an Excel workbook.
func IsWorkbook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// ParseFile opens path and parses it with the parser chosen for the file.
func ParseFile(cfg models.ParserConfig, path string, logger logging.Logger) (*models.ParseResult, error) {
	p, err := GetParserForFile(cfg, path, logger)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && logger != nil {
			logger.WithError(cerr).Warn("Failed to close file", logging.F(logging.FieldFile, path))
		}
	}()

	return p.Parse(file)
}
