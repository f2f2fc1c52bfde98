// Package parser provides the base parser functionality and common interfaces.
package parser

import (
	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/parsererror"
	"fjacquet/pricelist-import/internal/transform"
)

// BaseParser provides common functionality for all parser implementations.
// Parsers embed it to share logger handling and record mapping:
//
//	type MyParser struct {
//		parser.BaseParser
//		// parser-specific fields
//	}
type BaseParser struct {
	logger logging.Logger
}

// NewBaseParser creates a new BaseParser instance with the provided logger.
// If logger is nil, a default logger will be used.
func NewBaseParser(logger logging.Logger) BaseParser {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}

	return BaseParser{
		logger: logger,
	}
}

// SetLogger implements the LoggerConfigurable interface.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// GetLogger returns the current logger instance.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// MapRecord turns the raw field values of one data row into an item: it
// applies the declared transformations, then coerces every field to its type.
// The error, if any, is a *parsererror.RowError for that row.
func (b *BaseParser) MapRecord(row int, values map[models.Field]string, ts map[models.Field][]models.Transformation) (models.ParsedPriceListItem, error) {
	transformed, field, err := transform.Fields(values, ts)
	if err != nil {
		return models.ParsedPriceListItem{}, &parsererror.RowError{
			Row:   row,
			Field: string(field),
			Value: values[field],
			Err:   err,
		}
	}

	builder := models.NewPriceListItemBuilder(row)
	for _, f := range models.TargetFields() {
		if v, ok := transformed[f]; ok {
			builder.WithField(f, v)
		}
	}
	return builder.Build()
}
