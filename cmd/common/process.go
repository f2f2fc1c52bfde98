// Package common contains shared functionality for command handlers
package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"fjacquet/pricelist-import/internal/common"
	"fjacquet/pricelist-import/internal/container"
	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/schema"
	"fjacquet/pricelist-import/internal/validation"

	"gopkg.in/yaml.v3"
)

// ErrRowsRejected is returned when a parse result fails the error policy.
var ErrRowsRejected = errors.New("price list rejected")

// LoadParserConfig returns the parser configuration named by exactly one of
// templateName and configFile.
func LoadParserConfig(templateName, configFile string) (models.ParserConfig, error) {
	switch {
	case templateName != "" && configFile != "":
		return models.ParserConfig{}, fmt.Errorf("use either --template or --config, not both")
	case templateName != "":
		return models.ParserConfig{TemplateName: templateName}, nil
	case configFile != "":
		return schema.DecodeFile(configFile)
	default:
		return models.ParserConfig{}, fmt.Errorf("a parser configuration is required (--template or --config)")
	}
}

// ParseOptions controls RunParse.
type ParseOptions struct {
	Input  string
	Output string
	// Format of Output; inferred from its extension when empty.
	Format string
	// ErrorsReport receives the error and warning report when set.
	ErrorsReport string
	// Strict rejects results with any row error.
	Strict bool
	// MaxErrorRatio rejects results whose share of failed rows exceeds it.
	MaxErrorRatio float64
	Delimiter     rune
}

// RunParse parses opts.Input and writes the items. Without an output file the
// items go to stdout in the requested format (csv by default). The result is
// returned even when it is rejected by the error policy.
func RunParse(c *container.Container, cfg models.ParserConfig, opts ParseOptions, stdout io.Writer) (*models.ParseResult, error) {
	if err := validation.ValidateInputFile(opts.Input); err != nil {
		return nil, err
	}

	format := opts.Format
	if format == "" {
		format = validation.OutputFormatFor(opts.Output)
	}
	if err := validation.IsValidOutputFormat(format); err != nil {
		return nil, err
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}

	logger := c.GetLogger().WithField(logging.FieldInputFile, opts.Input)
	result, err := c.ParseFile(cfg, opts.Input)
	if err != nil {
		return nil, err
	}

	if opts.ErrorsReport != "" {
		if err := common.WriteReportToCSV(result, opts.ErrorsReport, opts.Delimiter, logger); err != nil {
			return result, err
		}
	}

	if err := writeItems(result, opts, format, stdout, logger); err != nil {
		return result, err
	}

	if err := CheckResult(result, opts.Strict, opts.MaxErrorRatio); err != nil {
		return result, err
	}
	return result, nil
}

func writeItems(result *models.ParseResult, opts ParseOptions, format string, stdout io.Writer, logger logging.Logger) error {
	if opts.Output == "" {
		return WriteResult(stdout, result, format, opts.Delimiter)
	}
	switch format {
	case validation.FormatCSV:
		return common.WriteItemsToCSV(result.Items, opts.Output, opts.Delimiter, logger)
	case validation.FormatXLSX:
		return common.WriteItemsToXLSX(result.Items, opts.Output, logger)
	}

	file, err := os.Create(opts.Output) // #nosec G304 -- output path chosen by the operator
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()
	return WriteResult(file, result, format, opts.Delimiter)
}

// WriteResult writes result to w. csv writes the items only; json and yaml
// write the whole result including errors and counters.
func WriteResult(w io.Writer, result *models.ParseResult, format string, delimiter rune) error {
	switch format {
	case validation.FormatCSV, "":
		return common.WriteItems(w, result.Items, delimiter)
	case validation.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case validation.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	case validation.FormatXLSX:
		return common.WriteItemsXLSX(w, result.Items, common.DefaultItemsSheet)
	default:
		return validation.IsValidOutputFormat(format)
	}
}

// CheckResult applies the error policy to result. A zero maxErrorRatio means
// no ratio limit.
func CheckResult(result *models.ParseResult, strict bool, maxErrorRatio float64) error {
	if !result.HasErrors() {
		return nil
	}
	if strict {
		return fmt.Errorf("%w: %d of %d rows failed", ErrRowsRejected, len(result.Errors), result.TotalRows)
	}
	if maxErrorRatio > 0 && result.ErrorRatio() > maxErrorRatio {
		return fmt.Errorf("%w: error ratio %.2f exceeds %.2f", ErrRowsRejected, result.ErrorRatio(), maxErrorRatio)
	}
	return nil
}

// PrintSummary writes the counters of result and its messages to w.
func PrintSummary(w io.Writer, result *models.ParseResult) {
	fmt.Fprintf(w, "Rows: %d, items: %d, errors: %d, warnings: %d\n",
		result.TotalRows, len(result.Items), len(result.Errors), len(result.Warnings))
	for _, msg := range result.Errors {
		fmt.Fprintf(w, "  error: %s\n", msg)
	}
	for _, msg := range result.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", msg)
	}
}
