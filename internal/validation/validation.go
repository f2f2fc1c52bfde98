// Package validation checks command-line inputs before any parsing starts.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/pricelist-import/internal/fileutils"
)

// Output formats of the parse command.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXLSX = "xlsx"
)

// ValidateInputFile checks that path is a readable regular file with a
// supported price-list extension.
func ValidateInputFile(path string) error {
	if path == "" {
		return fmt.Errorf("input file is required")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input path %s is not a regular file", path)
	}
	if !fileutils.IsSupportedInput(path) {
		return fmt.Errorf("unsupported input file %s (supported: %s)", path, strings.Join(fileutils.SupportedInputExtensions, ", "))
	}
	return nil
}

// ValidateInputDir checks that path is an existing directory.
func ValidateInputDir(path string) error {
	if path == "" {
		return fmt.Errorf("input directory is required")
	}
	if !fileutils.DirectoryExists(path) {
		return fmt.Errorf("input directory does not exist: %s", path)
	}
	return nil
}

// IsValidOutputFormat checks if the given format is supported.
func IsValidOutputFormat(format string) error {
	switch format {
	case FormatCSV, FormatJSON, FormatYAML, FormatXLSX:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are 'csv', 'json', 'yaml', 'xlsx'", format)
	}
}

// OutputFormatFor infers the output format from the file extension of path,
// falling back to csv.
func OutputFormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatCSV
	}
}
