// Package common provides the output writers shared by the commands.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"

	"github.com/gocarina/gocsv"
)

// ItemCSVRow is the exported column layout of a parsed item.
type ItemCSVRow struct {
	Row              int    `csv:"row"`
	ProductVariantID string `csv:"product_variant_id"`
	ProductID        string `csv:"product_id"`
	SupplierSKU      string `csv:"supplier_sku"`
	VariantSKU       string `csv:"variant_sku"`
	CostPrice        string `csv:"cost_price"`
	Quantity         string `csv:"quantity"`
	LeadTimeDays     string `csv:"lead_time_days"`
	Notes            string `csv:"notes"`
	Description      string `csv:"description"`
}

// ReportCSVRow is one line of an error report.
type ReportCSVRow struct {
	Kind    string `csv:"kind"`
	Message string `csv:"message"`
}

// ToCSVRow flattens an item; unset optional numbers become empty cells.
func ToCSVRow(item models.ParsedPriceListItem) ItemCSVRow {
	return ItemCSVRow{
		Row:              item.Row,
		ProductVariantID: item.ProductVariantID,
		ProductID:        item.ProductID,
		SupplierSKU:      item.SupplierSKU,
		VariantSKU:       item.VariantSKU,
		CostPrice:        item.CostPrice.String(),
		Quantity:         formatOptional(item.Quantity),
		LeadTimeDays:     formatOptional(item.LeadTimeDays),
		Notes:            item.Notes,
		Description:      item.Description,
	}
}

func formatOptional(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// WriteItems writes items as delimited text to w.
func WriteItems(w io.Writer, items []models.ParsedPriceListItem, delimiter rune) error {
	rows := make([]ItemCSVRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, ToCSVRow(item))
	}
	return marshal(w, rows, delimiter)
}

// WriteReport writes the errors and warnings of result to w.
func WriteReport(w io.Writer, result *models.ParseResult, delimiter rune) error {
	rows := make([]ReportCSVRow, 0, len(result.Errors)+len(result.Warnings))
	for _, msg := range result.Errors {
		rows = append(rows, ReportCSVRow{Kind: "error", Message: msg})
	}
	for _, msg := range result.Warnings {
		rows = append(rows, ReportCSVRow{Kind: "warning", Message: msg})
	}
	return marshal(w, rows, delimiter)
}

func marshal(w io.Writer, rows interface{}, delimiter rune) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteItemsToCSV writes items to csvFile, creating its directory.
func WriteItemsToCSV(items []models.ParsedPriceListItem, csvFile string, delimiter rune, logger logging.Logger) error {
	if items == nil {
		return fmt.Errorf("cannot write nil items to CSV")
	}
	return writeFile(csvFile, logger, func(w io.Writer) error {
		return WriteItems(w, items, delimiter)
	}, logging.F(logging.FieldCount, len(items)))
}

// WriteReportToCSV writes the error report of result to csvFile.
func WriteReportToCSV(result *models.ParseResult, csvFile string, delimiter rune, logger logging.Logger) error {
	if result == nil {
		return fmt.Errorf("cannot write report of nil result")
	}
	return writeFile(csvFile, logger, func(w io.Writer) error {
		return WriteReport(w, result, delimiter)
	}, logging.F(logging.FieldErrorCount, len(result.Errors)), logging.F(logging.FieldWarnings, len(result.Warnings)))
}

func writeFile(path string, logger logging.Logger, write func(io.Writer) error, fields ...logging.Field) error {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	log := logger.WithField(logging.FieldOutputFile, path)

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		log.WithError(err).Error("Failed to create directory")
		return fmt.Errorf("error creating directory: %w", err)
	}
	file, err := os.Create(path) // #nosec G304 -- output path chosen by the operator
	if err != nil {
		log.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := write(file); err != nil {
		log.WithError(err).Error("Failed to write CSV file")
		return err
	}
	log.Info("Wrote CSV file", fields...)
	return nil
}

// ReadItemsCSV reads a file previously produced by WriteItemsToCSV.
func ReadItemsCSV(r io.Reader, delimiter rune) ([]ItemCSVRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	var rows []ItemCSVRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}
	return rows, nil
}
