package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"

	"github.com/xuri/excelize/v2"
)

// DefaultItemsSheet names the worksheet written by WriteItemsXLSX.
const DefaultItemsSheet = "Items"

var itemHeaders = []string{
	"row", "product_variant_id", "product_id", "supplier_sku", "variant_sku",
	"cost_price", "quantity", "lead_time_days", "notes", "description",
}

// WriteItemsXLSX writes items to a single worksheet. Prices are written as
// text to keep their exact decimal representation.
func WriteItemsXLSX(w io.Writer, items []models.ParsedPriceListItem, sheet string) error {
	if sheet == "" {
		sheet = DefaultItemsSheet
	}
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &itemHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(itemHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, item := range items {
		row := ToCSVRow(item)
		values := []interface{}{
			row.Row, row.ProductVariantID, row.ProductID, row.SupplierSKU, row.VariantSKU,
			row.CostPrice, row.Quantity, row.LeadTimeDays, row.Notes, row.Description,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteItemsToXLSX writes items to xlsxFile, creating its directory.
func WriteItemsToXLSX(items []models.ParsedPriceListItem, xlsxFile string, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if err := os.MkdirAll(filepath.Dir(xlsxFile), 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	file, err := os.Create(xlsxFile) // #nosec G304 -- output path chosen by the operator
	if err != nil {
		return fmt.Errorf("error creating Excel file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteItemsXLSX(file, items, DefaultItemsSheet); err != nil {
		return err
	}
	logger.Info("Wrote Excel file",
		logging.F(logging.FieldOutputFile, xlsxFile),
		logging.F(logging.FieldCount, len(items)))
	return nil
}
