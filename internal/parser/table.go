package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/parsererror"
)

// Record is one physical line (or sheet row) of a tabular payload.
type Record struct {
	// Line is the 1-based physical position in the payload.
	Line     int
	Cells    []string
	Blank    bool
	Warnings []string
}

// TableOptions tunes ParseTable for the record source.
type TableOptions struct {
	// PadShortRows fills missing trailing cells with "" instead of failing the
	// row. Spreadsheet readers drop trailing empty cells, text lines do not.
	PadShortRows bool
	// Source names the payload in InvalidFormatError, usually a file path.
	Source string
}

type resolvedColumn struct {
	field models.Field
	index int
}

// ParseTable runs the shared skip/header/mapping pipeline over records.
func (b *BaseParser) ParseTable(cfg *models.CsvConfig, records []Record, opts TableOptions) (*models.ParseResult, error) {
	agg := NewAggregator()

	skip := cfg.SkipRows
	if skip > len(records) {
		skip = len(records)
	}
	records = records[skip:]

	var columns []resolvedColumn
	if cfg.HasHeader {
		headerAt := -1
		for i, rec := range records {
			if !rec.Blank {
				headerAt = i
				break
			}
		}
		if headerAt < 0 {
			agg.AddWarning(0, "no header row found")
			return agg.Result(), nil
		}
		header := records[headerAt]
		for _, w := range header.Warnings {
			agg.AddWarning(header.Line, w)
		}

		var warnings []string
		var err error
		columns, warnings, err = resolveHeader(header.Cells, cfg.MappedColumns())
		if err != nil {
			var ife *parsererror.InvalidFormatError
			if errors.As(err, &ife) {
				ife.FilePath = opts.Source
			}
			return nil, err
		}
		for _, w := range warnings {
			agg.AddWarning(0, w)
		}
		records = records[headerAt+1:]
	} else {
		columns = indexColumns(cfg.MappedColumns())
	}

	maxIndex := -1
	for _, c := range columns {
		if c.index > maxIndex {
			maxIndex = c.index
		}
		b.logger.Debug("Mapped column",
			logging.F("field", c.field.String()),
			logging.F("index", c.index))
	}

	ts := models.NormalizeTransformations(cfg.Transformations)
	for _, rec := range records {
		if rec.Blank {
			continue
		}
		for _, w := range rec.Warnings {
			agg.AddWarning(rec.Line, w)
		}

		cells := rec.Cells
		if len(cells) <= maxIndex {
			if !opts.PadShortRows {
				agg.AddError(rec.Line, fmt.Errorf("expected at least %d columns, got %d", maxIndex+1, len(cells)))
				continue
			}
			padded := make([]string, maxIndex+1)
			copy(padded, cells)
			cells = padded
		}

		values := make(map[models.Field]string, len(columns))
		for _, c := range columns {
			values[c.field] = cells[c.index]
		}

		item, err := b.MapRecord(rec.Line, values, ts)
		if err != nil {
			agg.AddError(rec.Line, err)
			continue
		}
		agg.AddItem(item)
	}

	return agg.Result(), nil
}

// resolveHeader finds the column index of every mapped field. Each candidate
// is tried in order, first by exact (trimmed) name, then case-insensitively.
func resolveHeader(header []string, mapped []models.MappedColumn) ([]resolvedColumn, []string, error) {
	var (
		columns  []resolvedColumn
		warnings []string
		haveID   bool
	)
	for _, m := range mapped {
		idx := findColumn(header, m.Candidates)
		if idx < 0 {
			tried := strings.Join(m.Candidates, ", ")
			if m.Field == models.FieldCostPrice {
				return nil, nil, &parsererror.InvalidFormatError{
					ExpectedFormat: "a header row with the mapped columns",
					Msg:            fmt.Sprintf("no cost_price column in header (tried: %s)", tried),
				}
			}
			warnings = append(warnings, fmt.Sprintf("column for %s not found in header (tried: %s)", m.Field, tried))
			continue
		}
		if m.Field.IsIdentifier() {
			haveID = true
		}
		columns = append(columns, resolvedColumn{field: m.Field, index: idx})
	}
	if !haveID {
		return nil, nil, &parsererror.InvalidFormatError{
			ExpectedFormat: "a header row with the mapped columns",
			Msg:            "no identifier column found in header",
		}
	}
	return columns, warnings, nil
}

func findColumn(header []string, candidates models.ColumnRef) int {
	for _, candidate := range candidates {
		want := strings.TrimSpace(candidate)
		for i, cell := range header {
			if strings.TrimSpace(cell) == want {
				return i
			}
		}
		for i, cell := range header {
			if strings.EqualFold(strings.TrimSpace(cell), want) {
				return i
			}
		}
	}
	return -1
}

// indexColumns maps headerless columns; the first candidate that is a valid
// index wins.
func indexColumns(mapped []models.MappedColumn) []resolvedColumn {
	columns := make([]resolvedColumn, 0, len(mapped))
	for _, m := range mapped {
		for _, candidate := range m.Candidates {
			idx, err := strconv.Atoi(strings.TrimSpace(candidate))
			if err == nil && idx >= 0 {
				columns = append(columns, resolvedColumn{field: m.Field, index: idx})
				break
			}
		}
	}
	return columns
}
