// Package schema validates parser configurations before any row is read.
//
// A configuration that fails here makes every parsed row meaningless, so
// callers abort the import on error. All violations are reported at once with
// the path of the offending field; nothing is coerced.
package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"fjacquet/pricelist-import/internal/currencyutils"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/parsererror"
)

// Validate checks cfg and returns a *parsererror.ConfigValidationError listing
// every violation, or nil.
func Validate(cfg models.ParserConfig) error {
	verr := &parsererror.ConfigValidationError{}

	if !cfg.Type.Known() {
		if cfg.Type == "" {
			verr.Add("type", "is required")
		} else {
			verr.Add("type", "unknown parser type %q (expected %q or %q)", cfg.Type, models.ParserTypeCSV, models.ParserTypeFixedWidth)
		}
	}

	switch {
	case cfg.CSV != nil && cfg.FixedWidth != nil:
		verr.Add("config", "must hold exactly one layout, got both csv and fixed-width")
	case cfg.CSV == nil && cfg.FixedWidth == nil:
		verr.Add("config", "is required")
	case cfg.CSV != nil && cfg.Type == models.ParserTypeFixedWidth:
		verr.Add("config", "csv layout given for type %q", cfg.Type)
	case cfg.FixedWidth != nil && cfg.Type == models.ParserTypeCSV:
		verr.Add("config", "fixed-width layout given for type %q", cfg.Type)
	case cfg.CSV != nil:
		validateCSV(cfg.CSV, verr)
	case cfg.FixedWidth != nil:
		validateFixedWidth(cfg.FixedWidth, verr)
	}

	return verr.OrNil()
}

func validateCSV(c *models.CsvConfig, verr *parsererror.ConfigValidationError) {
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		verr.Add("config.delimiter", "must be exactly one character, got %q", c.Delimiter)
	}
	if utf8.RuneCountInString(c.QuoteChar) != 1 {
		verr.Add("config.quote_char", "must be exactly one character, got %q", c.QuoteChar)
	}
	if c.Delimiter != "" && c.Delimiter == c.QuoteChar {
		verr.Add("config.quote_char", "must differ from the delimiter")
	}
	if isLineBreak(c.QuoteChar) || isLineBreak(c.Delimiter) {
		verr.Add("config.delimiter", "line breaks cannot be used as delimiter or quote")
	}
	if c.SkipRows < 0 {
		verr.Add("config.skip_rows", "must be >= 0, got %d", c.SkipRows)
	}

	if len(c.ColumnMapping) == 0 {
		verr.Add("config.column_mapping", "must map at least cost_price and one identifier")
	}

	mapped := map[models.Field]string{}
	for _, name := range sortedKeys(c.ColumnMapping) {
		path := "config.column_mapping." + name
		field, ok := models.NormalizeField(name)
		if !ok {
			verr.Add(path, "unknown target field %q", name)
			continue
		}
		if other, dup := mapped[field]; dup {
			verr.Add(path, "maps %s which is already mapped by %q", field, other)
			continue
		}
		mapped[field] = name

		ref := c.ColumnMapping[name]
		if len(ref) == 0 {
			verr.Add(path, "must name at least one source column")
		}
		for i, candidate := range ref {
			candidatePath := fmt.Sprintf("%s[%d]", path, i)
			if strings.TrimSpace(candidate) == "" {
				verr.Add(candidatePath, "column name must not be blank")
				continue
			}
			if !c.HasHeader {
				idx, err := strconv.Atoi(strings.TrimSpace(candidate))
				if err != nil || idx < 0 {
					verr.Add(candidatePath, "must be a 0-based column index when has_header is false, got %q", candidate)
				}
			}
		}
	}

	checkRequiredFields(mapped, "config.column_mapping", verr)
	validateTransformations(c.Transformations, mapped, verr)
}

func validateFixedWidth(c *models.FixedWidthConfig, verr *parsererror.ConfigValidationError) {
	if c.SkipRows < 0 {
		verr.Add("config.skip_rows", "must be >= 0, got %d", c.SkipRows)
	}
	if len(c.Columns) == 0 {
		verr.Add("config.fixed_width_columns", "must declare at least cost_price and one identifier")
	}

	mapped := map[models.Field]string{}
	for i, col := range c.Columns {
		path := fmt.Sprintf("config.fixed_width_columns[%d]", i)
		field, ok := models.NormalizeField(col.Field)
		switch {
		case !ok:
			verr.Add(path+".field", "unknown target field %q", col.Field)
		default:
			if other, dup := mapped[field]; dup {
				verr.Add(path+".field", "maps %s which is already mapped by %q", field, other)
			} else {
				mapped[field] = col.Field
			}
		}
		if col.Start < 0 {
			verr.Add(path+".start", "must be >= 0, got %d", col.Start)
		}
		if col.Width < 1 {
			verr.Add(path+".width", "must be >= 1, got %d", col.Width)
		}
	}

	checkRequiredFields(mapped, "config.fixed_width_columns", verr)
	validateTransformations(c.Transformations, mapped, verr)
}

func checkRequiredFields(mapped map[models.Field]string, path string, verr *parsererror.ConfigValidationError) {
	if len(mapped) == 0 {
		return
	}
	if _, ok := mapped[models.FieldCostPrice]; !ok {
		verr.Add(path, "cost_price must be mapped")
	}
	for _, f := range models.IdentifierFields() {
		if _, ok := mapped[f]; ok {
			return
		}
	}
	verr.Add(path, "at least one identifier (product_variant_id, supplier_sku, variant_sku, product_id) must be mapped")
}

func validateTransformations(ts map[string][]models.Transformation, mapped map[models.Field]string, verr *parsererror.ConfigValidationError) {
	declared := map[models.Field]string{}
	for _, name := range sortedKeys(ts) {
		path := "config.transformations." + name
		field, ok := models.NormalizeField(name)
		if !ok {
			verr.Add(path, "unknown target field %q", name)
			continue
		}
		if other, dup := declared[field]; dup {
			verr.Add(path, "transforms %s which is already transformed by %q", field, other)
			continue
		}
		declared[field] = name
		if _, ok := mapped[field]; !ok {
			verr.Add(path, "field %s has transformations but no source column", field)
		}
		for i, t := range ts[name] {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			switch t.Kind {
			case models.TransformDivide, models.TransformMultiply:
				if !currencyutils.InRange(t.Factor) {
					verr.Add(itemPath+"."+factorKey(t.Kind), "out of range, got %s", t.Factor.String())
					continue
				}
				if !t.Factor.IsPositive() {
					verr.Add(itemPath+"."+factorKey(t.Kind), "must be > 0, got %s", t.Factor.String())
				}
			case models.TransformTrim, models.TransformUppercase, models.TransformLowercase:
			default:
				verr.Add(itemPath+".type", "unknown transformation %q", t.Kind)
			}
		}
	}
}

func factorKey(kind models.TransformKind) string {
	if kind == models.TransformDivide {
		return "divisor"
	}
	return "multiplier"
}

// isLineBreak rejects characters consumed by line splitting.
func isLineBreak(s string) bool {
	return s == "\n" || s == "\r"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
