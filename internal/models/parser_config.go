package models

import (
	"sort"
	"unicode/utf8"
)

// ParserType selects the layout of a price-list payload.
type ParserType string

const (
	ParserTypeCSV        ParserType = "csv"
	ParserTypeFixedWidth ParserType = "fixed-width"
)

// Known reports whether t is a supported parser type.
func (t ParserType) Known() bool {
	return t == ParserTypeCSV || t == ParserTypeFixedWidth
}

// ParserConfig describes how one import payload is read. Exactly one of CSV and
// FixedWidth is set and it matches Type; a config that only names a template
// has neither until the template is resolved.
type ParserConfig struct {
	Type         ParserType
	TemplateName string
	CSV          *CsvConfig
	FixedWidth   *FixedWidthConfig
}

// IsTemplateReference reports whether the config only names a stored template.
func (c ParserConfig) IsTemplateReference() bool {
	return c.CSV == nil && c.FixedWidth == nil && c.TemplateName != ""
}

// Transformations returns the declared transformations of the active variant.
func (c ParserConfig) Transformations() map[string][]Transformation {
	switch {
	case c.CSV != nil:
		return c.CSV.Transformations
	case c.FixedWidth != nil:
		return c.FixedWidth.Transformations
	}
	return nil
}

// FieldTransformations returns the transformations keyed by canonical field.
func (c ParserConfig) FieldTransformations() map[Field][]Transformation {
	return NormalizeTransformations(c.Transformations())
}

// ColumnRef lists candidate source columns for one field; the first one
// present in the header wins. Without a header each entry is a 0-based index.
type ColumnRef []string

// CsvConfig is the delimited-text layout. Sheet is only used when the payload
// is an XLSX workbook.
type CsvConfig struct {
	Delimiter       string                      `yaml:"delimiter"`
	QuoteChar       string                      `yaml:"quote_char"`
	HasHeader       bool                        `yaml:"has_header"`
	SkipRows        int                         `yaml:"skip_rows"`
	ColumnMapping   map[string]ColumnRef        `yaml:"column_mapping"`
	Transformations map[string][]Transformation `yaml:"transformations,omitempty"`
	Sheet           string                      `yaml:"sheet,omitempty"`
}

// NewCsvConfig returns a CsvConfig with the documented defaults.
func NewCsvConfig() *CsvConfig {
	return &CsvConfig{
		Delimiter:     ",",
		QuoteChar:     `"`,
		HasHeader:     true,
		ColumnMapping: map[string]ColumnRef{},
	}
}

// DelimiterRune returns the delimiter as a rune (',' when unset).
func (c *CsvConfig) DelimiterRune() rune {
	return firstRune(c.Delimiter, ',')
}

// QuoteRune returns the quote character as a rune ('"' when unset).
func (c *CsvConfig) QuoteRune() rune {
	return firstRune(c.QuoteChar, '"')
}

// MappedColumn is one resolved entry of a column mapping.
type MappedColumn struct {
	Field      Field
	Candidates ColumnRef
}

// MappedColumns returns the mapping in canonical field order. Unknown field
// names are skipped; the schema validator reports them.
func (c *CsvConfig) MappedColumns() []MappedColumn {
	byField := make(map[Field]ColumnRef, len(c.ColumnMapping))
	names := make([]string, 0, len(c.ColumnMapping))
	for name := range c.ColumnMapping {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f, ok := NormalizeField(name)
		if !ok {
			continue
		}
		if _, dup := byField[f]; dup && string(f) != name {
			continue
		}
		byField[f] = c.ColumnMapping[name]
	}

	out := make([]MappedColumn, 0, len(byField))
	for _, f := range targetFields {
		if ref, ok := byField[f]; ok {
			out = append(out, MappedColumn{Field: f, Candidates: ref})
		}
	}
	return out
}

// FixedWidthColumn is the character slice [Start, Start+Width) of a line.
type FixedWidthColumn struct {
	Field string `yaml:"field"`
	Start int    `yaml:"start"`
	Width int    `yaml:"width"`
}

// End returns the exclusive end offset of the column.
func (c FixedWidthColumn) End() int {
	return c.Start + c.Width
}

// FixedWidthConfig is the fixed-width text layout.
type FixedWidthConfig struct {
	SkipRows        int                         `yaml:"skip_rows"`
	Columns         []FixedWidthColumn          `yaml:"fixed_width_columns"`
	Transformations map[string][]Transformation `yaml:"transformations,omitempty"`
}

// NormalizeTransformations rekeys transformations by canonical field.
func NormalizeTransformations(in map[string][]Transformation) map[Field][]Transformation {
	if len(in) == 0 {
		return map[Field][]Transformation{}
	}
	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	// canonical keys first, then aliases
	sort.SliceStable(names, func(i, j int) bool {
		ci := isCanonical(names[i])
		cj := isCanonical(names[j])
		if ci != cj {
			return ci
		}
		return names[i] < names[j]
	})

	out := make(map[Field][]Transformation, len(in))
	for _, name := range names {
		f, ok := NormalizeField(name)
		if !ok {
			continue
		}
		out[f] = append(out[f], in[name]...)
	}
	return out
}

func isCanonical(name string) bool {
	f, ok := NormalizeField(name)
	return ok && string(f) == name
}

func firstRune(s string, fallback rune) rune {
	if s == "" {
		return fallback
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
