package schema

import (
	"fjacquet/pricelist-import/internal/models"
)

// ParserConfigBuilder assembles a ParserConfig in code; Build runs the same
// validation as a decoded document.
type ParserConfigBuilder struct {
	cfg models.ParserConfig
}

// NewCSVBuilder starts a CSV configuration with the default layout options.
func NewCSVBuilder() *ParserConfigBuilder {
	return &ParserConfigBuilder{cfg: models.ParserConfig{
		Type: models.ParserTypeCSV,
		CSV:  models.NewCsvConfig(),
	}}
}

// NewFixedWidthBuilder starts a fixed-width configuration.
func NewFixedWidthBuilder() *ParserConfigBuilder {
	return &ParserConfigBuilder{cfg: models.ParserConfig{
		Type:       models.ParserTypeFixedWidth,
		FixedWidth: &models.FixedWidthConfig{},
	}}
}

func (b *ParserConfigBuilder) WithTemplateName(name string) *ParserConfigBuilder {
	b.cfg.TemplateName = name
	return b
}

func (b *ParserConfigBuilder) WithDelimiter(delimiter string) *ParserConfigBuilder {
	if b.cfg.CSV != nil {
		b.cfg.CSV.Delimiter = delimiter
	}
	return b
}

func (b *ParserConfigBuilder) WithQuoteChar(quote string) *ParserConfigBuilder {
	if b.cfg.CSV != nil {
		b.cfg.CSV.QuoteChar = quote
	}
	return b
}

func (b *ParserConfigBuilder) WithHeader(hasHeader bool) *ParserConfigBuilder {
	if b.cfg.CSV != nil {
		b.cfg.CSV.HasHeader = hasHeader
	}
	return b
}

func (b *ParserConfigBuilder) WithSheet(sheet string) *ParserConfigBuilder {
	if b.cfg.CSV != nil {
		b.cfg.CSV.Sheet = sheet
	}
	return b
}

// WithSkipRows sets the number of physical lines ignored before the header or data.
func (b *ParserConfigBuilder) WithSkipRows(n int) *ParserConfigBuilder {
	switch {
	case b.cfg.CSV != nil:
		b.cfg.CSV.SkipRows = n
	case b.cfg.FixedWidth != nil:
		b.cfg.FixedWidth.SkipRows = n
	}
	return b
}

// MapColumn maps a target field to one or more candidate source columns.
func (b *ParserConfigBuilder) MapColumn(field string, candidates ...string) *ParserConfigBuilder {
	if b.cfg.CSV != nil {
		b.cfg.CSV.ColumnMapping[field] = models.ColumnRef(candidates)
	}
	return b
}

// AddColumn declares a fixed-width column.
func (b *ParserConfigBuilder) AddColumn(field string, start, width int) *ParserConfigBuilder {
	if b.cfg.FixedWidth != nil {
		b.cfg.FixedWidth.Columns = append(b.cfg.FixedWidth.Columns, models.FixedWidthColumn{
			Field: field,
			Start: start,
			Width: width,
		})
	}
	return b
}

// WithTransformations appends transformations for field.
func (b *ParserConfigBuilder) WithTransformations(field string, ts ...models.Transformation) *ParserConfigBuilder {
	var target *map[string][]models.Transformation
	switch {
	case b.cfg.CSV != nil:
		target = &b.cfg.CSV.Transformations
	case b.cfg.FixedWidth != nil:
		target = &b.cfg.FixedWidth.Transformations
	default:
		return b
	}
	if *target == nil {
		*target = map[string][]models.Transformation{}
	}
	(*target)[field] = append((*target)[field], ts...)
	return b
}

// Build validates and returns the configuration.
func (b *ParserConfigBuilder) Build() (models.ParserConfig, error) {
	if err := Validate(b.cfg); err != nil {
		return models.ParserConfig{}, err
	}
	return b.cfg, nil
}

// MustBuild is Build for configurations known to be valid, such as fixtures.
func (b *ParserConfigBuilder) MustBuild() models.ParserConfig {
	cfg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return cfg
}
