package csvparser

import (
	"errors"
	"strings"
	"testing"

	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/parsererror"
	"fjacquet/pricelist-import/internal/schema"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T, b *schema.ParserConfigBuilder) *Parser {
	t.Helper()
	cfg, err := b.Build()
	require.NoError(t, err)
	return NewParser(cfg.CSV, logging.NewMockLogger())
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		delim    rune
		quote    rune
		expected []string
		warnings int
	}{
		{name: "plain", line: "a,b,c", delim: ',', quote: '"', expected: []string{"a", "b", "c"}},
		{name: "empty cells", line: ",x,", delim: ',', quote: '"', expected: []string{"", "x", ""}},
		{name: "quoted delimiter", line: `"a,1",2`, delim: ',', quote: '"', expected: []string{"a,1", "2"}},
		{name: "escaped quote", line: `"say ""hi""",2`, delim: ',', quote: '"', expected: []string{`say "hi"`, "2"}},
		{name: "custom quote and delimiter", line: `'a;b';'c'`, delim: ';', quote: '\'', expected: []string{"a;b", "c"}},
		{name: "text after closing quote", line: `"12"cm,3`, delim: ',', quote: '"', expected: []string{"12cm", "3"}},
		{name: "quote inside unquoted field", line: `5" screw,3`, delim: ',', quote: '"', expected: []string{`5" screw`, "3"}},
		{name: "tab", line: "a\tb", delim: '\t', quote: '"', expected: []string{"a", "b"}},
		{name: "unicode", line: "Überzug|€ 4,50", delim: '|', quote: '"', expected: []string{"Überzug", "€ 4,50"}},
		{
			name:     "unterminated quote is literal",
			line:     `"A-3,7.00,note`,
			delim:    ',',
			quote:    '"',
			expected: []string{`"A-3`, "7.00", "note"},
			warnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells, warnings := splitLine(tt.line, tt.delim, tt.quote)
			assert.Equal(t, tt.expected, cells)
			assert.Len(t, warnings, tt.warnings)
		})
	}
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{"a", "b"}, splitLines("\uFEFFa\r\nb\r\n"))
	assert.Equal(t, []string{"a", "", "b"}, splitLines("a\n\nb"))
}

func TestParse_MixedValidAndInvalidRows(t *testing.T) {
	p := newTestParser(t, schema.NewCSVBuilder().
		WithHeader(false).
		MapColumn("supplier_sku", "0").
		MapColumn("cost_price", "1"))

	result, err := p.Parse(strings.NewReader("\"A-1\",10.50\n\"A-2\",notanumber"))

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "A-1", result.Items[0].SupplierSKU)
	assert.True(t, decimal.RequireFromString("10.50").Equal(result.Items[0].CostPrice))
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "row 2:")
	assert.Contains(t, result.Errors[0], "cost_price")
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 1, result.ProcessedRows)
}

func TestParse_OversizedNumbersAreRowErrors(t *testing.T) {
	p := newTestParser(t, schema.NewCSVBuilder().
		MapColumn("sku", "sku").
		MapColumn("cost_price", "cost_price").
		MapColumn("quantity", "qty"))

	result, err := p.Parse(strings.NewReader(
		"sku,cost_price,qty\n" +
			"A,1,5\n" +
			"D,1e400000000,1\n" +
			"E,2,18446744073709551617\n" +
			"F,3,7\n"))

	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "A", result.Items[0].SupplierSKU)
	assert.Equal(t, "F", result.Items[1].SupplierSKU)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "row 3:")
	assert.Contains(t, result.Errors[0], "cost_price")
	assert.Contains(t, result.Errors[1], "row 4:")
	assert.Contains(t, result.Errors[1], "value out of range")
	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 2, result.ProcessedRows)
}

func TestParse_CountsAlwaysBalance(t *testing.T) {
	p := newTestParser(t, schema.NewCSVBuilder().
		WithDelimiter(";").
		MapColumn("sku", "Art", "Article").
		MapColumn("cost_price", "Preis").
		MapColumn("quantity", "Menge").
		MapColumn("lead_time_days", "Lieferzeit"))

	payload := strings.Join([]string{
		"Article;Preis;Menge;Lieferzeit",
		"A-1;1'200.00;5;3",
		"A-2;12,5;;",
		"A-3;0;1;1",
		"A-4;9.90;-2;1",
		";4.00;1;1",
		"A-6;7",
		"",
		"A-7;3.30;2;x",
	}, "\n")

	result, err := p.Parse(strings.NewReader(payload))

	require.NoError(t, err)
	assert.Equal(t, 7, result.TotalRows)
	assert.Equal(t, result.TotalRows, result.ProcessedRows+len(result.Errors))
	assert.LessOrEqual(t, result.ProcessedRows, result.TotalRows)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "1200", result.Items[0].CostPrice.String())
	assert.Equal(t, "12.5", result.Items[1].CostPrice.String())
	assert.Nil(t, result.Items[1].Quantity)
	assert.Equal(t, []string{
		"row 4: failed to parse cost_price='0': must be greater than zero",
		"row 5: failed to parse quantity='-2': must be greater than zero",
		"row 6: no identifier: one of product_variant_id, supplier_sku, variant_sku, product_id is required",
		"row 7: expected at least 4 columns, got 2",
		"row 9: failed to parse lead_time_days='x': not a number",
	}, result.Errors)
}

func TestParse_ShortRowIsOneError(t *testing.T) {
	p := newTestParser(t, schema.NewCSVBuilder().
		MapColumn("supplier_sku", "sku").
		MapColumn("cost_price", "price").
		MapColumn("description", "desc"))

	result, err := p.Parse(strings.NewReader("sku,price,desc\nA,1\nB,2,two\n"))

	require.NoError(t, err)
	assert.Len(t, result.Errors, 1)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, "two", result.Items[0].Description)
}

func TestParse_SkipRowsAndTransformations(t *testing.T) {
	p := newTestParser(t, schema.NewCSVBuilder().
		WithSkipRows(2).
		WithDelimiter("|").
		WithQuoteChar("'").
		MapColumn("variant_sku", "Variant").
		MapColumn("cost_price", "Cents").
		MapColumn("notes", "Notes").
		WithTransformations("variant_sku", models.Trim(), models.Uppercase()).
		WithTransformations("cost_price", models.Divide(decimal.NewFromInt(100))))

	payload := "ACME export\ngenerated 2024-05-01\nVariant|Cents|Notes\n ab-1 |1999|'fragile | handle with care'\n"
	result, err := p.Parse(strings.NewReader(payload))

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	item := result.Items[0]
	assert.Equal(t, "AB-1", item.VariantSKU)
	assert.Equal(t, "19.99", item.CostPrice.String())
	assert.Equal(t, "fragile | handle with care", item.Notes)
	assert.Equal(t, 4, item.Row)
}

func TestParse_UnterminatedQuoteWarning(t *testing.T) {
	p := newTestParser(t, schema.NewCSVBuilder().
		MapColumn("sku", "sku").
		MapColumn("cost_price", "price"))

	result, err := p.Parse(strings.NewReader("sku,price\n\"A-9,4.20\n"))

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, `"A-9`, result.Items[0].SupplierSKU)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "row 2: unterminated quote")
}

func TestParse_MissingCostPriceColumnAborts(t *testing.T) {
	p := newTestParser(t, schema.NewCSVBuilder().
		MapColumn("sku", "sku").
		MapColumn("cost_price", "price")).WithSource("acme.csv")

	result, err := p.Parse(strings.NewReader("sku,amount\nA,1\n"))

	assert.Nil(t, result)
	var ife *parsererror.InvalidFormatError
	require.True(t, errors.As(err, &ife))
	assert.Equal(t, "acme.csv", ife.FilePath)
}

func TestParse_IsDeterministic(t *testing.T) {
	p := newTestParser(t, schema.NewCSVBuilder().
		MapColumn("product_id", "id").
		MapColumn("cost_price", "cost").
		MapColumn("quantity", "qty").
		WithTransformations("cost_price", models.Multiply(decimal.RequireFromString("1.077"))))

	payload := "id,cost,qty\nP1,10,1\nP2,bad,2\n\"P3\",\"1,234.50\",3\n"

	first, err := p.Parse(strings.NewReader(payload))
	require.NoError(t, err)
	second, err := p.Parse(strings.NewReader(payload))
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("parse results differ (-first +second):\n%s", diff)
	}
}

func TestParse_EmptyPayload(t *testing.T) {
	p := newTestParser(t, schema.NewCSVBuilder().
		MapColumn("sku", "sku").
		MapColumn("cost_price", "price"))

	result, err := p.Parse(strings.NewReader(""))

	require.NoError(t, err)
	assert.Zero(t, result.TotalRows)
	assert.Empty(t, result.Items)
}
