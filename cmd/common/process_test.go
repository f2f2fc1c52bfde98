package common_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/pricelist-import/cmd/common"
	"fjacquet/pricelist-import/internal/config"
	"fjacquet/pricelist-import/internal/container"
	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/schema"
	"fjacquet/pricelist-import/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

const acmePayload = "SKU;Price;Stock\nA;1,50;10\nB;x;3\nC;2;\n"

func newContainer(t *testing.T) (*container.Container, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.CSV.Delimiter = ","
	cfg.Templates.File = filepath.Join(dir, "templates.yaml")
	cfg.Import.Workers = 2
	cfg.Import.MaxErrorRatio = 1
	cfg.Store.Driver = config.StoreDriverYAML
	cfg.Store.File = filepath.Join(dir, "pricelists.yaml")
	cfg.Store.TimeoutSeconds = 5

	c, err := container.NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)
	c.SetTemplates(store.NewMockTemplateStore(schema.NewCSVBuilder().
		WithTemplateName("acme").
		WithDelimiter(";").
		MapColumn("sku", "SKU").
		MapColumn("cost_price", "Price").
		MapColumn("quantity", "Stock").
		MustBuild()))
	t.Cleanup(func() { _ = c.Close() })
	return c, dir
}

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "acme.csv")
	require.NoError(t, os.WriteFile(path, []byte(acmePayload), 0600))
	return path
}

var acme = models.ParserConfig{TemplateName: "acme"}

func TestLoadParserConfig(t *testing.T) {
	cfg, err := common.LoadParserConfig("acme", "")
	require.NoError(t, err)
	assert.True(t, cfg.IsTemplateReference())

	_, err = common.LoadParserConfig("acme", "acme.yaml")
	assert.EqualError(t, err, "use either --template or --config, not both")

	_, err = common.LoadParserConfig("", "")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "mainframe.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
type: fixed-width
config:
  fixed_width_columns:
    - {field: sku, start: 0, width: 6}
    - {field: cost_price, start: 6, width: 8}
`), 0600))
	cfg, err = common.LoadParserConfig("", file)
	require.NoError(t, err)
	assert.Equal(t, models.ParserTypeFixedWidth, cfg.Type)
	require.NotNil(t, cfg.FixedWidth)
	assert.Len(t, cfg.FixedWidth.Columns, 2)
}

func TestRunParse_Stdout(t *testing.T) {
	c, dir := newContainer(t)
	input := writeInput(t, dir)

	var stdout bytes.Buffer
	result, err := common.RunParse(c, acme, common.ParseOptions{Input: input}, &stdout)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRows)
	assert.Len(t, result.Items, 2)
	assert.Len(t, result.Errors, 1)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "row,product_variant_id"))
	assert.Equal(t, "2,,,A,,1.5,10,,,", lines[1])
	assert.Equal(t, "4,,,C,,2,,,,", lines[2])
}

func TestRunParse_OutputFormats(t *testing.T) {
	c, dir := newContainer(t)
	input := writeInput(t, dir)

	t.Run("csv with delimiter", func(t *testing.T) {
		out := filepath.Join(dir, "items.csv")
		_, err := common.RunParse(c, acme, common.ParseOptions{Input: input, Output: out, Delimiter: ';'}, nil)
		require.NoError(t, err)
		content, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(content), "2;;;A;;1.5;10;;;")
	})

	t.Run("json", func(t *testing.T) {
		out := filepath.Join(dir, "items.json")
		_, err := common.RunParse(c, acme, common.ParseOptions{Input: input, Output: out}, nil)
		require.NoError(t, err)
		content, err := os.ReadFile(out)
		require.NoError(t, err)

		var decoded struct {
			Items     []map[string]interface{} `json:"items"`
			Errors    []string                 `json:"errors"`
			TotalRows int                      `json:"total_rows"`
		}
		require.NoError(t, json.Unmarshal(content, &decoded))
		assert.Len(t, decoded.Items, 2)
		assert.Len(t, decoded.Errors, 1)
		assert.Equal(t, 3, decoded.TotalRows)
		assert.Equal(t, "A", decoded.Items[0]["supplier_sku"])
	})

	t.Run("yaml", func(t *testing.T) {
		var stdout bytes.Buffer
		_, err := common.RunParse(c, acme, common.ParseOptions{Input: input, Format: "yaml"}, &stdout)
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &decoded))
		assert.Equal(t, 3, decoded["total_rows"])
		assert.Equal(t, 2, decoded["processed_rows"])
	})

	t.Run("xlsx", func(t *testing.T) {
		out := filepath.Join(dir, "items.xlsx")
		_, err := common.RunParse(c, acme, common.ParseOptions{Input: input, Output: out}, nil)
		require.NoError(t, err)

		f, err := excelize.OpenFile(out)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		rows, err := f.GetRows("Items")
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := common.RunParse(c, acme, common.ParseOptions{Input: input, Format: "xml"}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestRunParse_ErrorsReport(t *testing.T) {
	c, dir := newContainer(t)
	input := writeInput(t, dir)
	report := filepath.Join(dir, "report.csv")

	_, err := common.RunParse(c, acme, common.ParseOptions{Input: input, ErrorsReport: report}, &bytes.Buffer{})
	require.NoError(t, err)

	content, err := os.ReadFile(report)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "kind,message", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "error,"))
}

func TestRunParse_Policy(t *testing.T) {
	c, dir := newContainer(t)
	input := writeInput(t, dir)

	result, err := common.RunParse(c, acme, common.ParseOptions{Input: input, Strict: true}, &bytes.Buffer{})
	assert.ErrorIs(t, err, common.ErrRowsRejected)
	require.NotNil(t, result)
	assert.Len(t, result.Items, 2)

	_, err = common.RunParse(c, acme, common.ParseOptions{Input: input, MaxErrorRatio: 0.5}, &bytes.Buffer{})
	assert.NoError(t, err)

	_, err = common.RunParse(c, acme, common.ParseOptions{Input: input, MaxErrorRatio: 0.2}, &bytes.Buffer{})
	assert.ErrorIs(t, err, common.ErrRowsRejected)
}

func TestRunParse_InvalidInput(t *testing.T) {
	c, dir := newContainer(t)

	_, err := common.RunParse(c, acme, common.ParseOptions{}, &bytes.Buffer{})
	assert.EqualError(t, err, "input file is required")

	_, err = common.RunParse(c, acme, common.ParseOptions{Input: filepath.Join(dir, "missing.csv")}, &bytes.Buffer{})
	assert.Error(t, err)

	input := writeInput(t, dir)
	_, err = common.RunParse(c, models.ParserConfig{TemplateName: "globex"}, common.ParseOptions{Input: input}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestCheckResult(t *testing.T) {
	clean := models.NewParseResult()
	clean.TotalRows = 4
	assert.NoError(t, common.CheckResult(clean, true, 0.1))

	faulty := models.NewParseResult()
	faulty.TotalRows = 4
	faulty.Errors = []string{"row 2: bad"}

	tests := []struct {
		name     string
		strict   bool
		maxRatio float64
		wantErr  bool
	}{
		{"lenient", false, 0, false},
		{"strict", true, 0, true},
		{"ratio above error share", false, 0.5, false},
		{"ratio equal to error share", false, 0.25, false},
		{"ratio below error share", false, 0.1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := common.CheckResult(faulty, tt.strict, tt.maxRatio)
			if tt.wantErr {
				assert.True(t, errors.Is(err, common.ErrRowsRejected))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPrintSummary(t *testing.T) {
	result := models.NewParseResult()
	result.TotalRows = 2
	result.Items = append(result.Items, models.ParsedPriceListItem{SupplierSKU: "A"})
	result.Errors = []string{"row 3: cost_price is required"}
	result.Warnings = []string{"no header row found"}

	var buf bytes.Buffer
	common.PrintSummary(&buf, result)

	assert.Equal(t, "Rows: 2, items: 1, errors: 1, warnings: 1\n"+
		"  error: row 3: cost_price is required\n"+
		"  warning: no header row found\n", buf.String())
}
