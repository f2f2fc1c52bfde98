package sync

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/pricelist-import/internal/config"
	"fjacquet/pricelist-import/internal/container"
	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/pricelist"
	"fjacquet/pricelist-import/internal/schema"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*container.Container, models.ParserConfig, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.CSV.Delimiter = ","
	cfg.Templates.File = filepath.Join(dir, "templates.yaml")
	cfg.Import.Workers = 1
	cfg.Store.Driver = config.StoreDriverYAML
	cfg.Store.File = filepath.Join(dir, "pricelists.yaml")
	cfg.Store.TimeoutSeconds = 5

	c, err := container.NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	parserCfg := schema.NewCSVBuilder().
		MapColumn("supplier_sku", "SKU").
		MapColumn("cost_price", "Price").
		MustBuild()
	return c, parserCfg, dir
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRun(t *testing.T) {
	c, cfg, dir := setup(t)
	ctx := context.Background()

	first := writeInput(t, dir, "acme_1.csv", "SKU,Price\nA,1.00\nB,2.00\n")
	var out bytes.Buffer
	plan, err := Run(ctx, c, cfg, first, "acme", pricelist.SyncOptions{Currency: "CHF"}, &out)
	require.NoError(t, err)
	assert.Len(t, plan.Created, 2)
	assert.True(t, plan.Applied)
	assert.Contains(t, out.String(), "supplier acme: 2 created, 0 updated, 0 unchanged, 0 removed")
	assert.Contains(t, out.String(), "  + supplier_sku:A 1")
	assert.Contains(t, out.String(), "Price list saved.")

	second := writeInput(t, dir, "acme_2.csv", "SKU,Price\nA,1.25\nC,3\n")
	out.Reset()
	plan, err = Run(ctx, c, cfg, second, "acme", pricelist.SyncOptions{DryRun: true, RemoveMissing: true}, &out)
	require.NoError(t, err)
	assert.False(t, plan.Applied)
	assert.Len(t, plan.Created, 1)
	assert.Len(t, plan.Updated, 1)
	assert.Len(t, plan.Removed, 1)
	assert.Contains(t, out.String(), "  ~ supplier_sku:A 1.25")
	assert.Contains(t, out.String(), "  - supplier_sku:B")
	assert.Contains(t, out.String(), "Dry run: nothing saved.")

	repo, err := c.GetRepository(ctx)
	require.NoError(t, err)
	stored, err := repo.FindBySupplier(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "CHF", stored.Currency)
	require.Len(t, stored.Items, 2)
	assert.True(t, stored.Items[0].CostPrice.Equal(decimal.NewFromInt(1)))

	out.Reset()
	_, err = Run(ctx, c, cfg, first, "acme", pricelist.SyncOptions{}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Price list already up to date.")
}

func TestRun_PartialResult(t *testing.T) {
	c, cfg, dir := setup(t)
	input := writeInput(t, dir, "acme.csv", "SKU,Price\nA,1\nB,abc\n")

	_, err := Run(context.Background(), c, cfg, input, "acme", pricelist.SyncOptions{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, pricelist.ErrPartialResult)

	plan, err := Run(context.Background(), c, cfg, input, "acme", pricelist.SyncOptions{AllowPartial: true}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Len(t, plan.Created, 1)
}

func TestRun_InvalidArguments(t *testing.T) {
	c, cfg, dir := setup(t)

	_, err := Run(context.Background(), c, cfg, filepath.Join(dir, "acme.csv"), "", pricelist.SyncOptions{}, &bytes.Buffer{})
	assert.EqualError(t, err, "--supplier is required")

	_, err = Run(context.Background(), c, cfg, filepath.Join(dir, "missing.csv"), "acme", pricelist.SyncOptions{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestPrintPlan_UpToDate(t *testing.T) {
	var out bytes.Buffer
	PrintPlan(&out, &pricelist.SyncPlan{SupplierID: "acme"})
	assert.Equal(t, "supplier acme: 0 created, 0 updated, 0 unchanged, 0 removed\nPrice list already up to date.\n", out.String())
}
