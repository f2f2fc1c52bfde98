// Package sync implements the sync command.
package sync

import (
	"context"
	"fmt"
	"io"

	cmdcommon "fjacquet/pricelist-import/cmd/common"
	"fjacquet/pricelist-import/cmd/root"
	"fjacquet/pricelist-import/internal/container"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/pricelist"
	"fjacquet/pricelist-import/internal/validation"

	"github.com/spf13/cobra"
)

var (
	supplierID    string
	dryRun        bool
	allowPartial  bool
	removeMissing bool
	listName      string
	currency      string
)

// Cmd represents the sync command
var Cmd = &cobra.Command{
	Use:   "sync",
	Short: "Parse a price list and merge it into the supplier's stored list",
	Long: `Parse a price list and merge its items into the stored price list of a
supplier. Items are matched by product_variant_id, supplier_sku, variant_sku or
product_id, in that order. A file with rejected rows is refused unless
--allow-partial is given.

Examples:
  pricelist-import sync -i acme.csv -t acme --supplier acme --dry-run
  pricelist-import sync -i acme.csv -t acme --supplier acme --remove-missing`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		cfg, err := cmdcommon.LoadParserConfig(root.SharedFlags.Template, root.SharedFlags.ParserConfig)
		if err != nil {
			return err
		}
		opts := pricelist.SyncOptions{
			DryRun:        dryRun,
			AllowPartial:  allowPartial,
			RemoveMissing: removeMissing,
			Name:          listName,
			Currency:      currency,
		}
		_, err = Run(cmd.Context(), c, cfg, root.SharedFlags.Input, supplierID, opts, cmd.OutOrStdout())
		return err
	},
}

func init() {
	Cmd.Flags().StringVar(&supplierID, "supplier", "", "Supplier id of the price list (required)")
	Cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the changes without saving them")
	Cmd.Flags().BoolVar(&allowPartial, "allow-partial", false, "Sync the valid rows of a file with rejected rows")
	Cmd.Flags().BoolVar(&removeMissing, "remove-missing", false, "Remove stored items absent from the file")
	Cmd.Flags().StringVar(&listName, "name", "", "Price list name")
	Cmd.Flags().StringVar(&currency, "currency", "", "Price list currency code")
	_ = Cmd.MarkFlagRequired("supplier")
}

// Run parses input and syncs it into the price list of supplier.
func Run(ctx context.Context, c *container.Container, cfg models.ParserConfig, input, supplier string, opts pricelist.SyncOptions, out io.Writer) (*pricelist.SyncPlan, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if supplier == "" {
		return nil, fmt.Errorf("--supplier is required")
	}
	if err := validation.ValidateInputFile(input); err != nil {
		return nil, err
	}

	result, err := c.ParseFile(cfg, input)
	if err != nil {
		return nil, err
	}
	cmdcommon.PrintSummary(out, result)

	syncer, err := c.GetSynchronizer(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := syncer.Sync(ctx, supplier, result, opts)
	if err != nil {
		return nil, err
	}
	PrintPlan(out, plan)
	return plan, nil
}

// PrintPlan writes the plan summary and its item keys to out.
func PrintPlan(out io.Writer, plan *pricelist.SyncPlan) {
	fmt.Fprintln(out, plan.Summary())
	for _, item := range plan.Created {
		fmt.Fprintf(out, "  + %s %s\n", item.Key, item.CostPrice.String())
	}
	for _, item := range plan.Updated {
		fmt.Fprintf(out, "  ~ %s %s\n", item.Key, item.CostPrice.String())
	}
	for _, item := range plan.Removed {
		fmt.Fprintf(out, "  - %s\n", item.Key)
	}
	switch {
	case plan.Applied:
		fmt.Fprintln(out, "Price list saved.")
	case plan.HasChanges():
		fmt.Fprintln(out, "Dry run: nothing saved.")
	default:
		fmt.Fprintln(out, "Price list already up to date.")
	}
}
