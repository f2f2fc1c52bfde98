// Package batch handles batch processing of files
package batch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	cmdcommon "fjacquet/pricelist-import/cmd/common"
	"fjacquet/pricelist-import/cmd/root"
	"fjacquet/pricelist-import/internal/batch"
	"fjacquet/pricelist-import/internal/common"
	"fjacquet/pricelist-import/internal/container"
	"fjacquet/pricelist-import/internal/fileutils"
	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/pricelist"
	"fjacquet/pricelist-import/internal/validation"

	"github.com/spf13/cobra"
)

// Options controls a batch run.
type Options struct {
	InputDir  string
	OutputDir string
	// Workers bounds concurrent parses; import.workers when not positive.
	Workers int
	// Reports writes a <name>_errors.csv next to each file with row errors.
	Reports bool
	// Sync merges each supplier's files into its stored price list. The
	// supplier id is the file name up to the first underscore.
	Sync        bool
	SyncOptions pricelist.SyncOptions
}

// Summary counts the outcome of a batch run.
type Summary struct {
	Files     int
	Failed    int
	Items     int
	RowErrors int
	Synced    int
}

var (
	workers       int
	reports       bool
	syncSuppliers bool
	allowPartial  bool
	dryRun        bool
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch process price lists from a directory",
	Long: `Batch process price lists from an input directory and write the
normalized items to another directory.

Every .csv, .txt, .tsv, .dat, .prn and .xlsx file of the input directory is
parsed with the same template, several files at a time. With --sync the files
are grouped by supplier (the file name up to the first underscore, so
acme_2026-03.csv belongs to "acme") and merged into the stored price lists.

Example:
  pricelist-import batch -i input_dir/ -o output_dir/ -t acme --workers 8
  pricelist-import batch -i input_dir/ -o output_dir/ -t acme --sync --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		cfg, err := cmdcommon.LoadParserConfig(root.SharedFlags.Template, root.SharedFlags.ParserConfig)
		if err != nil {
			return err
		}
		opts := Options{
			InputDir:  root.SharedFlags.Input,
			OutputDir: root.SharedFlags.Output,
			Workers:   workers,
			Reports:   reports,
			Sync:      syncSuppliers,
			SyncOptions: pricelist.SyncOptions{
				DryRun:       dryRun,
				AllowPartial: allowPartial,
			},
		}
		summary, err := Run(cmd.Context(), c, cfg, opts)
		if summary != nil {
			PrintSummary(cmd.OutOrStdout(), summary)
		}
		return err
	},
}

func init() {
	Cmd.Flags().IntVar(&workers, "workers", 0, "Number of files parsed concurrently (default: import.workers)")
	Cmd.Flags().BoolVar(&reports, "reports", false, "Write an error report next to each file with rejected rows")
	Cmd.Flags().BoolVar(&syncSuppliers, "sync", false, "Merge each supplier's files into its stored price list")
	Cmd.Flags().BoolVar(&allowPartial, "allow-partial", false, "With --sync, sync suppliers whose files have rejected rows")
	Cmd.Flags().BoolVar(&dryRun, "dry-run", false, "With --sync, compute the changes without saving them")
}

// Run parses every supported file of opts.InputDir. Files that fail are
// reported and skipped; the returned error counts them.
func Run(ctx context.Context, c *container.Container, cfg models.ParserConfig, opts Options) (*Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := c.GetLogger()

	if err := validation.ValidateInputDir(opts.InputDir); err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := fileutils.EnsureDirectoryExists(opts.OutputDir); err != nil {
		return nil, err
	}

	files, err := fileutils.ListPriceListFiles(opts.InputDir)
	if err != nil {
		return nil, err
	}
	summary := &Summary{Files: len(files)}
	if len(files) == 0 {
		logger.Warn("No supported files found in input directory", logging.F(logging.FieldFile, opts.InputDir))
		return summary, nil
	}

	processor, err := c.NewBatchProcessor(cfg, opts.Workers)
	if err != nil {
		return nil, err
	}
	results, err := processor.ParseFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	delimiter := c.GetConfig().OutputDelimiter()
	for _, r := range results {
		if r.Failed() {
			summary.Failed++
			continue
		}
		summary.Items += len(r.Result.Items)
		summary.RowErrors += len(r.Result.Errors)

		out := batch.OutputFilename(r.Path, opts.OutputDir, batch.ItemsSuffix)
		if err := common.WriteItemsToCSV(r.Result.Items, out, delimiter, logger); err != nil {
			logger.WithError(err).Error("Failed to write items", logging.F(logging.FieldInputFile, filepath.Base(r.Path)))
			summary.Failed++
			continue
		}
		if opts.Reports && (r.Result.HasErrors() || len(r.Result.Warnings) > 0) {
			report := batch.OutputFilename(r.Path, opts.OutputDir, batch.ReportSuffix)
			if err := common.WriteReportToCSV(r.Result, report, delimiter, logger); err != nil {
				logger.WithError(err).Warn("Failed to write error report")
			}
		}
	}

	if opts.Sync {
		summary.Synced = syncGroups(ctx, c, results, opts.SyncOptions)
	}

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d of %d file(s) failed", summary.Failed, summary.Files)
	}
	return summary, nil
}

func syncGroups(ctx context.Context, c *container.Container, results []batch.FileResult, opts pricelist.SyncOptions) int {
	logger := c.GetLogger()
	aggregator := c.GetAggregator()

	byPath := make(map[string]batch.FileResult, len(results))
	paths := make([]string, 0, len(results))
	for _, r := range results {
		byPath[r.Path] = r
		paths = append(paths, r.Path)
	}

	syncer, err := c.GetSynchronizer(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to open price list store")
		return 0
	}

	synced := 0
	for _, group := range aggregator.GroupFilesBySupplier(paths) {
		log := logger.WithField(logging.FieldSupplier, group.SupplierID)
		groupResults := make([]batch.FileResult, 0, len(group.Files))
		for _, f := range group.Files {
			groupResults = append(groupResults, byPath[f])
		}

		merged, err := aggregator.Merge(groupResults)
		if err != nil {
			log.WithError(err).Error("Skipping supplier")
			continue
		}
		plan, err := syncer.Sync(ctx, group.SupplierID, merged, opts)
		if err != nil {
			log.WithError(err).Error("Failed to sync supplier")
			continue
		}
		log.Info(plan.Summary())
		synced++
	}
	return synced
}

// PrintSummary writes the batch counters to w.
func PrintSummary(w io.Writer, s *Summary) {
	fmt.Fprintf(w, "Files: %d, failed: %d, items: %d, row errors: %d", s.Files, s.Failed, s.Items, s.RowErrors)
	if s.Synced > 0 {
		fmt.Fprintf(w, ", suppliers synced: %d", s.Synced)
	}
	fmt.Fprintln(w)
}
