// Package parse implements the parse command.
package parse

import (
	"io"

	cmdcommon "fjacquet/pricelist-import/cmd/common"
	"fjacquet/pricelist-import/cmd/root"
	"fjacquet/pricelist-import/internal/container"
	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"

	"github.com/spf13/cobra"
)

var (
	format       string
	errorsReport string
	strict       bool
	maxRatio     float64
)

// Cmd represents the parse command
var Cmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse one supplier price list",
	Long: `Parse one supplier price list with a stored template or a parser
configuration file and write the normalized items.

Without --output the items are printed to stdout. Row errors never stop the
import; use --strict or import.max_error_ratio to reject faulty files.

Examples:
  pricelist-import parse -i acme.csv -t acme -o acme_items.csv
  pricelist-import parse -i export.txt -c mainframe.yaml -f json
  pricelist-import parse -i prices.xlsx -t globex --errors report.csv --strict`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		cfg, err := cmdcommon.LoadParserConfig(root.SharedFlags.Template, root.SharedFlags.ParserConfig)
		if err != nil {
			return err
		}
		opts := Options(c, root.SharedFlags.Input, root.SharedFlags.Output)
		return Run(c, cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	Cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: csv, json, yaml or xlsx (default: from output extension, csv)")
	Cmd.Flags().StringVar(&errorsReport, "errors", "", "Write row errors and warnings to this CSV file")
	Cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any row is rejected")
	Cmd.Flags().Float64Var(&maxRatio, "max-error-ratio", -1, "Fail when the share of rejected rows exceeds this ratio (default: import.max_error_ratio)")
}

// Options builds ParseOptions from the command flags and the application config.
func Options(c *container.Container, input, output string) cmdcommon.ParseOptions {
	cfg := c.GetConfig()
	ratio := maxRatio
	if ratio < 0 {
		ratio = cfg.Import.MaxErrorRatio
	}
	return cmdcommon.ParseOptions{
		Input:         input,
		Output:        output,
		Format:        format,
		ErrorsReport:  errorsReport,
		Strict:        strict || cfg.Import.FailOnErrors,
		MaxErrorRatio: ratio,
		Delimiter:     cfg.OutputDelimiter(),
	}
}

// Run parses one file and prints its summary to summary.
func Run(c *container.Container, cfg models.ParserConfig, opts cmdcommon.ParseOptions, stdout, summary io.Writer) error {
	result, err := cmdcommon.RunParse(c, cfg, opts, stdout)
	if result != nil {
		cmdcommon.PrintSummary(summary, result)
	}
	if err != nil {
		return err
	}
	c.GetLogger().Info("Parse completed",
		logging.F(logging.FieldInputFile, opts.Input),
		logging.F(logging.FieldCount, len(result.Items)),
		logging.F(logging.FieldErrorCount, len(result.Errors)))
	return nil
}
