// Package validate implements the validate command.
package validate

import (
	"errors"
	"fmt"
	"io"

	"fjacquet/pricelist-import/cmd/root"
	"fjacquet/pricelist-import/internal/container"
	"fjacquet/pricelist-import/internal/parsererror"
	"fjacquet/pricelist-import/internal/schema"
	"fjacquet/pricelist-import/internal/store"

	"github.com/spf13/cobra"
)

var allTemplates bool

// Cmd represents the validate command
var Cmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a parser configuration or the stored templates",
	Long: `Validate a parser configuration file, a stored template or, with
--templates, the whole template store. Every violation is listed with the path
of the offending field.

Examples:
  pricelist-import validate -c acme.yaml
  pricelist-import validate -t acme
  pricelist-import validate --templates`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		if allTemplates {
			return RunTemplates(c, cmd.OutOrStdout())
		}
		return Run(c, root.SharedFlags.Template, root.SharedFlags.ParserConfig, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().BoolVar(&allTemplates, "templates", false, "Validate every template of the template store")
}

// Run validates a parser configuration file or a stored template.
func Run(c *container.Container, templateName, configFile string, out io.Writer) error {
	switch {
	case configFile != "":
		cfg, err := schema.DecodeFile(configFile)
		if err != nil {
			report(out, configFile, err)
			return err
		}
		if cfg.IsTemplateReference() {
			if _, err := c.GetTemplates().Resolve(cfg); err != nil {
				report(out, configFile, err)
				return err
			}
		}
		fmt.Fprintf(out, "%s: configuration is valid\n", configFile)
		return nil
	case templateName != "":
		cfg, err := c.GetTemplates().Get(templateName)
		if err == nil {
			err = schema.Validate(cfg)
		}
		if err != nil {
			report(out, templateName, err)
			return err
		}
		fmt.Fprintf(out, "%s: template is valid\n", templateName)
		return nil
	default:
		return fmt.Errorf("nothing to validate: use --config, --template or --templates")
	}
}

// RunTemplates loads the whole template store, which validates every template.
func RunTemplates(c *container.Container, out io.Writer) error {
	if s, ok := c.GetTemplates().(*store.TemplateStore); ok {
		if err := s.Load(); err != nil {
			report(out, s.TemplatesFile, err)
			return err
		}
	}
	templates, err := c.GetTemplates().List()
	if err != nil {
		report(out, "templates", err)
		return err
	}
	fmt.Fprintf(out, "%d template(s) valid\n", len(templates))
	return nil
}

func report(out io.Writer, subject string, err error) {
	var verr *parsererror.ConfigValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(out, "%s: %d violation(s)\n", subject, len(verr.Violations))
		for _, v := range verr.Violations {
			fmt.Fprintf(out, "  - %s\n", v.String())
		}
		return
	}
	fmt.Fprintf(out, "%s: %v\n", subject, err)
}
