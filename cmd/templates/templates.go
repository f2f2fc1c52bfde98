// Package templates implements the templates command and its subcommands.
package templates

import (
	"fmt"
	"io"
	"sort"

	"fjacquet/pricelist-import/cmd/root"
	"fjacquet/pricelist-import/internal/container"
	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/schema"

	"github.com/spf13/cobra"
)

var templateName string

// Cmd represents the templates command
var Cmd = &cobra.Command{
	Use:   "templates",
	Short: "List, show and add stored parser templates",
	Long: `Manage the parser templates of the template store (templates.file of the
application config). Without a subcommand the templates are listed.

Examples:
  pricelist-import templates
  pricelist-import templates show acme
  pricelist-import templates add --name acme -c acme.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return List(c, cmd.OutOrStdout())
	},
}

var showCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a stored template as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Show(c, args[0], cmd.OutOrStdout())
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Validate a parser configuration file and store it as a template",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Add(c, templateName, root.SharedFlags.ParserConfig, cmd.OutOrStdout())
	},
}

func init() {
	addCmd.Flags().StringVar(&templateName, "name", "", "Template name (default: template_name of the file)")
	Cmd.AddCommand(showCmd, addCmd)
}

// List prints one line per stored template, sorted by name.
func List(c *container.Container, out io.Writer) error {
	tpls, err := c.GetTemplates().List()
	if err != nil {
		return err
	}
	if len(tpls) == 0 {
		fmt.Fprintln(out, "No templates stored.")
		return nil
	}
	sort.Slice(tpls, func(i, j int) bool { return tpls[i].TemplateName < tpls[j].TemplateName })
	for _, tpl := range tpls {
		fmt.Fprintf(out, "%-20s %s\n", tpl.TemplateName, describe(tpl))
	}
	return nil
}

func describe(cfg models.ParserConfig) string {
	switch {
	case cfg.CSV != nil:
		return fmt.Sprintf("csv (delimiter %q, %d column(s))", cfg.CSV.Delimiter, len(cfg.CSV.ColumnMapping))
	case cfg.FixedWidth != nil:
		return fmt.Sprintf("fixed-width (%d column(s))", len(cfg.FixedWidth.Columns))
	}
	return string(cfg.Type)
}

// Show writes the named template to out in the parser configuration format.
func Show(c *container.Container, name string, out io.Writer) error {
	cfg, err := c.GetTemplates().Get(name)
	if err != nil {
		return err
	}
	data, err := schema.Encode(cfg)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// Add stores the configuration of configFile as a template. A non-empty name
// overrides the template_name of the file.
func Add(c *container.Container, name, configFile string, out io.Writer) error {
	if configFile == "" {
		return fmt.Errorf("a parser configuration file is required (--config)")
	}
	cfg, err := schema.DecodeFile(configFile)
	if err != nil {
		return err
	}
	if cfg.IsTemplateReference() {
		return fmt.Errorf("%s only references template %q", configFile, cfg.TemplateName)
	}
	if name != "" {
		cfg.TemplateName = name
	}
	if cfg.TemplateName == "" {
		return fmt.Errorf("template name is required: use --name or set template_name")
	}
	if err := c.GetTemplates().Save(cfg); err != nil {
		return err
	}
	c.GetLogger().Info("Template saved", logging.F(logging.FieldTemplate, cfg.TemplateName))
	fmt.Fprintf(out, "Template %s saved.\n", cfg.TemplateName)
	return nil
}
