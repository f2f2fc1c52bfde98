// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/pricelist-import/internal/config"
	"fjacquet/pricelist-import/internal/container"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input        string
	Output       string
	Template     string
	ParserConfig string
}

var (
	// Log reports command failures before the container exists.
	Log = logrus.New()

	// AppConfigFile overrides the config.yaml search when set.
	AppConfigFile string
	logLevel      string
	logFormat     string

	// SharedFlags are the persistent flags shared by the import commands.
	SharedFlags = CommonFlags{}

	appContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "pricelist-import",
		Short: "Import supplier price lists from CSV, fixed-width and Excel files.",
		Long: `pricelist-import reads supplier price lists in delimited, fixed-width or
Excel form, maps their columns to price-list items with a declarative parser
configuration and optionally merges the result into the stored price list of
the supplier.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			cfg, err := config.InitializeConfigFromFile(AppConfigFile)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFormat != "" {
				cfg.Log.Format = logFormat
			}
			Log = config.ConfigureLoggingFromConfig(cfg)

			c, err := container.NewContainer(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			appContainer = c
			return nil
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	flags := Cmd.PersistentFlags()
	flags.StringVar(&AppConfigFile, "app-config", "", "Application config file (default: config.yaml in $HOME/.pricelist-import, .pricelist-import or .)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "", "Log format (text or json)")

	flags.StringVarP(&SharedFlags.Input, "input", "i", "", "Input file or directory")
	flags.StringVarP(&SharedFlags.Output, "output", "o", "", "Output file or directory")
	flags.StringVarP(&SharedFlags.Template, "template", "t", "", "Name of a stored parser template")
	flags.StringVarP(&SharedFlags.ParserConfig, "config", "c", "", "Parser configuration YAML file")
}

// GetContainer returns the container built for the running command.
func GetContainer() (*container.Container, error) {
	if appContainer == nil {
		return nil, fmt.Errorf("application is not initialized")
	}
	return appContainer, nil
}

// Shutdown releases the container built for the running command. Call it
// after Execute returns, also when the command failed.
func Shutdown() error {
	if appContainer == nil {
		return nil
	}
	err := appContainer.Close()
	appContainer = nil
	return err
}

// SetContainer installs c as the application container.
func SetContainer(c *container.Container) {
	appContainer = c
}
