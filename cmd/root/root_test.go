package root_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/pricelist-import/cmd/root"
	"fjacquet/pricelist-import/internal/config"
	"fjacquet/pricelist-import/internal/container"
	"fjacquet/pricelist-import/internal/logging"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	root.Init()
	os.Exit(m.Run())
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "pricelist-import", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "supplier price lists")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.Nil(t, root.Cmd.PersistentPostRun)
	assert.True(t, root.Cmd.SilenceUsage)
}

func TestRootCommand_Flags(t *testing.T) {
	shorthands := map[string]string{
		"input":    "i",
		"output":   "o",
		"template": "t",
		"config":   "c",
	}
	for name, short := range shorthands {
		flag := root.Cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, short, flag.Shorthand, name)
	}

	for _, name := range []string{"app-config", "log-level", "log-format"} {
		assert.NotNil(t, root.Cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestGetContainer_NotInitialized(t *testing.T) {
	root.SetContainer(nil)
	_, err := root.GetContainer()
	assert.EqualError(t, err, "application is not initialized")
}

func TestRootCommand_Execute(t *testing.T) {
	dir := t.TempDir()
	appConfig := filepath.Join(dir, "config.yaml")
	content := "templates:\n  file: " + filepath.Join(dir, "templates.yaml") +
		"\nstore:\n  file: " + filepath.Join(dir, "pricelists.yaml") + "\n"
	require.NoError(t, os.WriteFile(appConfig, []byte(content), 0600))

	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetArgs([]string{"--app-config", appConfig, "--log-level", "warn"})
	t.Cleanup(func() {
		root.Cmd.SetArgs(nil)
		root.Cmd.SetOut(nil)
		root.AppConfigFile = ""
		root.SetContainer(nil)
	})

	require.NoError(t, root.Cmd.Execute())
	assert.Contains(t, out.String(), "pricelist-import")

	c, err := root.GetContainer()
	require.NoError(t, err)
	assert.Equal(t, "warn", c.GetConfig().Log.Level)
	assert.Equal(t, filepath.Join(dir, "pricelists.yaml"), c.GetConfig().Store.File)
}

func TestRootCommand_MissingAppConfig(t *testing.T) {
	root.Cmd.SetArgs([]string{"--app-config", filepath.Join(t.TempDir(), "missing.yaml")})
	t.Cleanup(func() {
		root.Cmd.SetArgs(nil)
		root.AppConfigFile = ""
	})

	assert.Error(t, root.Cmd.Execute())
}

func TestShutdown_ClosesContainer(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Log.Level = "debug"
	cfg.Log.Format = "text"
	cfg.Templates.File = filepath.Join(dir, "templates.yaml")
	cfg.Store.Driver = config.StoreDriverYAML
	cfg.Import.Workers = 1
	cfg.Store.File = filepath.Join(dir, "pricelists.yaml")
	cfg.Store.TimeoutSeconds = 5

	mockLog := logging.NewMockLogger()
	c, err := container.NewContainerWithLogger(cfg, mockLog)
	require.NoError(t, err)
	root.SetContainer(c)

	require.NoError(t, root.Shutdown())
	assert.True(t, mockLog.HasEntry("DEBUG", "Container closed"))

	_, err = root.GetContainer()
	assert.Error(t, err)
	assert.NoError(t, root.Shutdown())
}

func TestShutdown_AfterFailingCommand(t *testing.T) {
	dir := t.TempDir()
	appConfig := filepath.Join(dir, "config.yaml")
	content := "templates:\n  file: " + filepath.Join(dir, "templates.yaml") +
		"\nstore:\n  file: " + filepath.Join(dir, "pricelists.yaml") + "\n"
	require.NoError(t, os.WriteFile(appConfig, []byte(content), 0600))

	failing := &cobra.Command{
		Use: "failing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("store unreachable")
		},
	}
	root.Cmd.AddCommand(failing)
	root.Cmd.SetArgs([]string{"--app-config", appConfig, "failing"})
	t.Cleanup(func() {
		root.Cmd.RemoveCommand(failing)
		root.Cmd.SetArgs(nil)
		root.AppConfigFile = ""
		root.SetContainer(nil)
	})

	assert.EqualError(t, root.Cmd.Execute(), "store unreachable")

	// the container survives the failed run until Shutdown
	_, err := root.GetContainer()
	require.NoError(t, err)

	require.NoError(t, root.Shutdown())
	_, err = root.GetContainer()
	assert.Error(t, err)
}
