package main

import (
	"fmt"
	"os"

	"fjacquet/pricelist-import/cmd/batch"
	"fjacquet/pricelist-import/cmd/parse"
	"fjacquet/pricelist-import/cmd/root"
	"fjacquet/pricelist-import/cmd/sync"
	"fjacquet/pricelist-import/cmd/templates"
	"fjacquet/pricelist-import/cmd/validate"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(parse.Cmd)
	root.Cmd.AddCommand(validate.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(sync.Cmd)
	root.Cmd.AddCommand(templates.Cmd)
}

func main() {
	err := root.Cmd.Execute()
	if closeErr := root.Shutdown(); closeErr != nil {
		root.Log.Warnf("Failed to close application resources: %v", closeErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
