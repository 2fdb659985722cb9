/*
menuctl runs the menu engine from the command line.

Usage:

	menuctl [command]

Available Commands:

	resolve     Resolve a menu for a restaurant signal bundle
	classify    Show the cuisine inferred for a signal bundle
	templates   List cuisines or print one base template
*/
package main

import (
	"fmt"
	"menuengine/internal/cli"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "menuctl",
		Short:         "Resolve and inspect restaurant menus",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(cli.NewResolveCmd())
	rootCmd.AddCommand(cli.NewClassifyCmd())
	rootCmd.AddCommand(cli.NewTemplatesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
