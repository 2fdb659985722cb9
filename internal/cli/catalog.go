package cli

import (
	"fmt"
	"menuengine/internal/config"
	"menuengine/internal/model"
	"menuengine/internal/service"

	"github.com/spf13/cobra"
)

// NewClassifyCmd creates the 'classify' command.
func NewClassifyCmd() *cobra.Command {
	var bundlePath string

	cmd := &cobra.Command{
		Use:     "classify",
		Short:   "Show the cuisine inferred for a signal bundle",
		Example: `  menuctl classify --bundle bundle.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := readBundle(cmd.InOrStdin(), bundlePath)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), service.NewClassifier().Explain(bundle))
		},
	}

	cmd.Flags().StringVarP(&bundlePath, "bundle", "b", "", "Path to a signal bundle JSON file, or - for stdin")
	cmd.MarkFlagRequired("bundle")

	return cmd
}

// NewTemplatesCmd creates the 'templates' command.
func NewTemplatesCmd() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "templates [cuisine]",
		Short: "List cuisines or print one base template",
		Example: `  menuctl templates
  menuctl templates japanese
  menuctl templates --catalog ./my-catalog.yaml korean`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if catalogPath == "" {
				catalogPath = config.Load().CatalogFile
			}
			catalog, err := config.LoadCatalog(catalogPath)
			if err != nil {
				return err
			}
			lib := service.NewTemplateLibrary(catalog)
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				fmt.Fprintf(out, "Catalog version %s\n", lib.Version())
				for _, c := range lib.Cuisines() {
					fmt.Fprintf(out, "  %-10s %d items\n", c, lib.TemplateFor(c).ItemCount())
				}
				return nil
			}

			cuisine := model.Cuisine(args[0])
			if !cuisine.IsKnown() {
				return fmt.Errorf("unknown cuisine %q", args[0])
			}
			return printJSON(out, lib.TemplateFor(cuisine))
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog YAML to use instead of the embedded one")

	return cmd
}
