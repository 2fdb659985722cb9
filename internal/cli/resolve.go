package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"menuengine/internal/app"
	"menuengine/internal/cache"
	"menuengine/internal/config"
	"menuengine/internal/model"
	"os"

	"github.com/spf13/cobra"
)

// NewResolveCmd creates the 'resolve' command, which runs the full engine
// against a signal bundle using the in-process cache.
func NewResolveCmd() *cobra.Command {
	var bundlePath string
	var placeID string
	var explicitAI bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a menu for a restaurant signal bundle",
		Long: `Run the tier chain (authoritative, website, synthesis) for one bundle and
print the menu or the no-menu response as JSON. Network tiers only run when
PLACES_BASE_URL, the bundle website or GEMINI_API_KEY are set.`,
		Example: `  menuctl resolve --bundle sushi-den.json
  menuctl resolve --bundle - --ai < bundle.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := readBundle(cmd.InOrStdin(), bundlePath)
			if err != nil {
				return err
			}
			if placeID == "" {
				placeID = bundle.PlaceID
			}

			engine, err := app.New(config.Load(), config.DefaultAIConfig(), cache.NewMemoryMenuCache())
			if err != nil {
				return err
			}

			resolve := engine.MenuService.ResolveMenu
			if explicitAI {
				resolve = engine.MenuService.ResolveMenuWithExplicitAI
			}
			result, err := resolve(cmd.Context(), placeID, bundle)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result.Payload())
		},
	}

	cmd.Flags().StringVarP(&bundlePath, "bundle", "b", "", "Path to a signal bundle JSON file, or - for stdin")
	cmd.Flags().StringVar(&placeID, "place", "", "Place id (defaults to the bundle's placeId)")
	cmd.Flags().BoolVar(&explicitAI, "ai", false, "Skip lookups and request synthesis directly")
	cmd.MarkFlagRequired("bundle")

	return cmd
}

func readBundle(stdin io.Reader, path string) (*model.RestaurantSignalBundle, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	var bundle model.RestaurantSignalBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidBundle, err)
	}
	return &bundle, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
