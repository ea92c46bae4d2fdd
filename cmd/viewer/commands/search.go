package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/draeangela/industry-data-visualizer/internal/search"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search series",
	Long: `Search series the way the viewer search box does.

Modes:
  sector    FRED series, narrowed with --sector
  global    all of FRED
  model     series of the Industry model given with --model
  datasets  Industry dataset search

Example:
  go run ./cmd/viewer search gdp --mode global
  go run ./cmd/viewer search steel --mode sector --sector 12
  go run ./cmd/viewer search --mode model --model 7`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

var (
	searchMode   string
	searchSector string
	searchModel  string
	searchJSON   bool
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchMode, "mode", "sector", "search mode: sector, global, model, datasets")
	searchCmd.Flags().StringVar(&searchSector, "sector", "", "sector id for sector mode")
	searchCmd.Flags().StringVar(&searchModel, "model", "", "model id for model mode")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the raw response")
}

func runSearch(cmd *cobra.Command, args []string) error {
	mode, err := search.ParseMode(searchMode)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	q := search.Query{
		Mode:     mode,
		SectorID: searchSector,
		ModelID:  searchModel,
	}
	if len(args) > 0 {
		q.Text = args[0]
	}

	resp, err := a.searcher.Search(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	out := cmd.OutOrStdout()
	if searchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	PrintHeader(out, "Search", [][2]string{
		{"Mode", string(resp.Query.Mode)},
		{"Query", resp.Query.Text},
		{"Results", fmt.Sprintf("%d", len(resp.Hits))},
	})
	if resp.Warning != "" {
		PrintWarning(out, resp.Warning)
	}

	rows := make([][]string, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		rows = append(rows, []string{
			hit.SeriesID.String(),
			strings.ToLower(string(hit.SeriesID.Kind())),
			hit.Frequency,
			hit.Display,
		})
	}
	PrintTable(out, []string{"ID", "KIND", "FREQ", "SERIES"}, rows)
	return nil
}
