package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/draeangela/industry-data-visualizer/internal/catalog"
	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/internal/scheduler"
	"github.com/draeangela/industry-data-visualizer/internal/scheduler/jobs"
)

// sectorsCmd represents the sectors command
var sectorsCmd = &cobra.Command{
	Use:   "sectors [sector]",
	Short: "List sectors or the series of one sector",
	Long: `Without an argument, list the FRED sectors.
With a sector name (URL form like consumer_goods works too), list its series.
--select prints the viewer link that opens the chosen series.

Example:
  go run ./cmd/viewer sectors
  go run ./cmd/viewer sectors consumer_goods
  go run ./cmd/viewer sectors consumer_goods --select 101,GDPC1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSectors,
}

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List Industry models",
	RunE:  runModels,
}

// refreshCatalogCmd represents the refresh-catalog command
var refreshCatalogCmd = &cobra.Command{
	Use:   "refresh-catalog",
	Short: "Refresh the sector and model menus once",
	Long: `Run the catalog refresh job once, with the same retries as the scheduler,
and write the menus to the Redis cache.

Example:
  go run ./cmd/viewer refresh-catalog`,
	RunE: runRefreshCatalog,
}

var (
	sectorsSelect string
	viewerBase    string
)

func init() {
	rootCmd.AddCommand(sectorsCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(refreshCatalogCmd)

	sectorsCmd.Flags().StringVar(&sectorsSelect, "select", "", "comma separated series ids to open in the viewer")
	sectorsCmd.Flags().StringVar(&viewerBase, "viewer", "/viewer", "viewer base URL")
}

func runSectors(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if len(args) == 0 {
		sectors := a.catalog.Sectors(ctx)
		PrintHeader(out, "Sectors", [][2]string{{"Count", fmt.Sprintf("%d", len(sectors))}})
		rows := make([][]string, 0, len(sectors))
		for _, s := range sectors {
			rows = append(rows, []string{s.ID, s.Name})
		}
		PrintTable(out, []string{"ID", "NAME"}, rows)
		return nil
	}

	listing, err := a.catalog.SectorSeries(ctx, args[0])
	if err != nil {
		return fmt.Errorf("sector series: %w", err)
	}

	PrintHeader(out, listing.DisplayName, [][2]string{{"Series", fmt.Sprintf("%d", len(listing.Series))}})
	rows := make([][]string, 0, len(listing.Series))
	for _, s := range listing.Series {
		rows = append(rows, []string{string(s.SeriesID), s.Frequency, s.Label()})
	}
	PrintTable(out, []string{"ID", "FREQ", "SERIES"}, rows)

	if sectorsSelect != "" {
		ids := contracts.ParseSeriesIDList(sectorsSelect)
		if len(ids) == 0 {
			PrintWarning(out, "no valid series ids in --select")
			return nil
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, catalog.ViewerLink(viewerBase, ids))
	}
	return nil
}

func runModels(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	menu := a.catalog.ModelMenu(cmd.Context())

	PrintHeader(out, "Industry Models", [][2]string{{"Count", fmt.Sprintf("%d", len(menu)-1)}})
	rows := make([][]string, 0, len(menu))
	for _, m := range menu {
		rows = append(rows, []string{m.ID, m.Group, m.Name})
	}
	PrintTable(out, []string{"ID", "GROUP", "NAME"}, rows)
	return nil
}

func runRefreshCatalog(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.New(a.log, scheduler.WithRetry(2, 5*time.Second))
	job := jobs.NewCatalogRefreshJob(a.catalog, a.cfg.Viewer.CatalogSchedule, a.log)
	if err := sched.AddJob(job); err != nil {
		return err
	}

	result, err := sched.RunJobSync(cmd.Context(), job.Name())
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("catalog refresh failed after %d attempts: %s", result.Attempts, result.Error)
	}

	snap := a.catalog.Snapshot()
	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Catalog refreshed: %d sectors, %d models in %s",
		len(snap.Sectors), len(snap.Models), result.Duration.Round(time.Millisecond)))
	return nil
}
