package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/internal/controller"
	"github.com/draeangela/industry-data-visualizer/internal/palette"
	"github.com/draeangela/industry-data-visualizer/internal/projection"
	"github.com/draeangela/industry-data-visualizer/internal/render"
	"github.com/draeangela/industry-data-visualizer/internal/seriesdata"
	"github.com/draeangela/industry-data-visualizer/internal/views"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a view to PNG, HTML or ECharts JSON",
	Long: `Render a view without starting the server.

The view comes from a YAML view file (--file) or a series id list (--ids).
Series are fetched from the backends unless --records points at a JSON
array of series records.

Example:
  go run ./cmd/viewer render --ids 101,GDPC1 --out chart.png
  go run ./cmd/viewer render --file view.yaml --format html --out chart.html
  go run ./cmd/viewer render --ids 101 --records testdata/records.json --format json`,
	RunE: runRender,
}

var (
	renderFile      string
	renderIDs       string
	renderRecords   string
	renderFormat    string
	renderOut       string
	renderWidth     int
	renderHeight    int
	renderChartType string
	renderPlotMode  string
	renderSaveYAML  string
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderFile, "file", "", "YAML view file")
	renderCmd.Flags().StringVar(&renderIDs, "ids", "", "comma separated series ids")
	renderCmd.Flags().StringVar(&renderRecords, "records", "", "JSON file of series records used instead of the backends")
	renderCmd.Flags().StringVar(&renderFormat, "format", "png", "output format: png, html, json")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output file (default: stdout)")
	renderCmd.Flags().IntVar(&renderWidth, "width", render.DefaultWidth, "PNG width")
	renderCmd.Flags().IntVar(&renderHeight, "height", render.DefaultHeight, "PNG height")
	renderCmd.Flags().StringVar(&renderChartType, "chart-type", "", "override chart type: line, bar")
	renderCmd.Flags().StringVar(&renderPlotMode, "plot-mode", "", "override plot mode: all, history, forecast")
	renderCmd.Flags().StringVar(&renderSaveYAML, "save-yaml", "", "also write the resolved view as a YAML view file")
}

func runRender(cmd *cobra.Command, args []string) error {
	if (renderFile == "") == (renderIDs == "") {
		return fmt.Errorf("exactly one of --file or --ids is required")
	}
	format := strings.ToLower(renderFormat)
	if format != "png" && format != "html" && format != "json" {
		return fmt.Errorf("unknown format %q", renderFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fetcher, done, err := renderSource(log)
	if err != nil {
		return err
	}
	defer done()

	state, err := renderState(ctx, fetcher, cfg.Viewer.DefaultTitle, log)
	if err != nil {
		return err
	}

	engine := projection.NewEngine(fetcher, palette.New(nil), log)
	res, err := engine.Project(ctx, state.SelectedSeriesIDs, state)
	if err != nil {
		return fmt.Errorf("project view: %w", err)
	}
	for _, f := range res.Failed {
		PrintWarning(os.Stderr, fmt.Sprintf("%s: %s", f.SeriesID, f.Error))
	}

	if renderSaveYAML != "" {
		if err := writeFile(renderSaveYAML, views.FileFromState(state).Encode); err != nil {
			return err
		}
	}

	write := func(w io.Writer) error {
		switch format {
		case "html":
			return render.HTML(w, res)
		case "json":
			data, err := render.OptionJSON(res)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		default:
			return render.PNG(w, res, render.PNGOptions{Width: renderWidth, Height: renderHeight})
		}
	}

	if renderOut == "" {
		return write(cmd.OutOrStdout())
	}
	if err := writeFile(renderOut, write); err != nil {
		return err
	}
	PrintSuccess(os.Stderr, fmt.Sprintf("%s written (%d series)", renderOut, len(res.Series)))
	return nil
}

// renderSource returns the live data service, or an in-memory source for --records
func renderSource(log *logger.Logger) (seriesdata.Fetcher, func(), error) {
	if renderRecords == "" {
		a, err := newApp()
		if err != nil {
			return nil, nil, err
		}
		return a.data, a.Close, nil
	}

	f, err := os.Open(renderRecords)
	if err != nil {
		return nil, nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()

	mem, err := seriesdata.LoadMemory(f)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("file", renderRecords).Debug("Using series records from file")
	return mem, func() {}, nil
}

func renderState(ctx context.Context, fetcher seriesdata.Fetcher, defaultTitle string, log *logger.Logger) (contracts.ViewState, error) {
	var (
		state contracts.ViewState
		err   error
	)
	if renderFile != "" {
		file, ferr := views.LoadFile(renderFile)
		if ferr != nil {
			return contracts.ViewState{}, ferr
		}
		state, err = file.State(defaultTitle)
	} else {
		ids := contracts.ParseSeriesIDList(renderIDs)
		if len(ids) == 0 {
			return contracts.ViewState{}, fmt.Errorf("--ids has no series ids")
		}
		state, err = controller.InitialState(ctx, fetcher, ids, defaultTitle, log)
	}
	if err != nil {
		return contracts.ViewState{}, err
	}

	if renderChartType != "" {
		if state.ChartType, err = contracts.ParseChartType(renderChartType); err != nil {
			return contracts.ViewState{}, err
		}
	}
	if renderPlotMode != "" {
		if state.PlotMode, err = contracts.ParsePlotMode(renderPlotMode); err != nil {
			return contracts.ViewState{}, err
		}
	}
	return state, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
