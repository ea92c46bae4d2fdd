package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/internal/projection"
	"github.com/draeangela/industry-data-visualizer/internal/seriesdata"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// Previewer projects a single series for the details dialog
type Previewer interface {
	Preview(ctx context.Context, id contracts.SeriesID, forecasts []string, chartType contracts.ChartType) (projection.Result, error)
}

// SeriesDetail is the details dialog of one series
type SeriesDetail struct {
	SeriesID      string                   `json:"series_id"`
	Kind          contracts.SeriesKind     `json:"kind"`
	Name          string                   `json:"name"`
	Frequency     string                   `json:"frequency,omitempty"`
	ModelName     string                   `json:"model_name,omitempty"`
	LastChecked   string                   `json:"last_checked,omitempty"`
	LastRecorded  string                   `json:"last_recorded,omitempty"`
	LastUpdated   string                   `json:"last_updated,omitempty"`
	Vintages      []string                 `json:"vintages"`
	LatestVintage string                   `json:"latest_vintage,omitempty"`
	Record        contracts.RecordEnvelope `json:"record"`
	Preview       projection.Result        `json:"preview"`
}

// SeriesHandler serves series details
type SeriesHandler struct {
	fetcher   seriesdata.Fetcher
	previewer Previewer
	logger    *logger.Logger
}

// NewSeriesHandler creates a new series handler
func NewSeriesHandler(fetcher seriesdata.Fetcher, previewer Previewer, log *logger.Logger) *SeriesHandler {
	return &SeriesHandler{
		fetcher:   fetcher,
		previewer: previewer,
		logger:    log,
	}
}

// GetSeries returns a series with its vintages and a preview chart.
// ?forecasts=a,b picks the preview vintages (default: the latest); ?chart_type=bar switches the preview.
// GET /api/series/{id}
func (h *SeriesHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	id, err := contracts.ParseSeriesID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	chartType := contracts.ChartLine
	if raw := r.URL.Query().Get("chart_type"); raw != "" {
		chartType, err = contracts.ParseChartType(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	rec, err := h.fetcher.FetchSeries(r.Context(), id)
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	detail := SeriesDetail{
		SeriesID: id.String(),
		Kind:     id.Kind(),
		Name:     rec.DisplayName(),
		Vintages: []string{},
		Record:   contracts.Envelope(rec),
	}

	var forecasts []string
	switch s := rec.(type) {
	case *contracts.IndustrySeries:
		detail.Frequency = s.Frequency
		detail.ModelName = projection.ModelName(s.BlockName)
		detail.LastChecked = s.LastChecked
		detail.LastRecorded = s.LastRecorded
		detail.LastUpdated = s.LastUpdated
		detail.Vintages = s.VintageDates()
		if latest, ok := s.LatestVintage(); ok {
			detail.LatestVintage = latest.Date
			forecasts = []string{latest.Date}
		}
		if raw := r.URL.Query().Get("forecasts"); raw != "" {
			forecasts = splitList(raw)
		}
	case *contracts.FredSeries:
		detail.Frequency = s.Frequency
	}

	detail.Preview, err = h.previewer.Preview(r.Context(), id, forecasts, chartType)
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
