package industry

import (
	"context"
	"fmt"
	"net/url"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/internal/external/backend"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// Client handles communication with the Industry model service
// ⭐ SSOT: Industry 백엔드 호출은 이 클라이언트에서만
type Client struct {
	backend *backend.Client
	logger  *logger.Logger
}

// NewClient creates a new Industry client
func NewClient(b *backend.Client, log *logger.Logger) *Client {
	return &Client{
		backend: b,
		logger:  log.WithField("backend", "industry"),
	}
}

type vintagePayload struct {
	Date       string     `json:"date"`
	Values     []*float64 `json:"values"`
	IsForecast []bool     `json:"is_forecast"`
}

type seriesHistoryPayload struct {
	SeriesID     contracts.RawID   `json:"series_id"`
	Name         string            `json:"name"`
	Frequency    string            `json:"frequency"`
	Dates        *[]string         `json:"dates"`
	History      *[]vintagePayload `json:"history"`
	BlockName    string            `json:"block_name"`
	LastChecked  string            `json:"last_checked"`
	LastRecorded string            `json:"last_recorded"`
	LastUpdated  string            `json:"last_updated"`
}

// SeriesHistory fetches one Industry series with every forecast vintage.
// The requested id is kept as the record ID; the payload's series_id is informational.
func (c *Client) SeriesHistory(ctx context.Context, id contracts.SeriesID) (*contracts.IndustrySeries, error) {
	var payload seriesHistoryPayload
	params := url.Values{"id": {id.String()}}
	if err := c.backend.GetJSON(ctx, "/series_history", params, &payload); err != nil {
		return nil, fmt.Errorf("fetch industry series %s: %w", id, err)
	}

	series, err := payload.toSeries(id)
	if err != nil {
		return nil, fmt.Errorf("industry series %s: %w", id, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"series_id": id.String(),
		"dates":     len(series.Dates),
		"vintages":  len(series.History),
	}).Debug("Industry series fetched")

	return series, nil
}

func (p seriesHistoryPayload) toSeries(id contracts.SeriesID) (*contracts.IndustrySeries, error) {
	if p.Dates == nil {
		return nil, &contracts.DataShapeError{Field: "dates", Reason: "missing"}
	}
	if p.History == nil {
		return nil, &contracts.DataShapeError{Field: "history", Reason: "missing"}
	}

	dates := *p.Dates
	history := make([]contracts.Vintage, 0, len(*p.History))
	for i, v := range *p.History {
		if err := backend.RequireAligned(fmt.Sprintf("history[%d].values", i), len(v.Values), len(dates)); err != nil {
			return nil, err
		}
		history = append(history, contracts.Vintage{
			Date:       v.Date,
			Values:     v.Values,
			IsForecast: v.IsForecast,
		})
	}

	name := p.Name
	if name == "" {
		name = id.String()
	}

	return &contracts.IndustrySeries{
		ID:           id,
		Name:         name,
		Frequency:    p.Frequency,
		Dates:        dates,
		History:      history,
		BlockName:    p.BlockName,
		LastChecked:  p.LastChecked,
		LastRecorded: p.LastRecorded,
		LastUpdated:  p.LastUpdated,
	}, nil
}

type modelSeriesPayload struct {
	FileName string                   `json:"file_name"`
	Series   []contracts.SearchResult `json:"series"`
}

// ModelSeries lists the series of one Industry model
func (c *Client) ModelSeries(ctx context.Context, modelID string) (contracts.ModelSeries, error) {
	var payload modelSeriesPayload
	params := url.Values{"id": {modelID}}
	if err := c.backend.GetJSON(ctx, "/model_series", params, &payload); err != nil {
		return contracts.ModelSeries{}, fmt.Errorf("fetch model %s series: %w", modelID, err)
	}

	series := payload.Series
	if series == nil {
		series = []contracts.SearchResult{}
	}

	return contracts.ModelSeries{
		Name:   payload.FileName,
		ID:     modelID,
		Series: series,
	}, nil
}

// SearchDatasets runs the backend dataset search restricted to series data
func (c *Client) SearchDatasets(ctx context.Context, query string) ([]contracts.SearchResult, error) {
	var results []contracts.SearchResult
	params := url.Values{
		"query":     {query},
		"data_type": {"1"},
	}
	if err := c.backend.GetJSON(ctx, "/datasets", params, &results); err != nil {
		return nil, fmt.Errorf("search industry datasets: %w", err)
	}
	if results == nil {
		results = []contracts.SearchResult{}
	}
	return results, nil
}

// Models fetches the model menu and returns every model it links to in menu order.
// The pseudo model "all" is not included.
func (c *Client) Models(ctx context.Context) ([]contracts.IndustryModel, error) {
	body, err := c.backend.Fetch(ctx, "/_get_industry_models", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch industry models: %w", err)
	}

	models, err := parseModelMenu(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse industry models: %w", err)
	}

	c.logger.WithField("count", len(models)).Debug("Industry models fetched")
	return models, nil
}
