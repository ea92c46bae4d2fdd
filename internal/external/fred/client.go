package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/internal/external/backend"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// Client handles communication with the FRED-like macro series service
// ⭐ SSOT: FRED 백엔드 호출은 이 클라이언트에서만
type Client struct {
	backend *backend.Client
	logger  *logger.Logger
}

// NewClient creates a new FRED client
func NewClient(b *backend.Client, log *logger.Logger) *Client {
	return &Client{
		backend: b,
		logger:  log.WithField("backend", "fred"),
	}
}

type seriesPayload struct {
	SeriesID          contracts.RawID `json:"series_id"`
	Name              string          `json:"name"`
	SeriesDescription string          `json:"series_description"`
	Frequency         string          `json:"frequency"`
	Dates             *[]string       `json:"dates"`
	Values            *[]*float64     `json:"values"`
}

// Series fetches one flat macro series
func (c *Client) Series(ctx context.Context, id contracts.SeriesID) (*contracts.FredSeries, error) {
	var payload seriesPayload
	if err := c.backend.GetJSON(ctx, "/series/"+url.PathEscape(id.String()), nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch fred series %s: %w", id, err)
	}

	series, err := payload.toSeries(id)
	if err != nil {
		return nil, fmt.Errorf("fred series %s: %w", id, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"series_id": id.String(),
		"dates":     len(series.Dates),
	}).Debug("FRED series fetched")

	return series, nil
}

func (p seriesPayload) toSeries(id contracts.SeriesID) (*contracts.FredSeries, error) {
	if p.Dates == nil {
		return nil, &contracts.DataShapeError{Field: "dates", Reason: "missing"}
	}
	if p.Values == nil {
		return nil, &contracts.DataShapeError{Field: "values", Reason: "missing"}
	}
	if err := backend.RequireAligned("values", len(*p.Values), len(*p.Dates)); err != nil {
		return nil, err
	}

	name := p.Name
	if name == "" {
		name = p.SeriesDescription
	}
	if name == "" {
		name = id.String()
	}

	return &contracts.FredSeries{
		ID:        id,
		Name:      name,
		Frequency: p.Frequency,
		Dates:     *p.Dates,
		Values:    *p.Values,
	}, nil
}

// Sectors lists every sector. The backend answers with either bare names or {id, name} objects.
func (c *Client) Sectors(ctx context.Context) ([]contracts.Sector, error) {
	var raw json.RawMessage
	if err := c.backend.GetJSON(ctx, "/sectors", nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch sectors: %w", err)
	}

	sectors, err := decodeSectors(raw)
	if err != nil {
		return nil, fmt.Errorf("decode sectors: %w", err)
	}
	return sectors, nil
}

func decodeSectors(raw json.RawMessage) ([]contracts.Sector, error) {
	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		sectors := make([]contracts.Sector, 0, len(names))
		for _, name := range names {
			sectors = append(sectors, contracts.Sector{ID: name, Name: name})
		}
		return sectors, nil
	}

	var sectors []contracts.Sector
	if err := json.Unmarshal(raw, &sectors); err != nil {
		return nil, &contracts.DataShapeError{Field: "sectors", Reason: "expected a list of names or objects"}
	}
	for i := range sectors {
		if sectors[i].ID == "" {
			sectors[i].ID = sectors[i].Name
		}
	}
	if sectors == nil {
		sectors = []contracts.Sector{}
	}
	return sectors, nil
}

type sectorPayload struct {
	Series json.RawMessage `json:"series"`
}

// SectorSeries lists the series of one sector, ordered by series ID
func (c *Client) SectorSeries(ctx context.Context, sector string) ([]contracts.SearchResult, error) {
	var payload sectorPayload
	if err := c.backend.GetJSON(ctx, "/sectors/"+url.PathEscape(sector), nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch sector %s: %w", sector, err)
	}

	var byID map[string]contracts.SearchResult
	if len(payload.Series) == 0 || json.Unmarshal(payload.Series, &byID) != nil || byID == nil {
		return nil, &contracts.DataShapeError{Field: "series", Reason: "not found or not an object"}
	}

	results := make([]contracts.SearchResult, 0, len(byID))
	for key, r := range byID {
		if r.SeriesID == "" {
			r.SeriesID = contracts.RawID(key)
		}
		if r.SectorID == "" {
			r.SectorID = sector
		}
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].SeriesID < results[j].SeriesID
	})

	return results, nil
}

// SearchAllSeries runs the sector-aware series search
func (c *Client) SearchAllSeries(ctx context.Context, query string) ([]contracts.SearchResult, error) {
	return c.search(ctx, "/search_all_series", query)
}

// GlobalSearch runs the unrestricted series search
func (c *Client) GlobalSearch(ctx context.Context, query string) ([]contracts.SearchResult, error) {
	return c.search(ctx, "/global_search", query)
}

func (c *Client) search(ctx context.Context, path, query string) ([]contracts.SearchResult, error) {
	var results []contracts.SearchResult
	if err := c.backend.GetJSON(ctx, path, url.Values{"query": {query}}, &results); err != nil {
		return nil, fmt.Errorf("search %s: %w", path, err)
	}
	if results == nil {
		results = []contracts.SearchResult{}
	}
	return results, nil
}
