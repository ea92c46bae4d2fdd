package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

type fakeBackend struct {
	sector   []contracts.SearchResult
	global   []contracts.SearchResult
	datasets []contracts.SearchResult
	models   map[string]contracts.ModelSeries
	err      error
	queries  []string
}

func (f *fakeBackend) SearchSectorSeries(ctx context.Context, query string) ([]contracts.SearchResult, error) {
	f.queries = append(f.queries, "sector:"+query)
	return f.sector, f.err
}

func (f *fakeBackend) SearchGlobal(ctx context.Context, query string) ([]contracts.SearchResult, error) {
	f.queries = append(f.queries, "global:"+query)
	return f.global, f.err
}

func (f *fakeBackend) SearchDatasets(ctx context.Context, query string) ([]contracts.SearchResult, error) {
	f.queries = append(f.queries, "datasets:"+query)
	return f.datasets, f.err
}

func (f *fakeBackend) FetchModelSeries(ctx context.Context, modelID string) (contracts.ModelSeries, error) {
	f.queries = append(f.queries, "model:"+modelID)
	if f.err != nil {
		return contracts.ModelSeries{}, f.err
	}
	return f.models[modelID], nil
}

func ids(hits []Hit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.SeriesID.String())
	}
	return out
}

func TestFilter(t *testing.T) {
	results := []contracts.SearchResult{
		{SeriesID: "GDPC1", SeriesDescription: "Real Gross Domestic Product"},
		{SeriesID: "A191RL1Q225SBEA", SeriesDescription: "Real GDP growth"},
		{SeriesID: "UNRATE", SeriesDescription: "Unemployment Rate"},
		{SeriesID: "42", Name: "gdp deflator model"},
	}

	tests := []struct {
		query string
		want  []contracts.RawID
	}{
		{"gdp", []contracts.RawID{"GDPC1", "A191RL1Q225SBEA", "42"}},
		{"GDP", []contracts.RawID{"GDPC1", "A191RL1Q225SBEA", "42"}},
		{"rate", []contracts.RawID{"UNRATE"}},
		{"", []contracts.RawID{"GDPC1", "A191RL1Q225SBEA", "UNRATE", "42"}},
		{"  ", []contracts.RawID{"GDPC1", "A191RL1Q225SBEA", "UNRATE", "42"}},
		{"zzz", []contracts.RawID{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Filter(results, tt.query)
			gotIDs := make([]contracts.RawID, 0, len(got))
			for _, r := range got {
				gotIDs = append(gotIDs, r.SeriesID)
			}
			assert.Equal(t, tt.want, gotIDs)
		})
	}
}

func TestFilterBySector(t *testing.T) {
	results := []contracts.SearchResult{
		{SeriesID: "A", SectorID: "Labor"},
		{SeriesID: "B", SectorID: "Prices"},
		{SeriesID: "C", SectorID: "Labor"},
	}

	assert.Len(t, FilterBySector(results, "Labor"), 2)
	assert.Len(t, FilterBySector(results, ""), 3)
	assert.Len(t, FilterBySector(results, AllSectors), 3)
	assert.Empty(t, FilterBySector(results, "Housing"))
}

func TestSearcher_SectorMode(t *testing.T) {
	backend := &fakeBackend{sector: []contracts.SearchResult{
		{SeriesID: "GDPC1", SeriesDescription: "Real GDP", SectorID: "Output"},
		{SeriesID: "GDPDEF", SeriesDescription: "GDP deflator", SectorID: "Prices"},
		{SeriesID: "PAYEMS", SeriesDescription: "Payrolls", SectorID: "Output"},
	}}
	s := NewSearcher(backend, nil, logger.Nop())

	resp, err := s.Search(context.Background(), Query{Mode: ModeSectorSeries, Text: " gdp ", SectorID: "Output"})
	require.NoError(t, err)
	assert.Equal(t, []string{"GDPC1"}, ids(resp.Hits))
	assert.Equal(t, "Real GDP (ID: GDPC1)", resp.Hits[0].Display)
	assert.Equal(t, []string{"sector:gdp"}, backend.queries)
}

func TestSearcher_GlobalAndDatasets(t *testing.T) {
	backend := &fakeBackend{
		global:   []contracts.SearchResult{{SeriesID: "CPIAUCSL", SeriesDescription: "CPI"}},
		datasets: []contracts.SearchResult{{SeriesID: "123", Name: "CPI forecast"}, {SeriesID: "", Name: "cpi orphan"}},
	}
	s := NewSearcher(backend, nil, logger.Nop())

	resp, err := s.Search(context.Background(), Query{Mode: ModeGlobalFred, Text: "cpi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"CPIAUCSL"}, ids(resp.Hits))
	assert.False(t, resp.Hits[0].SeriesID.IsIndustry())

	resp, err = s.Search(context.Background(), Query{Mode: ModeIndustryDatasets, Text: "cpi"})
	require.NoError(t, err)
	require.Len(t, resp.Hits, 1, "results without an id are skipped")
	assert.True(t, resp.Hits[0].SeriesID.IsIndustry())
}

func TestSearcher_ModelMode(t *testing.T) {
	backend := &fakeBackend{
		models: map[string]contracts.ModelSeries{
			"7": {Name: "Durables", Series: []contracts.SearchResult{
				{SeriesID: "701", Name: "Washers"},
				{SeriesID: "702", Name: "Dryers"},
			}},
		},
		datasets: []contracts.SearchResult{{SeriesID: "900", Name: "Dryers total"}},
	}
	s := NewSearcher(backend, nil, logger.Nop())
	ctx := context.Background()

	resp, err := s.Search(ctx, Query{Mode: ModeIndustryModel, Text: "dry", ModelID: "7"})
	require.NoError(t, err)
	assert.Equal(t, []string{"702"}, ids(resp.Hits))

	resp, err = s.Search(ctx, Query{Mode: ModeIndustryModel, Text: "70", ModelID: "7"})
	require.NoError(t, err)
	assert.Equal(t, []string{"701", "702"}, ids(resp.Hits), "id matches count")

	resp, err = s.Search(ctx, Query{Mode: ModeIndustryModel, Text: "dry"})
	require.NoError(t, err)
	assert.Empty(t, resp.Hits)
	assert.NotEmpty(t, resp.Warning)

	resp, err = s.Search(ctx, Query{Mode: ModeIndustryModel, Text: "dry", ModelID: contracts.AllModelsID})
	require.NoError(t, err)
	assert.Equal(t, []string{"900"}, ids(resp.Hits))
}

func TestSearcher_BackendError(t *testing.T) {
	backend := &fakeBackend{err: &contracts.NetworkError{StatusCode: 503, Body: "down"}}
	s := NewSearcher(backend, nil, logger.Nop())

	_, err := s.Search(context.Background(), Query{Mode: ModeGlobalFred, Text: "x"})
	require.Error(t, err)

	var ne *contracts.NetworkError
	assert.True(t, errors.As(err, &ne))
	assert.Equal(t, 503, ne.StatusCode)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"sector", ModeSectorSeries, false},
		{"fredSectors", ModeSectorSeries, false},
		{"", ModeSectorSeries, false},
		{"globalFred", ModeGlobalFred, false},
		{"Industry", ModeIndustryModel, false},
		{"datasets", ModeIndustryDatasets, false},
		{"other", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
