package seriesdata

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/pkg/config"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
	"github.com/draeangela/industry-data-visualizer/pkg/redis"
)

type fakeIndustry struct {
	calls     []string
	modelsErr error
}

func (f *fakeIndustry) SeriesHistory(ctx context.Context, id contracts.SeriesID) (*contracts.IndustrySeries, error) {
	f.calls = append(f.calls, "history:"+id.String())
	return &contracts.IndustrySeries{ID: id, Name: "Industry " + id.String(), Dates: []string{}, History: []contracts.Vintage{}}, nil
}

func (f *fakeIndustry) ModelSeries(ctx context.Context, modelID string) (contracts.ModelSeries, error) {
	return contracts.ModelSeries{ID: modelID}, nil
}

func (f *fakeIndustry) SearchDatasets(ctx context.Context, query string) ([]contracts.SearchResult, error) {
	return []contracts.SearchResult{{SeriesID: "1", Name: query}}, nil
}

func (f *fakeIndustry) Models(ctx context.Context) ([]contracts.IndustryModel, error) {
	if f.modelsErr != nil {
		return nil, f.modelsErr
	}
	return []contracts.IndustryModel{{ID: "3", Name: "Retail"}}, nil
}

type fakeFred struct {
	calls      []string
	sectorsErr error
}

func (f *fakeFred) Series(ctx context.Context, id contracts.SeriesID) (*contracts.FredSeries, error) {
	f.calls = append(f.calls, "series:"+id.String())
	if id.String() == "BROKEN" {
		return nil, &contracts.NetworkError{StatusCode: 500, Body: "boom"}
	}
	return &contracts.FredSeries{ID: id, Name: "FRED " + id.String()}, nil
}

func (f *fakeFred) Sectors(ctx context.Context) ([]contracts.Sector, error) {
	if f.sectorsErr != nil {
		return nil, f.sectorsErr
	}
	return []contracts.Sector{{ID: "Energy", Name: "Energy"}}, nil
}

func (f *fakeFred) SectorSeries(ctx context.Context, sector string) ([]contracts.SearchResult, error) {
	return []contracts.SearchResult{{SeriesID: "X", SectorID: sector}}, nil
}

func (f *fakeFred) SearchAllSeries(ctx context.Context, query string) ([]contracts.SearchResult, error) {
	return []contracts.SearchResult{{SeriesID: "A"}}, nil
}

func (f *fakeFred) GlobalSearch(ctx context.Context, query string) ([]contracts.SearchResult, error) {
	return []contracts.SearchResult{{SeriesID: "B"}}, nil
}

func disabledCache(t *testing.T) *redis.Cache {
	t.Helper()
	client, err := redis.New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return redis.NewCache(client, "viewer")
}

func TestFetchSeries_Dispatch(t *testing.T) {
	ind := &fakeIndustry{}
	fr := &fakeFred{}
	svc := NewService(ind, fr, disabledCache(t), 0, logger.Nop())
	ctx := context.Background()

	rec, err := svc.FetchSeries(ctx, contracts.MustSeriesID("12345"))
	require.NoError(t, err)
	_, isIndustry := rec.(*contracts.IndustrySeries)
	assert.True(t, isIndustry)

	rec, err = svc.FetchSeries(ctx, contracts.MustSeriesID("GDPC1"))
	require.NoError(t, err)
	_, isFred := rec.(*contracts.FredSeries)
	assert.True(t, isFred)

	assert.Equal(t, []string{"history:12345"}, ind.calls)
	assert.Equal(t, []string{"series:GDPC1"}, fr.calls)
}

func TestFetchSeries_Errors(t *testing.T) {
	svc := NewService(&fakeIndustry{}, &fakeFred{}, nil, 0, logger.Nop())
	ctx := context.Background()

	_, err := svc.FetchSeries(ctx, contracts.SeriesID{})
	assert.Error(t, err)

	rec, err := svc.FetchSeries(ctx, contracts.MustSeriesID("BROKEN"))
	assert.Nil(t, rec)
	assert.True(t, contracts.IsNetworkError(err))
}

func TestSoftFailListings(t *testing.T) {
	svc := NewService(
		&fakeIndustry{modelsErr: errors.New("menu down")},
		&fakeFred{sectorsErr: &contracts.NetworkError{StatusCode: 503}},
		nil, 0, logger.Nop(),
	)
	ctx := context.Background()

	sectors := svc.FetchSectors(ctx)
	assert.NotNil(t, sectors)
	assert.Empty(t, sectors)

	models := svc.FetchIndustryModels(ctx)
	assert.NotNil(t, models)
	assert.Empty(t, models)
}

func TestPassThrough(t *testing.T) {
	svc := NewService(&fakeIndustry{}, &fakeFred{}, nil, 0, logger.Nop())
	ctx := context.Background()

	assert.Len(t, svc.FetchSectors(ctx), 1)
	assert.Len(t, svc.FetchIndustryModels(ctx), 1)

	model, err := svc.FetchModelSeries(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, "9", model.ID)

	series, err := svc.FetchSectorSeries(ctx, "Energy")
	require.NoError(t, err)
	assert.Equal(t, "Energy", series[0].SectorID)

	for _, search := range []func(context.Context, string) ([]contracts.SearchResult, error){
		svc.SearchSectorSeries, svc.SearchGlobal, svc.SearchDatasets,
	} {
		results, err := search(ctx, "q")
		require.NoError(t, err)
		assert.Len(t, results, 1)
	}
}

func TestMemory(t *testing.T) {
	fred := &contracts.FredSeries{ID: contracts.MustSeriesID("GDPC1"), Name: "Real GDP"}
	m := NewMemory(fred)
	ctx := context.Background()

	rec, err := m.FetchSeries(ctx, fred.ID)
	require.NoError(t, err)
	assert.Equal(t, "Real GDP", rec.DisplayName())

	_, err = m.FetchSeries(ctx, contracts.MustSeriesID("MISSING"))
	assert.True(t, contracts.IsNetworkError(err))

	m.Fail(fred.ID, errors.New("down"))
	_, err = m.FetchSeries(ctx, fred.ID)
	assert.EqualError(t, err, "down")
	assert.Equal(t, 2, m.Calls(fred.ID))
}

func TestLoadMemory(t *testing.T) {
	input := `[
		{"kind":"FRED","fred":{"series_id":"GDPC1","name":"Real GDP","dates":["2024-01-01"],"values":[1]}},
		{"kind":"Industry","industry":{"series_id":"77","name":"Shipments","dates":[],"history":[]}}
	]`

	m, err := LoadMemory(strings.NewReader(input))
	require.NoError(t, err)

	rec, err := m.FetchSeries(context.Background(), contracts.MustSeriesID("77"))
	require.NoError(t, err)
	assert.Equal(t, "Shipments", rec.DisplayName())
	assert.True(t, rec.RecordID().IsIndustry())

	_, err = LoadMemory(strings.NewReader(`[{"kind":"nope"}]`))
	assert.Error(t, err)
}
