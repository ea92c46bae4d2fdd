package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

type fakeSource struct {
	mu           sync.Mutex
	sectors      []contracts.Sector
	models       []contracts.IndustryModel
	sectorSeries map[string][]contracts.SearchResult
	err          error
	calls        map[string]int
}

func (f *fakeSource) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeSource) FetchSectors(ctx context.Context) []contracts.Sector {
	f.count("sectors")
	return f.sectors
}

func (f *fakeSource) FetchSectorSeries(ctx context.Context, sector string) ([]contracts.SearchResult, error) {
	f.count("sector:" + sector)
	if f.err != nil {
		return nil, f.err
	}
	return f.sectorSeries[sector], nil
}

func (f *fakeSource) FetchIndustryModels(ctx context.Context) []contracts.IndustryModel {
	f.count("models")
	return f.models
}

func newSource() *fakeSource {
	return &fakeSource{
		sectors: []contracts.Sector{{ID: "Consumer Goods", Name: "Consumer Goods"}, {ID: "Labor", Name: "Labor"}},
		models:  []contracts.IndustryModel{{ID: "7", Name: "Durables", Group: "Consumer"}},
		sectorSeries: map[string][]contracts.SearchResult{
			"Consumer Goods": {{SeriesID: "PCEDG", SeriesDescription: "Durable goods", Frequency: "Monthly"}},
		},
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"consumer_goods", "Consumer Goods"},
		{"labor", "Labor"},
		{"Consumer%20Goods", "Consumer Goods"},
		{"real_estate_and_housing", "Real Estate And Housing"},
		{"GDP", "GDP"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.in))
		})
	}
}

func TestViewerLink(t *testing.T) {
	ids := []contracts.SeriesID{contracts.MustSeriesID("GDPC1"), contracts.MustSeriesID("101")}

	assert.Equal(t, "/viewer?seriesIds=GDPC1,101", ViewerLink("/viewer", ids))
	assert.Equal(t, "/viewer?x=1&seriesIds=GDPC1", ViewerLink("/viewer?x=1", ids[:1]))
	assert.Equal(t, "/viewer?seriesIds=", ViewerLink("/viewer", nil))
}

func TestRefresh(t *testing.T) {
	src := newSource()
	c := New(src, nil, logger.Nop())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	snap := c.Refresh(context.Background())
	assert.Len(t, snap.Sectors, 2)
	assert.Len(t, snap.Models, 1)
	assert.Equal(t, fixed, snap.RefreshedAt)

	// a failed listing keeps the previous content
	src.sectors = nil
	snap = c.Refresh(context.Background())
	assert.Len(t, snap.Sectors, 2)
}

func TestSectorsAndModels_LoadOnce(t *testing.T) {
	src := newSource()
	c := New(src, nil, logger.Nop())
	ctx := context.Background()

	assert.Len(t, c.Sectors(ctx), 2)
	assert.Len(t, c.Sectors(ctx), 2)
	assert.Equal(t, 1, src.calls["sectors"])

	assert.Len(t, c.Models(ctx), 1)
	assert.Len(t, c.Models(ctx), 1)
	assert.Equal(t, 1, src.calls["models"])
}

func TestSectors_EmptyIsRetried(t *testing.T) {
	src := &fakeSource{}
	c := New(src, nil, logger.Nop())
	ctx := context.Background()

	sectors := c.Sectors(ctx)
	assert.NotNil(t, sectors)
	assert.Empty(t, sectors)
	c.Sectors(ctx)
	assert.Equal(t, 2, src.calls["sectors"])
}

func TestModelMenu(t *testing.T) {
	c := New(newSource(), nil, logger.Nop())
	ctx := context.Background()

	menu := c.ModelMenu(ctx)
	require.Len(t, menu, 2)
	assert.Equal(t, contracts.AllModelsID, menu[0].ID)
	assert.Equal(t, AllModelsName, menu[0].Name)

	name, ok := c.ModelName(ctx, "7")
	assert.True(t, ok)
	assert.Equal(t, "Durables", name)

	_, ok = c.ModelName(ctx, "99")
	assert.False(t, ok)
}

func TestSectorSeries(t *testing.T) {
	src := newSource()
	c := New(src, nil, logger.Nop())
	ctx := context.Background()

	listing, err := c.SectorSeries(ctx, "consumer_goods")
	require.NoError(t, err)
	assert.Equal(t, "Consumer Goods", listing.DisplayName)
	require.Len(t, listing.Series, 1)
	assert.Equal(t, contracts.RawID("PCEDG"), listing.Series[0].SeriesID)

	listing, err = c.SectorSeries(ctx, "labor")
	require.NoError(t, err)
	assert.NotNil(t, listing.Series)
	assert.Empty(t, listing.Series)

	src.err = &contracts.NetworkError{StatusCode: 404, Body: "no such sector"}
	_, err = c.SectorSeries(ctx, "missing")
	var ne *contracts.NetworkError
	assert.True(t, errors.As(err, &ne))
}
