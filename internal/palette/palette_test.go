package palette

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
)

// seqRand returns queued values modulo n, counting draws
type seqRand struct {
	values []int
	draws  int
}

func (r *seqRand) Intn(n int) int {
	v := r.values[r.draws%len(r.values)]
	r.draws++
	return v % n
}

func TestHSLToRGB(t *testing.T) {
	tests := []struct {
		hsl  HSL
		want contracts.Color
	}{
		{HSL{H: 120, S: 100, L: 50}, contracts.Color{R: 0, G: 255, B: 0}},
		{HSL{H: 240, S: 100, L: 50}, contracts.Color{R: 0, G: 0, B: 255}},
		{HSL{H: 180, S: 100, L: 50}, contracts.Color{R: 0, G: 255, B: 255}},
		{HSL{H: 0, S: 100, L: 50}, contracts.Color{R: 255, G: 0, B: 0}},
		{HSL{H: 200, S: 0, L: 50}, contracts.Color{R: 128, G: 128, B: 128}},
		{HSL{H: 0, S: 0, L: 100}, contracts.Color{R: 255, G: 255, B: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.hsl.RGB())
		})
	}
}

func TestShades(t *testing.T) {
	shades := Shades(HSL{H: 200, S: 80, L: 60})
	assert.Equal(t, HSL{H: 200, S: 80, L: 45}, shades[0])
	assert.Equal(t, HSL{H: 200, S: 80, L: 75}, shades[1])
	assert.Equal(t, HSL{H: 200, S: 60, L: 60}, shades[2])

	clamped := Shades(HSL{H: 150, S: 10, L: 95})
	assert.Equal(t, 100, clamped[1].L)
	assert.Equal(t, 0, clamped[2].S)

	dark := Shades(HSL{H: 150, S: 50, L: 5})
	assert.Equal(t, 0, dark[0].L)
}

func TestRandomHSLBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		c := RandomHSL(rng)
		if c.H < 120 || c.H > 300 {
			t.Fatalf("hue %d out of [120,300]", c.H)
		}
		if c.S < 70 || c.S >= 100 {
			t.Fatalf("saturation %d out of [70,100)", c.S)
		}
		if c.L < 50 || c.L >= 70 {
			t.Fatalf("lightness %d out of [50,70)", c.L)
		}
	}
}

func TestRandomHSLExtremes(t *testing.T) {
	low := RandomHSL(&seqRand{values: []int{0}})
	assert.Equal(t, HSL{H: 120, S: 70, L: 50}, low)

	high := RandomHSL(&seqRand{values: []int{180, 29, 19}})
	assert.Equal(t, HSL{H: 300, S: 99, L: 69}, high)
}

func TestGenerate(t *testing.T) {
	colors := Generate(&seqRand{values: []int{0, 30, 0}})
	// 30 % 30 wraps to the lowest saturation
	assert.Equal(t, HSL{H: 120, S: 70, L: 50}.RGB(), colors.Base)
	assert.Equal(t, HSL{H: 120, S: 70, L: 35}.RGB(), colors.ForecastShades[0])
	assert.Equal(t, HSL{H: 120, S: 70, L: 65}.RGB(), colors.ForecastShades[1])
	assert.Equal(t, HSL{H: 120, S: 50, L: 50}.RGB(), colors.ForecastShades[2])
}

func TestPaletteStable(t *testing.T) {
	rng := &seqRand{values: []int{10, 5, 3, 90, 20, 15}}
	p := New(rng)
	id := contracts.MustSeriesID("12345")

	first := p.ColorsFor(id)
	draws := rng.draws

	for i := 0; i < 5; i++ {
		assert.Equal(t, first, p.ColorsFor(id))
	}
	assert.Equal(t, draws, rng.draws, "re-projection must not draw new colours")

	other := p.ColorsFor(contracts.MustSeriesID("GDPC1"))
	assert.NotEqual(t, first, other)
	assert.Equal(t, 2, p.Len())

	got, ok := p.Lookup(id)
	assert.True(t, ok)
	assert.Equal(t, first, got)

	_, ok = p.Lookup(contracts.MustSeriesID("UNSEEN"))
	assert.False(t, ok)
}

func TestPaletteConcurrent(t *testing.T) {
	p := New(nil)
	id := contracts.MustSeriesID("GDPC1")

	var wg sync.WaitGroup
	results := make([]contracts.SeriesColors, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.ColorsFor(id)
		}(i)
	}
	wg.Wait()

	for _, c := range results {
		assert.Equal(t, results[0], c)
	}
}
