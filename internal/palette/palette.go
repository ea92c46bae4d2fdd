package palette

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
)

// Hue, saturation and lightness bounds for generated colours (green/cyan/blue family)
const (
	hueMin, hueMax  = 120, 300
	satMin, satSpan = 70, 30
	litMin, litSpan = 50, 20

	shadeLightness  = 15
	shadeSaturation = 20
)

// RandSource is the randomness a Palette draws from
type RandSource interface {
	Intn(n int) int
}

// HSL is a colour with integer hue [0,360), saturation and lightness [0,100]
type HSL struct {
	H int
	S int
	L int
}

// RGB converts to an RGB colour, rounding each channel half up
func (c HSL) RGB() contracts.Color {
	h := float64(c.H) / 360
	s := float64(c.S) / 100
	l := float64(c.L) / 100

	var r, g, b float64
	if s == 0 {
		r, g, b = l, l, l
	} else {
		q := l + s - l*s
		if l < 0.5 {
			q = l * (1 + s)
		}
		p := 2*l - q
		r = hueToRGB(p, q, h+1.0/3)
		g = hueToRGB(p, q, h)
		b = hueToRGB(p, q, h-1.0/3)
	}

	return contracts.Color{R: channel(r), G: channel(g), B: channel(b)}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func channel(v float64) uint8 {
	return uint8(math.Floor(v*255 + 0.5))
}

// Shades derives the three forecast variants of base: darker, lighter, desaturated
func Shades(base HSL) [3]HSL {
	return [3]HSL{
		{H: base.H, S: base.S, L: max(0, base.L-shadeLightness)},
		{H: base.H, S: base.S, L: min(100, base.L+shadeLightness)},
		{H: base.H, S: max(0, base.S-shadeSaturation), L: base.L},
	}
}

// RandomHSL draws a base colour: hue in [120,300], saturation in [70,100), lightness in [50,70)
func RandomHSL(rng RandSource) HSL {
	return HSL{
		H: rng.Intn(hueMax-hueMin+1) + hueMin,
		S: rng.Intn(satSpan) + satMin,
		L: rng.Intn(litSpan) + litMin,
	}
}

// Generate draws a base colour and its forecast shades
func Generate(rng RandSource) contracts.SeriesColors {
	base := RandomHSL(rng)
	shades := Shades(base)

	return contracts.SeriesColors{
		Base: base.RGB(),
		ForecastShades: [3]contracts.Color{
			shades[0].RGB(),
			shades[1].RGB(),
			shades[2].RGB(),
		},
	}
}

// Palette assigns each series one colour set for the lifetime of the process.
// ⭐ SSOT: 시리즈 색상은 한 번 배정되면 바뀌지 않음 (apply/discard/delete와 무관)
type Palette struct {
	mu     sync.Mutex
	rng    RandSource
	colors map[contracts.SeriesID]contracts.SeriesColors
}

// New creates a palette drawing from rng. A nil rng uses a time-seeded source.
func New(rng RandSource) *Palette {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Palette{
		rng:    rng,
		colors: make(map[contracts.SeriesID]contracts.SeriesColors),
	}
}

// ColorsFor returns the colours of id, assigning them on first use
func (p *Palette) ColorsFor(id contracts.SeriesID) contracts.SeriesColors {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.colors[id]; ok {
		return c
	}
	c := Generate(p.rng)
	p.colors[id] = c
	return c
}

// Lookup returns the colours of id without assigning
func (p *Palette) Lookup(id contracts.SeriesID) (contracts.SeriesColors, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.colors[id]
	return c, ok
}

// Len reports how many series have colours
func (p *Palette) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.colors)
}
