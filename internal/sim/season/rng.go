package season

import (
	"math"
	"math/rand"
)

// rng is the single seedable generator behind every stochastic draw in a
// season. Every derived draw bottoms out in exactly one Uint64 per call, and
// the draw count is recorded, so a restored game can replay the stream to the
// same position and continue bit-for-bit identically.
type rng struct {
	r     *rand.Rand
	draws uint64
}

func newRNG(seed int64) *rng {
	return &rng{r: rand.New(rand.NewSource(seed))}
}

// newRNGAt recreates a generator advanced to a recorded draw position.
func newRNGAt(seed int64, draws uint64) *rng {
	g := newRNG(seed)
	for i := uint64(0); i < draws; i++ {
		g.r.Uint64()
	}
	g.draws = draws
	return g
}

func (g *rng) uint64() uint64 {
	g.draws++
	return g.r.Uint64()
}

func (g *rng) Float64() float64 {
	return float64(g.uint64()>>11) / (1 << 53)
}

func (g *rng) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(g.uint64() % uint64(n))
}

// Uniform draws from [lo, hi).
func (g *rng) Uniform(lo, hi float64) float64 {
	return lo + g.Float64()*(hi-lo)
}

// Norm draws a standard normal via Box-Muller (always two underlying draws).
func (g *rng) Norm() float64 {
	u1 := g.Float64()
	u2 := g.Float64()
	if u1 < 1e-12 {
		u1 = 1e-12
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Read makes the generator usable as an entropy source (event IDs).
func (g *rng) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		u := g.uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(u >> (8 * j))
		}
	}
	return len(p), nil
}
