package siggen

// Generator binds a sample rate and a random source so demo code can build
// composite signals without threading both through every call.
type Generator struct {
	sampleRate float64
	src        NormalSource
}

type Option func(g *Generator)

// WithSource injects the normal deviate source used by Noise.
func WithSource(src NormalSource) Option {
	return func(g *Generator) {
		g.src = src
	}
}

// WithSeed makes Noise deterministic. A zero seed keeps the clock-seeded source.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		if seed != 0 {
			g.src = NewSeededSource(seed)
		}
	}
}

func NewGenerator(sampleRate float64, opts ...Option) *Generator {
	g := &Generator{
		sampleRate: sampleRate,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.src == nil {
		g.src = NewNormalSource()
	}

	return g
}

func (g *Generator) SampleRate() float64 {
	return g.sampleRate
}

func (g *Generator) Tone(freqHz float64, n int) ([]complex128, error) {
	return Tone(freqHz, g.sampleRate, n)
}

func (g *Generator) Noise(power float64, n int) ([]complex128, error) {
	return Noise(g.src, power, n)
}

// Composite returns noise at power plus a unit tone at each of freqs.
func (g *Generator) Composite(power float64, freqs []float64, n int) ([]complex128, error) {
	noise, err := g.Noise(power, n)
	if err != nil {
		return nil, err
	}

	seqs := [][]complex128{noise}
	for _, freq := range freqs {
		tone, err := g.Tone(freq, n)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, tone)
	}

	return Sum(seqs...)
}
