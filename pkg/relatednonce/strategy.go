package relatednonce

import (
	"log/slog"
	"math/big"
)

// Pattern is a specific relation to test before the range search.
type Pattern struct {
	A    *big.Int
	B    *big.Int
	Name string // human-readable description
}

// Range is one rectangle of the (a, b) search, bounds inclusive.
type Range struct {
	A    [2]int
	B    [2]int
	Name string
}

func (r Range) size(skipZeroA bool) int64 {
	if r.A[1] < r.A[0] || r.B[1] < r.B[0] {
		return 0
	}
	a := int64(r.A[1] - r.A[0] + 1)
	if skipZeroA && r.A[0] <= 0 && r.A[1] >= 0 {
		a--
	}
	return a * int64(r.B[1]-r.B[0]+1)
}

// Config controls Search.
type Config struct {
	// CommonPatterns enables the built-in counter, step and multiplier patterns.
	CommonPatterns bool

	// Patterns are tried after the common ones.
	Patterns []Pattern

	// Ranges are searched in order; nil means DefaultRanges.
	Ranges []Range

	// MaxPairs limits how many signature pairs the range search visits.
	MaxPairs int

	// Workers bounds the range-search pool (0 = 16).
	Workers int

	// SkipZeroA skips a = 0, which never relates two independent nonces.
	SkipZeroA bool

	Logger *slog.Logger
}

// DefaultConfig enables the common patterns and the default range ladder.
func DefaultConfig() Config {
	return Config{
		CommonPatterns: true,
		MaxPairs:       100,
		SkipZeroA:      true,
	}
}

// WithPatterns appends custom patterns.
func (c Config) WithPatterns(p ...Pattern) Config {
	c.Patterns = append(append([]Pattern(nil), c.Patterns...), p...)
	return c
}

// WithRanges replaces the range ladder.
func (c Config) WithRanges(r ...Range) Config {
	c.Ranges = append([]Range(nil), r...)
	return c
}

// WithWorkers sets the size of the range-search pool.
func (c Config) WithWorkers(n int) Config {
	c.Workers = n
	return c
}

// WithLogger sets the logger.
func (c Config) WithLogger(l *slog.Logger) Config {
	c.Logger = l
	return c
}

func (c Config) withDefaults() Config {
	if c.Ranges == nil {
		c.Ranges = DefaultRanges()
	}
	if c.MaxPairs <= 0 {
		c.MaxPairs = 100
	}
	if c.Workers <= 0 {
		c.Workers = 16
	}
	return c
}

// DefaultRanges is the expanding ladder searched when Config.Ranges is nil.
func DefaultRanges() []Range {
	return []Range{
		{A: [2]int{1, 1}, B: [2]int{-100, 100}, Name: "a=1, small b"},
		{A: [2]int{1, 1}, B: [2]int{-1000, 1000}, Name: "a=1, medium b"},
		{A: [2]int{2, 4}, B: [2]int{-1000, 1000}, Name: "small a, medium b"},
		{A: [2]int{-5, -1}, B: [2]int{-1000, 1000}, Name: "negative a, medium b"},
	}
}

// CommonPatterns returns a copy of the built-in patterns.
func CommonPatterns() []Pattern {
	p := []Pattern{
		{big.NewInt(1), big.NewInt(1), "counter_+1"},
		{big.NewInt(1), big.NewInt(-1), "counter_-1"},
	}
	for _, step := range []int64{2, 3, 4, 5} {
		p = append(p,
			Pattern{big.NewInt(1), big.NewInt(step), "counter_+" + big.NewInt(step).String()},
			Pattern{big.NewInt(1), big.NewInt(-step), "counter_-" + big.NewInt(step).String()},
		)
	}
	for _, step := range []int64{8, 16, 32, 64, 128, 256, 512, 1024, 10, 100, 1000, 10000} {
		p = append(p, Pattern{big.NewInt(1), big.NewInt(step), "step_" + big.NewInt(step).String()})
	}
	return append(p,
		Pattern{big.NewInt(2), big.NewInt(0), "multiply_2"},
		Pattern{big.NewInt(2), big.NewInt(1), "multiply_2_+1"},
		Pattern{big.NewInt(3), big.NewInt(0), "multiply_3"},
		Pattern{big.NewInt(4), big.NewInt(0), "multiply_4"},
		Pattern{big.NewInt(-1), big.NewInt(0), "negate"},
	)
}
