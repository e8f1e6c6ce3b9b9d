package relatednonce

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
)

// errFound cancels the worker pool once a key is verified.
var errFound = errors.New("key found")

// Search looks for a relation between any two nonces of the set.
//
// Phases, cheapest first: visibly reused nonces, the common patterns, the
// custom patterns, then each Range over the first MaxPairs pairs. A
// candidate key only counts once it matches the public key.
func Search(ctx context.Context, set Scheme, cfg Config) (*Result, error) {
	if set == nil {
		return nil, attack.Precondition(engine, nil, "signature set must not be nil")
	}
	if set.Count() < 2 {
		return nil, attack.Precondition(engine, nil, "need at least 2 signatures, got %d", set.Count())
	}
	cfg = cfg.withDefaults()
	log := attack.Logger(cfg.Logger).With("scheme", set.Name())
	log.Debug("search started", "signatures", set.Count())

	if res := sameNonce(set); res != nil {
		log.Debug("same nonce reuse", "pair", res.Pair)
		return res, nil
	}

	var patterns []Pattern
	if cfg.CommonPatterns {
		patterns = append(patterns, CommonPatterns()...)
	}
	patterns = append(patterns, cfg.Patterns...)
	for _, p := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, attack.Fail(engine, attack.KindSearchExhausted, err, "cancelled during pattern phase")
		}
		if res := tryPattern(set, Relation{A: p.A, B: p.B}, p.Name); res != nil {
			log.Debug("pattern matched", "pattern", p.Name, "pair", res.Pair)
			return res, nil
		}
	}

	var tested int64
	for _, r := range cfg.Ranges {
		log.Debug("range", "name", r.Name, "a", r.A, "b", r.B, "combinations", r.size(cfg.SkipZeroA))
		res, n, err := searchRange(ctx, set, r, cfg)
		tested += n
		if err != nil {
			return nil, attack.Fail(engine, attack.KindSearchExhausted, err,
				"cancelled after %d combinations", tested)
		}
		if res != nil {
			res.Tested = tested
			log.Debug("range matched", "name", r.Name, "relation", res.Relation.String(), "tested", tested)
			return res, nil
		}
	}
	return nil, attack.Exhausted(engine, "no relation found in %d patterns and %d range combinations",
		len(patterns), tested)
}

// Recover solves for the key of signatures i and j under a known relation
// and checks it against the public key.
func Recover(set Scheme, i, j int, rel Relation) (*big.Int, error) {
	if set == nil {
		return nil, attack.Precondition(engine, nil, "signature set must not be nil")
	}
	if i < 0 || j < 0 || i >= set.Count() || j >= set.Count() || i == j {
		return nil, attack.Precondition(engine, nil, "invalid signature pair (%d, %d)", i, j)
	}
	priv, err := set.Recover(i, j, rel)
	if err != nil {
		return nil, err
	}
	if !set.Verify(priv) {
		return nil, attack.Fail(engine, attack.KindDegenerateResult, nil,
			"key from %s does not match the public key", rel)
	}
	return priv, nil
}

func sameNonce(set Scheme) *Result {
	for i := 0; i < set.Count(); i++ {
		for j := i + 1; j < set.Count(); j++ {
			if !set.SameNonce(i, j) {
				continue
			}
			// equal r also covers k2 = −k1 for ECDSA
			for _, rel := range []Relation{Rel(1, 0), Rel(-1, 0)} {
				if priv := verified(set, i, j, rel); priv != nil {
					return &Result{PrivateKey: priv, Relation: rel, Pair: [2]int{i, j}, Pattern: "same_nonce_reuse"}
				}
			}
		}
	}
	return nil
}

func tryPattern(set Scheme, rel Relation, name string) *Result {
	for i := 0; i < set.Count(); i++ {
		for j := i + 1; j < set.Count(); j++ {
			if priv := verified(set, i, j, rel); priv != nil {
				return &Result{PrivateKey: priv, Relation: rel, Pair: [2]int{i, j}, Pattern: name}
			}
		}
	}
	return nil
}

func verified(set Scheme, i, j int, rel Relation) *big.Int {
	priv, err := set.Recover(i, j, rel)
	if err != nil || !set.Verify(priv) {
		return nil
	}
	return priv
}

// searchRange fans (pair, a) tasks out to a bounded errgroup; each task sweeps b.
func searchRange(ctx context.Context, set Scheme, r Range, cfg Config) (*Result, int64, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	var (
		tested int64
		once   sync.Once
		found  *Result
	)

	pairs := 0
submit:
	for i := 0; i < set.Count(); i++ {
		for j := i + 1; j < set.Count(); j++ {
			if pairs >= cfg.MaxPairs {
				break submit
			}
			pairs++
			for a := r.A[0]; a <= r.A[1]; a++ {
				if cfg.SkipZeroA && a == 0 {
					continue
				}
				if gctx.Err() != nil {
					break submit
				}
				i, j, a := i, j, a // per-iteration copies (pre-Go 1.22 loop semantics)
				g.Go(func() error {
					aBig := big.NewInt(int64(a))
					for b := r.B[0]; b <= r.B[1]; b++ {
						if b&0xff == 0 && gctx.Err() != nil {
							return gctx.Err()
						}
						atomic.AddInt64(&tested, 1)
						rel := Relation{A: aBig, B: big.NewInt(int64(b))}
						if priv := verified(set, i, j, rel); priv != nil {
							once.Do(func() {
								found = &Result{
									PrivateKey: priv,
									Relation:   rel,
									Pair:       [2]int{i, j},
									Pattern:    fmt.Sprintf("range_a%d_b%d", a, b),
								}
							})
							return errFound
						}
					}
					return nil
				})
			}
		}
	}

	err := g.Wait()
	n := atomic.LoadInt64(&tested)
	if found != nil {
		return found, n, nil
	}
	if err != nil && !errors.Is(err, errFound) {
		return nil, n, err
	}
	if err := ctx.Err(); err != nil {
		return nil, n, err
	}
	return nil, n, nil
}
