// Package paddingoracle decrypts CBC ciphertext without the key, given an
// oracle that reports whether a forged two-block message carries valid PKCS#7
// padding.
//
// For each target block C_i the engine forges a preceding block C' byte by
// byte, from the last byte to the first. When the oracle accepts C' || C_i
// with pad length p at position bs−p, the intermediate value D(C_i)[bs−p] is
// C'[bs−p] XOR p, and the plaintext byte is that value XOR C_{i−1}[bs−p].
//
//	blocks, _ := paddingoracle.SplitBlocks(iv, ciphertext, 16)
//	res, err := paddingoracle.Decrypt(ctx, blocks, paddingoracle.OracleFunc(target.ValidPadding), paddingoracle.Config{})
package paddingoracle

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
	"github.com/mahdiidarabi/cryptanalysis/pkg/pkcs7"
)

const engine = "padding-oracle"

// Oracle answers whether prev || block decrypts to validly padded plaintext.
type Oracle interface {
	ValidPadding(ctx context.Context, prev, block []byte) (bool, error)
}

// OracleFunc adapts an in-process predicate to the Oracle interface.
type OracleFunc func(prev, block []byte) bool

// ValidPadding calls f.
func (f OracleFunc) ValidPadding(_ context.Context, prev, block []byte) (bool, error) {
	return f(prev, block), nil
}

// Config tunes Decrypt.
type Config struct {
	// BlockSize, when set, must match the size of every block.
	BlockSize int

	// KeepPadding returns the recovered plaintext without stripping PKCS#7.
	KeepPadding bool

	Logger *slog.Logger
}

// Result is the recovered plaintext of blocks[1:].
type Result struct {
	Padded    []byte // plaintext including padding
	Plaintext []byte // Padded with padding removed, unless KeepPadding
	Queries   int    // oracle calls made
}

// SplitBlocks returns [iv, c1, c2, ...] for ciphertext under blockSize.
func SplitBlocks(iv, ciphertext []byte, blockSize int) ([][]byte, error) {
	if blockSize < 2 {
		return nil, attack.Precondition(engine, nil, "block size must be at least 2")
	}
	if len(iv) != blockSize {
		return nil, attack.Precondition(engine, nil, "iv is %d bytes, want %d", len(iv), blockSize)
	}
	if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 {
		return nil, attack.Precondition(engine, nil,
			"ciphertext length %d is not a positive multiple of %d", len(ciphertext), blockSize)
	}
	blocks := [][]byte{append([]byte(nil), iv...)}
	for i := 0; i < len(ciphertext); i += blockSize {
		blocks = append(blocks, append([]byte(nil), ciphertext[i:i+blockSize]...))
	}
	return blocks, nil
}

// Decrypt recovers the plaintext of blocks[1:], where blocks[0] is the IV.
func Decrypt(ctx context.Context, blocks [][]byte, oracle Oracle, cfg Config) (*Result, error) {
	bs, err := validate(blocks, oracle, cfg)
	if err != nil {
		return nil, err
	}
	log := attack.Logger(cfg.Logger)

	d := &decryptor{ctx: ctx, oracle: oracle, bs: bs, log: log}
	padded := make([]byte, (len(blocks)-1)*bs)

	for i := len(blocks) - 1; i >= 1; i-- {
		plain, err := d.block(blocks[i-1], blocks[i])
		if err != nil {
			return nil, err
		}
		copy(padded[(i-1)*bs:], plain)
		log.Debug("block recovered", "block", i, "queries", d.queries)
	}

	res := &Result{Padded: padded, Plaintext: padded, Queries: d.queries}
	if !cfg.KeepPadding {
		res.Plaintext, err = pkcs7.Unpad(padded, bs)
		if err != nil {
			return nil, attack.Fail(engine, attack.KindDegenerateResult, err,
				"recovered plaintext does not end in valid padding")
		}
	}
	return res, nil
}

func validate(blocks [][]byte, oracle Oracle, cfg Config) (int, error) {
	if oracle == nil {
		return 0, attack.Precondition(engine, nil, "oracle is required")
	}
	if len(blocks) < 2 {
		return 0, attack.Precondition(engine, nil, "need the iv and at least one ciphertext block, got %d blocks", len(blocks))
	}
	bs := len(blocks[0])
	if cfg.BlockSize > 0 && cfg.BlockSize != bs {
		return 0, attack.Precondition(engine, nil, "blocks are %d bytes, configured block size is %d", bs, cfg.BlockSize)
	}
	if bs < 2 || bs > 255 {
		return 0, attack.Precondition(engine, nil, "block size %d out of range", bs)
	}
	for i, b := range blocks {
		if len(b) != bs {
			return 0, attack.Precondition(engine, nil, "block %d is %d bytes, want %d", i, len(b), bs)
		}
	}
	return bs, nil
}

type decryptor struct {
	ctx     context.Context
	oracle  Oracle
	bs      int
	queries int
	log     *slog.Logger
}

func (d *decryptor) query(forged, target []byte) (bool, error) {
	if err := d.ctx.Err(); err != nil {
		return false, attack.Fail(engine, attack.KindSearchExhausted, err, "cancelled after %d queries", d.queries)
	}
	d.queries++
	ok, err := d.oracle.ValidPadding(d.ctx, forged, target)
	if err != nil {
		return false, attack.Fail(engine, attack.KindOracleInconsistency,
			errors.Wrapf(err, "query %d", d.queries), "oracle returned an error")
	}
	return ok, nil
}

// block recovers the plaintext of target given the real preceding block.
func (d *decryptor) block(prev, target []byte) ([]byte, error) {
	bs := d.bs
	intermediate := make([]byte, bs)
	forged := make([]byte, bs)

	for p := 1; p <= bs; p++ {
		pos := bs - p
		for j := pos + 1; j < bs; j++ {
			forged[j] = intermediate[j] ^ byte(p)
		}

		found := false
		for g := 0; g < 256; g++ {
			forged[pos] = byte(g)
			ok, err := d.query(forged, target)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if p == 1 {
				// A hit on the last byte may be ..02 02 rather than 01; with
				// the second-to-last byte changed only 01 stays valid.
				forged[bs-2] ^= 0xff
				ok, err = d.query(forged, target)
				forged[bs-2] ^= 0xff
				if err != nil {
					return nil, err
				}
				if !ok {
					d.log.Debug("rejected false positive", "guess", g)
					continue
				}
			}
			intermediate[pos] = byte(g) ^ byte(p)
			found = true
			break
		}
		if !found {
			return nil, attack.Fail(engine, attack.KindOracleInconsistency, nil,
				"no byte value produced valid padding at position %d", pos)
		}
	}

	plain := make([]byte, bs)
	for i := range plain {
		plain[i] = intermediate[i] ^ prev[i]
	}
	return plain, nil
}
