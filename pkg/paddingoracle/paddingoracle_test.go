package paddingoracle

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/mahdiidarabi/cryptanalysis/internal/lab"
	"github.com/mahdiidarabi/cryptanalysis/pkg/attack"
	"github.com/mahdiidarabi/cryptanalysis/pkg/pkcs7"
)

func attackTarget(t *testing.T, target *lab.Target, msg []byte) *Result {
	t.Helper()
	iv, ct, err := target.Encrypt(msg)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	blocks, err := SplitBlocks(iv, ct, target.BlockSize())
	if err != nil {
		t.Fatalf("SplitBlocks failed: %v", err)
	}
	res, err := Decrypt(context.Background(), blocks, OracleFunc(target.ValidPadding), Config{})
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(res.Plaintext, msg) {
		t.Errorf("Recovered %q, want %q", res.Plaintext, msg)
	}
	bs := target.BlockSize()
	if limit := bs * 257 * (len(blocks) - 1); res.Queries > limit {
		t.Errorf("%d queries exceeds the bound %d", res.Queries, limit)
	}
	return res
}

func TestDecrypt_AES(t *testing.T) {
	messages := []string{
		"one block",                                // 1 block
		"exactly sixteen!",                         // 2 blocks, the second all padding
		"three blocks of AES-CBC ciphertext here.", // 3 blocks
	}
	for _, msg := range messages {
		t.Run(fmt.Sprintf("%d bytes", len(msg)), func(t *testing.T) {
			target, err := lab.RandomTarget("aes")
			if err != nil {
				t.Fatalf("Failed to create target: %v", err)
			}
			attackTarget(t, target, []byte(msg))
		})
	}
}

func TestDecrypt_ManyKeys(t *testing.T) {
	// Random keys regularly hit the ..02 02 ambiguity on the last byte.
	for i := 0; i < 20; i++ {
		target, err := lab.RandomTarget("aes")
		if err != nil {
			t.Fatalf("Failed to create target: %v", err)
		}
		attackTarget(t, target, []byte("short"))
	}
}

func TestDecrypt_Blowfish(t *testing.T) {
	target, err := lab.RandomTarget("blowfish")
	if err != nil {
		t.Fatalf("Failed to create target: %v", err)
	}
	res := attackTarget(t, target, []byte("eight-byte blocks too"))
	if len(res.Padded)%8 != 0 {
		t.Errorf("padded length %d is not a multiple of 8", len(res.Padded))
	}
}

func TestDecrypt_KeepPadding(t *testing.T) {
	target, _ := lab.NewTarget("aes", []byte("YELLOW SUBMARINE"))
	iv, ct, _ := target.Encrypt([]byte("hello"))
	blocks, _ := SplitBlocks(iv, ct, 16)

	res, err := Decrypt(context.Background(), blocks, OracleFunc(target.ValidPadding), Config{KeepPadding: true})
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	want, _ := pkcs7.Pad([]byte("hello"), 16)
	if !bytes.Equal(res.Plaintext, want) {
		t.Errorf("Plaintext = %x, want %x", res.Plaintext, want)
	}
}

// identityOracle models a block cipher whose decryption is the identity, so
// the intermediate state of a ciphertext block is the block itself.
func identityOracle(prev, block []byte) bool {
	plain := make([]byte, len(block))
	for i := range block {
		plain[i] = block[i] ^ prev[i]
	}
	return pkcs7.Valid(plain, len(block))
}

func TestDecrypt_LastByteTieBreak(t *testing.T) {
	// Intermediate ends in 02 03: with a zero forged block the guess 0x01
	// decrypts to ..02 02 (valid) before 0x02 decrypts to ..02 01.
	target := []byte{0x10, 0x20, 0x30, 0x40, 0x50, 0x60, 0x02, 0x03}
	prev := []byte("ABCDEFGH")

	calls := 0
	oracle := OracleFunc(func(p, b []byte) bool {
		calls++
		return identityOracle(p, b)
	})

	res, err := Decrypt(context.Background(), [][]byte{prev, target}, oracle, Config{KeepPadding: true})
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}

	want := make([]byte, 8)
	for i := range want {
		want[i] = target[i] ^ prev[i]
	}
	if !bytes.Equal(res.Padded, want) {
		t.Errorf("Recovered %x, want %x", res.Padded, want)
	}
	if calls != res.Queries {
		t.Errorf("Queries = %d, oracle saw %d calls", res.Queries, calls)
	}
}

func TestDecrypt_OracleNeverValid(t *testing.T) {
	blocks := [][]byte{make([]byte, 16), make([]byte, 16)}
	never := OracleFunc(func(_, _ []byte) bool { return false })

	res, err := Decrypt(context.Background(), blocks, never, Config{})
	if !attack.IsKind(err, attack.KindOracleInconsistency) {
		t.Fatalf("Expected oracle inconsistency, got %v (result %v)", err, res)
	}
}

type failingOracle struct{ err error }

func (o failingOracle) ValidPadding(context.Context, []byte, []byte) (bool, error) {
	return false, o.err
}

func TestDecrypt_OracleError(t *testing.T) {
	sentinel := errors.New("connection reset")
	blocks := [][]byte{make([]byte, 8), make([]byte, 8)}

	_, err := Decrypt(context.Background(), blocks, failingOracle{sentinel}, Config{})
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected oracle error in chain, got %v", err)
	}
}

func TestDecrypt_DegenerateResult(t *testing.T) {
	// An oracle that accepts everything makes every guess 0x00 win, which
	// yields plaintext ending in 0x41^0x01 = 0x40, not valid padding.
	always := OracleFunc(func(_, _ []byte) bool { return true })
	blocks := [][]byte{bytes.Repeat([]byte{0x41}, 16), make([]byte, 16)}

	_, err := Decrypt(context.Background(), blocks, always, Config{})
	if !attack.IsKind(err, attack.KindDegenerateResult) {
		t.Errorf("Expected degenerate result, got %v", err)
	}
}

func TestDecrypt_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blocks := [][]byte{make([]byte, 16), make([]byte, 16)}
	_, err := Decrypt(ctx, blocks, OracleFunc(identityOracle), Config{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got %v", err)
	}
}

func TestDecrypt_Preconditions(t *testing.T) {
	ok := OracleFunc(identityOracle)
	tests := []struct {
		name   string
		blocks [][]byte
		oracle Oracle
		cfg    Config
	}{
		{"single block", [][]byte{make([]byte, 16)}, ok, Config{}},
		{"ragged blocks", [][]byte{make([]byte, 16), make([]byte, 8)}, ok, Config{}},
		{"block size mismatch", [][]byte{make([]byte, 8), make([]byte, 8)}, ok, Config{BlockSize: 16}},
		{"one-byte blocks", [][]byte{{1}, {2}}, ok, Config{}},
		{"nil oracle", [][]byte{make([]byte, 16), make([]byte, 16)}, nil, Config{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(context.Background(), tt.blocks, tt.oracle, tt.cfg)
			if !attack.IsKind(err, attack.KindPrecondition) {
				t.Errorf("Expected precondition failure, got %v", err)
			}
		})
	}
}

func TestSplitBlocks(t *testing.T) {
	iv := make([]byte, 8)
	ct := bytes.Repeat([]byte{7}, 24)

	blocks, err := SplitBlocks(iv, ct, 8)
	if err != nil {
		t.Fatalf("SplitBlocks failed: %v", err)
	}
	if len(blocks) != 4 {
		t.Fatalf("Expected 4 blocks, got %d", len(blocks))
	}
	ct[0] = 9
	if blocks[1][0] != 7 {
		t.Error("blocks must not alias the ciphertext")
	}

	if _, err := SplitBlocks(iv, ct[:20], 8); !attack.IsKind(err, attack.KindPrecondition) {
		t.Errorf("Expected precondition failure for a ragged ciphertext, got %v", err)
	}
	if _, err := SplitBlocks(iv[:4], ct, 8); !attack.IsKind(err, attack.KindPrecondition) {
		t.Errorf("Expected precondition failure for a short iv, got %v", err)
	}
}

func TestHTTPOracle_AgainstLab(t *testing.T) {
	gin.SetMode(gin.TestMode)

	target, err := lab.RandomTarget("aes")
	if err != nil {
		t.Fatalf("Failed to create target: %v", err)
	}
	secret := []byte("remote padding oracles leak too")
	srv, err := lab.NewServer(target, "aes", secret, nil)
	if err != nil {
		t.Fatalf("Failed to create lab server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	oracle := NewHTTPOracle(ts.URL + "/")
	ctx := context.Background()

	ch, err := oracle.FetchChallenge(ctx)
	if err != nil {
		t.Fatalf("FetchChallenge failed: %v", err)
	}
	blocks, err := SplitBlocks(ch.IV, ch.Ciphertext, ch.BlockSize)
	if err != nil {
		t.Fatalf("SplitBlocks failed: %v", err)
	}

	res, err := Decrypt(ctx, blocks, oracle, Config{})
	if err != nil {
		t.Fatalf("Decrypt over HTTP failed: %v", err)
	}
	if !bytes.Equal(res.Plaintext, secret) {
		t.Errorf("Recovered %q, want %q", res.Plaintext, secret)
	}
	if int64(res.Queries) != srv.Queries() {
		t.Errorf("engine counted %d queries, server answered %d", res.Queries, srv.Queries())
	}
}

func TestHTTPOracle_UnexpectedStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/oracle", func(c *gin.Context) { c.Status(500) })
	ts := httptest.NewServer(router)
	defer ts.Close()

	_, err := Decrypt(context.Background(),
		[][]byte{make([]byte, 16), make([]byte, 16)}, NewHTTPOracle(ts.URL), Config{})
	if err == nil {
		t.Fatal("Expected error for status 500")
	}
	if !attack.IsKind(err, attack.KindOracleInconsistency) {
		t.Errorf("Expected oracle failure, got %v", err)
	}
}
