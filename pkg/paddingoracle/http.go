package paddingoracle

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// HTTPOracle queries a remote service that leaks padding validity through
// its status code. Each query posts {"ciphertext": hex(prev || block)} to
// BaseURL + "/oracle"; 200 means valid padding, 400 means a padding error and
// anything else is reported as an error.
type HTTPOracle struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPOracle returns an oracle for the service at baseURL.
func NewHTTPOracle(baseURL string) *HTTPOracle {
	return &HTTPOracle{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (o *HTTPOracle) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}

// ValidPadding implements Oracle.
func (o *HTTPOracle) ValidPadding(ctx context.Context, prev, block []byte) (bool, error) {
	msg := make([]byte, 0, len(prev)+len(block))
	msg = append(msg, prev...)
	msg = append(msg, block...)

	body, err := json.Marshal(map[string]string{"ciphertext": hex.EncodeToString(msg)})
	if err != nil {
		return false, errors.Wrap(err, "encode oracle request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/oracle", bytes.NewReader(body))
	if err != nil {
		return false, errors.Wrap(err, "build oracle request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client().Do(req)
	if err != nil {
		return false, errors.Wrap(err, "oracle request")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusBadRequest:
		return false, nil
	default:
		return false, errors.Errorf("oracle answered with status %d", resp.StatusCode)
	}
}

// Challenge is the ciphertext a lab service hands out for decryption.
type Challenge struct {
	BlockSize  int
	IV         []byte
	Ciphertext []byte
}

// FetchChallenge reads BaseURL + "/challenge".
func (o *HTTPOracle) FetchChallenge(ctx context.Context) (*Challenge, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+"/challenge", nil)
	if err != nil {
		return nil, errors.Wrap(err, "build challenge request")
	}
	resp, err := o.client().Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "challenge request")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("challenge endpoint answered with status %d", resp.StatusCode)
	}

	var raw struct {
		BlockSize  int    `json:"block_size"`
		IV         string `json:"iv"`
		Ciphertext string `json:"ciphertext"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode challenge")
	}
	iv, err := hex.DecodeString(raw.IV)
	if err != nil {
		return nil, errors.Wrap(err, "challenge iv")
	}
	ct, err := hex.DecodeString(raw.Ciphertext)
	if err != nil {
		return nil, errors.Wrap(err, "challenge ciphertext")
	}
	return &Challenge{BlockSize: raw.BlockSize, IV: iv, Ciphertext: ct}, nil
}
