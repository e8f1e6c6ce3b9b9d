package pkcs7

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func TestPad(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		bs     int
		padLen int
	}{
		{"empty", nil, 16, 16},
		{"partial", []byte("YELLOW"), 8, 2},
		{"full block", []byte("ABCDEFGH"), 8, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Pad(tt.data, tt.bs)
			if err != nil {
				t.Fatalf("Pad failed: %v", err)
			}
			if len(out)%tt.bs != 0 {
				t.Errorf("padded length %d is not a multiple of %d", len(out), tt.bs)
			}
			if int(out[len(out)-1]) != tt.padLen {
				t.Errorf("pad byte = %d, want %d", out[len(out)-1], tt.padLen)
			}
			back, err := Unpad(out, tt.bs)
			if err != nil {
				t.Fatalf("Unpad failed: %v", err)
			}
			if !bytes.Equal(back, tt.data) {
				t.Errorf("Unpad = %q, want %q", back, tt.data)
			}
		})
	}
}

func TestPad_DoesNotAliasInput(t *testing.T) {
	data := make([]byte, 3, 16)
	copy(data, "abc")
	if _, err := Pad(data, 16); err != nil {
		t.Fatalf("Pad failed: %v", err)
	}
	if data[:4][3] != 0 {
		t.Error("Pad wrote into the caller's spare capacity")
	}
}

func TestPad_BlockSize(t *testing.T) {
	for _, bs := range []int{0, 256} {
		if _, err := Pad([]byte("x"), bs); !errors.Is(err, ErrInvalidBlockSize) {
			t.Errorf("Pad with block size %d: expected ErrInvalidBlockSize, got %v", bs, err)
		}
	}
}

func TestUnpad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"zero pad byte", []byte{1, 2, 3, 0}},
		{"longer than block", []byte{9, 9, 9, 9, 9, 9, 9, 9, 9}},
		{"inconsistent", []byte{1, 2, 3, 1, 3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unpad(tt.data, 8); !errors.Is(err, ErrInvalidPadding) {
				t.Errorf("expected ErrInvalidPadding, got %v", err)
			}
		})
	}
}
