package vigenere

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// testdataDir returns the path to the testdata directory (works regardless of test cwd).
func testdataDir() string {
	_, f, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(f), "testdata")
}

// loadEnglish reads the English sample text used across the tests.
func loadEnglish(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(testdataDir(), "english.txt"))
	if err != nil {
		t.Fatalf("Failed to read sample text: %v", err)
	}
	return string(data)
}

// testKeys covers key lengths 3 through 10.
var testKeys = []string{
	"FOX", "BLUE", "LEMON", "ORCHID", "JOURNEY", "SQUIRREL", "MOUNTAINS", "BLACKSMITH",
}

func mustEncrypt(t *testing.T, plaintext, key string) string {
	t.Helper()
	ct, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	return ct
}
