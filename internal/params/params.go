// Package params loads named attack parameters (moduli, exponents,
// ciphertexts, signatures) from JSON or CSV files.
//
// A JSON source is either one object or an array of objects:
//
//	{"n": "0x9f3...", "e": 65537, "c1": "1234..."}
//	[{"r": "0x...", "s": "0x...", "z": "0x..."}, ...]
//
// A CSV source has a header row naming the fields. Numbers are kept as text
// until read through Record.Int, so large JSON numbers never pass through a
// float64.
package params

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrMissingField is returned when a record has no value for a field.
var ErrMissingField = errors.New("missing field")

// Record is one set of named values. Field names are case-insensitive.
type Record map[string]string

// Has reports whether the record has a non-empty value for name.
func (r Record) Has(name string) bool {
	return r[strings.ToLower(name)] != ""
}

// String returns the raw value of name.
func (r Record) String(name string) (string, error) {
	v, ok := r[strings.ToLower(name)]
	if !ok || v == "" {
		return "", errors.Wrapf(ErrMissingField, "%q", name)
	}
	return v, nil
}

// Int parses name as a big integer (see ParseBigInt).
func (r Record) Int(name string) (*big.Int, error) {
	v, err := r.String(name)
	if err != nil {
		return nil, err
	}
	z, err := ParseBigInt(v)
	if err != nil {
		return nil, errors.Wrapf(err, "field %q", name)
	}
	return z, nil
}

// Ints parses every named field, stopping at the first error.
func (r Record) Ints(names ...string) ([]*big.Int, error) {
	out := make([]*big.Int, len(names))
	for i, name := range names {
		v, err := r.Int(name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Bytes decodes name as hex, with or without a 0x prefix.
func (r Record) Bytes(name string) ([]byte, error) {
	v, err := r.String(name)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(trimHexPrefix(v))
	if err != nil {
		return nil, errors.Wrapf(err, "field %q", name)
	}
	return b, nil
}

// RecordParser reads records from a source.
type RecordParser interface {
	ParseRecords(r io.Reader) ([]Record, error)
}

// JSONParser reads one object or an array of objects.
type JSONParser struct{}

// ParseRecords implements RecordParser.
func (JSONParser) ParseRecords(r io.Reader) ([]Record, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber() // keep large numbers as json.Number instead of float64

	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON")
	}

	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		items = []interface{}{v}
	default:
		return nil, errors.Errorf("expected a JSON object or array, got %T", raw)
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("item %d is %T, not an object", i, item)
		}
		rec := make(Record, len(obj))
		for k, v := range obj {
			s, err := stringify(v)
			if err != nil {
				return nil, errors.Wrapf(err, "item %d field %q", i, k)
			}
			rec[strings.ToLower(k)] = s
		}
		records = append(records, rec)
	}
	return records, nil
}

func stringify(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return string(x), nil
	case bool:
		return fmt.Sprint(x), nil
	case nil:
		return "", nil
	default:
		return "", errors.Errorf("unsupported value type %T", v)
	}
}

// CSVParser reads a header row followed by one record per line.
type CSVParser struct {
	Comma rune // field separator (default ',')
}

// ParseRecords implements RecordParser.
func (p CSVParser) ParseRecords(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// short rows load; their missing fields surface as ErrMissingField
	reader.FieldsPerRecord = -1
	if p.Comma != 0 {
		reader.Comma = p.Comma
	}

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read line %d", line)
		}
		rec := make(Record, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[name] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadFile picks a parser from the file extension (.json or .csv).
func ReadFile(path string) ([]Record, error) {
	var parser RecordParser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		parser = JSONParser{}
	case ".csv":
		parser = CSVParser{}
	default:
		return nil, errors.Errorf("unsupported parameter file %q (want .json or .csv)", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open parameter file")
	}
	defer file.Close()

	return parser.ParseRecords(file)
}

// ReadOne reads a file that must hold exactly one record.
func ReadOne(path string) (Record, error) {
	records, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, errors.Errorf("%s: expected one record, found %d", path, len(records))
	}
	return records[0], nil
}

// ParseBigInt parses a non-negative or negative integer written as decimal,
// as hex with a 0x prefix, or as bare hex containing a-f digits.
func ParseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(s, "-")
	if body == "" {
		return nil, errors.Errorf("invalid number format: %q", s)
	}

	z := new(big.Int)
	var ok bool
	switch {
	case strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X"):
		_, ok = z.SetString(body[2:], 16)
	case strings.ContainsAny(body, "abcdefABCDEF"):
		_, ok = z.SetString(body, 16)
	default:
		_, ok = z.SetString(body, 10)
	}
	if !ok {
		return nil, errors.Errorf("invalid number format: %q", s)
	}
	if neg {
		z.Neg(z)
	}
	return z, nil
}

func trimHexPrefix(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	return strings.TrimPrefix(s, "0X")
}
