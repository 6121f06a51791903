// Package countries holds the ISO 3166-1 alpha-3 registry used to validate
// and canonicalise partner countries.
package countries

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"sort"
	"sync"
)

//go:embed iso3166.csv
var registry []byte

// Reference is a read-only alpha-3 code to canonical name lookup.
type Reference struct {
	names map[string]string
}

var (
	defaultRef  *Reference
	defaultErr  error
	defaultOnce sync.Once
)

// Default returns the reference built from the embedded ISO 3166-1 registry.
// It is parsed once per process.
func Default() (*Reference, error) {
	defaultOnce.Do(func() {
		defaultRef, defaultErr = Parse(registry)
	})
	return defaultRef, defaultErr
}

// Parse builds a Reference from "alpha_3,name" CSV content with a header row.
func Parse(data []byte) (*Reference, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read country registry: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("country registry is empty")
	}
	names := make(map[string]string, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != 2 || len(rec[0]) != 3 {
			return nil, fmt.Errorf("invalid country registry entry: %v", rec)
		}
		names[rec[0]] = rec[1]
	}
	return &Reference{names: names}, nil
}

// New builds a Reference from an explicit code to name map.
func New(names map[string]string) *Reference {
	cp := make(map[string]string, len(names))
	for k, v := range names {
		cp[k] = v
	}
	return &Reference{names: cp}
}

// Lookup returns the canonical name for code.
func (r *Reference) Lookup(code string) (string, bool) {
	name, ok := r.names[code]
	return name, ok
}

func (r *Reference) Valid(code string) bool {
	_, ok := r.names[code]
	return ok
}

func (r *Reference) Len() int {
	return len(r.names)
}

// Codes returns every alpha-3 code in ascending order.
func (r *Reference) Codes() []string {
	codes := make([]string, 0, len(r.names))
	for k := range r.names {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}
