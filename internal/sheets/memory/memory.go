// Package memory is an in-process spreadsheet used by tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	ports "finledger/internal/sheets"
)

var _ ports.Values = (*Values)(nil)

// Values keeps one grid per tab. Ranges are interpreted by tab name only:
// Get returns the whole tab, Clear empties it and Update replaces it.
type Values struct {
	mu    sync.Mutex
	tabs  map[string][][]string
	calls []string
	// Err, when set, is returned by every call.
	Err error
}

func New() *Values {
	return &Values{tabs: make(map[string][][]string)}
}

func tab(rng string) string {
	name, _, _ := strings.Cut(rng, "!")
	return name
}

func (v *Values) Get(_ context.Context, rng string) ([][]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, "get "+rng)
	if v.Err != nil {
		return nil, v.Err
	}
	return copyRows(v.tabs[tab(rng)]), nil
}

func (v *Values) Update(_ context.Context, rng string, rows [][]string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, "update "+rng)
	if v.Err != nil {
		return v.Err
	}
	if !strings.HasSuffix(rng, "!A1") {
		return errors.New("memory sheets: updates must start at A1")
	}
	v.tabs[tab(rng)] = copyRows(rows)
	return nil
}

func (v *Values) Clear(_ context.Context, rng string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, "clear "+rng)
	if v.Err != nil {
		return v.Err
	}
	delete(v.tabs, tab(rng))
	return nil
}

// Rows returns a copy of a tab's content.
func (v *Values) Rows(sheet string) [][]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return copyRows(v.tabs[sheet])
}

// Seed replaces a tab's content.
func (v *Values) Seed(sheet string, rows [][]string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tabs[sheet] = copyRows(rows)
}

// Calls lists the operations performed so far, e.g. "clear Ledger!A:E".
func (v *Values) Calls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...)
}

func copyRows(in [][]string) [][]string {
	if in == nil {
		return nil
	}
	out := make([][]string, len(in))
	for i, row := range in {
		out[i] = append([]string(nil), row...)
	}
	return out
}
