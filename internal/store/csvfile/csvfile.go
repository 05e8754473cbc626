// Package csvfile stores the ledger as a single CSV file.
package csvfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"finledger/internal/core"
	"finledger/internal/record"
)

// File is a CSV snapshot at Path. Every Save writes a temporary file next
// to Path and renames it into place.
type File struct {
	Path  string
	Codec record.Codec
}

// New returns a File for path using codec.
func New(path string, codec record.Codec) *File {
	return &File{Path: path, Codec: codec}
}

// Load reads the file. A missing file is an empty ledger.
func (f *File) Load(_ context.Context) ([]core.Transaction, []record.Drop, error) {
	fh, err := os.Open(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger file: %w", err)
	}
	defer fh.Close()

	return f.Codec.ReadCSV(fh)
}

// Save replaces the file with txs. A nil or empty slice leaves a
// header-only file.
func (f *File) Save(_ context.Context, txs []core.Transaction) (err error) {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = f.Codec.WriteCSV(tmp, txs); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}
