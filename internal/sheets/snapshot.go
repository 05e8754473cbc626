package sheets

import (
	"context"
	"fmt"

	"finledger/internal/core"
	"finledger/internal/record"
)

// DefaultSheetName is the tab used when none is configured.
const DefaultSheetName = "Ledger"

// Snapshot stores the full ledger in one tab.
type Snapshot struct {
	values Values
	sheet  string
	codec  record.Codec
}

// NewSnapshot returns a snapshot writing to the tab named sheet.
func NewSnapshot(values Values, sheet string, codec record.Codec) *Snapshot {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	return &Snapshot{values: values, sheet: sheet, codec: codec}
}

// Sheet returns the tab name.
func (s *Snapshot) Sheet() string {
	return s.sheet
}

func (s *Snapshot) dataRange() string {
	return fmt.Sprintf("%s!A:E", s.sheet)
}

// Load reads the tab. An empty tab is an empty ledger.
func (s *Snapshot) Load(ctx context.Context) ([]core.Transaction, []record.Drop, error) {
	rows, err := s.values.Get(ctx, s.dataRange())
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", s.sheet, err)
	}
	txs, drops := s.codec.DecodeTable(rows)
	return txs, drops, nil
}

// Save clears the tab and writes the header plus every transaction.
func (s *Snapshot) Save(ctx context.Context, txs []core.Transaction) error {
	if err := s.values.Clear(ctx, s.dataRange()); err != nil {
		return fmt.Errorf("clear sheet %s: %w", s.sheet, err)
	}
	if err := s.values.Update(ctx, fmt.Sprintf("%s!A1", s.sheet), s.codec.EncodeTable(txs)); err != nil {
		return fmt.Errorf("write sheet %s: %w", s.sheet, err)
	}
	return nil
}
