// Package sheets keeps the ledger snapshot in a spreadsheet tab. The tab
// holds a header row followed by one row per transaction, in the same
// column layout as the CSV file.
package sheets

import "context"

// Ports for outbound adapters.
type (
	// ValuesReader reads a cell range as rows of display strings.
	ValuesReader interface {
		Get(ctx context.Context, rng string) ([][]string, error)
	}

	// ValuesWriter replaces cell content. Update writes rows starting at
	// the top-left cell of rng; Clear empties rng.
	ValuesWriter interface {
		Update(ctx context.Context, rng string, rows [][]string) error
		Clear(ctx context.Context, rng string) error
	}

	Values interface {
		ValuesReader
		ValuesWriter
	}
)
