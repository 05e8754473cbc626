// Package record converts transactions to and from the flat tabular form
// shared by the CSV file, the spreadsheet mirror and downloads.
package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

// TimestampLayout is the on-disk timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

// Column names, in header order.
const (
	ColDate        = "date"
	ColDescription = "description"
	ColCategory    = "category"
	ColAmount      = "amount"
	ColType        = "type"
)

// Drop reasons reported for rows excluded on read.
const (
	ReasonBadDate       = "unparseable date"
	ReasonBadAmount     = "non-numeric amount"
	ReasonMissingType   = "missing type"
	ReasonMissingColumn = "missing required column"
)

var readLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	core.DateLayout,
}

// Drop describes one data row excluded while decoding. Row is 1-based and
// counts the header, so it matches the line number in a plain CSV file.
type Drop struct {
	Row    int
	Reason string
}

// Codec encodes and decodes rows. Timestamps without an offset are read in
// Location, and written in it too. A nil Location means time.Local.
type Codec struct {
	Location *time.Location
}

func (c Codec) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Header returns the column names in write order.
func Header() []string {
	return []string{ColDate, ColDescription, ColCategory, ColAmount, ColType}
}

// Encode renders tx as a row matching Header.
func (c Codec) Encode(tx core.Transaction) []string {
	return []string{
		tx.Timestamp.In(c.loc()).Format(TimestampLayout),
		tx.Description,
		tx.Category.String(),
		tx.Amount.String(),
		strings.ToLower(tx.Type.String()),
	}
}

// EncodeTable renders the header followed by one row per transaction.
func (c Codec) EncodeTable(txs []core.Transaction) [][]string {
	rows := make([][]string, 0, len(txs)+1)
	rows = append(rows, Header())
	for _, tx := range txs {
		rows = append(rows, c.Encode(tx))
	}
	return rows
}

// DecodeTable reads a header row followed by data rows. Columns are located
// by header name, case-insensitively; description and category may be absent.
// Rows with an unparseable date, a non-numeric amount or an empty type are
// skipped and reported in drops. An empty table yields no transactions.
func (c Codec) DecodeTable(rows [][]string) (txs []core.Transaction, drops []Drop) {
	if len(rows) == 0 {
		return nil, nil
	}
	idx := columnIndex(rows[0])
	dateCol, okDate := idx[ColDate]
	amountCol, okAmount := idx[ColAmount]
	typeCol, okType := idx[ColType]
	required := okDate && okAmount && okType

	txs = make([]core.Transaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			continue
		}
		if !required {
			drops = append(drops, Drop{Row: rowNum, Reason: ReasonMissingColumn})
			continue
		}

		ts, err := c.parseTimestamp(cell(row, dateCol))
		if err != nil {
			drops = append(drops, Drop{Row: rowNum, Reason: ReasonBadDate})
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(cell(row, amountCol)))
		if err != nil {
			drops = append(drops, Drop{Row: rowNum, Reason: ReasonBadAmount})
			continue
		}
		typ := core.ParseType(cell(row, typeCol))
		if typ == "" {
			drops = append(drops, Drop{Row: rowNum, Reason: ReasonMissingType})
			continue
		}

		tx := core.Transaction{
			Timestamp: ts,
			Amount:    amount,
			Type:      typ,
		}
		if col, ok := idx[ColDescription]; ok {
			tx.Description = cell(row, col)
		}
		if col, ok := idx[ColCategory]; ok {
			tx.Category = core.Category(strings.TrimSpace(cell(row, col)))
		}
		txs = append(txs, tx)
	}
	return txs, drops
}

func (c Codec) parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range readLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, core.ErrInvalidDate)
}

// WriteCSV writes the header and every transaction to w.
func (c Codec) WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(c.EncodeTable(txs)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ReadCSV decodes a CSV stream. Only read errors are returned; malformed
// rows are reported through drops.
func (c Codec) ReadCSV(r io.Reader) ([]core.Transaction, []Drop, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	txs, drops := c.DecodeTable(rows)
	return txs, drops, nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
