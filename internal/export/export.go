// Package export writes a filtered transaction set as a downloadable file.
// CSV output is the flat-file format itself; XML is offered for tools that
// prefer it.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"finledger/internal/core"
	"finledger/internal/record"
)

// Format is a supported export encoding.
type Format string

const (
	CSV Format = "csv"
	XML Format = "xml"
)

// ParseFormat accepts "csv" and "xml" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, XML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	if f == XML {
		return "application/xml; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

// Filename builds the download name, e.g. ledger-20250131.csv.
func (f Format) Filename(now time.Time) string {
	return fmt.Sprintf("ledger-%s.%s", now.Format("20060102"), f)
}

// Exporter serialises transactions with a shared codec so both formats
// agree on timestamp and amount rendering.
type Exporter struct {
	Codec record.Codec
}

func New(codec record.Codec) *Exporter {
	return &Exporter{Codec: codec}
}

// Write encodes txs to w unmodified and in the given order.
func (e *Exporter) Write(w io.Writer, f Format, txs []core.Transaction) error {
	switch f {
	case CSV:
		return e.Codec.WriteCSV(w, txs)
	case XML:
		return e.WriteXML(w, txs)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteXML renders
//
//	<transactions count="N">
//	  <transaction date="…" type="…" category="…" amount="…">
//	    <description>…</description>
//	  </transaction>
//	</transactions>
func (e *Exporter) WriteXML(w io.Writer, txs []core.Transaction) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("transactions")
	root.CreateAttr("count", strconv.Itoa(len(txs)))
	for _, tx := range txs {
		row := e.Codec.Encode(tx)
		el := root.CreateElement("transaction")
		el.CreateAttr(record.ColDate, row[0])
		el.CreateAttr(record.ColType, row[4])
		el.CreateAttr(record.ColCategory, row[2])
		el.CreateAttr(record.ColAmount, row[3])
		el.CreateElement(record.ColDescription).SetText(row[1])
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write xml export: %w", err)
	}
	return nil
}
