/*
NAME
  csv.go

DESCRIPTION
  csv.go renders a Histogram as CSV: header "bin,ch 1,ch 2,...", one row
  per bin, one column per channel that has at least one entry. Channel
  indices in the header are 1-based.
*/

package histogram

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the histogram to w as CSV using comma as the field
// separator. Bin values are printed with 4 fractional digits. Only
// channels with at least one recorded entry get a column.
func (h *Histogram) WriteCSV(w io.Writer) error {
	return h.WriteCSVSep(w, ',')
}

// WriteCSVSep is WriteCSV with a configurable field separator.
func (h *Histogram) WriteCSVSep(w io.Writer, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	chans := h.Channels()

	header := make([]string, 0, len(chans)+1)
	header = append(header, "bin")
	for _, ch := range chans {
		header = append(header, fmt.Sprintf("ch %d", ch+1))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := 0; i < h.Bins; i++ {
		row := make([]string, 0, len(chans)+1)
		row = append(row, fmt.Sprintf("%.4f", h.BinCenter(i)))
		for _, ch := range chans {
			row = append(row, fmt.Sprintf("%.4f", h.channels[ch][i]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
