package analysis

import "errors"

// ErrEmptyTable means the parsed input had no header row.
var ErrEmptyTable = errors.New("table is empty")

// Record is one data row viewed through the table header.
type Record struct {
	header []string
	cells  []string
}

// Get returns the value of the first column called name. Unknown columns
// and cells missing from a short row read as "".
func (r Record) Get(name string) string {
	for i, h := range r.header {
		if h == name {
			return r.cells[i]
		}
	}
	return ""
}

// Values returns the row's cells in header order.
func (r Record) Values() []string {
	out := make([]string, len(r.cells))
	copy(out, r.cells)
	return out
}

// Table is a header plus its data records.
type Table struct {
	Header  []string
	Records []Record
}

// Build turns parsed rows into a Table using row 0 as the header.
// Rows with fewer fields than the header are padded with "";
// fields past the header width are ignored.
func Build(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}
	header := make([]string, len(rows[0]))
	copy(header, rows[0])

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(header))
		copy(cells, row)
		records = append(records, Record{header: header, cells: cells})
	}
	return &Table{Header: header, Records: records}, nil
}

// HasColumn reports whether any header cell equals name.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}
