package analysis

const (
	// ReservedColumn holds ground-truth labels and is never sent for scoring.
	ReservedColumn = "Risk"
	// MaxRequestRows caps the records placed in one scoring request.
	MaxRequestRows = 10
)

var numericColumns = map[string]struct{}{
	"LoanDuration":             {},
	"LoanAmount":               {},
	"InstallmentPercent":       {},
	"CurrentResidenceDuration": {},
	"Age":                      {},
	"ExistingCreditsCount":     {},
	"Dependents":               {},
}

// IsNumericColumn reports whether values of the named column are sent as integers.
func IsNumericColumn(name string) bool {
	_, ok := numericColumns[name]
	return ok
}

// Envelope is the feature block of a scoring request.
type Envelope struct {
	Fields []string  `json:"fields"`
	Values [][]Value `json:"values"`
}

// Rows returns the number of value rows.
func (e *Envelope) Rows() int { return len(e.Values) }

// Transform builds the request envelope: at most MaxRequestRows records,
// every ReservedColumn dropped, numeric columns coerced with LeadingInt and
// everything else passed through as text. It does no I/O and returns the
// same envelope for the same input.
func Transform(header []string, records []Record) *Envelope {
	if len(records) > MaxRequestRows {
		records = records[:MaxRequestRows]
	}
	fields := make([]string, 0, len(header))
	for _, h := range header {
		if h != ReservedColumn {
			fields = append(fields, h)
		}
	}
	values := make([][]Value, 0, len(records))
	for _, rec := range records {
		row := make([]Value, len(fields))
		for j, f := range fields {
			raw := rec.Get(f)
			if IsNumericColumn(f) {
				row[j] = IntValue(LeadingInt(raw))
			} else {
				row[j] = StringValue(raw)
			}
		}
		values = append(values, row)
	}
	return &Envelope{Fields: fields, Values: values}
}

// TransformTable is Transform over a built table.
func TransformTable(t *Table) *Envelope {
	return Transform(t.Header, t.Records)
}
