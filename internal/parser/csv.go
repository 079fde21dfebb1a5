package parser

import (
	"strings"
	"unicode"
)

// Parse tokenizes CSV text into rows of fields.
//
// Lines that are blank after trimming are dropped. A double quote toggles
// quoted mode and is never emitted; commas inside quotes are literal. There
// is no escape for an embedded quote, so `""` yields nothing. Parse never
// fails: a malformed line produces whatever fields the scan collected.
func Parse(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		if trimField(line) == "" {
			continue
		}
		rows = append(rows, splitLine(line))
	}
	return rows
}

func splitLine(line string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, trimField(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, trimField(cur.String()))
}

// trimField strips surrounding whitespace, including a stray byte-order mark
// left on the first header cell by some spreadsheet exports.
func trimField(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
