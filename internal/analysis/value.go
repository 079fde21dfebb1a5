package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is one request cell: either a raw string or a coerced integer.
type Value struct {
	text    string
	num     int
	numeric bool
}

// StringValue wraps a pass-through cell.
func StringValue(s string) Value { return Value{text: s} }

// IntValue wraps a coerced cell.
func IntValue(n int) Value { return Value{num: n, numeric: true} }

func (v Value) IsNumeric() bool { return v.numeric }
func (v Value) Int() int        { return v.num }

func (v Value) String() string {
	if v.numeric {
		return strconv.Itoa(v.num)
	}
	return v.text
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return []byte(strconv.Itoa(v.num)), nil
	}
	return json.Marshal(v.text)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = StringValue(x)
	case float64:
		if x != math.Trunc(x) || x >= math.MaxInt64 || x < math.MinInt64 {
			return fmt.Errorf("non-integral cell %s", string(b))
		}
		*v = IntValue(int(x))
	case nil:
		*v = StringValue("")
	default:
		return fmt.Errorf("unsupported cell %s", string(b))
	}
	return nil
}

// LeadingInt parses the integer prefix of s after leading whitespace:
// "34.9" is 34, "12abc" is 12. Anything without leading digits, or a
// prefix that overflows int, is 0.
func LeadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\r\n\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
