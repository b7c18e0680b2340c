package table

import (
	"math"
	"strconv"
)

// Value is a single table cell: either a number or a piece of text.
// The zero Value is the empty text cell.
type Value struct {
	num     float64
	text    string
	numeric bool
}

// Number returns a numeric cell. NaN marks a missing number.
func Number(f float64) Value {
	return Value{num: f, numeric: true}
}

// Text returns a text cell.
func Text(s string) Value {
	return Value{text: s}
}

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool { return v.numeric }

// Float returns the numeric payload and whether v is a number.
func (v Value) Float() (float64, bool) {
	return v.num, v.numeric
}

// IsMissing reports whether v is a NaN number or empty text.
func (v Value) IsMissing() bool {
	if v.numeric {
		return math.IsNaN(v.num)
	}
	return v.text == ""
}

// String formats v for output. Numbers use the shortest representation that
// round-trips; a missing number formats as "".
func (v Value) String() string {
	if !v.numeric {
		return v.text
	}
	if math.IsNaN(v.num) {
		return ""
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

// Equal reports whether two cells hold the same kind and payload.
// Two missing numbers compare equal.
func (v Value) Equal(o Value) bool {
	if v.numeric != o.numeric {
		return false
	}
	if v.numeric {
		if math.IsNaN(v.num) && math.IsNaN(o.num) {
			return true
		}
		return v.num == o.num
	}
	return v.text == o.text
}
