package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Year is a release year as reported by OMDb. The raw text is kept because
// series carry ranges such as "2010–2015" or "2019–".
type Year string

// Value returns the leading four-digit year, or 0 when there is none
// (for example "N/A").
func (y Year) Value() int {
	s := string(y)
	if len(s) < 4 {
		return 0
	}
	n, err := strconv.Atoi(s[:4])
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// Less orders years numerically. Unknown years sort after known ones, and
// equal values fall back to the raw text.
func (y Year) Less(other Year) bool {
	a, b := y.Value(), other.Value()
	switch {
	case a == 0 && b == 0:
		return y < other
	case a == 0:
		return false
	case b == 0:
		return true
	case a != b:
		return a < b
	default:
		return y < other
	}
}

// String returns the raw text
func (y Year) String() string {
	return string(y)
}

// UnmarshalJSON accepts both "2008" and 2008
func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*y = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = Year(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*y = Year(n.String())
	return nil
}
