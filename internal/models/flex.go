package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexInt decodes an integer that the upstream may send as a JSON number,
// a quoted string or null. Anything unparseable decodes to 0.
type FlexInt int

// UnmarshalJSON never returns an error.
func (f *FlexInt) UnmarshalJSON(b []byte) error {
	*f = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		b = []byte(s)
	}

	if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
		*f = FlexInt(n)
		return nil
	}
	if v, err := strconv.ParseFloat(string(b), 64); err == nil {
		*f = FlexInt(int64(v))
	}
	return nil
}

// Int returns the value as a plain int
func (f FlexInt) Int() int {
	return int(f)
}

// FlexFloat is the float counterpart of FlexInt.
type FlexFloat float64

// UnmarshalJSON never returns an error.
func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	*f = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		b = []byte(s)
	}

	if v, err := strconv.ParseFloat(string(b), 64); err == nil {
		*f = FlexFloat(v)
	}
	return nil
}

// Float64 returns the value as a plain float64
func (f FlexFloat) Float64() float64 {
	return float64(f)
}

// DefaultName is substituted for missing names and avatars.
const DefaultName = "NA"

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
