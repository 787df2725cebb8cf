package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexNumber is a numeric field that older clients send either as a JSON
// number or as a quoted numeric string ("25" vs 25). It always marshals back
// as a number.
type FlexNumber float64

func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = FlexNumber(v)
	return nil
}

func (f FlexNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

// Float64 returns the value and whether it is a usable number (non-NaN,
// non-Inf).
func (f *FlexNumber) Float64() (float64, bool) {
	if f == nil {
		return 0, false
	}
	v := float64(*f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Int truncates toward zero, matching how the original clients parsed action
// values.
func (f *FlexNumber) Int() (int, bool) {
	v, ok := f.Float64()
	if !ok {
		return 0, false
	}
	return int(v), true
}

// Flex wraps a float64 as a *FlexNumber, mostly for tests and seeds.
func Flex(v float64) *FlexNumber {
	f := FlexNumber(v)
	return &f
}
