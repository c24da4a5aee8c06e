package models

import (
	"bytes"
	"encoding/json"
	"strconv"

	"p9e.in/gemstock/utils"
)

// Number is a float64 that accepts either a JSON number or a string.
// Form inputs arrive as strings; anything unparseable becomes 0.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = 0
			return nil
		}
		*n = Number(utils.ParseFloat(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

func (n Number) Float() float64 { return float64(n) }

// String prints n in plain decimal notation, never with an exponent.
func (n Number) String() string { return strconv.FormatFloat(float64(n), 'f', -1, 64) }
