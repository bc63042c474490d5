package normalize

import (
	"encoding/json"
	"strings"
)

// RawCount is a string-or-number JSON field. It keeps the raw token so the
// caller decides the default when the value is absent or garbage.
type RawCount struct {
	raw string
}

// NewRawCount is mainly for tests and manual construction.
func NewRawCount(raw string) RawCount { return RawCount{raw: raw} }

func (r *RawCount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		r.raw = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var unquoted string
		if err := json.Unmarshal(b, &unquoted); err != nil {
			return err
		}
		r.raw = unquoted
		return nil
	}
	r.raw = s
	return nil
}

func (r RawCount) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.raw)
}

// String returns the raw token as received.
func (r RawCount) String() string { return r.raw }

// Int normalizes the raw token to a signed integer.
func (r RawCount) Int(def int) int { return ParseCount(r.raw, def) }

// Float normalizes the raw token to a float.
func (r RawCount) Float(def float64) float64 { return ParseFloat(r.raw, def) }
