package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// unknownPct is what istanbul writes for a metric with nothing to measure.
const unknownPct = "Unknown"

// Percent is an istanbul percentage. The reporter emits either a number or
// the string "Unknown"; the latter decodes to 0 with Known set to false.
type Percent struct {
	Value float64
	Known bool
}

// Pct returns a known percentage.
func Pct(v float64) Percent {
	return Percent{Value: v, Known: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Percent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Percent{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == unknownPct {
			*p = Percent{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid pct %q", s)
		}
		*p = Pct(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid pct %s: %w", data, err)
	}
	*p = Pct(v)
	return nil
}

// MarshalJSON writes the value back the way istanbul does.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Known {
		return json.Marshal(unknownPct)
	}
	return json.Marshal(p.Value)
}

// MarshalYAML implements the goccy/go-yaml InterfaceMarshaler.
func (p Percent) MarshalYAML() (any, error) {
	if !p.Known {
		return unknownPct, nil
	}
	return p.Value, nil
}

func (p Percent) String() string {
	if !p.Known {
		return unknownPct
	}
	return strconv.FormatFloat(p.Value, 'f', 2, 64)
}
