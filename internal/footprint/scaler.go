package footprint

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"
)

// Scaler applies the per-feature transform fitted at training time. It is
// never refit.
type Scaler struct {
	Kind    string    `json:"kind"`
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean,omitempty"`
	Min     []float64 `json:"min,omitempty"`
	Scale   []float64 `json:"scale"`
}

func LoadScaler(path string) (*Scaler, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	return ParseScaler(raw)
}

func ParseScaler(raw []byte) (*Scaler, error) {
	var s Scaler
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scaler) validate() error {
	if s.Columns != nil && !slices.Equal(s.Columns, NumericColumns) {
		return fmt.Errorf("scaler columns %v do not match %v", s.Columns, NumericColumns)
	}

	n := len(NumericColumns)
	if len(s.Scale) != n {
		return fmt.Errorf("scaler has %d scale values, want %d", len(s.Scale), n)
	}

	switch s.Kind {
	case ScalerStandard:
		if len(s.Mean) != n {
			return fmt.Errorf("standard scaler has %d means, want %d", len(s.Mean), n)
		}
		for i, v := range s.Scale {
			if v == 0 {
				return fmt.Errorf("standard scaler has zero scale for %q", NumericColumns[i])
			}
		}
	case ScalerMinMax:
		if len(s.Min) != n {
			return fmt.Errorf("minmax scaler has %d minimums, want %d", len(s.Min), n)
		}
	default:
		return fmt.Errorf("unsupported scaler kind %q", s.Kind)
	}

	return nil
}

// Transform scales values, which must be in NumericColumns order.
func (s *Scaler) Transform(values []float64) ([]float64, error) {
	if len(values) != len(s.Scale) {
		return nil, fmt.Errorf("scaler expects %d values, got %d", len(s.Scale), len(values))
	}

	out := make([]float64, len(values))
	for i, v := range values {
		switch s.Kind {
		case ScalerStandard:
			out[i] = (v - s.Mean[i]) / s.Scale[i]
		case ScalerMinMax:
			out[i] = v*s.Scale[i] + s.Min[i]
		}
	}

	return out, nil
}
