package footprint

import (
	"encoding/json"
	"fmt"
	"os"
)

// LabelEncoder maps a categorical label to the integer code it was given at
// training time. Codes are the positions of the classes.
type LabelEncoder struct {
	codes map[string]int
}

func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("label encoder has no classes")
	}

	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := codes[c]; dup {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		codes[c] = i
	}

	return &LabelEncoder{codes: codes}, nil
}

func (e *LabelEncoder) Transform(label string) (int, bool) {
	code, ok := e.codes[label]
	return code, ok
}

// LabelEncoders holds one encoder per column.
type LabelEncoders map[string]*LabelEncoder

// LoadLabelEncoders reads a JSON object of column name to ordered class list.
func LoadLabelEncoders(path string) (LabelEncoders, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read encoders: %w", err)
	}
	return ParseLabelEncoders(raw)
}

func ParseLabelEncoders(raw []byte) (LabelEncoders, error) {
	var classes map[string][]string
	if err := json.Unmarshal(raw, &classes); err != nil {
		return nil, fmt.Errorf("decode encoders: %w", err)
	}

	encoders := make(LabelEncoders, len(classes))
	for column, cs := range classes {
		enc, err := NewLabelEncoder(cs)
		if err != nil {
			return nil, fmt.Errorf("encoder %q: %w", column, err)
		}
		encoders[column] = enc
	}

	for _, column := range EncodedColumns {
		if _, ok := encoders[column]; !ok {
			return nil, fmt.Errorf("missing label encoder for %q", column)
		}
	}

	return encoders, nil
}
