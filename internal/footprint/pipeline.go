// Package footprint turns a lifestyle survey into the feature vector of the
// trained carbon-emission model and runs the model on it.
//
// The encoders, scaler and regressor are loaded once and never mutated, so a
// single Artifact is safe to share between concurrent requests.
package footprint

import (
	"context"
	"fmt"
	"slices"
)

// encodableColumns are the columns a label encoder may apply to.
var encodableColumns = append(slices.Clone(EncodedColumns), ColShower)

// Pipeline applies ordinal remapping, label encoding and numeric scaling in
// the order the model was trained with.
type Pipeline struct {
	encoders LabelEncoders
	scaler   *Scaler
}

func NewPipeline(encoders LabelEncoders, scaler *Scaler) (*Pipeline, error) {
	for _, column := range EncodedColumns {
		if _, ok := encoders[column]; !ok {
			return nil, fmt.Errorf("missing label encoder for %q", column)
		}
	}
	if scaler == nil {
		return nil, fmt.Errorf("scaler is nil")
	}
	if err := scaler.validate(); err != nil {
		return nil, err
	}
	return &Pipeline{encoders: encoders, scaler: scaler}, nil
}

// Transform validates s and returns its feature vector in Columns order.
// The result depends only on s and the loaded artifact.
func (p *Pipeline) Transform(s Survey) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	row := make(map[string]float64, len(Columns))

	for _, c := range s.categorical() {
		if score, ok := OrdinalScore(c.column, c.value); ok {
			row[c.column] = score
		}
	}

	// The shower column is ordinal unless the artifact ships an encoder for
	// its original label, in which case the encoder code wins.
	for _, column := range encodableColumns {
		enc, ok := p.encoders[column]
		if !ok {
			continue
		}
		label := s.label(column)
		code, ok := enc.Transform(label)
		if !ok {
			q, _ := QuestionByColumn(column)
			return nil, &ValidationError{Field: q.Label, Value: label, Reason: "unseen by the trained encoder"}
		}
		row[column] = float64(code)
	}

	scaled, err := p.scaler.Transform(s.Numeric())
	if err != nil {
		return nil, err
	}
	for i, column := range NumericColumns {
		row[column] = scaled[i]
	}

	vector := make([]float64, len(Columns))
	for i, column := range Columns {
		v, ok := row[column]
		if !ok {
			return nil, fmt.Errorf("no value produced for column %q", column)
		}
		vector[i] = v
	}

	return vector, nil
}

func (s Survey) label(column string) string {
	for _, c := range s.categorical() {
		if c.column == column {
			return c.value
		}
	}
	return ""
}

// Artifact bundles the pipeline with the regressor it feeds.
type Artifact struct {
	Pipeline  *Pipeline
	Regressor Regressor
}

// Paths locates the three artifact files.
type Paths struct {
	Model    string
	Encoders string
	Scaler   string
}

// LoadArtifact reads and cross-checks the model, encoders and scaler. A
// failure here means the process must not serve traffic.
func LoadArtifact(paths Paths) (*Artifact, error) {
	encoders, err := LoadLabelEncoders(paths.Encoders)
	if err != nil {
		return nil, err
	}

	scaler, err := LoadScaler(paths.Scaler)
	if err != nil {
		return nil, err
	}

	regressor, err := LoadRegressor(paths.Model)
	if err != nil {
		return nil, err
	}

	pipeline, err := NewPipeline(encoders, scaler)
	if err != nil {
		return nil, err
	}

	return &Artifact{Pipeline: pipeline, Regressor: regressor}, nil
}

// Predict runs the full transform and returns the estimated emission.
func (a *Artifact) Predict(ctx context.Context, s Survey) (float64, error) {
	features, err := a.Pipeline.Transform(s)
	if err != nil {
		return 0, err
	}

	emission, err := a.Regressor.Predict(ctx, features)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}

	return emission, nil
}
