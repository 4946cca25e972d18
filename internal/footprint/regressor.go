package footprint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
)

const (
	ModelLinear = "linear"
	ModelRemote = "remote"
)

// Regressor is the opaque trained model: a feature vector in Columns order
// in, one estimated emission out.
type Regressor interface {
	Predict(ctx context.Context, features []float64) (float64, error)
}

type modelFile struct {
	Kind           string    `json:"kind"`
	Features       []string  `json:"features"`
	Coefficients   []float64 `json:"coefficients"`
	Intercept      float64   `json:"intercept"`
	URL            string    `json:"url"`
	TimeoutSeconds int       `json:"timeout_seconds"`
}

func LoadRegressor(path string) (Regressor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return ParseRegressor(raw)
}

func ParseRegressor(raw []byte) (Regressor, error) {
	var m modelFile
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	if m.Features != nil && !slices.Equal(m.Features, Columns) {
		return nil, fmt.Errorf("model feature order %v does not match pipeline order %v", m.Features, Columns)
	}

	switch m.Kind {
	case ModelLinear:
		return NewLinearRegressor(m.Coefficients, m.Intercept)
	case ModelRemote:
		timeout := time.Duration(m.TimeoutSeconds) * time.Second
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		return NewRemoteRegressor(m.URL, &http.Client{Timeout: timeout})
	default:
		return nil, fmt.Errorf("unsupported model kind %q", m.Kind)
	}
}

// LinearRegressor evaluates intercept + coefficients·features.
type LinearRegressor struct {
	coefficients []float64
	intercept    float64
}

func NewLinearRegressor(coefficients []float64, intercept float64) (*LinearRegressor, error) {
	if len(coefficients) != len(Columns) {
		return nil, fmt.Errorf("linear model has %d coefficients, want %d", len(coefficients), len(Columns))
	}
	return &LinearRegressor{coefficients: slices.Clone(coefficients), intercept: intercept}, nil
}

func (r *LinearRegressor) Predict(_ context.Context, features []float64) (float64, error) {
	if len(features) != len(r.coefficients) {
		return 0, fmt.Errorf("linear model expects %d features, got %d", len(r.coefficients), len(features))
	}
	return r.intercept + floats.Dot(r.coefficients, features), nil
}

type remoteRequest struct {
	Instances [][]float64 `json:"instances"`
}

type remoteResponse struct {
	Predictions []float64 `json:"predictions"`
}

// RemoteRegressor delegates to a model-serving endpoint that speaks
// {"instances": [[...]]} -> {"predictions": [x]}.
type RemoteRegressor struct {
	url    string
	client *http.Client
}

func NewRemoteRegressor(url string, client *http.Client) (*RemoteRegressor, error) {
	if url == "" {
		return nil, fmt.Errorf("remote model url is empty")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteRegressor{url: url, client: client}, nil
}

func (r *RemoteRegressor) Predict(ctx context.Context, features []float64) (float64, error) {
	body, err := json.Marshal(remoteRequest{Instances: [][]float64{features}})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal model request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call model server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("model server returned status %d", resp.StatusCode)
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode model response: %w", err)
	}
	if len(out.Predictions) != 1 {
		return 0, fmt.Errorf("model server returned %d predictions, want 1", len(out.Predictions))
	}

	return out.Predictions[0], nil
}
