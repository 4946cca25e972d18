package testutil

import (
	"encoding/json"
	"testing"

	"github.com/monocle-dev/carbontrack/internal/footprint"
	"github.com/stretchr/testify/require"
)

const testEncoders = `{
	"Body Type": ["normal", "obese", "overweight", "underweight"],
	"Sex": ["female", "male"],
	"Diet": ["omnivore", "pescatarian", "vegan", "vegetarian"],
	"Transport": ["private", "public", "walk/bicycle"],
	"Vehicle Type": ["diesel", "electric", "hybrid", "lpg", "petrol"],
	"Heating Energy Source": ["coal", "electricity", "natural gas", "wood"]
}`

const testScaler = `{
	"kind": "standard",
	"mean": [0, 0, 0, 0, 0, 0],
	"scale": [1, 1, 1, 1, 1, 1]
}`

// NewArtifact builds an artifact whose linear model ignores every feature
// and always predicts emission.
func NewArtifact(t *testing.T, emission float64) *footprint.Artifact {
	t.Helper()

	encoders, err := footprint.ParseLabelEncoders([]byte(testEncoders))
	require.NoError(t, err)

	scaler, err := footprint.ParseScaler([]byte(testScaler))
	require.NoError(t, err)

	pipeline, err := footprint.NewPipeline(encoders, scaler)
	require.NoError(t, err)

	model, err := json.Marshal(map[string]any{
		"kind":         footprint.ModelLinear,
		"coefficients": make([]float64, len(footprint.Columns)),
		"intercept":    emission,
	})
	require.NoError(t, err)

	regressor, err := footprint.ParseRegressor(model)
	require.NoError(t, err)

	return &footprint.Artifact{Pipeline: pipeline, Regressor: regressor}
}

// SurveyForm is a complete, valid survey submission keyed by form field.
func SurveyForm() map[string]string {
	return map[string]string{
		"body_type":             "normal",
		"sex":                   "male",
		"diet":                  "omnivore",
		"shower":                "daily",
		"heating_energy_source": "electricity",
		"transport":             "public",
		"vehicle_type":          "petrol",
		"social_activity":       "sometimes",
		"grocery_bill":          "180",
		"air_travel":            "rarely",
		"vehicle_distance":      "400",
		"waste_bag_size":        "medium",
		"waste_bag_count":       "3",
		"tv_pc_hours":           "4",
		"new_clothes":           "10",
		"internet_hours":        "6",
		"energy_efficiency":     "Yes",
	}
}
