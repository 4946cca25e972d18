package footprint

import (
	"fmt"
	"math"
)

// Survey is one raw submission of the lifestyle questionnaire. Categorical
// answers hold the option value exactly as the form submits it.
type Survey struct {
	BodyType            string  `json:"body_type"`
	Sex                 string  `json:"sex"`
	Diet                string  `json:"diet"`
	Shower              string  `json:"shower"`
	HeatingEnergySource string  `json:"heating_energy_source"`
	Transport           string  `json:"transport"`
	VehicleType         string  `json:"vehicle_type"`
	SocialActivity      string  `json:"social_activity"`
	GroceryBill         float64 `json:"grocery_bill"`
	AirTravel           string  `json:"air_travel"`
	VehicleDistance     float64 `json:"vehicle_distance"`
	WasteBagSize        string  `json:"waste_bag_size"`
	WasteBagCount       float64 `json:"waste_bag_count"`
	TVPCHours           float64 `json:"tv_pc_hours"`
	NewClothes          float64 `json:"new_clothes"`
	InternetHours       float64 `json:"internet_hours"`
	EnergyEfficiency    string  `json:"energy_efficiency"`
}

// ValidationError reports a survey answer outside its contract.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid value %q for %s: %s", e.Value, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Field)
}

// categorical returns the column name and the submitted label for every
// categorical question, in form order.
func (s Survey) categorical() []struct{ column, value string } {
	return []struct{ column, value string }{
		{ColBodyType, s.BodyType},
		{ColSex, s.Sex},
		{ColDiet, s.Diet},
		{ColShower, s.Shower},
		{ColHeating, s.HeatingEnergySource},
		{ColTransport, s.Transport},
		{ColVehicleType, s.VehicleType},
		{ColSocial, s.SocialActivity},
		{ColAirTravel, s.AirTravel},
		{ColWasteBagSize, s.WasteBagSize},
		{ColEnergyEfficiency, s.EnergyEfficiency},
	}
}

// Numeric returns the six numeric answers in NumericColumns order.
func (s Survey) Numeric() []float64 {
	return []float64{
		s.GroceryBill,
		s.VehicleDistance,
		s.WasteBagCount,
		s.TVPCHours,
		s.NewClothes,
		s.InternetHours,
	}
}

// Validate checks every categorical answer against its option set and every
// numeric answer for being a finite, non-negative number.
func (s Survey) Validate() error {
	for _, c := range s.categorical() {
		q, ok := QuestionByColumn(c.column)
		if !ok {
			return fmt.Errorf("no question registered for column %q", c.column)
		}
		if !q.Accepts(c.value) {
			return &ValidationError{Field: q.Label, Value: c.value, Reason: "not one of the listed options"}
		}
	}

	for i, v := range s.Numeric() {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return &ValidationError{
				Field:  NumericColumns[i],
				Value:  fmt.Sprintf("%v", v),
				Reason: "must be a non-negative number",
			}
		}
	}

	return nil
}
