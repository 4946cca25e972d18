package footprint

// Column names as the artifact was trained with them.
const (
	ColBodyType         = "Body Type"
	ColSex              = "Sex"
	ColDiet             = "Diet"
	ColShower           = "How Often Shower"
	ColHeating          = "Heating Energy Source"
	ColTransport        = "Transport"
	ColVehicleType      = "Vehicle Type"
	ColSocial           = "Social Activity"
	ColGroceryBill      = "Monthly Grocery Bill"
	ColAirTravel        = "Frequency of Traveling by Air"
	ColVehicleDistance  = "Vehicle Monthly Distance Km"
	ColWasteBagSize     = "Waste Bag Size"
	ColWasteBagCount    = "Waste Bag Weekly Count"
	ColTVPCHours        = "How Long TV PC Daily Hour"
	ColNewClothes       = "How Many New Clothes Monthly"
	ColInternetHours    = "How Long Internet Daily Hour"
	ColEnergyEfficiency = "Energy efficiency"
)

// Columns is the exact feature order the regressor expects. Reordering it
// silently changes every prediction.
var Columns = []string{
	ColBodyType,
	ColSex,
	ColDiet,
	ColShower,
	ColHeating,
	ColTransport,
	ColVehicleType,
	ColSocial,
	ColGroceryBill,
	ColAirTravel,
	ColVehicleDistance,
	ColWasteBagSize,
	ColWasteBagCount,
	ColTVPCHours,
	ColNewClothes,
	ColInternetHours,
	ColEnergyEfficiency,
}

// NumericColumns are scaled by the trained scaler, in scaler order.
var NumericColumns = []string{
	ColGroceryBill,
	ColVehicleDistance,
	ColWasteBagCount,
	ColTVPCHours,
	ColNewClothes,
	ColInternetHours,
}

// EncodedColumns must have a label encoder in every artifact.
var EncodedColumns = []string{
	ColBodyType,
	ColSex,
	ColDiet,
	ColTransport,
	ColVehicleType,
	ColHeating,
}

// ordinalScores replaces a label with a hand-authored severity score.
var ordinalScores = map[string]map[string]float64{
	ColShower: {
		"daily":           5,
		"more frequently": 15,
		"less frequently": 2,
		"twice a day":     10,
	},
	ColSocial: {
		"often":     3,
		"sometimes": 2,
		"rarely":    1,
		"never":     0,
	},
	ColAirTravel: {
		"very frequently": 4,
		"frequently":      3,
		"rarely":          2,
		"never":           1,
	},
	ColWasteBagSize: {
		"small":       1,
		"medium":      2,
		"large":       3,
		"extra large": 4,
	},
	ColEnergyEfficiency: {
		"No":        0,
		"Sometimes": 1,
		"Yes":       2,
	},
}

// OrdinalScore returns the severity score for label in column.
func OrdinalScore(column, label string) (float64, bool) {
	scores, ok := ordinalScores[column]
	if !ok {
		return 0, false
	}
	v, ok := scores[label]
	return v, ok
}

type Option struct {
	Value string
	Label string
}

// Question describes one categorical form field.
type Question struct {
	Key     string
	Column  string
	Label   string
	Options []Option
}

func (q Question) Accepts(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Questions lists the categorical questions in form order.
var Questions = []Question{
	{Key: "body_type", Column: ColBodyType, Label: "Body Type", Options: []Option{
		{"underweight", "Underweight"}, {"obese", "Obese"}, {"normal", "Normal"},
	}},
	{Key: "sex", Column: ColSex, Label: "Sex", Options: []Option{
		{"female", "Female"}, {"male", "Male"},
	}},
	{Key: "diet", Column: ColDiet, Label: "Diet", Options: []Option{
		{"pescatarian", "Pescatarian"}, {"vegan", "Vegan"}, {"omnivore", "Omnivore"}, {"vegetarian", "Vegetarian"},
	}},
	{Key: "shower", Column: ColShower, Label: "How Often Shower", Options: []Option{
		{"daily", "Daily"}, {"twice a day", "Twice a day"}, {"less frequently", "Less frequently"}, {"more frequently", "More frequently"},
	}},
	{Key: "heating_energy_source", Column: ColHeating, Label: "Heating Energy Source", Options: []Option{
		{"electricity", "Electricity"}, {"coal", "Coal"}, {"wood", "Wood"}, {"natural gas", "Natural gas"},
	}},
	{Key: "transport", Column: ColTransport, Label: "Transport", Options: []Option{
		{"walk/bicycle", "Walk/Bicycle"}, {"public", "Public"}, {"private", "Private"},
	}},
	{Key: "vehicle_type", Column: ColVehicleType, Label: "Vehicle Type", Options: []Option{
		{"lpg", "LPG"}, {"electric", "Electric"}, {"petrol", "Petrol"}, {"hybrid", "Hybrid"}, {"diesel", "Diesel"},
	}},
	{Key: "social_activity", Column: ColSocial, Label: "Social Activity", Options: []Option{
		{"often", "Often"}, {"sometimes", "Sometimes"}, {"rarely", "Rarely"}, {"never", "Never"},
	}},
	{Key: "air_travel", Column: ColAirTravel, Label: "Frequency of Traveling by Air", Options: []Option{
		{"very frequently", "Very Frequently"}, {"frequently", "Frequently"}, {"rarely", "Rarely"}, {"never", "Never"},
	}},
	{Key: "waste_bag_size", Column: ColWasteBagSize, Label: "Waste Bag Size", Options: []Option{
		{"small", "Small"}, {"medium", "Medium"}, {"large", "Large"}, {"extra large", "Extra Large"},
	}},
	{Key: "energy_efficiency", Column: ColEnergyEfficiency, Label: "Energy Efficiency", Options: []Option{
		{"No", "No"}, {"Sometimes", "Sometimes"}, {"Yes", "Yes"},
	}},
}

// QuestionByColumn looks up the categorical question feeding column.
func QuestionByColumn(column string) (Question, bool) {
	for _, q := range Questions {
		if q.Column == column {
			return q, true
		}
	}
	return Question{}, false
}
