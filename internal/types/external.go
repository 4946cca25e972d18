package types

// WAQIResponse is the subset of the WAQI feed response the AQI badge needs.
// Aqi stays raw because the feed reports "-" for stations without data.
type WAQIResponse struct {
	Status string `json:"status"`
	Data   struct {
		Aqi any `json:"aqi"`
	} `json:"data"`
}

type NewsDataResponse struct {
	Status  string            `json:"status"`
	Results []NewsDataArticle `json:"results"`
}

type NewsDataArticle struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Link        *string `json:"link"`
	ImageURL    *string `json:"image_url"`
}

type NewsArticle struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Link        string  `json:"link"`
	ImageURL    *string `json:"image_url"`
}
