package external

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/monocle-dev/carbontrack/internal/logging"
	"github.com/monocle-dev/carbontrack/internal/types"
	"github.com/sirupsen/logrus"
)

const (
	DefaultCity = "Bhimavaram"
	AQIUnknown  = "N/A"
)

type WeatherClient struct {
	cfg    Config
	client *http.Client
}

func NewWeatherClient(cfg Config) *WeatherClient {
	return &WeatherClient{cfg: cfg, client: newHTTPClient(cfg.Timeout)}
}

// Weather returns the OpenWeatherMap payload for city with an added
// "aqi_status" field. An AQI lookup failure only degrades the badge.
func (w *WeatherClient) Weather(ctx context.Context, city string) (map[string]any, error) {
	if city == "" {
		city = DefaultCity
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", w.cfg.WeatherKey)
	query.Set("units", "metric")

	payload := map[string]any{}

	if err := getJSON(ctx, w.client, joinURL(w.cfg.WeatherURL, "/data/2.5/weather")+"?"+query.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}

	payload["aqi_status"] = w.AQIStatus(ctx, city)

	return payload, nil
}

// AQIStatus looks up the city's air quality index and formats it as
// "<aqi> (<bucket>)", or "N/A" when nothing usable comes back.
func (w *WeatherClient) AQIStatus(ctx context.Context, city string) string {
	var feed types.WAQIResponse

	feedURL := joinURL(w.cfg.AQIURL, "/feed/"+url.PathEscape(city)+"/") + "?token=" + url.QueryEscape(w.cfg.AQIKey)

	if err := getJSON(ctx, w.client, feedURL, &feed); err != nil {
		logging.Log.WithError(err).WithField("city", city).Warn("failed to fetch AQI")
		return AQIUnknown
	}

	if feed.Status != "ok" {
		logging.Log.WithFields(logrus.Fields{"city": city, "status": feed.Status}).Warn("AQI feed returned an error")
		return AQIUnknown
	}

	aqi, ok := numericAQI(feed.Data.Aqi)

	if !ok {
		return AQIUnknown
	}

	return fmt.Sprintf("%s (%s)", strconv.FormatFloat(aqi, 'f', -1, 64), AQIBucket(aqi))
}

func numericAQI(raw any) (float64, bool) {
	value, ok := raw.(float64)

	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	return value, true
}

// AQIBucket names the US EPA category of an AQI value.
func AQIBucket(aqi float64) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	case aqi <= 200:
		return "Unhealthy"
	case aqi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}
