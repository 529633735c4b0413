// Package weather looks up current conditions and a 7-day forecast from the
// Open-Meteo API (free, no API key) and renders them into the snapshot shape
// the chat UI attaches to messages.
package weather

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"encoding/json"
)

// Snapshot is the weather card payload attached to an assistant message.
type Snapshot struct {
	Location    string        `json:"location"`
	Temperature int           `json:"temperature"`
	Condition   string        `json:"condition"`
	Humidity    int           `json:"humidity"`
	WindSpeed   int           `json:"windSpeed"`
	Icon        string        `json:"icon"`
	Forecast    []ForecastDay `json:"forecast"`
}

// ForecastDay is one entry of the 7-day forecast.
type ForecastDay struct {
	Day       string `json:"day"`
	High      int    `json:"high"`
	Low       int    `json:"low"`
	Condition string `json:"condition"`
	Icon      string `json:"icon"`
}

const (
	defaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	requestTimeout     = 10 * time.Second
	forecastDays       = 7
)

// Client queries Open-Meteo.
type Client struct {
	geocodeURL  string
	forecastURL string
	httpClient  *http.Client
	now         func() time.Time
}

func NewClient() *Client {
	return &Client{
		geocodeURL:  defaultGeocodeURL,
		forecastURL: defaultForecastURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
		now:         time.Now,
	}
}

// NewClientWithURLs creates a client pointing at custom endpoints (for
// testing).
func NewClientWithURLs(geocodeURL, forecastURL string) *Client {
	c := NewClient()
	c.geocodeURL = geocodeURL
	c.forecastURL = forecastURL
	return c
}

// Current resolves city to coordinates and returns its weather snapshot.
// An unknown city yields (nil, nil): not an error, just no card.
func (c *Client) Current(ctx context.Context, city string) (*Snapshot, error) {
	loc, err := c.geocode(ctx, city)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, nil
	}
	return c.forecast(ctx, *loc)
}

type location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone"`
}

func (c *Client) geocode(ctx context.Context, city string) (*location, error) {
	q := url.Values{
		"name":     {city},
		"count":    {"1"},
		"language": {"zh"},
		"format":   {"json"},
	}
	var parsed struct {
		Results []location `json:"results"`
	}
	if err := c.getJSON(ctx, c.geocodeURL+"?"+q.Encode(), &parsed); err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", city, err)
	}
	if len(parsed.Results) == 0 {
		return nil, nil
	}
	return &parsed.Results[0], nil
}

func (c *Client) forecast(ctx context.Context, loc location) (*Snapshot, error) {
	tz := loc.Timezone
	if tz == "" {
		tz = "auto"
	}
	q := url.Values{
		"latitude":      {fmt.Sprintf("%g", loc.Latitude)},
		"longitude":     {fmt.Sprintf("%g", loc.Longitude)},
		"current":       {"temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m"},
		"daily":         {"weather_code,temperature_2m_max,temperature_2m_min"},
		"timezone":      {tz},
		"forecast_days": {fmt.Sprintf("%d", forecastDays)},
	}

	var parsed struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
			Humidity    float64 `json:"relative_humidity_2m"`
			WeatherCode int     `json:"weather_code"`
			WindSpeed   float64 `json:"wind_speed_10m"`
		} `json:"current"`
		Daily struct {
			Time           []string  `json:"time"`
			WeatherCode    []int     `json:"weather_code"`
			TemperatureMax []float64 `json:"temperature_2m_max"`
			TemperatureMin []float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}
	if err := c.getJSON(ctx, c.forecastURL+"?"+q.Encode(), &parsed); err != nil {
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}

	snap := &Snapshot{
		Location:    loc.Name + ", " + loc.Country,
		Temperature: int(math.Round(parsed.Current.Temperature)),
		Condition:   Condition(parsed.Current.WeatherCode),
		Humidity:    int(math.Round(parsed.Current.Humidity)),
		WindSpeed:   int(math.Round(parsed.Current.WindSpeed)),
		Icon:        Icon(parsed.Current.WeatherCode),
	}

	// The daily arrays are parallel; a truncated response must not panic.
	days := forecastDays
	for _, n := range []int{
		len(parsed.Daily.Time),
		len(parsed.Daily.WeatherCode),
		len(parsed.Daily.TemperatureMax),
		len(parsed.Daily.TemperatureMin),
	} {
		if n < days {
			days = n
		}
	}
	for i := 0; i < days; i++ {
		snap.Forecast = append(snap.Forecast, ForecastDay{
			Day:       dayLabel(i, parsed.Daily.Time[i]),
			High:      int(math.Round(parsed.Daily.TemperatureMax[i])),
			Low:       int(math.Round(parsed.Daily.TemperatureMin[i])),
			Condition: Condition(parsed.Daily.WeatherCode[i]),
			Icon:      Icon(parsed.Daily.WeatherCode[i]),
		})
	}

	return snap, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// dayLabel renders the forecast day heading the way the UI expects:
// 今天/明天, then short Chinese weekday names.
func dayLabel(index int, date string) string {
	switch index {
	case 0:
		return "今天"
	case 1:
		return "明天"
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return weekdayShort[t.Weekday()]
}

var weekdayShort = map[time.Weekday]string{
	time.Sunday:    "周日",
	time.Monday:    "周一",
	time.Tuesday:   "周二",
	time.Wednesday: "周三",
	time.Thursday:  "周四",
	time.Friday:    "周五",
	time.Saturday:  "周六",
}
