package types

import (
	"math"
	"time"
)

// Coordinates is a position in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ForecastInput selects the place a forecast is requested for. Exactly one of
// coordinates or a free-text location is set; use the constructors.
type ForecastInput struct {
	coords   *Coordinates
	location string
}

func NewLocationInput(location string) ForecastInput {
	return ForecastInput{location: location}
}

func NewCoordinatesInput(lat, lon float64) ForecastInput {
	return ForecastInput{coords: &Coordinates{Lat: lat, Lon: lon}}
}

// Coordinates reports the coordinate variant.
func (f ForecastInput) Coordinates() (Coordinates, bool) {
	if f.coords == nil {
		return Coordinates{}, false
	}
	return *f.coords, true
}

// Location reports the free-text variant.
func (f ForecastInput) Location() (string, bool) {
	if f.coords != nil {
		return "", false
	}
	return f.location, true
}

type ForecastLocation struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// WeatherData is the five day forecast returned by the model.
type WeatherData struct {
	Location       ForecastLocation `json:"location"`
	DailyForecasts []DailyForecast  `json:"dailyForecasts"`
}

// DisplayName is the "City, Country" label stored as the saved location for
// geolocated forecasts.
func (w WeatherData) DisplayName() string {
	return w.Location.City + ", " + w.Location.Country
}

type DailyForecast struct {
	Date         string       `json:"date"` // YYYY-MM-DD
	BikeAdvisory string       `json:"bikeAdvisory"`
	HourlyData   []HourlyData `json:"hourlyData"`
}

type HourlyData struct {
	Time            string  `json:"time"`            // HH:00
	WindSpeed       float64 `json:"windSpeed"`       // mph
	WindDirection   string  `json:"windDirection"`   // N, NNE, NE ... NNW
	UVIndex         float64 `json:"uvIndex"`         // 0-11+
	RainProbability float64 `json:"rainProbability"` // 0-100
	Temperature     float64 `json:"temperature"`     // Fahrenheit
}

// DaySummary is the collapsed view of one forecast day.
type DaySummary struct {
	Weekday    string
	ShortDate  string
	AvgTempF   float64
	AvgWindMph float64
	MaxUV      float64
	MaxRain    float64
}

// Summarize aggregates the hourly samples of a day. A day with no samples
// summarizes to zeros. Unparseable dates keep the raw date string.
func (d DailyForecast) Summarize() DaySummary {
	s := DaySummary{ShortDate: d.Date}
	if day, err := time.Parse(time.DateOnly, d.Date); err == nil {
		s.Weekday = day.Weekday().String()
		s.ShortDate = day.Format("Jan 2")
	}
	if len(d.HourlyData) == 0 {
		return s
	}

	var tempSum, windSum float64
	s.MaxUV = math.Inf(-1)
	s.MaxRain = math.Inf(-1)
	for _, h := range d.HourlyData {
		tempSum += h.Temperature
		windSum += h.WindSpeed
		s.MaxUV = math.Max(s.MaxUV, h.UVIndex)
		s.MaxRain = math.Max(s.MaxRain, h.RainProbability)
	}
	n := float64(len(d.HourlyData))
	s.AvgTempF = tempSum / n
	s.AvgWindMph = windSum / n
	return s
}
