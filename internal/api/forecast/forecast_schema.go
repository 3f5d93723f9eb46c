package forecast

import "google.golang.org/genai"

// CompassPoints are the sixteen wind directions the model may report.
var CompassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WeatherSchema is the structured output contract for the forecast call. Its
// property names match the JSON tags of types.WeatherData.
func WeatherSchema() *genai.Schema {
	hourly := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"time":            {Type: genai.TypeString, Description: "Time in HH:00 format (24-hour)."},
			"windSpeed":       {Type: genai.TypeNumber, Description: "Wind speed in miles per hour."},
			"windDirection":   {Type: genai.TypeString, Description: "Wind direction as a cardinal direction (e.g., N, NE, S, SW).", Format: "enum", Enum: CompassPoints},
			"uvIndex":         {Type: genai.TypeNumber, Description: "UV index, integer from 0 to 11+."},
			"rainProbability": {Type: genai.TypeNumber, Description: "Probability of rain as a percentage from 0 to 100."},
			"temperature":     {Type: genai.TypeNumber, Description: "Temperature in Fahrenheit."},
		},
		Required: []string{"time", "windSpeed", "windDirection", "uvIndex", "rainProbability", "temperature"},
	}

	daily := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"date": {Type: genai.TypeString, Description: "Date in YYYY-MM-DD format."},
			"bikeAdvisory": {
				Type:        genai.TypeString,
				Description: "A brief, friendly advisory for cyclists based on the day's weather, e.g., 'Perfect day for a ride!' or 'High winds expected, be cautious.'",
			},
			"hourlyData": {Type: genai.TypeArray, Items: hourly},
		},
		Required: []string{"date", "hourlyData", "bikeAdvisory"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"location": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"city":    {Type: genai.TypeString},
					"country": {Type: genai.TypeString},
				},
				Required: []string{"city", "country"},
			},
			"dailyForecasts": {Type: genai.TypeArray, Items: daily},
		},
		Required: []string{"location", "dailyForecasts"},
	}
}

func forecastConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   WeatherSchema(),
	}
}
