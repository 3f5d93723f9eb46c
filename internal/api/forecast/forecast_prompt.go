package forecast

import (
	"fmt"
	"strconv"
	"time"

	"github.com/FACorreiaa/jens-bike-weather/internal/types"
)

const forecastInstructions = `
    For each of the next 5 days, provide an hourly forecast for daytime hours only, specifically from 7 AM (07:00) to 7 PM (19:00).
    The data for each hour should include:
    1. Wind speed in miles per hour.
    2. Wind direction as a cardinal direction (e.g., N, NE, S, SW).
    3. UV index as an integer.
    4. Precipitation probability as a percentage.
    5. Temperature in Fahrenheit.
    Also provide a 'bikeAdvisory' for each day: a brief, friendly summary for cyclists based on the overall conditions (e.g., "Great day for a ride, winds will be low.", "Morning ride is best to avoid afternoon rain.", or "High winds and rain likely, consider indoor training.").
    Return the city and country name for the location.
`

// BuildForecastPrompt renders the instruction for a five day biking forecast
// starting at today. The coordinate variant embeds both numbers verbatim, the
// location variant embeds the exact string; never both.
func BuildForecastPrompt(input types.ForecastInput, today time.Time) string {
	var subject string
	if c, ok := input.Coordinates(); ok {
		subject = fmt.Sprintf("the latitude %s and longitude %s", formatDegrees(c.Lat), formatDegrees(c.Lon))
	} else {
		location, _ := input.Location()
		subject = fmt.Sprintf(`the location "%s"`, location)
	}

	return fmt.Sprintf(`
    Based on %s, provide a 5-day weather forecast suitable for biking, starting from today which is %s.
    %s`, subject, today.Format(time.DateOnly), forecastInstructions)
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
