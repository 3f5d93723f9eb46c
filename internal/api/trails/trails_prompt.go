package trails

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/FACorreiaa/jens-bike-weather/internal/types"
)

// BuildTrailsPrompt asks for trails near location as a raw JSON array. The
// reply is free text, not schema constrained.
func BuildTrailsPrompt(location string) string {
	return fmt.Sprintf(`Find popular bike trails near "%s". For each trail, provide a name and a brief, one-sentence description highlighting what it's known for (e.g., scenic views, difficulty, family-friendly). Return the result as a valid JSON array of objects, where each object has a "name" and a "description" key.`, location)
}

// trailsConfig enables Maps grounding, biased to userCoords when known.
func trailsConfig(userCoords *types.Coordinates) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}},
	}
	if userCoords != nil {
		config.ToolConfig = &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{
					Latitude:  genai.Ptr(userCoords.Lat),
					Longitude: genai.Ptr(userCoords.Lon),
				},
			},
		}
	}
	return config
}
