package trails

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/FACorreiaa/jens-bike-weather/internal/types"
)

// arrayPattern spans from the first '[' to the last ']' across lines.
var arrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// ExtractTrailArray pulls the JSON array out of a reply that may carry prose
// or a code fence around it.
func ExtractTrailArray(text string) ([]types.BikeTrail, error) {
	match := arrayPattern.FindString(text)
	if match == "" {
		return nil, fmt.Errorf("%w: no JSON array found in the response", ErrMalformedTrails)
	}

	var raw []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTrails, err)
	}

	trails := make([]types.BikeTrail, 0, len(raw))
	for _, t := range raw {
		trails = append(trails, types.BikeTrail{Name: t.Name, Description: t.Description})
	}
	return trails, nil
}

// MapReferences collects the maps grounding chunks of the first candidate
// that carry both a uri and a title, in response order.
func MapReferences(resp *genai.GenerateContentResponse) []types.MapReference {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}

	var refs []types.MapReference
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Maps == nil || chunk.Maps.URI == "" || chunk.Maps.Title == "" {
			continue
		}
		refs = append(refs, types.MapReference{URI: chunk.Maps.URI, Title: chunk.Maps.Title})
	}
	return refs
}

// AttachMapLinks sets MapsURI on every trail whose name and a reference title
// contain one another, ignoring case. The first matching reference wins.
func AttachMapLinks(trails []types.BikeTrail, refs []types.MapReference) []types.BikeTrail {
	out := make([]types.BikeTrail, len(trails))
	for i, trail := range trails {
		out[i] = trail
		name := strings.ToLower(trail.Name)
		for _, ref := range refs {
			title := strings.ToLower(ref.Title)
			if strings.Contains(name, title) || strings.Contains(title, name) {
				out[i].MapsURI = ref.URI
				break
			}
		}
	}
	return out
}
